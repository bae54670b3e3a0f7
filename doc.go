// Package wikf renders lightweight wiki markup to HTML or terminal text.
//
// Input is read line by line. A block parser classifies each line (code
// fence, table row, metadata tag, heading, list, quote or paragraph text) and
// hands textual content to an inline lexer that recognizes monospace, bold,
// italic, strike, superscript, subscript, bracketed links, bare URLs and
// WikiWords. The result is one flat, balanced stream of start, end and leaf
// tokens. Renderers consume that stream exactly once.
//
// Markup summary:
//
//	= Title =  == Section ==        headings, level = number of '='
//	{{{ ... }}}                     verbatim code block (on lines of their own)
//	||a||b||                        table row
//	#key value                      metadata tag
//	  * item   /   # item           bulleted / numbered list (indented)
//	  indented text                 quote
//	*bold* _italic_ ~~strike~~ ^sup^ ,,sub,, `mono` {{{mono}}}
//	[http://example.com label]      link, an image file name as label shows the image
//	http://example.com/a.png        bare URL or image
//	WikiWord  !NotAWikiWord         WikiWord reference, escaped WikiWord
//
// Example:
//
//	res, err := wikf.Render(wikf.RenderRequest{
//		Reader: strings.NewReader("== Hello ==\n\nWiki in, *HTML* out.\n"),
//		Writer: os.Stdout,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	_ = res.Tags
//
// Malformed markup never fails: unterminated blocks close at end of input
// and empty spans are dropped. Errors are reserved for I/O failures and for
// token streams that are not balanced.
package wikf

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'wikf.parse'.
func tracer() tracing.Trace {
	return tracing.Select("wikf.parse")
}

// renderTracer traces with key 'wikf.render'.
func renderTracer() tracing.Trace {
	return tracing.Select("wikf.render")
}
