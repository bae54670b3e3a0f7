package wikf

import (
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

type highlightTarget uint8

const (
	highlightHTML highlightTarget = iota
	highlightTerminal
)

// highlightCode writes code colored with the named chroma style. The
// language is guessed from the content; unknown content is plain text.
func highlightCode(w io.Writer, code, styleName string, target highlightTarget) error {
	lexer := lexers.Analyse(code)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return err
	}
	var formatter chroma.Formatter
	switch target {
	case highlightTerminal:
		formatter = formatters.Get("terminal256")
	default:
		formatter = chromahtml.New(chromahtml.WithClasses(false))
	}
	return formatter.Format(w, style, iterator)
}

// highlightString returns code highlighted for the terminal, or code itself
// when highlighting fails.
func highlightString(code, styleName string) string {
	var b strings.Builder
	if err := highlightCode(&b, code, styleName, highlightTerminal); err != nil {
		renderTracer().Debugf("highlight: %v", err)
		return code
	}
	return b.String()
}
