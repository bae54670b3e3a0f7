package wikf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/emirpasic/gods/stacks/arraystack"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	// ErrUnbalanced reports an End token that does not close the innermost open start token.
	ErrUnbalanced = errors.New("unbalanced token stream")
	// ErrUnknownToken reports a token the renderer cannot map to markup.
	ErrUnknownToken = errors.New("unknown token")
	// ErrUnclosed reports start tokens still open when the stream is flushed.
	ErrUnclosed = errors.New("unclosed element at end of stream")
)

var elementAtoms = [...]atom.Atom{
	KindParagraph:    atom.P,
	KindQuote:        atom.Blockquote,
	KindBulletedList: atom.Ul,
	KindNumberedList: atom.Ol,
	KindListItem:     atom.Li,
	KindTable:        atom.Table,
	KindRow:          atom.Tr,
	KindCell:         atom.Td,
	KindBold:         atom.Strong,
	KindItalic:       atom.Em,
	KindStrike:       atom.Del,
	KindSuperscript:  atom.Sup,
	KindSubscript:    atom.Sub,
	KindMonospace:    atom.Code,
	KindHyperlink:    atom.A,
}

var headingAtoms = [...]atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}

// HTMLRenderer renders a token stream as an HTML fragment. It validates
// nesting while it writes and fails on the first malformed token.
type HTMLRenderer struct {
	w    HTMLWriter
	cfg  renderConfig
	open *arraystack.Stack
	tags []Token

	heading  Token
	captured []Token
}

// NewHTMLRenderer returns a renderer writing to w.
func NewHTMLRenderer(w HTMLWriter, opts ...RenderOption) *HTMLRenderer {
	return &HTMLRenderer{
		w:    w,
		cfg:  buildConfig(opts),
		open: arraystack.New(),
	}
}

// WriteToken renders one token.
func (r *HTMLRenderer) WriteToken(tok Token) error {
	if r.heading.ID != 0 {
		if tok.IsEnd() && tok.ID == r.heading.ID {
			start, body := r.heading, r.captured
			r.heading, r.captured = Token{}, nil
			return r.renderHeading(start, body)
		}
		r.captured = append(r.captured, tok)
		return nil
	}
	switch {
	case tok.IsEnd():
		return r.closeElement(tok)
	case tok.Kind == KindHeading:
		if !tok.IsStart() || tok.Level < 1 || tok.Level > len(headingAtoms) {
			return r.fault(ErrUnknownToken, tok)
		}
		r.heading = tok
		return nil
	case tok.IsStart():
		return r.openElement(tok)
	}
	return r.writeLeaf(tok)
}

// Flush fails if any element is still open.
func (r *HTMLRenderer) Flush() error {
	if r.heading.ID != 0 {
		return r.fault(ErrUnclosed, r.heading)
	}
	if v, ok := r.open.Peek(); ok {
		return r.fault(ErrUnclosed, v.(Token))
	}
	return nil
}

// Depth returns the number of open start tokens.
func (r *HTMLRenderer) Depth() int {
	n := r.open.Size()
	if r.heading.ID != 0 {
		n++
	}
	return n
}

// Tags returns the metadata tags seen so far.
func (r *HTMLRenderer) Tags() []Token {
	if len(r.tags) == 0 {
		return nil
	}
	return append([]Token(nil), r.tags...)
}

func (r *HTMLRenderer) fault(err error, tok Token) error {
	return r.faultf(err, "%s", tok)
}

func (r *HTMLRenderer) faultf(err error, format string, args ...any) error {
	detail := fmt.Sprintf(format, args...)
	renderTracer().Errorf("render: %v at %s", err, detail)
	return fmt.Errorf("render: %w: %s", err, detail)
}

func (r *HTMLRenderer) openElement(tok Token) error {
	if int(tok.Kind) >= len(elementAtoms) || elementAtoms[tok.Kind] == 0 {
		return r.fault(ErrUnknownToken, tok)
	}
	name := elementAtoms[tok.Kind].String()
	var err error
	if tok.Kind == KindHyperlink {
		err = r.w.OpenTag(name, html.Attribute{Key: "href", Val: tok.Href})
	} else {
		err = r.w.OpenTag(name)
	}
	if err != nil {
		return err
	}
	r.open.Push(tok)
	return nil
}

func (r *HTMLRenderer) closeElement(end Token) error {
	v, ok := r.open.Peek()
	if !ok {
		return r.fault(ErrUnbalanced, end)
	}
	start := v.(Token)
	if !end.Closes(start) {
		return r.faultf(ErrUnbalanced, "%s closes %s", end, start)
	}
	r.open.Pop()
	if err := r.w.CloseTag(); err != nil {
		return err
	}
	if start.Kind == KindMonospace || start.Kind == KindHyperlink {
		return nil
	}
	return r.w.WriteRaw("\n")
}

func (r *HTMLRenderer) writeLeaf(tok Token) error {
	switch tok.Kind {
	case KindText:
		return r.w.WriteEscaped(tok.Text)
	case KindCode:
		return r.writeCode(tok.Text)
	case KindImage:
		return r.writeImage(tok)
	case KindHyperlink:
		return r.writeAnchor(tok.Href, tok.Text)
	case KindWord:
		if tok.URL == "" {
			return r.w.WriteEscaped(tok.Text)
		}
		return r.writeAnchor(tok.URL, tok.Text)
	case KindTag:
		renderTracer().Debugf("tag %q = %q", tok.Key, tok.Value)
		r.tags = append(r.tags, tok)
		return nil
	}
	return r.fault(ErrUnknownToken, tok)
}

func (r *HTMLRenderer) writeCode(code string) error {
	if r.cfg.highlight != "" {
		var b strings.Builder
		err := highlightCode(&b, code, r.cfg.highlight, highlightHTML)
		if err == nil {
			return r.w.WriteRaw(b.String())
		}
		renderTracer().Debugf("highlight: %v", err)
	}
	if err := r.w.OpenTag(atom.Pre.String()); err != nil {
		return err
	}
	if err := r.w.WriteEscaped(code); err != nil {
		return err
	}
	if err := r.w.CloseTag(); err != nil {
		return err
	}
	return r.w.WriteRaw("\n")
}

func (r *HTMLRenderer) writeImage(tok Token) error {
	if tok.Href != "" {
		if err := r.w.OpenTag(atom.A.String(), html.Attribute{Key: "href", Val: tok.Href}); err != nil {
			return err
		}
	}
	if err := r.w.OpenTag(atom.Img.String(),
		html.Attribute{Key: "src", Val: tok.Src},
		html.Attribute{Key: "alt", Val: ""},
	); err != nil {
		return err
	}
	if err := r.w.CloseTag(); err != nil {
		return err
	}
	if tok.Href != "" {
		return r.w.CloseTag()
	}
	return nil
}

func (r *HTMLRenderer) writeAnchor(href, text string) error {
	if err := r.w.OpenTag(atom.A.String(), html.Attribute{Key: "href", Val: href}); err != nil {
		return err
	}
	if err := r.w.WriteEscaped(text); err != nil {
		return err
	}
	return r.w.CloseTag()
}

// renderHeading writes a heading whose body was held back until its End
// arrived. Text in the body is run through the inline lexer here, so markup
// inside headings renders like anywhere else.
func (r *HTMLRenderer) renderHeading(start Token, body []Token) error {
	var text strings.Builder
	maxID := start.ID
	for _, tok := range body {
		if tok.Kind == KindText {
			text.WriteString(tok.Text)
		}
		maxID = max(maxID, tok.ID)
	}
	var attrs []html.Attribute
	if id := anchorID(text.String()); id != "" {
		attrs = append(attrs, html.Attribute{Key: "id", Val: id})
	}
	if err := r.w.OpenTag(headingAtoms[start.Level-1].String(), attrs...); err != nil {
		return err
	}

	inner := &HTMLRenderer{w: r.w, cfg: r.cfg, open: arraystack.New()}
	ids := Handles{next: maxID}
	lexer := inlineLexer{syn: r.cfg.syntax(), ids: &ids}
	for _, tok := range body {
		var err error
		if tok.Kind == KindText {
			err = lexer.lex(tok.Text, inner.WriteToken)
		} else {
			err = inner.WriteToken(tok)
		}
		if err != nil {
			return err
		}
	}
	if err := inner.Flush(); err != nil {
		return err
	}
	r.tags = append(r.tags, inner.tags...)

	if err := r.w.CloseTag(); err != nil {
		return err
	}
	return r.w.WriteRaw("\n")
}

// anchorID maps every character outside [A-Za-z0-9-.:_] to an underscore.
func anchorID(text string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '.' || r == ':' || r == '_':
			return r
		}
		return '_'
	}, text)
}
