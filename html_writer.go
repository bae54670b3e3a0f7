package wikf

import (
	"fmt"
	"io"

	"github.com/emirpasic/gods/stacks/arraystack"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLWriter is the sink the HTML renderer writes to.
type HTMLWriter interface {
	// WriteRaw writes s unchanged.
	WriteRaw(s string) error
	// WriteEscaped writes s with HTML special characters escaped.
	WriteEscaped(s string) error
	// OpenTag writes a start tag. Void elements are closed immediately.
	OpenTag(name string, attrs ...html.Attribute) error
	// CloseTag closes the most recently opened tag.
	CloseTag() error
}

// TagWriter is an HTMLWriter on top of an io.Writer. The first write error
// sticks and is returned by every later call.
type TagWriter struct {
	w    io.Writer
	open *arraystack.Stack
	err  error
}

// NewHTMLWriter returns a TagWriter writing to w.
func NewHTMLWriter(w io.Writer) *TagWriter {
	return &TagWriter{w: w, open: arraystack.New()}
}

// WriteRaw writes s unchanged.
func (t *TagWriter) WriteRaw(s string) error {
	if t.err != nil {
		return t.err
	}
	if s == "" {
		return nil
	}
	_, t.err = io.WriteString(t.w, s)
	return t.err
}

// WriteEscaped writes s with <, >, &, ' and " escaped.
func (t *TagWriter) WriteEscaped(s string) error {
	return t.WriteRaw(html.EscapeString(s))
}

// OpenTag writes <name attrs...>.
func (t *TagWriter) OpenTag(name string, attrs ...html.Attribute) error {
	if err := t.WriteRaw("<" + name); err != nil {
		return err
	}
	for _, a := range attrs {
		if err := t.WriteRaw(" " + a.Key + `="` + html.EscapeString(a.Val) + `"`); err != nil {
			return err
		}
	}
	t.open.Push(name)
	if isVoidElement(name) {
		return t.WriteRaw(" />")
	}
	return t.WriteRaw(">")
}

// CloseTag writes the end tag of the innermost open element.
func (t *TagWriter) CloseTag() error {
	v, ok := t.open.Pop()
	if !ok {
		return fmt.Errorf("close tag: %w", ErrUnbalanced)
	}
	name := v.(string)
	if isVoidElement(name) {
		return t.err
	}
	return t.WriteRaw("</" + name + ">")
}

// Depth returns the number of open elements.
func (t *TagWriter) Depth() int {
	return t.open.Size()
}

func isVoidElement(name string) bool {
	switch atom.Lookup([]byte(name)) {
	case atom.Img, atom.Br, atom.Hr, atom.Input, atom.Meta, atom.Link:
		return true
	}
	return false
}
