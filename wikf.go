package wikf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"sync"
)

var parserPool = sync.Pool{
	New: func() any {
		return &parser{}
	},
}

var readerPool = sync.Pool{
	New: func() any {
		return bufio.NewReaderSize(nil, 4096)
	},
}

var writerPool = sync.Pool{
	New: func() any {
		return bufio.NewWriterSize(nil, 4096)
	},
}

// errStopped ends a parse whose consumer went away.
var errStopped = errors.New("stopped")

// ParseRequest configures Parse.
type ParseRequest struct {
	Reader  io.Reader
	Stream  Stream
	Options []RenderOption
}

// RenderRequest configures Render.
type RenderRequest struct {
	Reader  io.Reader
	Writer  io.Writer
	Options []RenderOption
}

// RenderResult reports what Render saw besides markup.
type RenderResult struct {
	// Tags holds the metadata tags of the document in order.
	Tags []Token
}

// TextRenderRequest configures RenderText.
type TextRenderRequest struct {
	Reader  io.Reader
	Writer  io.Writer
	Width   int
	Theme   Theme
	Options []RenderOption
}

// Parse parses wiki markup from a reader and writes tokens to a sink.
// The sink is flushed once the input is exhausted.
func Parse(req ParseRequest) error {
	if req.Reader == nil {
		return fmt.Errorf("parse: reader is nil")
	}
	if req.Stream == nil {
		return fmt.Errorf("parse: stream is nil")
	}
	if err := parse(req.Reader, buildConfig(req.Options), req.Stream.WriteToken); err != nil {
		return err
	}
	if err := req.Stream.Flush(); err != nil {
		return fmt.Errorf("parse: flush: %w", err)
	}
	return nil
}

// Tokens returns the token stream of r as an iterator. Breaking out of the
// loop stops parsing. A read error is yielded once, as the last element.
func Tokens(r io.Reader, opts ...RenderOption) iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		if r == nil {
			yield(Token{}, fmt.Errorf("tokens: reader is nil"))
			return
		}
		err := parse(r, buildConfig(opts), func(tok Token) error {
			if !yield(tok, nil) {
				return errStopped
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopped) {
			yield(Token{}, err)
		}
	}
}

// Render renders wiki markup from a reader as an HTML fragment.
func Render(req RenderRequest) (RenderResult, error) {
	if req.Reader == nil {
		return RenderResult{}, fmt.Errorf("render: reader is nil")
	}
	if req.Writer == nil {
		return RenderResult{}, fmt.Errorf("render: writer is nil")
	}
	out := writerPool.Get().(*bufio.Writer)
	out.Reset(req.Writer)
	renderer := NewHTMLRenderer(NewHTMLWriter(out), req.Options...)
	err := Parse(ParseRequest{
		Reader:  req.Reader,
		Stream:  renderer,
		Options: req.Options,
	})
	if ferr := out.Flush(); err == nil && ferr != nil {
		err = fmt.Errorf("render: write: %w", ferr)
	}
	out.Reset(nil)
	writerPool.Put(out)
	return RenderResult{Tags: renderer.Tags()}, err
}

// RenderText renders wiki markup from a reader as terminal text wrapped to
// Width columns. A zero Width disables wrapping.
func RenderText(req TextRenderRequest) error {
	if req.Reader == nil {
		return fmt.Errorf("render text: reader is nil")
	}
	if req.Writer == nil {
		return fmt.Errorf("render text: writer is nil")
	}
	if req.Width < 0 {
		return fmt.Errorf("render text: width must be >= 0")
	}
	renderer := NewTextRenderer(req.Writer, req.Width, req.Theme, req.Options...)
	return Parse(ParseRequest{
		Reader:  req.Reader,
		Stream:  renderer,
		Options: req.Options,
	})
}

func parse(r io.Reader, cfg renderConfig, emit emitFunc) error {
	p := parserPool.Get().(*parser)
	reader := readerPool.Get().(*bufio.Reader)
	reader.Reset(r)
	p.reset(cfg)
	p.lines.reset(reader)
	err := p.run(emit)
	p.lines.reset(nil)
	reader.Reset(nil)
	readerPool.Put(reader)
	parserPool.Put(p)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	return nil
}
