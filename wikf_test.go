package wikf

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStream struct {
	tokens  []Token
	flushed int
}

func (s *recordingStream) WriteToken(tok Token) error {
	s.tokens = append(s.tokens, tok)
	return nil
}

func (s *recordingStream) Flush() error {
	s.flushed++
	return nil
}

func TestParseWritesAndFlushes(t *testing.T) {
	stream := &recordingStream{}
	err := Parse(ParseRequest{Reader: strings.NewReader("hello"), Stream: stream})
	require.NoError(t, err)
	assert.Equal(t, 1, stream.flushed)
	require.Len(t, stream.tokens, 3)
	assert.Equal(t, TextToken("hello"), stream.tokens[1])
}

func TestParseRejectsNilInputs(t *testing.T) {
	assert.EqualError(t, Parse(ParseRequest{Stream: &recordingStream{}}), "parse: reader is nil")
	assert.EqualError(t, Parse(ParseRequest{Reader: strings.NewReader("")}), "parse: stream is nil")
}

func TestParseStopsOnSinkError(t *testing.T) {
	boom := errors.New("boom")
	seen := 0
	err := Parse(ParseRequest{
		Reader: strings.NewReader("a\n\nb\n\nc"),
		Stream: StreamFunc(func(Token) error {
			seen++
			if seen == 2 {
				return boom
			}
			return nil
		}),
	})
	assert.True(t, errors.Is(err, boom), "got %v", err)
	assert.Equal(t, 2, seen)
}

func TestParseReportsReadError(t *testing.T) {
	err := Parse(ParseRequest{
		Reader: io.MultiReader(strings.NewReader("a\n"), failingReader{}),
		Stream: StreamFunc(func(Token) error { return nil }),
	})
	assert.EqualError(t, err, "parse: boom")
}

func TestTokensEarlyStop(t *testing.T) {
	var got []Token
	for tok, err := range Tokens(strings.NewReader("a\n\nb\n\nc")) {
		require.NoError(t, err)
		got = append(got, tok)
		if len(got) == 4 {
			break
		}
	}
	assert.Len(t, got, 4)

	// the pooled parser is usable again after an early stop
	assert.Equal(t, `Paragraph#1 Text("x") End#1(Paragraph)`, tokenString(t, "x"))
}

func TestTokensNilReader(t *testing.T) {
	n := 0
	for _, err := range Tokens(nil) {
		n++
		assert.Error(t, err)
	}
	assert.Equal(t, 1, n)
}

func TestTokensYieldsReadErrorLast(t *testing.T) {
	var errs []error
	var toks int
	for _, err := range Tokens(io.MultiReader(strings.NewReader("a\n"), failingReader{})) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		toks++
	}
	assert.Equal(t, 3, toks)
	require.Len(t, errs, 1)
	assert.EqualError(t, errs[0], "parse: boom")
}

func TestRenderRejectsNilInputs(t *testing.T) {
	_, err := Render(RenderRequest{Writer: &bytes.Buffer{}})
	assert.EqualError(t, err, "render: reader is nil")
	_, err = Render(RenderRequest{Reader: strings.NewReader("")})
	assert.EqualError(t, err, "render: writer is nil")
}

func TestRenderCollectsTags(t *testing.T) {
	var out bytes.Buffer
	res, err := Render(RenderRequest{
		Reader: strings.NewReader("#title Home\n#draft\nbody\n"),
		Writer: &out,
	})
	require.NoError(t, err)
	assert.Equal(t, []Token{TagToken("title", "Home"), TagToken("draft", "")}, res.Tags)
	assert.Equal(t, "<p>body</p>\n", out.String())
}

func TestRenderWriteError(t *testing.T) {
	_, err := Render(RenderRequest{
		Reader: strings.NewReader(strings.Repeat("word ", 2000)),
		Writer: &brokenWriter{},
	})
	assert.Error(t, err)
}

func TestRenderCustomSyntax(t *testing.T) {
	got := renderHTML(t, "gopher://h/x and http://x.org",
		WithURLSchemes("gopher"),
		WithImageExtensions(".svg"),
	)
	assert.Equal(t, `<p><a href="gopher://h/x">gopher://h/x</a> and http://x.org</p>`+"\n", got)
}
