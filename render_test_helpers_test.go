package wikf

import (
	"bytes"
	"strings"
	"testing"
)

// tokenString parses src and returns the tokens joined by single spaces.
func tokenString(t *testing.T, src string, opts ...RenderOption) string {
	t.Helper()
	var parts []string
	for tok, err := range Tokens(strings.NewReader(src), opts...) {
		if err != nil {
			t.Fatalf("tokens: %v", err)
		}
		parts = append(parts, tok.String())
	}
	return strings.Join(parts, " ")
}

// lexString runs the inline lexer alone over text.
func lexString(t *testing.T, text string, opts ...RenderOption) string {
	t.Helper()
	var ids Handles
	lexer := inlineLexer{syn: buildConfig(opts).syntax(), ids: &ids}
	var parts []string
	err := lexer.lex(text, func(tok Token) error {
		parts = append(parts, tok.String())
		return nil
	})
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	return strings.Join(parts, " ")
}

func renderHTML(t *testing.T, src string, opts ...RenderOption) string {
	t.Helper()
	var out bytes.Buffer
	if _, err := Render(RenderRequest{Reader: strings.NewReader(src), Writer: &out, Options: opts}); err != nil {
		t.Fatalf("render: %v", err)
	}
	return out.String()
}

func renderPlainText(t *testing.T, src string, width int, opts ...RenderOption) string {
	t.Helper()
	theme, _ := ThemeByName("plain")
	var out bytes.Buffer
	err := RenderText(TextRenderRequest{
		Reader:  strings.NewReader(src),
		Writer:  &out,
		Width:   width,
		Theme:   theme,
		Options: opts,
	})
	if err != nil {
		t.Fatalf("render text: %v", err)
	}
	return out.String()
}
