package wikf

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/muesli/reflow/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderText(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"heading", "== Title ==", 0, "== Title ==\n"},
		{"heading markup", "= *Big* =", 0, "= Big =\n"},
		{"wrap", "one two three four", 10, "one two\nthree four\n"},
		{"no wrap", "one two three four", 0, "one two three four\n"},
		{"blocks", "a\n\nb", 0, "a\n\nb\n"},
		{"lists", "  * a\n  * b\n    # c\n", 0, "• a\n• b\n  1. c\n"},
		{"link", "[http://x.org site]", 0, "site (http://x.org)\n"},
		{"bare url", "http://x.org", 0, "http://x.org\n"},
		{"quote", "  quoted", 0, "    quoted\n"},
		{"code", "{{{\nx\n  y\n}}}", 0, "    x\n      y\n"},
		{"table", "||a||bb||\n||ccc||d||", 0, "| a   | bb |\n| ccc | d  |\n"},
		{"image", "http://x.org/a.png", 0, "[image: http://x.org/a.png]\n"},
		{"tag only", "#title X", 0, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, renderPlainText(t, tc.in, tc.width))
		})
	}
}

func TestRenderTextWordLink(t *testing.T) {
	got := renderPlainText(t, "FrontPage", 0, WithWordBaseURL("/w/"))
	assert.Equal(t, "FrontPage (/w/FrontPage)\n", got)
}

func TestRenderTextOSC8(t *testing.T) {
	got := renderPlainText(t, "[http://x.org site]", 0, WithOSC8(true))
	assert.Equal(t, osc8Start+"http://x.org\x1b\\site"+osc8End+"\n", got)
}

func TestRenderTextDefaultTheme(t *testing.T) {
	var out bytes.Buffer
	err := RenderText(TextRenderRequest{Reader: strings.NewReader("*b*"), Writer: &out})
	require.NoError(t, err)
	assert.Equal(t, ansiBold+"b"+ansiReset+"\n", out.String())
}

func TestRenderTextGolden(t *testing.T) {
	src, err := os.ReadFile("testdata/basic.wiki")
	require.NoError(t, err)
	want, err := os.ReadFile("testdata/basic.w30.golden")
	require.NoError(t, err)
	assert.Equal(t, string(want), renderPlainText(t, string(src), 30))
}

func TestRenderTextWidthBounds(t *testing.T) {
	src, err := os.ReadFile("testdata/basic.wiki")
	require.NoError(t, err)
	for _, width := range []int{20, 30, 50, 80} {
		var out bytes.Buffer
		err := RenderText(TextRenderRequest{
			Reader: bytes.NewReader(src),
			Writer: &out,
			Width:  width,
		})
		require.NoError(t, err)
		for _, line := range strings.Split(out.String(), "\n") {
			if w := ansi.PrintableRuneWidth(line); w > width {
				t.Fatalf("width %d: line %q is %d columns", width, line, w)
			}
		}
	}
}

func TestRenderTextRejectsBadRequests(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, RenderText(TextRenderRequest{Writer: &out}))
	assert.Error(t, RenderText(TextRenderRequest{Reader: strings.NewReader("")}))
	assert.Error(t, RenderText(TextRenderRequest{Reader: strings.NewReader(""), Writer: &out, Width: -1}))
}

func TestTextRendererFaults(t *testing.T) {
	var ids Handles
	r := NewTextRenderer(&bytes.Buffer{}, 0, nil)
	err := r.WriteToken(Token{Kind: KindEnd, ID: 7, Start: KindBold})
	assert.True(t, errors.Is(err, ErrUnbalanced), "got %v", err)

	r = NewTextRenderer(&bytes.Buffer{}, 0, nil)
	require.NoError(t, r.WriteToken(ids.Start(KindParagraph)))
	err = r.Flush()
	assert.True(t, errors.Is(err, ErrUnclosed), "got %v", err)

	err = NewTextRenderer(&bytes.Buffer{}, 0, nil).WriteToken(Token{Kind: Kind(99)})
	assert.True(t, errors.Is(err, ErrUnknownToken), "got %v", err)
}

func TestTextRendererTags(t *testing.T) {
	r := NewTextRenderer(&bytes.Buffer{}, 0, nil)
	require.NoError(t, r.WriteToken(TagToken("k", "v")))
	require.NoError(t, r.Flush())
	assert.Equal(t, []Token{TagToken("k", "v")}, r.Tags())
}
