package wikf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlesAreUniqueAndIncreasing(t *testing.T) {
	var ids Handles
	a := ids.Start(KindParagraph)
	b := ids.Heading(3)
	c := ids.Hyperlink("http://example.com")
	assert.Equal(t, []int{1, 2, 3}, []int{a.ID, b.ID, c.ID})
	assert.Equal(t, 3, b.Level)
	assert.Equal(t, "http://example.com", c.Text)
}

func TestHandlesRejectLeafKinds(t *testing.T) {
	var ids Handles
	assert.Panics(t, func() { ids.Start(KindText) })
	assert.Panics(t, func() { ids.Start(KindEnd) })
	assert.Panics(t, func() { ids.Start(KindHeading) })
	assert.Panics(t, func() { ids.Heading(0) })
	assert.Panics(t, func() { ids.Heading(7) })
}

func TestTokenStartEnd(t *testing.T) {
	var ids Handles
	bold := ids.Start(KindBold)
	end := EndToken(bold)
	assert.True(t, bold.IsStart())
	assert.False(t, bold.IsEnd())
	assert.True(t, end.IsEnd())
	assert.True(t, end.Closes(bold))
	assert.False(t, end.Closes(ids.Start(KindBold)))
	assert.Equal(t, KindBold, end.Start)

	leaf := HyperlinkToken("http://example.com", "")
	assert.False(t, leaf.IsStart())
	assert.Equal(t, "http://example.com", leaf.Text)
}

func TestTokenString(t *testing.T) {
	var ids Handles
	h := ids.Heading(2)
	cases := []struct {
		tok  Token
		want string
	}{
		{TextToken("a"), `Text("a")`},
		{CodeToken("x\n"), `Code("x\n")`},
		{ImageToken("a.png", ""), `Image("a.png", "")`},
		{HyperlinkToken("http://x", "x"), `Hyperlink("http://x", "x")`},
		{WordToken("FooBar", "", "/FooBar"), `Word("FooBar", "FooBar", "/FooBar")`},
		{TagToken("k", "v"), `Tag("k", "v")`},
		{h, "Heading#1(2)"},
		{EndToken(h), "End#1(Heading)"},
		{ids.Start(KindTable), "Table#2"},
		{Token{Kind: Kind(200)}, "Kind(200)#0"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.tok.String())
	}
}
