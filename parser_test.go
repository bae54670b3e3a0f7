package wikf

import (
	"strings"
	"testing"
	"time"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
)

func TestParseBlocks(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikf.parse")
	defer teardown()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"blank lines only", "\n  \n\n", ""},
		{"paragraph lines join", "a\r\nb\r\n", `Paragraph#1 Text("a b") End#1(Paragraph)`},
		{"paragraph at eof", "last", `Paragraph#1 Text("last") End#1(Paragraph)`},
		{"two paragraphs", "a\n\nb", `Paragraph#1 Text("a") End#1(Paragraph) Paragraph#2 Text("b") End#2(Paragraph)`},
		{"heading", "== Section One ==", `Heading#1(2) Text("Section One") End#1(Heading)`},
		{"heading too deep", "======= x =======", `Paragraph#1 Text("======= x =======") End#1(Paragraph)`},
		{"heading without closing run", "== x", `Paragraph#1 Text("== x") End#1(Paragraph)`},
		{"block ends paragraph", "text\n== H ==\n",
			`Paragraph#1 Text("text") End#1(Paragraph) Heading#2(2) Text("H") End#2(Heading)`},
		{"tag", "#title My Page", `Tag("title", "My Page")`},
		{"tag without value", "#draft", `Tag("draft", "")`},
		{"digit is not a tag", "#1 not a tag", `Paragraph#1 Text("#1 not a tag") End#1(Paragraph)`},
		{"code", "{{{\nfoo\n}}}\n", `Code("foo\n")`},
		{"nested code fences", "{{{\na\n{{{\nb\n}}}\nc\n}}}\n", `Code("a\n{{{\nb\n}}}\nc\n")`},
		{"fence with trailing space does not nest", "{{{\na\n{{{ \nb\n}}}\n", `Code("a\n{{{ \nb\n")`},
		{"unterminated code", "{{{\nfoo", `Code("foo\n")`},
		{"empty code", "{{{\n}}}", ""},
		{"code keeps indentation", "{{{\n  x := 1\n}}}", `Code("  x := 1\n")`},
		{"table", "||a||b||\n||c||d||\n",
			"Table#1 " +
				`Row#2 Cell#3 Text("a") End#3(Cell) Cell#4 Text("b") End#4(Cell) End#2(Row) ` +
				`Row#5 Cell#6 Text("c") End#6(Cell) Cell#7 Text("d") End#7(Cell) End#5(Row) ` +
				"End#1(Table)"},
		{"table cell markup", "|| *x* ||", `Table#1 Row#2 Cell#3 Bold#4 Text("x") End#4(Bold) End#3(Cell) End#2(Row) End#1(Table)`},
		{"quote", "  quoted text\n  continues\n\nnext",
			`Quote#1 Text("quoted text continues") End#1(Quote) Paragraph#2 Text("next") End#2(Paragraph)`},
		{"quote stops at list marker", "  quote\n  * item",
			`Quote#1 Text("quote") End#1(Quote) BulletedList#2 ListItem#3 Text("item") End#3(ListItem) End#2(BulletedList)`},
		{"numbered list", "  # one\n  # two",
			`NumberedList#1 ListItem#2 Text("one") End#2(ListItem) ListItem#3 Text("two") End#3(ListItem) End#1(NumberedList)`},
		{"list item without marker", "  * a\n  b",
			`BulletedList#1 ListItem#2 Text("a") End#2(ListItem) ListItem#3 Text("b") End#3(ListItem) End#1(BulletedList)`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tokenString(t, tc.in))
		})
	}
}

func TestParseLongMarkerRunIsText(t *testing.T) {
	line := strings.Repeat("=", 5000) + "x"
	start := time.Now()
	got := tokenString(t, line)
	elapsed := time.Since(start)
	assert.Equal(t, `Paragraph#1 Text("`+line+`") End#1(Paragraph)`, got)
	if elapsed > 2*time.Second {
		t.Fatalf("parsing a %d byte marker run took %v", len(line), elapsed)
	}
	_, _, ok := matchHeading(strings.Repeat("=", 5000) + " x")
	assert.False(t, ok)
}

func TestParseNestedLists(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikf.parse")
	defer teardown()

	got := tokenString(t, "  * a\n    * b\n  * c\nafter\n")
	want := "BulletedList#1 " +
		`ListItem#2 Text("a") End#2(ListItem) ` +
		"BulletedList#3 " +
		`ListItem#4 Text("b") End#4(ListItem) ` +
		"End#3(BulletedList) " +
		`ListItem#5 Text("c") End#5(ListItem) ` +
		"End#1(BulletedList) " +
		`Paragraph#6 Text("after") End#6(Paragraph)`
	assert.Equal(t, want, got)
}

func TestParseListsCloseAtEOF(t *testing.T) {
	got := tokenString(t, "  * a\n    # b")
	want := "BulletedList#1 " +
		`ListItem#2 Text("a") End#2(ListItem) ` +
		"NumberedList#3 " +
		`ListItem#4 Text("b") End#4(ListItem) ` +
		"End#3(NumberedList) End#1(BulletedList)"
	assert.Equal(t, want, got)
}

func TestParseStreamIsBalanced(t *testing.T) {
	src := "#title T\n= *Head* =\n\n  * _a_ [http://x.org x]\n    # b\n||c||d||\n  quote\n{{{\ncode\n}}}\nend FooBar\n"
	var open []Token
	for tok, err := range Tokens(strings.NewReader(src)) {
		if err != nil {
			t.Fatalf("tokens: %v", err)
		}
		switch {
		case tok.IsStart():
			open = append(open, tok)
		case tok.IsEnd():
			if len(open) == 0 || !tok.Closes(open[len(open)-1]) {
				t.Fatalf("unbalanced end %s", tok)
			}
			open = open[:len(open)-1]
		}
	}
	if len(open) != 0 {
		t.Fatalf("unclosed tokens: %v", open)
	}
}
