package wikf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/padding"
)

const (
	quoteIndent  = 4
	codeIndent   = 4
	listIndent   = 2
	bulletSymbol = "•"
)

type textList struct {
	numbered bool
	n        int
}

// TextRenderer renders a token stream as wrapped terminal text. Nesting is
// validated the same way as in HTMLRenderer.
type TextRenderer struct {
	w      *bufio.Writer
	width  int
	styles Styles
	cfg    renderConfig
	open   *arraystack.Stack
	err    error

	block  strings.Builder
	inline []string
	links  []int
	lists  []textList
	table  [][]string
	row    []string

	headings int
	lexing   bool
	maxID    int
	written  bool
	compact  bool
	tags     []Token
}

// NewTextRenderer returns a renderer writing to w, wrapping at width
// columns. A zero width disables wrapping and a nil theme selects the
// default theme.
func NewTextRenderer(w io.Writer, width int, theme Theme, opts ...RenderOption) *TextRenderer {
	if theme == nil {
		theme = DefaultTheme()
	}
	return &TextRenderer{
		w:      bufio.NewWriter(w),
		width:  max(width, 0),
		styles: theme.Styles(),
		cfg:    buildConfig(opts),
		open:   arraystack.New(),
	}
}

// Tags returns the metadata tags seen so far.
func (r *TextRenderer) Tags() []Token {
	if len(r.tags) == 0 {
		return nil
	}
	return append([]Token(nil), r.tags...)
}

// WriteToken renders one token.
func (r *TextRenderer) WriteToken(tok Token) error {
	if r.err != nil {
		return r.err
	}
	r.maxID = max(r.maxID, tok.ID)
	switch {
	case tok.IsEnd():
		v, ok := r.open.Peek()
		if !ok {
			return fmt.Errorf("render text: %w: %s", ErrUnbalanced, tok)
		}
		start := v.(Token)
		if !tok.Closes(start) {
			return fmt.Errorf("render text: %w: %s closes %s", ErrUnbalanced, tok, start)
		}
		r.open.Pop()
		r.closeSpan(start)
	case tok.IsStart():
		if tok.Kind == KindHeading && (tok.Level < 1 || tok.Level > len(r.styles.Heading)) {
			return fmt.Errorf("render text: %w: %s", ErrUnknownToken, tok)
		}
		r.open.Push(tok)
		r.openSpan(tok)
	default:
		if err := r.writeLeaf(tok); err != nil {
			return err
		}
	}
	return r.err
}

// Flush writes pending text and fails if any element is still open.
func (r *TextRenderer) Flush() error {
	if v, ok := r.open.Peek(); ok {
		return fmt.Errorf("render text: %w: %s", ErrUnclosed, v.(Token))
	}
	if r.block.Len() > 0 {
		r.finishBlock(0)
	}
	if r.err != nil {
		return r.err
	}
	if err := r.w.Flush(); err != nil {
		return fmt.Errorf("render text: write: %w", err)
	}
	return nil
}

func (r *TextRenderer) openSpan(tok Token) {
	switch tok.Kind {
	case KindParagraph, KindListItem, KindCell:
		r.startBlock()
	case KindQuote:
		r.startBlock()
		r.pushStyle(r.styles.Quote.Prefix)
	case KindHeading:
		r.startBlock()
		r.headings++
		r.pushStyle(r.styles.Heading[tok.Level-1].Prefix)
		r.block.WriteString(strings.Repeat("=", tok.Level) + " ")
	case KindBulletedList, KindNumberedList:
		r.lists = append(r.lists, textList{numbered: tok.Kind == KindNumberedList})
	case KindTable:
		r.table = r.table[:0]
	case KindRow:
		r.row = nil
	case KindBold:
		r.pushStyle(r.styles.Bold.Prefix)
	case KindItalic:
		r.pushStyle(r.styles.Italic.Prefix)
	case KindStrike:
		r.pushStyle(r.styles.Strike.Prefix)
	case KindSuperscript:
		r.pushStyle(r.styles.Superscript.Prefix)
	case KindSubscript:
		r.pushStyle(r.styles.Subscript.Prefix)
	case KindMonospace:
		r.pushStyle(r.styles.CodeInline.Prefix)
	case KindHyperlink:
		if r.cfg.osc8 && tok.Href != "" {
			r.block.WriteString(osc8Start + tok.Href + "\x1b\\")
		}
		r.pushStyle(r.styles.LinkText.Prefix)
		r.links = append(r.links, r.block.Len())
	}
}

func (r *TextRenderer) closeSpan(start Token) {
	switch start.Kind {
	case KindParagraph:
		r.finishBlock(0)
	case KindQuote:
		r.popStyle()
		r.finishBlock(quoteIndent)
	case KindHeading:
		r.block.WriteString(" " + strings.Repeat("=", start.Level))
		r.popStyle()
		r.headings--
		r.finishBlock(0)
	case KindListItem:
		r.finishListItem()
	case KindBulletedList, KindNumberedList:
		if n := len(r.lists); n > 0 {
			r.lists = r.lists[:n-1]
		}
	case KindCell:
		r.row = append(r.row, r.block.String())
		r.startBlock()
	case KindRow:
		r.table = append(r.table, r.row)
		r.row = nil
	case KindTable:
		r.writeTable()
	case KindHyperlink:
		mark := r.links[len(r.links)-1]
		r.links = r.links[:len(r.links)-1]
		label := r.block.String()[mark:]
		r.popStyle()
		if r.cfg.osc8 && start.Href != "" {
			r.block.WriteString(osc8End)
		} else if label != start.Href {
			r.writeLinkURL(start.Href)
		}
	default:
		r.popStyle()
	}
}

func (r *TextRenderer) writeLeaf(tok Token) error {
	switch tok.Kind {
	case KindText:
		if r.headings > 0 && !r.lexing {
			return r.lexHeadingText(tok.Text)
		}
		r.block.WriteString(tok.Text)
	case KindCode:
		r.writeCode(tok.Text)
	case KindImage:
		label := "[image: " + tok.Src + "]"
		if tok.Href == "" {
			r.block.WriteString(r.styled(r.styles.LinkText.Prefix, label))
			return nil
		}
		r.writeLink(tok.Href, label)
	case KindHyperlink:
		r.writeLink(tok.Href, tok.Text)
	case KindWord:
		if tok.URL == "" {
			r.block.WriteString(tok.Text)
			return nil
		}
		r.writeLink(tok.URL, tok.Text)
	case KindTag:
		r.tags = append(r.tags, tok)
	default:
		return fmt.Errorf("render text: %w: %s", ErrUnknownToken, tok)
	}
	return nil
}

// lexHeadingText resolves inline markup inside a heading.
func (r *TextRenderer) lexHeadingText(text string) error {
	ids := Handles{next: r.maxID}
	lexer := inlineLexer{syn: r.cfg.syntax(), ids: &ids}
	r.lexing = true
	err := lexer.lex(text, r.WriteToken)
	r.lexing = false
	return err
}

func (r *TextRenderer) writeLink(href, text string) {
	if r.cfg.osc8 {
		r.block.WriteString(osc8Start + href + "\x1b\\")
		r.block.WriteString(r.styled(r.styles.LinkText.Prefix, text))
		r.block.WriteString(osc8End)
		return
	}
	r.block.WriteString(r.styled(r.styles.LinkText.Prefix, text))
	if text != href {
		r.writeLinkURL(href)
	}
}

func (r *TextRenderer) writeLinkURL(href string) {
	r.block.WriteString(" (" + r.styled(r.styles.LinkURL.Prefix, fitURL(href, r.width)) + ")")
}

func (r *TextRenderer) writeCode(code string) {
	code = strings.TrimSuffix(code, "\n")
	if r.cfg.highlight != "" {
		code = strings.TrimSuffix(highlightString(code, r.cfg.highlight), "\n")
	} else if p := r.styles.CodeBlock.Prefix; p != "" {
		lines := strings.Split(code, "\n")
		for i, line := range lines {
			lines[i] = p + line + ansiReset
		}
		code = strings.Join(lines, "\n")
	}
	r.writeBlock(indent.String(code, codeIndent), false)
}

func (r *TextRenderer) writeTable() {
	var widths []int
	for _, row := range r.table {
		for i, cell := range row {
			if i == len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], ansi.PrintableRuneWidth(cell))
		}
	}
	bar := r.styled(r.styles.TableBorder.Prefix, "|")
	var b strings.Builder
	for n, row := range r.table {
		if n > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(bar)
		for i, cell := range row {
			b.WriteString(" " + padCell(cell, widths[i]) + " " + bar)
		}
	}
	r.table = r.table[:0]
	if b.Len() > 0 {
		r.writeBlock(b.String(), false)
	}
}

func padCell(cell string, width int) string {
	if cell == "" {
		return strings.Repeat(" ", width)
	}
	return padding.String(cell, uint(width))
}

func (r *TextRenderer) finishListItem() {
	depth := len(r.lists)
	marker := bulletSymbol + " "
	if depth > 0 {
		list := &r.lists[depth-1]
		list.n++
		if list.numbered {
			marker = strconv.Itoa(list.n) + ". "
		}
	}
	text := r.takeBlock()
	hang := ansi.PrintableRuneWidth(marker)
	lead := listIndent * max(depth-1, 0)
	body := wrapText(text, r.width-lead-hang)
	body = strings.ReplaceAll(body, "\n", "\n"+strings.Repeat(" ", hang))
	item := r.styled(r.styles.ListMarker.Prefix, marker) + body
	r.writeBlock(indent.String(item, uint(lead)), true)
}

func (r *TextRenderer) finishBlock(indentBy int) {
	text := r.takeBlock()
	if text == "" {
		return
	}
	text = wrapText(text, r.width-indentBy)
	if indentBy > 0 {
		text = indent.String(text, uint(indentBy))
	}
	r.writeBlock(text, false)
}

func (r *TextRenderer) startBlock() {
	r.block.Reset()
	r.inline = r.inline[:0]
}

func (r *TextRenderer) takeBlock() string {
	text := r.block.String()
	r.startBlock()
	return text
}

// writeBlock writes one block. Blocks are separated by a blank line except
// between consecutive compact blocks such as list items.
func (r *TextRenderer) writeBlock(text string, compact bool) {
	if r.err != nil {
		return
	}
	if r.written && !(compact && r.compact) {
		r.write("\n")
	}
	r.write(text + "\n")
	r.written = true
	r.compact = compact
}

func (r *TextRenderer) write(s string) {
	if r.err != nil {
		return
	}
	if _, err := r.w.WriteString(s); err != nil {
		r.err = fmt.Errorf("render text: write: %w", err)
	}
}

func (r *TextRenderer) pushStyle(prefix string) {
	r.block.WriteString(prefix)
	r.inline = append(r.inline, prefix)
}

func (r *TextRenderer) popStyle() {
	n := len(r.inline)
	if n == 0 {
		return
	}
	prefix := r.inline[n-1]
	r.inline = r.inline[:n-1]
	if prefix == "" {
		return
	}
	r.block.WriteString(ansiReset)
	for _, p := range r.inline {
		r.block.WriteString(p)
	}
}

// styled wraps text in prefix and restores the enclosing styles after it.
func (r *TextRenderer) styled(prefix, text string) string {
	if prefix == "" {
		return text
	}
	return prefix + text + ansiReset + strings.Join(r.inline, "")
}
