package wikf

import (
	"fmt"
	"strconv"
)

// Kind tags the variant held by a Token.
type Kind uint8

const (
	// KindText is literal text, escaped on output.
	KindText Kind = iota
	// KindCode is a verbatim code block.
	KindCode
	// KindImage is an image reference, optionally wrapped in a link.
	KindImage
	// KindHyperlink is a link. It is a leaf when ID is zero and a start token otherwise.
	KindHyperlink
	// KindWord is a WikiWord cross reference.
	KindWord
	// KindTag is a metadata key/value pair.
	KindTag
	// KindParagraph starts a paragraph.
	KindParagraph
	// KindHeading starts a heading of Level 1 through 6.
	KindHeading
	// KindQuote starts a block quote.
	KindQuote
	// KindBulletedList starts an unordered list.
	KindBulletedList
	// KindNumberedList starts an ordered list.
	KindNumberedList
	// KindListItem starts a list item.
	KindListItem
	// KindTable starts a table.
	KindTable
	// KindRow starts a table row.
	KindRow
	// KindCell starts a table cell.
	KindCell
	// KindBold starts bold text.
	KindBold
	// KindItalic starts italic text.
	KindItalic
	// KindStrike starts struck-through text.
	KindStrike
	// KindSuperscript starts superscript text.
	KindSuperscript
	// KindSubscript starts subscript text.
	KindSubscript
	// KindMonospace starts inline monospace text.
	KindMonospace
	// KindEnd closes the start token whose handle is carried in ID.
	KindEnd
)

var kindNames = [...]string{
	KindText:         "Text",
	KindCode:         "Code",
	KindImage:        "Image",
	KindHyperlink:    "Hyperlink",
	KindWord:         "Word",
	KindTag:          "Tag",
	KindParagraph:    "Paragraph",
	KindHeading:      "Heading",
	KindQuote:        "Quote",
	KindBulletedList: "BulletedList",
	KindNumberedList: "NumberedList",
	KindListItem:     "ListItem",
	KindTable:        "Table",
	KindRow:          "Row",
	KindCell:         "Cell",
	KindBold:         "Bold",
	KindItalic:       "Italic",
	KindStrike:       "Strike",
	KindSuperscript:  "Superscript",
	KindSubscript:    "Subscript",
	KindMonospace:    "Monospace",
	KindEnd:          "End",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Paired reports whether tokens of this kind open a span that an End token closes.
// Hyperlink is paired only in its wrapping form.
func (k Kind) Paired() bool {
	return k >= KindParagraph && k <= KindMonospace || k == KindHyperlink
}

// Token is one unit of the parsed stream.
//
// Which fields are meaningful depends on Kind:
//
//	Text, Code       Text
//	Image            Src, Href (link around the image, may be empty)
//	Hyperlink        Href, Text (display text, defaults to Href)
//	Word             Word, Text (display text, defaults to Word), URL (resolved link, may be empty)
//	Tag              Key, Value
//	Heading          Level
//	End              ID and Start of the token it closes
//
// Start tokens carry a handle in ID that is unique within one parse session.
type Token struct {
	Kind  Kind
	ID    int
	Start Kind
	Level int
	Text  string
	Href  string
	Src   string
	Word  string
	URL   string
	Key   string
	Value string
}

// IsStart reports whether t opens a span.
func (t Token) IsStart() bool {
	return t.Kind != KindEnd && t.Kind.Paired() && t.ID > 0
}

// IsEnd reports whether t closes a span.
func (t Token) IsEnd() bool {
	return t.Kind == KindEnd
}

// Closes reports whether t is the End token for start.
func (t Token) Closes(start Token) bool {
	return t.Kind == KindEnd && start.IsStart() && t.ID == start.ID
}

func (t Token) String() string {
	switch t.Kind {
	case KindText, KindCode:
		return fmt.Sprintf("%s(%q)", t.Kind, t.Text)
	case KindImage:
		return fmt.Sprintf("Image(%q, %q)", t.Src, t.Href)
	case KindHyperlink:
		if t.IsStart() {
			return fmt.Sprintf("Hyperlink#%d(%q)", t.ID, t.Href)
		}
		return fmt.Sprintf("Hyperlink(%q, %q)", t.Href, t.Text)
	case KindWord:
		return fmt.Sprintf("Word(%q, %q, %q)", t.Word, t.Text, t.URL)
	case KindTag:
		return fmt.Sprintf("Tag(%q, %q)", t.Key, t.Value)
	case KindHeading:
		return fmt.Sprintf("Heading#%d(%d)", t.ID, t.Level)
	case KindEnd:
		return fmt.Sprintf("End#%d(%s)", t.ID, t.Start)
	}
	return fmt.Sprintf("%s#%d", t.Kind, t.ID)
}

// TextToken returns a Text leaf.
func TextToken(text string) Token {
	return Token{Kind: KindText, Text: text}
}

// CodeToken returns a Code leaf.
func CodeToken(text string) Token {
	return Token{Kind: KindCode, Text: text}
}

// ImageToken returns an Image leaf. href may be empty.
func ImageToken(src, href string) Token {
	return Token{Kind: KindImage, Src: src, Href: href}
}

// HyperlinkToken returns a self-contained Hyperlink leaf.
// An empty text displays the href.
func HyperlinkToken(href, text string) Token {
	if text == "" {
		text = href
	}
	return Token{Kind: KindHyperlink, Href: href, Text: text}
}

// WordToken returns a WikiWord leaf. An empty text displays the word.
func WordToken(word, text, url string) Token {
	if text == "" {
		text = word
	}
	return Token{Kind: KindWord, Word: word, Text: text, URL: url}
}

// TagToken returns a metadata leaf.
func TagToken(key, value string) Token {
	return Token{Kind: KindTag, Key: key, Value: value}
}

// EndToken returns the token closing start.
func EndToken(start Token) Token {
	return Token{Kind: KindEnd, ID: start.ID, Start: start.Kind}
}

// Handles hands out start-token handles for one token stream.
// The zero value is ready to use.
type Handles struct {
	next int
}

// Start returns a start token of the given paired kind.
func (h *Handles) Start(kind Kind) Token {
	if !kind.Paired() {
		panic("wikf: " + kind.String() + " is not a paired kind")
	}
	if kind == KindHeading {
		panic("wikf: use Heading to start a heading")
	}
	h.next++
	return Token{Kind: kind, ID: h.next}
}

// Heading returns a heading start token. Levels outside 1..6 panic.
func (h *Handles) Heading(level int) Token {
	if level < 1 || level > 6 {
		panic("wikf: heading level " + strconv.Itoa(level) + " out of range")
	}
	h.next++
	return Token{Kind: KindHeading, ID: h.next, Level: level}
}

// Hyperlink returns a wrapping Hyperlink start token.
func (h *Handles) Hyperlink(href string) Token {
	h.next++
	return Token{Kind: KindHyperlink, ID: h.next, Href: href, Text: href}
}
