package wikf

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type emitFunc func(Token) error

// inlineLexer splits a run of text into inline tokens.
//
// At every position the alternatives below are tried in order and the first
// one that matches wins; when none matches the scan moves one rune ahead.
// Matches never overlap. Spans are re-scanned recursively, which gives
// nesting of different delimiter kinds without a balanced-bracket parser.
type inlineLexer struct {
	syn *syntax
	ids *Handles
}

type inlineAlt uint8

const (
	altSpan inlineAlt = iota
	altSub
	altLink
	altURL
	altEscapedWord
	altWord
)

type inlineMatch struct {
	alt   inlineAlt
	kind  Kind
	start int
	end   int
	inner string
}

type delimSpan struct {
	open, close string
	kind        Kind
}

// delimSpans lists the lazily closed spans in priority order.
var delimSpans = [...]delimSpan{
	{"`", "`", KindMonospace},
	{"{{{", "}}}", KindMonospace},
	{"*", "*", KindBold},
	{"_", "_", KindItalic},
	{"~~", "~~", KindStrike},
	{"^", "^", KindSuperscript},
}

const (
	subscriptDelim  = ",,"
	maxSubscriptLen = 40
	urlPunct        = "\"'}]|:,.)?!"
)

func (lx *inlineLexer) lex(text string, emit emitFunc) error {
	index := 0
	pos := 0
	for pos < len(text) {
		m, ok := lx.matchAt(text, pos)
		if !ok {
			_, size := utf8.DecodeRuneInString(text[pos:])
			pos += size
			continue
		}
		if m.start > index {
			if err := emit(TextToken(text[index:m.start])); err != nil {
				return err
			}
		}
		if err := lx.emitMatch(m, emit); err != nil {
			return err
		}
		index = m.end
		pos = m.end
	}
	if index < len(text) {
		return emit(TextToken(text[index:]))
	}
	return nil
}

func (lx *inlineLexer) matchAt(text string, pos int) (inlineMatch, bool) {
	if m, ok := matchSpan(text, pos); ok {
		return m, true
	}
	if m, ok := matchSubscript(text, pos); ok {
		return m, true
	}
	if m, ok := lx.matchLink(text, pos); ok {
		return m, true
	}
	if m, ok := lx.matchURL(text, pos); ok {
		return m, true
	}
	if text[pos] == '!' {
		if n := wikiWordLen(text, pos+1); n > 0 {
			return inlineMatch{alt: altEscapedWord, start: pos, end: pos + 1 + n, inner: text[pos : pos+1+n]}, true
		}
		return inlineMatch{}, false
	}
	if pos > 0 && text[pos-1] == '[' {
		return inlineMatch{}, false
	}
	if n := wikiWordLen(text, pos); n > 0 {
		return inlineMatch{alt: altWord, start: pos, end: pos + n, inner: text[pos : pos+n]}, true
	}
	return inlineMatch{}, false
}

func (lx *inlineLexer) emitMatch(m inlineMatch, emit emitFunc) error {
	switch m.alt {
	case altEscapedWord:
		return emit(TextToken(m.inner[1:]))
	case altWord:
		url := ""
		if lx.syn.resolve != nil {
			url = lx.syn.resolve(m.inner)
		}
		return emit(WordToken(m.inner, "", url))
	case altURL:
		if lx.syn.isImage(m.inner) {
			return emit(ImageToken(m.inner, ""))
		}
		link := lx.ids.Hyperlink(m.inner)
		return emitAll(emit, link, TextToken(m.inner), EndToken(link))
	case altLink:
		return lx.emitLink(m.inner, emit)
	}
	if m.inner == "" {
		return nil
	}
	start := lx.ids.Start(m.kind)
	if err := emit(start); err != nil {
		return err
	}
	if m.kind == KindMonospace {
		if err := emit(TextToken(m.inner)); err != nil {
			return err
		}
	} else if err := lx.lex(m.inner, emit); err != nil {
		return err
	}
	return emit(EndToken(start))
}

func (lx *inlineLexer) emitLink(inner string, emit emitFunc) error {
	target, label := inner, ""
	if i := strings.IndexFunc(inner, unicode.IsSpace); i >= 0 {
		target, label = inner[:i], strings.TrimSpace(inner[i:])
	}
	if label == "" {
		return nil
	}
	link := lx.ids.Hyperlink(target)
	if err := emit(link); err != nil {
		return err
	}
	if lx.syn.isImage(label) {
		if err := emit(ImageToken(label, "")); err != nil {
			return err
		}
	} else if err := lx.lex(label, emit); err != nil {
		return err
	}
	return emit(EndToken(link))
}

func emitAll(emit emitFunc, toks ...Token) error {
	for _, tok := range toks {
		if err := emit(tok); err != nil {
			return err
		}
	}
	return nil
}

// matchSpan matches the delimiter spans, each closed by the nearest closing delimiter.
func matchSpan(text string, pos int) (inlineMatch, bool) {
	for _, d := range delimSpans {
		if !strings.HasPrefix(text[pos:], d.open) {
			continue
		}
		from := pos + len(d.open)
		j := strings.Index(text[from:], d.close)
		if j < 0 {
			continue
		}
		return inlineMatch{
			alt:   altSpan,
			kind:  d.kind,
			start: pos,
			end:   from + j + len(d.close),
			inner: text[from : from+j],
		}, true
	}
	return inlineMatch{}, false
}

// matchSubscript matches ,,x,, where x is 1 to 40 runes without a comma.
func matchSubscript(text string, pos int) (inlineMatch, bool) {
	if !strings.HasPrefix(text[pos:], subscriptDelim) {
		return inlineMatch{}, false
	}
	from := pos + len(subscriptDelim)
	i, n := from, 0
	for i < len(text) && text[i] != ',' {
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
		n++
	}
	if n == 0 || n > maxSubscriptLen || !strings.HasPrefix(text[i:], subscriptDelim) {
		return inlineMatch{}, false
	}
	return inlineMatch{alt: altSpan, kind: KindSubscript, start: pos, end: i + len(subscriptDelim), inner: text[from:i]}, true
}

// matchLink matches [target label]. The target begins with a known scheme
// and a colon, or with a WikiWord, and has at least one more character.
// The label runs to the first closing bracket.
func (lx *inlineLexer) matchLink(text string, pos int) (inlineMatch, bool) {
	if text[pos] != '[' {
		return inlineMatch{}, false
	}
	from := pos + 1
	targetEnd := skipWhile(text, from, func(r rune) bool { return !unicode.IsSpace(r) })
	if !lx.linkTarget(text[from:targetEnd]) {
		return inlineMatch{}, false
	}
	labelStart := skipWhile(text, targetEnd, unicode.IsSpace)
	if labelStart == targetEnd {
		return inlineMatch{}, false
	}
	j := strings.IndexByte(text[labelStart:], ']')
	if j < 0 {
		return inlineMatch{}, false
	}
	if j == 0 {
		// the label may only consist of borrowed whitespace
		_, size := utf8.DecodeLastRuneInString(text[targetEnd:labelStart])
		if labelStart-size == targetEnd {
			return inlineMatch{}, false
		}
	}
	closing := labelStart + j
	return inlineMatch{alt: altLink, start: pos, end: closing + 1, inner: text[from:closing]}, true
}

func (lx *inlineLexer) linkTarget(run string) bool {
	for _, scheme := range lx.syn.schemes {
		n := len(scheme)
		if len(run) > n+1 && run[n] == ':' && strings.EqualFold(run[:n], scheme) {
			return true
		}
	}
	n := shortestWikiWordLen(run)
	return n > 0 && len(run) > n
}

// matchURL matches a bare URL with a known scheme. It must not follow a word
// character, and punctuation is only included when followed by a URL character.
func (lx *inlineLexer) matchURL(text string, pos int) (inlineMatch, bool) {
	if pos > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:pos])
		if isWordRune(r) {
			return inlineMatch{}, false
		}
	}
	for _, scheme := range lx.syn.schemes {
		n := len(scheme)
		if len(text)-pos <= n || text[pos+n] != ':' || !strings.EqualFold(text[pos:pos+n], scheme) {
			continue
		}
		from := pos + n + 1
		i := from
		for i < len(text) {
			r, size := utf8.DecodeRuneInString(text[i:])
			if isURLRune(r) {
				i += size
				continue
			}
			if strings.ContainsRune(urlPunct, r) && i+size < len(text) {
				if r2, size2 := utf8.DecodeRuneInString(text[i+size:]); isURLRune(r2) {
					i += size + size2
					continue
				}
			}
			break
		}
		if i == from {
			continue
		}
		return inlineMatch{alt: altURL, start: pos, end: i, inner: text[pos:i]}, true
	}
	return inlineMatch{}, false
}

func isURLRune(r rune) bool {
	return !unicode.IsSpace(r) && r != '<' && !strings.ContainsRune(urlPunct, r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Pc, r)
}

func skipWhile(text string, i int, f func(rune) bool) int {
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !f(r) {
			break
		}
		i += size
	}
	return i
}

// wikiSegment returns the end of an ASCII [A-Z][a-z]+ segment at i, or -1.
func wikiSegment(s string, i int) int {
	if i >= len(s) || s[i] < 'A' || s[i] > 'Z' {
		return -1
	}
	j := i + 1
	for j < len(s) && s[j] >= 'a' && s[j] <= 'z' {
		j++
	}
	if j == i+1 {
		return -1
	}
	return j
}

// wikiWordLen returns the length of the longest WikiWord at i, or 0.
// A WikiWord is two or more capitalized segments: FooBar, WikiWordName.
func wikiWordLen(s string, i int) int {
	j := wikiSegment(s, i)
	if j < 0 {
		return 0
	}
	segments := 1
	for {
		k := wikiSegment(s, j)
		if k < 0 {
			break
		}
		j = k
		segments++
	}
	if segments < 2 {
		return 0
	}
	return j - i
}

// shortestWikiWordLen returns the length of the shortest WikiWord prefix of s, or 0.
func shortestWikiWordLen(s string) int {
	j := wikiSegment(s, 0)
	if j < 0 || j+1 >= len(s) || s[j] < 'A' || s[j] > 'Z' || s[j+1] < 'a' || s[j+1] > 'z' {
		return 0
	}
	return j + 2
}
