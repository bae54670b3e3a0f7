package wikf

import (
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"github.com/emirpasic/gods/stacks/arraystack"
)

const (
	codeFenceOpen  = "{{{"
	codeFenceClose = "}}}"
	cellDelim      = "||"
	bulletMarker   = '*'
	numberMarker   = '#'
)

// patternTimeout bounds a single block-shape match. A timed out match is
// treated as no match.
const patternTimeout = 250 * time.Millisecond

type blockPatterns struct {
	tag     *regexp2.Regexp
	heading *regexp2.Regexp
	cells   *regexp2.Regexp
}

var patterns = sync.OnceValue(func() *blockPatterns {
	opts := regexp2.RegexOptions(regexp2.IgnoreCase | regexp2.Singleline | regexp2.ExplicitCapture)
	p := &blockPatterns{
		tag:     regexp2.MustCompile(`^\#\s*(?<k>[a-z]+)(\s+(?<v>.+))?$`, opts),
		heading: regexp2.MustCompile(`^(?<h>=+)\s*(?<t>.+?)\s*=+$`, opts),
		cells:   regexp2.MustCompile(`\|\|((?<t>.+?)\|\|)+`, opts),
	}
	for _, re := range []*regexp2.Regexp{p.tag, p.heading, p.cells} {
		re.MatchTimeout = patternTimeout
	}
	return p
})

func groupString(m *regexp2.Match, name string) string {
	g := m.GroupByName(name)
	if g == nil || len(g.Captures) == 0 {
		return ""
	}
	return g.String()
}

// matchTag matches a metadata line "#key value".
func matchTag(line string) (key, value string, ok bool) {
	if !strings.HasPrefix(line, "#") {
		return "", "", false
	}
	m, err := patterns().tag.FindStringMatch(line)
	if err != nil || m == nil {
		return "", "", false
	}
	return groupString(m, "k"), groupString(m, "v"), true
}

// matchHeading matches "== text ==". Marker runs longer than six are not headings.
func matchHeading(line string) (level int, text string, ok bool) {
	if !strings.HasPrefix(line, "=") || !strings.HasSuffix(line, "=") {
		return 0, "", false
	}
	m, err := patterns().heading.FindStringMatch(line)
	if err != nil || m == nil {
		return 0, "", false
	}
	level = len(groupString(m, "h"))
	if level < 1 || level > 6 {
		return 0, "", false
	}
	return level, groupString(m, "t"), true
}

func isTableRow(line string) bool {
	return len(line) > 4 && strings.HasPrefix(line, cellDelim) && strings.HasSuffix(line, cellDelim)
}

func tableCells(line string) []string {
	m, err := patterns().cells.FindStringMatch(line)
	if err != nil || m == nil {
		return nil
	}
	g := m.GroupByName("t")
	if g == nil {
		return nil
	}
	cells := make([]string, 0, len(g.Captures))
	for _, c := range g.Captures {
		cells = append(cells, strings.TrimSpace(c.String()))
	}
	return cells
}

func isListMarker(c byte) bool {
	return c == bulletMarker || c == numberMarker
}

func (p *parser) parseCode(emit emitFunc) error {
	p.lines.read()
	depth := 1
	var code strings.Builder
	for p.lines.hasMore() {
		line := p.lines.read()
		switch line {
		case codeFenceOpen:
			depth++
		case codeFenceClose:
			depth--
		}
		if depth == 0 {
			break
		}
		code.WriteString(line)
		code.WriteByte('\n')
	}
	if code.Len() == 0 {
		return nil
	}
	return emit(CodeToken(code.String()))
}

func (p *parser) parseTable(emit emitFunc) error {
	table := p.ids.Start(KindTable)
	if err := emit(table); err != nil {
		return err
	}
	for p.lines.hasMore() {
		line := trimRight(p.lines.read())
		if !isTableRow(line) {
			p.lines.unread(line)
			break
		}
		row := p.ids.Start(KindRow)
		if err := emit(row); err != nil {
			return err
		}
		for _, content := range tableCells(line) {
			cell := p.ids.Start(KindCell)
			if err := emit(cell); err != nil {
				return err
			}
			if err := p.lexer.lex(content, emit); err != nil {
				return err
			}
			if err := emit(EndToken(cell)); err != nil {
				return err
			}
		}
		if err := emit(EndToken(row)); err != nil {
			return err
		}
	}
	return emit(EndToken(table))
}

type openList struct {
	token  Token
	indent int
}

// parseList follows indentation: deeper lines open a nested list, shallower
// lines close lists until the indentation fits, and an unindented line ends
// all lists.
func (p *parser) parseList(emit emitFunc) error {
	lists := arraystack.New()
	lists.Push(openList{indent: 0})
	top := func() openList {
		v, _ := lists.Peek()
		return v.(openList)
	}
	for p.lines.hasMore() {
		line := trimRight(p.lines.read())
		indent := leadingSpaces(line)
		if indent == 0 {
			p.lines.unread(line)
			break
		}
		body := strings.TrimLeftFunc(line, unicode.IsSpace)
		if indent > top().indent {
			kind := KindBulletedList
			if body[0] == numberMarker {
				kind = KindNumberedList
			}
			list := p.ids.Start(kind)
			if err := emit(list); err != nil {
				return err
			}
			lists.Push(openList{token: list, indent: indent})
			p.lines.unread(line)
			continue
		}
		if indent < top().indent {
			for top().indent > indent {
				v, _ := lists.Pop()
				if err := emit(EndToken(v.(openList).token)); err != nil {
					return err
				}
			}
			p.lines.unread(line)
			continue
		}
		if isListMarker(body[0]) {
			body = strings.TrimLeftFunc(body[1:], unicode.IsSpace)
		}
		item := p.ids.Start(KindListItem)
		if err := emit(item); err != nil {
			return err
		}
		if err := p.lexer.lex(body, emit); err != nil {
			return err
		}
		if err := emit(EndToken(item)); err != nil {
			return err
		}
	}
	for lists.Size() > 1 {
		v, _ := lists.Pop()
		if err := emit(EndToken(v.(openList).token)); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) parseQuote(emit emitFunc) error {
	var text strings.Builder
	for p.lines.hasMore() {
		line := trimRight(p.lines.read())
		if r, _ := utf8.DecodeRuneInString(line); line == "" || !unicode.IsSpace(r) {
			p.lines.unread(line)
			break
		}
		if spaces := leadingSpaces(line); spaces > 0 && text.Len() > 0 && isListMarker(line[spaces]) {
			p.lines.unread(line)
			break
		}
		if text.Len() > 0 {
			text.WriteByte(' ')
		}
		text.WriteString(strings.TrimLeftFunc(line, unicode.IsSpace))
	}
	quote := p.ids.Start(KindQuote)
	if err := emit(quote); err != nil {
		return err
	}
	if err := p.lexer.lex(text.String(), emit); err != nil {
		return err
	}
	return emit(EndToken(quote))
}
