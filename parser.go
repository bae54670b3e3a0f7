package wikf

import (
	"strings"
	"unicode"
)

// parser turns lines into block tokens. One parser serves one parse at a time.
type parser struct {
	lines lineReader
	lexer inlineLexer
	ids   Handles
	para  strings.Builder
	cfg   renderConfig
}

type blockParser func(emit emitFunc) error

func (p *parser) reset(cfg renderConfig) {
	p.cfg = cfg
	p.ids = Handles{}
	p.lexer = inlineLexer{syn: cfg.syntax(), ids: &p.ids}
	p.para.Reset()
}

func (p *parser) run(emit emitFunc) error {
	if p.cfg.frontMatter {
		if err := p.parseFrontMatter(emit); err != nil {
			return err
		}
	}
	for p.lines.hasMore() {
		line := trimRight(p.lines.read())
		if line == "" {
			if err := p.flushParagraph(emit); err != nil {
				return err
			}
			continue
		}
		p.lines.unread(line)
		if block := p.findBlock(line); block != nil {
			if p.para.Len() > 0 {
				// close the paragraph first, then see this line again
				p.lines.unread("")
				continue
			}
			if err := block(emit); err != nil {
				return err
			}
			continue
		}
		p.lines.read()
		if p.para.Len() > 0 {
			p.para.WriteByte(' ')
		}
		p.para.WriteString(strings.TrimLeftFunc(line, unicode.IsSpace))
	}
	if err := p.flushParagraph(emit); err != nil {
		return err
	}
	return p.lines.err()
}

func (p *parser) flushParagraph(emit emitFunc) error {
	if p.para.Len() == 0 {
		return nil
	}
	text := p.para.String()
	p.para.Reset()
	para := p.ids.Start(KindParagraph)
	if err := emit(para); err != nil {
		return err
	}
	if err := p.lexer.lex(text, emit); err != nil {
		return err
	}
	return emit(EndToken(para))
}

// findBlock selects the block parser for line, or nil for paragraph text.
func (p *parser) findBlock(line string) blockParser {
	if line == codeFenceOpen {
		tracer().Debugf("block: code fence")
		return p.parseCode
	}
	if isTableRow(line) {
		tracer().Debugf("block: table")
		return p.parseTable
	}
	if key, value, ok := matchTag(line); ok {
		tracer().Debugf("block: tag %q", key)
		return func(emit emitFunc) error {
			p.lines.read()
			return emit(TagToken(key, value))
		}
	}
	if level, text, ok := matchHeading(line); ok {
		tracer().Debugf("block: heading level %d", level)
		return func(emit emitFunc) error {
			p.lines.read()
			h := p.ids.Heading(level)
			return emitAll(emit, h, TextToken(text), EndToken(h))
		}
	}
	if spaces := leadingSpaces(line); spaces > 0 {
		if isListMarker(line[spaces]) {
			tracer().Debugf("block: list")
			return p.parseList
		}
		tracer().Debugf("block: quote")
		return p.parseQuote
	}
	return nil
}

func trimRight(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}

func leadingSpaces(s string) int {
	n := 0
	for n < len(s) && s[n] == ' ' {
		n++
	}
	return n
}
