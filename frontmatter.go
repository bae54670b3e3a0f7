package wikf

import (
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	frontMatterDelim    = "---"
	maxFrontMatterLines = 512
)

// parseFrontMatter consumes a leading YAML mapping between two "---" lines
// and emits one Tag per key. Anything that is not such a block is pushed back
// untouched.
func (p *parser) parseFrontMatter(emit emitFunc) error {
	if !p.lines.hasMore() || trimRight(p.lines.peek()) != frontMatterDelim {
		return nil
	}
	consumed := []string{p.lines.read()}
	closed := false
	for p.lines.hasMore() && len(consumed) <= maxFrontMatterLines {
		line := p.lines.read()
		consumed = append(consumed, line)
		if trimRight(line) == frontMatterDelim {
			closed = true
			break
		}
	}
	var tags []Token
	if closed {
		tags = frontMatterTags(strings.Join(consumed[1:len(consumed)-1], "\n"))
	}
	if tags == nil {
		for i := len(consumed) - 1; i >= 0; i-- {
			p.lines.unread(consumed[i])
		}
		return nil
	}
	tracer().Debugf("front matter: %d tags", len(tags))
	return emitAll(emit, tags...)
}

func frontMatterTags(body string) []Token {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(body), &doc); err != nil {
		tracer().Debugf("front matter: %v", err)
		return nil
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil
	}
	m := doc.Content[0]
	tags := make([]Token, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, val := m.Content[i], m.Content[i+1]
		tags = append(tags, TagToken(key.Value, yamlValue(val)))
	}
	return tags
}

func yamlValue(n *yaml.Node) string {
	if n.Kind == yaml.ScalarNode {
		return n.Value
	}
	n.Style = yaml.FlowStyle
	out, err := yaml.Marshal(n)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
