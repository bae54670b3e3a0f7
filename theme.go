package wikf

import (
	"sort"
	"strings"
)

// SGR sequences used by the built-in themes.
const (
	ansiReset     = "\x1b[0m"
	ansiBold      = "\x1b[1m"
	ansiFaint     = "\x1b[2m"
	ansiItalic    = "\x1b[3m"
	ansiUnderline = "\x1b[4m"
	ansiStrike    = "\x1b[9m"
)

// Style describes a terminal style as an ANSI prefix sequence.
type Style struct {
	Prefix string
}

// Styles groups the semantic styles used by the text renderer.
type Styles struct {
	Text        Style
	Heading     [6]Style
	Bold        Style
	Italic      Style
	Strike      Style
	Superscript Style
	Subscript   Style
	CodeInline  Style
	CodeBlock   Style
	Quote       Style
	ListMarker  Style
	LinkText    Style
	LinkURL     Style
	TableBorder Style
}

// Theme provides named styles for terminal rendering.
type Theme interface {
	Name() string
	Styles() Styles
}

type theme struct {
	name   string
	styles Styles
}

func (t theme) Name() string   { return t.name }
func (t theme) Styles() Styles { return t.styles }

// NewTheme returns a Theme from a Styles definition.
func NewTheme(name string, styles Styles) Theme {
	return theme{name: name, styles: styles}
}

func style(prefixes ...string) Style {
	var b strings.Builder
	for _, p := range prefixes {
		b.WriteString(p)
	}
	return Style{Prefix: b.String()}
}

func fg256(n string) string {
	return "\x1b[38;5;" + n + "m"
}

var builtinThemes = map[string]Theme{
	"default": theme{name: "default", styles: Styles{
		Heading: [6]Style{
			style(ansiBold, fg256("208")),
			style(ansiBold, fg256("214")),
			style(ansiBold, fg256("220")),
			style(fg256("226")),
			style(fg256("229")),
			style(fg256("230")),
		},
		Bold:        style(ansiBold),
		Italic:      style(ansiItalic),
		Strike:      style(ansiStrike),
		Superscript: style(fg256("111")),
		Subscript:   style(fg256("111")),
		CodeInline:  style(fg256("186")),
		CodeBlock:   style(fg256("250")),
		Quote:       style(ansiItalic, fg256("245")),
		ListMarker:  style(fg256("208")),
		LinkText:    style(ansiUnderline, fg256("75")),
		LinkURL:     style(fg256("244")),
		TableBorder: style(fg256("240")),
	}},
	"boring": theme{name: "boring", styles: Styles{
		Heading:    [6]Style{style(ansiBold), style(ansiBold), style(ansiBold), style(ansiBold), style(ansiBold), style(ansiBold)},
		Bold:       style(ansiBold),
		Italic:     style(ansiItalic),
		Strike:     style(ansiStrike),
		CodeInline: style(ansiFaint),
		LinkText:   style(ansiUnderline),
	}},
	"plain": theme{name: "plain"},
}

// AvailableThemes returns the names of built-in themes.
func AvailableThemes() []string {
	names := make([]string, 0, len(builtinThemes))
	for name := range builtinThemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ThemeByName returns a built-in theme by name.
func ThemeByName(name string) (Theme, bool) {
	if name == "" {
		return builtinThemes["default"], true
	}
	normalized := strings.ToLower(strings.TrimSpace(name))
	theme, ok := builtinThemes[normalized]
	return theme, ok
}

// DefaultTheme returns the default built-in theme.
func DefaultTheme() Theme {
	return builtinThemes["default"]
}
