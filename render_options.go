package wikf

import (
	"strings"
	"sync"
)

// RenderOption configures parsing and rendering.
type RenderOption func(*renderConfig)

// WordResolver maps a WikiWord to a link target. An empty result leaves the
// word unlinked.
type WordResolver func(word string) string

type renderConfig struct {
	osc8        bool
	frontMatter bool
	highlight   string
	schemes     []string
	imageExts   []string
	resolver    WordResolver
}

// WithOSC8 enables or disables OSC 8 hyperlinks in text output.
func WithOSC8(enabled bool) RenderOption {
	return func(cfg *renderConfig) {
		cfg.osc8 = enabled
	}
}

// WithFrontMatter enables turning a leading YAML front-matter block into Tag tokens.
func WithFrontMatter(enabled bool) RenderOption {
	return func(cfg *renderConfig) {
		cfg.frontMatter = enabled
	}
}

// WithCodeHighlight highlights code blocks with the named chroma style.
// An empty style disables highlighting.
func WithCodeHighlight(style string) RenderOption {
	return func(cfg *renderConfig) {
		cfg.highlight = strings.TrimSpace(style)
	}
}

// WithURLSchemes replaces the URL schemes recognized for bare and bracketed links.
func WithURLSchemes(schemes ...string) RenderOption {
	return func(cfg *renderConfig) {
		cfg.schemes = normalizeList(schemes, false)
	}
}

// WithImageExtensions replaces the file extensions that turn a link into an image.
func WithImageExtensions(exts ...string) RenderOption {
	return func(cfg *renderConfig) {
		cfg.imageExts = normalizeList(exts, true)
	}
}

// WithWordResolver sets the resolver used to link WikiWords.
func WithWordResolver(resolve WordResolver) RenderOption {
	return func(cfg *renderConfig) {
		cfg.resolver = resolve
	}
}

// WithWordBaseURL links every WikiWord to base followed by the word.
func WithWordBaseURL(base string) RenderOption {
	return func(cfg *renderConfig) {
		if base == "" {
			cfg.resolver = nil
			return
		}
		cfg.resolver = func(word string) string {
			return base + word
		}
	}
}

func buildConfig(opts []RenderOption) renderConfig {
	cfg := configPool.Get().(*renderConfig)
	*cfg = renderConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	out := *cfg
	*cfg = renderConfig{}
	configPool.Put(cfg)
	return out
}

var configPool = sync.Pool{
	New: func() any {
		return &renderConfig{}
	},
}

func normalizeList(values []string, dotted bool) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if dotted {
			if !strings.HasPrefix(v, ".") {
				v = "." + v
			}
		} else {
			v = strings.ToLower(strings.TrimSuffix(v, ":"))
		}
		out = append(out, v)
	}
	return out
}

// syntax holds the recognizer settings for one parse. It is never mutated
// once built.
type syntax struct {
	schemes   []string
	imageExts []string
	resolve   WordResolver
}

var defaultSyntax = sync.OnceValue(func() *syntax {
	return &syntax{
		schemes:   []string{"http", "https", "ftp"},
		imageExts: []string{".png", ".gif", ".jpg", ".jpeg"},
	}
})

func (cfg renderConfig) syntax() *syntax {
	if cfg.schemes == nil && cfg.imageExts == nil && cfg.resolver == nil {
		return defaultSyntax()
	}
	def := defaultSyntax()
	s := &syntax{schemes: def.schemes, imageExts: def.imageExts, resolve: cfg.resolver}
	if cfg.schemes != nil {
		s.schemes = cfg.schemes
	}
	if cfg.imageExts != nil {
		s.imageExts = cfg.imageExts
	}
	return s
}

func (s *syntax) isImage(name string) bool {
	for _, ext := range s.imageExts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
