package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"pkt.systems/version"
	"pkt.systems/wikf"
)

const (
	defaultThemeName = "default"
	defaultWidth     = 80
	configName       = "wikf"
)

func init() {
	version.SetDefaultModule("pkt.systems/wikf")
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// options is the resolved command line and config file state.
type options struct {
	format      string
	output      string
	width       int
	theme       string
	osc8        string
	sanitize    bool
	highlight   string
	wordBase    string
	frontMatter bool
	strict      bool
	debug       bool
	schemes     []string
	imageExts   []string
}

func newFlagSet(stderr io.Writer) *pflag.FlagSet {
	flags := pflag.NewFlagSet("wikf", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.String("format", "html", "Output format: html|text")
	flags.StringP("output", "o", "", "Output file instead of stdout")
	flags.IntP("width", "w", 0, "Text width (0 uses terminal width if available)")
	flags.StringP("theme", "t", defaultThemeName, "Theme name for text output")
	flags.StringP("osc8", "8", "auto", "OSC8 hyperlinks in text output: auto|on|off")
	flags.Bool("list-themes", false, "List available themes")
	flags.Bool("sanitize", false, "Sanitize HTML output with a user-content policy")
	flags.String("highlight", "", "Highlight code blocks with the named chroma style")
	flags.String("word-base", "", "Link WikiWords to this URL prefix")
	flags.Bool("front-matter", false, "Turn a leading YAML block into metadata tags")
	flags.Bool("strict", false, "Refuse binary or invalid UTF-8 input")
	flags.String("config", "", "Config file (default ./wikf.yaml or $XDG_CONFIG_HOME/wikf/wikf.yaml)")
	flags.Bool("debug", false, "Trace parsing and rendering to stderr")
	flags.Bool("version", false, "Print version and exit")
	flags.SetInterspersed(true)
	flags.Usage = func() {
		fmt.Fprintln(stderr, version.Module(), version.Current())
		fmt.Fprintf(stderr, "Usage: wikf [flags] [inputs...]\n")
		fmt.Fprintln(stderr, "\nInputs are files, file:// or http(s):// URLs. Without inputs, markup is read from stdin.")
		fmt.Fprintln(stderr, "\nFlags:")
		flags.PrintDefaults()
	}
	return flags
}

// loadOptions merges flags over the config file over defaults.
func loadOptions(flags *pflag.FlagSet) (options, error) {
	v := viper.New()
	if err := v.BindPFlags(flags); err != nil {
		return options{}, err
	}
	v.SetDefault("syntax.schemes", []string{})
	v.SetDefault("syntax.image_extensions", []string{})
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(normalizePath(path))
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, configName))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return options{}, fmt.Errorf("config: %w", err)
		}
	}
	return options{
		format:      strings.ToLower(strings.TrimSpace(v.GetString("format"))),
		output:      v.GetString("output"),
		width:       v.GetInt("width"),
		theme:       v.GetString("theme"),
		osc8:        v.GetString("osc8"),
		sanitize:    v.GetBool("sanitize"),
		highlight:   v.GetString("highlight"),
		wordBase:    v.GetString("word-base"),
		frontMatter: v.GetBool("front-matter"),
		strict:      v.GetBool("strict"),
		debug:       v.GetBool("debug"),
		schemes:     v.GetStringSlice("syntax.schemes"),
		imageExts:   v.GetStringSlice("syntax.image_extensions"),
	}, nil
}

func (o options) renderOptions() []wikf.RenderOption {
	opts := []wikf.RenderOption{
		wikf.WithFrontMatter(o.frontMatter),
		wikf.WithCodeHighlight(o.highlight),
		wikf.WithWordBaseURL(o.wordBase),
	}
	if len(o.schemes) > 0 {
		opts = append(opts, wikf.WithURLSchemes(o.schemes...))
	}
	if len(o.imageExts) > 0 {
		opts = append(opts, wikf.WithImageExtensions(o.imageExts...))
	}
	return opts
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := newFlagSet(stderr)
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if ok, _ := flags.GetBool("version"); ok {
		fmt.Fprintln(stdout, version.Module(), version.Current())
		return 0
	}
	if ok, _ := flags.GetBool("list-themes"); ok {
		printThemes(stdout)
		return 0
	}
	opts, err := loadOptions(flags)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 2
	}
	if opts.debug {
		enableTracing()
	}
	if opts.format != "html" && opts.format != "text" {
		fmt.Fprintf(stderr, "invalid --format %q: expected html|text\n", opts.format)
		return 2
	}

	reader, closer, err := openInputs(flags.Args(), stdin)
	if err != nil {
		fmt.Fprintf(stderr, "open input: %v\n", err)
		return 1
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}
	if opts.strict {
		src, err := io.ReadAll(reader)
		if err != nil {
			fmt.Fprintf(stderr, "read input: %v\n", err)
			return 1
		}
		if err := wikf.ValidateInput(src); err != nil {
			fmt.Fprintf(stderr, "input rejected: %v\n", err)
			return 1
		}
		reader = bytes.NewReader(src)
	}

	writer, closeOut, err := resolveOutput(opts.output, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "open output: %v\n", err)
		return 1
	}
	if closeOut != nil {
		defer func() { _ = closeOut.Close() }()
	}

	if opts.format == "text" {
		return renderText(reader, writer, opts, stderr)
	}
	return renderHTML(reader, writer, opts, stderr)
}

func renderHTML(r io.Reader, w io.Writer, opts options, stderr io.Writer) int {
	out := w
	var buf bytes.Buffer
	if opts.sanitize {
		out = &buf
	}
	res, err := wikf.Render(wikf.RenderRequest{
		Reader:  r,
		Writer:  out,
		Options: opts.renderOptions(),
	})
	if err != nil {
		fmt.Fprintf(stderr, "render: %v\n", err)
		return 1
	}
	if opts.sanitize {
		if err := bluemonday.UGCPolicy().SanitizeReaderToWriter(&buf, w); err != nil {
			fmt.Fprintf(stderr, "sanitize: %v\n", err)
			return 1
		}
	}
	for _, tag := range res.Tags {
		tracing.Select("wikf.cli").Infof("tag %s = %s", tag.Key, tag.Value)
	}
	return 0
}

func renderText(r io.Reader, w io.Writer, opts options, stderr io.Writer) int {
	theme, ok := wikf.ThemeByName(opts.theme)
	if !ok {
		fmt.Fprintf(stderr, "unknown theme %q\n\n", opts.theme)
		printThemes(stderr)
		return 2
	}
	osc8, err := resolveOSC8(opts.osc8)
	if err != nil {
		fmt.Fprintf(stderr, "invalid --osc8 %q: %v\n", opts.osc8, err)
		return 2
	}
	if !isTerminal(w) && opts.osc8 == "auto" {
		osc8 = false
	}
	if err := wikf.RenderText(wikf.TextRenderRequest{
		Reader:  r,
		Writer:  w,
		Width:   resolveWidth(opts.width),
		Theme:   theme,
		Options: append(opts.renderOptions(), wikf.WithOSC8(osc8)),
	}); err != nil {
		fmt.Fprintf(stderr, "render: %v\n", err)
		return 1
	}
	return 0
}

func enableTracing() {
	tracing.SetTraceSelector(tracing.SelectorForAdapter(gologadapter.GetAdapter()))
	tracing.Select("wikf.parse").SetTraceLevel(tracing.LevelDebug)
}

func printThemes(w io.Writer) {
	for _, name := range wikf.AvailableThemes() {
		fmt.Fprintln(w, name)
	}
}

func resolveWidth(width int) int {
	if width > 0 {
		return width
	}
	return terminalWidth(defaultWidth)
}

func terminalWidth(fallback int) int {
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			return w
		}
	}
	if value := os.Getenv("COLUMNS"); value != "" {
		if w, err := strconv.Atoi(value); err == nil && w > 0 {
			return w
		}
	}
	return fallback
}

func resolveOSC8(mode string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		return wikf.DetectOSC8Support(), nil
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("expected auto|on|off")
	}
}

type inputSource struct {
	open func() (io.Reader, io.Closer, error)
}

// multiInputReader reads its sources one after another. A line break is
// inserted between sources so the last line of one input never runs into
// the first line of the next.
type multiInputReader struct {
	sources   []inputSource
	idx       int
	cur       io.Reader
	curCloser io.Closer
	sep       bool
	closed    bool
}

func (m *multiInputReader) Read(p []byte) (int, error) {
	for {
		if m.closed {
			return 0, io.EOF
		}
		if m.sep {
			if len(p) == 0 {
				return 0, nil
			}
			m.sep = false
			p[0] = '\n'
			return 1, nil
		}
		if m.cur == nil {
			if m.idx >= len(m.sources) {
				m.closed = true
				return 0, io.EOF
			}
			reader, closer, err := m.sources[m.idx].open()
			if err != nil {
				return 0, err
			}
			m.cur = reader
			m.curCloser = closer
			m.idx++
		}
		n, err := m.cur.Read(p)
		if n > 0 {
			return n, nil
		}
		if err == io.EOF {
			if m.curCloser != nil {
				_ = m.curCloser.Close()
			}
			m.cur = nil
			m.curCloser = nil
			m.sep = m.idx < len(m.sources)
			continue
		}
		if err != nil {
			return 0, err
		}
	}
}

func (m *multiInputReader) Close() error {
	m.closed = true
	if m.curCloser != nil {
		return m.curCloser.Close()
	}
	return nil
}

func openInputs(args []string, stdin io.Reader) (io.Reader, io.Closer, error) {
	if len(args) == 0 {
		return stdin, nil, nil
	}
	sources := make([]inputSource, 0, len(args))
	for _, raw := range args {
		src, err := makeInputSource(raw)
		if err != nil {
			return nil, nil, err
		}
		sources = append(sources, src)
	}
	m := &multiInputReader{sources: sources}
	return m, m, nil
}

func makeInputSource(raw string) (inputSource, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return inputSource{}, fmt.Errorf("empty input argument")
	}
	u, err := url.Parse(raw)
	if err == nil && u.Scheme != "" {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return inputSource{open: func() (io.Reader, io.Closer, error) {
				body, err := wikf.Fetch(context.Background(), wikf.FetchRequest{URL: raw})
				if err != nil {
					return nil, nil, err
				}
				return body, body, nil
			}}, nil
		case "file":
			path := u.Path
			if path == "" {
				path = u.Host
			}
			if unescaped, err := url.PathUnescape(path); err == nil {
				path = unescaped
			}
			return inputSource{open: func() (io.Reader, io.Closer, error) {
				return openFile(path)
			}}, nil
		}
	}
	return inputSource{open: func() (io.Reader, io.Closer, error) {
		return openFile(raw)
	}}, nil
}

func openFile(path string) (io.Reader, io.Closer, error) {
	f, err := os.Open(normalizePath(path))
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func resolveOutput(path string, stdout io.Writer) (io.Writer, io.Closer, error) {
	if strings.TrimSpace(path) == "" {
		return stdout, nil, nil
	}
	clean := normalizePath(path)
	dir := filepath.Dir(clean)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}
	f, err := os.Create(clean)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func normalizePath(path string) string {
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			if path == "~" {
				path = home
			} else {
				path = filepath.Join(home, path[2:])
			}
		}
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		return abs
	}
	return path
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
