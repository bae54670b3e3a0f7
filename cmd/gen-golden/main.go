package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pkt.systems/wikf"
)

// gen-golden renders every testdata/*.wiki file to a sibling .html golden
// file and, for files listed in textWidths, to .wNN.golden text files.
func main() {
	root := "testdata"
	if len(os.Args) > 1 {
		root = os.Args[1]
	}
	var paths []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() && strings.HasSuffix(path, ".wiki") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		fatalf("walk %s: %v", root, err)
	}
	if len(paths) == 0 {
		fatalf("no wiki files found under %s", root)
	}
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			fatalf("read %s: %v", path, err)
		}
		var out bytes.Buffer
		if _, err := wikf.Render(wikf.RenderRequest{
			Reader: bytes.NewReader(src),
			Writer: &out,
		}); err != nil {
			fatalf("render %s: %v", path, err)
		}
		writeGolden(strings.TrimSuffix(path, ".wiki")+".html", out.Bytes())

		for _, width := range textWidths[filepath.Base(path)] {
			out.Reset()
			if err := wikf.RenderText(wikf.TextRenderRequest{
				Reader: bytes.NewReader(src),
				Writer: &out,
				Width:  width,
				Theme:  plainTheme(),
			}); err != nil {
				fatalf("render text %s width %d: %v", path, width, err)
			}
			writeGolden(fmt.Sprintf("%s.w%d.golden", strings.TrimSuffix(path, ".wiki"), width), out.Bytes())
		}
	}
}

var textWidths = map[string][]int{
	"basic.wiki": {30},
}

func plainTheme() wikf.Theme {
	theme, _ := wikf.ThemeByName("plain")
	return theme
}

func writeGolden(path string, data []byte) {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fatalf("write %s: %v", path, err)
	}
	fmt.Fprintf(os.Stdout, "wrote %s\n", path)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
