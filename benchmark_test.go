package wikf

import (
	"bytes"
	"io"
	"os"
	"testing"
)

func mustReadSample(b *testing.B, path string) []byte {
	b.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		b.Fatalf("read %s: %v", path, err)
	}
	return bytes.Repeat(data, 50)
}

func BenchmarkRenderHTML(b *testing.B) {
	data := mustReadSample(b, "testdata/basic.wiki")
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	reader := bytes.NewReader(data)
	for i := 0; i < b.N; i++ {
		reader.Reset(data)
		_, _ = Render(RenderRequest{Reader: reader, Writer: io.Discard})
	}
}

func BenchmarkRenderText(b *testing.B) {
	data := mustReadSample(b, "testdata/basic.wiki")
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	reader := bytes.NewReader(data)
	for i := 0; i < b.N; i++ {
		reader.Reset(data)
		_ = RenderText(TextRenderRequest{
			Reader: reader,
			Writer: io.Discard,
			Width:  80,
			Theme:  DefaultTheme(),
		})
	}
}

func BenchmarkTokens(b *testing.B) {
	data := mustReadSample(b, "testdata/basic.wiki")
	b.ReportAllocs()
	reader := bytes.NewReader(data)
	for i := 0; i < b.N; i++ {
		reader.Reset(data)
		for _, err := range Tokens(reader) {
			if err != nil {
				b.Fatal(err)
			}
		}
	}
}
