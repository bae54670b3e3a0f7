package wikf

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestTagWriter(t *testing.T) {
	var out bytes.Buffer
	w := NewHTMLWriter(&out)
	require.NoError(t, w.OpenTag("a", html.Attribute{Key: "href", Val: `x"y`}))
	require.NoError(t, w.WriteEscaped("<b>"))
	require.NoError(t, w.OpenTag("img", html.Attribute{Key: "src", Val: "a.png"}))
	assert.Equal(t, 2, w.Depth())
	require.NoError(t, w.CloseTag())
	require.NoError(t, w.CloseTag())
	assert.Equal(t, 0, w.Depth())
	assert.Equal(t, `<a href="x&#34;y">&lt;b&gt;<img src="a.png" /></a>`, out.String())

	err := w.CloseTag()
	assert.True(t, errors.Is(err, ErrUnbalanced), "got %v", err)
}

type brokenWriter struct {
	calls int
}

func (b *brokenWriter) Write(p []byte) (int, error) {
	b.calls++
	return 0, errors.New("disk full")
}

func TestTagWriterErrorSticks(t *testing.T) {
	bw := &brokenWriter{}
	w := NewHTMLWriter(bw)
	assert.EqualError(t, w.WriteRaw("x"), "disk full")
	assert.EqualError(t, w.OpenTag("p"), "disk full")
	assert.EqualError(t, w.WriteEscaped("y"), "disk full")
	assert.Equal(t, 1, bw.calls)
}
