package wikf

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// FetchRequest configures Fetch.
type FetchRequest struct {
	URL    string
	Client *http.Client
}

// HTTPRenderRequest configures HTTPRender.
type HTTPRenderRequest struct {
	URL     string
	Client  *http.Client
	Writer  io.Writer
	Options []RenderOption
}

// Fetch opens a wiki page over HTTP(S). The caller closes the body.
func Fetch(ctx context.Context, req FetchRequest) (io.ReadCloser, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("fetch: URL is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	client := req.Client
	if client == nil {
		client = http.DefaultClient
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}
	if httpReq.URL.Scheme != "http" && httpReq.URL.Scheme != "https" {
		return nil, fmt.Errorf("fetch: unsupported scheme %q", httpReq.URL.Scheme)
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch: request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("fetch: %s: status %s", req.URL, resp.Status)
	}
	return resp.Body, nil
}

// HTTPRender fetches a wiki page over HTTP(S) and renders it as HTML.
func HTTPRender(ctx context.Context, req HTTPRenderRequest) (RenderResult, error) {
	if req.Writer == nil {
		return RenderResult{}, fmt.Errorf("http render: writer is nil")
	}
	body, err := Fetch(ctx, FetchRequest{URL: req.URL, Client: req.Client})
	if err != nil {
		return RenderResult{}, err
	}
	defer body.Close()
	return Render(RenderRequest{
		Reader:  body,
		Writer:  req.Writer,
		Options: req.Options,
	})
}
