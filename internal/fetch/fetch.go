// Package fetch retrieves upstream gadget specs and message files over HTTP.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultMaxBody   = 4 << 20
	defaultUserAgent = "appcomposer/1.0"
)

// HTTPFetcher fetches URLs with a bounded timeout and body size. Upstream
// gadget servers are not always well behaved; the cap keeps a runaway
// response from exhausting memory.
type HTTPFetcher struct {
	client    *http.Client
	maxBody   int64
	userAgent string
}

// FetchOption configures the fetcher.
type FetchOption func(*HTTPFetcher)

// WithClient overrides the HTTP client.
func WithClient(client *http.Client) FetchOption {
	return func(f *HTTPFetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithMaxBody caps the accepted response size in bytes.
func WithMaxBody(limit int64) FetchOption {
	return func(f *HTTPFetcher) {
		if limit > 0 {
			f.maxBody = limit
		}
	}
}

// NewHTTPFetcher creates a fetcher with sane defaults.
func NewHTTPFetcher(opts ...FetchOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:    &http.Client{Timeout: defaultTimeout},
		maxBody:   defaultMaxBody,
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves the URL and returns the response body. Non-2xx responses
// are errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: building request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: requesting %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch: %s returned status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("fetch: reading %s: %w", url, err)
	}
	if int64(len(body)) > f.maxBody {
		return nil, fmt.Errorf("fetch: %s exceeds %d byte limit", url, f.maxBody)
	}
	return body, nil
}
