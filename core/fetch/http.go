package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gaurav-prasanna/shelfpipe/core"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "shelfpipe/1.0 (+https://github.com/gaurav-prasanna/shelfpipe)"
)

// HTTPFetcher fetches pages directly over HTTP and converts them locally.
type HTTPFetcher struct {
	client    *http.Client
	converter Converter
	userAgent string
}

// NewHTTP creates an HTTPFetcher. A nil converter yields HTML-only results,
// which is what link discovery needs.
func NewHTTP(converter Converter, userAgent string, timeout time.Duration) *HTTPFetcher {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		converter: converter,
		userAgent: userAgent,
	}
}

// Fetch retrieves the HTML of url and, when a converter is set, its Markdown.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*core.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	result := &core.FetchResult{
		URL:        url,
		StatusCode: resp.StatusCode,
		HTML:       string(body),
	}
	if f.converter == nil {
		return result, nil
	}

	markdown, err := f.converter.Normalize(result.HTML)
	if err != nil {
		return nil, fmt.Errorf("normalizing %s: %w", url, err)
	}
	if result.Markdown, err = requireMarkdown(url, markdown); err != nil {
		return nil, err
	}
	return result, nil
}
