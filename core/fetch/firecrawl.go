package fetch

import (
	"context"
	"fmt"

	"github.com/mendableai/firecrawl-go"
	"go.uber.org/zap"

	"github.com/gaurav-prasanna/shelfpipe/core"
)

// DefaultFirecrawlURL is the hosted scraping API.
const DefaultFirecrawlURL = "https://api.firecrawl.dev"

// scraper is the part of the Firecrawl SDK the fetcher uses.
type scraper interface {
	ScrapeURL(url string, params *firecrawl.ScrapeParams) (*firecrawl.FirecrawlDocument, error)
}

// FirecrawlFetcher asks the Firecrawl scraping service for a markdown rendering.
type FirecrawlFetcher struct {
	app     scraper
	initErr error
	logger  *zap.Logger
}

// NewFirecrawl creates a FirecrawlFetcher. An empty baseURL selects the hosted
// API. A missing API key is not reported here; every Fetch fails with it
// instead, so the run still produces one error row per URL.
func NewFirecrawl(apiKey, baseURL string, logger *zap.Logger) *FirecrawlFetcher {
	if baseURL == "" {
		baseURL = DefaultFirecrawlURL
	}
	f := &FirecrawlFetcher{logger: logger}
	app, err := firecrawl.NewFirecrawlApp(apiKey, baseURL)
	if err != nil {
		f.initErr = fmt.Errorf("initializing Firecrawl client: %w", err)
		return f
	}
	f.app = app
	return f
}

// Fetch scrapes url through Firecrawl. Transport and API failures are
// returned wrapped, without retries of our own.
func (f *FirecrawlFetcher) Fetch(ctx context.Context, url string) (*core.FetchResult, error) {
	if f.initErr != nil {
		return nil, f.initErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := f.app.ScrapeURL(url, &firecrawl.ScrapeParams{Formats: []string{"markdown"}})
	if err != nil {
		return nil, fmt.Errorf("scraping %s with Firecrawl: %w", url, err)
	}

	var markdown string
	if doc != nil {
		markdown = doc.Markdown
	}
	markdown, err = requireMarkdown(url, markdown)
	if err != nil {
		f.logger.Warn("firecrawl returned no markdown", zap.String("url", url))
		return nil, err
	}

	f.logger.Debug("firecrawl scrape complete", zap.String("url", url), zap.Int("bytes", len(markdown)))
	return &core.FetchResult{URL: url, Markdown: markdown}, nil
}
