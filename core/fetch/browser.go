package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/gaurav-prasanna/shelfpipe/core"
)

const defaultRenderTimeout = 60 * time.Second

// BrowserFetcher renders pages in headless Chrome before conversion, for
// storefronts that build their product grid client-side.
type BrowserFetcher struct {
	converter Converter
	chromeBin string
	userAgent string
	timeout   time.Duration
	settle    time.Duration
	logger    *zap.Logger
}

// NewBrowser creates a BrowserFetcher. chromeBin may be empty to let
// chromedp locate the browser.
func NewBrowser(converter Converter, chromeBin, userAgent string, timeout time.Duration, logger *zap.Logger) *BrowserFetcher {
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if timeout <= 0 {
		timeout = defaultRenderTimeout
	}
	return &BrowserFetcher{
		converter: converter,
		chromeBin: chromeBin,
		userAgent: userAgent,
		timeout:   timeout,
		settle:    2 * time.Second,
		logger:    logger,
	}
}

// Fetch starts a browser for url, waits for the body and converts the rendered DOM.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (*core.FetchResult, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(f.userAgent),
		chromedp.WindowSize(1440, 900),
	)
	if f.chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(f.chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelTab()

	runCtx, cancelRun := context.WithTimeout(tabCtx, f.timeout)
	defer cancelRun()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(f.settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", url, err)
	}
	f.logger.Debug("browser render complete", zap.String("url", url), zap.Int("bytes", len(html)))

	markdown, err := f.converter.Normalize(html)
	if err != nil {
		return nil, fmt.Errorf("normalizing %s: %w", url, err)
	}
	if markdown, err = requireMarkdown(url, markdown); err != nil {
		return nil, err
	}

	return &core.FetchResult{URL: url, HTML: html, Markdown: markdown}, nil
}
