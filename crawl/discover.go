// Package crawl discovers the product-listing pages of a storefront so they
// can be fed to a batch run. It reads sitemap.xml first and falls back to a
// same-domain breadth-first link crawl.
package crawl

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/gaurav-prasanna/shelfpipe/core"
)

const (
	defaultMaxPages = 100
	// maxSitemaps bounds how many nested sitemaps of a sitemap index are read.
	maxSitemaps = 20
)

// sitemapDoc covers both <urlset> and <sitemapindex> roots.
type sitemapDoc struct {
	URLs     []sitemapLoc `xml:"url"`
	Sitemaps []sitemapLoc `xml:"sitemap"`
}

type sitemapLoc struct {
	Loc string `xml:"loc"`
}

// Discoverer finds listing pages using an HTML-returning Fetcher.
type Discoverer struct {
	fetcher  core.Fetcher
	maxPages int
	logger   *zap.Logger
}

// NewDiscoverer creates a Discoverer. maxPages caps the link crawl; zero
// means the default of 100.
func NewDiscoverer(fetcher core.Fetcher, maxPages int, logger *zap.Logger) *Discoverer {
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	return &Discoverer{fetcher: fetcher, maxPages: maxPages, logger: logger}
}

// DiscoverListings returns the listing-page URLs reachable from baseURL,
// deduplicated and in discovery order.
func (d *Discoverer) DiscoverListings(ctx context.Context, baseURL string) ([]string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid URL: %s (must include scheme, e.g. https://example.com)", baseURL)
	}
	domain := parsed.Host

	sitemapURL := fmt.Sprintf("%s://%s/sitemap.xml", parsed.Scheme, domain)
	urls, err := d.fromSitemap(ctx, sitemapURL, domain)
	if err != nil {
		d.logger.Debug("sitemap unavailable, crawling links", zap.String("sitemap", sitemapURL), zap.Error(err))
	}
	if len(urls) > 0 {
		return urls, nil
	}

	return d.fromLinks(ctx, baseURL, domain), nil
}

// fromSitemap reads sitemapURL, following one level of sitemap index.
func (d *Discoverer) fromSitemap(ctx context.Context, sitemapURL, domain string) ([]string, error) {
	doc, err := d.readSitemap(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	found := NewFrontier()
	collect := func(locs []sitemapLoc) {
		for _, u := range locs {
			if IsSameDomain(u.Loc, domain) && !IsStaticAsset(u.Loc) && IsListingPath(u.Loc) {
				found.Push(NormalizeURL(u.Loc))
			}
		}
	}
	collect(doc.URLs)

	for i, child := range doc.Sitemaps {
		if i >= maxSitemaps {
			break
		}
		nested, err := d.readSitemap(ctx, child.Loc)
		if err != nil {
			d.logger.Debug("skipping nested sitemap", zap.String("sitemap", child.Loc), zap.Error(err))
			continue
		}
		collect(nested.URLs)
	}
	return found.All(), nil
}

func (d *Discoverer) readSitemap(ctx context.Context, sitemapURL string) (*sitemapDoc, error) {
	result, err := d.fetcher.Fetch(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}
	var doc sitemapDoc
	if err := xml.Unmarshal([]byte(result.HTML), &doc); err != nil {
		return nil, fmt.Errorf("parsing sitemap %s: %w", sitemapURL, err)
	}
	return &doc, nil
}

// fromLinks crawls same-domain pages breadth-first and keeps the listing ones.
// The start page is always crawled but only reported if it is a listing.
func (d *Discoverer) fromLinks(ctx context.Context, startURL, domain string) []string {
	queue := NewFrontier()
	queue.Push(NormalizeURL(startURL))
	listings := NewFrontier()

	for queue.HasNext() && queue.Popped() < d.maxPages {
		if ctx.Err() != nil {
			break
		}
		current := queue.Pop()

		result, err := d.fetcher.Fetch(ctx, current)
		if err != nil {
			d.logger.Debug("skipping page", zap.String("url", current), zap.Error(err))
			continue
		}
		if IsListingPath(current) {
			listings.Push(current)
		}

		links, err := extractLinks(result.HTML, current)
		if err != nil {
			continue
		}
		for _, link := range links {
			if IsSameDomain(link, domain) && !IsStaticAsset(link) {
				queue.Push(NormalizeURL(link))
			}
		}
	}

	return listings.All()
}

// extractLinks extracts all href values from <a> tags, resolving relative URLs.
func extractLinks(html string, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	var links []string

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if resolved := resolveURL(href, base); resolved != "" {
			links = append(links, resolved)
		}
	})

	return links, nil
}

// resolveURL resolves a potentially relative URL against a base.
func resolveURL(href string, base *url.URL) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	for _, scheme := range []string{"mailto:", "javascript:", "tel:"} {
		if strings.HasPrefix(href, scheme) {
			return ""
		}
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(parsed)
	resolved.Fragment = ""
	return resolved.String()
}
