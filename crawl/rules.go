package crawl

import (
	"net/url"
	"path"
	"strings"
)

// staticExtensions are file extensions never worth fetching.
var staticExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".webp": true, ".ico": true, ".avif": true,
	".css": true, ".js": true, ".mjs": true, ".json": true,
	".woff": true, ".woff2": true, ".ttf": true,
	".mp4": true, ".webm": true, ".mp3": true,
	".zip": true, ".gz": true, ".xml": true,
	".pdf": true, ".xls": true, ".xlsx": true, ".csv": true,
}

// listingSegments are path segments storefront platforms use for category
// and collection pages (Shopify, WooCommerce, BigCommerce and friends).
var listingSegments = map[string]bool{
	"collections":      true,
	"collection":       true,
	"category":         true,
	"categories":       true,
	"product-category": true,
	"catalog":          true,
	"shop":             true,
	"c":                true,
}

// IsSameDomain checks if the given URL belongs to the specified host.
func IsSameDomain(rawURL string, domain string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(parsed.Host, domain)
}

// IsStaticAsset checks if a URL points to a static asset or feed.
func IsStaticAsset(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return staticExtensions[strings.ToLower(path.Ext(parsed.Path))]
}

// IsListingPath reports whether rawURL looks like a page listing many
// products rather than a single product detail page. "/products" counts
// only as the last segment; "/products/<handle>" is a detail page.
func IsListingPath(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	segments := strings.Split(strings.Trim(strings.ToLower(parsed.Path), "/"), "/")
	for i, seg := range segments {
		if listingSegments[seg] {
			return true
		}
		if seg == "products" && i == len(segments)-1 {
			return true
		}
	}
	return false
}

// NormalizeURL strips fragments and trailing slashes for deduplication.
func NormalizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	parsed.Fragment = ""
	if parsed.Path != "/" {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	}
	return parsed.String()
}
