package feeds

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var feedLinkTypes = map[string]bool{
	"application/rss+xml":   true,
	"application/atom+xml":  true,
	"application/feed+json": true,
}

// DiscoverFeedURL scans an HTML page for an advertised feed link
// (<link rel="alternate" type="application/rss+xml" ...>) and resolves it
// against the page URL. Returns false when the body is not parseable HTML or
// advertises no feed.
func DiscoverFeedURL(pageURL string, body []byte) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", false
	}

	var href string
	doc.Find(`link[rel="alternate"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		typ, _ := sel.Attr("type")
		if !feedLinkTypes[strings.ToLower(strings.TrimSpace(typ))] {
			return true
		}
		if h, ok := sel.Attr("href"); ok && strings.TrimSpace(h) != "" {
			href = strings.TrimSpace(h)
			return false
		}
		return true
	})

	if href == "" {
		return "", false
	}
	return resolveRef(href, pageURL), true
}

// resolveRef resolves a possibly relative URL against a base URL.
func resolveRef(raw, base string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if parsed.IsAbs() {
		return parsed.String()
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return raw
	}
	return baseURL.ResolveReference(parsed).String()
}
