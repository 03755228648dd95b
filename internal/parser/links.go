// Package parser implements the link-extraction boundary: it pulls
// outbound links (and page titles) from raw HTML. Nothing else in the
// document is interpreted.
package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/crawlforge/deepcrawl/internal/scope"
)

// Link is one extracted outbound link with its anchor text, which the
// best-first scorer can use as signal.
type Link struct {
	URL  string
	Text string
}

// ExtractLinks parses HTML and returns the absolute, normalized,
// deduplicated HTTP/HTTPS links it references, in document order.
func ExtractLinks(html, baseURL string) ([]Link, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	links := make([]Link, 0)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
			return
		}

		abs, err := scope.Normalize(href, baseURL)
		if err != nil {
			return
		}
		if !scope.IsValidURL(abs) {
			return
		}
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}

		links = append(links, Link{
			URL:  abs,
			Text: strings.TrimSpace(s.Text()),
		})
	})

	return links, nil
}

// ExtractTitle returns the document title, or empty when there is none.
func ExtractTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
