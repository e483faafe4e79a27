package crawl

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kevinaugment/laserspechub/core"
	"github.com/kevinaugment/laserspechub/core/catalog"
	"github.com/kevinaugment/laserspechub/core/fetch"
)

// Listing fetches a product listing page and returns the links matching the
// listing's pattern and the brand's host policy, up to the listing's max.
func (d *Discoverer) Listing(ctx context.Context, l catalog.ListingSource) ([]core.Target, error) {
	doc, err := fetch.FetchPage(ctx, d.fetcher, l.URL)
	if err != nil {
		return nil, fmt.Errorf("fetching listing: %w", err)
	}

	self := NormalizeURL(l.URL)
	seen := NewSeen()
	var targets []core.Target
	for _, link := range extractLinks(doc, l.URL) {
		if len(targets) >= l.Max {
			break
		}
		if !l.Matches(link) || !d.policy.IsHostAllowed(link, l.Brand) {
			continue
		}
		if IsStaticAsset(link) || NormalizeURL(link) == self {
			continue
		}
		if seen.Add(link) {
			targets = append(targets, newTarget(l.Brand, link, core.SourceListing))
		}
	}
	return targets, nil
}

// extractLinks extracts all href values from <a> tags, resolving relative URLs.
func extractLinks(doc *goquery.Document, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if resolved := resolveURL(strings.TrimSpace(href), base); resolved != "" {
			links = append(links, resolved)
		}
	})
	return links
}

// resolveURL resolves a potentially relative URL against a base.
func resolveURL(href string, base *url.URL) string {
	if href == "" {
		return ""
	}
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "javascript:") ||
		strings.HasPrefix(lower, "tel:") || strings.HasPrefix(href, "#") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(parsed)
	resolved.Fragment = ""
	return resolved.String()
}
