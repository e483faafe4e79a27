// Package crawl discovers candidate product pages and spec-sheet PDFs per
// brand from static seeds, sitemaps and listing pages, and merges them into
// one deduplicated target list.
package crawl

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/kevinaugment/laserspechub/core"
	"github.com/kevinaugment/laserspechub/core/catalog"
	"github.com/kevinaugment/laserspechub/core/metrics"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	DefaultMaxChildSitemaps  = 3
	DefaultSitemapProductCap = 60
	DefaultSitemapPDFCap     = 20

	maxModelRunes = 40
	fallbackModel = "Model"
)

var (
	// Tolerates CDATA sections and surrounding whitespace.
	locRe          = regexp.MustCompile(`(?is)<loc>\s*(?:<!\[CDATA\[)?\s*(.*?)\s*(?:\]\]>)?\s*</loc>`)
	sitemapIndexRe = regexp.MustCompile(`(?i)<sitemapindex[\s>]`)
)

// Options configures a Discoverer. Zero caps use the defaults.
type Options struct {
	MaxChildSitemaps  int
	SitemapProductCap int
	SitemapPDFCap     int
	Logger            *slog.Logger
	Metrics           *metrics.Metrics
}

// Discoverer runs the discovery strategies against the brand catalog.
type Discoverer struct {
	catalog *catalog.Catalog
	policy  *Policy
	fetcher core.Fetcher
	opts    Options
	logger  *slog.Logger
}

// NewDiscoverer creates a Discoverer that fetches through f.
func NewDiscoverer(c *catalog.Catalog, f core.Fetcher, opts Options) *Discoverer {
	if opts.MaxChildSitemaps <= 0 {
		opts.MaxChildSitemaps = DefaultMaxChildSitemaps
	}
	if opts.SitemapProductCap <= 0 {
		opts.SitemapProductCap = DefaultSitemapProductCap
	}
	if opts.SitemapPDFCap <= 0 {
		opts.SitemapPDFCap = DefaultSitemapPDFCap
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Discoverer{
		catalog: c,
		policy:  NewPolicy(c),
		fetcher: f,
		opts:    opts,
		logger:  logger,
	}
}

// Discover returns the frozen target list: catalog seeds and extra seeds
// first, then sitemap and listing candidates, deduplicated by exact URL. A
// non-empty brand restricts both the crawl and the result to that brand.
func (d *Discoverer) Discover(ctx context.Context, brand string, extra []core.Target) []core.Target {
	seeds := append(d.catalog.Targets(), extra...)
	d.count(seeds)

	var sitemap []core.Target
	for _, b := range d.catalog.Brands {
		if !b.Sitemap || !brandMatches(b.Name, brand) {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		found, err := d.Sitemap(ctx, b)
		if err != nil {
			d.logger.Warn("sitemap discovery failed", "brand", b.Name, "error", err)
			continue
		}
		d.logger.Info("sitemap discovery", "brand", b.Name, "targets", len(found))
		d.count(found)
		sitemap = append(sitemap, found...)
	}

	var listed []core.Target
	for _, l := range d.catalog.Listings {
		if !brandMatches(l.Brand, brand) {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		found, err := d.Listing(ctx, l)
		if err != nil {
			d.logger.Warn("listing discovery failed", "brand", l.Brand, "url", l.URL, "error", err)
			continue
		}
		d.logger.Info("listing discovery", "brand", l.Brand, "url", l.URL, "targets", len(found))
		d.count(found)
		listed = append(listed, found...)
	}

	return FilterBrand(Merge(seeds, sitemap, listed), brand)
}

// Sitemap fetches base_url/sitemap.xml of b and returns product-like and
// spec-PDF-like URLs, each capped. A sitemap index is followed one level.
func (d *Discoverer) Sitemap(ctx context.Context, b catalog.Brand) ([]core.Target, error) {
	if b.BaseURL == "" {
		return nil, fmt.Errorf("brand %s has no base URL", b.Name)
	}
	root := strings.TrimSuffix(b.BaseURL, "/") + "/sitemap.xml"

	body, err := d.get(ctx, root)
	if err != nil {
		return nil, err
	}

	locs := ExtractLocs(body)
	if sitemapIndexRe.Match(body) {
		locs = d.followIndex(ctx, b.Name, locs)
	}

	seen := NewSeen()
	var products, pdfs []core.Target
	for _, loc := range locs {
		if !seen.Add(loc) {
			continue
		}
		switch {
		case IsLikelySpecPDF(loc) && d.policy.IsHostAllowed(loc, b.Name):
			if len(pdfs) < d.opts.SitemapPDFCap {
				pdfs = append(pdfs, newTarget(b.Name, loc, core.SourceSitemap))
			}
		case d.policy.IsLikelyProductURL(loc, b.Name):
			if len(products) < d.opts.SitemapProductCap {
				products = append(products, newTarget(b.Name, loc, core.SourceSitemap))
			}
		}
	}
	d.logger.Debug("sitemap scanned", "brand", b.Name, "locs", seen.Len(),
		"products", len(products), "pdfs", len(pdfs))
	return append(products, pdfs...), nil
}

// followIndex fetches up to MaxChildSitemaps children, product sitemaps
// first, and returns their combined locs. Failed children are skipped.
func (d *Discoverer) followIndex(ctx context.Context, brand string, children []string) []string {
	ordered := make([]string, len(children))
	copy(ordered, children)
	sort.SliceStable(ordered, func(i, j int) bool {
		return isProductSitemap(ordered[i]) && !isProductSitemap(ordered[j])
	})
	if len(ordered) > d.opts.MaxChildSitemaps {
		ordered = ordered[:d.opts.MaxChildSitemaps]
	}

	var locs []string
	for _, child := range ordered {
		if !d.policy.IsHostAllowed(child, brand) {
			continue
		}
		body, err := d.get(ctx, child)
		if err != nil {
			d.logger.Warn("child sitemap failed", "brand", brand, "url", child, "error", err)
			continue
		}
		locs = append(locs, ExtractLocs(body)...)
	}
	return locs
}

func (d *Discoverer) get(ctx context.Context, rawURL string) ([]byte, error) {
	res, err := d.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	return res.Body, nil
}

func (d *Discoverer) count(targets []core.Target) {
	for _, t := range targets {
		d.opts.Metrics.Discovered(t.Brand, string(t.Source), 1)
	}
}

// ExtractLocs returns the <loc> values of a sitemap or sitemap index with
// entities unescaped, in document order.
func ExtractLocs(body []byte) []string {
	var locs []string
	for _, m := range locRe.FindAllSubmatch(body, -1) {
		loc := strings.TrimSpace(html.UnescapeString(string(m[1])))
		if loc != "" {
			locs = append(locs, loc)
		}
	}
	return locs
}

// Merge concatenates the lists in order, keeping the first target per exact URL.
func Merge(lists ...[]core.Target) []core.Target {
	seen := NewSeen()
	var merged []core.Target
	for _, list := range lists {
		for _, t := range list {
			if seen.Add(t.URL) {
				merged = append(merged, t)
			}
		}
	}
	return merged
}

// FilterBrand keeps targets of brand (case-insensitive). Empty brand keeps all.
func FilterBrand(targets []core.Target, brand string) []core.Target {
	if strings.TrimSpace(brand) == "" {
		return targets
	}
	var out []core.Target
	for _, t := range targets {
		if brandMatches(t.Brand, brand) {
			out = append(out, t)
		}
	}
	return out
}

// ModelFromURL derives a display model name from the last path segment.
func ModelFromURL(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	seg := path.Base(strings.TrimSuffix(p, "/"))
	seg = strings.TrimSuffix(seg, path.Ext(seg))
	seg = strings.NewReplacer("-", " ", "_", " ").Replace(seg)
	seg = strings.Join(strings.Fields(seg), " ")
	if seg == "" || seg == "." || seg == "/" {
		return fallbackModel
	}

	model := cases.Title(language.English, cases.NoLower).String(seg)
	if r := []rune(model); len(r) > maxModelRunes {
		model = strings.TrimSpace(string(r[:maxModelRunes]))
	}
	return model
}

func newTarget(brand, rawURL string, src core.Source) core.Target {
	return core.Target{Brand: brand, Model: ModelFromURL(rawURL), URL: rawURL, Source: src}
}

func brandMatches(name, filter string) bool {
	filter = strings.TrimSpace(filter)
	return filter == "" || strings.EqualFold(strings.TrimSpace(name), filter)
}

func isProductSitemap(u string) bool {
	return strings.Contains(strings.ToLower(u), "product")
}
