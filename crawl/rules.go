// URL admission rules.
// Pure predicates used to filter the untrusted URLs found in sitemaps and listing pages.

package crawl

import (
	"net/url"
	"path"
	"strings"

	"github.com/kevinaugment/laserspechub/core/catalog"
)

// staticExtensions are file extensions that never point at a product page.
var staticExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".webp": true, ".ico": true, ".bmp": true,
	".css": true, ".js": true, ".mjs": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
	".mp4": true, ".webm": true, ".mp3": true, ".wav": true,
	".zip": true, ".tar": true, ".gz": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".xml": true, ".json": true, ".txt": true,
}

var (
	productKeywords = []string{"product", "products", "machines", "systems", "laser", "cutting", "engraving"}
	noiseKeywords   = []string{"contact", "about", "news", "sitemap", "category", "tag", "search", "download", "driver", "install", "support", "guide"}

	specPDFKeywords  = []string{"spec", "brochure", "data", "datasheet"}
	noisePDFKeywords = []string{"user", "guide", "manual", "driver", "install", "report"}
)

// Policy applies the catalog's per-brand host allow-lists and path constraints.
type Policy struct {
	hosts    map[string]map[string]bool
	mustHave map[string][]string
}

// NewPolicy builds a Policy from the brand catalog.
func NewPolicy(c *catalog.Catalog) *Policy {
	p := &Policy{
		hosts:    make(map[string]map[string]bool),
		mustHave: make(map[string][]string),
	}
	if c == nil {
		return p
	}
	for _, b := range c.Brands {
		key := strings.ToLower(b.Name)
		if len(b.Hosts) > 0 {
			allowed := make(map[string]bool, len(b.Hosts))
			for _, h := range b.Hosts {
				allowed[strings.ToLower(h)] = true
			}
			p.hosts[key] = allowed
		}
		for _, s := range b.PathMustContain {
			p.mustHave[key] = append(p.mustHave[key], strings.ToLower(s))
		}
	}
	return p
}

// IsHostAllowed reports whether rawURL's host may be crawled for brand.
// Brands without an allow-list accept any host.
func (p *Policy) IsHostAllowed(rawURL, brand string) bool {
	allowed, ok := p.hosts[strings.ToLower(brand)]
	if !ok {
		return true
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return allowed[strings.ToLower(parsed.Hostname())]
}

// IsLikelyProductURL reports whether rawURL looks like a product page of brand.
func (p *Policy) IsLikelyProductURL(rawURL, brand string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	if IsStaticAsset(rawURL) {
		return false
	}

	lowerPath := strings.ToLower(parsed.Path)
	if !containsAny(lowerPath, productKeywords) {
		return false
	}
	if containsAny(lowerPath+"?"+strings.ToLower(parsed.RawQuery), noiseKeywords) {
		return false
	}
	for _, s := range p.mustHave[strings.ToLower(brand)] {
		if !strings.Contains(lowerPath, s) {
			return false
		}
	}
	return p.IsHostAllowed(rawURL, brand)
}

// IsLikelySpecPDF reports whether rawURL is a spec-sheet or brochure PDF rather
// than a manual, driver or report.
func IsLikelySpecPDF(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	lowerPath := strings.ToLower(parsed.Path)
	if path.Ext(lowerPath) != ".pdf" {
		return false
	}
	return containsAny(lowerPath, specPDFKeywords) && !containsAny(lowerPath, noisePDFKeywords)
}

// IsStaticAsset checks if a URL points to a static asset (image, CSS, JS, etc.).
func IsStaticAsset(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(parsed.Path))
	return staticExtensions[ext]
}

// NormalizeURL strips fragments and trailing slashes. Used only to compare
// listing links against the listing page itself; dedup keys stay exact.
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

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
