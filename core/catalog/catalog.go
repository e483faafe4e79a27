// Package catalog holds the closed brand vocabulary and everything the crawler
// knows about each brand up front: origin country, trusted hosts, sitemap and
// listing entry points, and static seed pages.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/kevinaugment/laserspechub/core"
	"gopkg.in/yaml.v3"
)

//go:embed brands.yaml
var defaultCatalog []byte

// defaultListingMax caps a listing source that does not set max.
const defaultListingMax = 40

// Brand describes one manufacturer.
type Brand struct {
	Name             string   `yaml:"name"`
	Country          string   `yaml:"country"`
	BaseURL          string   `yaml:"base_url"`
	Sitemap          bool     `yaml:"sitemap"`
	Hosts            []string `yaml:"hosts"`
	PathMustContain  []string `yaml:"path_must_contain"`
	NoiseURLPatterns []string `yaml:"noise_url_patterns"`
}

// ListingSource is a product listing page whose links are harvested.
type ListingSource struct {
	Brand   string `yaml:"brand"`
	URL     string `yaml:"url"`
	Pattern string `yaml:"pattern"`
	Max     int    `yaml:"max"`

	re *regexp.Regexp
}

// Matches reports whether href matches the listing's link pattern.
func (l ListingSource) Matches(href string) bool {
	if l.re == nil {
		return false
	}
	return l.re.MatchString(href)
}

// Seed is a statically known product page.
type Seed struct {
	Brand string `yaml:"brand"`
	Model string `yaml:"model"`
	URL   string `yaml:"url"`
}

// Catalog is the parsed brand catalog.
type Catalog struct {
	Brands   []Brand         `yaml:"brands"`
	Listings []ListingSource `yaml:"listings"`
	Seeds    []Seed          `yaml:"seeds"`

	byName map[string]int
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from path, or returns the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading brand catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding brand catalog: %w", err)
	}

	c.byName = make(map[string]int, len(c.Brands))
	for i, b := range c.Brands {
		key := normalizeName(b.Name)
		if key == "" {
			return nil, fmt.Errorf("brand #%d has no name", i+1)
		}
		if _, dup := c.byName[key]; dup {
			return nil, fmt.Errorf("duplicate brand %q", b.Name)
		}
		c.byName[key] = i
	}

	for i := range c.Listings {
		l := &c.Listings[i]
		name, ok := c.Canonical(l.Brand)
		if !ok {
			return nil, fmt.Errorf("listing %s: unknown brand %q", l.URL, l.Brand)
		}
		l.Brand = name
		re, err := regexp.Compile(l.Pattern)
		if err != nil {
			return nil, fmt.Errorf("listing %s: bad pattern: %w", l.URL, err)
		}
		l.re = re
		if l.Max <= 0 {
			l.Max = defaultListingMax
		}
	}

	for i := range c.Seeds {
		s := &c.Seeds[i]
		name, ok := c.Canonical(s.Brand)
		if !ok {
			return nil, fmt.Errorf("seed %s: unknown brand %q", s.URL, s.Brand)
		}
		s.Brand = name
	}

	return &c, nil
}

// Brand looks a brand up by name, ignoring case and surrounding space.
func (c *Catalog) Brand(name string) (Brand, bool) {
	i, ok := c.byName[normalizeName(name)]
	if !ok {
		return Brand{}, false
	}
	return c.Brands[i], true
}

// Canonical returns the catalog spelling of a brand name.
func (c *Catalog) Canonical(name string) (string, bool) {
	b, ok := c.Brand(name)
	return b.Name, ok
}

// Country returns the brand's origin country, or "" when unknown.
func (c *Catalog) Country(name string) string {
	b, _ := c.Brand(name)
	return b.Country
}

// Targets returns the static seeds as crawl targets, in catalog order.
func (c *Catalog) Targets() []core.Target {
	targets := make([]core.Target, 0, len(c.Seeds))
	for _, s := range c.Seeds {
		model := s.Model
		if model == "" {
			model = "Model"
		}
		targets = append(targets, core.Target{
			Brand:  s.Brand,
			Model:  model,
			URL:    s.URL,
			Source: core.SourceSeed,
		})
	}
	return targets
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
