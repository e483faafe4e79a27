// Package parse recovers a baseline equipment spec from any product page or
// spec-sheet text. Every heuristic is independent: a miss leaves its field nil
// and never blocks the others.
package parse

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/kevinaugment/laserspechub/core"
	"github.com/kevinaugment/laserspechub/core/extract"
	"github.com/kevinaugment/laserspechub/core/normalize"
)

const (
	DefaultMaxThickness    = 80
	DefaultMinWorkAreaSide = 500

	// minParagraphRunes skips breadcrumbs and labels when falling back to
	// the first paragraph for a description.
	minParagraphRunes = 30
)

var (
	ogImage       = cascadia.MustCompile(`meta[property="og:image"], meta[name="og:image"], meta[property="og:image:url"]`)
	ogDescription = cascadia.MustCompile(`meta[property="og:description"], meta[name="og:description"]`)
	metaDesc      = cascadia.MustCompile(`meta[name="description"], meta[name="Description"]`)
	pdfLinks      = cascadia.MustCompile(`a[href]`)
	paragraphs    = cascadia.MustCompile(`p`)

	specLinkKeywords = []string{"spec", "brochure", "data"}
)

// Options configures the sanity bounds applied while parsing.
type Options struct {
	// MaxThickness is the upper bound, in mm, of a plausible cutting thickness.
	MaxThickness float64
	// MinWorkAreaSide is the smallest accepted side of a work area, in mm.
	MinWorkAreaSide float64
	Logger          *slog.Logger
}

// DefaultOptions returns the default sanity bounds.
func DefaultOptions() Options {
	return Options{
		MaxThickness:    DefaultMaxThickness,
		MinWorkAreaSide: DefaultMinWorkAreaSide,
	}
}

// Parser applies the brand-agnostic heuristics.
type Parser struct {
	opts   Options
	md     *normalize.MarkdownNormalizer
	logger *slog.Logger
}

// New creates a Parser. Zero bounds fall back to the defaults.
func New(opts Options) *Parser {
	if opts.MaxThickness <= 0 {
		opts.MaxThickness = DefaultMaxThickness
	}
	if opts.MinWorkAreaSide <= 0 {
		opts.MinWorkAreaSide = DefaultMinWorkAreaSide
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{opts: opts, md: normalize.New(), logger: logger}
}

// MinWorkAreaSide returns the configured work-area bound.
func (p *Parser) MinWorkAreaSide() float64 {
	return p.opts.MinWorkAreaSide
}

// Parse extracts a draft from an HTML product page: text heuristics over the
// full visible text, page metadata and the cutting tables.
func (p *Parser) Parse(page *extract.Page) core.Draft {
	d := p.FromText(page.Text)

	if img, ok := page.Doc.FindMatcher(ogImage).First().Attr("content"); ok {
		if abs := page.Resolve(img); abs != "" {
			d.ImageURL = core.Ptr(abs)
		}
	}
	d.Description = p.description(page)
	d.SpecSheetURL = specSheetLink(page)

	d.Thickness, d.Speed = p.Tables(page.Doc, page.URL.String())
	return d
}

// FromText applies the text heuristics shared by HTML pages and PDF sheets.
func (p *Parser) FromText(text string) core.Draft {
	text = StripThousands(text)
	lower := strings.ToLower(text)

	var d core.Draft
	d.LaserType = LaserType(lower)
	d.PowerKW = Power(text)
	d.WorkAreaLength, d.WorkAreaWidth = WorkArea(text, p.opts.MinWorkAreaSide)
	d.MachineDimensions = Dimensions(text)
	d.ControlSystem = ControlSystem(lower)
	d.CoolingType = Cooling(lower)
	d.LaserSourceBrand = LaserSource(lower)
	d.PositioningAccuracy, d.RepositioningAccuracy = Accuracy(text)
	d.MaxSpeed = firstFloat(maxSpeedRe, text)
	d.Acceleration = firstFloat(accelerationRe, text)
	d.MachineWeight = firstFloat(weightRe, text)
	return d
}

func (p *Parser) description(page *extract.Page) *string {
	for _, m := range []goquery.Matcher{ogDescription, metaDesc} {
		if content, ok := page.Doc.FindMatcher(m).First().Attr("content"); ok {
			if desc := normalize.Description(content); desc != "" {
				return core.Ptr(desc)
			}
		}
	}

	var desc string
	page.Main.FindMatcher(paragraphs).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len([]rune(strings.TrimSpace(s.Text()))) < minParagraphRunes {
			return true
		}
		fragment, err := goquery.OuterHtml(s)
		if err != nil {
			return true
		}
		d, err := p.md.Description(fragment)
		if err != nil {
			p.logger.Debug("description conversion failed", "url", page.URL.String(), "error", err)
			return true
		}
		desc = d
		return desc == ""
	})
	if desc == "" {
		return nil
	}
	return core.Ptr(desc)
}

// specSheetLink finds a ".pdf" anchor whose text or href mentions a spec
// sheet, brochure or data sheet.
func specSheetLink(page *extract.Page) *string {
	var found string
	page.Doc.FindMatcher(pdfLinks).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		abs := page.Resolve(href)
		if abs == "" {
			return true
		}
		lowerHref := strings.ToLower(abs)
		if i := strings.IndexAny(lowerHref, "?#"); i >= 0 {
			lowerHref = lowerHref[:i]
		}
		if !strings.HasSuffix(lowerHref, ".pdf") {
			return true
		}
		label := strings.ToLower(s.Text()) + " " + lowerHref
		for _, k := range specLinkKeywords {
			if strings.Contains(label, k) {
				found = abs
				return false
			}
		}
		return true
	})
	if found == "" {
		return nil
	}
	return core.Ptr(found)
}

// Infer fills fields that follow from the final laser type: wavelength
// (Fiber 1070 nm, CO2 10600 nm) and the cooling default
// (Fiber water, CO2 air). Values already present are kept.
func Infer(d core.Draft) core.Draft {
	if d.LaserType == nil {
		return d
	}
	if d.Wavelength == nil {
		switch *d.LaserType {
		case core.LaserFiber:
			d.Wavelength = core.Ptr(1070.0)
		case core.LaserCO2:
			d.Wavelength = core.Ptr(10600.0)
		}
	}
	if d.CoolingType == nil {
		switch *d.LaserType {
		case core.LaserFiber:
			d.CoolingType = core.Ptr("Water")
		case core.LaserCO2:
			d.CoolingType = core.Ptr("Air")
		}
	}
	return d
}
