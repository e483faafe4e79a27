package adapters

import (
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kevinaugment/laserspechub/core"
	"github.com/kevinaugment/laserspechub/core/extract"
	"github.com/kevinaugment/laserspechub/core/parse"
)

const mmPerInch = 25.4

// Default returns the registry of shipped brand adapters. minWorkAreaSide is
// the bound applied to work areas read from free text.
func Default(minWorkAreaSide float64, logger *slog.Logger) *Registry {
	r := NewRegistry(logger)
	r.Register("Bodor", AdapterFunc(fiberOnly))
	r.Register("HSG", AdapterFunc(fiberOnly))
	r.Register("Trumpf", trumpf{minWorkAreaSide: minWorkAreaSide})
	r.Register("Epilog", AdapterFunc(epilog))
	r.Register("Trotec", AdapterFunc(trotec))
	return r
}

// fiberOnly serves brands that only build fiber cutters. Power is re-read
// from the main container so "30 kW" in a navigation teaser is ignored.
func fiberOnly(page *extract.Page) (core.Draft, error) {
	return core.Draft{
		LaserType: core.Ptr(core.LaserFiber),
		PowerKW:   parse.Power(page.MainText),
	}, nil
}

type trumpf struct {
	minWorkAreaSide float64
}

// Override keeps Trumpf's fiber default unless the product copy says CO2,
// names the model after the page heading and scopes the work area to <main>.
func (t trumpf) Override(page *extract.Page) (core.Draft, error) {
	var d core.Draft
	if strings.Contains(page.MainText, "co2") || strings.Contains(page.MainText, "co₂") {
		d.LaserType = core.Ptr(core.LaserCO2)
	} else {
		d.LaserType = core.Ptr(core.LaserFiber)
	}
	if h1 := page.H1(); h1 != "" {
		d.Model = core.Ptr(h1)
	}
	d.WorkAreaLength, d.WorkAreaWidth = parse.WorkArea(parse.StripThousands(page.MainText), t.minWorkAreaSide)
	return d, nil
}

var inchPairRe = regexp.MustCompile(`(?i)(\d{1,3}(?:\.\d+)?)\s*(?:"|”|''|in\b|inch(?:es)?\b)\s*[x×]\s*(\d{1,3}(?:\.\d+)?)\s*(?:"|”|''|in\b|inch(?:es)?\b)`)

// epilog builds CO2 engravers (plus a fiber line) and publishes work areas
// in inches.
func epilog(page *extract.Page) (core.Draft, error) {
	var d core.Draft
	heading := strings.ToLower(page.H1() + " " + page.Title)
	if strings.Contains(heading, "fiber") {
		d.LaserType = core.Ptr(core.LaserFiber)
	} else {
		d.LaserType = core.Ptr(core.LaserCO2)
	}

	if m := inchPairRe.FindStringSubmatch(page.Text); m != nil {
		d.WorkAreaLength = inchesToMM(m[1])
		d.WorkAreaWidth = inchesToMM(m[2])
	}
	return d, nil
}

func inchesToMM(s string) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return core.Ptr(math.Round(v * mmPerInch))
}

// trotec reads the labelled "working area" entry of the technical data list.
func trotec(page *extract.Page) (core.Draft, error) {
	var d core.Draft
	value := labelledValue(page.Doc, "working area", "work area")
	if value == "" {
		return d, nil
	}
	// The label makes the value trustworthy, so small engravers are allowed.
	d.WorkAreaLength, d.WorkAreaWidth = parse.WorkArea(parse.StripThousands(value), 1)
	return d, nil
}

// labelledValue returns the text of the dd or td that follows the first dt
// or th whose text contains one of labels.
func labelledValue(doc *goquery.Document, labels ...string) string {
	var value string
	doc.Find("dt, th").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		label := strings.ToLower(s.Text())
		for _, l := range labels {
			if !strings.Contains(label, l) {
				continue
			}
			next := "dd"
			if goquery.NodeName(s) == "th" {
				next = "td"
			}
			value = strings.Join(strings.Fields(s.NextFiltered(next).Text()), " ")
			return value == ""
		}
		return true
	})
	return value
}
