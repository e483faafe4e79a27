package parse

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

var (
	tables = cascadia.MustCompile(`table`)
	rows   = cascadia.MustCompile(`tr`)
	cells  = cascadia.MustCompile(`th, td`)
)

type material struct {
	name string
	re   *regexp.Regexp
	near *regexp.Regexp
}

// materials are listed in detection priority: "stainless steel" is stainless.
var materials = []material{
	newMaterial("stainless", `stainless(?:\s+steel)?|\binox\b`),
	newMaterial("aluminum", `alumini?um`),
	newMaterial("brass", `\bbrass\b`),
	newMaterial("copper", `\bcopper\b`),
	newMaterial("steel", `(?:carbon\s+|mild\s+)?steel|\bms\b`),
}

func newMaterial(name, keyword string) material {
	return material{
		name: name,
		re:   regexp.MustCompile(`(?i)(?:` + keyword + `)`),
		near: regexp.MustCompile(`(?i)(?:` + keyword + `)[^0-9]{0,40}?(?:\d+(?:\.\d+)?\s*[-~–]\s*)?(\d+(?:\.\d+)?)\s*mm\b`),
	}
}

var stainlessTail = regexp.MustCompile(`(?i)stainless\s*$`)

// matches returns the matches of re in text, dropping "steel" hits
// that belong to "stainless steel".
func (m material) matches(text string, re *regexp.Regexp) [][]int {
	all := re.FindAllStringSubmatchIndex(text, -1)
	if m.name != "steel" {
		return all
	}
	kept := all[:0]
	for _, loc := range all {
		if !stainlessTail.MatchString(text[:loc[0]]) {
			kept = append(kept, loc)
		}
	}
	return kept
}

// DetectMaterial returns the highest-priority material mentioned in text.
func DetectMaterial(text string) string {
	for _, m := range materials {
		if len(m.matches(text, m.re)) > 0 {
			return m.name
		}
	}
	return ""
}

func mentionedMaterials(text string) []string {
	var names []string
	for _, m := range materials {
		if len(m.matches(text, m.re)) > 0 {
			names = append(names, m.name)
		}
	}
	return names
}

// Tables walks every <table> of doc and returns the thickness map (max mm
// per material) and the speed map (max m/min per "material_Nmm" key).
// Maps without entries are returned as nil.
func (p *Parser) Tables(doc *goquery.Document, pageURL string) (thickness, speed map[string]float64) {
	thickness = make(map[string]float64)
	speed = make(map[string]float64)

	doc.FindMatcher(tables).Each(func(_ int, table *goquery.Selection) {
		// Header rows name the material for the speed rows below them.
		current := ""
		table.FindMatcher(rows).Each(func(_ int, row *goquery.Selection) {
			var parts []string
			row.FindMatcher(cells).Each(func(_ int, c *goquery.Selection) {
				parts = append(parts, c.Text())
			})
			text := StripThousands(strings.Join(strings.Fields(strings.Join(parts, " ")), " "))
			if text == "" {
				return
			}

			rowMaterial := DetectMaterial(text)
			if rowMaterial != "" {
				current = rowMaterial
			}

			if sp := speedRe.FindStringSubmatch(text); sp != nil {
				p.speedRow(text, sp, current, speed, pageURL)
				return
			}
			if rowMaterial != "" {
				p.thicknessRow(text, thickness, pageURL)
			}
		})
	})

	if len(thickness) == 0 {
		thickness = nil
	}
	if len(speed) == 0 {
		speed = nil
	}
	return thickness, speed
}

func (p *Parser) speedRow(text string, sp []string, mat string, speed map[string]float64, pageURL string) {
	if mat == "" {
		return
	}
	mm := mmRe.FindStringSubmatch(speedRe.ReplaceAllString(text, " "))
	if mm == nil {
		return
	}
	t := parseFloat(mm[1])
	v := parseFloat(sp[1])
	if t == nil || v == nil {
		return
	}
	if !p.inRange(*t) {
		p.logger.Debug("thickness out of range, dropped",
			"url", pageURL, "material", mat, "value", *t, "max", p.opts.MaxThickness)
		return
	}
	mpm, ok := ConvertSpeed(*v, sp[2])
	if !ok {
		return
	}
	key := mat + "_" + formatMM(*t) + "mm"
	if cur, ok := speed[key]; !ok || mpm > cur {
		speed[key] = mpm
	}
}

func (p *Parser) thicknessRow(text string, thickness map[string]float64, pageURL string) {
	mentioned := mentionedMaterials(text)
	if len(mentioned) > 1 {
		// "Steel 25 mm / Stainless 12 mm" rows pair each material with the
		// value that follows it.
		for name, v := range p.nearby(text, pageURL) {
			if v > thickness[name] {
				thickness[name] = v
			}
		}
		return
	}

	mat := mentioned[0]
	best := 0.0
	for _, m := range mmRe.FindAllStringSubmatch(text, -1) {
		v := parseFloat(m[1])
		if v == nil {
			continue
		}
		if !p.inRange(*v) {
			p.logger.Debug("thickness out of range, dropped",
				"url", pageURL, "material", mat, "value", *v, "max", p.opts.MaxThickness)
			continue
		}
		if *v > best {
			best = *v
		}
	}
	if best > thickness[mat] {
		thickness[mat] = best
	}
}

// MaterialThickness approximates a thickness table from unstructured text by
// pairing each material keyword with the nearest following mm value.
func (p *Parser) MaterialThickness(text string) map[string]float64 {
	out := p.nearby(StripThousands(text), "")
	if len(out) == 0 {
		return nil
	}
	return out
}

func (p *Parser) nearby(text, source string) map[string]float64 {
	text = speedRe.ReplaceAllString(text, " ")
	out := make(map[string]float64)
	for _, m := range materials {
		for _, loc := range m.matches(text, m.near) {
			v := parseFloat(text[loc[2]:loc[3]])
			if v == nil {
				continue
			}
			if !p.inRange(*v) {
				p.logger.Debug("thickness out of range, dropped",
					"url", source, "material", m.name, "value", *v, "max", p.opts.MaxThickness)
				continue
			}
			if *v > out[m.name] {
				out[m.name] = *v
			}
		}
	}
	return out
}

func (p *Parser) inRange(v float64) bool {
	return v > 0 && v <= p.opts.MaxThickness
}
