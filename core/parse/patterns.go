package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kevinaugment/laserspechub/core"
)

var (
	thousandsRe = regexp.MustCompile(`(\d),(\d{3})\b`)

	powerRe    = regexp.MustCompile(`(?i)\b(\d{1,2}(?:\.\d)?)\s*kW\b`)
	workAreaRe = regexp.MustCompile(`(?i)(\d{3,5})\s*[x×]\s*(\d{3,5})\s*mm`)
	tripleRe   = regexp.MustCompile(`(?i)(\d{3,5})\s*[x×]\s*(\d{3,5})\s*[x×]\s*(\d{3,5})\s*mm`)
	tripleHead = regexp.MustCompile(`(?i)\d{3,5}\s*[x×]\s*$`)

	accuracyRe     = regexp.MustCompile(`(?i)(re-?|repeat(?:ed)?\s+)?positioning\s+accuracy[^0-9]{0,20}?(\d+(?:\.\d+)?)\s*mm`)
	maxSpeedRe     = regexp.MustCompile(`(?i)max(?:imum|\.)?\s+(?:positioning\s+|axis\s+|simultaneous\s+|traverse\s+)?speed[^0-9]{0,20}?(\d{1,3}(?:\.\d+)?)\s*m/min`)
	accelerationRe = regexp.MustCompile(`(?i)acceleration[^0-9]{0,20}?(\d{1,2}(?:\.\d+)?)\s*g\b`)
	weightRe       = regexp.MustCompile(`(?i)weight[^0-9]{0,20}?(\d{2,6}(?:\.\d+)?)\s*kg\b`)

	laserSourceRe = regexp.MustCompile(`\b(ipg|raycus|nlight|max\s*photonics|trudisk|trufiber|coherent|rofin|jpt)\b`)

	speedRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(m/min|mm/min|mm/sec|mm/s)\b`)
	mmRe    = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*mm\b`)
)

var laserSources = map[string]string{
	"ipg":      "IPG",
	"raycus":   "Raycus",
	"nlight":   "nLight",
	"trudisk":  "Trumpf",
	"trufiber": "Trumpf",
	"coherent": "Coherent",
	"rofin":    "Rofin",
	"jpt":      "JPT",
}

// controlSystems is searched in order; the first hit wins.
var controlSystems = []string{"Siemens", "Beckhoff", "Fanuc", "Cypcut", "AMNC"}

var (
	waterCooling = []string{"water cool", "water-cool", "watercool", "chiller"}
	airCooling   = []string{"air cool", "air-cool"}
)

// StripThousands removes thousands separators: "3,000 x 1,500 mm" becomes
// "3000 x 1500 mm".
func StripThousands(s string) string {
	for range 3 {
		next := thousandsRe.ReplaceAllString(s, "$1$2")
		if next == s {
			break
		}
		s = next
	}
	return s
}

// LaserType classifies lower-cased text by the first keyword family found.
func LaserType(lower string) *core.LaserType {
	switch {
	case strings.Contains(lower, "fiber"), strings.Contains(lower, "fibre"):
		return core.Ptr(core.LaserFiber)
	case strings.Contains(lower, "co2"), strings.Contains(lower, "co₂"):
		return core.Ptr(core.LaserCO2)
	case strings.Contains(lower, "solid state"), strings.Contains(lower, "solid-state"):
		return core.Ptr(core.LaserSolid)
	}
	return nil
}

// Power returns the first "N kW" value in text.
func Power(text string) *float64 {
	m := powerRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return parseFloat(m[1])
}

// WorkArea returns the first "L x W mm" pair whose sides are both at least
// minSide, ignoring pairs that are the tail of an "L x W x H" triple.
func WorkArea(text string, minSide float64) (length, width *float64) {
	for _, loc := range workAreaRe.FindAllStringSubmatchIndex(text, -1) {
		if tripleHead.MatchString(text[:loc[0]]) {
			continue
		}
		l, w := parseFloat(text[loc[2]:loc[3]]), parseFloat(text[loc[4]:loc[5]])
		if l == nil || w == nil || *l < minSide || *w < minSide {
			continue
		}
		return l, w
	}
	return nil, nil
}

// Dimensions returns the first "L x W x H mm" triple, formatted canonically.
func Dimensions(text string) *string {
	m := tripleRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return core.Ptr(fmt.Sprintf("%s x %s x %s mm", m[1], m[2], m[3]))
}

// ControlSystem returns the canonical name of the first vendor mentioned.
func ControlSystem(lower string) *string {
	for _, name := range controlSystems {
		if strings.Contains(lower, strings.ToLower(name)) {
			return core.Ptr(name)
		}
	}
	return nil
}

// Cooling returns "Water" or "Air" when the text says so explicitly.
func Cooling(lower string) *string {
	for _, k := range waterCooling {
		if strings.Contains(lower, k) {
			return core.Ptr("Water")
		}
	}
	for _, k := range airCooling {
		if strings.Contains(lower, k) {
			return core.Ptr("Air")
		}
	}
	return nil
}

// LaserSource returns the laser source manufacturer mentioned first.
func LaserSource(lower string) *string {
	m := laserSourceRe.FindStringSubmatch(lower)
	if m == nil {
		return nil
	}
	if name, ok := laserSources[m[1]]; ok {
		return core.Ptr(name)
	}
	return core.Ptr("Max Photonics")
}

// Accuracy returns the positioning and repositioning accuracy in mm.
func Accuracy(text string) (positioning, repositioning *float64) {
	for _, m := range accuracyRe.FindAllStringSubmatch(text, -1) {
		v := parseFloat(m[2])
		if m[1] == "" {
			if positioning == nil {
				positioning = v
			}
		} else if repositioning == nil {
			repositioning = v
		}
	}
	return positioning, repositioning
}

func firstFloat(re *regexp.Regexp, text string) *float64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return parseFloat(m[1])
}

// ConvertSpeed converts a cutting speed to m/min. Unknown units yield ok=false.
func ConvertSpeed(v float64, unit string) (float64, bool) {
	switch strings.ToLower(unit) {
	case "m/min":
		return v, true
	case "mm/s", "mm/sec":
		return v * 60 / 1000, true
	case "mm/min":
		return v / 1000, true
	}
	return 0, false
}

func parseFloat(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}

func formatMM(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
