// Package quality decides whether an extracted record is trustworthy enough
// to emit.
package quality

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/kevinaugment/laserspechub/core"
	"github.com/kevinaugment/laserspechub/core/catalog"
)

// Rejection reasons, also used as metric labels.
const (
	ReasonXMLURL           = "xml_url"
	ReasonMissingIdentity  = "missing_identity"
	ReasonMissingLaserType = "missing_laser_type"
	ReasonDenylistedModel  = "denylisted_model"
	ReasonNoiseURL         = "noise_url"
	ReasonNoCoreSignal     = "no_core_signal"
)

// denylistedModels are navigation labels that leak through URL-slug model names.
var denylistedModels = map[string]bool{
	"about": true, "contact": true, "news": true, "sitemap": true, "blog": true,
	"careers": true, "home": true, "products": true, "support": true,
}

// Rejection explains why a record failed the gate.
type Rejection struct {
	Reason string
	Detail string
}

func (r *Rejection) Error() string {
	if r.Detail == "" {
		return "rejected: " + r.Reason
	}
	return fmt.Sprintf("rejected: %s (%s)", r.Reason, r.Detail)
}

// Thresholds are the numeric bounds of the gate and the parser.
type Thresholds struct {
	// MaxThicknessMM bounds plausible cutting thickness values.
	MaxThicknessMM float64
	// MinWorkAreaSide is the smallest work-area side the parser accepts.
	MinWorkAreaSide float64
	// MinWorkAreaLength and MinWorkAreaWidth make a work area a core signal.
	MinWorkAreaLength float64
	MinWorkAreaWidth  float64
}

// DefaultThresholds returns the historical bounds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxThicknessMM:    80,
		MinWorkAreaSide:   500,
		MinWorkAreaLength: 500,
		MinWorkAreaWidth:  300,
	}
}

// Gate is the admission-control predicate.
type Gate struct {
	thresholds Thresholds
	noise      map[string][]string
}

// NewGate creates a Gate using the brand noise patterns of c (may be nil).
func NewGate(c *catalog.Catalog, t Thresholds) *Gate {
	g := &Gate{thresholds: t, noise: make(map[string][]string)}
	if c == nil {
		return g
	}
	for _, b := range c.Brands {
		for _, p := range b.NoiseURLPatterns {
			key := strings.ToLower(b.Name)
			g.noise[key] = append(g.noise[key], strings.ToLower(p))
		}
	}
	return g
}

// Check returns nil when rec may be emitted, or a *Rejection.
func (g *Gate) Check(rec core.EquipmentRecord) error {
	if isXML(rec.ManufacturerURL) {
		return &Rejection{Reason: ReasonXMLURL, Detail: rec.ManufacturerURL}
	}
	if strings.TrimSpace(rec.Brand) == "" || strings.TrimSpace(rec.Model) == "" {
		return &Rejection{Reason: ReasonMissingIdentity}
	}
	if rec.LaserType == nil || *rec.LaserType == "" {
		return &Rejection{Reason: ReasonMissingLaserType}
	}
	if denylistedModels[strings.ToLower(strings.TrimSpace(rec.Model))] {
		return &Rejection{Reason: ReasonDenylistedModel, Detail: rec.Model}
	}

	lowerURL := strings.ToLower(rec.ManufacturerURL)
	for _, p := range g.noise[strings.ToLower(rec.Brand)] {
		if strings.Contains(lowerURL, p) {
			return &Rejection{Reason: ReasonNoiseURL, Detail: p}
		}
	}

	if !g.hasCoreSignal(rec) {
		return &Rejection{Reason: ReasonNoCoreSignal}
	}
	return nil
}

// IsGoodRecord reports whether rec passes the gate.
func (g *Gate) IsGoodRecord(rec core.EquipmentRecord) bool {
	return g.Check(rec) == nil
}

func (g *Gate) hasCoreSignal(rec core.EquipmentRecord) bool {
	switch {
	case rec.PowerKW != nil && *rec.PowerKW > 0:
		return true
	case rec.WorkAreaLength != nil && *rec.WorkAreaLength >= g.thresholds.MinWorkAreaLength:
		return true
	case rec.WorkAreaWidth != nil && *rec.WorkAreaWidth >= g.thresholds.MinWorkAreaWidth:
		return true
	case len(rec.MaxCuttingThickness) > 0:
		return true
	}
	return false
}

func isXML(rawURL string) bool {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	return strings.EqualFold(path.Ext(p), ".xml")
}
