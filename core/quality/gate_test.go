package quality

import (
	"errors"
	"testing"

	"github.com/kevinaugment/laserspechub/core"
	"github.com/kevinaugment/laserspechub/core/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func goodRecord() core.EquipmentRecord {
	return core.EquipmentRecord{
		Brand:           "Bodor",
		Model:           "P3",
		LaserType:       core.Ptr(core.LaserFiber),
		PowerKW:         core.Ptr(12.0),
		ManufacturerURL: "https://www.bodor.com/en/products/p3",
	}
}

func newTestGate(t *testing.T) *Gate {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return NewGate(c, DefaultThresholds())
}

func TestCheck(t *testing.T) {
	g := newTestGate(t)

	tests := []struct {
		name   string
		modify func(r *core.EquipmentRecord)
		reason string
	}{
		{name: "good", modify: func(r *core.EquipmentRecord) {}},
		{
			name:   "xml url",
			modify: func(r *core.EquipmentRecord) { r.ManufacturerURL = "https://www.bodor.com/product-sitemap.XML" },
			reason: ReasonXMLURL,
		},
		{name: "missing model", modify: func(r *core.EquipmentRecord) { r.Model = " " }, reason: ReasonMissingIdentity},
		{name: "missing brand", modify: func(r *core.EquipmentRecord) { r.Brand = "" }, reason: ReasonMissingIdentity},
		{name: "missing laser type", modify: func(r *core.EquipmentRecord) { r.LaserType = nil }, reason: ReasonMissingLaserType},
		{name: "denylisted model", modify: func(r *core.EquipmentRecord) { r.Model = "Contact" }, reason: ReasonDenylistedModel},
		{name: "seed default model", modify: func(r *core.EquipmentRecord) { r.Model = "Model" }},
		{
			name:   "brand noise url",
			modify: func(r *core.EquipmentRecord) { r.ManufacturerURL = "https://www.bodor.com/en/products/handheld-laser-welder" },
			reason: ReasonNoiseURL,
		},
		{
			name:   "noise patterns are per brand",
			modify: func(r *core.EquipmentRecord) { r.Brand = "Amada"; r.ManufacturerURL = "https://www.amada.eu/en/cleaning-laser" },
		},
		{name: "no core signal", modify: func(r *core.EquipmentRecord) { r.PowerKW = nil }, reason: ReasonNoCoreSignal},
		{name: "zero power", modify: func(r *core.EquipmentRecord) { r.PowerKW = core.Ptr(0.0) }, reason: ReasonNoCoreSignal},
		{
			name: "work area length",
			modify: func(r *core.EquipmentRecord) {
				r.PowerKW = nil
				r.WorkAreaLength = core.Ptr(500.0)
			},
		},
		{
			name: "work area width",
			modify: func(r *core.EquipmentRecord) {
				r.PowerKW = nil
				r.WorkAreaWidth = core.Ptr(305.0)
			},
		},
		{
			name: "small work area",
			modify: func(r *core.EquipmentRecord) {
				r.PowerKW = nil
				r.WorkAreaLength = core.Ptr(499.0)
				r.WorkAreaWidth = core.Ptr(299.0)
			},
			reason: ReasonNoCoreSignal,
		},
		{
			name: "thickness map",
			modify: func(r *core.EquipmentRecord) {
				r.PowerKW = nil
				r.MaxCuttingThickness = map[string]float64{"steel": 20}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := goodRecord()
			tt.modify(&rec)
			err := g.Check(rec)
			if tt.reason == "" {
				assert.NoError(t, err)
				assert.True(t, g.IsGoodRecord(rec))
				return
			}
			var rej *Rejection
			require.True(t, errors.As(err, &rej), "got %v", err)
			assert.Equal(t, tt.reason, rej.Reason)
			assert.False(t, g.IsGoodRecord(rec))
		})
	}
}

func TestLaserTypeIsRequiredEvenWithAllNumerics(t *testing.T) {
	rec := core.EquipmentRecord{
		Brand:               "HSG",
		Model:               "G3015X",
		PowerKW:             core.Ptr(6.0),
		WorkAreaLength:      core.Ptr(3000.0),
		WorkAreaWidth:       core.Ptr(1500.0),
		MaxCuttingThickness: map[string]float64{"steel": 25},
		Wavelength:          core.Ptr(1070.0),
		ManufacturerURL:     "https://www.hsglaser.com/products/g3015x",
	}
	assert.False(t, NewGate(nil, DefaultThresholds()).IsGoodRecord(rec))
}

func TestThresholdsAreConfigurable(t *testing.T) {
	rec := goodRecord()
	rec.PowerKW = nil
	rec.WorkAreaLength = core.Ptr(400.0)

	assert.False(t, NewGate(nil, DefaultThresholds()).IsGoodRecord(rec))

	th := DefaultThresholds()
	th.MinWorkAreaLength = 300
	assert.True(t, NewGate(nil, th).IsGoodRecord(rec))
}
