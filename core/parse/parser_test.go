package parse

import (
	"testing"

	"github.com/kevinaugment/laserspechub/core"
	"github.com/kevinaugment/laserspechub/core/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPage(t *testing.T, rawHTML, rawURL string) *extract.Page {
	t.Helper()
	p, err := extract.Parse(rawHTML, rawURL)
	require.NoError(t, err)
	return p
}

func TestFromText(t *testing.T) {
	p := New(DefaultOptions())

	tests := []struct {
		name  string
		text  string
		check func(t *testing.T, d core.Draft)
	}{
		{
			name: "power and work area without laser keyword",
			text: "Laser power 6 kW. Working area 3000 x 1500 mm.",
			check: func(t *testing.T, d core.Draft) {
				assert.Equal(t, core.Ptr(6.0), d.PowerKW)
				assert.Equal(t, core.Ptr(3000.0), d.WorkAreaLength)
				assert.Equal(t, core.Ptr(1500.0), d.WorkAreaWidth)
				assert.Nil(t, d.LaserType)
			},
		},
		{
			name: "laser type keyword families",
			text: "Sealed CO₂ tube",
			check: func(t *testing.T, d core.Draft) {
				assert.Equal(t, core.Ptr(core.LaserCO2), d.LaserType)
			},
		},
		{
			name: "fiber wins over co2 when both appear",
			text: "Fiber laser, unlike CO2 machines",
			check: func(t *testing.T, d core.Draft) {
				assert.Equal(t, core.Ptr(core.LaserFiber), d.LaserType)
			},
		},
		{
			name: "solid state",
			text: "diode-pumped solid-state source",
			check: func(t *testing.T, d core.Draft) {
				assert.Equal(t, core.Ptr(core.LaserSolid), d.LaserType)
			},
		},
		{
			name: "decimal power and case",
			text: "Output 1.5KW",
			check: func(t *testing.T, d core.Draft) {
				assert.Equal(t, core.Ptr(1.5), d.PowerKW)
			},
		},
		{
			name: "three digit kilowatts are not power",
			text: "Total connected load 120 kW",
			check: func(t *testing.T, d core.Draft) {
				assert.Nil(t, d.PowerKW)
			},
		},
		{
			name: "small work area numbers are ignored",
			text: "M8 bolt 100 x 200 mm; table 4000 × 2000 mm",
			check: func(t *testing.T, d core.Draft) {
				assert.Equal(t, core.Ptr(4000.0), d.WorkAreaLength)
				assert.Equal(t, core.Ptr(2000.0), d.WorkAreaWidth)
			},
		},
		{
			name: "thousands separators",
			text: "Working area 3,000 x 1,500 mm",
			check: func(t *testing.T, d core.Draft) {
				assert.Equal(t, core.Ptr(3000.0), d.WorkAreaLength)
				assert.Equal(t, core.Ptr(1500.0), d.WorkAreaWidth)
			},
		},
		{
			name: "machine dimensions are not the work area",
			text: "Dimensions 9000 x 2500 x 2200 mm",
			check: func(t *testing.T, d core.Draft) {
				assert.Nil(t, d.WorkAreaLength)
				assert.Equal(t, core.Ptr("9000 x 2500 x 2200 mm"), d.MachineDimensions)
			},
		},
		{
			name: "control system and cooling",
			text: "CNC: Beckhoff TwinCAT with Siemens drives. Water-cooled resonator.",
			check: func(t *testing.T, d core.Draft) {
				assert.Equal(t, core.Ptr("Siemens"), d.ControlSystem)
				assert.Equal(t, core.Ptr("Water"), d.CoolingType)
			},
		},
		{
			name: "air cooling",
			text: "Air-cooled glass tube",
			check: func(t *testing.T, d core.Draft) {
				assert.Equal(t, core.Ptr("Air"), d.CoolingType)
			},
		},
		{
			name: "motion and machine data",
			text: "Positioning accuracy ±0.03 mm, Repositioning accuracy ±0.02 mm, " +
				"Max. positioning speed 170 m/min, Acceleration 1.5 G, Machine weight 11,500 kg, IPG source",
			check: func(t *testing.T, d core.Draft) {
				assert.Equal(t, core.Ptr(0.03), d.PositioningAccuracy)
				assert.Equal(t, core.Ptr(0.02), d.RepositioningAccuracy)
				assert.Equal(t, core.Ptr(170.0), d.MaxSpeed)
				assert.Equal(t, core.Ptr(1.5), d.Acceleration)
				assert.Equal(t, core.Ptr(11500.0), d.MachineWeight)
				assert.Equal(t, core.Ptr("IPG"), d.LaserSourceBrand)
			},
		},
		{
			name: "nothing to find",
			text: "Welcome to our website",
			check: func(t *testing.T, d core.Draft) {
				assert.True(t, d.IsEmpty())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, p.FromText(tt.text))
		})
	}
}

func TestParseMetadata(t *testing.T) {
	page := mustPage(t, `<html><head>
<meta property="og:image" content="/img/i5.jpg">
<meta property="og:description" content="Compact &lt;b&gt;fiber&lt;/b&gt; cutter">
</head><body><main>
<p>Short</p>
<a href="/downloads/i5-brochure.pdf">Download</a>
<a href="/manual.pdf">Manual</a>
</main></body></html>`, "https://www.bodor.com/en/products/i5")

	d := New(DefaultOptions()).Parse(page)
	assert.Equal(t, core.Ptr("https://www.bodor.com/img/i5.jpg"), d.ImageURL)
	assert.Equal(t, core.Ptr("Compact fiber cutter"), d.Description)
	assert.Equal(t, core.Ptr("https://www.bodor.com/downloads/i5-brochure.pdf"), d.SpecSheetURL)
}

func TestParseDescriptionFallsBackToParagraph(t *testing.T) {
	page := mustPage(t, `<html><head><meta name="description" content="   "></head><body>
<nav><p>Navigation paragraph that is long enough to count</p></nav>
<main><p>Home</p><p>The <strong>i5</strong> is an entry-level fiber laser cutting machine.</p></main>
</body></html>`, "https://www.bodor.com/en/products/i5")

	d := New(DefaultOptions()).Parse(page)
	require.NotNil(t, d.Description)
	assert.Equal(t, "The i5 is an entry-level fiber laser cutting machine.", *d.Description)
	assert.Nil(t, d.ImageURL)
	assert.Nil(t, d.SpecSheetURL)
}

func TestInfer(t *testing.T) {
	tests := []struct {
		name           string
		in             core.Draft
		wantWavelength *float64
		wantCooling    *string
	}{
		{name: "fiber", in: core.Draft{LaserType: core.Ptr(core.LaserFiber)}, wantWavelength: core.Ptr(1070.0), wantCooling: core.Ptr("Water")},
		{name: "co2", in: core.Draft{LaserType: core.Ptr(core.LaserCO2)}, wantWavelength: core.Ptr(10600.0), wantCooling: core.Ptr("Air")},
		{name: "solid", in: core.Draft{LaserType: core.Ptr(core.LaserSolid)}},
		{name: "no type", in: core.Draft{}},
		{
			name:           "explicit cooling kept",
			in:             core.Draft{LaserType: core.Ptr(core.LaserCO2), CoolingType: core.Ptr("Water")},
			wantWavelength: core.Ptr(10600.0),
			wantCooling:    core.Ptr("Water"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Infer(tt.in)
			assert.Equal(t, tt.wantWavelength, got.Wavelength)
			assert.Equal(t, tt.wantCooling, got.CoolingType)
		})
	}
}

func TestConvertSpeed(t *testing.T) {
	tests := []struct {
		v    float64
		unit string
		want float64
	}{
		{v: 500, unit: "mm/s", want: 30},
		{v: 0, unit: "mm/s", want: 0},
		{v: 1000, unit: "MM/S", want: 60},
		{v: 12.5, unit: "m/min", want: 12.5},
		{v: 3000, unit: "mm/min", want: 3},
	}
	for _, tt := range tests {
		got, ok := ConvertSpeed(tt.v, tt.unit)
		assert.True(t, ok)
		assert.Equal(t, tt.want, got, "%v %s", tt.v, tt.unit)
	}

	_, ok := ConvertSpeed(1, "in/s")
	assert.False(t, ok)
}
