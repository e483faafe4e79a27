package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTablesThickness(t *testing.T) {
	page := mustPage(t, `<html><body>
<table>
  <tr><th>Material</th><th>Max thickness</th></tr>
  <tr><td>Carbon steel</td><td>25 mm</td></tr>
  <tr><td>Stainless steel</td><td>12 mm</td></tr>
  <tr><td>Aluminium</td><td>10mm</td></tr>
  <tr><td>Steel (oxygen)</td><td>95mm</td></tr>
  <tr><td>Brass</td><td>0 mm</td></tr>
</table>
<table>
  <tr><td>Mild steel</td><td>1 - 30 mm</td></tr>
  <tr><td>Copper</td><td>n/a</td></tr>
</table>
</body></html>`, "https://www.hsglaser.com/products/g3015x")

	thickness, speed := New(DefaultOptions()).Tables(page.Doc, page.URL.String())
	assert.Equal(t, map[string]float64{
		"steel":     30,
		"stainless": 12,
		"aluminum":  10,
	}, thickness)
	assert.Nil(t, speed)
}

func TestTablesMultiMaterialRow(t *testing.T) {
	page := mustPage(t, `<table>
<tr><td>Cutting capacity</td><td>Steel 20 mm / Stainless steel 10 mm / Aluminum 8 mm</td></tr>
</table>`, "https://www.trumpf.com/x")

	thickness, _ := New(DefaultOptions()).Tables(page.Doc, "")
	assert.Equal(t, map[string]float64{"steel": 20, "stainless": 10, "aluminum": 8}, thickness)
}

func TestTablesSpeed(t *testing.T) {
	page := mustPage(t, `<table>
  <tr><th colspan="2">Stainless steel</th></tr>
  <tr><td>2 mm</td><td>35 m/min</td></tr>
  <tr><td>2 mm</td><td>28 m/min</td></tr>
  <tr><td>Carbon steel 10 mm</td><td>500 mm/s</td></tr>
  <tr><td>Carbon steel 1.5 mm</td><td>0 mm/s</td></tr>
  <tr><td>Carbon steel 120 mm</td><td>0.2 m/min</td></tr>
</table>
<table>
  <tr><td>5 mm</td><td>10 m/min</td></tr>
</table>`, "https://www.bodor.com/en/products/p3")

	thickness, speed := New(DefaultOptions()).Tables(page.Doc, "")
	assert.Nil(t, thickness)
	assert.Equal(t, map[string]float64{
		"stainless_2mm": 35,
		"steel_10mm":    30,
		"steel_1.5mm":   0,
	}, speed)
}

func TestTablesThresholdIsConfigurable(t *testing.T) {
	page := mustPage(t, `<table><tr><td>Steel</td><td>95 mm</td></tr></table>`, "https://x.test/")

	opts := DefaultOptions()
	opts.MaxThickness = 100
	thickness, _ := New(opts).Tables(page.Doc, "")
	assert.Equal(t, map[string]float64{"steel": 95}, thickness)
}

func TestDetectMaterial(t *testing.T) {
	tests := map[string]string{
		"Stainless steel 304": "stainless",
		"INOX":                "stainless",
		"aluminium alloy":     "aluminum",
		"Mild steel":          "steel",
		"MS plate":            "steel",
		"Brass and copper":    "brass",
		"Copper":              "copper",
		"Acrylic":             "",
		"steelworks":          "steel",
		"programs":            "",
	}
	for in, want := range tests {
		assert.Equal(t, want, DetectMaterial(in), in)
	}
}

func TestMaterialThickness(t *testing.T) {
	p := New(DefaultOptions())

	got := p.MaterialThickness("Max cutting thickness: carbon steel 25 mm, stainless steel 0.5~12 mm, " +
		"aluminum up to 10 mm, copper 6 mm, steel 95 mm, brass cutting speed 20 mm/s")
	assert.Equal(t, map[string]float64{
		"steel":     25,
		"stainless": 12,
		"aluminum":  10,
		"copper":    6,
	}, got)

	assert.Nil(t, p.MaterialThickness("no materials here 10 mm"))
}
