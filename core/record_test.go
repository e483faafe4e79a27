package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDraftMerge(t *testing.T) {
	base := Draft{
		LaserType: Ptr(LaserCO2),
		PowerKW:   Ptr(6.0),
		Thickness: map[string]float64{"steel": 20},
		ImageURL:  Ptr("https://a.example/p.jpg"),
	}
	overlay := Draft{
		LaserType: Ptr(LaserFiber),
		Model:     Ptr("P3"),
		Speed:     map[string]float64{"steel_10mm": 2.5},
	}

	got := base.Merge(overlay)

	assert.Equal(t, Ptr(LaserFiber), got.LaserType, "overlay wins")
	assert.Equal(t, Ptr("P3"), got.Model)
	assert.Equal(t, Ptr(6.0), got.PowerKW, "nil overlay fields never erase")
	assert.Equal(t, map[string]float64{"steel": 20}, got.Thickness, "empty overlay map keeps base")
	assert.Equal(t, map[string]float64{"steel_10mm": 2.5}, got.Speed)
	assert.Equal(t, Ptr(LaserCO2), base.LaserType, "receiver is not modified")
}

func TestDraftIsEmpty(t *testing.T) {
	assert.True(t, Draft{}.IsEmpty())
	assert.True(t, Draft{Thickness: map[string]float64{}}.IsEmpty())
	assert.False(t, Draft{Speed: map[string]float64{"steel_1mm": 30}}.IsEmpty())
	assert.False(t, Draft{CoolingType: Ptr("Water")}.IsEmpty())
}

func TestFinalize(t *testing.T) {
	thickness := map[string]float64{"steel": 25}
	d := Draft{
		Model:     Ptr("G3015X Pro"),
		LaserType: Ptr(LaserFiber),
		Thickness: thickness,
	}

	t.Run("html target", func(t *testing.T) {
		target := Target{Brand: "HSG", Model: "G3015x", URL: "https://www.hsglaser.com/products/g3015x"}
		rec := d.Finalize(target, "China")

		assert.Equal(t, "HSG", rec.Brand)
		assert.Equal(t, "G3015X Pro", rec.Model, "draft model overrides the target label")
		assert.Equal(t, target.URL, rec.ManufacturerURL)
		assert.Equal(t, Ptr("China"), rec.OriginCountry)
		assert.Nil(t, rec.SpecSheetURL)
		assert.Nil(t, rec.CuttingSpeed)
		assert.Nil(t, rec.PriceRange)

		rec.MaxCuttingThickness["steel"] = 1
		assert.Equal(t, 25.0, thickness["steel"], "record map is a copy")
	})

	t.Run("pdf target", func(t *testing.T) {
		target := Target{Brand: "HSG", Model: "G3015x", URL: "https://www.hsglaser.com/files/g3015x-datasheet.PDF?v=1"}
		rec := Draft{}.Finalize(target, "")

		assert.Equal(t, "G3015x", rec.Model)
		assert.Equal(t, Ptr(target.URL), rec.SpecSheetURL)
		assert.Nil(t, rec.OriginCountry)
	})
}

func TestTargetKind(t *testing.T) {
	tests := []struct {
		url  string
		want Kind
	}{
		{url: "https://a.example/products/p3", want: KindHTML},
		{url: "https://a.example/files/p3.pdf", want: KindPDF},
		{url: "https://a.example/files/P3.PDF?dl=1", want: KindPDF},
		{url: "https://a.example/files/pdf-library", want: KindHTML},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, Target{URL: tt.url}.Kind())
		})
	}
}
