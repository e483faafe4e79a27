package core

import (
	"maps"
	"reflect"
)

// LaserType is the laser source family of a machine.
type LaserType string

const (
	LaserFiber LaserType = "Fiber"
	LaserCO2   LaserType = "CO2"
	LaserSolid LaserType = "Solid"
)

// Materials is the closed vocabulary used as keys of the thickness map and as
// the prefix of cutting speed keys ("steel_10mm").
var Materials = []string{"steel", "stainless", "aluminum", "brass", "copper"}

// EquipmentRecord is the normalized output of the harvester. Field order is
// the CSV column order expected by the import service.
type EquipmentRecord struct {
	Brand                 string             `json:"brand"`
	Model                 string             `json:"model"`
	LaserType             *LaserType         `json:"laser_type"`
	LaserSourceBrand      *string            `json:"laser_source_brand"`
	PowerKW               *float64           `json:"power_kw"`
	WorkAreaLength        *float64           `json:"work_area_length"`
	WorkAreaWidth         *float64           `json:"work_area_width"`
	MaxCuttingThickness   map[string]float64 `json:"max_cutting_thickness"`
	CuttingSpeed          map[string]float64 `json:"cutting_speed"`
	PositioningAccuracy   *float64           `json:"positioning_accuracy"`
	RepositioningAccuracy *float64           `json:"repositioning_accuracy"`
	MaxSpeed              *float64           `json:"max_speed"`
	Acceleration          *float64           `json:"acceleration"`
	ControlSystem         *string            `json:"control_system"`
	CoolingType           *string            `json:"cooling_type"`
	Wavelength            *float64           `json:"wavelength"`
	MachineWeight         *float64           `json:"machine_weight"`
	MachineDimensions     *string            `json:"machine_dimensions"`
	PriceRange            *string            `json:"price_range"`
	OriginCountry         *string            `json:"origin_country"`
	ManufacturerURL       string             `json:"manufacturer_url"`
	SpecSheetURL          *string            `json:"spec_sheet_url"`
	ImageURL              *string            `json:"image_url"`
	Description           *string            `json:"description"`
}

// Draft is a partially extracted record. Every field is optional; nil means
// "not found" and never overwrites a value during Merge.
type Draft struct {
	Model                 *string
	LaserType             *LaserType
	LaserSourceBrand      *string
	PowerKW               *float64
	WorkAreaLength        *float64
	WorkAreaWidth         *float64
	Thickness             map[string]float64
	Speed                 map[string]float64
	PositioningAccuracy   *float64
	RepositioningAccuracy *float64
	MaxSpeed              *float64
	Acceleration          *float64
	ControlSystem         *string
	CoolingType           *string
	Wavelength            *float64
	MachineWeight         *float64
	MachineDimensions     *string
	SpecSheetURL          *string
	ImageURL              *string
	Description           *string
}

// Merge returns d with every non-empty field of overlay applied on top.
// Precedence is per field: the overlay wins where it has a value.
func (d Draft) Merge(overlay Draft) Draft {
	pick(&d.Model, overlay.Model)
	pick(&d.LaserType, overlay.LaserType)
	pick(&d.LaserSourceBrand, overlay.LaserSourceBrand)
	pick(&d.PowerKW, overlay.PowerKW)
	pick(&d.WorkAreaLength, overlay.WorkAreaLength)
	pick(&d.WorkAreaWidth, overlay.WorkAreaWidth)
	pick(&d.PositioningAccuracy, overlay.PositioningAccuracy)
	pick(&d.RepositioningAccuracy, overlay.RepositioningAccuracy)
	pick(&d.MaxSpeed, overlay.MaxSpeed)
	pick(&d.Acceleration, overlay.Acceleration)
	pick(&d.ControlSystem, overlay.ControlSystem)
	pick(&d.CoolingType, overlay.CoolingType)
	pick(&d.Wavelength, overlay.Wavelength)
	pick(&d.MachineWeight, overlay.MachineWeight)
	pick(&d.MachineDimensions, overlay.MachineDimensions)
	pick(&d.SpecSheetURL, overlay.SpecSheetURL)
	pick(&d.ImageURL, overlay.ImageURL)
	pick(&d.Description, overlay.Description)
	if len(overlay.Thickness) > 0 {
		d.Thickness = overlay.Thickness
	}
	if len(overlay.Speed) > 0 {
		d.Speed = overlay.Speed
	}
	return d
}

func pick[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}

// IsEmpty reports whether no field of the draft is set.
func (d Draft) IsEmpty() bool {
	if len(d.Thickness) > 0 || len(d.Speed) > 0 {
		return false
	}
	d.Thickness, d.Speed = nil, nil
	return reflect.DeepEqual(d, Draft{})
}

// Finalize builds the record for target t. It is total: identity and
// provenance come from the target, everything else from the draft. Maps are
// copied so the record does not share state with the draft.
func (d Draft) Finalize(t Target, country string) EquipmentRecord {
	rec := EquipmentRecord{
		Brand:                 t.Brand,
		Model:                 t.Model,
		LaserType:             d.LaserType,
		LaserSourceBrand:      d.LaserSourceBrand,
		PowerKW:               d.PowerKW,
		WorkAreaLength:        d.WorkAreaLength,
		WorkAreaWidth:         d.WorkAreaWidth,
		PositioningAccuracy:   d.PositioningAccuracy,
		RepositioningAccuracy: d.RepositioningAccuracy,
		MaxSpeed:              d.MaxSpeed,
		Acceleration:          d.Acceleration,
		ControlSystem:         d.ControlSystem,
		CoolingType:           d.CoolingType,
		Wavelength:            d.Wavelength,
		MachineWeight:         d.MachineWeight,
		MachineDimensions:     d.MachineDimensions,
		ManufacturerURL:       t.URL,
		SpecSheetURL:          d.SpecSheetURL,
		ImageURL:              d.ImageURL,
		Description:           d.Description,
	}
	if d.Model != nil && *d.Model != "" {
		rec.Model = *d.Model
	}
	if len(d.Thickness) > 0 {
		rec.MaxCuttingThickness = maps.Clone(d.Thickness)
	}
	if len(d.Speed) > 0 {
		rec.CuttingSpeed = maps.Clone(d.Speed)
	}
	if t.Kind() == KindPDF {
		rec.SpecSheetURL = Ptr(t.URL)
	}
	if country != "" {
		rec.OriginCountry = Ptr(country)
	}
	return rec
}
