package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kevinaugment/laserspechub/core"
)

// Header is the fixed column order expected by the import service.
var Header = []string{
	"brand", "model", "laser_type", "laser_source_brand", "power_kw",
	"work_area_length", "work_area_width", "max_cutting_thickness", "cutting_speed",
	"positioning_accuracy", "repositioning_accuracy", "max_speed", "acceleration",
	"control_system", "cooling_type", "wavelength", "machine_weight", "machine_dimensions",
	"price_range", "origin_country", "manufacturer_url", "spec_sheet_url", "image_url",
	"description",
}

// EncodeCSV renders records with RFC 4180 quoting. Map columns hold JSON and
// nil values are empty cells.
func EncodeCSV(records []core.EquipmentRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return nil, fmt.Errorf("writing CSV header: %w", err)
	}

	for i, r := range records {
		thickness, err := jsonCell(r.MaxCuttingThickness)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		speed, err := jsonCell(r.CuttingSpeed)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}

		row := []string{
			r.Brand,
			r.Model,
			str(r.LaserType),
			str(r.LaserSourceBrand),
			num(r.PowerKW),
			num(r.WorkAreaLength),
			num(r.WorkAreaWidth),
			thickness,
			speed,
			num(r.PositioningAccuracy),
			num(r.RepositioningAccuracy),
			num(r.MaxSpeed),
			num(r.Acceleration),
			str(r.ControlSystem),
			str(r.CoolingType),
			num(r.Wavelength),
			num(r.MachineWeight),
			str(r.MachineDimensions),
			str(r.PriceRange),
			str(r.OriginCountry),
			r.ManufacturerURL,
			str(r.SpecSheetURL),
			str(r.ImageURL),
			str(r.Description),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("writing CSV row %d: %w", i+1, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing CSV: %w", err)
	}
	return buf.Bytes(), nil
}

func str[T ~string](v *T) string {
	if v == nil {
		return ""
	}
	return string(*v)
}

func num(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func jsonCell(m map[string]float64) (string, error) {
	if len(m) == 0 {
		return "", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encoding map column: %w", err)
	}
	return string(data), nil
}
