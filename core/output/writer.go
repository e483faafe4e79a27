// Package output serializes the admitted records: to a JSON or CSV file, or
// to the Import Service over HTTP.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kevinaugment/laserspechub/core"
)

// DefaultPath is the file written in dry-run mode without --output.
const DefaultPath = "equipment-records.json"

// Payload is the JSON document shared by the output file and the Import Service.
type Payload struct {
	Records []core.EquipmentRecord `json:"records"`
}

// Format is the on-disk encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// FormatFor selects CSV for ".csv" paths and JSON otherwise.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return FormatCSV
	}
	return FormatJSON
}

// Writer writes records to a file.
type Writer struct {
	Path string
}

// New creates a Writer targeting path, or DefaultPath when path is empty.
func New(path string) *Writer {
	if path == "" {
		path = DefaultPath
	}
	return &Writer{Path: path}
}

// Write encodes records in the format implied by the path, creating parent
// directories as needed, and returns the path written.
func (w *Writer) Write(records []core.EquipmentRecord) (string, error) {
	var (
		data []byte
		err  error
	)
	switch FormatFor(w.Path) {
	case FormatCSV:
		data, err = EncodeCSV(records)
	default:
		data, err = EncodeJSON(records)
	}
	if err != nil {
		return "", err
	}

	// Ensure parent directories exist.
	dir := filepath.Dir(w.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}

	if err := os.WriteFile(w.Path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", w.Path, err)
	}
	return w.Path, nil
}

// EncodeJSON renders records as an indented {"records": [...]} document.
func EncodeJSON(records []core.EquipmentRecord) ([]byte, error) {
	if records == nil {
		records = []core.EquipmentRecord{}
	}
	data, err := json.MarshalIndent(Payload{Records: records}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return append(data, '\n'), nil
}
