package crawl

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/kevinaugment/laserspechub/core"
	"github.com/kevinaugment/laserspechub/core/catalog"
)

type seedEntry struct {
	Brand string `json:"brand"`
	Model string `json:"model"`
	URL   string `json:"url"`
}

// LoadSeedFile reads a JSON array of {brand, url, model?}. Entries without a
// brand or url, or naming a brand outside the catalog, are skipped with a
// warning. A missing model becomes "Model".
func LoadSeedFile(path string, c *catalog.Catalog, logger *slog.Logger) ([]core.Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	return ParseSeeds(data, c, logger)
}

// ParseSeeds decodes seed file contents. See LoadSeedFile.
func ParseSeeds(data []byte, c *catalog.Catalog, logger *slog.Logger) ([]core.Target, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var entries []seedEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decoding seed file: %w", err)
	}

	var targets []core.Target
	for i, e := range entries {
		brand, rawURL := strings.TrimSpace(e.Brand), strings.TrimSpace(e.URL)
		if brand == "" || rawURL == "" {
			logger.Warn("skipping seed without brand or url", "index", i, "brand", brand, "url", rawURL)
			continue
		}
		name, ok := c.Canonical(brand)
		if !ok {
			logger.Warn("skipping seed with unknown brand", "index", i, "brand", brand, "url", rawURL)
			continue
		}
		model := strings.TrimSpace(e.Model)
		if model == "" {
			model = fallbackModel
		}
		targets = append(targets, core.Target{
			Brand:  name,
			Model:  model,
			URL:    rawURL,
			Source: core.SourceSeedFile,
		})
	}
	return targets, nil
}
