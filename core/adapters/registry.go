// Package adapters holds brand-specific overrides applied on top of the
// generic parse. An adapter returns only the fields it is sure about; the
// pipeline merges them over the generic draft field by field.
package adapters

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kevinaugment/laserspechub/core"
	"github.com/kevinaugment/laserspechub/core/extract"
)

// Adapter overrides fields of the generic parse for one brand.
type Adapter interface {
	Override(page *extract.Page) (core.Draft, error)
}

// AdapterFunc adapts a function to the Adapter interface.
type AdapterFunc func(page *extract.Page) (core.Draft, error)

// Override calls f(page).
func (f AdapterFunc) Override(page *extract.Page) (core.Draft, error) {
	return f(page)
}

// Registry maps brands to adapters. Lookups ignore case.
type Registry struct {
	adapters map[string]Adapter
	logger   *slog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{adapters: make(map[string]Adapter), logger: logger}
}

// Register installs a for brand, replacing any previous adapter.
func (r *Registry) Register(brand string, a Adapter) {
	r.adapters[strings.ToLower(strings.TrimSpace(brand))] = a
}

// Lookup returns the adapter registered for brand.
func (r *Registry) Lookup(brand string) (Adapter, bool) {
	a, ok := r.adapters[strings.ToLower(strings.TrimSpace(brand))]
	return a, ok
}

// Apply runs brand's adapter on page. Brands without an adapter, adapter
// errors and adapter panics all yield an empty overlay; failures are logged.
func (r *Registry) Apply(brand string, page *extract.Page) (overlay core.Draft) {
	a, ok := r.Lookup(brand)
	if !ok {
		return core.Draft{}
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("adapter panicked, using generic parse",
				"brand", brand, "url", page.URL.String(), "error", fmt.Sprint(rec))
			overlay = core.Draft{}
		}
	}()

	d, err := a.Override(page)
	if err != nil {
		r.logger.Warn("adapter failed, using generic parse",
			"brand", brand, "url", page.URL.String(), "error", err)
		return core.Draft{}
	}
	return d
}
