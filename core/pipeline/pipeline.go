// Package pipeline runs every discovered target through
// fetch → parse → adapter merge → inference → quality gate.
//
// Targets are processed by a bounded task queue. Per-target failures are
// logged and skipped; they never stop the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kevinaugment/laserspechub/core"
	"github.com/kevinaugment/laserspechub/core/adapters"
	"github.com/kevinaugment/laserspechub/core/catalog"
	"github.com/kevinaugment/laserspechub/core/extract"
	"github.com/kevinaugment/laserspechub/core/fetch"
	"github.com/kevinaugment/laserspechub/core/metrics"
	"github.com/kevinaugment/laserspechub/core/parse"
	"github.com/kevinaugment/laserspechub/core/pdfsheet"
	"github.com/kevinaugment/laserspechub/core/quality"
	"golang.org/x/sync/errgroup"
)

// ErrNoRecords is returned when no target produced an admissible record.
var ErrNoRecords = errors.New("no records passed the quality gate")

// Options configures a Pipeline.
type Options struct {
	// Concurrency is the number of targets in flight; below 1 means 1.
	Concurrency int
	// Adapters overrides the default brand adapter registry.
	Adapters *adapters.Registry
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// Pipeline turns targets into gated records.
type Pipeline struct {
	fetcher  core.Fetcher
	catalog  *catalog.Catalog
	parser   *parse.Parser
	pdf      *pdfsheet.Extractor
	adapters *adapters.Registry
	gate     *quality.Gate

	concurrency int
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// New wires a Pipeline. c must not be nil.
func New(c *catalog.Catalog, f core.Fetcher, t quality.Thresholds, opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	parser := parse.New(parse.Options{
		MaxThickness:    t.MaxThicknessMM,
		MinWorkAreaSide: t.MinWorkAreaSide,
		Logger:          logger,
	})
	registry := opts.Adapters
	if registry == nil {
		registry = adapters.Default(parser.MinWorkAreaSide(), logger)
	}

	return &Pipeline{
		fetcher:     f,
		catalog:     c,
		parser:      parser,
		pdf:         pdfsheet.New(parser, logger),
		adapters:    registry,
		gate:        quality.NewGate(c, t),
		concurrency: opts.Concurrency,
		metrics:     opts.Metrics,
		logger:      logger,
	}
}

// Run processes targets and returns the admitted records in target order.
// Cancelling ctx stops dispatching; records admitted so far are returned.
func (p *Pipeline) Run(ctx context.Context, targets []core.Target) ([]core.EquipmentRecord, error) {
	results := make([]*core.EquipmentRecord, len(targets))

	var g errgroup.Group
	g.SetLimit(p.concurrency)

	for i, t := range targets {
		if ctx.Err() != nil {
			p.logger.Warn("run cancelled, not dispatching remaining targets", "remaining", len(targets)-i)
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			p.logger.Info(fmt.Sprintf("[%d/%d] processing", i+1, len(targets)), "brand", t.Brand, "url", t.URL)

			rec, err := p.Process(ctx, t)
			var rej *quality.Rejection
			switch {
			case errors.As(err, &rej):
				p.logger.Info("skipping record", "brand", t.Brand, "url", t.URL, "reason", rej.Reason)
			case err != nil:
				p.logger.Warn("target failed", "brand", t.Brand, "url", t.URL, "error", err)
			default:
				results[i] = &rec
			}
			return nil
		})
	}
	_ = g.Wait()

	var records []core.EquipmentRecord
	for _, r := range results {
		if r != nil {
			records = append(records, *r)
		}
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return records, nil
}

// Process fetches and parses one target. It returns the finalized record, or
// a *quality.Rejection when the gate refuses it, or the fetch/parse error.
func (p *Pipeline) Process(ctx context.Context, t core.Target) (core.EquipmentRecord, error) {
	draft, err := p.extract(ctx, t)
	if err != nil {
		return core.EquipmentRecord{}, err
	}
	if draft.IsEmpty() {
		p.logger.Debug("no fields extracted", "brand", t.Brand, "url", t.URL)
	}

	rec := parse.Infer(draft).Finalize(t, p.catalog.Country(t.Brand))
	if err := p.gate.Check(rec); err != nil {
		var rej *quality.Rejection
		if errors.As(err, &rej) {
			p.metrics.Rejected(rej.Reason)
		}
		return rec, err
	}
	p.metrics.Admitted(t.Brand)
	return rec, nil
}

func (p *Pipeline) extract(ctx context.Context, t core.Target) (core.Draft, error) {
	kind := t.Kind()
	start := time.Now()

	if kind == core.KindPDF {
		data, err := fetch.FetchPDF(ctx, p.fetcher, t.URL)
		p.metrics.Fetched(string(kind), err, time.Since(start))
		if err != nil {
			return core.Draft{}, fmt.Errorf("fetching spec sheet: %w", err)
		}
		return p.pdf.Extract(data, t.URL), nil
	}

	doc, err := fetch.FetchPage(ctx, p.fetcher, t.URL)
	p.metrics.Fetched(string(kind), err, time.Since(start))
	if err != nil {
		return core.Draft{}, fmt.Errorf("fetching page: %w", err)
	}
	page, err := extract.New(doc, t.URL)
	if err != nil {
		return core.Draft{}, err
	}

	generic := p.parser.Parse(page)
	return generic.Merge(p.adapters.Apply(t.Brand, page)), nil
}
