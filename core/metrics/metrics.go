// Package metrics exposes harvest counters in Prometheus format.
//
// A nil *Metrics is valid and records nothing, so components can take one
// unconditionally.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the collectors of one run on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	discovered    *prometheus.CounterVec
	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	admitted      *prometheus.CounterVec
	rejected      *prometheus.CounterVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		discovered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "laserspec_targets_discovered_total",
			Help: "Crawl targets produced by discovery, before dedup.",
		}, []string{"brand", "source"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "laserspec_fetch_total",
			Help: "Target fetches by content kind and outcome.",
		}, []string{"kind", "outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "laserspec_fetch_duration_seconds",
			Help:    "Target fetch latency including retries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		admitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "laserspec_records_admitted_total",
			Help: "Records that passed the quality gate.",
		}, []string{"brand"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "laserspec_records_rejected_total",
			Help: "Records rejected by the quality gate.",
		}, []string{"reason"}),
	}
	m.Registry.MustRegister(m.discovered, m.fetches, m.fetchDuration, m.admitted, m.rejected)
	return m
}

// Discovered counts n targets for brand from source.
func (m *Metrics) Discovered(brand, source string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.discovered.WithLabelValues(brand, source).Add(float64(n))
}

// Fetched records one target fetch.
func (m *Metrics) Fetched(kind string, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.fetches.WithLabelValues(kind, outcome).Inc()
	m.fetchDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// Admitted counts a record that passed the gate.
func (m *Metrics) Admitted(brand string) {
	if m == nil {
		return
	}
	m.admitted.WithLabelValues(brand).Inc()
}

// Rejected counts a gate rejection.
func (m *Metrics) Rejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", "error", err)
		}
	}()
}
