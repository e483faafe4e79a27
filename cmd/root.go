// Package cmd implements the CLI commands for the harvester using Cobra.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/kevinaugment/laserspechub/core"
	"github.com/kevinaugment/laserspechub/core/cache"
	"github.com/kevinaugment/laserspechub/core/catalog"
	"github.com/kevinaugment/laserspechub/core/config"
	"github.com/kevinaugment/laserspechub/core/fetch"
	"github.com/kevinaugment/laserspechub/core/metrics"
	"github.com/kevinaugment/laserspechub/crawl"
	"github.com/spf13/cobra"
)

var (
	cfg    = config.Default()
	logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "laserspec",
	Short: "Harvest laser cutting machine specs from manufacturer sites",
	Long: `laserspec discovers manufacturer product pages and spec-sheet PDFs, extracts
equipment specifications, filters them through a quality gate and imports
the records (or writes them to a JSON/CSV file).

Usage:
  laserspec harvest [flags]
  laserspec discover [flags]`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Load(cmd.Flags()); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		l, err := newLogger(os.Stderr, cfg)
		if err != nil {
			return err
		}
		logger = l.With("run_id", uuid.NewString())
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	cfg.BindFlags(rootCmd.PersistentFlags())
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(w io.Writer, c *config.Config) (*slog.Logger, error) {
	level, err := c.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// session holds the components shared by the commands.
type session struct {
	catalog *catalog.Catalog
	fetcher core.Fetcher
	metrics *metrics.Metrics
	cache   *cache.Cache
}

func newSession(ctx context.Context) (*session, error) {
	c, err := catalog.Load(cfg.BrandsFile)
	if err != nil {
		return nil, err
	}

	rt := &session{catalog: c, metrics: metrics.New()}
	if cfg.MetricsAddr != "" {
		rt.metrics.Serve(ctx, cfg.MetricsAddr, logger)
	}

	opts := cfg.FetchOptions()
	opts.Logger = logger
	if cfg.CacheDB != "" {
		pc, err := cache.Open(cfg.CacheDB, cfg.CacheTTL)
		if err != nil {
			return nil, err
		}
		rt.cache = pc
		opts.Cache = pc
	}
	rt.fetcher = fetch.New(opts)
	return rt, nil
}

func (rt *session) Close() {
	if rt.cache != nil {
		if err := rt.cache.Close(); err != nil {
			logger.Warn("closing page cache", "error", err)
		}
	}
}

// discover runs discovery with the configured seed file and brand filter.
func (rt *session) discover(ctx context.Context) ([]core.Target, error) {
	var extra []core.Target
	if cfg.Seeds != "" {
		seeds, err := crawl.LoadSeedFile(cfg.Seeds, rt.catalog, logger)
		if err != nil {
			return nil, err
		}
		extra = seeds
	}

	d := crawl.NewDiscoverer(rt.catalog, rt.fetcher, crawl.Options{
		Logger:  logger,
		Metrics: rt.metrics,
	})
	targets := d.Discover(ctx, cfg.Brand, extra)
	logger.Info("discovery complete", "targets", len(targets), "brand", cfg.Brand)
	return targets, nil
}
