// Package config holds the run configuration. Values come from defaults, then
// the environment (a .env file is loaded first), then explicitly set flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kevinaugment/laserspechub/core/fetch"
	"github.com/kevinaugment/laserspechub/core/output"
	"github.com/kevinaugment/laserspechub/core/quality"
	"github.com/spf13/pflag"
)

// Config is the full run configuration.
type Config struct {
	Brand      string
	DryRun     bool
	Output     string
	Seeds      string
	ImportURL  string
	BrandsFile string

	Delay       time.Duration
	Timeout     time.Duration
	Retries     int
	Concurrency int
	CacheDB     string
	CacheTTL    time.Duration

	MetricsAddr string
	LogLevel    string
	LogFormat   string

	MaxThicknessMM float64
	MinWorkAreaMM  float64
	MinWorkWidthMM float64
}

// Default returns the built-in defaults.
func Default() *Config {
	t := quality.DefaultThresholds()
	return &Config{
		ImportURL:      output.DefaultImportURL,
		Delay:          fetch.DefaultDelay,
		Timeout:        fetch.DefaultTimeout,
		Retries:        fetch.DefaultRetries,
		Concurrency:    1,
		CacheTTL:       24 * time.Hour,
		LogLevel:       "info",
		LogFormat:      "text",
		MaxThicknessMM: t.MaxThicknessMM,
		MinWorkAreaMM:  t.MinWorkAreaLength,
		MinWorkWidthMM: t.MinWorkAreaWidth,
	}
}

// envNames maps flag names to their environment variables.
var envNames = map[string]string{
	"brand":          "BRAND",
	"dry":            "DRY_RUN",
	"output":         "OUTPUT",
	"seeds":          "SEEDS",
	"import-url":     "IMPORT_URL",
	"brands-file":    "BRANDS_FILE",
	"delay":          "CRAWL_DELAY",
	"timeout":        "FETCH_TIMEOUT",
	"retries":        "FETCH_RETRIES",
	"concurrency":    "CONCURRENCY",
	"cache":          "CACHE_DB",
	"cache-ttl":      "CACHE_TTL",
	"metrics-addr":   "METRICS_ADDR",
	"log-level":      "LOG_LEVEL",
	"log-format":     "LOG_FORMAT",
	"max-thickness":  "MAX_THICKNESS_MM",
	"min-work-area":  "MIN_WORK_AREA_MM",
	"min-work-width": "MIN_WORK_WIDTH_MM",
}

// BindFlags registers every setting on fs, backed by c.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Brand, "brand", c.Brand, "Only harvest this brand")
	fs.BoolVar(&c.DryRun, "dry", c.DryRun, "Write records to a file instead of importing them")
	fs.StringVar(&c.Output, "output", c.Output, "Output file; .csv writes CSV, anything else JSON (implies file output)")
	fs.StringVar(&c.Seeds, "seeds", c.Seeds, "JSON seed file of {brand, url, model}")
	fs.StringVar(&c.ImportURL, "import-url", c.ImportURL, "Import service endpoint")
	fs.StringVar(&c.BrandsFile, "brands-file", c.BrandsFile, "Brand catalog YAML (default: embedded)")

	fs.DurationVar(&c.Delay, "delay", c.Delay, "Minimum spacing between requests")
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "Per-request timeout")
	fs.IntVar(&c.Retries, "retries", c.Retries, "Retries for transient fetch failures")
	fs.IntVar(&c.Concurrency, "concurrency", c.Concurrency, "Targets processed in parallel")
	fs.StringVar(&c.CacheDB, "cache", c.CacheDB, "SQLite page cache path (disabled when empty)")
	fs.DurationVar(&c.CacheTTL, "cache-ttl", c.CacheTTL, "Page cache freshness")

	fs.StringVar(&c.MetricsAddr, "metrics-addr", c.MetricsAddr, "Serve Prometheus /metrics on this address")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug, info, warn or error")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "text or json")

	fs.Float64Var(&c.MaxThicknessMM, "max-thickness", c.MaxThicknessMM, "Largest plausible cutting thickness in mm")
	fs.Float64Var(&c.MinWorkAreaMM, "min-work-area", c.MinWorkAreaMM, "Smallest work-area side in mm")
	fs.Float64Var(&c.MinWorkWidthMM, "min-work-width", c.MinWorkWidthMM, "Smallest work-area width in mm that counts as a core signal")
}

// Load reads .env (if present), applies the environment to flags that were
// not set on the command line, and validates the result.
func (c *Config) Load(fs *pflag.FlagSet) error {
	_ = godotenv.Load()
	if err := ApplyEnv(fs); err != nil {
		return err
	}
	return c.Validate()
}

// ApplyEnv sets each unchanged flag of fs from its environment variable.
func ApplyEnv(fs *pflag.FlagSet) error {
	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		env, ok := envNames[f.Name]
		if !ok || f.Changed {
			return
		}
		v, ok := os.LookupEnv(env)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		if err := f.Value.Set(strings.TrimSpace(v)); err != nil {
			errs = append(errs, fmt.Errorf("%s=%q: %w", env, v, err))
		}
	})
	return errors.Join(errs...)
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency))
	}
	if c.Retries < 0 {
		errs = append(errs, fmt.Errorf("retries must not be negative, got %d", c.Retries))
	}
	if c.Delay < 0 {
		errs = append(errs, fmt.Errorf("delay must not be negative, got %s", c.Delay))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if c.CacheDB != "" && c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("cache-ttl must be positive, got %s", c.CacheTTL))
	}
	if c.MaxThicknessMM <= 0 || c.MinWorkAreaMM <= 0 || c.MinWorkWidthMM <= 0 {
		errs = append(errs, errors.New("thresholds must be positive"))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("log-format must be text or json, got %q", c.LogFormat))
	}
	if !c.FileMode() && c.ImportURL == "" {
		errs = append(errs, errors.New("import-url is required unless --dry or --output is set"))
	}
	return errors.Join(errs...)
}

// FileMode reports whether records go to a file rather than the import service.
func (c *Config) FileMode() bool {
	return c.DryRun || c.Output != ""
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log-level: %w", err)
	}
	return l, nil
}

// Thresholds returns the quality and parser bounds.
func (c *Config) Thresholds() quality.Thresholds {
	return quality.Thresholds{
		MaxThicknessMM:    c.MaxThicknessMM,
		MinWorkAreaSide:   c.MinWorkAreaMM,
		MinWorkAreaLength: c.MinWorkAreaMM,
		MinWorkAreaWidth:  c.MinWorkWidthMM,
	}
}

// FetchOptions returns the fetcher settings, without cache or logger.
func (c *Config) FetchOptions() fetch.Options {
	opts := fetch.DefaultOptions()
	opts.Delay = c.Delay
	opts.Timeout = c.Timeout
	opts.Retries = c.Retries
	return opts
}
