// Package fetch implements the Fetcher interface.
// It performs polite HTTP GET requests: spaced by a rate limiter, bounded by a
// per-request timeout and retried with backoff on transient failures.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/kevinaugment/laserspechub/core"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout      = 30 * time.Second
	DefaultDelay        = 600 * time.Millisecond
	DefaultRetries      = 2
	DefaultBackoff      = time.Second
	DefaultMaxBodyBytes = 20 << 20
	DefaultUserAgent    = "LaserSpecHarvester/1.0 (+https://laserspechub.com/bot)"
)

// FetchError reports a non-2xx response.
type FetchError struct {
	URL        string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
}

// Temporary reports whether the status is worth retrying (429 or 5xx).
func (e *FetchError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Cache is the optional page store consulted before the network.
type Cache interface {
	Get(ctx context.Context, url string) (*core.FetchResult, bool, error)
	Put(ctx context.Context, res *core.FetchResult) error
}

// Options configures an HTTPFetcher. Zero values fall back to the defaults,
// except Delay and Retries where zero disables spacing and retrying.
type Options struct {
	Timeout      time.Duration
	Delay        time.Duration
	Retries      int
	Backoff      time.Duration
	UserAgent    string
	MaxBodyBytes int64
	Cache        Cache
	Logger       *slog.Logger
}

// DefaultOptions returns the polite crawl defaults.
func DefaultOptions() Options {
	return Options{
		Timeout: DefaultTimeout,
		Delay:   DefaultDelay,
		Retries: DefaultRetries,
		Backoff: DefaultBackoff,
	}
}

// HTTPFetcher fetches manufacturer pages and spec sheets via HTTP.
type HTTPFetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	retries   int
	backoff   time.Duration
	userAgent string
	maxBody   int64
	cache     Cache
	logger    *slog.Logger
}

// New creates an HTTPFetcher from opts.
func New(opts Options) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Backoff <= 0 {
		opts.Backoff = DefaultBackoff
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	f := &HTTPFetcher{
		client:    &http.Client{Timeout: opts.Timeout},
		retries:   opts.Retries,
		backoff:   opts.Backoff,
		userAgent: opts.UserAgent,
		maxBody:   opts.MaxBodyBytes,
		cache:     opts.Cache,
		logger:    opts.Logger,
	}
	if opts.Delay > 0 {
		f.limiter = rate.NewLimiter(rate.Every(opts.Delay), 1)
	}
	return f
}

// Fetch retrieves url, consulting the cache first and retrying transient failures.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*core.FetchResult, error) {
	if f.cache != nil {
		res, ok, err := f.cache.Get(ctx, url)
		if err != nil {
			f.logger.WarnContext(ctx, "page cache read failed", "url", url, "error", err)
		} else if ok {
			f.logger.DebugContext(ctx, "page cache hit", "url", url)
			return res, nil
		}
	}

	var (
		res     *core.FetchResult
		err     error
		backoff = f.backoff
	)
	for attempt := 0; ; attempt++ {
		res, err = f.do(ctx, url)
		if err == nil {
			break
		}
		if attempt >= f.retries || ctx.Err() != nil || !retryable(err) {
			return nil, err
		}

		f.logger.WarnContext(ctx, "retrying fetch",
			"url", url,
			"attempt", attempt+1,
			"max_retries", f.retries,
			"backoff_ms", backoff.Milliseconds(),
			"error", err)

		select {
		case <-ctx.Done():
			return nil, err
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	if f.cache != nil {
		if err := f.cache.Put(ctx, res); err != nil {
			f.logger.WarnContext(ctx, "page cache write failed", "url", url, "error", err)
		}
	}
	return res, nil
}

func (f *HTTPFetcher) do(ctx context.Context, url string) (*core.FetchResult, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml,application/pdf;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &core.FetchResult{
		URL:         url,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// retryable reports whether err is a transport failure or a 429/5xx response.
// Cancellation of the caller's context is checked separately.
func retryable(err error) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Temporary()
	}
	return true
}

// FetchPage fetches url and parses it as HTML, honouring the declared charset.
func FetchPage(ctx context.Context, f core.Fetcher, url string) (*goquery.Document, error) {
	res, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	r, err := charset.NewReader(bytes.NewReader(res.Body), res.ContentType)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", url, err)
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML of %s: %w", url, err)
	}
	return doc, nil
}

// FetchPDF fetches url and checks that the body is a PDF document.
func FetchPDF(ctx context.Context, f core.Fetcher, url string) ([]byte, error) {
	res, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(bytes.TrimLeft(res.Body, " \t\r\n"), []byte("%PDF-")) {
		return nil, fmt.Errorf("%s is not a PDF (content type %q)", url, res.ContentType)
	}
	return res.Body, nil
}
