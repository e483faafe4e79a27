package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kevinaugment/laserspechub/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	return Options{Retries: 2, Backoff: time.Millisecond}
}

func TestFetchSetsUserAgent(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	res, err := New(testOptions()).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, DefaultUserAgent, ua)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", res.ContentType)
	assert.Contains(t, string(res.Body), "ok")
}

func TestFetchRetries(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		status    int
		wantCalls int32
		wantErr   bool
	}{
		{name: "recovers from 503", failures: 1, status: http.StatusServiceUnavailable, wantCalls: 2},
		{name: "recovers from 429", failures: 2, status: http.StatusTooManyRequests, wantCalls: 3},
		{name: "gives up after retry budget", failures: 5, status: http.StatusBadGateway, wantCalls: 3, wantErr: true},
		{name: "does not retry 404", failures: 5, status: http.StatusNotFound, wantCalls: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if int(calls.Add(1)) <= tt.failures {
					w.WriteHeader(tt.status)
					return
				}
				_, _ = w.Write([]byte("ok"))
			}))
			defer srv.Close()

			_, err := New(testOptions()).Fetch(context.Background(), srv.URL)
			assert.Equal(t, tt.wantCalls, calls.Load())
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			var fe *FetchError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.status, fe.StatusCode)
			assert.Equal(t, srv.URL, fe.URL)
		})
	}
}

func TestFetchStopsOnCancel(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Options{Retries: 5, Backoff: time.Hour}).Fetch(ctx, srv.URL)
	assert.Error(t, err)
	assert.LessOrEqual(t, calls.Load(), int32(1))
}

type memCache struct {
	pages map[string]*core.FetchResult
}

func (m *memCache) Get(_ context.Context, url string) (*core.FetchResult, bool, error) {
	res, ok := m.pages[url]
	return res, ok, nil
}

func (m *memCache) Put(_ context.Context, res *core.FetchResult) error {
	m.pages[res.URL] = res
	return nil
}

func TestFetchUsesCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte("fresh"))
	}))
	defer srv.Close()

	opts := testOptions()
	opts.Cache = &memCache{pages: map[string]*core.FetchResult{}}
	f := New(opts)

	for range 3 {
		res, err := f.Fetch(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.Equal(t, "fresh", string(res.Body))
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchPageAndPDF(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		// "Schneidfläche" in Latin-1.
		_, _ = w.Write([]byte("<html><body><h1>Schneidfl\xe4che</h1></body></html>"))
	})
	mux.HandleFunc("/sheet.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4\n%%EOF"))
	})
	mux.HandleFunc("/fake.pdf", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>login required</html>"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := New(testOptions())
	ctx := context.Background()

	doc, err := FetchPage(ctx, f, srv.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, "Schneidfläche", doc.Find("h1").Text())

	data, err := FetchPDF(ctx, f, srv.URL+"/sheet.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4\n%%EOF", string(data))

	_, err = FetchPDF(ctx, f, srv.URL+"/fake.pdf")
	assert.Error(t, err)
}

func TestRateLimiterSpacesRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := New(Options{Delay: 50 * time.Millisecond})
	start := time.Now()
	for range 3 {
		_, err := f.Fetch(context.Background(), srv.URL)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}
