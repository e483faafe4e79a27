// Package cache stores fetched pages in SQLite so repeated harvests within the
// TTL do not hit manufacturer sites again.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kevinaugment/laserspechub/core"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS pages (
	url          TEXT PRIMARY KEY,
	status       INTEGER NOT NULL,
	content_type TEXT NOT NULL DEFAULT '',
	body         BLOB NOT NULL,
	fetched_at   INTEGER NOT NULL
)`

// Cache is a URL-keyed page cache with a TTL.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// Open opens or creates the cache database at path. ":memory:" is accepted.
func Open(path string, ttl time.Duration) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	return &Cache{db: db, ttl: ttl, now: time.Now}, nil
}

// Get returns the cached page for url when present and fresh.
func (c *Cache) Get(ctx context.Context, url string) (*core.FetchResult, bool, error) {
	var (
		res       core.FetchResult
		fetchedAt int64
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT url, status, content_type, body, fetched_at FROM pages WHERE url = ?`, url,
	).Scan(&res.URL, &res.StatusCode, &res.ContentType, &res.Body, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cached page: %w", err)
	}

	if c.ttl > 0 && c.now().Sub(time.Unix(fetchedAt, 0)) > c.ttl {
		return nil, false, nil
	}
	return &res, true, nil
}

// Put stores res, replacing any previous entry for the same URL.
func (c *Cache) Put(ctx context.Context, res *core.FetchResult) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO pages (url, status, content_type, body, fetched_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET
			status = excluded.status,
			content_type = excluded.content_type,
			body = excluded.body,
			fetched_at = excluded.fetched_at`,
		res.URL, res.StatusCode, res.ContentType, res.Body, c.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("writing cached page: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
