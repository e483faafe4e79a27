// Package core defines the shared types and stage interfaces of the harvester.
// Each stage of the pipeline (discover, fetch, parse, gate, serialize) works on
// the types declared here so that stages stay small and testable on their own.
package core

import "context"

// FetchResult holds the raw body and response metadata from a fetch.
type FetchResult struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// Fetcher retrieves the body of a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Ptr returns a pointer to v. Used to fill optional record fields.
func Ptr[T any](v T) *T {
	return &v
}
