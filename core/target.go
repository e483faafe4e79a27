package core

import (
	"net/url"
	"strings"
)

// Source names the discovery path that produced a Target.
type Source string

const (
	SourceSeed     Source = "seed"
	SourceSeedFile Source = "seed-file"
	SourceSitemap  Source = "sitemap"
	SourceListing  Source = "listing"
)

// Kind is the content type a Target is expected to resolve to.
type Kind string

const (
	KindHTML Kind = "html"
	KindPDF  Kind = "pdf"
)

// Target is a crawl candidate: one manufacturer page or spec-sheet PDF.
type Target struct {
	Brand  string `json:"brand"`
	Model  string `json:"model"`
	URL    string `json:"url"`
	Source Source `json:"source,omitempty"`
}

// Kind reports KindPDF when the URL path ends in ".pdf", KindHTML otherwise.
func (t Target) Kind() Kind {
	p := t.URL
	if u, err := url.Parse(t.URL); err == nil {
		p = u.Path
	}
	if strings.HasSuffix(strings.ToLower(p), ".pdf") {
		return KindPDF
	}
	return KindHTML
}
