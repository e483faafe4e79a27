// Package normalize cleans free-text fields scraped from product pages.
// Descriptions arrive as meta tag content or HTML fragments; both end up as
// short plain text without markup or entities.
package normalize

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/microcosm-cc/bluemonday"
)

// MaxDescriptionRunes bounds the description column.
const MaxDescriptionRunes = 500

var strict = bluemonday.StrictPolicy()

// MarkdownNormalizer converts HTML to Markdown using html-to-markdown.
type MarkdownNormalizer struct{}

// New creates a MarkdownNormalizer.
func New() *MarkdownNormalizer {
	return &MarkdownNormalizer{}
}

// Normalize converts an HTML fragment into Markdown.
func (n *MarkdownNormalizer) Normalize(html string) (string, error) {
	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return markdown, nil
}

// Description converts an HTML fragment into a description: Markdown first,
// then formatting stripped down to plain text.
func (n *MarkdownNormalizer) Description(fragment string) (string, error) {
	md, err := n.Normalize(fragment)
	if err != nil {
		return "", err
	}
	return Description(stripMarkdown(md)), nil
}

// Description strips tags and entities from s, collapses whitespace and
// truncates the result to MaxDescriptionRunes.
func Description(s string) string {
	s = html.UnescapeString(strict.Sanitize(s))
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= MaxDescriptionRunes {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:MaxDescriptionRunes-1])) + "…"
}

var (
	headingRegex  = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)
	emphasisRegex = regexp.MustCompile(`\*{1,3}([^*]+)\*{1,3}`)
	linkRegex     = regexp.MustCompile(`!?\[([^\]]*)\]\(([^)]+)\)`)
	codeRegex     = regexp.MustCompile("`([^`]+)`")
)

func stripMarkdown(md string) string {
	text := headingRegex.ReplaceAllString(md, "$2")
	text = emphasisRegex.ReplaceAllString(text, "$1")
	// Links keep their text.
	text = linkRegex.ReplaceAllString(text, "$1")
	text = strings.ReplaceAll(text, "```", "")
	text = codeRegex.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}
