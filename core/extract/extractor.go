// Package extract turns a fetched HTML document into a Page: the views of the
// document every heuristic works on.
//  1. Full visible text of the body (scripts, styles and templates skipped)
//  2. The main content container (<main>, <article>, or <body>) with noise
//     elements (nav, footer, forms, etc.) removed
package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// noiseSelectors are HTML elements removed before scoping to the main container.
var noiseSelectors = []string{
	"script", "style", "noscript",
	"nav", "footer", "header",
	"img", "picture", "figure", "figcaption",
	"iframe", "video", "audio",
	"svg", "canvas",
	"form", "button", "input", "select", "textarea",
	".sidebar", ".menu", ".navigation", ".ads", ".advertisement",
	".cookie", "#cookie-banner",
}

// inline elements do not separate words; everything else does.
var inline = map[atom.Atom]bool{
	atom.A: true, atom.Abbr: true, atom.B: true, atom.Code: true, atom.Em: true,
	atom.I: true, atom.Small: true, atom.Span: true, atom.Strong: true,
	atom.Sub: true, atom.Sup: true, atom.U: true, atom.Font: true,
}

// Page is a parsed product page.
type Page struct {
	URL   *url.URL
	Doc   *goquery.Document
	Title string

	// Text is the collapsed visible text of the whole document and Lower its
	// lower-cased form. Navigation and footer text are included.
	Text  string
	Lower string

	// Main is the noise-free content container; MainText is its lower-cased
	// visible text.
	Main     *goquery.Selection
	MainText string
}

// New builds a Page from doc fetched from rawURL. doc itself is not modified.
func New(doc *goquery.Document, rawURL string) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing page URL: %w", err)
	}

	text := visibleText(doc.Nodes)
	p := &Page{
		URL:   u,
		Doc:   doc,
		Title: collapse(doc.Find("title").First().Text()),
		Text:  text,
		Lower: strings.ToLower(text),
	}

	// Remove noise on a copy so the full document stays intact for the
	// table and metadata heuristics.
	clone := goquery.NewDocumentFromNode(doc.Selection.Clone().Nodes[0])
	for _, sel := range noiseSelectors {
		clone.Find(sel).Remove()
	}

	// <main> is the most semantically correct, then <article>, then <body>.
	for _, tag := range []string{"main", "article", "body"} {
		sel := clone.Find(tag)
		if sel.Length() > 0 {
			p.Main = sel.First()
			break
		}
	}
	if p.Main == nil {
		p.Main = clone.Selection
	}
	p.MainText = strings.ToLower(visibleText(p.Main.Nodes))

	return p, nil
}

// Parse parses raw HTML fetched from rawURL into a Page.
func Parse(rawHTML, rawURL string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return New(doc, rawURL)
}

// Resolve returns href as an absolute URL relative to the page, or "" for
// empty, javascript:, mailto: and unparseable references.
func (p *Page) Resolve(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := p.URL.ResolveReference(ref)
	resolved.Fragment = ""
	return resolved.String()
}

// H1 returns the collapsed text of the first <h1>.
func (p *Page) H1() string {
	return collapse(p.Doc.Find("h1").First().Text())
}

// visibleText concatenates the text nodes under nodes, separating block
// elements with spaces and skipping non-rendered elements.
func visibleText(nodes []*html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.CommentNode, html.DoctypeNode:
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Head:
				return
			}
		}

		block := n.Type == html.ElementNode && !inline[n.DataAtom]
		if block {
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.WriteByte(' ')
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return collapse(b.String())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
