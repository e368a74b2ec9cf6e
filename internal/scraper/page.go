package scraper

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Page is an immutable snapshot of a rendered page.
type Page struct {
	URL       string
	Doc       *goquery.Document
	FetchedAt time.Time
}

// NewPage parses an HTML snapshot read from r.
func NewPage(url string, r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page %s: %w", url, err)
	}
	return &Page{URL: url, Doc: doc, FetchedAt: time.Now()}, nil
}

// NewPageFromString is NewPage for an in-memory document.
func NewPageFromString(url, body string) (*Page, error) {
	return NewPage(url, strings.NewReader(body))
}

// Elements whose boundaries start a new line of rendered text.
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "div": true, "dl": true, "dt": true, "fieldset": true,
	"figcaption": true, "figure": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true,
	"tbody": true, "tfoot": true, "thead": true, "tr": true, "ul": true,
}

var hiddenElements = map[string]bool{
	"head": true, "noscript": true, "script": true, "style": true, "template": true,
}

// InnerText renders the text of a selection roughly the way a browser's
// innerText does for visible content: whitespace inside text runs collapses
// to one space, block boundaries and <br> become line breaks, and the
// result is trimmed. An empty selection yields "".
func InnerText(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}
	var b strings.Builder
	for _, n := range sel.Nodes {
		renderText(&b, n)
	}

	lines := strings.Split(b.String(), "\n")
	kept := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}

func renderText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		writeCollapsed(b, n.Data)
		return
	case html.ElementNode:
		if hiddenElements[n.Data] {
			return
		}
		if n.Data == "br" {
			b.WriteByte('\n')
			return
		}
	case html.DocumentNode:
	default:
		return
	}

	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		b.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderText(b, c)
	}
	if block {
		b.WriteByte('\n')
	}
	if n.Data == "td" || n.Data == "th" {
		b.WriteByte(' ')
	}
}

// writeCollapsed appends s with whitespace runs collapsed to one space,
// continuing any run already ending the builder.
func writeCollapsed(b *strings.Builder, s string) {
	space := endsInSpace(b)
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !space {
				b.WriteByte(' ')
				space = true
			}
			continue
		}
		space = false
		b.WriteRune(r)
	}
}

func endsInSpace(b *strings.Builder) bool {
	out := b.String()
	return len(out) > 0 && out[len(out)-1] == ' '
}
