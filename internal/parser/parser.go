// Package parser extracts the title, cleaned text and outlinks from HTML.
package parser

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// noTitle is the title recorded for documents without a usable <title>.
const noTitle = "No Title"

// Result holds everything extracted from one document.
type Result struct {
	Title       string
	CleanedText string
	// Links are the page's outlinks: resolved against the base URL,
	// fragment stripped, http(s) only, deduplicated in first-seen order.
	Links []string
	// RawContent is the document as fetched, stored verbatim.
	RawContent string
}

// Parse extracts title, cleaned text and outlinks from an HTML document.
// Outlink hrefs are resolved against baseURL.
func Parse(html []byte, baseURL string) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", baseURL, err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = noTitle
	}

	links := extractLinks(doc, base)

	doc.Find("script, style").Remove()
	text := cleanText(doc.Text())

	return &Result{
		Title:       title,
		CleanedText: text,
		Links:       links,
		RawContent:  string(html),
	}, nil
}

// extractLinks collects the outlink set from every <a href=...>.
func extractLinks(doc *goquery.Document, base *url.URL) []string {
	seen := make(map[string]struct{})
	var links []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}

		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}

		resolved := base.ResolveReference(ref)
		resolved.Fragment = ""

		if !strings.HasPrefix(resolved.Scheme, "http") {
			return
		}

		link := resolved.String()
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})

	return links
}

// cleanText collapses whitespace: each line is stripped, split on the
// two-space separator, and the non-empty pieces are rejoined with newlines.
func cleanText(text string) string {
	var chunks []string

	for _, line := range strings.Split(text, "\n") {
		for _, phrase := range strings.Split(strings.TrimSpace(line), "  ") {
			if chunk := strings.TrimSpace(phrase); chunk != "" {
				chunks = append(chunks, chunk)
			}
		}
	}

	return strings.Join(chunks, "\n")
}
