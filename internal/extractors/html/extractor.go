package html

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/flowport/flowport/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles HTML documents, keeping readable block content and
// discarding markup, scripts and styles.
type Extractor struct{}

// New creates a new HTML extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract parses the document and returns its block-level text, one block
// per line. Content outside main/article counts only when neither exists.
func (e *Extractor) Extract(_ context.Context, _, _ string, data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	var parts []string
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		parts = append(parts, title)
	}

	scope := doc.Find("main, article")
	if scope.Length() == 0 {
		scope = doc.Selection
	}
	scope.Find("h1, h2, h3, h4, h5, h6, p, li, td, th, blockquote, pre").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})

	// Tag soup without block elements still has its bare text.
	if len(parts) == 0 {
		if text := strings.TrimSpace(doc.Text()); text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, "\n"), nil
}
