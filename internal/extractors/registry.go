package extractors

import (
	"path/filepath"
	"strings"

	"github.com/flowport/flowport/internal/core/ports/driven"
	"github.com/flowport/flowport/internal/extractors/csv"
	"github.com/flowport/flowport/internal/extractors/html"
	"github.com/flowport/flowport/internal/extractors/image"
	"github.com/flowport/flowport/internal/extractors/pdf"
	"github.com/flowport/flowport/internal/extractors/plaintext"
	"github.com/flowport/flowport/internal/extractors/xlsx"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps filename suffixes to extractors. Files with no registered
// suffix fall back to plain text decoding.
type Registry struct {
	bySuffix map[string]driven.Extractor
	fallback driven.Extractor
}

// NewRegistry creates a registry with all built-in extractors wired.
func NewRegistry() *Registry {
	r := &Registry{
		bySuffix: make(map[string]driven.Extractor),
		fallback: plaintext.New(),
	}
	r.Register(plaintext.New(), ".txt", ".md", ".json", ".log")
	r.Register(csv.New(), ".csv")
	r.Register(html.New(), ".html", ".htm")
	r.Register(xlsx.New(), ".xlsx")
	r.Register(pdf.New(), ".pdf")
	r.Register(image.New(), ".png", ".jpg", ".jpeg")
	return r
}

// Register maps one or more suffixes to an extractor, replacing any
// previous mapping for those suffixes.
func (r *Registry) Register(extractor driven.Extractor, suffixes ...string) {
	for _, suffix := range suffixes {
		r.bySuffix[strings.ToLower(suffix)] = extractor
	}
}

// ExtractorFor returns the extractor for the file's suffix, or the plain
// text fallback when the suffix is unknown.
func (r *Registry) ExtractorFor(filename, _ string) driven.Extractor {
	if extractor, ok := r.bySuffix[strings.ToLower(filepath.Ext(filename))]; ok {
		return extractor
	}
	return r.fallback
}
