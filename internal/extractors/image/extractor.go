package image

import (
	"context"
	"fmt"

	"github.com/flowport/flowport/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles image files. Pixels carry no indexable text, so it
// emits a retrievable placeholder naming the file; captioning, when
// configured, replaces this downstream.
type Extractor struct{}

// New creates a new image extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns the placeholder line for the image.
func (e *Extractor) Extract(_ context.Context, filename, mediaType string, _ []byte) (string, error) {
	return fmt.Sprintf("Image file %s (MIME: %s) - add a caption or text summary to enhance retrieval.", filename, mediaType), nil
}
