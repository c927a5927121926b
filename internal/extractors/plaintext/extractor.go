package plaintext

import (
	"context"
	"strings"

	"github.com/flowport/flowport/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text files. It is also the fallback for
// unrecognised suffixes.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract decodes the payload as UTF-8, dropping invalid byte sequences.
func (e *Extractor) Extract(_ context.Context, _, _ string, data []byte) (string, error) {
	return strings.ToValidUTF8(string(data), ""), nil
}
