package csv

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/flowport/flowport/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles CSV files by rendering them as a pipe table, keeping
// column/value adjacency visible to the indexer.
type Extractor struct{}

// New creates a new CSV extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract parses the payload and renders a pipe table with the first
// record as header.
func (e *Extractor) Extract(_ context.Context, _, _ string, data []byte) (string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parsing csv: %w", err)
	}
	if len(records) == 0 {
		return "", fmt.Errorf("parsing csv: no records")
	}

	return renderTable(records), nil
}

// renderTable writes records as a pipe table, with a separator row after
// the header.
func renderTable(records [][]string) string {
	var b strings.Builder
	for i, record := range records {
		writeRow(&b, record)
		if i == 0 {
			separator := make([]string, len(record))
			for j := range separator {
				separator[j] = "---"
			}
			writeRow(&b, separator)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeRow(b *strings.Builder, fields []string) {
	b.WriteString("| ")
	b.WriteString(strings.Join(fields, " | "))
	b.WriteString(" |\n")
}
