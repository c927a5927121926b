package xlsx

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/flowport/flowport/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles Excel workbooks, rendering each sheet as a pipe table
// under its sheet name.
type Extractor struct{}

// New creates a new Excel extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract reads every sheet of the workbook. Empty sheets are skipped.
func (e *Extractor) Extract(_ context.Context, _, _ string, data []byte) (string, error) {
	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("opening workbook: %w", err)
	}
	defer workbook.Close()

	var sections []string
	for _, sheet := range workbook.GetSheetList() {
		rows, err := workbook.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("reading sheet %q: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}
		sections = append(sections, sheet+"\n"+renderTable(rows))
	}

	return strings.Join(sections, "\n\n"), nil
}

// renderTable writes rows as a pipe table, with a separator row after the
// first row.
func renderTable(rows [][]string) string {
	var b strings.Builder
	for i, row := range rows {
		writeRow(&b, row)
		if i == 0 {
			separator := make([]string, len(row))
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
