package parser

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/cohere/internal/doctree"
)

// CSVParser handles CSV files. Each data row becomes one sentence of
// "header: value" pairs, grouped under a heading per batch of rows.
type CSVParser struct{}

const csvBatchSize = 20

func (p *CSVParser) Parse(_ context.Context, r io.Reader, filename string) (*doctree.Extraction, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	ext := &doctree.Extraction{Title: trimExt(filename)}
	if len(records) == 0 {
		return ext, nil
	}

	headers := records[0]
	rows := records[1:]

	var out outline
	for i := 0; i < len(rows); i += csvBatchSize {
		end := min(i+csvBatchSize, len(rows))
		out.heading(2, fmt.Sprintf("Rows %d-%d", i+2, end+1))

		var para strings.Builder
		for _, row := range rows[i:end] {
			cells := make([]string, len(row))
			for j, cell := range row {
				if j < len(headers) {
					cells[j] = headers[j] + ": " + cell
				} else {
					cells[j] = cell
				}
			}
			para.WriteString(strings.Join(cells, ", "))
			para.WriteString(".\n")
		}
		out.paragraph(para.String())
	}
	ext.Text = out.String()
	return ext, nil
}
