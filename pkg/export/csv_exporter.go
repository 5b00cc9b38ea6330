package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"unicode/utf8"
)

// Dataset defines tabular export content. Rows are keyed by header; missing keys render empty.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// CSVExporter renders a Dataset as delimited text.
type CSVExporter struct {
	comma rune
}

// CSVOption customises a CSVExporter.
type CSVOption func(*CSVExporter)

// WithDelimiter sets the field separator. Spreadsheets in comma-decimal locales expect ';'.
func WithDelimiter(delimiter string) CSVOption {
	return func(e *CSVExporter) {
		r, size := utf8.DecodeRuneInString(delimiter)
		if size == len(delimiter) && r != utf8.RuneError && r != '"' && r != '\n' && r != '\r' {
			e.comma = r
		}
	}
}

// NewCSVExporter builds a comma separated exporter unless an option overrides it.
func NewCSVExporter(opts ...CSVOption) *CSVExporter {
	e := &CSVExporter{comma: ','}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render encodes the header line followed by one record per row.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	writer.Comma = e.comma

	records := make([][]string, 0, len(data.Rows)+1)
	records = append(records, data.Headers)
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		records = append(records, record)
	}
	if err := writer.WriteAll(records); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}
