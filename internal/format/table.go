package format

import (
	"strings"

	"vectordb/internal/dataset"
	"vectordb/internal/schema"
)

// tableFormatter renders rows as a whitespace-aligned text table.
type tableFormatter struct{}

func (tableFormatter) FormatRows(s *schema.Schema, rows []dataset.Tuple) (string, error) {
	fields := s.Fields()
	widths := make([]int, len(fields))
	headers := make([]string, len(fields))
	for i, f := range fields {
		headers[i] = f.Name
		widths[i] = len(f.Name)
	}
	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = make([]string, len(fields))
		for j := range fields {
			text := row.Value(j).String()
			cells[i][j] = text
			if len(text) > widths[j] {
				widths[j] = len(text)
			}
		}
	}

	var b strings.Builder
	writeRow := func(values []string) {
		for i, v := range values {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(v)
			b.WriteString(strings.Repeat(" ", widths[i]-len(v)))
		}
		b.WriteString("\n")
	}
	writeRow(headers)
	for i, w := range widths {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(strings.Repeat("-", w))
	}
	b.WriteString("\n")
	for _, row := range cells {
		writeRow(row)
	}
	return b.String(), nil
}

func (tableFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return "error: " + err.Error()
}
