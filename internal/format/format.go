// Package format implements the result-formatting seam (§6.4): a
// small Formatter interface with a table implementation (aligned text,
// for terminals) and a json implementation (machine-readable),
// selected by a Format string the way the teacher selects its
// diff/migration formatters.
package format

import (
	"fmt"
	"strings"

	"vectordb/internal/dataset"
	"vectordb/internal/schema"
)

// Format is an enum type naming the available result formats.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// Formatter renders a query result (or an error) as display text.
type Formatter interface {
	FormatRows(s *schema.Schema, rows []dataset.Tuple) (string, error)
	FormatError(err error) string
}

// New builds a Formatter for name. An empty name defaults to table.
func New(name string) (Formatter, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	switch f {
	case "", FormatTable:
		return tableFormatter{}, nil
	case FormatJSON:
		return jsonFormatter{}, nil
	default:
		return nil, fmt.Errorf("format: unsupported format %q; use %q or %q", name, FormatTable, FormatJSON)
	}
}
