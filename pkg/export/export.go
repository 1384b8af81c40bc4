package export

import (
	"fmt"
	"strings"
)

// Format enumerates supported export encodings.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat normalises a query value, defaulting to CSV when empty.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv"
}

// Table is ordered tabular content for an export.
type Table struct {
	Title    string
	Subtitle string
	Columns  []string
	Rows     [][]string
}

// Render encodes the table in the requested format.
func Render(format Format, table Table) ([]byte, error) {
	if len(table.Columns) == 0 {
		return nil, fmt.Errorf("%s export requires at least one column", format)
	}
	switch format {
	case FormatCSV:
		return renderCSV(table)
	case FormatPDF:
		return renderPDF(table)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}
