package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

func renderCSV(table Table) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(table.Columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for i, row := range table.Rows {
		if err := writer.Write(fit(row, len(table.Columns))); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// fit pads or truncates a row to the column count.
func fit(row []string, n int) []string {
	out := make([]string, n)
	copy(out, row)
	return out
}
