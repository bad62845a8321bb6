package utils

import (
	"encoding/csv"
	"io"
	"strings"
)

// ParseCSV reads every row. Rows may have different lengths, blank lines are
// skipped and cells are trimmed.
func ParseCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	for _, row := range records {
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
	}
	return records, nil
}
