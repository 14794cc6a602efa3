package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// MakeTSV writes the header and data rows of a worksheet as tab separated values,
// padding short rows to the header width and dropping empty rows.
func MakeTSV(f io.Writer, values [][]any) error {
	if len(values) == 0 {
		return fmt.Errorf("Empty sheet")
	}

	// ... header
	row := values[0]
	header := make([]string, len(row))
	for i, v := range row {
		header[i] = clean(text(v))
	}

	if len(header) == 0 {
		return fmt.Errorf("Missing/invalid header row")
	}

	// ... records
	records := [][]string{}
	for _, row := range values[1:] {
		if len(row) == 0 {
			continue
		}

		record := make([]string, len(header))
		for i := range header {
			if i < len(row) {
				record[i] = clean(text(row[i]))
			}
		}

		records = append(records, record)
	}

	// ... write to file
	w := csv.NewWriter(f)
	w.Comma = '\t'

	w.Write(header)
	for _, record := range records {
		w.Write(record)
	}

	w.Flush()

	return w.Error()
}

func clean(v string) string {
	return strings.TrimSpace(v)
}
