package pipeline

import (
	"fmt"
	"strings"
)

// Snapshot is the source worksheet as read at the start of a run. Row 1 is the header
// and names each column, the remaining rows are the data records. Data rows may be
// shorter than the header.
type Snapshot struct {
	Sheet   string
	Headers []string
	Rows    [][]string
}

func MakeSnapshot(values [][]any) (*Snapshot, error) {
	if len(values) < 2 {
		return nil, &SourceEmptyError{Rows: len(values)}
	}

	// ... header
	header := make([]string, len(values[0]))
	for i, v := range values[0] {
		header[i] = text(v)
	}

	if len(header) == 0 {
		return nil, &SourceEmptyError{Rows: len(values)}
	}

	// ... records
	rows := [][]string{}
	for _, row := range values[1:] {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = text(v)
		}

		rows = append(rows, record)
	}

	return &Snapshot{
		Headers: header,
		Rows:    rows,
	}, nil
}

func text(v any) string {
	switch s := v.(type) {
	case nil:
		return ""

	case string:
		return s

	default:
		return fmt.Sprintf("%v", v)
	}
}

func normalise(v string) string {
	return strings.ToLower(strings.ReplaceAll(v, " ", ""))
}
