package commands

import (
	"encoding/csv"
	"fmt"
	"io"

	"google.golang.org/api/sheets/v4"

	"github.com/uhppoted/uhppoted-app-docgen/pipeline"
)

// tsvToSheet converts a TSV file with a header row into the header and data value ranges
// for a worksheet, anchored at cell A1.
func tsvToSheet(f io.Reader, sheet string) ([]*sheets.ValueRange, error) {
	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("TSV file is empty")
	}

	// ... header
	h := make([]any, len(records[0]))
	for i, v := range records[0] {
		h[i] = v
	}

	header := sheets.ValueRange{
		Range:  pipeline.CellRef(sheet, 0, 1),
		Values: [][]any{h},
	}

	if len(records) == 1 {
		return []*sheets.ValueRange{&header}, nil
	}

	// ... data
	rows := make([][]any, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make([]any, len(record))
		for i, v := range record {
			row[i] = v
		}

		rows = append(rows, row)
	}

	data := sheets.ValueRange{
		Range:  pipeline.CellRef(sheet, 0, 2),
		Values: rows,
	}

	return []*sheets.ValueRange{&header, &data}, nil
}
