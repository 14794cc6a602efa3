package pipeline

import (
	"context"
	"sort"

	"google.golang.org/api/sheets/v4"
)

// PendingWrite is a single cell update queued for the batched write to the source
// sheet. Column is 0-based, Row is the 1-based worksheet row.
type PendingWrite struct {
	Column int
	Row    int
	Value  string
}

func (w PendingWrite) Range(sheet string) string {
	return CellRef(sheet, w.Column, w.Row)
}

// PendingWrites queues the result link for each generated document in the result link
// column, preceded by the 'Result Link' header if the column does not exist yet.
func PendingWrites(column int, exists bool, documents []Document) []PendingWrite {
	writes := []PendingWrite{}

	if len(documents) == 0 {
		return writes
	}

	if !exists {
		writes = append(writes, PendingWrite{Column: column, Row: 1, Value: LinkHeader})
	}

	for _, d := range documents {
		writes = append(writes, PendingWrite{
			Column: column,
			Row:    SheetRow(d.Row),
			Value:  d.DocLink,
		})
	}

	sort.SliceStable(writes, func(i, j int) bool { return writes[i].Row < writes[j].Row })

	return writes
}

// WriteLinks applies all the pending writes in a single batched update.
func WriteLinks(ctx context.Context, google Sheets, spreadsheet, sheet string, writes []PendingWrite) error {
	if len(writes) == 0 {
		return nil
	}

	data := []*sheets.ValueRange{}
	for _, w := range writes {
		data = append(data, &sheets.ValueRange{
			Range: w.Range(sheet),
			Values: [][]any{
				[]any{w.Value},
			},
		})
	}

	if err := google.BatchUpdate(ctx, spreadsheet, data); err != nil {
		return &RemoteCallError{Service: "sheets", Op: "batchUpdate", Err: err}
	}

	return nil
}
