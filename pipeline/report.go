package pipeline

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	ReportSheet   = "Results"
	FailuresSheet = "Failures"
)

// WriteReport writes the generated documents (and any row failures) as an xlsx workbook.
func WriteReport(w io.Writer, result *Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ReportSheet); err != nil {
		return err
	}

	header := []any{"Student Name", "Roll Number", "Row", "Document", "PDF"}
	if err := f.SetSheetRow(ReportSheet, "A1", &header); err != nil {
		return err
	}

	for i, d := range result.Documents {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		row := []any{d.StudentName, d.RollNumber, SheetRow(d.Row), d.DocLink, d.PDFLink}
		if err := f.SetSheetRow(ReportSheet, cell, &row); err != nil {
			return err
		}
	}

	if len(result.Failures) > 0 {
		if _, err := f.NewSheet(FailuresSheet); err != nil {
			return err
		}

		header := []any{"Row", "Stage", "Error"}
		if err := f.SetSheetRow(FailuresSheet, "A1", &header); err != nil {
			return err
		}

		for i, e := range result.Failures {
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}

			row := []any{SheetRow(e.Row), Stage(e.Err), fmt.Sprintf("%v", e.Err)}
			if err := f.SetSheetRow(FailuresSheet, cell, &row); err != nil {
				return err
			}
		}
	}

	_, err := f.WriteTo(w)

	return err
}
