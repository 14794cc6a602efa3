package pipeline

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LinkHeader is the header written when the source sheet does not already have a
// result link column.
const LinkHeader = "Result Link"

var linkHeaders = []string{"result link", "resultlink"}

// ResolveLinkColumn returns the 0-based index of the result link column and true if
// the header already exists. Otherwise it returns the index of a new column after the
// last header and false.
func ResolveLinkColumn(headers []string) (int, bool) {
	for i, h := range headers {
		for _, v := range linkHeaders {
			if strings.EqualFold(strings.TrimSpace(h), v) {
				return i, true
			}
		}
	}

	return len(headers), false
}

// ColumnName converts a 0-based column index to the A1 column letters i.e. 0 is 'A',
// 25 is 'Z' and 26 is 'AA'. Returns an empty string for an index outside the range
// supported by a worksheet.
func ColumnName(index int) string {
	name, err := excelize.ColumnNumberToName(index + 1)
	if err != nil {
		return ""
	}

	return name
}

// SheetRow converts a 0-based data row index to the 1-based worksheet row, skipping
// the header row.
func SheetRow(index int) int {
	return index + 2
}

// CellRef formats an A1 reference for a single cell. row is the 1-based worksheet row.
func CellRef(sheet string, column, row int) string {
	if sheet == "" {
		return fmt.Sprintf("%v%v", ColumnName(column), row)
	}

	return fmt.Sprintf("%v!%v%v", SheetRange(sheet), ColumnName(column), row)
}

// SheetRange returns the A1 notation range for the whole of a worksheet.
func SheetRange(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}
