package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"
)

type GoogleSheets struct {
	Service *sheets.Service
}

type GoogleDrive struct {
	Service *drive.Service
}

type GoogleDocs struct {
	Service *docs.Service
}

func (g *GoogleSheets) SheetTitle(ctx context.Context, spreadsheet, name string) (string, error) {
	response, err := g.Service.Spreadsheets.Get(spreadsheet).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return "", err
	}

	for _, sheet := range response.Sheets {
		if sheet.Properties == nil {
			continue
		}

		if strings.TrimSpace(name) == "" {
			return sheet.Properties.Title, nil
		}

		if normalise(sheet.Properties.Title) == normalise(name) {
			return sheet.Properties.Title, nil
		}
	}

	return "", fmt.Errorf("Unable to identify worksheet '%s'", name)
}

func (g *GoogleSheets) Get(ctx context.Context, spreadsheet, area string) ([][]any, error) {
	response, err := g.Service.Spreadsheets.Values.Get(spreadsheet, area).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	return response.Values, nil
}

func (g *GoogleSheets) BatchUpdate(ctx context.Context, spreadsheet string, data []*sheets.ValueRange) error {
	rq := sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}

	if _, err := g.Service.Spreadsheets.Values.BatchUpdate(spreadsheet, &rq).Context(ctx).Do(); err != nil {
		return err
	}

	return nil
}

func (g *GoogleSheets) Append(ctx context.Context, spreadsheet, area string, rows [][]any) error {
	values := sheets.ValueRange{
		Values: rows,
	}

	if _, err := g.Service.Spreadsheets.Values.Append(spreadsheet, area, &values).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do(); err != nil {
		return err
	}

	return nil
}

func (g *GoogleSheets) Clear(ctx context.Context, spreadsheet string, ranges []string) error {
	rq := sheets.BatchClearValuesRequest{
		Ranges: ranges,
	}

	if _, err := g.Service.Spreadsheets.Values.BatchClear(spreadsheet, &rq).Context(ctx).Do(); err != nil {
		return err
	}

	return nil
}

func (g *GoogleDrive) Copy(ctx context.Context, file, name, folder string) (string, error) {
	copied, err := g.Service.Files.Copy(file, &drive.File{
		Name:    name,
		Parents: []string{folder},
	}).
		SupportsAllDrives(true).
		Fields("id").
		Context(ctx).
		Do()

	if err != nil {
		return "", err
	} else if copied.Id == "" {
		return "", fmt.Errorf("copy of %v returned an empty file ID", file)
	}

	return copied.Id, nil
}

func (g *GoogleDrive) Export(ctx context.Context, file, mimeType string) (io.ReadCloser, error) {
	response, err := g.Service.Files.Export(file, mimeType).Context(ctx).Download()
	if err != nil {
		return nil, err
	}

	return response.Body, nil
}

func (g *GoogleDocs) BatchUpdate(ctx context.Context, document string, requests []*docs.Request) error {
	rq := docs.BatchUpdateDocumentRequest{
		Requests: requests,
	}

	if _, err := g.Service.Documents.BatchUpdate(document, &rq).Context(ctx).Do(); err != nil {
		return err
	}

	return nil
}
