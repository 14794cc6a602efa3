package pipeline

import (
	"context"
	"io"

	"google.golang.org/api/docs/v1"
	"google.golang.org/api/sheets/v4"
)

// Sheets is the subset of the Google Sheets API used to read the source records and
// write the result links back.
type Sheets interface {
	// SheetTitle returns the title of the named worksheet, or of the first worksheet
	// if name is blank.
	SheetTitle(ctx context.Context, spreadsheet, name string) (string, error)
	Get(ctx context.Context, spreadsheet, area string) ([][]any, error)
	BatchUpdate(ctx context.Context, spreadsheet string, data []*sheets.ValueRange) error
	Append(ctx context.Context, spreadsheet, area string, rows [][]any) error
}

// Drive is the subset of the Google Drive API used to copy the template and export
// the generated documents.
type Drive interface {
	Copy(ctx context.Context, file, name, folder string) (string, error)
	Export(ctx context.Context, file, mimeType string) (io.ReadCloser, error)
}

// Docs applies batched edits to a Google Docs document.
type Docs interface {
	BatchUpdate(ctx context.Context, document string, requests []*docs.Request) error
}

// Archive stores a copy of an exported document.
type Archive interface {
	Store(ctx context.Context, name string, r io.Reader) error
}

type Providers struct {
	Sheets  Sheets
	Drive   Drive
	Docs    Docs
	Archive Archive
}

// Connector creates the API clients for a run from the credential payload. A payload
// that cannot be used to authenticate is reported as a CredentialError.
type Connector func(ctx context.Context, credentials []byte) (*Providers, error)

// Close releases any provider that holds resources beyond the lifetime of a run.
func (p *Providers) Close() error {
	if c, ok := p.Archive.(io.Closer); ok {
		return c.Close()
	}

	return nil
}
