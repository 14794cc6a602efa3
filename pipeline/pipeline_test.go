package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/sheets/v4"
)

var students = [][]any{
	[]any{"Name", "RollNumber", "Marks"},
	[]any{"Asha", "7", "88"},
	[]any{"Kabir", "9", "76"},
}

var cfg = Configuration{
	SpreadsheetID: "spreadsheet",
	TemplateID:    "template",
	FolderID:      "folder",
	Credentials:   credentials,
}

func ranges(data []*sheets.ValueRange) map[string]any {
	m := map[string]any{}
	for _, v := range data {
		m[v.Range] = v.Values[0][0]
	}

	return m
}

func TestGenerate(t *testing.T) {
	s, sheets, drive, docs := fakes("Sheet1", students, "{{Name}} scored {{Marks}} ({{Grade}})")
	p := Providers{Sheets: sheets, Drive: drive, Docs: docs}

	result, err := Generate(context.Background(), cfg, connector(&p), Options{})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "Sheet1", result.Sheet)
	assert.Equal(t, "Successfully generated 2 documents", result.Message())
	assert.Nil(t, result.Err())

	expected := []Document{
		{
			Row:         0,
			ID:          "X1",
			StudentName: "Asha",
			RollNumber:  "7",
			DocLink:     "https://docs.google.com/document/d/X1/edit",
			PDFLink:     "https://docs.google.com/document/d/X1/export?format=pdf",
		},
		{
			Row:         1,
			ID:          "X2",
			StudentName: "Kabir",
			RollNumber:  "9",
			DocLink:     "https://docs.google.com/document/d/X2/edit",
			PDFLink:     "https://docs.google.com/document/d/X2/export?format=pdf",
		},
	}

	assert.Equal(t, expected, result.Documents)

	// ... generated documents
	assert.Equal(t, "Asha scored 88 ({{Grade}})", s.documents["X1"])
	assert.Equal(t, "Kabir scored 76 ({{Grade}})", s.documents["X2"])
	assert.Equal(t, "Result - Asha (7)", s.names["X1"])
	assert.Equal(t, "Result - Kabir (9)", s.names["X2"])
	assert.Equal(t, "{{Name}} scored {{Marks}} ({{Grade}})", s.documents["template"])

	// ... single batched write
	require.Len(t, sheets.updates, 1)
	assert.Equal(t, map[string]any{
		"'Sheet1'!D1": "Result Link",
		"'Sheet1'!D2": "https://docs.google.com/document/d/X1/edit",
		"'Sheet1'!D3": "https://docs.google.com/document/d/X2/edit",
	}, ranges(sheets.updates[0]))

	assert.Equal(t, []PendingWrite{
		{Column: 3, Row: 1, Value: "Result Link"},
		{Column: 3, Row: 2, Value: "https://docs.google.com/document/d/X1/edit"},
		{Column: 3, Row: 3, Value: "https://docs.google.com/document/d/X2/edit"},
	}, result.Writes)

	assert.Empty(t, sheets.appends)
}

func TestGenerateWithMissingFields(t *testing.T) {
	tests := map[string]Configuration{
		"spreadsheetId": {TemplateID: "template", FolderID: "folder", Credentials: credentials},
		"templateDocId": {SpreadsheetID: "spreadsheet", FolderID: "folder", Credentials: credentials},
		"folderId":      {SpreadsheetID: "spreadsheet", TemplateID: "template", Credentials: credentials},
		"credentials":   {SpreadsheetID: "spreadsheet", TemplateID: "template", FolderID: "folder"},
	}

	for field, c := range tests {
		t.Run(field, func(t *testing.T) {
			connected := 0
			connect := func(ctx context.Context, credentials []byte) (*Providers, error) {
				connected++
				return nil, fmt.Errorf("unexpected connect")
			}

			_, err := Generate(context.Background(), c, connect, Options{})

			var validation *ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, field, validation.Field)
			assert.Equal(t, http.StatusBadRequest, Status(err))
			assert.Zero(t, connected)
		})
	}
}

func TestGenerateWithMalformedCredentials(t *testing.T) {
	c := cfg
	c.Credentials = []byte(`{"type":`)

	connect := func(ctx context.Context, credentials []byte) (*Providers, error) {
		t.Fatalf("unexpected connect")
		return nil, nil
	}

	_, err := Generate(context.Background(), c, connect, Options{})

	var credentials *CredentialError
	require.ErrorAs(t, err, &credentials)
	assert.Equal(t, http.StatusInternalServerError, Status(err))
}

func TestGenerateWithEmptySource(t *testing.T) {
	tests := map[string][][]any{
		"no rows":     [][]any{},
		"header only": [][]any{[]any{"Name", "RollNumber"}},
	}

	for name, values := range tests {
		t.Run(name, func(t *testing.T) {
			s, sheets, drive, docs := fakes("Sheet1", values, "")
			p := Providers{Sheets: sheets, Drive: drive, Docs: docs}

			_, err := Generate(context.Background(), cfg, connector(&p), Options{})

			var empty *SourceEmptyError
			require.ErrorAs(t, err, &empty)
			assert.Equal(t, "No data found in spreadsheet", err.Error())
			assert.Equal(t, http.StatusBadRequest, Status(err))
			assert.Equal(t, 2, s.calls)
			assert.Empty(t, sheets.updates)
		})
	}
}

func TestGenerateWithExistingResultLinkColumn(t *testing.T) {
	values := [][]any{
		[]any{"Name", "RESULT LINK", "RollNumber"},
		[]any{"Asha", "", "7"},
		[]any{"Kabir", "old link", "9"},
	}

	_, sheets, drive, docs := fakes("Class Data", values, "{{name}}")
	p := Pipeline{Providers: Providers{Sheets: sheets, Drive: drive, Docs: docs}}

	result, err := p.Run(context.Background(), cfg)
	require.NoError(t, err)

	require.Len(t, sheets.updates, 1)
	assert.Equal(t, map[string]any{
		"'Class Data'!B2": "https://docs.google.com/document/d/X1/edit",
		"'Class Data'!B3": "https://docs.google.com/document/d/X2/edit",
	}, ranges(sheets.updates[0]))

	assert.Len(t, result.Writes, 2)
}

func TestGenerateSkipsEmptyRows(t *testing.T) {
	values := [][]any{
		[]any{"Name", "RollNumber"},
		[]any{"Asha", "7"},
		[]any{},
		[]any{"", "11"},
	}

	_, sheets, drive, docs := fakes("Sheet1", values, "{{Name}}")
	p := Pipeline{Providers: Providers{Sheets: sheets, Drive: drive, Docs: docs}}

	result, err := p.Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, result.Documents, 2)

	assert.Equal(t, "Asha", result.Documents[0].StudentName)
	assert.Equal(t, "Student3", result.Documents[1].StudentName)
	assert.Equal(t, "11", result.Documents[1].RollNumber)

	assert.Equal(t, map[string]any{
		"'Sheet1'!C1": "Result Link",
		"'Sheet1'!C2": "https://docs.google.com/document/d/X1/edit",
		"'Sheet1'!C4": "https://docs.google.com/document/d/X2/edit",
	}, ranges(sheets.updates[0]))
}

func TestGenerateAbortsOnDuplicationError(t *testing.T) {
	s, sheets, drive, docs := fakes("Sheet1", students, "{{Name}}")
	drive.failOn = "Kabir"

	p := Pipeline{Providers: Providers{Sheets: sheets, Drive: drive, Docs: docs}}

	result, err := p.Run(context.Background(), cfg)
	require.Error(t, err)
	assert.Nil(t, result)

	var duplication *DuplicationError
	var remote *RemoteCallError
	var row *RowError

	assert.ErrorAs(t, err, &duplication)
	assert.ErrorAs(t, err, &remote)
	require.ErrorAs(t, err, &row)
	assert.Equal(t, 1, row.Row)
	assert.Equal(t, http.StatusInternalServerError, Status(err))

	// ... first document was created but no links were written
	assert.Contains(t, s.documents, "X1")
	assert.Empty(t, sheets.updates)
}

func TestGenerateAbortsOnTemplateEditError(t *testing.T) {
	_, sheets, drive, docs := fakes("Sheet1", students, "{{Name}}")
	docs.fail = fmt.Errorf("document locked")

	p := Pipeline{Providers: Providers{Sheets: sheets, Drive: drive, Docs: docs}}

	_, err := p.Run(context.Background(), cfg)

	var edit *TemplateEditError
	require.ErrorAs(t, err, &edit)
	assert.Equal(t, "X1", edit.Document)
	assert.Equal(t, "edit", Stage(err))
	assert.Empty(t, sheets.updates)
}

func TestGenerateWithSinkWriteError(t *testing.T) {
	s, sheets, drive, docs := fakes("Sheet1", students, "{{Name}}")
	sheets.fail = errors.New("permission denied")

	p := Pipeline{Providers: Providers{Sheets: sheets, Drive: drive, Docs: docs}}

	_, err := p.Run(context.Background(), cfg)

	var remote *RemoteCallError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "sheets", remote.Service)
	assert.Equal(t, "batchUpdate", remote.Op)

	// ... documents remain in storage
	assert.Contains(t, s.documents, "X1")
	assert.Contains(t, s.documents, "X2")
}

func TestGenerateWithContinueOnError(t *testing.T) {
	values := [][]any{
		[]any{"Name", "RollNumber"},
		[]any{"Asha", "7"},
		[]any{"Kabir", "9"},
		[]any{"Meera", "12"},
	}

	_, sheets, drive, docs := fakes("Sheet1", values, "{{Name}}")
	drive.failOn = "Kabir"

	p := Pipeline{
		Providers: Providers{Sheets: sheets, Drive: drive, Docs: docs},
		Options:   Options{ContinueOnError: true},
	}

	result, err := p.Run(context.Background(), cfg)
	require.NoError(t, err)

	require.Len(t, result.Documents, 2)
	assert.Equal(t, "Asha", result.Documents[0].StudentName)
	assert.Equal(t, "Meera", result.Documents[1].StudentName)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, 1, result.Failures[0].Row)
	assert.Error(t, result.Err())

	assert.Equal(t, map[string]any{
		"'Sheet1'!C1": "Result Link",
		"'Sheet1'!C2": "https://docs.google.com/document/d/X1/edit",
		"'Sheet1'!C4": "https://docs.google.com/document/d/X2/edit",
	}, ranges(sheets.updates[0]))
}

func TestGenerateWithWorkersPreservesRowOrder(t *testing.T) {
	values := [][]any{[]any{"Name", "RollNumber"}}
	for i := 1; i <= 25; i++ {
		values = append(values, []any{fmt.Sprintf("S%02d", i), fmt.Sprintf("%v", i)})
	}

	_, sheets, drive, docs := fakes("Sheet1", values, "{{Name}}")
	p := Pipeline{
		Providers: Providers{Sheets: sheets, Drive: drive, Docs: docs},
		Options:   Options{Workers: 8, RateLimit: 1000},
	}

	result, err := p.Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, result.Documents, 25)

	for i, d := range result.Documents {
		assert.Equal(t, i, d.Row)
		assert.Equal(t, fmt.Sprintf("S%02d", i+1), d.StudentName)
	}

	require.Len(t, sheets.updates, 1)
	assert.Len(t, sheets.updates[0], 26)
}

func TestGenerateWithRunLog(t *testing.T) {
	_, sheets, drive, docs := fakes("Sheet1", students, "{{Name}}")
	p := Pipeline{
		Providers: Providers{Sheets: sheets, Drive: drive, Docs: docs},
		Options:   Options{LogRange: "Log!A1:E"},
	}

	result, err := p.Run(context.Background(), cfg)
	require.NoError(t, err)

	require.Len(t, sheets.appends, 1)
	row := sheets.appends[0][0]

	assert.Equal(t, result.RunID, row[1])
	assert.Equal(t, 2, row[2])
	assert.Equal(t, 2, row[3])
	assert.Equal(t, 0, row[4])
}

func TestGenerateWithArchive(t *testing.T) {
	s, sheets, drive, docs := fakes("Sheet1", students, "{{Name}}")
	p := Pipeline{
		Providers: Providers{Sheets: sheets, Drive: drive, Docs: docs, Archive: &fakeArchive{store: s}},
	}

	_, err := p.Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"Result - Asha (7) - X1.pdf":  "Asha",
		"Result - Kabir (9) - X2.pdf": "Kabir",
	}, s.archived)
}

type counter struct {
	started   int
	completed map[string]int
	generated int
	failed    map[string]int
}

func (c *counter) RunStarted() {
	c.started++
}

func (c *counter) RunCompleted(status string, elapsed time.Duration) {
	c.completed[status]++
}

func (c *counter) DocumentGenerated() {
	c.generated++
}

func (c *counter) RowFailed(stage string) {
	c.failed[stage]++
}

func TestGenerateRecordsMetrics(t *testing.T) {
	_, sheets, drive, docs := fakes("Sheet1", students, "{{Name}}")
	drive.failOn = "Kabir"

	recorder := counter{completed: map[string]int{}, failed: map[string]int{}}
	p := Pipeline{
		Providers: Providers{Sheets: sheets, Drive: drive, Docs: docs},
		Options:   Options{Recorder: &recorder},
	}

	_, err := p.Run(context.Background(), cfg)
	require.Error(t, err)

	assert.Equal(t, 1, recorder.started)
	assert.Equal(t, map[string]int{"failed": 1}, recorder.completed)
	assert.Equal(t, 1, recorder.generated)
	assert.Equal(t, map[string]int{"copy": 1}, recorder.failed)
}
