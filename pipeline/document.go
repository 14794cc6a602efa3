package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
	"google.golang.org/api/docs/v1"
)

// Document is the generated document for one data row. Row is the 0-based data row
// index in the source snapshot.
type Document struct {
	Row         int    `json:"-"`
	ID          string `json:"-"`
	StudentName string `json:"studentName"`
	RollNumber  string `json:"rollNumber"`
	DocLink     string `json:"docLink"`
	PDFLink     string `json:"pdfLink"`
}

const PDF = "application/pdf"

func DocumentName(studentName, rollNumber string) string {
	return fmt.Sprintf("Result - %v (%v)", studentName, rollNumber)
}

func EditLink(id string) string {
	return fmt.Sprintf("https://docs.google.com/document/d/%v/edit", id)
}

func ExportLink(id string) string {
	return fmt.Sprintf("https://docs.google.com/document/d/%v/export?format=pdf", id)
}

func Placeholder(key string) string {
	return "{{" + key + "}}"
}

// Replacements builds one case-insensitive replace-all request per record key. Blank
// values are sent explicitly so that the placeholder is removed.
func Replacements(record Record) []*docs.Request {
	requests := []*docs.Request{}

	for _, k := range record.Keys() {
		v, _ := record.Get(k)

		requests = append(requests, &docs.Request{
			ReplaceAllText: &docs.ReplaceAllTextRequest{
				ContainsText: &docs.SubstringMatchCriteria{
					Text:            Placeholder(k),
					MatchCase:       false,
					ForceSendFields: []string{"MatchCase"},
				},
				ReplaceText:     v,
				ForceSendFields: []string{"ReplaceText"},
			},
		})
	}

	return requests
}

type generator struct {
	drive    Drive
	docs     Docs
	archive  Archive
	limiter  *rate.Limiter
	template string
	folder   string
}

func (g *generator) generate(ctx context.Context, row int, record Record) (*Document, error) {
	studentName := record.StudentName(row)
	rollNumber := record.RollNumber()
	name := DocumentName(studentName, rollNumber)

	// ... copy template
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	id, err := g.drive.Copy(ctx, g.template, name, g.folder)
	if err != nil {
		return nil, &DuplicationError{Template: g.template, Name: name, Err: err}
	}

	// ... replace placeholders
	if requests := Replacements(record); len(requests) > 0 {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		if err := g.docs.BatchUpdate(ctx, id, requests); err != nil {
			return nil, &TemplateEditError{Document: id, Err: err}
		}
	}

	// ... archive
	if g.archive != nil {
		if err := g.store(ctx, id, name); err != nil {
			return nil, err
		}
	}

	return &Document{
		Row:         row,
		ID:          id,
		StudentName: studentName,
		RollNumber:  rollNumber,
		DocLink:     EditLink(id),
		PDFLink:     ExportLink(id),
	}, nil
}

func (g *generator) store(ctx context.Context, id, name string) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}

	r, err := g.drive.Export(ctx, id, PDF)
	if err != nil {
		return &RemoteCallError{Service: "drive", Op: "export", Err: err}
	}

	defer r.Close()

	if err := g.archive.Store(ctx, fmt.Sprintf("%v - %v.pdf", name, id), r); err != nil {
		return &RemoteCallError{Service: "storage", Op: "write", Err: err}
	}

	return nil
}
