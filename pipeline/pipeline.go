package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Options control how a run is executed. The zero value processes the rows of the
// first worksheet strictly in sequence and abandons the run on the first failure.
type Options struct {
	Sheet           string
	Workers         int
	RateLimit       float64
	ContinueOnError bool
	LogRange        string
	Recorder        Recorder
	Debug           bool
}

type Pipeline struct {
	Providers
	Options
}

// Result is the outcome of a run. Documents are in source row order.
type Result struct {
	RunID     string
	Sheet     string
	Rows      int
	Documents []Document
	Writes    []PendingWrite
	Failures  []*RowError
}

func (r *Result) Message() string {
	return fmt.Sprintf("Successfully generated %d documents", len(r.Documents))
}

// Err returns the per-row failures collected in continue-on-error mode as a single
// error, or nil if every row was processed.
func (r *Result) Err() error {
	var errs *multierror.Error

	for _, f := range r.Failures {
		errs = multierror.Append(errs, f)
	}

	return errs.ErrorOrNil()
}

// Generate validates the configuration, connects to the Google APIs and runs the
// pipeline. Nothing is sent to a remote API if the configuration is incomplete or the
// credentials are malformed.
func Generate(ctx context.Context, cfg Configuration, connect Connector, options Options) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := CheckCredentials(cfg.Credentials); err != nil {
		return nil, err
	}

	providers, err := connect(ctx, cfg.Credentials)
	if err != nil {
		return nil, err
	}

	defer providers.Close()

	p := Pipeline{
		Providers: *providers,
		Options:   options,
	}

	return p.Run(ctx, cfg)
}

func (p *Pipeline) Run(ctx context.Context, cfg Configuration) (*Result, error) {
	recorder := p.recorder()
	start := time.Now()

	recorder.RunStarted()

	result, err := p.run(ctx, cfg)

	switch {
	case err != nil:
		recorder.RunCompleted("failed", time.Since(start))

	case len(result.Failures) > 0:
		recorder.RunCompleted("partial", time.Since(start))

	default:
		recorder.RunCompleted("ok", time.Since(start))
	}

	return result, err
}

func (p *Pipeline) run(ctx context.Context, cfg Configuration) (*Result, error) {
	result := Result{
		RunID:     uuid.New().String(),
		Documents: []Document{},
		Writes:    []PendingWrite{},
		Failures:  []*RowError{},
	}

	log := runlog{id: result.RunID, debug: p.Debug}

	log.debugf("spreadsheet:%v  template:%v  folder:%v", cfg.SpreadsheetID, cfg.TemplateID, cfg.FolderID)

	// ... read source
	sheet, err := p.Sheets.SheetTitle(ctx, cfg.SpreadsheetID, p.Sheet)
	if err != nil {
		return nil, &RemoteCallError{Service: "sheets", Op: "get", Err: err}
	}

	values, err := p.Sheets.Get(ctx, cfg.SpreadsheetID, SheetRange(sheet))
	if err != nil {
		return nil, &RemoteCallError{Service: "sheets", Op: "values.get", Err: err}
	}

	snapshot, err := MakeSnapshot(values)
	if err != nil {
		return nil, err
	}

	snapshot.Sheet = sheet
	result.Sheet = sheet
	result.Rows = len(snapshot.Rows)

	column, exists := ResolveLinkColumn(snapshot.Headers)

	log.infof("Retrieved %v records from worksheet '%v'", len(snapshot.Rows), sheet)
	log.debugf("headers:%q  result link column:%v  exists:%v", snapshot.Headers, ColumnName(column), exists)

	// ... generate documents
	documents, failures, err := p.generate(ctx, cfg, snapshot, log)
	if err != nil {
		return nil, err
	}

	result.Documents = documents
	result.Failures = failures

	// ... write result links
	result.Writes = PendingWrites(column, exists, documents)

	if err := WriteLinks(ctx, p.Sheets, cfg.SpreadsheetID, sheet, result.Writes); err != nil {
		return nil, err
	}

	log.infof("Generated %v documents (%v failed)", len(documents), len(failures))

	if p.LogRange != "" {
		row := []any{
			time.Now().Format("2006-01-02 15:04:05"),
			result.RunID,
			result.Rows,
			len(result.Documents),
			len(result.Failures),
		}

		if err := p.Sheets.Append(ctx, cfg.SpreadsheetID, p.LogRange, [][]any{row}); err != nil {
			log.warnf("Error writing run summary to %v (%v)", p.LogRange, err)
		}
	}

	return &result, nil
}

// generate processes the data rows with at most Workers rows in flight. Results are
// collected by row index so the returned documents are in source order regardless of
// completion order. Rows without any cells are skipped.
func (p *Pipeline) generate(ctx context.Context, cfg Configuration, snapshot *Snapshot, log runlog) ([]Document, []*RowError, error) {
	recorder := p.recorder()
	workers := p.Workers
	if workers < 1 {
		workers = 1
	}

	g := generator{
		drive:    p.Drive,
		docs:     p.Docs,
		archive:  p.Archive,
		limiter:  limiter(p.RateLimit),
		template: cfg.TemplateID,
		folder:   cfg.FolderID,
	}

	documents := make([]*Document, len(snapshot.Rows))
	errs := make([]error, len(snapshot.Rows))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for i, row := range snapshot.Rows {
		if len(row) == 0 {
			log.debugf("row %v: empty, skipped", SheetRow(i))
			continue
		}

		if gctx.Err() != nil {
			break
		}

		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			record := BuildRecord(snapshot.Headers, row)
			doc, err := g.generate(gctx, i, record)
			if err != nil {
				recorder.RowFailed(Stage(err))

				if p.ContinueOnError && ctx.Err() == nil {
					log.warnf("row %v: %v", SheetRow(i), err)
					errs[i] = err
					return nil
				}

				return &RowError{Row: i, Err: err}
			}

			recorder.DocumentGenerated()
			log.debugf("row %v: created '%v' (%v)", SheetRow(i), DocumentName(doc.StudentName, doc.RollNumber), doc.ID)

			documents[i] = doc
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	list := []Document{}
	failures := []*RowError{}

	for i := range snapshot.Rows {
		if documents[i] != nil {
			list = append(list, *documents[i])
		}

		if errs[i] != nil {
			failures = append(failures, &RowError{Row: i, Err: errs[i]})
		}
	}

	return list, failures, nil
}

func (p *Pipeline) recorder() Recorder {
	if p.Recorder != nil {
		return p.Recorder
	}

	return nop{}
}

func limiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}

	return rate.NewLimiter(rate.Limit(rps), 1)
}
