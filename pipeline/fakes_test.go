package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"sync"

	"google.golang.org/api/docs/v1"
	"google.golang.org/api/sheets/v4"
)

type store struct {
	sync.Mutex
	documents map[string]string
	names     map[string]string
	archived  map[string]string
	calls     int
	next      int
}

func newStore(template string) *store {
	return &store{
		documents: map[string]string{"template": template},
		names:     map[string]string{},
		archived:  map[string]string{},
	}
}

type fakeSheets struct {
	store   *store
	title   string
	values  [][]any
	updates [][]*sheets.ValueRange
	appends [][][]any
	fail    error
}

func (s *fakeSheets) SheetTitle(ctx context.Context, spreadsheet, name string) (string, error) {
	s.store.Lock()
	defer s.store.Unlock()

	s.store.calls++
	if name != "" {
		return name, nil
	}

	return s.title, nil
}

func (s *fakeSheets) Get(ctx context.Context, spreadsheet, area string) ([][]any, error) {
	s.store.Lock()
	defer s.store.Unlock()

	s.store.calls++

	return s.values, nil
}

func (s *fakeSheets) BatchUpdate(ctx context.Context, spreadsheet string, data []*sheets.ValueRange) error {
	s.store.Lock()
	defer s.store.Unlock()

	s.store.calls++
	if s.fail != nil {
		return s.fail
	}

	s.updates = append(s.updates, data)

	return nil
}

func (s *fakeSheets) Append(ctx context.Context, spreadsheet, area string, rows [][]any) error {
	s.store.Lock()
	defer s.store.Unlock()

	s.store.calls++
	s.appends = append(s.appends, rows)

	return nil
}

type fakeDrive struct {
	store  *store
	failOn string
}

func (d *fakeDrive) Copy(ctx context.Context, file, name, folder string) (string, error) {
	d.store.Lock()
	defer d.store.Unlock()

	d.store.calls++
	if d.failOn != "" && regexp.MustCompile(regexp.QuoteMeta(d.failOn)).MatchString(name) {
		return "", fmt.Errorf("quota exceeded")
	}

	template, ok := d.store.documents[file]
	if !ok {
		return "", fmt.Errorf("file not found: %v", file)
	}

	d.store.next++
	id := fmt.Sprintf("X%v", d.store.next)
	d.store.documents[id] = template
	d.store.names[id] = name

	return id, nil
}

func (d *fakeDrive) Export(ctx context.Context, file, mimeType string) (io.ReadCloser, error) {
	d.store.Lock()
	defer d.store.Unlock()

	d.store.calls++

	return io.NopCloser(bytes.NewBufferString(d.store.documents[file])), nil
}

type fakeDocs struct {
	store *store
	fail  error
}

func (d *fakeDocs) BatchUpdate(ctx context.Context, document string, requests []*docs.Request) error {
	d.store.Lock()
	defer d.store.Unlock()

	d.store.calls++
	if d.fail != nil {
		return d.fail
	}

	body, ok := d.store.documents[document]
	if !ok {
		return fmt.Errorf("document not found: %v", document)
	}

	for _, rq := range requests {
		if r := rq.ReplaceAllText; r != nil {
			re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(r.ContainsText.Text))
			body = re.ReplaceAllLiteralString(body, r.ReplaceText)
		}
	}

	d.store.documents[document] = body

	return nil
}

type fakeArchive struct {
	store *store
}

func (a *fakeArchive) Store(ctx context.Context, name string, r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	a.store.Lock()
	defer a.store.Unlock()

	a.store.archived[name] = string(b)

	return nil
}

func fakes(title string, values [][]any, template string) (*store, *fakeSheets, *fakeDrive, *fakeDocs) {
	s := newStore(template)

	return s,
		&fakeSheets{store: s, title: title, values: values},
		&fakeDrive{store: s},
		&fakeDocs{store: s}
}

func connector(p *Providers) Connector {
	return func(ctx context.Context, credentials []byte) (*Providers, error) {
		return p, nil
	}
}

var credentials = []byte(`{"type":"service_account","project_id":"example","private_key_id":"1234"}`)
