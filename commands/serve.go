package commands

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/netutil"

	"github.com/uhppoted/uhppoted-app-docgen/config"
	"github.com/uhppoted/uhppoted-app-docgen/metrics"
	"github.com/uhppoted/uhppoted-app-docgen/pipeline"
)

var ServeCmd = Serve{
	command: command{
		workdir: DEFAULT_WORKDIR,
	},
}

// Serve runs the document generation pipeline as an HTTP service. Each request supplies
// its own spreadsheet, template, folder and credentials.
type Serve struct {
	command
	bind           string
	maxConnections int
}

func (cmd *Serve) Name() string {
	return "serve"
}

func (cmd *Serve) Description() string {
	return "Runs the document generator as an HTTP service"
}

func (cmd *Serve) Usage() string {
	return "--bind <address>"
}

func (cmd *Serve) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] serve [options]\n", APP)
	fmt.Println()
	fmt.Println("  Accepts multipart POST requests to /api/generate with the fields 'spreadsheetId', 'templateDocId',")
	fmt.Println("  'folderId' and a 'credentials' file and returns the generated documents as JSON")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s --config docgen.yaml serve --bind 127.0.0.1:8080\n", APP)
	fmt.Println()
	fmt.Println(`    curl -X POST http://127.0.0.1:8080/api/generate \`)
	fmt.Println(`         -F spreadsheetId=1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms \`)
	fmt.Println(`         -F templateDocId=1vTemplateDocumentIdQwErTyUiOp \`)
	fmt.Println(`         -F folderId=1zResultsFolderIdAsDfGhJkL \`)
	fmt.Println(`         -F credentials=@credentials.json`)
	fmt.Println()
}

func (cmd *Serve) FlagSet() *flag.FlagSet {
	flagset := flag.NewFlagSet("serve", flag.ExitOnError)

	flagset.StringVar(&cmd.workdir, "workdir", cmd.workdir, "Directory for working files (tokens, etc)")
	flagset.StringVar(&cmd.bind, "bind", cmd.bind, "HTTP server bind address. Defaults to the configured 'bind' address")
	flagset.IntVar(&cmd.maxConnections, "max-connections", cmd.maxConnections, "Maximum concurrent HTTP connections. Defaults to the configured 'max-connections'")

	cmd.flags = flagset

	return flagset
}

func (cmd *Serve) Execute(args ...any) error {
	options := args[0].(*Options)

	cfg, err := cmd.configure(options)
	if err != nil {
		return err
	}

	if cmd.bind == "" {
		cmd.bind = cfg.Bind
	}

	if cmd.maxConnections <= 0 {
		cmd.maxConnections = cfg.MaxConnections
	}

	h := newHandler(cfg, connector(cmd.workdir, cfg.Archive), cmd.debug)

	listener, err := net.Listen("tcp", cmd.bind)
	if err != nil {
		return err
	}

	if cmd.maxConnections > 0 {
		listener = netutil.LimitListener(listener, cmd.maxConnections)
	}

	srv := &http.Server{
		Handler:           h.mux(),
		ReadHeaderTimeout: 15 * time.Second,
	}

	interrupt := make(chan os.Signal, 1)
	errs := make(chan error, 1)

	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	go func() {
		infof("Listening on %v", listener.Addr())
		errs <- srv.Serve(listener)
	}()

	select {
	case err := <-errs:
		return err

	case <-interrupt:
		infof("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return srv.Shutdown(ctx)
}

type handler struct {
	connect   pipeline.Connector
	options   pipeline.Options
	maxUpload int64
	recorder  *metrics.Recorder
	debug     bool
}

type response struct {
	Success bool                `json:"success"`
	Results []pipeline.Document `json:"results"`
	Message string              `json:"message"`
	Errors  []string            `json:"errors,omitempty"`
}

type failure struct {
	Error string `json:"error"`
}

func newHandler(cfg *config.Config, connect pipeline.Connector, debug bool) *handler {
	h := handler{
		connect: connect,
		options: pipeline.Options{
			Sheet:           cfg.Sheet,
			Workers:         cfg.Workers,
			RateLimit:       cfg.RateLimit,
			ContinueOnError: cfg.ContinueOnError,
			LogRange:        cfg.LogRange,
			Debug:           debug,
		},
		maxUpload: cfg.MaxUpload,
		debug:     debug,
	}

	if cfg.Metrics {
		h.recorder = metrics.NewRecorder()
		h.options.Recorder = h.recorder
	}

	return &h
}

func (h *handler) mux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/generate", h.generate)
	mux.HandleFunc("/health", h.health)

	if h.recorder != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(h.recorder.Registry(), promhttp.HandlerOpts{}))
	}

	return mux
}

func (h *handler) health(w http.ResponseWriter, rq *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (h *handler) generate(w http.ResponseWriter, rq *http.Request) {
	if rq.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		reply(w, http.StatusMethodNotAllowed, failure{Error: "Method not allowed"})
		return
	}

	cfg, err := h.parse(w, rq)
	if err != nil {
		reply(w, http.StatusBadRequest, failure{Error: err.Error()})
		return
	}

	if h.debug {
		debugf("RQ  %v  spreadsheet:%v  template:%v  folder:%v", rq.RemoteAddr, cfg.SpreadsheetID, cfg.TemplateID, cfg.FolderID)
	}

	result, err := pipeline.Generate(rq.Context(), *cfg, h.connect, h.options)
	if err != nil {
		errorf("%v", err)
		reply(w, pipeline.Status(err), failure{Error: pipeline.Message(err)})
		return
	}

	body := response{
		Success: true,
		Results: result.Documents,
		Message: result.Message(),
	}

	for _, e := range result.Failures {
		body.Errors = append(body.Errors, e.Error())
	}

	infof("%v  %v", rq.RemoteAddr, result.Message())

	reply(w, http.StatusOK, body)
}

// parse extracts the run configuration from the multipart form. Missing fields are
// left blank and reported by the pipeline validation.
func (h *handler) parse(w http.ResponseWriter, rq *http.Request) (*pipeline.Configuration, error) {
	if h.maxUpload > 0 {
		rq.Body = http.MaxBytesReader(w, rq.Body, h.maxUpload)
	}

	if err := rq.ParseMultipartForm(h.maxUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, fmt.Errorf("Invalid request (%v)", err)
	}

	fields := map[string]any{}
	if rq.MultipartForm != nil {
		for k, v := range rq.MultipartForm.Value {
			if len(v) > 0 {
				fields[k] = strings.TrimSpace(v[0])
			}
		}
	}

	cfg := pipeline.Configuration{}
	if err := mapstructure.Decode(fields, &cfg); err != nil {
		return nil, fmt.Errorf("Invalid request (%v)", err)
	}

	if f, _, err := rq.FormFile("credentials"); err == nil {
		defer f.Close()

		if cfg.Credentials, err = io.ReadAll(f); err != nil {
			return nil, fmt.Errorf("Invalid credentials file (%v)", err)
		}
	}

	return &cfg, nil
}

func reply(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		warnf("%v", err)
	}
}
