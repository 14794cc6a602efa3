package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/uhppoted/uhppoted-app-docgen/config"
	"github.com/uhppoted/uhppoted-app-docgen/pipeline"
)

var GenerateCmd = Generate{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
	},
	workers: 1,
}

type Generate struct {
	command
	spreadsheet     string
	template        string
	folder          string
	sheet           string
	workers         int
	rateLimit       float64
	continueOnError bool
	report          string
	archive         string
	logRange        string

	connect pipeline.Connector
}

func (cmd *Generate) Name() string {
	return "generate"
}

func (cmd *Generate) Description() string {
	return "Generates a document from a Google Docs template for each row in a Google Sheets worksheet"
}

func (cmd *Generate) Usage() string {
	return "--credentials <file> --spreadsheet <URL> --template <URL> --folder <URL>"
}

func (cmd *Generate) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] generate [options] --spreadsheet <URL> --template <URL> --folder <URL>\n", APP)
	fmt.Println()
	fmt.Println("  Creates a copy of the template document for each data row in the worksheet, replaces the {{column}}")
	fmt.Println("  placeholders with the row values and writes the link to each document to the 'Result Link' column")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf(`    %s --debug generate --credentials "credentials.json" \`+"\n", APP)
	fmt.Println(`                        --spreadsheet "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" \`)
	fmt.Println(`                        --template "https://docs.google.com/document/d/1vTemplateDocumentIdQwErTyUiOp" \`)
	fmt.Println(`                        --folder "https://drive.google.com/drive/folders/1zResultsFolderIdAsDfGhJkL" \`)
	fmt.Println(`                        --workers 4 --report "results.xlsx"`)
	fmt.Println()
}

func (cmd *Generate) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("generate")

	flagset.StringVar(&cmd.spreadsheet, "spreadsheet", cmd.spreadsheet, "Source spreadsheet URL or ID")
	flagset.StringVar(&cmd.template, "template", cmd.template, "Template document URL or ID")
	flagset.StringVar(&cmd.folder, "folder", cmd.folder, "Destination Google Drive folder URL or ID")
	flagset.StringVar(&cmd.sheet, "sheet", cmd.sheet, "Source worksheet name. Defaults to the first worksheet")
	flagset.IntVar(&cmd.workers, "workers", cmd.workers, "Number of rows processed concurrently")
	flagset.Float64Var(&cmd.rateLimit, "rate-limit", cmd.rateLimit, "Maximum rows started per second (0 for unlimited)")
	flagset.BoolVar(&cmd.continueOnError, "continue-on-error", cmd.continueOnError, "Skips rows that fail instead of abandoning the run")
	flagset.StringVar(&cmd.report, "report", cmd.report, "Optional xlsx file for the list of generated documents")
	flagset.StringVar(&cmd.archive, "archive", cmd.archive, "Optional Cloud Storage URL for PDF copies e.g. 'gs://results/2026'")
	flagset.StringVar(&cmd.logRange, "log-range", cmd.logRange, "Optional worksheet range for the run log e.g. 'Log!A:E'")

	return flagset
}

func (cmd *Generate) Execute(args ...any) error {
	options := args[0].(*Options)

	cfg, err := cmd.configure(options)
	if err != nil {
		return err
	}

	cmd.merge(cfg)

	// ... check parameters
	if strings.TrimSpace(cmd.credentials) == "" {
		return fmt.Errorf("--credentials is a required option")
	}

	if strings.TrimSpace(cmd.spreadsheet) == "" {
		return fmt.Errorf("--spreadsheet is a required option")
	}

	if strings.TrimSpace(cmd.template) == "" {
		return fmt.Errorf("--template is a required option")
	}

	if strings.TrimSpace(cmd.folder) == "" {
		return fmt.Errorf("--folder is a required option")
	}

	configuration, err := cmd.configuration()
	if err != nil {
		return err
	}

	if cmd.debug {
		debugf("Spreadsheet:%v  template:%v  folder:%v  workers:%v", configuration.SpreadsheetID, configuration.TemplateID, configuration.FolderID, cmd.workers)
	}

	connect := cmd.connect
	if connect == nil {
		connect = connector(cmd.workdir, cmd.archive)
	}

	result, err := pipeline.Generate(context.Background(), *configuration, connect, pipeline.Options{
		Sheet:           cmd.sheet,
		Workers:         cmd.workers,
		RateLimit:       cmd.rateLimit,
		ContinueOnError: cmd.continueOnError,
		LogRange:        cmd.logRange,
		Debug:           cmd.debug,
	})

	if err != nil {
		return fmt.Errorf("%v", pipeline.Message(err))
	}

	for _, d := range result.Documents {
		fmt.Printf("  %-4v %-32v %v\n", pipeline.SheetRow(d.Row), pipeline.DocumentName(d.StudentName, d.RollNumber), d.DocLink)
	}

	infof("%v", result.Message())

	if cmd.report != "" {
		if err := cmd.write(result); err != nil {
			return fmt.Errorf("error writing report (%v)", err)
		}

		infof("Saved report to %v", cmd.report)
	}

	for _, e := range result.Failures {
		warnf("%v", e)
	}

	return result.Err()
}

// merge applies the configuration file settings to any option not set on the command line.
func (cmd *Generate) merge(cfg *config.Config) {
	set := cmd.isSet()

	if !set["sheet"] && cfg.Sheet != "" {
		cmd.sheet = cfg.Sheet
	}

	if !set["workers"] && cfg.Workers > 0 {
		cmd.workers = cfg.Workers
	}

	if !set["rate-limit"] && cfg.RateLimit > 0 {
		cmd.rateLimit = cfg.RateLimit
	}

	if !set["continue-on-error"] && cfg.ContinueOnError {
		cmd.continueOnError = true
	}

	if !set["archive"] && cfg.Archive != "" {
		cmd.archive = cfg.Archive
	}

	if !set["log-range"] && cfg.LogRange != "" {
		cmd.logRange = cfg.LogRange
	}
}

func (cmd *Generate) configuration() (*pipeline.Configuration, error) {
	spreadsheet, err := resolveID("spreadsheet", cmd.spreadsheet)
	if err != nil {
		return nil, err
	}

	template, err := resolveID("document", cmd.template)
	if err != nil {
		return nil, err
	}

	folder, err := resolveID("folder", cmd.folder)
	if err != nil {
		return nil, err
	}

	credentials, err := os.ReadFile(cmd.credentials)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials (%v)", err)
	}

	return &pipeline.Configuration{
		SpreadsheetID: spreadsheet,
		TemplateID:    template,
		FolderID:      folder,
		Credentials:   credentials,
	}, nil
}

func (cmd *Generate) write(result *pipeline.Result) error {
	dir := filepath.Dir(cmd.report)
	if err := os.MkdirAll(dir, 0770); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "docgen-report-*.xlsx")
	if err != nil {
		return err
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := pipeline.WriteReport(tmp, result); err != nil {
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), cmd.report)
}
