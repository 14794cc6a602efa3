package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/uhppoted/uhppoted-app-docgen/pipeline"
)

var PutCmd = Put{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
	},
}

// Put replaces the contents of a worksheet with the records in a TSV file.
type Put struct {
	command
	spreadsheet string
	sheet       string
	file        string
}

func (cmd *Put) Name() string {
	return "put"
}

func (cmd *Put) Description() string {
	return "Uploads a TSV file of records to a Google Sheets worksheet"
}

func (cmd *Put) Usage() string {
	return "--credentials <file> --spreadsheet <URL> --file <file>"
}

func (cmd *Put) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] put [options] --spreadsheet <URL> --file <file>\n", APP)
	fmt.Println()
	fmt.Println("  Clears the worksheet and uploads the header and records from a TSV file")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf(`    %s --debug put --credentials "credentials.json" \`+"\n", APP)
	fmt.Println(`                   --spreadsheet "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" \`)
	fmt.Println(`                   --sheet "Term 1" \`)
	fmt.Println(`                   --file "students.tsv"`)
	fmt.Println()
}

func (cmd *Put) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("put")

	flagset.StringVar(&cmd.spreadsheet, "spreadsheet", cmd.spreadsheet, "Spreadsheet URL or ID")
	flagset.StringVar(&cmd.sheet, "sheet", cmd.sheet, "Worksheet name. Defaults to the first worksheet")
	flagset.StringVar(&cmd.file, "file", cmd.file, "TSV file")

	return flagset
}

func (cmd *Put) Execute(args ...any) error {
	options := args[0].(*Options)

	cfg, err := cmd.configure(options)
	if err != nil {
		return err
	}

	if cmd.sheet == "" {
		cmd.sheet = cfg.Sheet
	}

	if strings.TrimSpace(cmd.credentials) == "" {
		return fmt.Errorf("--credentials is a required option")
	}

	if strings.TrimSpace(cmd.spreadsheet) == "" {
		return fmt.Errorf("--spreadsheet is a required option")
	}

	if strings.TrimSpace(cmd.file) == "" {
		return fmt.Errorf("--file is a required option")
	}

	spreadsheet, err := resolveID("spreadsheet", cmd.spreadsheet)
	if err != nil {
		return err
	}

	ctx := context.Background()

	google, err := sheetsService(ctx, cmd.credentials, cmd.workdir)
	if err != nil {
		return fmt.Errorf("authentication/authorization error (%v)", err)
	}

	sheet, err := google.SheetTitle(ctx, spreadsheet, cmd.sheet)
	if err != nil {
		return err
	}

	if cmd.debug {
		debugf("Spreadsheet - ID:%s  sheet:%s", spreadsheet, sheet)
	}

	f, err := os.Open(cmd.file)
	if err != nil {
		return err
	}

	defer f.Close()

	data, err := tsvToSheet(f, sheet)
	if err != nil {
		return fmt.Errorf("invalid TSV file (%v)", err)
	}

	if err := google.Clear(ctx, spreadsheet, []string{pipeline.SheetRange(sheet)}); err != nil {
		return fmt.Errorf("unable to clear worksheet '%v' (%v)", sheet, err)
	}

	if err := google.BatchUpdate(ctx, spreadsheet, data); err != nil {
		return fmt.Errorf("unable to update worksheet '%v' (%v)", sheet, err)
	}

	infof("Uploaded TSV file %v to worksheet '%v'", cmd.file, sheet)

	return nil
}
