package commands

import (
	"flag"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/uhppoted/uhppoted-app-docgen/config"
)

const APP = "uhppoted-app-docgen"

// Options are the global command line options passed to every command.
type Options struct {
	Config string
	Debug  bool
}

// command holds the options common to every command that accesses the Google APIs.
type command struct {
	workdir     string
	credentials string
	debug       bool
	flags       *flag.FlagSet
}

func (c *command) flagset(name string) *flag.FlagSet {
	flagset := flag.NewFlagSet(name, flag.ExitOnError)

	flagset.StringVar(&c.workdir, "workdir", c.workdir, "Directory for working files (tokens, reports, etc)")
	flagset.StringVar(&c.credentials, "credentials", c.credentials, "Path for the service account or OAuth client 'credentials.json' file")

	c.flags = flagset

	return flagset
}

// configure loads the configuration file and applies it to any option not already set
// on the command line.
func (c *command) configure(options *Options) (*config.Config, error) {
	cfg, err := config.Load(options.Config)
	if err != nil {
		return nil, err
	}

	c.debug = options.Debug

	set := c.isSet()

	if !set["workdir"] && cfg.Workdir != "" {
		c.workdir = cfg.Workdir
	}

	if !set["credentials"] && cfg.Credentials != "" {
		c.credentials = cfg.Credentials
	}

	return cfg, nil
}

// isSet returns the flags explicitly set on the command line.
func (c *command) isSet() map[string]bool {
	set := map[string]bool{}

	if c.flags != nil {
		c.flags.Visit(func(f *flag.Flag) {
			set[f.Name] = true
		})
	}

	return set
}

func helpOptions(flagset *flag.FlagSet) {
	count := 0
	flag.VisitAll(func(f *flag.Flag) {
		count++
	})

	flagset.VisitAll(func(f *flag.Flag) {
		fmt.Printf("    --%-13s %s\n", f.Name, f.Usage)
	})

	if count > 0 {
		fmt.Println()
		fmt.Println("  Options:")
		flag.VisitAll(func(f *flag.Flag) {
			fmt.Printf("    --%-13s %s\n", f.Name, f.Usage)
		})
	}
}

var urls = map[string]*regexp.Regexp{
	"spreadsheet": regexp.MustCompile(`^https://docs.google.com/spreadsheets/d/(.*?)(?:/.*)?$`),
	"document":    regexp.MustCompile(`^https://docs.google.com/document/d/(.*?)(?:/.*)?$`),
	"folder":      regexp.MustCompile(`^https://drive.google.com/drive/(?:u/[0-9]+/)?folders/(.*?)(?:[/?].*)?$`),
}

// resolveID returns the file ID from a Google Sheets, Docs or Drive URL. Anything that
// does not look like a URL is assumed to already be an ID.
func resolveID(kind string, v string) (string, error) {
	v = strings.TrimSpace(v)

	if !strings.HasPrefix(v, "https://") {
		return v, nil
	}

	if re, ok := urls[kind]; ok {
		if match := re.FindStringSubmatch(v); len(match) > 1 && match[1] != "" {
			return match[1], nil
		}
	}

	return "", fmt.Errorf("invalid %v URL '%v'", kind, v)
}

func debugf(format string, args ...any) {
	log.Printf("%-5s %s", "DEBUG", fmt.Sprintf(format, args...))
}

func infof(format string, args ...any) {
	log.Printf("%-5s %s", "INFO", fmt.Sprintf(format, args...))
}

func warnf(format string, args ...any) {
	log.Printf("%-5s %s", "WARN", fmt.Sprintf(format, args...))
}

func errorf(format string, args ...any) {
	log.Printf("%-5s %s", "ERROR", fmt.Sprintf(format, args...))
}
