package commands

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var AuthoriseCmd = Authorise{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
	},
}

// Authorise runs the OAuth2 consent flow for an OAuth client 'credentials.json' and
// caches the resulting tokens in the work directory. Service account credentials do
// not need to be authorised.
type Authorise struct {
	command
}

func (cmd *Authorise) Name() string {
	return "authorise"
}

func (cmd *Authorise) Description() string {
	return "Authorises uhppoted-app-docgen to access Google Sheets, Docs and Drive"
}

func (cmd *Authorise) Usage() string {
	return "--credentials <file>"
}

func (cmd *Authorise) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] authorise [options] --credentials <file>\n", APP)
	fmt.Println()
	fmt.Println("  Authorises access to the Google Sheets, Docs and Drive APIs for an OAuth2 client and")
	fmt.Println("  stores the tokens in the work directory")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s authorise --credentials \"credentials.json\"\n", APP)
	fmt.Println()
}

func (cmd *Authorise) FlagSet() *flag.FlagSet {
	return cmd.flagset("authorise")
}

func (cmd *Authorise) Execute(args ...any) error {
	options := args[0].(*Options)

	if _, err := cmd.configure(options); err != nil {
		return err
	}

	if strings.TrimSpace(cmd.credentials) == "" {
		return fmt.Errorf("--credentials is a required option")
	}

	b, err := os.ReadFile(cmd.credentials)
	if err != nil {
		return err
	}

	if !isOAuthClient(b) {
		infof("%v is not an OAuth2 client configuration - nothing to authorise", cmd.credentials)
		return nil
	}

	config, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return fmt.Errorf("invalid OAuth2 client configuration (%v)", err)
	}

	token, err := cmd.authenticate(config)
	if err != nil {
		return fmt.Errorf("authorisation error (%v)", err)
	} else if token == nil {
		return nil
	}

	tokens := tokensFile(cmd.workdir, config.ClientID)
	if err := saveToken(tokens, token); err != nil {
		return err
	}

	infof("Saved OAuth2 tokens to %v", tokens)

	return nil
}

// authenticate starts an HTTP server on a localhost port to receive the authorisation
// code and exchanges it for a token. Returns a nil token if cancelled with CTRL-C.
func (cmd *Authorise) authenticate(config *oauth2.Config) (*oauth2.Token, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}

	config.RedirectURL = fmt.Sprintf("http://%v/", listener.Addr())

	state := fmt.Sprintf("%v-state", APP)
	authorised := make(chan string, 1)
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, rq *http.Request) {
		if cmd.debug {
			debugf("RQ: %v", rq.URL)
		}

		if rq.FormValue("state") != state || rq.FormValue("code") == "" {
			http.Error(w, "Invalid authorisation response", http.StatusBadRequest)
			return
		}

		fmt.Fprintln(w, "Authorised - you can close this page")

		select {
		case authorised <- rq.FormValue("code"):
		default:
		}
	})

	srv := &http.Server{
		Handler: mux,
	}

	go func() {
		if err := srv.Serve(listener); err != http.ErrServerClosed {
			warnf("%v", err)
		}
	}()

	defer srv.Shutdown(context.Background())

	// ... CTRL-C handler
	interrupt := make(chan os.Signal, 1)

	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	// ... open OAuth2 URL in browser
	url := config.AuthCodeURL(state, oauth2.AccessTypeOffline)

	if err := browse(url); err != nil {
		fmt.Printf("Could not open the authorisation page in your browser - please open the following URL manually:\n\n  %v\n\n", url)
	}

	// ... wait for authorisation
	select {
	case <-interrupt:
		fmt.Printf("\n.. cancelled\n\n")
		return nil, nil

	case code := <-authorised:
		return config.Exchange(context.Background(), code)
	}
}

func browse(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()

	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()

	default:
		return exec.Command("xdg-open", url).Start()
	}
}
