package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/uhppoted/uhppoted-app-docgen/pipeline"
)

const (
	SHEETS  = "https://www.googleapis.com/auth/spreadsheets"
	DOCS    = "https://www.googleapis.com/auth/documents"
	DRIVE   = "https://www.googleapis.com/auth/drive"
	STORAGE = "https://www.googleapis.com/auth/devstorage.read_write"
)

var scopes = []string{SHEETS, DOCS, DRIVE, STORAGE}

// connector returns a pipeline.Connector that authenticates with the credentials
// supplied for each run. OAuth client credentials use the tokens cached in the work
// directory by the 'authorise' command.
func connector(workdir string, archive string) pipeline.Connector {
	return func(ctx context.Context, credentials []byte) (*pipeline.Providers, error) {
		opts, err := authorize(ctx, credentials, workdir)
		if err != nil {
			return nil, err
		}

		gsheets, err := sheets.NewService(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("unable to create new Sheets client (%w)", err)
		}

		gdocs, err := docs.NewService(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("unable to create new Docs client (%w)", err)
		}

		gdrive, err := drive.NewService(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("unable to create new Drive client (%w)", err)
		}

		providers := pipeline.Providers{
			Sheets: &pipeline.GoogleSheets{Service: gsheets},
			Drive:  &pipeline.GoogleDrive{Service: gdrive},
			Docs:   &pipeline.GoogleDocs{Service: gdocs},
		}

		if archive != "" {
			if providers.Archive, err = pipeline.NewGCSArchive(ctx, archive, opts...); err != nil {
				return nil, err
			}
		}

		return &providers, nil
	}
}

// sheetsService creates a Sheets client for the commands that only use the Sheets API.
func sheetsService(ctx context.Context, credentials string, workdir string) (*pipeline.GoogleSheets, error) {
	b, err := os.ReadFile(credentials)
	if err != nil {
		return nil, err
	}

	if err := pipeline.CheckCredentials(b); err != nil {
		return nil, err
	}

	opts, err := authorize(ctx, b, workdir)
	if err != nil {
		return nil, err
	}

	google, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create new Sheets client (%w)", err)
	}

	return &pipeline.GoogleSheets{Service: google}, nil
}

func authorize(ctx context.Context, credentials []byte, workdir string) ([]option.ClientOption, error) {
	if isOAuthClient(credentials) {
		config, err := google.ConfigFromJSON(credentials, scopes...)
		if err != nil {
			return nil, &pipeline.CredentialError{Err: err}
		}

		tokens := tokensFile(workdir, config.ClientID)
		token, err := tokenFromFile(tokens)
		if err != nil {
			return nil, &pipeline.CredentialError{Err: fmt.Errorf("no cached OAuth2 token in %v - run '%v authorise' first", tokens, APP)}
		}

		return []option.ClientOption{option.WithHTTPClient(config.Client(ctx, token))}, nil
	}

	creds, err := google.CredentialsFromJSON(ctx, credentials, scopes...)
	if err != nil {
		return nil, &pipeline.CredentialError{Err: err}
	}

	return []option.ClientOption{option.WithCredentials(creds)}, nil
}

func isOAuthClient(credentials []byte) bool {
	object := map[string]json.RawMessage{}

	if err := json.Unmarshal(credentials, &object); err != nil {
		return false
	}

	_, installed := object["installed"]
	_, web := object["web"]

	return installed || web
}

func tokensFile(workdir, clientID string) string {
	return filepath.Join(workdir, ".google", fmt.Sprintf("%v.tokens", clientID))
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	token := oauth2.Token{}
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, err
	}

	return &token, nil
}

func saveToken(file string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(file), 0700); err != nil {
		return err
	}

	f, err := os.OpenFile(file, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache OAuth2 token (%w)", err)
	}

	defer f.Close()

	return json.NewEncoder(f).Encode(token)
}
