package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Configuration holds the identifiers and credentials for a single run. It is created
// from the incoming request and is not modified while the run is in progress.
type Configuration struct {
	SpreadsheetID string `mapstructure:"spreadsheetId"`
	TemplateID    string `mapstructure:"templateDocId"`
	FolderID      string `mapstructure:"folderId"`
	Credentials   []byte `mapstructure:"-"`
}

// Validate checks that all four required fields are present, in the order the fields
// appear in the request form.
func (c Configuration) Validate() error {
	if strings.TrimSpace(c.SpreadsheetID) == "" {
		return &ValidationError{Field: "spreadsheetId"}
	}

	if strings.TrimSpace(c.TemplateID) == "" {
		return &ValidationError{Field: "templateDocId"}
	}

	if strings.TrimSpace(c.FolderID) == "" {
		return &ValidationError{Field: "folderId"}
	}

	if len(c.Credentials) == 0 {
		return &ValidationError{Field: "credentials"}
	}

	return nil
}

// CheckCredentials verifies that the credential payload is a JSON object with a
// 'type' field (service_account, authorized_user or an OAuth client configuration).
func CheckCredentials(credentials []byte) error {
	object := map[string]any{}

	if err := json.Unmarshal(credentials, &object); err != nil {
		return &CredentialError{Err: err}
	}

	if _, ok := object["type"]; ok {
		return nil
	}

	// ... OAuth client configurations are keyed by application type
	if _, ok := object["installed"]; ok {
		return nil
	}

	if _, ok := object["web"]; ok {
		return nil
	}

	return &CredentialError{Err: fmt.Errorf("missing credentials type")}
}
