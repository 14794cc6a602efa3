package pipeline

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// ValidationError is returned when a required request field is missing. No remote
// calls are made once a ValidationError has been raised.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Missing required fields (%v)", e.Field)
}

// CredentialError is returned when the credential payload cannot be parsed into
// credentials usable by the Sheets, Docs and Drive clients.
type CredentialError struct {
	Err error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("Invalid credentials (%v)", e.Err)
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}

// SourceEmptyError is returned when the source sheet does not have a header row
// followed by at least one data row.
type SourceEmptyError struct {
	Rows int
}

func (e *SourceEmptyError) Error() string {
	return "No data found in spreadsheet"
}

// RemoteCallError wraps a failed call to the Sheets, Docs or Drive API.
type RemoteCallError struct {
	Service string
	Op      string
	Err     error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("%v %v failed (%v)", e.Service, e.Op, e.Err)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

// DuplicationError is a RemoteCallError raised when the template could not be
// copied into the destination folder.
type DuplicationError struct {
	Template string
	Name     string
	Err      error
}

func (e *DuplicationError) Error() string {
	return fmt.Sprintf("Unable to copy template %v to '%v' (%v)", e.Template, e.Name, e.Err)
}

func (e *DuplicationError) Unwrap() error {
	return &RemoteCallError{Service: "drive", Op: "copy", Err: e.Err}
}

// TemplateEditError is a RemoteCallError raised when the placeholder replacements
// could not be applied to a copied document.
type TemplateEditError struct {
	Document string
	Err      error
}

func (e *TemplateEditError) Error() string {
	return fmt.Sprintf("Unable to update document %v (%v)", e.Document, e.Err)
}

func (e *TemplateEditError) Unwrap() error {
	return &RemoteCallError{Service: "docs", Op: "batchUpdate", Err: e.Err}
}

// RowError identifies the data row (0-based) that failed when failures are collected
// rather than aborting the run.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %v: %v", SheetRow(e.Row), e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Status maps a pipeline error to the HTTP status reported to the caller.
func Status(err error) int {
	var validation *ValidationError
	var empty *SourceEmptyError

	switch {
	case err == nil:
		return http.StatusOK

	case errors.As(err, &validation), errors.As(err, &empty):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// Message returns the message reported to the caller for an error, preferring the
// message supplied by the Google API over the wrapped error text.
func Message(err error) string {
	var gerr *googleapi.Error

	if err == nil {
		return ""
	}

	if errors.As(err, &gerr) && gerr.Message != "" {
		return gerr.Message
	}

	if msg := err.Error(); msg != "" {
		return msg
	}

	return "Failed to generate documents"
}
