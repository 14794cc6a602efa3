package pipeline

import (
	"errors"
	"time"
)

// Recorder receives run and row level events for metrics.
type Recorder interface {
	RunStarted()
	RunCompleted(status string, elapsed time.Duration)
	DocumentGenerated()
	RowFailed(stage string)
}

type nop struct{}

func (nop) RunStarted() {}

func (nop) RunCompleted(string, time.Duration) {}

func (nop) DocumentGenerated() {}

func (nop) RowFailed(string) {}

// Stage names the pipeline stage at which an error was raised.
func Stage(err error) string {
	var validation *ValidationError
	var credentials *CredentialError
	var empty *SourceEmptyError
	var duplication *DuplicationError
	var edit *TemplateEditError
	var remote *RemoteCallError

	switch {
	case errors.As(err, &validation):
		return "validate"

	case errors.As(err, &credentials):
		return "credentials"

	case errors.As(err, &empty):
		return "read"

	case errors.As(err, &duplication):
		return "copy"

	case errors.As(err, &edit):
		return "edit"

	case errors.As(err, &remote):
		return remote.Service + "." + remote.Op

	default:
		return "other"
	}
}
