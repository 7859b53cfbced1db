package provider

import (
	"errors"
	"strings"
)

// Sentinel kinds returned by Client.
var (
	ErrLevelsUnavailable = errors.New("candidate levels unavailable")
	ErrSubmitFailed      = errors.New("assignment submission failed")
)

// GenericSubmitMessage is shown when a failed submission carries no usable detail.
const GenericSubmitMessage = "Submission failed. Please try again."

// SubmitError describes a failed assignment submission. Err is set for
// transport failures; StatusCode, Errors and Message come from a non-2xx reply.
type SubmitError struct {
	StatusCode int
	Errors     []string
	Message    string
	Err        error
}

func (e *SubmitError) Error() string {
	if e.Err != nil {
		return ErrSubmitFailed.Error() + ": " + e.Err.Error()
	}
	return ErrSubmitFailed.Error() + ": " + e.Alert()
}

// Unwrap exposes the transport error, if any.
func (e *SubmitError) Unwrap() error { return e.Err }

// Is matches ErrSubmitFailed.
func (e *SubmitError) Is(target error) bool { return target == ErrSubmitFailed }

// Alert returns the text shown to the user: the errors list joined by
// newlines, else the message, else GenericSubmitMessage.
func (e *SubmitError) Alert() string {
	if len(e.Errors) > 0 {
		return strings.Join(e.Errors, "\n")
	}
	if e.Message != "" {
		return e.Message
	}
	return GenericSubmitMessage
}
