package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoEndpoint is returned when a structured source has no URL to try.
var ErrNoEndpoint = errors.New("no status API endpoint configured")

// TransportError covers network failures, timeouts and non-success HTTP codes.
type TransportError struct {
	URL        string
	StatusCode int   // zero when no response was received
	Err        error // nil for non-success HTTP codes
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// FormatError covers responses that arrived but cannot be used: unexpected
// content type or an unparseable body.
type FormatError struct {
	URL    string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *FormatError) Unwrap() error { return e.Err }

// Attempt is one failed candidate URL.
type Attempt struct {
	URL string
	Err error
}

// AttemptsError is returned once every candidate endpoint has failed.
// Its message lists each URL with its own reason.
type AttemptsError struct {
	Attempts []Attempt
}

func (e *AttemptsError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, a.URL+" → "+a.Err.Error())
	}
	return strings.Join(parts, " ; ")
}

func (e *AttemptsError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}
