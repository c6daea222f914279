package core

import (
	"fmt"
	"net/http"
)

// ConfigurationError reports a missing credential or an invalid argument.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s %s", e.Field, e.Reason)
}

// UpstreamError reports a failed call to a Strava endpoint.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := "strava " + e.Endpoint
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// PartialResultWarning is not an error: the fetch succeeded but the provider
// had fewer activities than requested.
type PartialResultWarning struct {
	Fetched   int
	Requested int
}

func (w PartialResultWarning) String() string {
	return fmt.Sprintf("fetched fewer activities than requested: %d < %d", w.Fetched, w.Requested)
}
