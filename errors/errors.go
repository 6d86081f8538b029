package errors

import (
	"errors"
	"fmt"
)

const (
	STAGE_BEFORE_REQUEST = "before-request"
	STAGE_REQUEST        = "request"
	STAGE_AFTER_REQUEST  = "after-request"

	TYPE_UNKNOWN       = "unknown"
	TYPE_JSON_ENCODE   = "json"
	TYPE_REQUEST_PREP  = "request-prep"
	TYPE_IO            = "io"
	TYPE_HTTP_STATUS   = "not-ok-http-status"
	TYPE_INVALID_DATA  = "invalid-data"
	TYPE_UNSUPPORTED   = "unsupported-payload"
	TYPE_CANCELED      = "canceled"
	TYPE_INVALID_SETUP = "invalid-setup"
)

// SendError describes a failed delivery attempt to the ingestion endpoint.
type SendError struct {
	Stage          string
	Type           string
	SourceErr      error
	Body           []byte
	HttpStatusCode int
}

var _ error = &SendError{}

func (e *SendError) Error() string {
	var err string
	if e.SourceErr != nil {
		err = e.SourceErr.Error()
	} else {
		err = string(e.Body)
	}
	return fmt.Sprintf(
		"delivery to ingestion endpoint failed during '%s' stage with error type '%s', httpStatus: '%d'; original err: %v",
		e.Stage, e.Type, e.HttpStatusCode, err,
	)
}

func (e *SendError) Unwrap() error {
	return e.SourceErr
}

// Is matches any *SendError, so errors.Is(err, &SendError{}) works as a
// type check across wrapped dispatch errors.
func (e *SendError) Is(other error) bool {
	var err *SendError
	return errors.As(other, &err) && err != nil
}

// Retryable reports whether a caller-level retry could plausibly succeed.
// The dispatcher never retries on its own; this is informational only.
func (e *SendError) Retryable() bool {
	status := e.HttpStatusCode
	return (status == 0 && e.Stage == STAGE_REQUEST) || // Request was not sent or context timed out
		status == 408 || // Client Request Timeout
		status == 429 || // Rate limited
		status >= 500 // Any server error
}
