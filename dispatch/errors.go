package dispatch

import (
	"errors"
	"fmt"
)

const (
	ErrStrSendFailed      = "send failed"
	ErrStrSendTimeout     = "send exceeded its completion bound"
	ErrStrSinkUnavailable = "sink unavailable"
)

var (
	// ErrSendFailed wraps every error returned (or panic raised) by a Sink.
	ErrSendFailed = errors.New(ErrStrSendFailed)

	// ErrSendTimeout is reported when a Sink did not return within
	// the configured completion bound. The send is abandoned, not killed.
	ErrSendTimeout = errors.New(ErrStrSendTimeout)

	// ErrSinkUnavailable is logged when the SinkFactory fails;
	// the request is dropped and the factory is retried on the next Submit.
	ErrSinkUnavailable = errors.New(ErrStrSinkUnavailable)
)

// PanicError carries a value recovered from a panicking Sink.
type PanicError struct {
	Value any
	Stack []byte
}

var _ error = &PanicError{}

func (e *PanicError) Error() string {
	return fmt.Sprintf("sink panicked: %v", e.Value)
}

func sendFailed(err error) error {
	return fmt.Errorf("%w: %w", ErrSendFailed, err)
}
