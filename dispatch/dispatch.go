package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Request is a single payload ready for delivery.
// The dispatcher never inspects Data; it only forwards the Request to the Sink.
//
// Usage Example:
//
//	req := dispatch.Request{
//	    Data:     &types.PutMetricDataRequest{...}, // The payload for the sink
//	    MetaData: "checkout-latency",             // Optional correlation value
//	}
//	dispatcher.Submit(req)
type Request struct {
	// Data contains the payload to be delivered
	// (e.g. *types.PutMetricDataRequest, *types.PutLogEventsRequest)
	Data any
	// MetaData holds optional contextual information that
	// is echoed back in Result for correlation
	MetaData any
}

// Sink performs the actual delivery of a Request.
//
// Send is called synchronously from a dispatcher goroutine, possibly from many
// goroutines at once, so implementations must be safe for concurrent use.
// ctx carries the rendering format (see format.FromContext) and is canceled
// when the dispatcher gives up waiting; honoring the cancellation is
// optional.
type Sink interface {
	Send(ctx context.Context, req Request) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, req Request) error

func (f SinkFunc) Send(ctx context.Context, req Request) error {
	return f(ctx, req)
}

// SinkFactory builds the Sink lazily on the first Submit.
// A failing factory is called again on the next Submit.
type SinkFactory func() (Sink, error)

// StaticSink returns a SinkFactory that always yields s.
func StaticSink(s Sink) SinkFactory {
	return func() (Sink, error) {
		return s, nil
	}
}

// Result reports the terminal state of one submitted Request.
type Result struct {
	TaskID      uuid.UUID
	OriginalReq Request
	State       State
	// Error is nil for StateSent, wraps ErrSendFailed for StateFailed
	// and is ErrSendTimeout for StateTimedOut
	Error error
	// Duration between submission and the terminal state
	Duration time.Duration
}

// Clock abstracts the time source used for task timestamps,
// completion deadlines and drain budgets.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

// SystemClock is the Clock backed by the time package.
var SystemClock Clock = systemClock{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
