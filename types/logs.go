package types

import (
	"fmt"
	"time"
)

const (
	// MaxLogEventsPerRequest is the number of events accepted per request.
	MaxLogEventsPerRequest = 10000

	// DefaultGroupName and DefaultStreamName are used when an event
	// does not name its destination.
	DefaultGroupName  = "unspecified"
	DefaultStreamName = "unspecified"
)

type InputLogEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

type PutLogEventsRequest struct {
	GroupName  string          `json:"logGroupName"`
	StreamName string          `json:"logStreamName"`
	Events     []InputLogEvent `json:"logEvents"`
}

// NewLogEventsRequest builds a single-event request, falling back to
// DefaultGroupName and DefaultStreamName.
func NewLogEventsRequest(group, stream string, at time.Time, message string) *PutLogEventsRequest {
	if group == "" {
		group = DefaultGroupName
	}
	if stream == "" {
		stream = DefaultStreamName
	}
	return &PutLogEventsRequest{
		GroupName:  group,
		StreamName: stream,
		Events: []InputLogEvent{
			{Timestamp: at.UTC(), Message: message},
		},
	}
}

func (r *PutLogEventsRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil log request", ErrInvalidRequest)
	}
	if r.GroupName == "" || r.StreamName == "" {
		return fmt.Errorf("%w: group and stream names are required", ErrInvalidRequest)
	}
	if len(r.Events) == 0 {
		return fmt.Errorf("%w: no log events", ErrInvalidRequest)
	}
	if len(r.Events) > MaxLogEventsPerRequest {
		return fmt.Errorf(
			"%w: %d log events, at most %d allowed",
			ErrInvalidRequest, len(r.Events), MaxLogEventsPerRequest,
		)
	}
	return nil
}
