package dispatch

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of a Task.
//
//	Pending -> {Sent, Failed, TimedOut}
//
// Terminal states are absorbing.
type State int32

const (
	StatePending State = iota
	StateSent
	StateFailed
	StateTimedOut
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSent:
		return "sent"
	case StateFailed:
		return "failed"
	case StateTimedOut:
		return "timed-out"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is one of Sent, Failed or TimedOut.
func (s State) Terminal() bool {
	return s == StateSent || s == StateFailed || s == StateTimedOut
}

// Task is one in-flight delivery.
type Task struct {
	ID          uuid.UUID
	StartedAt   time.Time
	OriginalReq Request

	state atomic.Int32
	err   error
	done  chan struct{}
}

func newTask(req Request, now time.Time) *Task {
	return &Task{
		ID:          uuid.New(),
		StartedAt:   now,
		OriginalReq: req,
		done:        make(chan struct{}),
	}
}

func (t *Task) State() State {
	return State(t.state.Load())
}

// Done is closed once the task reaches a terminal state.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err returns the terminal error. Only meaningful after Done is closed.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// finish moves the task from Pending to s.
// Returns false if the task had already left Pending.
func (t *Task) finish(s State, err error) bool {
	if !s.Terminal() {
		return false
	}
	if !t.state.CompareAndSwap(int32(StatePending), int32(s)) {
		return false
	}
	t.err = err
	close(t.done)
	return true
}
