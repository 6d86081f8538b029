package batch

import (
	"sync"

	"github.com/block/eventship-go/dispatch"
)

// RecordingSubmitter is a Submitter for tests that keeps every request.
type RecordingSubmitter struct {
	mu        sync.Mutex
	submitted []dispatch.Request
	notify    chan struct{}
}

var _ Submitter = &RecordingSubmitter{}

func NewRecordingSubmitter() *RecordingSubmitter {
	return &RecordingSubmitter{notify: make(chan struct{}, 10000)}
}

func (s *RecordingSubmitter) Submit(req dispatch.Request) {
	s.mu.Lock()
	s.submitted = append(s.submitted, req)
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *RecordingSubmitter) Submitted() []dispatch.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]dispatch.Request, len(s.submitted))
	copy(res, s.submitted)
	return res
}

func (s *RecordingSubmitter) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.submitted)
}

// Notify receives one value per Submit call.
func (s *RecordingSubmitter) Notify() <-chan struct{} {
	return s.notify
}
