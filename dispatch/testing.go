package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// ManualClock is a Clock that only moves when Advance is called.
// Useful to drive completion deadlines and drain budgets in tests.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []manualWaiter
}

type manualWaiter struct {
	at time.Time
	ch chan time.Time
}

var _ Clock = &ManualClock{}

func NewManualClock(now time.Time) *ManualClock {
	return &ManualClock{now: now}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- c.now
		return ch
	}
	c.waiters = append(c.waiters, manualWaiter{at: c.now.Add(d), ch: ch})
	return ch
}

// Advance moves the clock forward and fires every expired After channel.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
	var keep []manualWaiter
	for _, w := range c.waiters {
		if !w.at.After(c.now) {
			w.ch <- c.now
		} else {
			keep = append(keep, w)
		}
	}
	c.waiters = keep
}

// Waiters returns the number of After channels that have not fired yet.
func (c *ManualClock) Waiters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}

// FakeSink is a configurable Sink for tests.
//
//   - Err is returned from every Send
//   - Panic, if not nil, is raised from every Send
//   - Block, if not nil, makes Send wait until it is closed
//     (or until ctx is done when HonorContext is set)
type FakeSink struct {
	Err          error
	Panic        any
	Block        chan struct{}
	HonorContext bool

	calls    atomic.Int64
	finished atomic.Int64
	mu       sync.Mutex
	received []Request
	started  chan struct{}
	once     sync.Once
}

var _ Sink = &FakeSink{}

func NewFakeSink() *FakeSink {
	return &FakeSink{}
}

func (f *FakeSink) Send(ctx context.Context, req Request) error {
	f.calls.Add(1)
	defer f.finished.Add(1)

	f.mu.Lock()
	f.received = append(f.received, req)
	f.mu.Unlock()
	f.once.Do(f.initStarted)
	select {
	case f.started <- struct{}{}:
	default:
	}

	if f.Block != nil {
		if f.HonorContext {
			select {
			case <-f.Block:
			case <-ctx.Done():
				return ctx.Err()
			}
		} else {
			<-f.Block
		}
	}
	if f.Panic != nil {
		panic(f.Panic)
	}
	return f.Err
}

func (f *FakeSink) initStarted() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.started == nil {
		f.started = make(chan struct{}, 1000)
	}
}

// Started returns a channel receiving one value per Send call.
func (f *FakeSink) Started() <-chan struct{} {
	f.once.Do(f.initStarted)
	return f.started
}

func (f *FakeSink) Calls() int {
	return int(f.calls.Load())
}

func (f *FakeSink) Finished() int {
	return int(f.finished.Load())
}

func (f *FakeSink) Received() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	res := make([]Request, len(f.received))
	copy(res, f.received)
	return res
}
