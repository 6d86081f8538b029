package dispatch

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/block/eventship-go/format"
	"github.com/block/eventship-go/logger"
)

// Dispatcher delivers each submitted Request on its own goroutine.
//
// Submit never blocks on the delivery and never reports its outcome to the
// caller: sink errors, panics and timeouts are logged (and optionally
// published on Config.Results), and each task is removed from the Registry
// exactly once when it reaches a terminal state.
//
// Usage Example:
//
//	registry := dispatch.NewRegistry()
//	d := dispatch.NewDispatcher(registry, factory, dispatch.Config{
//	    SendTimeout: 10 * time.Second,
//	    Logger:      myLogger,
//	})
//
//	d.Submit(dispatch.Request{Data: payload})
//
//	// on shutdown
//	registry.WaitForPendingTimeout(5 * time.Second)
type Dispatcher struct {
	registry *Registry
	factory  SinkFactory
	config   Config
	logger   logger.Logger
	clock    Clock

	mu   sync.Mutex
	conn atomic.Pointer[sinkConn]

	submitted atomic.Int64
	sent      atomic.Int64
	failed    atomic.Int64
	timedOut  atomic.Int64
	dropped   atomic.Int64
}

type sinkConn struct {
	sink Sink
}

// Stats is a snapshot of dispatcher counters.
type Stats struct {
	Submitted int64
	Sent      int64
	Failed    int64
	TimedOut  int64
	// Dropped counts requests that never became a task
	// because the Sink could not be constructed
	Dropped int64
}

func NewDispatcher(
	registry *Registry,
	factory SinkFactory,
	config Config,
) *Dispatcher {
	config = applyConfig(config)
	if registry == nil {
		registry = NewRegistry(WithRegistryClock(config.Clock))
	}

	return &Dispatcher{
		registry: registry,
		factory:  factory,
		config:   config,
		logger:   config.Logger,
		clock:    config.Clock,
	}
}

func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

func (d *Dispatcher) Stats() Stats {
	return Stats{
		Submitted: d.submitted.Load(),
		Sent:      d.sent.Load(),
		Failed:    d.failed.Load(),
		TimedOut:  d.timedOut.Load(),
		Dropped:   d.dropped.Load(),
	}
}

// Submit delivers req asynchronously. It returns as soon as the delivery
// goroutine is started.
func (d *Dispatcher) Submit(req Request) {
	d.submitted.Add(1)

	s, err := d.sink()
	if err != nil {
		d.dropped.Add(1)
		d.logger.Errorf("dispatch.Dispatcher: dropping request (MetaData: %v): %v", req.MetaData, err)
		return
	}

	task := newTask(req, d.clock.Now())
	// The task is registered before its goroutine starts,
	// so a finished task is never added to the registry.
	d.registry.Add(task)
	go d.run(s, task)
}

// sink returns the shared Sink, building it on first use.
func (d *Dispatcher) sink() (Sink, error) {
	if c := d.conn.Load(); c != nil {
		return c.sink, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if c := d.conn.Load(); c != nil {
		return c.sink, nil
	}
	if d.factory == nil {
		return nil, ErrSinkUnavailable
	}

	s, err := d.factory()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSinkUnavailable, err)
	}
	if s == nil {
		return nil, ErrSinkUnavailable
	}
	d.conn.Store(&sinkConn{sink: s})
	d.logger.Debugf("dispatch.Dispatcher: sink constructed")
	return s, nil
}

// run supervises one task. It is the only place the task leaves
// the registry.
func (d *Dispatcher) run(s Sink, task *Task) {
	ctx, cancel := context.WithCancel(
		format.NewContext(context.Background(), *d.config.Format),
	)
	defer cancel()

	sendDone := make(chan error, 1)
	go func() {
		sendDone <- d.send(ctx, s, task.OriginalReq)
	}()

	var deadline <-chan struct{}
	if d.config.SendTimeout > 0 {
		deadline = d.after(ctx)
	}

	var state State
	var err error
	select {
	case sendErr := <-sendDone:
		if sendErr != nil {
			state, err = StateFailed, sendFailed(sendErr)
		} else {
			state = StateSent
		}
	case <-deadline:
		state, err = StateTimedOut, ErrSendTimeout
		cancel()
		go d.abandon(task, sendDone)
	}

	task.finish(state, err)
	elapsed := d.clock.Now().Sub(task.StartedAt)

	switch state {
	case StateSent:
		d.sent.Add(1)
		d.logger.Debugf("dispatch.Dispatcher: task %s sent in %s", task.ID, elapsed)
	case StateFailed:
		d.failed.Add(1)
		d.logger.Errorf(
			"dispatch.Dispatcher: task %s failed after %s (MetaData: %v): %v",
			task.ID, elapsed, task.OriginalReq.MetaData, err,
		)
	case StateTimedOut:
		d.timedOut.Add(1)
		d.logger.Warnf(
			"dispatch.Dispatcher: task %s timed out after %s (MetaData: %v); send abandoned",
			task.ID, elapsed, task.OriginalReq.MetaData,
		)
	}

	d.registry.Remove(task.ID)

	if d.config.Results != nil {
		d.config.Results <- Result{
			TaskID:      task.ID,
			OriginalReq: task.OriginalReq,
			State:       state,
			Error:       err,
			Duration:    elapsed,
		}
	}
}

// after fires once the completion bound elapses.
// It stops waiting as soon as ctx is canceled, i.e. when run returns.
func (d *Dispatcher) after(ctx context.Context) <-chan struct{} {
	fired := make(chan struct{})
	timer := d.clock.After(d.config.SendTimeout)
	go func() {
		select {
		case <-timer:
			close(fired)
		case <-ctx.Done():
		}
	}()
	return fired
}

func (d *Dispatcher) send(ctx context.Context, s Sink, req Request) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return s.Send(ctx, req)
}

// abandon waits for a timed out send so its late outcome is still visible
// in debug logs. The task state is not touched.
func (d *Dispatcher) abandon(task *Task, sendDone <-chan error) {
	err := <-sendDone
	d.logger.Debugf(
		"dispatch.Dispatcher: abandoned task %s finished after %s, err: %v",
		task.ID, d.clock.Now().Sub(task.StartedAt), err,
	)
}
