package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry keeps track of in-flight delivery tasks so a host process
// can check for and wait on outstanding deliveries (e.g. before shutdown).
//
// A Registry may be shared by several dispatchers. All methods are safe
// for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*Task
	clock Clock
}

type RegistryOption func(r *Registry)

// WithRegistryClock sets the clock used to account for the drain budget
// in WaitForPendingTimeout.
// default: SystemClock
func WithRegistryClock(clock Clock) RegistryOption {
	return func(r *Registry) {
		if clock != nil {
			r.clock = clock
		}
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		tasks: make(map[uuid.UUID]*Task),
		clock: SystemClock,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add registers task. Adding an already registered task is a no-op.
func (r *Registry) Add(task *Task) {
	if task == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[task.ID]; ok {
		return
	}
	r.tasks[task.ID] = task
}

// Remove unregisters the task with the given id.
// Removing an unknown id is a no-op and returns false.
func (r *Registry) Remove(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return false
	}
	delete(r.tasks, id)
	return true
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

// HasPending reports whether any registered task has not reached
// a terminal state. The answer may be stale by the time it is used;
// treat it as advisory.
func (r *Registry) HasPending() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.tasks {
		if !t.State().Terminal() {
			return true
		}
	}
	return false
}

// WaitForPending blocks until no registered task is pending.
// A stalled task blocks this call forever; prefer WaitForPendingTimeout
// on shutdown paths.
func (r *Registry) WaitForPending() {
	for {
		pending := r.pending()
		if len(pending) == 0 {
			return
		}
		for _, t := range pending {
			<-t.Done()
		}
	}
}

// WaitForPendingTimeout blocks until no registered task is pending
// or timeout elapses, whichever comes first.
// Tasks submitted while waiting are waited on as well, within the same budget.
// Returns true if nothing is pending anymore.
func (r *Registry) WaitForPendingTimeout(timeout time.Duration) bool {
	start := r.clock.Now()
	remaining := timeout
	for remaining > 0 {
		pending := r.pending()
		if len(pending) == 0 {
			return true
		}
		if !waitAll(pending, r.clock.After(remaining)) {
			break
		}
		remaining = timeout - r.clock.Now().Sub(start)
	}
	return !r.HasPending()
}

// WaitForPendingContext blocks until no registered task is pending
// or ctx is done, in which case ctx.Err() is returned.
func (r *Registry) WaitForPendingContext(ctx context.Context) error {
	for {
		pending := r.pending()
		if len(pending) == 0 {
			return nil
		}
		for _, t := range pending {
			select {
			case <-t.Done():
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (r *Registry) pending() []*Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var res []*Task
	for _, t := range r.tasks {
		if !t.State().Terminal() {
			res = append(res, t)
		}
	}
	return res
}

// waitAll waits for every task to finish. Returns false if stop fired first.
func waitAll(tasks []*Task, stop <-chan time.Time) bool {
	for _, t := range tasks {
		select {
		case <-t.Done():
		case <-stop:
			return false
		}
	}
	return true
}
