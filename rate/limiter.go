package rate

import "time"

// Limiter is the admission gate in front of the dispatcher.
//
// Admit is called once per event with the event's timestamp and reports
// whether the event may be delivered. A false result is not an error: the
// caller drops the event silently. Implementations must be safe for
// concurrent use, and must not read the wall clock themselves so tests can
// drive time deterministically.
//
// Example usage:
//
//	limiter := rate.NewTokenBucket(5)
//	if limiter.Admit(time.Now()) {
//	    dispatcher.Submit(req)
//	}
type Limiter interface {
	Admit(now time.Time) bool
}
