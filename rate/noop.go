package rate

import "time"

// NoopLimiter admits every event.
type NoopLimiter struct {
}

var _ Limiter = &NoopLimiter{}

func (n NoopLimiter) Admit(_ time.Time) bool {
	return true
}
