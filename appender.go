package eventship_go

import (
	"sync/atomic"
	"time"

	"github.com/block/eventship-go/dispatch"
	"github.com/block/eventship-go/rate"
	"github.com/block/eventship-go/types"
)

// Appender is the entry point used by application code: every event goes
// through the rate limiter and, once admitted, is delivered asynchronously
// by the dispatcher. Append never blocks on the delivery and never fails.
//
// Usage Example:
//
//	appender := eventship_go.NewAppender(
//	    sink.NewHTTPFactory("https://ingest.example.com", apiKey),
//	    eventship_go.WithMaxRequestsPerSecond(50),
//	    eventship_go.WithLogger(logger.NewZap(z)),
//	)
//
//	appender.AppendMetric(time.Now(), &types.PutMetricDataRequest{...})
//
//	// before the process exits
//	appender.WaitForPendingRequestsTimeout(5 * time.Second)
type Appender struct {
	config     appenderConfig
	limiter    atomic.Pointer[limiterBox]
	dispatcher *dispatch.Dispatcher
}

type limiterBox struct {
	rate.Limiter
}

func NewAppender(factory dispatch.SinkFactory, opts ...AppenderConfigOption) *Appender {
	cfg := defaultAppenderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	registry := cfg.registry
	if registry == nil {
		registry = dispatch.NewRegistry(dispatch.WithRegistryClock(cfg.clock))
	}

	a := &Appender{
		config: cfg,
		dispatcher: dispatch.NewDispatcher(registry, factory, dispatch.Config{
			SendTimeout: cfg.sendTimeout,
			Format:      cfg.format,
			Clock:       cfg.clock,
			Results:     cfg.responseChan,
			Logger:      cfg.logger,
		}),
	}
	a.limiter.Store(&limiterBox{rate.NewTokenBucket(cfg.maxRequestsPerSecond)})
	return a
}

// Append admits req at the given event time and submits it for delivery.
// It returns false if the rate limiter rejected the event; rejected events
// are dropped.
func (a *Appender) Append(at time.Time, req dispatch.Request) bool {
	if !a.admit(at) {
		return false
	}
	a.dispatcher.Submit(req)
	return true
}

func (a *Appender) AppendMetric(at time.Time, req *types.PutMetricDataRequest) bool {
	return a.Append(at, dispatch.Request{Data: req})
}

func (a *Appender) AppendLog(at time.Time, req *types.PutLogEventsRequest) bool {
	return a.Append(at, dispatch.Request{Data: req})
}

func (a *Appender) admit(at time.Time) bool {
	if a.limiter.Load().Admit(at) {
		return true
	}
	a.config.logger.Debugf("eventship.Appender: event at %s denied, rate limiter saturated", at.Format(time.RFC3339Nano))
	return false
}

// SetMaxRequestsPerSecond replaces the rate limiter with a full bucket
// of capacity n. n <= 0 disables rate limiting.
func (a *Appender) SetMaxRequestsPerSecond(n int) {
	a.limiter.Store(&limiterBox{rate.NewTokenBucket(n)})
}

// HasPendingRequests reports whether any delivery sharing this appender's
// registry is still in flight.
func (a *Appender) HasPendingRequests() bool {
	return a.dispatcher.Registry().HasPending()
}

// WaitForPendingRequests blocks until no delivery is pending.
func (a *Appender) WaitForPendingRequests() {
	a.dispatcher.Registry().WaitForPending()
}

// WaitForPendingRequestsTimeout blocks until no delivery is pending or
// timeout elapses. It returns true if everything was drained.
func (a *Appender) WaitForPendingRequestsTimeout(timeout time.Duration) bool {
	return a.dispatcher.Registry().WaitForPendingTimeout(timeout)
}

func (a *Appender) Registry() *dispatch.Registry {
	return a.dispatcher.Registry()
}

func (a *Appender) Stats() dispatch.Stats {
	return a.dispatcher.Stats()
}
