package eventship_go

import (
	"time"

	"github.com/block/eventship-go/dispatch"
	"github.com/block/eventship-go/format"
	"github.com/block/eventship-go/logger"
)

type appenderConfig struct {
	// maxRequestsPerSecond is the token bucket capacity:
	// events admitted per second, with bursts up to the same amount.
	// <= 0 disables rate limiting.
	// default: 0
	maxRequestsPerSecond int

	// sendTimeout bounds a single delivery
	// (maps to dispatch.Config.SendTimeout)
	// default: 30 seconds
	sendTimeout time.Duration

	// format renders numbers and timestamps on the wire
	// (maps to dispatch.Config.Format)
	// default: format.Invariant
	format *format.Format

	// clock is used for delivery deadlines and drain budgets
	// default: dispatch.SystemClock
	clock dispatch.Clock

	// registry tracks pending deliveries. Appenders sharing a registry
	// are drained together.
	// default: a new registry per appender
	registry *dispatch.Registry

	// responseChan is an optional channel receiving
	// one dispatch.Result per delivery.
	// If nil - outcomes are only logged.
	// default: nil
	responseChan chan<- dispatch.Result

	// logger provides logging functionality for all internal
	// eventship-go operations
	// default: logger.Noop
	logger logger.Logger
}

func defaultAppenderConfig() appenderConfig {
	return appenderConfig{
		maxRequestsPerSecond: 0,
		sendTimeout:          30 * time.Second,
		format:               nil,
		clock:                dispatch.SystemClock,
		registry:             nil,
		responseChan:         nil,
		logger:               logger.Noop{},
	}
}

type AppenderConfigOption func(c *appenderConfig)

func WithMaxRequestsPerSecond(n int) AppenderConfigOption {
	return func(c *appenderConfig) {
		c.maxRequestsPerSecond = n
	}
}

// WithSendTimeout sets the completion bound of every delivery.
// Pass dispatch.NoTimeout to wait for the sink indefinitely.
func WithSendTimeout(timeout time.Duration) AppenderConfigOption {
	return func(c *appenderConfig) {
		c.sendTimeout = timeout
	}
}

func WithFormat(f format.Format) AppenderConfigOption {
	return func(c *appenderConfig) {
		c.format = &f
	}
}

func WithClock(clock dispatch.Clock) AppenderConfigOption {
	return func(c *appenderConfig) {
		c.clock = clock
	}
}

func WithRegistry(registry *dispatch.Registry) AppenderConfigOption {
	return func(c *appenderConfig) {
		c.registry = registry
	}
}

func WithResultListener(res chan<- dispatch.Result) AppenderConfigOption {
	return func(c *appenderConfig) {
		c.responseChan = res
	}
}

func WithLogger(logger logger.Logger) AppenderConfigOption {
	return func(c *appenderConfig) {
		c.logger = logger
	}
}
