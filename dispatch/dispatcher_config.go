package dispatch

import (
	"time"

	"github.com/block/eventship-go/format"
	"github.com/block/eventship-go/logger"
)

// NoTimeout disables the completion bound: a task stays pending
// until its Sink returns.
const NoTimeout time.Duration = -1

type Config struct {
	// SendTimeout bounds how long the dispatcher waits for a single Sink.Send.
	// When exceeded, the task becomes StateTimedOut, the send context is
	// canceled and the send is abandoned. Use NoTimeout to disable.
	// default: 30 seconds
	SendTimeout time.Duration

	// Format is attached to every send context (see format.FromContext)
	// default: format.Invariant
	Format *format.Format

	// Clock provides task timestamps and the completion deadline
	// default: SystemClock
	Clock Clock

	// Results is an optional channel receiving one Result per task
	// that reached a terminal state. Sends on it block the task goroutine
	// (never the Submit caller), so the listener must keep draining it.
	// If nil - results are only logged.
	// default: nil
	Results chan<- Result

	// Logger receives failure, timeout and debug messages
	// default: logger.Noop
	Logger logger.Logger
}

const defaultSendTimeout = 30 * time.Second

func defaultConfig() Config {
	f := format.Invariant
	return Config{
		SendTimeout: defaultSendTimeout,
		Format:      &f,
		Clock:       SystemClock,
		Results:     nil,
		Logger:      &logger.Noop{},
	}
}

func applyConfig(inConfig Config) Config {
	outConfig := defaultConfig()
	if inConfig.SendTimeout != 0 {
		outConfig.SendTimeout = inConfig.SendTimeout
	}
	if inConfig.Format != nil {
		outConfig.Format = inConfig.Format
	}
	if inConfig.Clock != nil {
		outConfig.Clock = inConfig.Clock
	}
	if inConfig.Results != nil {
		outConfig.Results = inConfig.Results
	}
	if inConfig.Logger != nil {
		outConfig.Logger = inConfig.Logger
	}
	return outConfig
}
