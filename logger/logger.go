package logger

// Logger provides a standardized logging interface for the eventship client.
// It defines methods for different log levels (Debug, Info, Warn, Error) so
// the dispatch core can report delivery problems without ever returning them
// to the code that emitted the event. Plug in zap via NewZap, print to stdout
// via NewStdOut, or use Noop to disable logging entirely.
//
// The logger is used throughout the client for:
// - Rate limiter rejections (debug)
// - Sink construction and delivery failures (error)
// - Deliveries that exceeded their completion bound (warn)
// - Buffered processor lifecycle (debug)
//
// Usage Example:
//
//	// Using with zap
//	appender := eventship_go.NewAppender(factory, eventship_go.WithLogger(logger.NewZap(z)))
//
//	// Disable logging entirely
//	appender := eventship_go.NewAppender(factory, eventship_go.WithLogger(&logger.Noop{}))
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
