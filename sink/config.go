package sink

import (
	"net/http"
	"time"

	"github.com/block/eventship-go/logger"
)

type config struct {
	// transport specifies the HTTP transport mechanism
	// for making requests.
	// It's useful for mocking or if customers
	// want to add extra logging, headers, etc.
	// default: http.DefaultTransport
	transport http.RoundTripper

	// timeout sets the maximum duration for HTTP requests
	// before they are cancelled. The dispatcher's completion bound
	// still applies on top of it.
	// default: 10 seconds
	timeout time.Duration

	// logger provides logging functionality for sink operations
	// default: logger.Noop
	logger logger.Logger
}

func defaultConfig() *config {
	return &config{
		transport: http.DefaultTransport,
		timeout:   10 * time.Second,
		logger:    logger.Noop{},
	}
}

type Option func(c *config)

func WithTransport(transport http.RoundTripper) Option {
	return func(c *config) {
		c.transport = transport
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.timeout = timeout
	}
}

func WithLogger(logger logger.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}
