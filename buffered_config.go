package eventship_go

import (
	"time"

	"github.com/block/eventship-go/batch"
	"github.com/block/eventship-go/logger"
)

type bufferedConfig struct {
	// flushQueueSize sets the maximum number of events
	// to accumulate before triggering a flush
	// (maps to ProcessorConfig.FlushQueueSize)
	// default: 100
	flushQueueSize int

	// flushInterval specifies the maximum time to wait
	// before flushing, even if flushQueueSize hasn't been reached
	// (maps to ProcessorConfig.FlushInterval)
	// default: 5 seconds
	flushInterval time.Duration

	// bufferSize determines the buffer size of the internal request channel
	// to prevent blocking on Append() calls
	// (maps to ProcessorConfig.MaxBufferSize)
	// default: 500
	bufferSize int

	// merge combines buffered events into the submitted requests
	// (maps to ProcessorConfig.Merge)
	// default: batch.Merge
	merge batch.MergeFunc

	// logger provides logging functionality for the flush loop
	// (maps to ProcessorConfig.Logger)
	// default: the appender's logger
	logger logger.Logger
}

func defaultBufferedConfig() bufferedConfig {
	return bufferedConfig{
		flushQueueSize: 100,
		flushInterval:  5 * time.Second,
		bufferSize:     500,
		merge:          batch.Merge,
		logger:         nil,
	}
}

type BufferedConfigOption func(c *bufferedConfig)

func WithBatchFlushQueueSize(size int) BufferedConfigOption {
	return func(c *bufferedConfig) {
		c.flushQueueSize = size
	}
}

func WithBatchFlushInterval(interval time.Duration) BufferedConfigOption {
	return func(c *bufferedConfig) {
		c.flushInterval = interval
	}
}

func WithBatchBufferSize(bufferSize int) BufferedConfigOption {
	return func(c *bufferedConfig) {
		c.bufferSize = bufferSize
	}
}

func WithBatchMerge(merge batch.MergeFunc) BufferedConfigOption {
	return func(c *bufferedConfig) {
		c.merge = merge
	}
}

func WithBatchLogger(logger logger.Logger) BufferedConfigOption {
	return func(c *bufferedConfig) {
		c.logger = logger
	}
}
