package batch

import (
	"time"

	"github.com/block/eventship-go/logger"
)

type ProcessorConfig struct {
	// FlushQueueSize is the number of pending requests that
	// forces a merge-and-submit pass
	// default: 100
	FlushQueueSize int

	// FlushInterval bounds how long an admitted request may sit
	// in the buffer when traffic is too low to fill FlushQueueSize
	// default: 5 seconds
	FlushInterval time.Duration

	// MaxBufferSize is the capacity of the channel feeding the
	// flush loop; Add blocks once it is full
	// default: 2000
	MaxBufferSize int

	// Merge combines the accumulated requests before they are submitted
	// default: Merge
	Merge MergeFunc

	// Logger receives flush loop lifecycle messages
	// default: logger.Noop
	Logger logger.Logger
}

func defaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		FlushQueueSize: 100,
		FlushInterval:  5 * time.Second,
		MaxBufferSize:  2000,
		Merge:          Merge,
		Logger:         &logger.Noop{},
	}
}

func applyProcessorConfig(inConfig ProcessorConfig) ProcessorConfig {
	outConfig := defaultProcessorConfig()
	if inConfig.FlushQueueSize > 0 {
		outConfig.FlushQueueSize = inConfig.FlushQueueSize
	}
	if inConfig.FlushInterval > 0 {
		outConfig.FlushInterval = inConfig.FlushInterval
	}
	if inConfig.MaxBufferSize > 0 {
		outConfig.MaxBufferSize = inConfig.MaxBufferSize
	}
	if inConfig.Merge != nil {
		outConfig.Merge = inConfig.Merge
	}
	if inConfig.Logger != nil {
		outConfig.Logger = inConfig.Logger
	}

	return outConfig
}
