package eventship_go

import (
	"time"

	"github.com/block/eventship-go/batch"
	"github.com/block/eventship-go/dispatch"
	"github.com/block/eventship-go/types"
)

// BufferedAppender admits events like Appender but holds them in a
// batch.Processor, merging them into fewer, larger requests before they
// reach the dispatcher. Delivery, timeouts and draining are shared with
// the wrapped Appender.
//
// Usage Example:
//
//	appender := eventship_go.NewAppender(factory)
//	buffered := eventship_go.NewBufferedAppender(appender,
//	    eventship_go.WithBatchFlushInterval(time.Second),
//	)
//	buffered.Start()
//
//	buffered.AppendLog(time.Now(), types.NewLogEventsRequest("app", "web-1", time.Now(), "started"))
//
//	// on shutdown
//	buffered.Stop()
//	appender.WaitForPendingRequestsTimeout(5 * time.Second)
type BufferedAppender struct {
	config    bufferedConfig
	appender  *Appender
	processor batch.Processor
}

func NewBufferedAppender(appender *Appender, opts ...BufferedConfigOption) *BufferedAppender {
	bConfig := defaultBufferedConfig()
	for _, o := range opts {
		o(&bConfig)
	}
	if bConfig.logger == nil {
		bConfig.logger = appender.config.logger
	}

	return &BufferedAppender{
		config:   bConfig,
		appender: appender,
		processor: batch.NewProcessor(appender.dispatcher, batch.ProcessorConfig{
			FlushQueueSize: bConfig.flushQueueSize,
			FlushInterval:  bConfig.flushInterval,
			MaxBufferSize:  bConfig.bufferSize,
			Merge:          bConfig.merge,
			Logger:         bConfig.logger,
		}),
	}
}

func (b *BufferedAppender) Start() {
	b.processor.Start()
}

// Stop flushes the buffered events. It does not wait for their delivery,
// use Appender().WaitForPendingRequestsTimeout for that.
func (b *BufferedAppender) Stop() {
	b.processor.Stop()
}

// Flush submits every buffered event now.
func (b *BufferedAppender) Flush() {
	b.processor.Flush()
}

// Append admits req and buffers it. It returns false if the rate limiter
// rejected the event.
func (b *BufferedAppender) Append(at time.Time, req dispatch.Request) bool {
	if !b.appender.admit(at) {
		return false
	}
	b.processor.Add(req)
	return true
}

func (b *BufferedAppender) AppendMetric(at time.Time, req *types.PutMetricDataRequest) bool {
	return b.Append(at, dispatch.Request{Data: req})
}

func (b *BufferedAppender) AppendLog(at time.Time, req *types.PutLogEventsRequest) bool {
	return b.Append(at, dispatch.Request{Data: req})
}

func (b *BufferedAppender) Appender() *Appender {
	return b.appender
}
