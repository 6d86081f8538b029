package batch

import (
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/block/eventship-go/dispatch"
	"github.com/block/eventship-go/logger"
)

// Processor buffers requests and hands them to a Submitter in merged
// batches, based on size or time thresholds. It never waits for the
// deliveries themselves: those are tracked by the dispatcher's Registry.
//
// Usage Example:
//
//	processor := batch.NewProcessor(
//	    dispatcher,
//	    batch.ProcessorConfig{
//	        FlushQueueSize: 100,           // Flush when 100 requests accumulate
//	        FlushInterval:  5*time.Second, // Or flush every 5 seconds
//	    },
//	)
//
//	processor.Start()
//	processor.Add(dispatch.Request{Data: metricRequest})
//
//	// Stop flushes whatever is still buffered
//	processor.Stop()
type Processor interface {
	// Start begins the flush loop.
	// This method is idempotent - calling Start() multiple times
	// has no effect if already running.
	Start()

	// Stop closes the request channel, flushes the remaining requests
	// and waits for the flush loop to exit.
	// This method is idempotent - calling Stop() multiple times
	// has no effect if already stopped.
	Stop()

	// Add queues a request. It is thread-safe and will block
	// if the internal buffer is full.
	Add(req dispatch.Request)

	// Flush submits everything added so far without waiting
	// for FlushQueueSize or FlushInterval. No-op if not running.
	Flush()
}

type processor struct {
	submitter Submitter
	reqChan   chan dispatch.Request
	flushChan chan chan struct{}
	config    ProcessorConfig
	logger    logger.Logger
	group     errgroup.Group
	mu        sync.RWMutex
	running   bool
}

func NewProcessor(
	submitter Submitter,
	config ProcessorConfig,
) Processor {
	config = applyProcessorConfig(config)

	return &processor{
		submitter: submitter,
		reqChan:   make(chan dispatch.Request, config.MaxBufferSize),
		flushChan: make(chan chan struct{}),
		config:    config,
		logger:    config.Logger,
	}
}

func (p *processor) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}

	p.group.Go(func() error {
		p.listen()
		return nil
	})
	p.running = true
}

func (p *processor) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	// initiate exit from the "listen" loop
	close(p.reqChan)

	err := p.group.Wait()
	if err != nil {
		p.logger.Errorf("batch.Processor: failed to wait for the flush loop: %v", err)
	}

	// override reqChan to handle a Start->Stop->Start case
	// as next call to Add() will panic if the channel is closed
	p.reqChan = make(chan dispatch.Request, p.config.MaxBufferSize)
	p.running = false
	p.logger.Debugf("batch.Processor: flushed last batch")
}

func (p *processor) Add(req dispatch.Request) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	p.reqChan <- req
}

func (p *processor) Flush() {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.running {
		return
	}
	done := make(chan struct{})
	p.flushChan <- done
	<-done
}

func (p *processor) listen() {
	var batch []dispatch.Request
	t := time.NewTicker(p.config.FlushInterval)
	defer t.Stop()

	p.logger.Debugf("batch.Processor: listening...")

	for {
		select {
		case req, ok := <-p.reqChan:
			if !ok {
				p.process(batch)
				return
			}
			batch = append(batch, req)
			if len(batch) >= p.config.FlushQueueSize {
				p.process(batch)
				batch = nil
				t.Reset(p.config.FlushInterval)
			}
		case done := <-p.flushChan:
			batch = p.drain(batch)
			p.process(batch)
			batch = nil
			t.Reset(p.config.FlushInterval)
			close(done)
		case <-t.C:
			p.process(batch)
			batch = nil
		}
	}
}

// drain moves every request already queued in reqChan into batch.
func (p *processor) drain(batch []dispatch.Request) []dispatch.Request {
	for {
		select {
		case req, ok := <-p.reqChan:
			if !ok {
				return batch
			}
			batch = append(batch, req)
		default:
			return batch
		}
	}
}

func (p *processor) process(batch []dispatch.Request) {
	if len(batch) == 0 {
		return
	}

	merged := p.config.Merge(batch)
	p.logger.Debugf("batch.Processor: submitting %d requests merged from %d", len(merged), len(batch))
	for _, req := range merged {
		p.submitter.Submit(req)
	}
}
