package tracing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/campushub/coursecat/internal/infrastructure/logging"
)

// ProcessorConfig tunes the batching behavior.
type ProcessorConfig struct {
	// BatchSize triggers a flush as soon as this many spans are buffered.
	BatchSize int
	// FlushInterval triggers a flush even when the batch is not full.
	FlushInterval time.Duration
	// QueueSize bounds the enqueue channel; spans beyond it are dropped.
	QueueSize int
}

// DefaultProcessorConfig returns production defaults.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		BatchSize:     100,
		FlushInterval: 5 * time.Second,
		QueueSize:     2048,
	}
}

// ProcessorStats are cumulative pipeline counters.
type ProcessorStats struct {
	Enqueued uint64
	Exported uint64
	Dropped  uint64
	Failures uint64
}

type flushRequest struct {
	ctx  context.Context
	done chan struct{}
}

// BatchProcessor buffers ended spans and periodically hands them to every
// registered exporter, in registration order. Producers never block: a
// full queue drops the span and counts it. Export runs on a single
// background goroutine so exporters see batches sequentially.
type BatchProcessor struct {
	cfg       ProcessorConfig
	exporters []Exporter
	logger    *logging.Logger

	queue   chan *Span
	flushCh chan flushRequest
	done    chan struct{}
	stopped chan struct{}
	batch   []*Span

	enqueued atomic.Uint64
	exported atomic.Uint64
	dropped  atomic.Uint64
	failures atomic.Uint64

	// OnExport and OnDrop feed externally owned counters, wired at
	// startup before the first span is produced.
	OnExport func(exporter string, count int)
	OnDrop   func(count int)

	shutdownOnce sync.Once
}

// NewBatchProcessor creates a processor flushing to the given exporters
// and starts its background flush loop.
func NewBatchProcessor(cfg ProcessorConfig, logger *logging.Logger, exporters ...Exporter) *BatchProcessor {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultProcessorConfig().BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultProcessorConfig().FlushInterval
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultProcessorConfig().QueueSize
	}

	p := &BatchProcessor{
		cfg:       cfg,
		exporters: exporters,
		logger:    logger,
		queue:     make(chan *Span, cfg.QueueSize),
		flushCh:   make(chan flushRequest),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
		batch:     make([]*Span, 0, cfg.BatchSize),
	}

	go p.run()

	return p
}

// Enqueue hands an ended span to the processor. Never blocks; when the
// queue is full the span is dropped and counted.
func (p *BatchProcessor) Enqueue(span *Span) {
	select {
	case p.queue <- span:
		p.enqueued.Add(1)
	default:
		p.dropped.Add(1)
		if p.OnDrop != nil {
			p.OnDrop(1)
		}
		p.logger.Warn("span queue full, dropping span",
			zap.String("trace_id", span.TraceID().String()),
			zap.String("span_id", span.SpanID().String()),
			zap.String("name", span.Name()),
		)
	}
}

// ForceFlush drains the queue and exports everything buffered so far.
// Returns once the flush completes or ctx expires.
func (p *BatchProcessor) ForceFlush(ctx context.Context) error {
	req := flushRequest{ctx: ctx, done: make(chan struct{})}

	select {
	case p.flushCh <- req:
	case <-p.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-req.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown performs a final flush, stops the loop, and shuts down every
// exporter in registration order. Safe to call more than once.
func (p *BatchProcessor) Shutdown(ctx context.Context) error {
	var errs []error

	p.shutdownOnce.Do(func() {
		close(p.done)

		select {
		case <-p.stopped:
		case <-ctx.Done():
			errs = append(errs, ctx.Err())
		}

		for _, exp := range p.exporters {
			if err := exp.Shutdown(ctx); err != nil {
				p.logger.Warn("exporter shutdown failed", zap.Error(err))
				errs = append(errs, err)
			}
		}
	})

	return errors.Join(errs...)
}

// Stats returns a snapshot of the pipeline counters.
func (p *BatchProcessor) Stats() ProcessorStats {
	return ProcessorStats{
		Enqueued: p.enqueued.Load(),
		Exported: p.exported.Load(),
		Dropped:  p.dropped.Load(),
		Failures: p.failures.Load(),
	}
}

func (p *BatchProcessor) run() {
	defer close(p.stopped)

	ticker := time.NewTicker(p.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case span := <-p.queue:
			p.batch = append(p.batch, span)
			if len(p.batch) >= p.cfg.BatchSize {
				p.export(context.Background())
			}
		case <-ticker.C:
			p.export(context.Background())
		case req := <-p.flushCh:
			p.drainQueue()
			p.export(req.ctx)
			close(req.done)
		case <-p.done:
			p.drainQueue()
			p.export(context.Background())
			return
		}
	}
}

// drainQueue pulls everything currently queued into the batch.
func (p *BatchProcessor) drainQueue() {
	for {
		select {
		case span := <-p.queue:
			p.batch = append(p.batch, span)
		default:
			return
		}
	}
}

// export fans the current batch out to every exporter in registration
// order. Exporter failures are logged and swallowed; one failing sink
// must not starve the others or the request path.
func (p *BatchProcessor) export(ctx context.Context) {
	if len(p.batch) == 0 {
		return
	}

	spans := p.batch
	p.batch = make([]*Span, 0, p.cfg.BatchSize)

	for _, exp := range p.exporters {
		name := exporterName(exp)
		if err := exp.Export(ctx, spans); err != nil {
			p.failures.Add(1)
			p.logger.Warn("span export failed",
				zap.String("exporter", name),
				zap.Int("spans", len(spans)),
				zap.Error(err),
			)
			continue
		}
		if p.OnExport != nil {
			p.OnExport(name, len(spans))
		}
	}

	p.exported.Add(uint64(len(spans)))
}

func exporterName(exp Exporter) string {
	if named, ok := exp.(interface{ Name() string }); ok {
		return named.Name()
	}
	return "unknown"
}
