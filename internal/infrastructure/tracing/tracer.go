package tracing

import (
	"context"
	"time"

	"github.com/campushub/coursecat/internal/infrastructure/logging"
)

// Tracer creates spans and routes ended spans into the batch processor.
// One tracer is constructed per process at startup and injected into
// handlers; there is no process-global tracer.
type Tracer struct {
	service   string
	resource  map[string]any
	processor *BatchProcessor
	logger    *logging.Logger
}

// New creates a tracer whose ended spans are enqueued on processor.
// The resource attributes are fixed for the life of the process.
func New(service string, logger *logging.Logger, processor *BatchProcessor) *Tracer {
	return &Tracer{
		service: service,
		resource: map[string]any{
			"service.name": service,
		},
		processor: processor,
		logger:    logger,
	}
}

// SpanOption configures a span at start time.
type SpanOption func(*Span)

// WithKind sets the span kind. Defaults to internal.
func WithKind(kind SpanKind) SpanOption {
	return func(s *Span) { s.kind = kind }
}

// WithAttributes seeds the span with initial attributes.
func WithAttributes(attributes map[string]any) SpanOption {
	return func(s *Span) {
		for k, v := range attributes {
			s.attributes[k] = coerce(v)
		}
	}
}

// WithLink attaches a link to a span in another trace at start time.
func WithLink(traceID TraceID, spanID SpanID, attributes map[string]any) SpanOption {
	return func(s *Span) {
		s.links = append(s.links, Link{
			TraceID:    traceID.String(),
			SpanID:     spanID.String(),
			Attributes: coerceMap(attributes),
		})
	}
}

// StartSpan opens a named span. If the context already carries a span the
// new one becomes its child, inheriting the trace ID. The returned context
// carries the new span; callers must End it on every exit path.
func (t *Tracer) StartSpan(ctx context.Context, name string, opts ...SpanOption) (context.Context, *Span) {
	traceID := NewTraceID()
	var parentID SpanID

	if parent := SpanFromContext(ctx); parent != nil {
		traceID = parent.traceID
		parentID = parent.spanID
	}

	span := &Span{
		name:       name,
		traceID:    traceID,
		spanID:     NewSpanID(),
		parentID:   parentID,
		kind:       KindInternal,
		startTime:  time.Now().UTC(),
		status:     Status{Code: StatusUnset},
		attributes: make(map[string]any),
		resource:   t.resource,
	}
	if t.processor != nil {
		span.onFinish = t.processor.Enqueue
	}

	for _, opt := range opts {
		opt(span)
	}

	return ContextWithSpan(ctx, span), span
}

// Service returns the service name the tracer was built with.
func (t *Tracer) Service() string { return t.service }

// Logger exposes the tracer's structured logger.
func (t *Tracer) Logger() *logging.Logger { return t.logger }

// ForceFlush drains all pending spans through every exporter.
func (t *Tracer) ForceFlush(ctx context.Context) error {
	if t.processor == nil {
		return nil
	}
	return t.processor.ForceFlush(ctx)
}

// Shutdown flushes pending spans and shuts the pipeline down.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.processor == nil {
		return nil
	}
	return t.processor.Shutdown(ctx)
}

// Context keys for trace propagation
type contextKey string

const spanKey contextKey = "span"

// ContextWithSpan returns a context carrying the given span.
func ContextWithSpan(ctx context.Context, span *Span) context.Context {
	return context.WithValue(ctx, spanKey, span)
}

// SpanFromContext retrieves the current span from context, nil if absent.
func SpanFromContext(ctx context.Context) *Span {
	if span, ok := ctx.Value(spanKey).(*Span); ok {
		return span
	}
	return nil
}

// GetTraceID retrieves the current trace ID from context.
func GetTraceID(ctx context.Context) TraceID {
	if span := SpanFromContext(ctx); span != nil {
		return span.traceID
	}
	return TraceID{}
}

// GetSpanID retrieves the current span ID from context.
func GetSpanID(ctx context.Context) SpanID {
	if span := SpanFromContext(ctx); span != nil {
		return span.spanID
	}
	return SpanID{}
}
