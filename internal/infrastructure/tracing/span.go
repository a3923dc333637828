package tracing

import (
	"fmt"
	"sync"
	"time"
)

// SpanKind classifies the role of a span within a trace.
type SpanKind string

const (
	KindInternal SpanKind = "internal"
	KindServer   SpanKind = "server"
	KindClient   SpanKind = "client"
)

// StatusCode is the outcome of the operation a span covers.
type StatusCode string

const (
	StatusUnset StatusCode = "unset"
	StatusOK    StatusCode = "ok"
	StatusError StatusCode = "error"
)

// Status describes the outcome of a span.
type Status struct {
	Code        StatusCode `json:"code"`
	Description string     `json:"description,omitempty"`
}

// Event is a timestamped annotation within a span.
type Event struct {
	Name       string         `json:"name"`
	Timestamp  time.Time      `json:"timestamp"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Link points at a span in another trace.
type Link struct {
	TraceID    string         `json:"trace_id"`
	SpanID     string         `json:"span_id"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Span is a timed record of one unit of work. Mutations are only allowed
// between start and End; once ended the span is handed to the batch
// processor and must be treated as immutable.
type Span struct {
	mu sync.Mutex

	name     string
	traceID  TraceID
	spanID   SpanID
	parentID SpanID
	kind     SpanKind

	startTime time.Time
	endTime   time.Time
	status    Status

	attributes map[string]any
	events     []Event
	links      []Link
	resource   map[string]any

	ended    bool
	onFinish func(*Span)
}

// Name returns the span name.
func (s *Span) Name() string { return s.name }

// TraceID returns the trace identifier.
func (s *Span) TraceID() TraceID { return s.traceID }

// SpanID returns the span identifier.
func (s *Span) SpanID() SpanID { return s.spanID }

// ParentID returns the parent span identifier, zero for root spans.
func (s *Span) ParentID() SpanID { return s.parentID }

// Kind returns the span kind.
func (s *Span) Kind() SpanKind { return s.kind }

// SetAttribute records a key/value pair on the span. Values outside the
// supported scalar set are coerced to their string form rather than
// rejected. No-op after End.
func (s *Span) SetAttribute(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return
	}
	s.attributes[key] = coerce(value)
}

// AddEvent appends a timestamped event to the span. No-op after End.
func (s *Span) AddEvent(name string, attributes map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return
	}
	s.events = append(s.events, Event{
		Name:       name,
		Timestamp:  time.Now().UTC(),
		Attributes: coerceMap(attributes),
	})
}

// AddLink attaches a reference to a span in another trace. No-op after End.
func (s *Span) AddLink(traceID TraceID, spanID SpanID, attributes map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return
	}
	s.links = append(s.links, Link{
		TraceID:    traceID.String(),
		SpanID:     spanID.String(),
		Attributes: coerceMap(attributes),
	})
}

// RecordError marks the span status as error and stores a textual
// exception event. Execution is never interrupted; recording a nil error
// is a no-op.
func (s *Span) RecordError(err error) {
	if err == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return
	}
	s.status = Status{Code: StatusError, Description: err.Error()}
	s.events = append(s.events, Event{
		Name:      "exception",
		Timestamp: time.Now().UTC(),
		Attributes: map[string]any{
			"exception.message": err.Error(),
			"exception.type":    fmt.Sprintf("%T", err),
		},
	})
}

// SetStatus overrides the span status. No-op after End.
func (s *Span) SetStatus(code StatusCode, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return
	}
	s.status = Status{Code: code, Description: description}
}

// End marks the span as finished and hands it to the batch processor.
// Ended is terminal: later mutations are ignored and a second End is a
// no-op, so End is safe on every exit path.
func (s *Span) End() {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true
	s.endTime = time.Now().UTC()
	finish := s.onFinish
	s.mu.Unlock()

	if finish != nil {
		finish(s)
	}
}

// Ended reports whether End has been called.
func (s *Span) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// Duration returns the span duration, zero until the span has ended.
func (s *Span) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ended {
		return 0
	}
	return s.endTime.Sub(s.startTime)
}

// Record is the serialized form of a span: one self-contained JSON
// document consumed by exporters. Exported span files are a stream of
// these documents, not a single JSON array.
type Record struct {
	Name         string         `json:"name"`
	TraceID      string         `json:"trace_id"`
	SpanID       string         `json:"span_id"`
	ParentSpanID string         `json:"parent_span_id,omitempty"`
	Kind         string         `json:"kind"`
	StartTime    time.Time      `json:"start_time"`
	EndTime      time.Time      `json:"end_time"`
	Status       Status         `json:"status"`
	Attributes   map[string]any `json:"attributes"`
	Events       []Event        `json:"events,omitempty"`
	Links        []Link         `json:"links,omitempty"`
	Resource     map[string]any `json:"resource"`
}

// Record returns a snapshot of the span for serialization. Safe to call
// concurrently with flush cycles; copies are deep enough that exporters
// can hold them past the span's lifetime.
func (s *Span) Record() Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := Record{
		Name:       s.name,
		TraceID:    s.traceID.String(),
		SpanID:     s.spanID.String(),
		Kind:       string(s.kind),
		StartTime:  s.startTime,
		EndTime:    s.endTime,
		Status:     s.status,
		Attributes: make(map[string]any, len(s.attributes)),
		Resource:   s.resource,
	}
	if !s.parentID.IsZero() {
		rec.ParentSpanID = s.parentID.String()
	}
	for k, v := range s.attributes {
		rec.Attributes[k] = v
	}
	rec.Events = append(rec.Events, s.events...)
	rec.Links = append(rec.Links, s.links...)
	return rec
}

// coerce normalizes an attribute value to a JSON-safe scalar. Anything
// outside the supported set is stringified, never dropped with a panic.
func coerce(value any) any {
	switch v := value.(type) {
	case nil:
		return ""
	case string, bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return v
	case time.Duration:
		return v.String()
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return v.String()
	case error:
		return v.Error()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func coerceMap(attributes map[string]any) map[string]any {
	if len(attributes) == 0 {
		return nil
	}
	out := make(map[string]any, len(attributes))
	for k, v := range attributes {
		out[k] = coerce(v)
	}
	return out
}
