package tracing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/coursecat/internal/infrastructure/logging"
)

func newTestTracer() *Tracer {
	return New("course-catalog-service", logging.NewNop(), nil)
}

func TestStartSpanRoot(t *testing.T) {
	tracer := newTestTracer()

	ctx, span := tracer.StartSpan(context.Background(), "load_courses")

	assert.Equal(t, "load_courses", span.Name())
	assert.False(t, span.TraceID().IsZero())
	assert.False(t, span.SpanID().IsZero())
	assert.True(t, span.ParentID().IsZero())
	assert.Equal(t, KindInternal, span.Kind())
	assert.Same(t, span, SpanFromContext(ctx))
}

func TestStartSpanChild(t *testing.T) {
	tracer := newTestTracer()

	ctx, parent := tracer.StartSpan(context.Background(), "course_catalog", WithKind(KindServer))
	_, child := tracer.StartSpan(ctx, "load_courses")

	assert.Equal(t, parent.TraceID(), child.TraceID())
	assert.Equal(t, parent.SpanID(), child.ParentID())
	assert.NotEqual(t, parent.SpanID(), child.SpanID())
	assert.Equal(t, KindServer, parent.Kind())
}

func TestSpanEndIsTerminal(t *testing.T) {
	tracer := newTestTracer()

	_, span := tracer.StartSpan(context.Background(), "save_course")
	span.SetAttribute("course.saved", true)
	span.End()

	require.True(t, span.Ended())
	end := span.Record().EndTime

	// Mutations after End are ignored.
	span.SetAttribute("late", "value")
	span.AddEvent("late", nil)
	span.RecordError(errors.New("late"))
	span.SetStatus(StatusOK, "")
	span.End()

	rec := span.Record()
	assert.NotContains(t, rec.Attributes, "late")
	assert.Empty(t, rec.Events)
	assert.Equal(t, StatusUnset, rec.Status.Code)
	assert.Equal(t, end, rec.EndTime)
}

func TestSpanEndHandsToProcessor(t *testing.T) {
	var finished []*Span
	tracer := newTestTracer()

	_, span := tracer.StartSpan(context.Background(), "manual-span")
	span.onFinish = func(s *Span) { finished = append(finished, s) }

	span.End()
	span.End()

	require.Len(t, finished, 1, "double End must hand the span over once")
	assert.Same(t, span, finished[0])
}

func TestRecordError(t *testing.T) {
	tracer := newTestTracer()

	_, span := tracer.StartSpan(context.Background(), "course_details")
	span.RecordError(errors.New("course not found: CS999"))
	span.End()

	rec := span.Record()
	assert.Equal(t, StatusError, rec.Status.Code)
	assert.Equal(t, "course not found: CS999", rec.Status.Description)

	require.Len(t, rec.Events, 1)
	assert.Equal(t, "exception", rec.Events[0].Name)
	assert.Equal(t, "course not found: CS999", rec.Events[0].Attributes["exception.message"])
}

func TestRecordErrorNil(t *testing.T) {
	tracer := newTestTracer()

	_, span := tracer.StartSpan(context.Background(), "noop")
	span.RecordError(nil)

	assert.Equal(t, StatusUnset, span.Record().Status.Code)
	assert.Empty(t, span.Record().Events)
}

func TestAttributeCoercion(t *testing.T) {
	tracer := newTestTracer()

	_, span := tracer.StartSpan(context.Background(), "coerce")
	span.SetAttribute("string", "value")
	span.SetAttribute("int", 42)
	span.SetAttribute("bool", true)
	span.SetAttribute("float", 1.5)
	span.SetAttribute("duration", 250*time.Millisecond)
	span.SetAttribute("error", errors.New("boom"))
	span.SetAttribute("struct", struct{ A int }{A: 1})
	span.SetAttribute("nil", nil)
	span.End()

	attrs := span.Record().Attributes
	assert.Equal(t, "value", attrs["string"])
	assert.Equal(t, 42, attrs["int"])
	assert.Equal(t, true, attrs["bool"])
	assert.Equal(t, 1.5, attrs["float"])
	assert.Equal(t, "250ms", attrs["duration"])
	assert.Equal(t, "boom", attrs["error"])
	assert.Equal(t, "{1}", attrs["struct"])
	assert.Equal(t, "", attrs["nil"])
}

func TestEventsAndLinks(t *testing.T) {
	tracer := newTestTracer()

	otherTrace := NewTraceID()
	otherSpan := NewSpanID()

	_, span := tracer.StartSpan(context.Background(), "manual-span")
	span.AddEvent("Processing request", map[string]any{"step": 1})
	span.AddLink(otherTrace, otherSpan, map[string]any{"kind": "followup"})
	span.End()

	rec := span.Record()
	require.Len(t, rec.Events, 1)
	assert.Equal(t, "Processing request", rec.Events[0].Name)
	assert.False(t, rec.Events[0].Timestamp.IsZero())

	require.Len(t, rec.Links, 1)
	assert.Equal(t, otherTrace.String(), rec.Links[0].TraceID)
	assert.Equal(t, otherSpan.String(), rec.Links[0].SpanID)
}

func TestRecordRoundTrip(t *testing.T) {
	tracer := newTestTracer()

	_, span := tracer.StartSpan(context.Background(), "course_details", WithKind(KindServer))
	span.SetAttribute("course.code", "CS101")
	span.SetAttribute("http.status_code", 200)
	span.AddEvent("lookup", map[string]any{"hit": true})
	span.End()

	data, err := json.MarshalIndent(span.Record(), "", "    ")
	require.NoError(t, err)

	var parsed Record
	require.NoError(t, json.Unmarshal(data, &parsed))

	orig := span.Record()
	assert.Equal(t, orig.Name, parsed.Name)
	assert.Equal(t, orig.TraceID, parsed.TraceID)
	assert.Equal(t, orig.SpanID, parsed.SpanID)
	assert.Equal(t, orig.Kind, parsed.Kind)
	assert.True(t, orig.StartTime.Equal(parsed.StartTime))
	assert.True(t, orig.EndTime.Equal(parsed.EndTime))
	assert.Equal(t, orig.Status, parsed.Status)
	assert.Equal(t, "CS101", parsed.Attributes["course.code"])
	assert.EqualValues(t, 200, parsed.Attributes["http.status_code"])
	assert.Equal(t, "course-catalog-service", parsed.Resource["service.name"])
	require.Len(t, parsed.Events, 1)
	assert.Equal(t, "lookup", parsed.Events[0].Name)
}

func TestParseIDs(t *testing.T) {
	traceID := NewTraceID()
	spanID := NewSpanID()

	parsedTrace, err := ParseTraceID(traceID.String())
	require.NoError(t, err)
	assert.Equal(t, traceID, parsedTrace)

	parsedSpan, err := ParseSpanID(spanID.String())
	require.NoError(t, err)
	assert.Equal(t, spanID, parsedSpan)

	_, err = ParseTraceID("short")
	assert.Error(t, err)
	_, err = ParseSpanID("zzzzzzzzzzzzzzzz")
	assert.Error(t, err)
}
