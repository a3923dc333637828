package tracing

import (
	"context"
	"fmt"
	"time"

	collectortrace "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"
	tracepb "go.opentelemetry.io/proto/otlp/trace/v1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/campushub/coursecat/internal/infrastructure/resilience"
)

// AgentExporter ships spans to an OTLP trace agent over gRPC. The agent
// is an opaque best-effort sink: a circuit breaker keeps a dead collector
// from slowing every flush cycle down to its dial timeout.
type AgentExporter struct {
	addr    string
	service string
	conn    *grpc.ClientConn
	client  collectortrace.TraceServiceClient
	breaker *resilience.Breaker
	timeout time.Duration
}

// NewAgentExporter connects to the trace agent at addr. The connection is
// lazy; a collector that is down at startup only shows up as export
// failures, never as a startup error.
func NewAgentExporter(addr, service string) (*AgentExporter, error) {
	conn, err := grpc.Dial(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to dial trace agent: %w", err)
	}

	breaker := resilience.New("trace-agent", resilience.Settings{
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &AgentExporter{
		addr:    addr,
		service: service,
		conn:    conn,
		client:  collectortrace.NewTraceServiceClient(conn),
		breaker: breaker,
		timeout: 5 * time.Second,
	}, nil
}

// Export sends the batch to the agent as one OTLP export request.
func (e *AgentExporter) Export(ctx context.Context, spans []*Span) error {
	if len(spans) == 0 {
		return nil
	}

	req := &collectortrace.ExportTraceServiceRequest{
		ResourceSpans: []*tracepb.ResourceSpans{e.toResourceSpans(spans)},
	}

	return e.breaker.Execute(func() error {
		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		_, err := e.client.Export(callCtx, req)
		if err != nil {
			return fmt.Errorf("agent export: %w", err)
		}
		return nil
	})
}

// Shutdown closes the agent connection.
func (e *AgentExporter) Shutdown(context.Context) error {
	return e.conn.Close()
}

// Name identifies the exporter in logs and metrics.
func (e *AgentExporter) Name() string {
	return "agent"
}

func (e *AgentExporter) toResourceSpans(spans []*Span) *tracepb.ResourceSpans {
	protoSpans := make([]*tracepb.Span, 0, len(spans))
	for _, span := range spans {
		protoSpans = append(protoSpans, toProtoSpan(span))
	}

	return &tracepb.ResourceSpans{
		Resource: &resourcepb.Resource{
			Attributes: []*commonpb.KeyValue{
				{Key: "service.name", Value: anyValue(e.service)},
			},
		},
		ScopeSpans: []*tracepb.ScopeSpans{
			{Spans: protoSpans},
		},
	}
}

func toProtoSpan(span *Span) *tracepb.Span {
	rec := span.Record()

	traceID := span.TraceID()
	spanID := span.SpanID()
	parentID := span.ParentID()

	out := &tracepb.Span{
		TraceId:           traceID[:],
		SpanId:            spanID[:],
		Name:              rec.Name,
		Kind:              toProtoKind(span.Kind()),
		StartTimeUnixNano: uint64(rec.StartTime.UnixNano()),
		EndTimeUnixNano:   uint64(rec.EndTime.UnixNano()),
		Attributes:        toProtoAttributes(rec.Attributes),
		Status:            toProtoStatus(rec.Status),
	}
	if !parentID.IsZero() {
		out.ParentSpanId = parentID[:]
	}

	for _, event := range rec.Events {
		out.Events = append(out.Events, &tracepb.Span_Event{
			Name:         event.Name,
			TimeUnixNano: uint64(event.Timestamp.UnixNano()),
			Attributes:   toProtoAttributes(event.Attributes),
		})
	}

	for _, link := range rec.Links {
		linkTrace, err := ParseTraceID(link.TraceID)
		if err != nil {
			continue
		}
		linkSpan, err := ParseSpanID(link.SpanID)
		if err != nil {
			continue
		}
		out.Links = append(out.Links, &tracepb.Span_Link{
			TraceId:    linkTrace[:],
			SpanId:     linkSpan[:],
			Attributes: toProtoAttributes(link.Attributes),
		})
	}

	return out
}

func toProtoKind(kind SpanKind) tracepb.Span_SpanKind {
	switch kind {
	case KindServer:
		return tracepb.Span_SPAN_KIND_SERVER
	case KindClient:
		return tracepb.Span_SPAN_KIND_CLIENT
	default:
		return tracepb.Span_SPAN_KIND_INTERNAL
	}
}

func toProtoStatus(status Status) *tracepb.Status {
	out := &tracepb.Status{Message: status.Description}
	switch status.Code {
	case StatusOK:
		out.Code = tracepb.Status_STATUS_CODE_OK
	case StatusError:
		out.Code = tracepb.Status_STATUS_CODE_ERROR
	default:
		out.Code = tracepb.Status_STATUS_CODE_UNSET
	}
	return out
}

func toProtoAttributes(attributes map[string]any) []*commonpb.KeyValue {
	if len(attributes) == 0 {
		return nil
	}
	out := make([]*commonpb.KeyValue, 0, len(attributes))
	for k, v := range attributes {
		out = append(out, &commonpb.KeyValue{Key: k, Value: anyValue(v)})
	}
	return out
}

func anyValue(value any) *commonpb.AnyValue {
	switch v := value.(type) {
	case string:
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: v}}
	case bool:
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_BoolValue{BoolValue: v}}
	case int:
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_IntValue{IntValue: int64(v)}}
	case int64:
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_IntValue{IntValue: v}}
	case float64:
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_DoubleValue{DoubleValue: v}}
	default:
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: fmt.Sprintf("%v", v)}}
	}
}
