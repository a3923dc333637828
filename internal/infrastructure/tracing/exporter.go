package tracing

import (
	"context"

	"go.uber.org/zap"

	"github.com/campushub/coursecat/internal/infrastructure/logging"
)

// Exporter is a sink that serializes ended spans to a destination.
// Export is called from the batch processor's flush goroutine; exporters
// that can be reached from several flush cycles must be safe for
// concurrent use. Errors are logged and swallowed upstream; export is
// best effort and must never fail a request.
type Exporter interface {
	Export(ctx context.Context, spans []*Span) error
	Shutdown(ctx context.Context) error
}

// ConsoleExporter logs one structured line per span. It stands in for the
// real agent transport in deployments where no collector is reachable.
type ConsoleExporter struct {
	logger *logging.Logger
}

// NewConsoleExporter creates a console exporter backed by logger.
func NewConsoleExporter(logger *logging.Logger) *ConsoleExporter {
	return &ConsoleExporter{logger: logger}
}

// Export logs every span in the batch.
func (e *ConsoleExporter) Export(_ context.Context, spans []*Span) error {
	for _, span := range spans {
		rec := span.Record()

		fields := []zap.Field{
			zap.String("trace_id", rec.TraceID),
			zap.String("span_id", rec.SpanID),
			zap.String("name", rec.Name),
			zap.String("kind", rec.Kind),
			zap.Duration("duration", rec.EndTime.Sub(rec.StartTime)),
		}
		if rec.ParentSpanID != "" {
			fields = append(fields, zap.String("parent_span_id", rec.ParentSpanID))
		}
		if len(rec.Attributes) > 0 {
			fields = append(fields, zap.Any("attributes", rec.Attributes))
		}

		if rec.Status.Code == StatusError {
			fields = append(fields, zap.String("status_description", rec.Status.Description))
			e.logger.Error("span completed with error", fields...)
		} else {
			e.logger.Info("span completed", fields...)
		}
	}
	return nil
}

// Shutdown is a no-op for the console exporter.
func (e *ConsoleExporter) Shutdown(context.Context) error {
	return nil
}

// Name identifies the exporter in logs and metrics.
func (e *ConsoleExporter) Name() string {
	return "console"
}
