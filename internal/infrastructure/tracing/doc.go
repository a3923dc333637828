// Package tracing implements the span batching and export pipeline.
//
// Application code opens named spans around units of work (a request
// handler, a catalog file operation), attaches attributes and events,
// and ends them on every exit path. Ended spans flow through a single
// batch processor that buffers them and periodically flushes to one or
// more exporters in registration order:
//
//	Span --> BatchProcessor --> FileExporter (JSON documents, appended)
//	                        --> ConsoleExporter (structured log lines)
//	                        --> AgentExporter (OTLP over gRPC)
//
// Lifecycle of a span: Started -> (attributes/events added) -> Ended ->
// Queued -> Exported or Dropped. Ended is terminal for mutation;
// Exported/Dropped is terminal for lifecycle.
//
// Failure semantics: telemetry is best effort. A full queue drops spans
// with a warning, exporter errors are logged and swallowed, and nothing
// in this package can fail an HTTP response.
package tracing
