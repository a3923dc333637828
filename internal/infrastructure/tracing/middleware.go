package tracing

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/campushub/coursecat/internal/shared/id"
)

// Header names for trace propagation
const (
	HeaderTraceID   = "X-Trace-ID"
	HeaderSpanID    = "X-Span-ID"
	HeaderRequestID = "X-Request-ID"
)

// HTTPMiddleware opens one server span around every request, the
// automatic instrumentation layer. Handlers that want richer spans open
// their own children from the request context.
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		// Continue a trace arriving from an upstream caller.
		if remote := remoteParent(c); remote != nil {
			ctx = ContextWithSpan(ctx, remote)
		}

		name := c.FullPath()
		if name == "" {
			name = c.Request.URL.Path
		}

		reqID := id.NewRequestID()

		ctx, span := tracer.StartSpan(ctx, name, WithKind(KindServer))
		span.SetAttribute("http.method", c.Request.Method)
		span.SetAttribute("http.url", c.Request.URL.String())
		span.SetAttribute("http.host", c.Request.Host)
		span.SetAttribute("user.ip", c.ClientIP())
		span.SetAttribute("request.id", reqID.String())

		c.Request = c.Request.WithContext(ctx)

		// Expose identifiers so clients can correlate their own logs.
		c.Header(HeaderTraceID, span.TraceID().String())
		c.Header(HeaderSpanID, span.SpanID().String())
		c.Header(HeaderRequestID, reqID.String())

		c.Next()

		status := c.Writer.Status()
		span.SetAttribute("http.status_code", status)
		if len(c.Errors) > 0 {
			span.RecordError(c.Errors.Last())
		} else if status >= 500 {
			span.SetStatus(StatusError, "")
		}

		span.End()
	}
}

// remoteParent reconstructs a parent span stub from propagation headers,
// nil when the request starts a fresh trace.
func remoteParent(c *gin.Context) *Span {
	traceID, err := ParseTraceID(c.GetHeader(HeaderTraceID))
	if err != nil {
		return nil
	}
	spanID, err := ParseSpanID(c.GetHeader(HeaderSpanID))
	if err != nil {
		return nil
	}
	return &Span{traceID: traceID, spanID: spanID, ended: true}
}

// InjectHeaders copies the current trace identifiers from ctx into a
// header map for outbound calls.
func InjectHeaders(ctx context.Context, headers map[string]string) {
	span := SpanFromContext(ctx)
	if span == nil {
		return
	}
	headers[HeaderTraceID] = span.TraceID().String()
	headers[HeaderSpanID] = span.SpanID().String()
}
