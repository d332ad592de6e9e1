package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/looplj/ecagate/internal/tracing"
)

const (
	defaultTraceHeader   = "X-Trace-Id"
	defaultRequestHeader = "X-Request-Id"
)

// WithLoggingTracing saves the trace ID and request ID to the request context,
// so every log line of the request carries them.
// The trace ID of the caller is reused when present, the request ID is always new.
func WithLoggingTracing(config tracing.Config) gin.HandlerFunc {
	traceHeader := config.TraceHeader
	if traceHeader == "" {
		traceHeader = defaultTraceHeader
	}

	requestHeader := config.RequestHeader
	if requestHeader == "" {
		requestHeader = defaultRequestHeader
	}

	return func(c *gin.Context) {
		traceID := c.GetHeader(traceHeader)
		if traceID == "" {
			traceID = tracing.GenerateTraceID()
		}

		requestID := tracing.GenerateRequestID()

		c.Header(traceHeader, traceID)
		c.Header(requestHeader, requestID)

		ctx := tracing.WithTraceID(c.Request.Context(), traceID)
		ctx = tracing.WithRequestID(ctx, requestID)
		ctx = tracing.WithOperationName(ctx, fmt.Sprintf("%s %s", c.Request.Method, c.FullPath()))

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
