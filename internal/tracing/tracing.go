package tracing

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/looplj/ecagate/internal/contexts"
)

type Config struct {
	TraceHeader   string `conf:"trace_header" yaml:"trace_header" json:"trace_header"`
	RequestHeader string `conf:"request_header" yaml:"request_header" json:"request_header"`
}

// GenerateTraceID generate trace id, format as ec-{{uuid}}.
func GenerateTraceID() string {
	return fmt.Sprintf("ec-%s", uuid.New().String())
}

// GenerateRequestID returns a random request id.
func GenerateRequestID() string {
	return uuid.NewString()
}

// WithTraceID store trace id to context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return contexts.WithTraceID(ctx, traceID)
}

// GetTraceID get trace id from context.
func GetTraceID(ctx context.Context) (string, bool) {
	return contexts.GetTraceID(ctx)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return contexts.WithRequestID(ctx, requestID)
}

func GetRequestID(ctx context.Context) (string, bool) {
	return contexts.GetRequestID(ctx)
}

// WithOperationName store operation name to context.
func WithOperationName(ctx context.Context, name string) context.Context {
	return contexts.WithOperationName(ctx, name)
}

// GetOperationName get operation name from context.
func GetOperationName(ctx context.Context) (string, bool) {
	return contexts.GetOperationName(ctx)
}
