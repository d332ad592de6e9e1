package metrics

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type instruments struct {
	validations    metric.Int64Counter
	commitErrors   metric.Int64Counter
	lookups        metric.Int64Counter
	requestLatency metric.Float64Histogram
}

// current stays nil until SetupMetrics runs, making every Record call a no-op.
var current atomic.Pointer[instruments]

func newInstruments(meter metric.Meter) (*instruments, error) {
	validations, err := meter.Int64Counter("ecagate.validations",
		metric.WithDescription("Validation requests by outcome"))
	if err != nil {
		return nil, err
	}

	commitErrors, err := meter.Int64Counter("ecagate.validation.errors",
		metric.WithDescription("Errors and warnings recorded on commits by status code"))
	if err != nil {
		return nil, err
	}

	lookups, err := meter.Int64Counter("ecagate.upstream.lookups",
		metric.WithDescription("Upstream lookups by kind and result"))
	if err != nil {
		return nil, err
	}

	requestLatency, err := meter.Float64Histogram("ecagate.http.server.duration",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &instruments{
		validations:    validations,
		commitErrors:   commitErrors,
		lookups:        lookups,
		requestLatency: requestLatency,
	}, nil
}

// RecordValidation counts one finished validation.
func RecordValidation(ctx context.Context, passed, tracked, strict bool) {
	inst := current.Load()
	if inst == nil {
		return
	}

	inst.validations.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("passed", passed),
		attribute.Bool("tracked", tracked),
		attribute.Bool("strict", strict),
	))
}

// RecordCommitIssue counts one error or warning with its status code.
func RecordCommitIssue(ctx context.Context, code int, severity string) {
	inst := current.Load()
	if inst == nil {
		return
	}

	inst.commitErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", strconv.Itoa(code)),
		attribute.String("severity", severity),
	))
}

// RecordLookup counts one upstream lookup, e.g. kind "mail" with result "found".
func RecordLookup(ctx context.Context, kind, result string) {
	inst := current.Load()
	if inst == nil {
		return
	}

	inst.lookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("result", result),
	))
}

func RecordHTTPRequest(ctx context.Context, method, route string, status int, elapsed time.Duration) {
	inst := current.Load()
	if inst == nil {
		return
	}

	inst.requestLatency.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	))
}
