package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdk "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(Config{})
	require.NoError(t, err)
	assert.Nil(t, provider)
}

func TestNewProvider_UnsupportedExporter(t *testing.T) {
	_, err := NewProvider(Config{Enabled: true, Exporter: ExporterConfig{Type: "prometheus"}})
	require.Error(t, err)
}

func TestNewProvider_Stdout(t *testing.T) {
	provider, err := NewProvider(Config{Enabled: true, Exporter: ExporterConfig{Type: ExporterStdout}})
	require.NoError(t, err)
	require.NotNil(t, provider)
	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_OTLPGRPC(t *testing.T) {
	provider, err := NewProvider(Config{
		Enabled:  true,
		Exporter: ExporterConfig{Type: ExporterOTLPGRPC, Endpoint: "127.0.0.1:4317", Insecure: true},
	})
	require.NoError(t, err)
	require.NotNil(t, provider)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_ = provider.Shutdown(ctx)
}

func TestRecord(t *testing.T) {
	ctx := context.Background()
	reader := sdk.NewManualReader()
	provider := sdk.NewMeterProvider(sdk.WithReader(reader))

	t.Cleanup(func() {
		current.Store(nil)
		_ = provider.Shutdown(ctx)
	})

	require.NoError(t, SetupMetrics(provider, "ecagate-test"))

	RecordValidation(ctx, false, true, false)
	RecordValidation(ctx, true, false, false)
	RecordCommitIssue(ctx, -404, "error")
	RecordLookup(ctx, "mail", "found")
	RecordHTTPRequest(ctx, "POST", "/eca", 403, 20*time.Millisecond)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	byName := map[string]metricdata.Metrics{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		byName[m.Name] = m
	}

	validations, ok := byName["ecagate.validations"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Len(t, validations.DataPoints, 2)

	latency, ok := byName["ecagate.http.server.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, latency.DataPoints, 1)
	assert.Equal(t, uint64(1), latency.DataPoints[0].Count)

	assert.Contains(t, byName, "ecagate.validation.errors")
	assert.Contains(t, byName, "ecagate.upstream.lookups")
}

func TestRecord_NoopBeforeSetup(t *testing.T) {
	current.Store(nil)

	assert.NotPanics(t, func() {
		RecordValidation(context.Background(), true, true, true)
		RecordLookup(context.Background(), "bots", "error")
	})
}
