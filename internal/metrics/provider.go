package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"

	sdk "go.opentelemetry.io/otel/sdk/metric"

	"github.com/looplj/ecagate/internal/log"
)

// NewProvider builds the meter provider. It returns nil when metrics are disabled.
func NewProvider(cfg Config) (*sdk.MeterProvider, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	exporter, err := newExporter(context.Background(), cfg.Exporter)
	if err != nil {
		return nil, err
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	log.Info(context.Background(), "metrics enabled",
		log.String("exporter", cfg.Exporter.Type),
		log.Duration("interval", interval))

	return sdk.NewMeterProvider(
		sdk.WithReader(sdk.NewPeriodicReader(exporter, sdk.WithInterval(interval))),
	), nil
}

func newExporter(ctx context.Context, cfg ExporterConfig) (sdk.Exporter, error) {
	switch cfg.Type {
	case "", ExporterStdout:
		return stdoutmetric.New()
	case ExporterOTLPHTTP:
		opts := []otlpmetrichttp.Option{}
		if cfg.Endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(cfg.Endpoint))
		}

		if cfg.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}

		if len(cfg.Headers) > 0 {
			opts = append(opts, otlpmetrichttp.WithHeaders(cfg.Headers))
		}

		return otlpmetrichttp.New(ctx, opts...)
	case ExporterOTLPGRPC:
		opts := []otlpmetricgrpc.Option{}
		if cfg.Endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(cfg.Endpoint))
		}

		if cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}

		if len(cfg.Headers) > 0 {
			opts = append(opts, otlpmetricgrpc.WithHeaders(cfg.Headers))
		}

		return otlpmetricgrpc.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unsupported metrics exporter: %s", cfg.Type)
	}
}

// SetupMetrics installs provider globally and creates the service instruments.
func SetupMetrics(provider *sdk.MeterProvider, serviceName string) error {
	otel.SetMeterProvider(provider)

	inst, err := newInstruments(provider.Meter(serviceName))
	if err != nil {
		return err
	}

	current.Store(inst)

	return nil
}
