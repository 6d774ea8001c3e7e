package instrumentation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Provider owns the gateway's OpenTelemetry meter and tracer providers and
// the Metrics recorder built on top of them. A disabled Provider is fully
// usable: Metrics returns a no-op recorder and Tracer returns no-op tracers.
type Provider struct {
	cfg     Config
	meters  *metric.MeterProvider
	traces  *sdktrace.TracerProvider
	metrics *Metrics
	prom    *prometheus.Exporter
	enabled bool
}

// NewProvider builds the telemetry stack described by cfg and installs it as
// the process-global OpenTelemetry providers. With cfg.Enabled false it
// returns a no-op Provider and touches no global state.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{cfg: cfg, metrics: &Metrics{}}, nil
	}

	res, err := gatewayResource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build telemetry resource: %w", err)
	}

	reader, prom, err := newMetricReader(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("metrics exporter: %w", err)
	}
	meters := metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(reader),
	)

	traces, err := newTracerProvider(ctx, cfg, res)
	if err != nil {
		err = fmt.Errorf("tracing exporter: %w", err)
		if mErr := meters.Shutdown(ctx); mErr != nil {
			err = errors.Join(err, fmt.Errorf("shut down meter provider after tracer failure: %w", mErr))
		}
		return nil, err
	}

	p := &Provider{
		cfg:     cfg,
		meters:  meters,
		traces:  traces,
		prom:    prom,
		enabled: true,
	}

	otel.SetMeterProvider(meters)
	otel.SetTracerProvider(traces)

	p.metrics, err = NewMetrics(meters.Meter(cfg.ServiceName))
	if err != nil {
		_ = p.Shutdown(ctx)
		return nil, fmt.Errorf("build metrics recorder: %w", err)
	}
	return p, nil
}

// gatewayResource identifies this process in exported telemetry. The
// instance ID falls back to the hostname when not configured.
func gatewayResource(ctx context.Context, cfg Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	}
	switch {
	case cfg.ServiceInstanceID != "":
		attrs = append(attrs, semconv.ServiceInstanceID(cfg.ServiceInstanceID))
	default:
		if host, err := os.Hostname(); err == nil {
			attrs = append(attrs, semconv.ServiceInstanceID(host))
		}
	}
	return resource.New(ctx, resource.WithAttributes(attrs...))
}

// newMetricReader builds the reader for the configured metrics exporter.
// The prometheus exporter is its own reader and is returned separately so
// the caller can expose it over HTTP.
func newMetricReader(ctx context.Context, cfg Config) (metric.Reader, *prometheus.Exporter, error) {
	switch cfg.MetricsExporter {
	case ExporterPrometheus:
		prom, err := prometheus.New()
		if err != nil {
			return nil, nil, err
		}
		return prom, prom, nil

	case ExporterOTLP:
		if cfg.OTLPEndpoint == "" {
			return nil, nil, errors.New("otlp metrics need an endpoint; set OTEL_EXPORTER_OTLP_ENDPOINT or switch to the prometheus exporter")
		}
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.OTLPInsecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exp, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, nil, err
		}
		return metric.NewPeriodicReader(exp), nil, nil

	case ExporterStdout:
		slog.Warn("metrics are printed to stdout; use prometheus or otlp outside development",
			"component", "instrumentation")
		exp, err := stdoutmetric.New()
		if err != nil {
			return nil, nil, err
		}
		return metric.NewPeriodicReader(exp), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown metrics exporter %q", cfg.MetricsExporter)
}

// newTracerProvider builds the tracer provider for the configured tracing
// exporter. ExporterNone keeps a real provider with sampling off so span
// helpers stay cheap without nil checks.
func newTracerProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	if cfg.TracingExporter == ExporterNone {
		return sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.NeverSample()),
		), nil
	}

	var exp sdktrace.SpanExporter
	switch cfg.TracingExporter {
	case ExporterOTLP:
		if cfg.OTLPEndpoint == "" {
			return nil, errors.New("otlp tracing needs an endpoint; set OTEL_EXPORTER_OTLP_ENDPOINT")
		}
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.OTLPInsecure {
			// Spans carry tool names and Telnyx resource IDs.
			slog.Warn("otlp traces use insecure transport; keep this to local development",
				"component", "instrumentation",
				"endpoint", cfg.OTLPEndpoint)
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		var err error
		if exp, err = otlptracehttp.New(ctx, opts...); err != nil {
			return nil, err
		}

	case ExporterStdout:
		slog.Warn("traces are printed to stdout; use otlp outside development",
			"component", "instrumentation")
		var err error
		if exp, err = stdouttrace.New(); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unknown tracing exporter %q", cfg.TracingExporter)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exp),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.TraceSamplingRate))),
	), nil
}

// Metrics returns the metrics recorder. Never nil.
func (p *Provider) Metrics() *Metrics {
	return p.metrics
}

// Tracer returns a tracer for creating spans, no-op when telemetry is off.
func (p *Provider) Tracer(name string) trace.Tracer {
	if !p.enabled || p.traces == nil {
		return noop.NewTracerProvider().Tracer(name)
	}
	return p.traces.Tracer(name)
}

// PrometheusHandler returns the prometheus exporter when that exporter is
// configured, nil otherwise.
func (p *Provider) PrometheusHandler() interface{} {
	if p.prom == nil {
		return nil
	}
	return p.prom
}

// Shutdown flushes pending telemetry and stops the providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.enabled {
		return nil
	}
	var errs []error
	if p.meters != nil {
		if err := p.meters.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shut down meter provider: %w", err))
		}
	}
	if p.traces != nil {
		if err := p.traces.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shut down tracer provider: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Enabled reports whether real telemetry is configured.
func (p *Provider) Enabled() bool {
	return p.enabled
}
