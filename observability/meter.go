package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/pipegen/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the pipegen metric instruments.
// All record methods are no-ops on a nil *Metrics.
type Metrics struct {
	fetchTotal        metric.Int64Counter
	fetchDuration     metric.Float64Histogram
	generatedTotal    metric.Int64Counter
	skippedTotal      metric.Int64Counter
	operationTotal    metric.Int64Counter
	operationDuration metric.Float64Histogram
	requestTotal      metric.Int64Counter
	requestDuration   metric.Float64Histogram
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)

	if m.fetchTotal, err = meter.Int64Counter("catalog.fetch.total",
		metric.WithDescription("Catalog discovery requests by outcome"),
	); err != nil {
		return nil, fmt.Errorf("creating catalog.fetch.total counter: %w", err)
	}
	if m.fetchDuration, err = meter.Float64Histogram("catalog.fetch.duration",
		metric.WithDescription("Duration of catalog discovery requests in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating catalog.fetch.duration histogram: %w", err)
	}
	if m.generatedTotal, err = meter.Int64Counter("microflow.generated.total",
		metric.WithDescription("Microflows persisted into the workspace"),
	); err != nil {
		return nil, fmt.Errorf("creating microflow.generated.total counter: %w", err)
	}
	if m.skippedTotal, err = meter.Int64Counter("microflow.parameters.skipped",
		metric.WithDescription("Parameters that could not be declared and were skipped"),
	); err != nil {
		return nil, fmt.Errorf("creating microflow.parameters.skipped counter: %w", err)
	}
	if m.operationTotal, err = meter.Int64Counter("operation.total",
		metric.WithDescription("Extension operations by outcome"),
	); err != nil {
		return nil, fmt.Errorf("creating operation.total counter: %w", err)
	}
	if m.operationDuration, err = meter.Float64Histogram("operation.duration",
		metric.WithDescription("Duration of extension operations in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating operation.duration histogram: %w", err)
	}
	if m.requestTotal, err = meter.Int64Counter("http.request.total",
		metric.WithDescription("HTTP API requests"),
	); err != nil {
		return nil, fmt.Errorf("creating http.request.total counter: %w", err)
	}
	if m.requestDuration, err = meter.Float64Histogram("http.request.duration",
		metric.WithDescription("Duration of HTTP API requests in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating http.request.duration histogram: %w", err)
	}

	return &m, nil
}

// RecordFetch records one catalog discovery request.
func (m *Metrics) RecordFetch(ctx context.Context, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.fetchTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	m.fetchDuration.Record(ctx, duration.Seconds())
}

// RecordGenerated records a persisted microflow and its skipped parameters.
func (m *Metrics) RecordGenerated(ctx context.Context, module string, skipped int) {
	if m == nil {
		return
	}
	m.generatedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("module", module)))
	if skipped > 0 {
		m.skippedTotal.Add(ctx, int64(skipped))
	}
}

// RecordOperation records an extension operation.
func (m *Metrics) RecordOperation(ctx context.Context, operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.operationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
	m.operationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// RecordRequest records a completed HTTP request.
func (m *Metrics) RecordRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	))
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
	))
}
