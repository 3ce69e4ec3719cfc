package infra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/tnqbao/gau-photo-share/config"
)

const meterName = "gau-photo-share"

type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Metrics        *Metrics
}

func newResource(cfg *config.EnvConfig) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			attribute.String("service.name", cfg.Grafana.ServiceName),
			attribute.String("service.namespace", "apis"),
			attribute.String("deployment.environment", cfg.Environment.Mode),
		),
	)
}

func InitTelemetry(cfg *config.EnvConfig) (*Telemetry, error) {
	ctx := context.Background()

	res, err := newResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build resource: %w", err)
	}

	traceOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Grafana.OTLPEndpoint)}
	metricOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Grafana.OTLPEndpoint)}
	if cfg.Environment.Mode != "production" {
		traceOpts = append(traceOpts, otlptracehttp.WithInsecure())
		metricOpts = append(metricOpts, otlpmetrichttp.WithInsecure())
	}

	traceExporter, err := otlptracehttp.New(ctx, traceOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	metricExporter, err := otlpmetrichttp.New(ctx, metricOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(60*time.Second))),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	if err := runtime.Start(runtime.WithMeterProvider(meterProvider)); err != nil {
		return nil, fmt.Errorf("failed to start runtime instrumentation: %w", err)
	}

	metrics, err := NewMetrics(meterProvider.Meter(meterName))
	if err != nil {
		return nil, err
	}

	return &Telemetry{
		TracerProvider: tracerProvider,
		MeterProvider:  meterProvider,
		Metrics:        metrics,
	}, nil
}

func (t *Telemetry) Shutdown(ctx context.Context) error {
	return errors.Join(t.TracerProvider.Shutdown(ctx), t.MeterProvider.Shutdown(ctx))
}

// Metrics holds the business counters of the service.
type Metrics struct {
	userType         metric.Int64Counter
	imageType        metric.Int64Counter
	resolution       metric.Int64Counter
	uploadRequest    metric.Int64Counter
	shortenerRequest metric.Int64Counter
	shortURLAccess   metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var m Metrics
	var err error

	counters := []struct {
		dst         *metric.Int64Counter
		name        string
		description string
	}{
		{&m.userType, "user_type_counter", "Counts the number of requests made by different user types"},
		{&m.imageType, "image_type_counter", "Counts the number of image upload requests for different image types"},
		{&m.resolution, "image_resolution_request_counter", "Counts the number of requests for different image resolutions"},
		{&m.uploadRequest, "image_upload_request_counter", "Counts the number of image upload requests"},
		{&m.shortenerRequest, "url_shortener_request_counter", "Counts the number of requests made to the URL shortener"},
		{&m.shortURLAccess, "most_common_short_urls", "Counts the number of times a short URL is accessed"},
	}

	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.description), metric.WithUnit("{count}"))
		if err != nil {
			return nil, fmt.Errorf("failed to create counter %s: %w", c.name, err)
		}
	}

	return &m, nil
}

func (m *Metrics) IncrementUserType(ctx context.Context, userType string) {
	m.userType.Add(ctx, 1, metric.WithAttributes(attribute.String("user_type", userType)))
}

func (m *Metrics) IncrementImageType(ctx context.Context, imageType string) {
	m.imageType.Add(ctx, 1, metric.WithAttributes(attribute.String("image_type", imageType)))
}

func (m *Metrics) IncrementResolutionRequest(ctx context.Context, resolution string) {
	m.resolution.Add(ctx, 1, metric.WithAttributes(attribute.String("resolution", resolution)))
}

func (m *Metrics) IncrementUploadRequest(ctx context.Context) {
	m.uploadRequest.Add(ctx, 1)
}

func (m *Metrics) IncrementURLShortenerRequest(ctx context.Context, requestType string) {
	m.shortenerRequest.Add(ctx, 1, metric.WithAttributes(attribute.String("request_type", requestType)))
}

func (m *Metrics) IncrementShortURLAccess(ctx context.Context, shortID, originalURL string) {
	m.shortURLAccess.Add(ctx, 1, metric.WithAttributes(
		attribute.String("short_id", shortID),
		attribute.String("original_url", originalURL),
	))
}
