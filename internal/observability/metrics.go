package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metrics holds the metric instruments.
type Metrics struct {
	requestDuration metric.Float64Histogram
	requestCount    metric.Int64Counter
	cacheFetchCount metric.Int64Counter
}

// NewMetrics creates instruments from mp.
func NewMetrics(mp metric.MeterProvider) *Metrics {
	return newMetrics(mp.Meter(MeterName))
}

// NewNoopMetrics creates metrics that do nothing.
func NewNoopMetrics() *Metrics {
	return newMetrics(noop.NewMeterProvider().Meter(""))
}

func newMetrics(meter metric.Meter) *Metrics {
	m := &Metrics{}

	// Instrument creation only fails on invalid names or options; fall back
	// to a bare instrument so the recorders never see nil.
	var err error

	m.requestDuration, err = meter.Float64Histogram(
		"storefront.api.request.duration",
		metric.WithDescription("Duration of backend API requests in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		m.requestDuration, _ = meter.Float64Histogram("storefront.api.request.duration")
	}

	m.requestCount, err = meter.Int64Counter(
		"storefront.api.request.count",
		metric.WithDescription("Total number of backend API requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		m.requestCount, _ = meter.Int64Counter("storefront.api.request.count")
	}

	m.cacheFetchCount, err = meter.Int64Counter(
		"storefront.cache.fetch.count",
		metric.WithDescription("List cache fetches by result"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		m.cacheFetchCount, _ = meter.Int64Counter("storefront.cache.fetch.count")
	}

	return m
}

// RecordRequest records a completed backend request. status is 0 when no
// response was received.
func (m *Metrics) RecordRequest(ctx context.Context, method, path string, status int, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrURLPath, path),
		attribute.Int(AttrHTTPStatus, status),
	)
	m.requestDuration.Record(ctx, float64(d.Milliseconds()), attrs)
	m.requestCount.Add(ctx, 1, attrs)
}

// RecordCacheFetch records a list cache lookup. result is one of ResultHit,
// ResultMiss or ResultError.
func (m *Metrics) RecordCacheFetch(ctx context.Context, key, result string) {
	m.cacheFetchCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrCacheKey, key),
		attribute.String(AttrResult, result),
	))
}
