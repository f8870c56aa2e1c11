// Package observability provides OpenTelemetry instrumentation for backend
// requests and list-cache fetches.
//
// Everything is opt-in. Without a provider, no-op instruments are used.
package observability

import "go.opentelemetry.io/otel/attribute"

const (
	// TracerName is the instrumentation name for tracing.
	TracerName = "github.com/smileynet/storefront"
	// MeterName is the instrumentation name for metrics.
	MeterName = "github.com/smileynet/storefront"
)

// Attribute keys.
const (
	AttrResource   = "storefront.resource"
	AttrOperation  = "storefront.operation"
	AttrErrorCode  = "storefront.error.code"
	AttrRequestID  = "storefront.request_id"
	AttrHTTPMethod = "http.request.method"
	AttrHTTPStatus = "http.response.status_code"
	AttrURLPath    = "url.path"
	AttrCacheKey   = "storefront.cache.key"
	AttrResult     = "result"
)

// Cache fetch results.
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"
)

// ResourceAttr returns the resource attribute (categories, products, ...).
func ResourceAttr(name string) attribute.KeyValue {
	return attribute.String(AttrResource, name)
}

// OperationAttr returns the operation attribute.
func OperationAttr(op string) attribute.KeyValue {
	return attribute.String(AttrOperation, op)
}
