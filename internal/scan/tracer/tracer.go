// Package tracer is a small tracing abstraction for the scan flow. The scan
// module emits one span per phase without depending on OpenTelemetry APIs
// directly; production wires the OTel adapter, tests wire the no-op.
package tracer

import "context"

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks the span as failed.
	// End must be called exactly once, typically via defer.
	End(err error)

	// SetAttributes adds key-value pairs to the span.
	SetAttributes(attrs ...Attribute)

	// AddEvent records a timestamped event within the span.
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int64 creates an int64 attribute.
func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Span names used by the scan flow, one per FSM phase.
const (
	SpanScanSubmit = "scan.submit"
	SpanScanDecode = "scan.decode"
	SpanScanRedeem = "scan.redeem"
)

// Attribute keys used by the scan flow.
const (
	AttrRequestID = "request_id"
	AttrValid     = "valid"
	AttrPurpose   = "purpose"
	AttrReason    = "reason"
)
