package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrRoute      = "mxview.route"
	AttrName       = "mxview.name"
	AttrPattern    = "mxview.pattern"
	AttrFilter     = "mxview.filter"
	AttrAttribute  = "mxview.attribute"
	AttrOperation  = "mxview.operation"
	AttrResults    = "mxview.results"
	AttrRequestID  = "mxview.request_id"
	AttrStatusCode = "http.status_code"
	AttrMethod     = "http.method"

	AttrErrorCode    = "error.code"
	AttrErrorMessage = "error.message"
)

// Span name prefixes.
const (
	SpanPrefixHTTP   = "http."
	SpanPrefixServer = "server."
)

// Event names.
const (
	EventFilterCompiled = "filter.compiled"
	EventSubscribed     = "events.subscribed"
)

// RecordError marks span as failed with err, tagging it with the
// management error code.
func RecordError(span trace.Span, err error, code string) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(
		attribute.String(AttrErrorCode, code),
		attribute.String(AttrErrorMessage, err.Error()),
	)
}
