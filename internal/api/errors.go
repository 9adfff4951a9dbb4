package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/mxview/internal/log"
	"github.com/zjrosen/mxview/internal/model"
	"github.com/zjrosen/mxview/internal/presentation"
	"github.com/zjrosen/mxview/internal/tracing"
)

// Request validation codes, beside the model.Code values.
const (
	CodeInvalidRequest = "invalid_request"
	CodeInvalidJSON    = "invalid_json"
	CodeInvalidFilter  = "invalid_filter"
	CodeDisabled       = "disabled"
	CodeStreaming      = "streaming_unsupported"
)

// StatusFor maps a model error code to an HTTP status.
func StatusFor(code string) int {
	switch code {
	case model.CodeNotFound, model.CodeAttributeNotFound:
		return http.StatusNotFound
	case model.CodeReadOnlyNamespace, model.CodeAttributeNotWritable:
		return http.StatusForbidden
	case model.CodeNotRunning:
		return http.StatusServiceUnavailable
	case model.CodeMalformedName, model.CodeOperationNotSupported:
		return http.StatusBadRequest
	case model.CodeAlreadyExists, model.CodeDomainConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.ErrorErr(log.CatHTTP, "Failed to encode response", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message, details string) {
	h.writeJSON(w, status, presentation.ErrorDTO{Error: message, Code: code, Details: details})
}

// writeModelError maps err onto the envelope and records it on the request span.
func (h *Handler) writeModelError(w http.ResponseWriter, r *http.Request, err error) {
	code := model.Code(err)
	status := StatusFor(code)

	span := trace.SpanFromContext(r.Context())
	tracing.RecordError(span, err, code)

	message := err.Error()
	var merr *model.Error
	if errors.As(err, &merr) && merr.Err != nil {
		message = merr.Err.Error()
	}

	if status >= http.StatusInternalServerError {
		log.ErrorErr(log.CatHTTP, "Request failed", err, "path", r.URL.Path, "request_id", tracing.RequestIDFromContext(r.Context()))
	} else {
		log.Debug(log.CatHTTP, "Request rejected", "path", r.URL.Path, "code", code, "error", err)
	}

	h.writeError(w, status, code, message, err.Error())
}
