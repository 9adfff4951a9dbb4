// Package api exposes the composite server over HTTP: JSON endpoints for
// queries and resource access, and an SSE stream of notifications.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/mxview/internal/domain/objname"
	"github.com/zjrosen/mxview/internal/filter"
	"github.com/zjrosen/mxview/internal/flags"
	"github.com/zjrosen/mxview/internal/log"
	"github.com/zjrosen/mxview/internal/model"
	"github.com/zjrosen/mxview/internal/notify"
	"github.com/zjrosen/mxview/internal/presentation"
	"github.com/zjrosen/mxview/internal/pubsub"
	"github.com/zjrosen/mxview/internal/registry"
	"github.com/zjrosen/mxview/internal/router"
	"github.com/zjrosen/mxview/internal/tracing"
)

const (
	// DefaultHeartbeat is the SSE keep-alive interval.
	DefaultHeartbeat = 30 * time.Second

	// DefaultStaticClass is the class given to remotely registered resources
	// that name none.
	DefaultStaticClass = "mxview.Static"
)

// Topology is implemented by servers that can describe their constituents.
type Topology interface {
	Targets() []router.Target
	CountByDomain() map[string]int
}

// HandlerConfig configures the API handler.
type HandlerConfig struct {
	// Server answers every request (required).
	Server model.Server
	// Compiler parses ?filter= expressions. Nil uses an uncached compiler.
	Compiler *filter.Compiler
	// Events feeds GET /events. Nil disables the stream.
	Events *pubsub.Broker[notify.Notification]
	// Flags gates optional endpoints. Nil uses the defaults.
	Flags *flags.Registry
	// Gatherer backs GET /metrics. Nil disables it.
	Gatherer prometheus.Gatherer
	// Tracer wraps requests in spans. Nil records none.
	Tracer trace.Tracer
	// Heartbeat is the SSE keep-alive interval. Zero uses DefaultHeartbeat.
	Heartbeat time.Duration
}

// Handler provides the HTTP endpoints.
type Handler struct {
	server    model.Server
	compiler  *filter.Compiler
	events    *pubsub.Broker[notify.Notification]
	flags     *flags.Registry
	gatherer  prometheus.Gatherer
	tracer    trace.Tracer
	heartbeat time.Duration
}

// NewHandler creates a handler from cfg.
func NewHandler(cfg HandlerConfig) *Handler {
	h := &Handler{
		server:    cfg.Server,
		compiler:  cfg.Compiler,
		events:    cfg.Events,
		flags:     cfg.Flags,
		gatherer:  cfg.Gatherer,
		tracer:    cfg.Tracer,
		heartbeat: cfg.Heartbeat,
	}
	if h.compiler == nil {
		h.compiler = filter.NewCompiler(0)
	}
	if h.flags == nil {
		h.flags = flags.New(nil)
	}
	if h.heartbeat <= 0 {
		h.heartbeat = DefaultHeartbeat
	}
	return h
}

// Routes returns an http.Handler with all API routes registered.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(tracing.Middleware(h.tracer))
	r.Use(requestLogger)

	r.Get("/health", h.Health)
	r.Get("/domains", h.Domains)
	r.Get("/count", h.Count)
	r.Get("/names", h.Names)
	r.Get("/instances", h.Instances)

	r.Get("/resource", h.Resource)
	r.Get("/resource/attributes", h.GetAttributes)
	r.Get("/resource/attribute", h.GetAttribute)
	r.Put("/resource/attribute", h.SetAttribute)
	r.Post("/resource/invoke", h.Invoke)
	r.With(h.requireFlag(flags.FlagRemoteRegistration)).Post("/resource", h.Register)
	r.With(h.requireFlag(flags.FlagRemoteRegistration)).Delete("/resource", h.Unregister)

	r.With(h.requireFlag(flags.FlagEventStream)).Get("/events", h.StreamEvents)

	if h.gatherer != nil && h.flags.Enabled(flags.FlagMetrics) {
		r.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

// === Request/Response Types ===

// CountResponse is the body of GET /count.
type CountResponse struct {
	Count int `json:"count"`
}

// AttributeResponse is the body of GET /resource/attribute.
type AttributeResponse struct {
	Name      string `json:"name"`
	Attribute string `json:"attribute"`
	Value     any    `json:"value"`
}

// SetAttributeRequest is the body of PUT /resource/attribute.
type SetAttributeRequest struct {
	Attribute string `json:"attr"`
	Value     any    `json:"value"`
}

// InvokeRequest is the body of POST /resource/invoke.
type InvokeRequest struct {
	Operation string `json:"operation"`
	Params    []any  `json:"params,omitempty"`
}

// InvokeResponse is the body returned by POST /resource/invoke.
type InvokeResponse struct {
	Result any `json:"result"`
}

// RegisterRequest is the body of POST /resource.
type RegisterRequest struct {
	Name       string         `json:"name"`
	Class      string         `json:"class"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// === Handlers ===

// Health reports liveness.
// GET /health
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Domains lists every visible domain.
// GET /domains
func (h *Handler) Domains(w http.ResponseWriter, _ *http.Request) {
	dto := presentation.DomainsDTO{
		DefaultDomain: h.server.DefaultDomain(),
		Domains:       h.server.Domains(),
	}
	if dto.Domains == nil {
		dto.Domains = []string{}
	}
	if topo, ok := h.server.(Topology); ok {
		counts := topo.CountByDomain()
		for _, t := range topo.Targets() {
			dto.Targets = append(dto.Targets, presentation.TargetDTO{Domain: t.Domain, Kind: t.Kind, Count: counts[t.Domain]})
			dto.Count += counts[t.Domain]
		}
	} else {
		dto.Count = h.server.Count()
	}
	h.writeJSON(w, http.StatusOK, dto)
}

// Count returns the total resource count.
// GET /count
func (h *Handler) Count(w http.ResponseWriter, _ *http.Request) {
	if topo, ok := h.server.(Topology); ok {
		// Refreshes the per-domain gauge as a side effect.
		topo.CountByDomain()
	}
	h.writeJSON(w, http.StatusOK, CountResponse{Count: h.server.Count()})
}

// Names queries resource names.
// GET /names?pattern=P&filter=F
func (h *Handler) Names(w http.ResponseWriter, r *http.Request) {
	pattern, pred, ok := h.queryArgs(w, r)
	if !ok {
		return
	}
	dto := presentation.FromNames(h.server.QueryNames(pattern, pred))
	trace.SpanFromContext(r.Context()).SetAttributes(attribute.Int(tracing.AttrResults, dto.Count))
	h.writeJSON(w, http.StatusOK, dto)
}

// Instances queries resource instances.
// GET /instances?pattern=P&filter=F
func (h *Handler) Instances(w http.ResponseWriter, r *http.Request) {
	pattern, pred, ok := h.queryArgs(w, r)
	if !ok {
		return
	}
	dto := presentation.FromInstances(h.server.QueryInstances(pattern, pred))
	trace.SpanFromContext(r.Context()).SetAttributes(attribute.Int(tracing.AttrResults, dto.Count))
	h.writeJSON(w, http.StatusOK, dto)
}

// Resource describes one resource with its readable attribute values.
// GET /resource?name=N
func (h *Handler) Resource(w http.ResponseWriter, r *http.Request) {
	name, ok := h.nameArg(w, r)
	if !ok {
		return
	}
	in, err := h.server.Instance(name)
	if err != nil {
		h.writeModelError(w, r, err)
		return
	}
	d, err := h.server.Descriptor(name)
	if err != nil {
		h.writeModelError(w, r, err)
		return
	}
	values, err := h.server.Attributes(name, nil)
	if err != nil {
		h.writeModelError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, presentation.FromResource(in, d, values))
}

// GetAttributes reads the listed attributes, or every readable one.
// GET /resource/attributes?name=N[&attr=A...]
func (h *Handler) GetAttributes(w http.ResponseWriter, r *http.Request) {
	name, ok := h.nameArg(w, r)
	if !ok {
		return
	}
	values, err := h.server.Attributes(name, r.URL.Query()["attr"])
	if err != nil {
		h.writeModelError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, values)
}

// GetAttribute reads one attribute.
// GET /resource/attribute?name=N&attr=A
func (h *Handler) GetAttribute(w http.ResponseWriter, r *http.Request) {
	name, ok := h.nameArg(w, r)
	if !ok {
		return
	}
	attr := r.URL.Query().Get("attr")
	if attr == "" {
		h.writeError(w, http.StatusBadRequest, CodeInvalidRequest, "attr is required", "")
		return
	}
	trace.SpanFromContext(r.Context()).SetAttributes(attribute.String(tracing.AttrAttribute, attr))

	value, err := h.server.Attribute(name, attr)
	if err != nil {
		h.writeModelError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, AttributeResponse{Name: name.String(), Attribute: attr, Value: value})
}

// SetAttribute writes one attribute.
// PUT /resource/attribute?name=N
func (h *Handler) SetAttribute(w http.ResponseWriter, r *http.Request) {
	name, ok := h.nameArg(w, r)
	if !ok {
		return
	}
	var req SetAttributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, CodeInvalidJSON, "Invalid JSON body", err.Error())
		return
	}
	if req.Attribute == "" {
		h.writeError(w, http.StatusBadRequest, CodeInvalidRequest, "attr is required", "")
		return
	}
	if err := h.server.SetAttribute(name, req.Attribute, req.Value); err != nil {
		h.writeModelError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Invoke runs an operation.
// POST /resource/invoke?name=N
func (h *Handler) Invoke(w http.ResponseWriter, r *http.Request) {
	name, ok := h.nameArg(w, r)
	if !ok {
		return
	}
	var req InvokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, CodeInvalidJSON, "Invalid JSON body", err.Error())
		return
	}
	trace.SpanFromContext(r.Context()).SetAttributes(attribute.String(tracing.AttrOperation, req.Operation))

	result, err := h.server.Invoke(r.Context(), name, req.Operation, req.Params)
	if err != nil {
		h.writeModelError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, InvokeResponse{Result: result})
}

// Register adds a static resource to the primary registry.
// POST /resource
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, CodeInvalidJSON, "Invalid JSON body", err.Error())
		return
	}
	name, err := objname.Parse(req.Name)
	if err != nil {
		h.writeModelError(w, r, err)
		return
	}
	class := req.Class
	if class == "" {
		class = DefaultStaticClass
	}

	in, err := h.server.Register(name, class, registry.NewStatic(class, req.Attributes))
	if err != nil {
		h.writeModelError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, presentation.FromInstance(in))
}

// Unregister removes a resource from the primary registry.
// DELETE /resource?name=N
func (h *Handler) Unregister(w http.ResponseWriter, r *http.Request) {
	name, ok := h.nameArg(w, r)
	if !ok {
		return
	}
	if err := h.server.Unregister(name); err != nil {
		h.writeModelError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StreamEvents streams notifications as server-sent events.
// GET /events
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	if h.events == nil {
		h.writeError(w, http.StatusNotFound, CodeDisabled, "Event stream not configured", "")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeError(w, http.StatusInternalServerError, CodeStreaming, "Streaming not supported", "")
		return
	}

	ctx := r.Context()
	events := h.events.Subscribe(ctx)
	trace.SpanFromContext(ctx).AddEvent(tracing.EventSubscribed)
	log.Debug(log.CatHTTP, "Event stream opened", "request_id", tracing.RequestIDFromContext(ctx))

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	_, _ = fmt.Fprintf(w, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Payload)
			if err != nil {
				log.ErrorErr(log.CatHTTP, "Failed to marshal notification", err)
				continue
			}
			_, _ = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", event.Payload.Sequence, event.Payload.Kind, data)
			flusher.Flush()
		}
	}
}

// === Helpers ===

func (h *Handler) requireFlag(flag string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !h.flags.Enabled(flag) {
				h.writeError(w, http.StatusNotFound, CodeDisabled, "Endpoint disabled", "flag "+flag+" is off")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *Handler) nameArg(w http.ResponseWriter, r *http.Request) (objname.Name, bool) {
	raw := r.URL.Query().Get("name")
	if raw == "" {
		h.writeError(w, http.StatusBadRequest, CodeInvalidRequest, "name is required", "")
		return objname.Name{}, false
	}
	name, err := objname.Parse(raw)
	if err != nil {
		h.writeModelError(w, r, err)
		return objname.Name{}, false
	}
	return name, true
}

// queryArgs reads ?pattern= and ?filter=. A missing pattern matches everything.
func (h *Handler) queryArgs(w http.ResponseWriter, r *http.Request) (*objname.Name, model.Predicate, bool) {
	var pattern *objname.Name
	if raw := r.URL.Query().Get("pattern"); raw != "" {
		p, err := objname.Parse(raw)
		if err != nil {
			h.writeModelError(w, r, err)
			return nil, nil, false
		}
		pattern = &p
	}

	expr := r.URL.Query().Get("filter")
	pred, err := h.compiler.Compile(r.Context(), expr, h.server.Attribute)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, CodeInvalidFilter, "Invalid filter expression", err.Error())
		return nil, nil, false
	}
	if expr != "" {
		trace.SpanFromContext(r.Context()).AddEvent(tracing.EventFilterCompiled,
			trace.WithAttributes(attribute.String(tracing.AttrFilter, expr)))
	}
	return pattern, pred, true
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug(log.CatHTTP, "Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", tracing.RequestIDFromContext(r.Context()))
	})
}
