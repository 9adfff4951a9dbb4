// Package router merges the primary registry and the virtual providers into
// one management surface.
//
// Single-target operations go to the virtual server owning the name's domain,
// or to the primary when no virtual server owns it. Collection-wide
// operations fan out to every server and union the results. Registration into
// a virtual domain is rejected before any server sees it.
//
// A Router is immutable after New and holds no locks.
package router

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/zjrosen/mxview/internal/domain/objname"
	"github.com/zjrosen/mxview/internal/log"
	"github.com/zjrosen/mxview/internal/metrics"
	"github.com/zjrosen/mxview/internal/model"
	"github.com/zjrosen/mxview/internal/notify"
)

// ErrNilPrimary is returned by New without a primary server.
var ErrNilPrimary = errors.New("primary server cannot be nil")

const (
	TargetPrimary = "primary"
	TargetVirtual = "virtual"
)

// Target describes one routing entry.
type Target struct {
	Domain string `json:"domain"`
	Kind   string `json:"kind"`
}

// Router is a composite model.Server.
type Router struct {
	primary model.Server
	virtual map[string]model.Server
	order   []string
	metrics *metrics.Metrics
}

var _ model.Server = (*Router)(nil)

// Option customizes a Router.
type Option func(*Router)

// WithMetrics records routing decisions on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Router) { r.metrics = m }
}

// New builds a router. virtual maps each owned domain to its server; the map
// is copied. A virtual domain may not be empty, nil or equal to the
// primary's default domain.
func New(primary model.Server, virtual map[string]model.Server, opts ...Option) (*Router, error) {
	if primary == nil {
		return nil, ErrNilPrimary
	}

	r := &Router{
		primary: primary,
		virtual: make(map[string]model.Server, len(virtual)),
	}
	for domain, srv := range virtual {
		switch {
		case domain == "":
			return nil, fmt.Errorf("%w: empty virtual domain", model.ErrDomainConflict)
		case srv == nil:
			return nil, fmt.Errorf("virtual domain %q: server cannot be nil", domain)
		case domain == primary.DefaultDomain():
			return nil, fmt.Errorf("%w: virtual domain %q is the primary domain", model.ErrDomainConflict, domain)
		}
		r.virtual[domain] = srv
		r.order = append(r.order, domain)
	}
	sort.Strings(r.order)

	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// choose returns the server owning name's domain.
func (r *Router) choose(op string, name objname.Name) model.Server {
	if !name.IsZero() {
		if srv, ok := r.virtual[name.Domain()]; ok {
			r.metrics.IncRouted(op, TargetVirtual)
			return srv
		}
	}
	r.metrics.IncRouted(op, TargetPrimary)
	return r.primary
}

// servers returns the primary followed by the virtual servers in domain order.
func (r *Router) servers() []model.Server {
	out := make([]model.Server, 0, len(r.virtual)+1)
	out = append(out, r.primary)
	for _, d := range r.order {
		out = append(out, r.virtual[d])
	}
	return out
}

// IsVirtual reports whether domain is owned by a virtual server.
func (r *Router) IsVirtual(domain string) bool {
	_, ok := r.virtual[domain]
	return ok
}

// Targets lists the routing table, primary first.
func (r *Router) Targets() []Target {
	out := []Target{{Domain: r.primary.DefaultDomain(), Kind: TargetPrimary}}
	for _, d := range r.order {
		out = append(out, Target{Domain: d, Kind: TargetVirtual})
	}
	return out
}

func (r *Router) checkRegistration(name objname.Name) error {
	if r.IsVirtual(name.Domain()) {
		r.metrics.IncRejectedRegistration()
		log.Warn(log.CatRouter, "rejected registration into virtual domain", "name", name)
		return model.NewError("register", name, model.ErrReadOnlyNamespace, "")
	}
	return nil
}

func (r *Router) Register(name objname.Name, className string, res model.Resource) (model.Instance, error) {
	if err := r.checkRegistration(name); err != nil {
		return model.Instance{}, err
	}
	return r.choose("register", name).Register(name, className, res)
}

func (r *Router) Unregister(name objname.Name) error {
	return r.choose("unregister", name).Unregister(name)
}

func (r *Router) Instance(name objname.Name) (model.Instance, error) {
	return r.choose("instance", name).Instance(name)
}

func (r *Router) IsRegistered(name objname.Name) bool {
	return r.choose("is_registered", name).IsRegistered(name)
}

func (r *Router) IsInstanceOf(name objname.Name, className string) (bool, error) {
	return r.choose("is_instance_of", name).IsInstanceOf(name, className)
}

func (r *Router) Descriptor(name objname.Name) (model.Descriptor, error) {
	return r.choose("descriptor", name).Descriptor(name)
}

func (r *Router) Attribute(name objname.Name, attr string) (any, error) {
	return r.choose("attribute", name).Attribute(name, attr)
}

func (r *Router) Attributes(name objname.Name, attrs []string) (map[string]any, error) {
	return r.choose("attributes", name).Attributes(name, attrs)
}

func (r *Router) SetAttribute(name objname.Name, attr string, value any) error {
	return r.choose("set_attribute", name).SetAttribute(name, attr, value)
}

func (r *Router) SetAttributes(name objname.Name, values map[string]any) (map[string]any, error) {
	return r.choose("set_attributes", name).SetAttributes(name, values)
}

func (r *Router) Invoke(ctx context.Context, name objname.Name, op string, params []any) (any, error) {
	return r.choose("invoke", name).Invoke(ctx, name, op, params)
}

func (r *Router) QueryNames(pattern *objname.Name, pred model.Predicate) objname.Set {
	r.metrics.IncFanout("query_names")
	out := objname.NewSet()
	for _, srv := range r.servers() {
		out = out.Union(srv.QueryNames(pattern, pred))
	}
	return out
}

func (r *Router) QueryInstances(pattern *objname.Name, pred model.Predicate) model.InstanceSet {
	r.metrics.IncFanout("query_instances")
	out := model.NewInstanceSet()
	for _, srv := range r.servers() {
		out = out.Union(srv.QueryInstances(pattern, pred))
	}
	return out
}

// DefaultDomain is the primary's default domain.
func (r *Router) DefaultDomain() string { return r.primary.DefaultDomain() }

// Domains is the sorted, deduplicated union of every server's domains.
func (r *Router) Domains() []string {
	r.metrics.IncFanout("domains")
	seen := make(map[string]struct{})
	var out []string
	for _, srv := range r.servers() {
		for _, d := range srv.Domains() {
			if _, ok := seen[d]; ok {
				continue
			}
			seen[d] = struct{}{}
			out = append(out, d)
		}
	}
	sort.Strings(out)
	return out
}

// Count sums every server's count, treating a negative count as zero.
func (r *Router) Count() int {
	r.metrics.IncFanout("count")
	total := 0
	for _, srv := range r.servers() {
		if c := srv.Count(); c > 0 {
			total += c
		}
	}
	return total
}

// CountByDomain reports each server's normalized count keyed by its default
// domain.
func (r *Router) CountByDomain() map[string]int {
	out := make(map[string]int, len(r.virtual)+1)
	for _, srv := range r.servers() {
		c := srv.Count()
		if c < 0 {
			c = 0
		}
		out[srv.DefaultDomain()] += c
		r.metrics.SetResources(srv.DefaultDomain(), c)
	}
	return out
}

// Start starts every virtual server that has a lifecycle. Servers already
// started are stopped again when a later one fails.
func (r *Router) Start(ctx context.Context, sink notify.Sink) error {
	var started []model.Lifecycle
	for _, d := range r.order {
		lc, ok := r.virtual[d].(model.Lifecycle)
		if !ok {
			continue
		}
		if err := lc.Start(ctx, sink); err != nil {
			for i := len(started) - 1; i >= 0; i-- {
				_ = started[i].Stop(ctx)
			}
			return fmt.Errorf("starting virtual domain %q: %w", d, err)
		}
		started = append(started, lc)
		log.Info(log.CatRouter, "virtual domain started", "domain", d)
	}
	return nil
}

// Stop stops every virtual server in reverse domain order and returns the
// joined errors.
func (r *Router) Stop(ctx context.Context) error {
	var errs []error
	for i := len(r.order) - 1; i >= 0; i-- {
		d := r.order[i]
		lc, ok := r.virtual[d].(model.Lifecycle)
		if !ok {
			continue
		}
		if err := lc.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stopping virtual domain %q: %w", d, err))
		}
	}
	return errors.Join(errs...)
}
