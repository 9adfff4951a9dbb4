// Package registry is the primary registry of real, explicitly registered
// resources.
package registry

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/zjrosen/mxview/internal/domain/objname"
	"github.com/zjrosen/mxview/internal/log"
	"github.com/zjrosen/mxview/internal/model"
	"github.com/zjrosen/mxview/internal/notify"
)

// ErrNilResource is returned when Register is given no resource.
var ErrNilResource = errors.New("resource cannot be nil")

type entry struct {
	name  objname.Name
	class string
	res   model.Resource
}

// Registry is a thread-safe in-memory model.Server. Names with an empty domain
// are qualified with the default domain.
type Registry struct {
	mu      sync.RWMutex
	domain  string
	entries map[string]*entry
	sink    notify.Sink
}

var _ model.Server = (*Registry)(nil)

// New returns an empty registry whose default domain is domain. Registration
// changes are announced on sink; nil discards them.
func New(domain string, sink notify.Sink) *Registry {
	if sink == nil {
		sink = notify.Discard
	}
	return &Registry{
		domain:  domain,
		entries: make(map[string]*entry),
		sink:    sink,
	}
}

func (r *Registry) qualify(name objname.Name) objname.Name {
	if name.Domain() != "" {
		return name
	}
	q, err := objname.New(r.domain, name.Properties())
	if err != nil {
		return name
	}
	return q
}

func (r *Registry) lookup(op string, name objname.Name) (*entry, objname.Name, error) {
	name = r.qualify(name)
	r.mu.RLock()
	e, ok := r.entries[name.Key()]
	r.mu.RUnlock()
	if !ok {
		return nil, name, model.NewError(op, name, model.ErrNotFound, "")
	}
	return e, name, nil
}

// Register adds res under name. Pattern names are malformed and an existing
// name is a conflict.
func (r *Registry) Register(name objname.Name, className string, res model.Resource) (model.Instance, error) {
	name = r.qualify(name)
	if name.IsPattern() {
		return model.Instance{}, model.NewError("register", name, model.ErrMalformedName, "pattern names cannot be registered")
	}
	if res == nil {
		return model.Instance{}, model.NewError("register", name, ErrNilResource, "")
	}
	if className == "" {
		className = res.Descriptor().ClassName
	}

	r.mu.Lock()
	if _, exists := r.entries[name.Key()]; exists {
		r.mu.Unlock()
		return model.Instance{}, model.NewError("register", name, model.ErrAlreadyExists, "")
	}
	r.entries[name.Key()] = &entry{name: name, class: className, res: res}
	r.mu.Unlock()

	log.Info(log.CatRegistry, "registered", "name", name, "class", className)
	r.sink.Emit(notify.Registered, name)
	return model.Instance{Name: name, ClassName: className}, nil
}

// Unregister removes name.
func (r *Registry) Unregister(name objname.Name) error {
	name = r.qualify(name)

	r.mu.Lock()
	if _, ok := r.entries[name.Key()]; !ok {
		r.mu.Unlock()
		return model.NewError("unregister", name, model.ErrNotFound, "")
	}
	delete(r.entries, name.Key())
	r.mu.Unlock()

	log.Info(log.CatRegistry, "unregistered", "name", name)
	r.sink.Emit(notify.Unregistered, name)
	return nil
}

func (r *Registry) Instance(name objname.Name) (model.Instance, error) {
	e, _, err := r.lookup("instance", name)
	if err != nil {
		return model.Instance{}, err
	}
	return model.Instance{Name: e.name, ClassName: e.class}, nil
}

func (r *Registry) IsRegistered(name objname.Name) bool {
	_, _, err := r.lookup("isRegistered", name)
	return err == nil
}

func (r *Registry) IsInstanceOf(name objname.Name, className string) (bool, error) {
	e, _, err := r.lookup("isInstanceOf", name)
	if err != nil {
		return false, err
	}
	return e.class == className || e.res.Descriptor().ClassName == className, nil
}

func (r *Registry) Descriptor(name objname.Name) (model.Descriptor, error) {
	e, _, err := r.lookup("descriptor", name)
	if err != nil {
		return model.Descriptor{}, err
	}
	return e.res.Descriptor(), nil
}

func (r *Registry) Attribute(name objname.Name, attr string) (any, error) {
	e, qualified, err := r.lookup("attribute", name)
	if err != nil {
		return nil, err
	}
	v, err := e.res.Attribute(attr)
	if err != nil {
		return nil, model.NewError("attribute", qualified, err, attr)
	}
	return v, nil
}

func (r *Registry) Attributes(name objname.Name, attrs []string) (map[string]any, error) {
	e, _, err := r.lookup("attributes", name)
	if err != nil {
		return nil, err
	}
	if len(attrs) == 0 {
		attrs = e.res.Descriptor().ReadableAttributes()
	}
	out := make(map[string]any, len(attrs))
	for _, a := range attrs {
		v, err := e.res.Attribute(a)
		if err != nil {
			continue
		}
		out[a] = v
	}
	return out, nil
}

func (r *Registry) SetAttribute(name objname.Name, attr string, value any) error {
	e, qualified, err := r.lookup("setAttribute", name)
	if err != nil {
		return err
	}
	if err := e.res.SetAttribute(attr, value); err != nil {
		return model.NewError("setAttribute", qualified, err, attr)
	}
	return nil
}

// SetAttributes applies each value and returns the ones that were set.
func (r *Registry) SetAttributes(name objname.Name, values map[string]any) (map[string]any, error) {
	e, qualified, err := r.lookup("setAttributes", name)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(values))
	for k, v := range values {
		if err := e.res.SetAttribute(k, v); err != nil {
			log.Debug(log.CatRegistry, "attribute not set", "name", qualified, "attr", k, "error", err)
			continue
		}
		out[k] = v
	}
	return out, nil
}

// Invoke rewrites a parameterless "getX" to a read of attribute X.
func (r *Registry) Invoke(ctx context.Context, name objname.Name, op string, params []any) (any, error) {
	if op == "" {
		return nil, model.NewError("invoke", name, model.ErrOperationNotSupported, "empty operation name")
	}
	e, qualified, err := r.lookup("invoke", name)
	if err != nil {
		return nil, err
	}
	if attr, ok := model.GetterAttribute(op, params); ok {
		if v, err := e.res.Attribute(attr); err == nil {
			return v, nil
		}
	}
	res, err := e.res.Invoke(ctx, op, params)
	if err != nil {
		return nil, model.NewError("invoke", qualified, err, op)
	}
	return res, nil
}

func (r *Registry) snapshot() []*entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	return out
}

func (r *Registry) QueryNames(pattern *objname.Name, pred model.Predicate) objname.Set {
	out := objname.NewSet()
	for _, e := range r.snapshot() {
		if objname.Matches(e.name, pattern) && pred.Accept(e.name) {
			out.Add(e.name)
		}
	}
	return out
}

func (r *Registry) QueryInstances(pattern *objname.Name, pred model.Predicate) model.InstanceSet {
	out := model.NewInstanceSet()
	for _, e := range r.snapshot() {
		if objname.Matches(e.name, pattern) && pred.Accept(e.name) {
			out.Add(model.Instance{Name: e.name, ClassName: e.class})
		}
	}
	return out
}

func (r *Registry) DefaultDomain() string { return r.domain }

// Domains lists the default domain and every domain with a registration.
func (r *Registry) Domains() []string {
	seen := map[string]struct{}{r.domain: {}}
	for _, e := range r.snapshot() {
		seen[e.name.Domain()] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
