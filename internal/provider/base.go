package provider

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/zjrosen/mxview/internal/domain/objname"
	"github.com/zjrosen/mxview/internal/log"
	"github.com/zjrosen/mxview/internal/metrics"
	"github.com/zjrosen/mxview/internal/model"
	"github.com/zjrosen/mxview/internal/notify"
	"github.com/zjrosen/mxview/internal/query"
)

// Kind supplies the per-element functions of one resource kind. All of them
// must be pure functions of the element.
type Kind[T any] interface {
	ClassName(elem T) string
	Describe(elem T) model.Descriptor
	NameProperties(elem T) (map[string]string, error)
	Attribute(elem T, attr string) (any, error)
	Invoke(ctx context.Context, elem T, op string, params []any) (any, error)
}

// Base implements the generic half of model.Provider for one domain.
type Base[T any] struct {
	domain   string
	kind     Kind[T]
	snapshot func() []T
	engine   *query.Engine[T]
	emitter  *notify.Emitter
	running  atomic.Bool
}

// NewBase binds kind to domain. snapshot returns the live generation of
// elements on every call. m may be nil.
func NewBase[T any](domain string, kind Kind[T], snapshot func() []T, m *metrics.Metrics) *Base[T] {
	b := &Base[T]{
		domain:   domain,
		kind:     kind,
		snapshot: snapshot,
		emitter:  notify.NewEmitter(),
	}
	b.engine = query.New[T](b, m)
	return b
}

func (b *Base[T]) DefaultDomain() string { return b.domain }

func (b *Base[T]) Domains() []string { return []string{b.domain} }

func (b *Base[T]) IsRunning() bool { return b.running.Load() }

// NameOf builds the name of elem in the bound domain.
func (b *Base[T]) NameOf(elem T) (objname.Name, error) {
	props, err := b.kind.NameProperties(elem)
	if err != nil {
		return objname.Name{}, err
	}
	return objname.New(b.domain, props)
}

func (b *Base[T]) InstanceOf(name objname.Name, elem T) model.Instance {
	return model.Instance{Name: name, ClassName: b.kind.ClassName(elem)}
}

// QueryNames is empty while the provider is stopped.
func (b *Base[T]) QueryNames(pattern *objname.Name, pred model.Predicate) objname.Set {
	if !b.IsRunning() {
		b.logStopped("names")
		return objname.NewSet()
	}
	return b.engine.Names(pattern, pred, b.snapshot())
}

// QueryInstances is empty while the provider is stopped.
func (b *Base[T]) QueryInstances(pattern *objname.Name, pred model.Predicate) model.InstanceSet {
	if !b.IsRunning() {
		b.logStopped("instances")
		return model.NewInstanceSet()
	}
	return b.engine.Instances(pattern, pred, b.snapshot())
}

// Count is the size of the live generation, zero while stopped.
func (b *Base[T]) Count() int {
	if !b.IsRunning() {
		b.logStopped("count")
		return 0
	}
	return len(b.snapshot())
}

func (b *Base[T]) logStopped(op string) {
	log.Debug(log.CatProvider, "query on stopped provider", "domain", b.domain, "op", op)
}

// Lookup resolves name with find. It fails with ErrNotRunning while stopped
// and with ErrNotFound on a domain mismatch or when find reports no element.
func (b *Base[T]) Lookup(name objname.Name, find func(objname.Name) (T, bool)) (model.Item, error) {
	if !b.IsRunning() {
		return nil, model.NewError("item", name, model.ErrNotRunning, "")
	}
	if name.Domain() != b.domain {
		return nil, model.NewError("item", name, model.ErrNotFound, "domain mismatch")
	}
	if name.IsPattern() {
		return nil, model.NewError("item", name, model.ErrNotFound, "pattern names do not resolve")
	}
	elem, ok := find(name)
	if !ok {
		return nil, model.NewError("item", name, model.ErrNotFound, "")
	}
	return NewItem(name, elem, b.kind), nil
}

// FindInSnapshot scans the live generation for the element whose generated
// name equals name.
func (b *Base[T]) FindInSnapshot(name objname.Name) (T, bool) {
	for _, elem := range b.snapshot() {
		if query.IsNil(elem) {
			continue
		}
		n, err := b.NameOf(elem)
		if err == nil && n.Equal(name) {
			return elem, true
		}
	}
	var zero T
	return zero, false
}

// Invoke rewrites a parameterless "getX" to a read of attribute X and
// delegates anything else to the item.
func (b *Base[T]) Invoke(ctx context.Context, item model.Item, op string, params []any) (any, error) {
	if attr, ok := model.GetterAttribute(op, params); ok {
		v, err := item.Attribute(attr)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, model.ErrAttributeNotFound) {
			return nil, err
		}
	}
	return item.Invoke(ctx, op, params)
}

// Activate marks the provider running and announces the current generation.
func (b *Base[T]) Activate(sink notify.Sink) {
	b.running.Store(true)
	b.emitter.Start(sink, b.names())
	log.Info(log.CatProvider, "provider started", "domain", b.domain, "count", b.emitter.Known().Len())
}

// Deactivate marks the provider stopped and announces the removal of every
// known name. Repeated calls emit nothing. A Refresh still in flight is
// discarded by the detached emitter.
func (b *Base[T]) Deactivate() {
	wasRunning := b.running.Swap(false)
	removed := b.emitter.Clear()
	if wasRunning {
		log.Info(log.CatProvider, "provider stopped", "domain", b.domain, "removed", removed)
	}
}

// Refresh announces the difference between the known and the live generation.
func (b *Base[T]) Refresh() (added, removed int) {
	if !b.IsRunning() {
		return 0, 0
	}
	added, removed = b.emitter.Sync(b.names())
	if added > 0 || removed > 0 {
		log.Debug(log.CatProvider, "provider refreshed", "domain", b.domain, "added", added, "removed", removed)
	}
	return added, removed
}

func (b *Base[T]) names() []objname.Name {
	return b.engine.Names(nil, nil, b.snapshot()).Sorted()
}
