// Package query filters a provider's element snapshot against a name pattern
// and a caller predicate.
package query

import (
	"reflect"

	"github.com/zjrosen/mxview/internal/domain/objname"
	"github.com/zjrosen/mxview/internal/log"
	"github.com/zjrosen/mxview/internal/metrics"
	"github.com/zjrosen/mxview/internal/model"
)

// Source supplies the per-element functions the engine needs.
type Source[T any] interface {
	DefaultDomain() string
	NameOf(elem T) (objname.Name, error)
	InstanceOf(name objname.Name, elem T) model.Instance
}

// Engine runs queries for one source. Both queries are pure functions of the
// snapshot they are given.
type Engine[T any] struct {
	src     Source[T]
	metrics *metrics.Metrics
}

// New returns an engine over src. m may be nil.
func New[T any](src Source[T], m *metrics.Metrics) *Engine[T] {
	return &Engine[T]{src: src, metrics: m}
}

// Names returns the names of every element in snapshot that matches pattern
// and satisfies pred.
func (e *Engine[T]) Names(pattern *objname.Name, pred model.Predicate, snapshot []T) objname.Set {
	out := objname.NewSet()
	e.scan(pattern, pred, snapshot, func(name objname.Name, _ T) {
		out.Add(name)
	})
	return out
}

// Instances is Names returning instances instead of bare names.
func (e *Engine[T]) Instances(pattern *objname.Name, pred model.Predicate, snapshot []T) model.InstanceSet {
	out := model.NewInstanceSet()
	e.scan(pattern, pred, snapshot, func(name objname.Name, elem T) {
		out.Add(e.src.InstanceOf(name, elem))
	})
	return out
}

func (e *Engine[T]) scan(pattern *objname.Name, pred model.Predicate, snapshot []T, visit func(objname.Name, T)) {
	domain := e.src.DefaultDomain()
	if pattern != nil && !objname.Wildmatch(domain, pattern.Domain()) {
		return
	}

	for i, elem := range snapshot {
		if IsNil(elem) {
			continue
		}
		name, err := e.src.NameOf(elem)
		if err != nil {
			e.metrics.IncQueryError()
			log.Warn(log.CatQuery, "skipping element with unusable name", "domain", domain, "index", i, "error", err)
			continue
		}
		if !objname.Matches(name, pattern) {
			continue
		}
		if !pred.Accept(name) {
			continue
		}
		visit(name, elem)
	}
}

// IsNil reports whether elem is nil, including typed nil pointers.
func IsNil[T any](elem T) bool {
	v := any(elem)
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
