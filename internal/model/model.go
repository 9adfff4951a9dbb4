// Package model defines the contracts shared by providers, the primary
// registry and the composite router.
package model

import (
	"context"

	"github.com/zjrosen/mxview/internal/domain/objname"
	"github.com/zjrosen/mxview/internal/notify"
)

// Predicate filters query results by name. A nil Predicate accepts everything.
type Predicate func(objname.Name) bool

// Always accepts every name.
func Always(objname.Name) bool { return true }

// Accept applies p, treating nil as Always.
func (p Predicate) Accept(n objname.Name) bool {
	if p == nil {
		return true
	}
	return p(n)
}

// Item is a resolved resource.
type Item interface {
	Name() objname.Name
	Instance() Instance
	Descriptor() Descriptor
	IsInstanceOf(className string) bool
	Attribute(name string) (any, error)
	Invoke(ctx context.Context, op string, params []any) (any, error)
}

// Provider owns the resource collection of one bound domain.
type Provider interface {
	Start(ctx context.Context, sink notify.Sink) error
	Stop(ctx context.Context) error
	IsRunning() bool
	Item(name objname.Name) (Item, error)
	QueryNames(pattern *objname.Name, pred Predicate) objname.Set
	QueryInstances(pattern *objname.Name, pred Predicate) InstanceSet
	DefaultDomain() string
	Domains() []string
	// Count returns the number of resources, or a negative value when unknown.
	Count() int
	Invoke(ctx context.Context, item Item, op string, params []any) (any, error)
}

// Resource is a real resource registered with the primary registry.
type Resource interface {
	Descriptor() Descriptor
	Attribute(name string) (any, error)
	SetAttribute(name string, value any) error
	Invoke(ctx context.Context, op string, params []any) (any, error)
}

// Server is the full management surface: what the router consumes from each
// constituent and exposes to callers.
type Server interface {
	Instance(name objname.Name) (Instance, error)
	IsRegistered(name objname.Name) bool
	IsInstanceOf(name objname.Name, className string) (bool, error)
	Descriptor(name objname.Name) (Descriptor, error)
	Attribute(name objname.Name, attr string) (any, error)
	// Attributes reads attrs, or every readable attribute when attrs is empty.
	// Unreadable attributes are left out of the result.
	Attributes(name objname.Name, attrs []string) (map[string]any, error)
	SetAttribute(name objname.Name, attr string, value any) error
	// SetAttributes returns the attributes that were actually set.
	SetAttributes(name objname.Name, values map[string]any) (map[string]any, error)
	Invoke(ctx context.Context, name objname.Name, op string, params []any) (any, error)
	QueryNames(pattern *objname.Name, pred Predicate) objname.Set
	QueryInstances(pattern *objname.Name, pred Predicate) InstanceSet
	DefaultDomain() string
	Domains() []string
	Count() int
	Register(name objname.Name, className string, res Resource) (Instance, error)
	Unregister(name objname.Name) error
}

// Lifecycle is implemented by servers backed by a startable provider.
type Lifecycle interface {
	Start(ctx context.Context, sink notify.Sink) error
	Stop(ctx context.Context) error
	IsRunning() bool
}
