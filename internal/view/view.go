// Package view exposes a virtual provider through the full management
// surface. Virtual resources are read-only: registration and attribute
// writes always fail.
package view

import (
	"context"
	"errors"

	"github.com/zjrosen/mxview/internal/domain/objname"
	"github.com/zjrosen/mxview/internal/model"
	"github.com/zjrosen/mxview/internal/notify"
)

// View adapts a model.Provider to model.Server.
type View struct {
	p model.Provider
}

var (
	_ model.Server    = (*View)(nil)
	_ model.Lifecycle = (*View)(nil)
)

// New wraps p.
func New(p model.Provider) *View {
	return &View{p: p}
}

// Provider returns the wrapped provider.
func (v *View) Provider() model.Provider { return v.p }

func (v *View) Start(ctx context.Context, sink notify.Sink) error { return v.p.Start(ctx, sink) }

func (v *View) Stop(ctx context.Context) error { return v.p.Stop(ctx) }

func (v *View) IsRunning() bool { return v.p.IsRunning() }

func (v *View) Instance(name objname.Name) (model.Instance, error) {
	item, err := v.p.Item(name)
	if err != nil {
		return model.Instance{}, err
	}
	return item.Instance(), nil
}

func (v *View) IsRegistered(name objname.Name) bool {
	_, err := v.p.Item(name)
	return err == nil
}

func (v *View) IsInstanceOf(name objname.Name, className string) (bool, error) {
	item, err := v.p.Item(name)
	if err != nil {
		return false, err
	}
	return item.IsInstanceOf(className), nil
}

func (v *View) Descriptor(name objname.Name) (model.Descriptor, error) {
	item, err := v.p.Item(name)
	if err != nil {
		return model.Descriptor{}, err
	}
	return item.Descriptor(), nil
}

func (v *View) Attribute(name objname.Name, attr string) (any, error) {
	item, err := v.p.Item(name)
	if err != nil {
		return nil, err
	}
	return item.Attribute(attr)
}

func (v *View) Attributes(name objname.Name, attrs []string) (map[string]any, error) {
	item, err := v.p.Item(name)
	if err != nil {
		return nil, err
	}
	if len(attrs) == 0 {
		attrs = item.Descriptor().ReadableAttributes()
	}
	out := make(map[string]any, len(attrs))
	for _, a := range attrs {
		val, err := item.Attribute(a)
		if err != nil {
			continue
		}
		out[a] = val
	}
	return out, nil
}

// SetAttribute reports the most specific failure: an unknown resource, then
// an unknown attribute, and otherwise a read-only namespace.
func (v *View) SetAttribute(name objname.Name, attr string, _ any) error {
	item, err := v.p.Item(name)
	if err != nil {
		return err
	}
	if _, ok := item.Descriptor().Attribute(attr); !ok {
		return model.NewError("setAttribute", name, model.ErrAttributeNotFound, attr)
	}
	return model.NewError("setAttribute", name, model.ErrReadOnlyNamespace, attr)
}

// SetAttributes sets nothing.
func (v *View) SetAttributes(name objname.Name, _ map[string]any) (map[string]any, error) {
	if _, err := v.p.Item(name); err != nil {
		return nil, err
	}
	return map[string]any{}, nil
}

func (v *View) Invoke(ctx context.Context, name objname.Name, op string, params []any) (any, error) {
	if op == "" {
		return nil, model.NewError("invoke", name, model.ErrOperationNotSupported, "empty operation name")
	}
	item, err := v.p.Item(name)
	if err != nil {
		return nil, err
	}
	res, err := v.p.Invoke(ctx, item, op, params)
	if err != nil {
		var merr *model.Error
		if errors.As(err, &merr) {
			return nil, err
		}
		return nil, model.NewError("invoke", name, err, op)
	}
	return res, nil
}

func (v *View) QueryNames(pattern *objname.Name, pred model.Predicate) objname.Set {
	return v.p.QueryNames(pattern, pred)
}

func (v *View) QueryInstances(pattern *objname.Name, pred model.Predicate) model.InstanceSet {
	return v.p.QueryInstances(pattern, pred)
}

func (v *View) DefaultDomain() string { return v.p.DefaultDomain() }

func (v *View) Domains() []string { return v.p.Domains() }

func (v *View) Count() int { return v.p.Count() }

func (v *View) Register(name objname.Name, _ string, _ model.Resource) (model.Instance, error) {
	return model.Instance{}, model.NewError("register", name, model.ErrReadOnlyNamespace, "")
}

func (v *View) Unregister(name objname.Name) error {
	return model.NewError("unregister", name, model.ErrReadOnlyNamespace, "")
}
