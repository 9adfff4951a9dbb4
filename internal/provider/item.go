package provider

import (
	"context"

	"github.com/zjrosen/mxview/internal/domain/objname"
	"github.com/zjrosen/mxview/internal/model"
)

// Item binds one element to its generated name.
type Item[T any] struct {
	name objname.Name
	elem T
	kind Kind[T]
}

var _ model.Item = (*Item[struct{}])(nil)

// NewItem returns the item for elem under name.
func NewItem[T any](name objname.Name, elem T, kind Kind[T]) *Item[T] {
	return &Item[T]{name: name, elem: elem, kind: kind}
}

func (i *Item[T]) Name() objname.Name { return i.name }

// Element returns the underlying element.
func (i *Item[T]) Element() T { return i.elem }

func (i *Item[T]) Instance() model.Instance {
	return model.Instance{Name: i.name, ClassName: i.kind.ClassName(i.elem)}
}

func (i *Item[T]) Descriptor() model.Descriptor {
	return i.kind.Describe(i.elem)
}

func (i *Item[T]) IsInstanceOf(className string) bool {
	return className == i.kind.ClassName(i.elem) || className == i.Descriptor().ClassName
}

func (i *Item[T]) Attribute(attr string) (any, error) {
	info, ok := i.Descriptor().Attribute(attr)
	if !ok || !info.Readable {
		return nil, model.NewError("attribute", i.name, model.ErrAttributeNotFound, attr)
	}
	return i.kind.Attribute(i.elem, attr)
}

func (i *Item[T]) Invoke(ctx context.Context, op string, params []any) (any, error) {
	if _, ok := i.Descriptor().Operation(op); !ok {
		return nil, model.NewError("invoke", i.name, model.ErrOperationNotSupported, op)
	}
	return i.kind.Invoke(ctx, i.elem, op, params)
}
