package provider

import "sync/atomic"

// Collection is a copy-on-write slice of elements.
type Collection[T any] struct {
	p atomic.Pointer[[]T]
}

// NewCollection returns a collection holding a copy of elems.
func NewCollection[T any](elems ...T) *Collection[T] {
	c := &Collection[T]{}
	c.Replace(elems)
	return c
}

// Snapshot returns the current generation. The slice must not be modified.
func (c *Collection[T]) Snapshot() []T {
	if s := c.p.Load(); s != nil {
		return *s
	}
	return nil
}

// Replace installs a copy of elems as the new generation.
func (c *Collection[T]) Replace(elems []T) {
	next := make([]T, len(elems))
	copy(next, elems)
	c.p.Store(&next)
}

// Update derives the next generation from the current one. fn receives a
// private copy it may modify and must be free of side effects, because it is
// retried when a concurrent update wins.
func (c *Collection[T]) Update(fn func(cur []T) []T) {
	for {
		old := c.p.Load()
		var cur []T
		if old != nil {
			cur = make([]T, len(*old))
			copy(cur, *old)
		}
		next := fn(cur)
		if c.p.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Clear empties the collection.
func (c *Collection[T]) Clear() {
	c.Replace(nil)
}

// Len returns the size of the current generation.
func (c *Collection[T]) Len() int {
	return len(c.Snapshot())
}
