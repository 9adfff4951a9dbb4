// Package provider holds the generic machinery shared by virtual providers.
//
// A concrete provider supplies a Kind[T] (pure functions from an element to
// its class, descriptor, name properties, attributes and operations) and a
// snapshot accessor over its live elements. Base[T] turns those into the
// query, count, lookup and invoke halves of model.Provider and drives the
// registration notifications for every generation of elements.
//
// Collection[T] is a copy-on-write element store: readers get an immutable
// slice and never observe a partially applied update.
package provider
