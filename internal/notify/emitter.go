package notify

import (
	"sync"

	"github.com/zjrosen/mxview/internal/domain/objname"
)

// Emitter tracks the names a provider has announced and emits the difference
// whenever the provider reports a new generation.
type Emitter struct {
	mu       sync.Mutex
	sink     Sink
	attached bool
	known    objname.Set
}

// NewEmitter returns an emitter with no sink and no known names.
func NewEmitter() *Emitter {
	return &Emitter{known: objname.NewSet()}
}

// Start attaches sink and announces names as the first generation.
func (e *Emitter) Start(sink Sink, names []objname.Name) {
	e.mu.Lock()
	if sink == nil {
		sink = Discard
	}
	e.sink = sink
	e.attached = true
	e.mu.Unlock()

	e.Sync(names)
}

// Sync emits Registered for names not previously known and Unregistered for
// known names now absent, then records names as the current generation.
// It does nothing while detached, that is before Start or after Clear.
func (e *Emitter) Sync(names []objname.Name) (added, removed int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.attached {
		return 0, 0
	}
	next := objname.NewSet(names...)
	sink := e.sink

	for _, n := range e.known.Sorted() {
		if !next.Contains(n) {
			sink.Emit(Unregistered, n)
			removed++
		}
	}
	for _, n := range next.Sorted() {
		if !e.known.Contains(n) {
			sink.Emit(Registered, n)
			added++
		}
	}

	e.known = next
	return added, removed
}

// Clear emits Unregistered for every known name, forgets them and detaches
// the sink until the next Start. A second call emits nothing.
func (e *Emitter) Clear() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	removed := 0
	if e.sink != nil {
		for _, n := range e.known.Sorted() {
			e.sink.Emit(Unregistered, n)
			removed++
		}
	}
	e.known = objname.NewSet()
	e.sink = nil
	e.attached = false
	return removed
}

// Known returns the current generation.
func (e *Emitter) Known() objname.Set {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.known.Union()
}
