package registry

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/zjrosen/mxview/internal/model"
)

// Static is a resource holding a mutable attribute map. The reset operation
// restores the initial values.
type Static struct {
	class   string
	mu      sync.RWMutex
	attrs   map[string]any
	initial map[string]any
}

var _ model.Resource = (*Static)(nil)

// NewStatic returns a resource of class with the given attributes, all of
// which are readable and writable.
func NewStatic(class string, attrs map[string]any) *Static {
	s := &Static{
		class:   class,
		attrs:   make(map[string]any, len(attrs)),
		initial: make(map[string]any, len(attrs)),
	}
	for k, v := range attrs {
		s.attrs[k] = v
		s.initial[k] = v
	}
	return s
}

func (s *Static) Descriptor() model.Descriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.attrs))
	for k := range s.attrs {
		names = append(names, k)
	}
	sort.Strings(names)

	attrs := make([]model.AttributeInfo, 0, len(names))
	for _, k := range names {
		attrs = append(attrs, model.AttributeInfo{
			Name:     k,
			Type:     fmt.Sprintf("%T", s.attrs[k]),
			Readable: true,
			Writable: true,
		})
	}
	return model.Descriptor{
		ClassName:  s.class,
		Attributes: attrs,
		Operations: []model.OperationInfo{
			{Name: "reset", ReturnType: "void", Description: "Restores the initial attribute values"},
		},
	}
}

func (s *Static) Attribute(name string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.attrs[name]
	if !ok {
		return nil, model.ErrAttributeNotFound
	}
	return v, nil
}

// SetAttribute only updates attributes the resource was created with.
func (s *Static) SetAttribute(name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attrs[name]; !ok {
		return model.ErrAttributeNotFound
	}
	s.attrs[name] = value
	return nil
}

func (s *Static) Invoke(_ context.Context, op string, _ []any) (any, error) {
	if op != "reset" {
		return nil, model.ErrOperationNotSupported
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range s.initial {
		s.attrs[k] = v
	}
	return nil, nil
}

// Runtime reports Go runtime statistics of the current process.
type Runtime struct {
	started time.Time
}

var _ model.Resource = (*Runtime)(nil)

// NewRuntime returns a runtime resource measuring uptime from now.
func NewRuntime() *Runtime {
	return &Runtime{started: time.Now()}
}

func (r *Runtime) Descriptor() model.Descriptor {
	return model.Descriptor{
		ClassName:   "Runtime",
		Description: "Go runtime statistics",
		Attributes: []model.AttributeInfo{
			{Name: "Goroutines", Type: "int", Readable: true},
			{Name: "HeapAlloc", Type: "uint64", Description: "Bytes of allocated heap objects", Readable: true},
			{Name: "NumGC", Type: "uint32", Description: "Completed GC cycles", Readable: true},
			{Name: "GoVersion", Type: "string", Readable: true},
			{Name: "Uptime", Type: "string", Readable: true},
		},
		Operations: []model.OperationInfo{
			{Name: "gc", ReturnType: "void", Description: "Runs a garbage collection"},
		},
	}
}

func (r *Runtime) Attribute(name string) (any, error) {
	switch name {
	case "Goroutines":
		return runtime.NumGoroutine(), nil
	case "HeapAlloc", "NumGC":
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		if name == "HeapAlloc" {
			return ms.HeapAlloc, nil
		}
		return ms.NumGC, nil
	case "GoVersion":
		return runtime.Version(), nil
	case "Uptime":
		return time.Since(r.started).Truncate(time.Second).String(), nil
	default:
		return nil, model.ErrAttributeNotFound
	}
}

func (r *Runtime) SetAttribute(name string, _ any) error {
	if _, ok := r.Descriptor().Attribute(name); !ok {
		return model.ErrAttributeNotFound
	}
	return model.ErrAttributeNotWritable
}

func (r *Runtime) Invoke(_ context.Context, op string, _ []any) (any, error) {
	if op != "gc" {
		return nil, model.ErrOperationNotSupported
	}
	runtime.GC()
	return nil, nil
}

// Delegate describes the server itself. It is registered under the configured
// delegate name and is the source of every notification.
type Delegate struct {
	id      string
	version string
}

var _ model.Resource = (*Delegate)(nil)

// DelegateClass is the class name of the server delegate.
const DelegateClass = "ServerDelegate"

// NewDelegate returns the delegate for a server identified by id.
func NewDelegate(id, version string) *Delegate {
	return &Delegate{id: id, version: version}
}

func (d *Delegate) Descriptor() model.Descriptor {
	return model.Descriptor{
		ClassName: DelegateClass,
		Attributes: []model.AttributeInfo{
			{Name: "ServerID", Type: "string", Readable: true},
			{Name: "ImplementationName", Type: "string", Readable: true},
			{Name: "ImplementationVersion", Type: "string", Readable: true},
		},
	}
}

func (d *Delegate) Attribute(name string) (any, error) {
	switch name {
	case "ServerID":
		return d.id, nil
	case "ImplementationName":
		return "mxview", nil
	case "ImplementationVersion":
		return d.version, nil
	default:
		return nil, model.ErrAttributeNotFound
	}
}

func (d *Delegate) SetAttribute(name string, _ any) error {
	if _, ok := d.Descriptor().Attribute(name); !ok {
		return model.ErrAttributeNotFound
	}
	return model.ErrAttributeNotWritable
}

func (d *Delegate) Invoke(context.Context, string, []any) (any, error) {
	return nil, model.ErrOperationNotSupported
}
