package model

import (
	"sort"

	"github.com/zjrosen/mxview/internal/domain/objname"
)

// AttributeInfo describes one attribute of a resource.
type AttributeInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Readable    bool   `json:"readable"`
	Writable    bool   `json:"writable"`
	IsGetter    bool   `json:"is_getter,omitempty"`
}

// ParamInfo describes one operation parameter.
type ParamInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// OperationInfo describes one invocable operation.
type OperationInfo struct {
	Name        string      `json:"name"`
	ReturnType  string      `json:"return_type"`
	Description string      `json:"description,omitempty"`
	Params      []ParamInfo `json:"params,omitempty"`
}

// Descriptor is the schema of a resource. It is computed per request.
type Descriptor struct {
	ClassName   string          `json:"class_name"`
	Description string          `json:"description,omitempty"`
	Attributes  []AttributeInfo `json:"attributes"`
	Operations  []OperationInfo `json:"operations"`
}

// Attribute looks up an attribute by name.
func (d Descriptor) Attribute(name string) (AttributeInfo, bool) {
	for _, a := range d.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return AttributeInfo{}, false
}

// Operation looks up an operation by name.
func (d Descriptor) Operation(name string) (OperationInfo, bool) {
	for _, o := range d.Operations {
		if o.Name == name {
			return o, true
		}
	}
	return OperationInfo{}, false
}

// ReadableAttributes returns the names of every readable attribute.
func (d Descriptor) ReadableAttributes() []string {
	out := make([]string, 0, len(d.Attributes))
	for _, a := range d.Attributes {
		if a.Readable {
			out = append(out, a.Name)
		}
	}
	return out
}

// Instance pairs a resource name with its class.
type Instance struct {
	Name      objname.Name `json:"name"`
	ClassName string       `json:"class_name"`
}

// InstanceSet is a set of instances deduplicated by name.
type InstanceSet struct {
	m map[string]Instance
}

// NewInstanceSet returns a set holding instances.
func NewInstanceSet(instances ...Instance) InstanceSet {
	s := InstanceSet{m: make(map[string]Instance, len(instances))}
	for _, in := range instances {
		s.Add(in)
	}
	return s
}

// Add inserts in unless an instance with the same name is present.
func (s *InstanceSet) Add(in Instance) bool {
	if s.m == nil {
		s.m = make(map[string]Instance)
	}
	k := in.Name.Key()
	if _, ok := s.m[k]; ok {
		return false
	}
	s.m[k] = in
	return true
}

// Len returns the number of instances.
func (s InstanceSet) Len() int { return len(s.m) }

// Names returns the set of instance names.
func (s InstanceSet) Names() objname.Set {
	out := objname.NewSet()
	for _, in := range s.m {
		out.Add(in.Name)
	}
	return out
}

// Sorted returns the instances ordered by name.
func (s InstanceSet) Sorted() []Instance {
	out := make([]Instance, 0, len(s.m))
	for _, in := range s.m {
		out = append(out, in)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name.Key() < out[j].Name.Key() })
	return out
}

// Union returns a new set holding every instance of s and others.
func (s InstanceSet) Union(others ...InstanceSet) InstanceSet {
	out := NewInstanceSet()
	for _, in := range s.m {
		out.Add(in)
	}
	for _, o := range others {
		for _, in := range o.m {
			out.Add(in)
		}
	}
	return out
}
