package presentation

import (
	"fmt"
	"sort"

	"github.com/zjrosen/mxview/internal/domain/objname"
	"github.com/zjrosen/mxview/internal/model"
)

// NamesDTO is a query result of names.
type NamesDTO struct {
	Names []string `json:"names"`
	Count int      `json:"count"`
}

// InstanceDTO is one query result instance.
type InstanceDTO struct {
	Name      string `json:"name"`
	Domain    string `json:"domain"`
	ClassName string `json:"class_name"`
}

// InstancesDTO is a query result of instances.
type InstancesDTO struct {
	Instances []InstanceDTO `json:"instances"`
	Count     int           `json:"count"`
}

// AttributeDTO is an attribute's schema plus, when read, its value.
type AttributeDTO struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Access      string `json:"access"`
	Description string `json:"description,omitempty"`
	Value       any    `json:"value,omitempty"`
}

// OperationDTO describes an invocable operation.
type OperationDTO struct {
	Name        string   `json:"name"`
	Signature   string   `json:"signature"`
	Description string   `json:"description,omitempty"`
	Params      []string `json:"params,omitempty"`
}

// ResourceDTO is a resource's identity, schema and current attribute values.
type ResourceDTO struct {
	Name        string         `json:"name"`
	Domain      string         `json:"domain"`
	ClassName   string         `json:"class_name"`
	Description string         `json:"description,omitempty"`
	Attributes  []AttributeDTO `json:"attributes"`
	Operations  []OperationDTO `json:"operations"`
}

// TargetDTO is one constituent server of the router.
type TargetDTO struct {
	Domain string `json:"domain"`
	Kind   string `json:"kind"`
	Count  int    `json:"count"`
}

// DomainsDTO lists the visible domains.
type DomainsDTO struct {
	DefaultDomain string      `json:"default_domain"`
	Domains       []string    `json:"domains"`
	Count         int         `json:"count"`
	Targets       []TargetDTO `json:"targets,omitempty"`
}

// ErrorDTO is the error envelope returned by the HTTP host.
type ErrorDTO struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// FromNames converts a name set to a DTO ordered by name.
func FromNames(set objname.Set) NamesDTO {
	sorted := set.Sorted()
	names := make([]string, len(sorted))
	for i, n := range sorted {
		names[i] = n.String()
	}
	return NamesDTO{Names: names, Count: len(names)}
}

// FromInstance converts one instance.
func FromInstance(in model.Instance) InstanceDTO {
	return InstanceDTO{
		Name:      in.Name.String(),
		Domain:    in.Name.Domain(),
		ClassName: in.ClassName,
	}
}

// FromInstances converts an instance set to a DTO ordered by name.
func FromInstances(set model.InstanceSet) InstancesDTO {
	sorted := set.Sorted()
	out := make([]InstanceDTO, len(sorted))
	for i, in := range sorted {
		out[i] = FromInstance(in)
	}
	return InstancesDTO{Instances: out, Count: len(out)}
}

// FromResource combines an instance, its descriptor and any attribute values
// that were read. Attributes missing from values are listed without a value.
func FromResource(in model.Instance, d model.Descriptor, values map[string]any) ResourceDTO {
	attrs := make([]AttributeDTO, len(d.Attributes))
	for i, a := range d.Attributes {
		attrs[i] = AttributeDTO{
			Name:        a.Name,
			Type:        a.Type,
			Access:      access(a),
			Description: a.Description,
			Value:       values[a.Name],
		}
	}
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Name < attrs[j].Name })

	ops := make([]OperationDTO, len(d.Operations))
	for i, o := range d.Operations {
		params := make([]string, len(o.Params))
		for k, p := range o.Params {
			params[k] = p.Name + " " + p.Type
		}
		ops[i] = OperationDTO{
			Name:        o.Name,
			Signature:   signature(o),
			Description: o.Description,
			Params:      params,
		}
	}

	return ResourceDTO{
		Name:        in.Name.String(),
		Domain:      in.Name.Domain(),
		ClassName:   in.ClassName,
		Description: d.Description,
		Attributes:  attrs,
		Operations:  ops,
	}
}

func access(a model.AttributeInfo) string {
	switch {
	case a.Readable && a.Writable:
		return "rw"
	case a.Writable:
		return "w"
	case a.Readable:
		return "r"
	}
	return "-"
}

func signature(o model.OperationInfo) string {
	s := o.Name + "("
	for i, p := range o.Params {
		if i > 0 {
			s += ", "
		}
		s += p.Type
	}
	ret := o.ReturnType
	if ret == "" {
		ret = "void"
	}
	return fmt.Sprintf("%s) %s", s, ret)
}
