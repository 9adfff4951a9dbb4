package fstree

import (
	"context"
	"fmt"
	"sort"

	"github.com/zjrosen/mxview/internal/model"
	"github.com/zjrosen/mxview/internal/provider"
)

const (
	ClassDirectory = "Directory"
	ClassFile      = "File"
)

type kind struct {
	nodes *provider.Collection[*Node]
}

func (kind) ClassName(n *Node) string {
	if n.Info != nil && n.Info.IsDir() {
		return ClassDirectory
	}
	return ClassFile
}

func (k kind) Describe(n *Node) model.Descriptor {
	d := model.Descriptor{
		ClassName:   "node",
		Description: fmt.Sprintf("%s %s", k.ClassName(n), n.Path),
		Attributes: []model.AttributeInfo{
			{Name: "Path", Type: "string", Description: "Path relative to the root", Readable: true},
			{Name: "Size", Type: "int64", Description: "Size in bytes", Readable: true},
			{Name: "IsDir", Type: "bool", Readable: true, IsGetter: true},
			{Name: "ModTime", Type: "time", Description: "Last modification time", Readable: true},
			{Name: "Mode", Type: "string", Description: "Permission bits", Readable: true},
		},
	}
	if k.ClassName(n) == ClassDirectory {
		d.Operations = append(d.Operations, model.OperationInfo{
			Name:        "children",
			ReturnType:  "[]string",
			Description: "Names of the scanned entries directly below this directory",
		})
	}
	return d
}

func (kind) NameProperties(n *Node) (map[string]string, error) {
	return map[string]string{
		PropType: n.Parent(),
		PropName: n.Base(),
	}, nil
}

func (kind) Attribute(n *Node, attr string) (any, error) {
	if attr == "Path" {
		return n.Path, nil
	}
	if n.Info == nil {
		return nil, fmt.Errorf("%w: %s has no metadata", model.ErrNotFound, n.Path)
	}
	switch attr {
	case "Size":
		return n.Info.Size(), nil
	case "IsDir":
		return n.Info.IsDir(), nil
	case "ModTime":
		return n.Info.ModTime(), nil
	case "Mode":
		return n.Info.Mode().String(), nil
	default:
		return nil, fmt.Errorf("%w: %s", model.ErrAttributeNotFound, attr)
	}
}

func (k kind) Invoke(_ context.Context, n *Node, op string, _ []any) (any, error) {
	switch op {
	case "children":
		var out []string
		for _, c := range k.nodes.Snapshot() {
			if c != nil && c.Parent() == n.Path {
				out = append(out, c.Base())
			}
		}
		sort.Strings(out)
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s", model.ErrOperationNotSupported, op)
	}
}
