package schema

import (
	"github.com/tidwall/btree"

	"github.com/planetscale/joinplan/go/boost/graph"
)

// Registry maps table and view names to the node that currently represents
// them. Each name maps to exactly one node; registering a name again replaces
// the previous mapping.
type Registry struct {
	relations btree.Map[string, graph.NodeIdx]
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register points name at idx. It returns the node name pointed at before,
// if any.
func (r *Registry) Register(name string, idx graph.NodeIdx) (prev graph.NodeIdx, replaced bool) {
	prev, replaced = r.relations.Set(name, idx)
	if !replaced {
		prev = graph.InvalidNode
	}
	return
}

func (r *Registry) Lookup(name string) (graph.NodeIdx, bool) {
	return r.relations.Get(name)
}

func (r *Registry) Resolve(name string) (graph.NodeIdx, error) {
	idx, ok := r.relations.Get(name)
	if !ok {
		return graph.InvalidNode, &UnknownTableError{Table: name}
	}
	return idx, nil
}

// Names returns every registered name in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, r.relations.Len())
	r.relations.Scan(func(name string, _ graph.NodeIdx) bool {
		names = append(names, name)
		return true
	})
	return names
}

func (r *Registry) Len() int {
	return r.relations.Len()
}
