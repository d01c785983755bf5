package planner

import (
	"github.com/planetscale/joinplan/go/boost/graph"
	"github.com/planetscale/joinplan/go/boost/joinplan/operators"
)

// megajoin grows a single outer join chain over every relation requested so
// far in the session. It looks at every outer join in the graph, marks the
// relations they joined in as covered, and continues from the most recent
// one, outer-joining in only the relations not yet covered. The first call of
// a session starts from the first relation instead.
//
// Outer joins make the shared node usable by every query at the cost of a
// summed row estimate at each step.
func (p *Planner) megajoin(rels []relation) *operators.Node {
	var seed *operators.Node
	covered := make(map[graph.NodeIdx]struct{})

	p.graph.ForEach(func(node *operators.Node) bool {
		if !node.IsOuterJoin() {
			return true
		}
		for _, ancestor := range p.graph.Ancestors(node.Idx) {
			if !ancestor.IsOuterJoin() {
				covered[ancestor.Idx] = struct{}{}
			}
		}
		seed = node
		return true
	})

	if seed != nil {
		p.stats.JoinsReused++
	}

	for _, rel := range rels {
		if _, ok := covered[rel.idx]; ok {
			continue
		}
		covered[rel.idx] = struct{}{}

		if seed == nil {
			seed = p.graph.Node(rel.idx)
			continue
		}
		seed = p.graph.AddJoin(false, seed.Idx, rel.idx)
		p.stats.JoinsCreated++
	}
	return seed
}
