package planner

import (
	"github.com/planetscale/joinplan/go/boost/joinplan/operators"
)

// baseline folds rels from left to right, joining the running result with
// each next relation, or reusing an identical join when one exists.
func (p *Planner) baseline(rels []relation) *operators.Node {
	seed := p.graph.Node(rels[0].idx)
	for _, rel := range rels[1:] {
		seed = p.joinOrReuse(seed.Idx, rel.idx)
	}
	return seed
}
