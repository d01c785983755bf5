package planner

import (
	"github.com/planetscale/joinplan/go/boost/graph"
	"github.com/planetscale/joinplan/go/boost/joinplan/operators"
)

// overlapExisting scans the graph for an inner join whose two ancestors are
// exactly a and b, in either order. It never matches when reuse is disabled.
func (p *Planner) overlapExisting(a, b graph.NodeIdx) *operators.Node {
	if !p.opts.Reuse {
		return nil
	}
	return p.graph.Find(func(node *operators.Node) bool {
		return node.IsInnerJoin() && node.HasAncestors(a, b)
	})
}

func (p *Planner) joinOrReuse(left, right graph.NodeIdx) *operators.Node {
	if existing := p.overlapExisting(left, right); existing != nil {
		p.stats.JoinsReused++
		p.log.Debug("reusing join", existing.Idx.Zap(), left.ZapField("left"), right.ZapField("right"))
		return existing
	}
	p.stats.JoinsCreated++
	return p.graph.AddJoin(true, left, right)
}
