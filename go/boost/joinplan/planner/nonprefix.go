package planner

import (
	"go.uber.org/zap"

	"github.com/planetscale/joinplan/go/boost/graph"
	"github.com/planetscale/joinplan/go/boost/joinplan/operators"
)

// nonprefix reuses existing inner join subtrees wherever they sit in rels,
// not only when they match a prefix of the requested order. A subtree
// qualifies when every relation it joins was requested and none of them is
// covered by a subtree picked earlier. Newer joins are considered first since
// they tend to be the larger ones. The picked subtrees are joined together and
// the remaining relations are folded in like the baseline does.
func (p *Planner) nonprefix(rels []relation) *operators.Node {
	if !p.opts.Reuse {
		return p.baseline(rels)
	}

	requested := make(map[graph.NodeIdx]struct{}, len(rels))
	for _, rel := range rels {
		requested[rel.idx] = struct{}{}
	}
	covered := make(map[graph.NodeIdx]struct{}, len(rels))

	var parts []*operators.Node
	for i := p.graph.Len() - 1; i >= 0 && len(covered) < len(rels); i-- {
		node := p.graph.Node(graph.NodeIdx(i))
		if !node.IsInnerJoin() {
			continue
		}
		inputs := p.joinInputs(node.Idx)
		if !qualifies(inputs, requested, covered) {
			continue
		}
		for _, in := range inputs {
			covered[in] = struct{}{}
		}
		parts = append(parts, node)
		p.stats.JoinsReused++
		p.log.Debug("reusing join subtree", node.Idx.Zap(), zap.Uint64("signature", uint64(p.graph.Signature(node.Idx))))
	}

	if len(parts) == 0 {
		return p.baseline(rels)
	}

	seed := parts[0]
	for _, part := range parts[1:] {
		seed = p.joinOrReuse(seed.Idx, part.Idx)
	}
	for _, rel := range rels {
		if _, ok := covered[rel.idx]; ok {
			continue
		}
		covered[rel.idx] = struct{}{}
		seed = p.joinOrReuse(seed.Idx, rel.idx)
	}
	return seed
}

// joinInputs returns the relations an inner join subtree combines: every
// ancestor reached through inner joins that is not an inner join itself.
// A base table contributes itself.
func (p *Planner) joinInputs(idx graph.NodeIdx) []graph.NodeIdx {
	node := p.graph.Node(idx)
	if !node.IsInnerJoin() {
		return []graph.NodeIdx{idx}
	}
	var inputs []graph.NodeIdx
	for _, a := range node.Ancestors {
		inputs = append(inputs, p.joinInputs(a)...)
	}
	return inputs
}

func qualifies(inputs []graph.NodeIdx, requested, covered map[graph.NodeIdx]struct{}) bool {
	if len(inputs) < 2 {
		return false
	}
	for _, in := range inputs {
		if _, ok := requested[in]; !ok {
			return false
		}
		if _, ok := covered[in]; ok {
			return false
		}
	}
	return true
}
