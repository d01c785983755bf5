package planner

import (
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/planetscale/joinplan/go/boost/joinplan/operators"
)

// permutations tries every ordering of rels and plans the one whose longest
// prefix is already joined in the graph. Ties go to the ordering seen first,
// which is the input order, so with no overlap at all this is the baseline.
// The search is factorial in len(rels); bounding it is up to the caller.
func (p *Planner) permutations(rels []relation) *operators.Node {
	best := rels
	bestOverlap := 0

	permute(rels, func(order []relation) bool {
		if overlap := p.prefixOverlap(order); overlap > bestOverlap {
			best = slices.Clone(order)
			bestOverlap = overlap
		}
		// no ordering can beat one whose every join already exists
		return bestOverlap < len(rels)-1
	})

	p.log.Debug("chose join order", zap.Int("overlap", bestOverlap), zap.Strings("order", relationNames(best)))
	return p.baseline(best)
}

// prefixOverlap counts how many consecutive joins of order, starting from the
// first relation, already exist in the graph.
func (p *Planner) prefixOverlap(order []relation) (overlap int) {
	seed := order[0].idx
	for _, rel := range order[1:] {
		existing := p.overlapExisting(seed, rel.idx)
		if existing == nil {
			break
		}
		seed = existing.Idx
		overlap++
	}
	return
}

// permute calls visit with every permutation of items, starting with items in
// their original order, until visit returns false. The slice passed to visit
// is reused between calls. This is the iterative form of Heap's algorithm.
func permute[T any](items []T, visit func([]T) bool) {
	a := slices.Clone(items)
	c := make([]int, len(a))

	if !visit(a) {
		return
	}
	for i := 1; i < len(a); {
		if c[i] < i {
			if i%2 == 0 {
				a[0], a[i] = a[i], a[0]
			} else {
				a[c[i]], a[i] = a[i], a[c[i]]
			}
			if !visit(a) {
				return
			}
			c[i]++
			i = 1
		} else {
			c[i] = 0
			i++
		}
	}
}

func relationNames(rels []relation) []string {
	names := make([]string, 0, len(rels))
	for _, rel := range rels {
		names = append(names, rel.name)
	}
	return names
}
