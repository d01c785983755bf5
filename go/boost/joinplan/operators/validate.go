package operators

import (
	"fmt"

	"go.uber.org/multierr"
	"golang.org/x/exp/slices"
)

// Validate checks the structural invariants of every node in g: indices
// match insertion order, ancestors precede their children, each operator has
// its exact arity, joins concatenate their inputs' columns, and row estimates
// follow the operator's estimation rule.
func Validate(g *Graph) error {
	var errs []error
	invalid := func(node *Node, format string, args ...any) {
		errs = append(errs, &InvalidGraphError{Node: node, Reason: fmt.Sprintf(format, args...)})
	}

	var pos int
	g.ForEach(func(node *Node) bool {
		defer func() { pos++ }()

		if int(node.Idx) != pos {
			invalid(node, "index does not match insertion position %d", pos)
		}
		if len(node.Ancestors) != node.Op.Arity() {
			invalid(node, "expected %d ancestors, got %d", node.Op.Arity(), len(node.Ancestors))
			return true
		}
		ancestors := make([]*Node, 0, len(node.Ancestors))
		for _, a := range node.Ancestors {
			if int(a) >= pos {
				invalid(node, "ancestor n%d is not older than the node", a)
				return true
			}
			ancestors = append(ancestors, g.Node(a))
		}

		if want := node.Op.EstimateRows(ancestors); node.Rows != want {
			invalid(node, "row estimate is %d, expected %d", node.Rows, want)
		}
		if node.IsJoin() {
			want := append(slices.Clone(ancestors[0].Columns), ancestors[1].Columns...)
			if !slices.Equal(node.Columns, want) {
				invalid(node, "columns %s are not the concatenation %s", node.Columns, Columns(want))
			}
		}
		return true
	})

	if !g.isAcyclic() {
		invalid(nil, "graph contains a cycle")
	}
	return multierr.Combine(errs...)
}
