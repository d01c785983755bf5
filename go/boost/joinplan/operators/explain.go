package operators

import (
	"fmt"
	"io"
	"strings"

	"github.com/xlab/treeprint"

	"github.com/planetscale/joinplan/go/boost/graph"
)

// Dump writes one line per node of g, in insertion order:
//
//	<idx>: <operator> [<- <ancestor>,...] [<columns>] rows=<estimate>
func Dump(w io.Writer, g *Graph) {
	g.ForEach(func(node *Node) bool {
		fmt.Fprintf(w, "%d: %s", node.Idx, node.Describe())
		if len(node.Ancestors) > 0 {
			ancestors := make([]string, 0, len(node.Ancestors))
			for _, a := range node.Ancestors {
				ancestors = append(ancestors, fmt.Sprint(a))
			}
			fmt.Fprintf(w, " <- %s", strings.Join(ancestors, ","))
		}
		fmt.Fprintf(w, " %s rows=%d\n", node.Columns, node.Rows)
		return true
	})
}

// Explain renders the ancestor tree of idx. Shared ancestors are printed once
// per path that reaches them.
func Explain(g *Graph, idx graph.NodeIdx) string {
	root := treeprint.NewWithRoot(explainLabel(g.Node(idx)))
	explainAncestors(g, root, idx)
	return root.String()
}

func explainAncestors(g *Graph, tree treeprint.Tree, idx graph.NodeIdx) {
	for _, a := range g.Node(idx).Ancestors {
		ancestor := g.Node(a)
		if len(ancestor.Ancestors) == 0 {
			tree.AddNode(explainLabel(ancestor))
			continue
		}
		explainAncestors(g, tree.AddBranch(explainLabel(ancestor)), a)
	}
}

func explainLabel(node *Node) string {
	return fmt.Sprintf("n%d %s rows=%d", node.Idx, node.Describe(), node.Rows)
}
