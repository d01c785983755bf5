package graphviz

import (
	"fmt"
	"html"
	"io"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Node struct {
	Attr      map[string]string
	TableAttr map[string]string
	table     [][]any
}

type Escaped string

type Cell struct {
	Txt  Escaped
	Attr map[string]string
}

func Fmt(pat string, args ...any) Escaped {
	for i, a := range args {
		if str, ok := a.(string); ok {
			args[i] = html.EscapeString(str)
		}
	}
	return Escaped(fmt.Sprintf(pat, args...))
}

func (n *Node) Row(col ...any) {
	n.table = append(n.table, col)
}

// sortedAttrs writes attributes in key order so that rendering the same graph
// twice produces the same bytes.
func sortedAttrs(w io.Writer, attrs map[string]string, pat string) {
	keys := maps.Keys(attrs)
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(w, pat, k, attrs[k])
	}
}

func (n *Node) render(w io.Writer) {
	var maxcol int
	for _, r := range n.table {
		if len(r) > maxcol {
			maxcol = len(r)
		}
	}

	fmt.Fprintf(w, "<TABLE")
	sortedAttrs(w, n.TableAttr, " %s=%q")
	fmt.Fprintf(w, ">\n")
	for _, r := range n.table {
		fmt.Fprintf(w, "<TR>")
		for idx, col := range r {
			fmt.Fprintf(w, "<TD")
			if maxcol > 1 && idx == len(r)-1 && idx < maxcol-1 {
				fmt.Fprintf(w, " COLSPAN=\"%d\"", maxcol-idx)
			}
			switch txt := col.(type) {
			case Cell:
				sortedAttrs(w, txt.Attr, " %s=%q")
				fmt.Fprintf(w, ">%s</TD>", txt.Txt)
			case Escaped:
				fmt.Fprintf(w, ">%s</TD>", txt)
			case string:
				fmt.Fprintf(w, ">%s</TD>", html.EscapeString(txt))
			default:
				panic("unexpected value in row")
			}
		}
		fmt.Fprintf(w, "</TR>\n")
	}
	fmt.Fprintf(w, "</TABLE>")
}

type Edge[I constraints.Ordered] struct {
	from, to I
	Attr     map[string]string
}

// Graph collects nodes and edges and renders them in the dot language. Nodes
// are emitted in ascending index order and edges in insertion order.
type Graph[I constraints.Ordered] struct {
	nodes map[I]*Node
	edges []*Edge[I]
}

func NewGraph[I constraints.Ordered]() *Graph[I] {
	return &Graph[I]{nodes: map[I]*Node{}}
}

func (g *Graph[I]) Node(idx I) (*Node, bool) {
	n, ok := g.nodes[idx]
	return n, ok
}

func (g *Graph[I]) AddNode(idx I) *Node {
	n := &Node{Attr: map[string]string{}, TableAttr: map[string]string{}}
	g.nodes[idx] = n
	return n
}

func (g *Graph[I]) AddEdge(from, to I) *Edge[I] {
	e := &Edge[I]{from: from, to: to, Attr: map[string]string{}}
	g.edges = append(g.edges, e)
	return e
}

func (g *Graph[I]) Render(w io.Writer) {
	fmt.Fprintf(w, "digraph {\n")
	fmt.Fprintf(w, "\tnode [shape=plain, fontsize=10]\n")

	ids := maps.Keys(g.nodes)
	slices.Sort(ids)
	for _, idx := range ids {
		node := g.nodes[idx]
		fmt.Fprintf(w, "\tn%v [", idx)
		sortedAttrs(w, node.Attr, "%s=%q ")
		fmt.Fprintf(w, "label=<\n")
		node.render(w)
		fmt.Fprintf(w, ">\n\t]\n")
	}

	for _, e := range g.edges {
		fmt.Fprintf(w, "\tn%v -> n%v", e.from, e.to)
		if len(e.Attr) > 0 {
			fmt.Fprintf(w, " [")
			sortedAttrs(w, e.Attr, "%s=%q ")
			fmt.Fprintf(w, "]")
		}
		fmt.Fprintf(w, "\n")
	}

	fmt.Fprintf(w, "}\n")
}
