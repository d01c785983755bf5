package operators

import (
	"fmt"
	"io"
	"strings"

	"github.com/planetscale/joinplan/go/boost/common/graphviz"
	"github.com/planetscale/joinplan/go/boost/graph"
)

// GraphViz builds the dot representation of g: one node per operator node,
// then one edge per (node, child) pair. Sinks are drawn with a thick border.
func GraphViz(g *Graph) *graphviz.Graph[graph.NodeIdx] {
	gvz := graphviz.NewGraph[graph.NodeIdx]()

	g.ForEach(func(node *Node) bool {
		n := gvz.AddNode(node.Idx)
		n.Attr["style"] = "filled"
		n.Attr["fillcolor"] = "white"
		node.Op.addToGraph(n, node)
		return true
	})

	// outputs nothing else reads from get a heavier border
	for _, idx := range g.Sinks() {
		if n, ok := gvz.Node(idx); ok {
			n.TableAttr["BORDER"] = "3"
			n.TableAttr["CELLBORDER"] = "1"
		}
	}

	g.ForEach(func(node *Node) bool {
		for _, child := range g.Children(node.Idx) {
			edg := gvz.AddEdge(node.Idx, child)
			if node.IsOuterJoin() {
				edg.Attr["style"] = "dashed"
			}
		}
		return true
	})

	return gvz
}

func RenderGraphViz(w io.Writer, g *Graph) {
	GraphViz(g).Render(w)
}

func nodeAddr(node *Node) graphviz.Cell {
	return graphviz.Cell{
		Txt:  graphviz.Fmt("%d", node.Idx),
		Attr: map[string]string{"PORT": "node_addr"},
	}
}

func columnsRow(gvz *graphviz.Node, node *Node) {
	if len(node.Columns) > 0 {
		gvz.Row(strings.Join(node.Columns.Names(), ", "))
	}
}

func (t *Table) addToGraph(gvz *graphviz.Node, node *Node) {
	gvz.Attr["fillcolor"] = "/set312/1"
	gvz.Row(nodeAddr(node), graphviz.Fmt("<B>%s</B>", t.TableName))
	if !t.PrimaryKey.IsEmpty() {
		gvz.Row(fmt.Sprintf("key: %s", t.PrimaryKey.Name))
	}
	gvz.Row(fmt.Sprintf("rows: %d", node.Rows))
	columnsRow(gvz, node)
}

func (j *Join) addToGraph(gvz *graphviz.Node, node *Node) {
	if j.Inner {
		gvz.Row(nodeAddr(node), "⋈ join")
	} else {
		gvz.Attr["fillcolor"] = "/set312/5"
		gvz.Row(nodeAddr(node), "⟗ outer join")
	}
	gvz.Row(fmt.Sprintf("rows ≤ %d", node.Rows))
}

func (p *Project) addToGraph(gvz *graphviz.Node, node *Node) {
	gvz.Row(nodeAddr(node), "π project")
	columnsRow(gvz, node)
}

func (v *View) addToGraph(gvz *graphviz.Node, node *Node) {
	gvz.Attr["fillcolor"] = "/set312/7"
	gvz.Row(nodeAddr(node), graphviz.Fmt("<B>%s</B>", v.PublicID))
	columnsRow(gvz, node)
}
