package operators

import (
	"golang.org/x/exp/slices"

	"github.com/planetscale/joinplan/go/boost/common/dbg"
	"github.com/planetscale/joinplan/go/boost/graph"
)

// Graph is the operator graph of a whole compilation session. Nodes are only
// ever appended: a node's ancestors must already be in the graph when it is
// created, which keeps the graph acyclic by construction. Children are the
// reverse edges, recorded as nodes are appended.
//
// Graph is not safe for concurrent use. Append hands out indices sequentially
// and every reuse lookup scans the graph expecting a consistent snapshot, so
// callers sharing a Graph between goroutines must serialize all access.
type Graph struct {
	g graph.Graph[*Node]
}

func NewGraph() *Graph {
	return &Graph{}
}

func (g *Graph) Len() int {
	return g.g.NodeCount()
}

func (g *Graph) Node(idx graph.NodeIdx) *Node {
	return g.g.Value(idx)
}

func (g *Graph) Lookup(idx graph.NodeIdx) (*Node, bool) {
	return g.g.LookupValue(idx)
}

func (g *Graph) Ancestors(idx graph.NodeIdx) []*Node {
	node := g.Node(idx)
	ancestors := make([]*Node, 0, len(node.Ancestors))
	for _, a := range node.Ancestors {
		ancestors = append(ancestors, g.Node(a))
	}
	return ancestors
}

// Children returns the nodes that use idx as an ancestor, in ascending order.
func (g *Graph) Children(idx graph.NodeIdx) []graph.NodeIdx {
	children := g.g.NeighborsDirected(idx, graph.DirectionOutgoing).Collect(nil)
	slices.Sort(children)
	return slices.Compact(children)
}

func (g *Graph) ForEach(each func(node *Node) bool) {
	g.g.ForEachValue(each)
}

// Find returns the first node, in insertion order, that matches pred.
// It is a linear scan: there is no index over the graph.
func (g *Graph) Find(pred func(node *Node) bool) *Node {
	var found *Node
	g.ForEach(func(node *Node) bool {
		if pred(node) {
			found = node
			return false
		}
		return true
	})
	return found
}

func (g *Graph) FindAll(pred func(node *Node) bool) (found []*Node) {
	g.ForEach(func(node *Node) bool {
		if pred(node) {
			found = append(found, node)
		}
		return true
	})
	return
}

// Append adds a node for op on top of the given ancestors and returns it.
// The node's Idx is its insertion position and its row estimate is derived
// from the ancestors by the operator.
func (g *Graph) Append(name string, op Operator, columns Columns, ancestors ...graph.NodeIdx) *Node {
	dbg.Assert(len(ancestors) == op.Arity(), "%s expects %d ancestors, got %d", op.describe(), op.Arity(), len(ancestors))

	next := g.g.NextIdx()
	inputs := make([]*Node, 0, len(ancestors))
	for _, a := range ancestors {
		dbg.Assert(a < next, "ancestor n%d does not exist yet (next is n%d)", a, next)
		inputs = append(inputs, g.Node(a))
	}

	node := &Node{
		Idx:       next,
		Name:      name,
		Columns:   columns,
		Op:        op,
		Ancestors: slices.Clone(ancestors),
		Rows:      op.EstimateRows(inputs),
	}
	idx := g.g.AddNode(node)
	dbg.Assert(idx == next, "graph handed out n%d, expected n%d", idx, next)

	for _, a := range ancestors {
		g.g.AddEdge(a, idx)
	}
	return node
}

func (g *Graph) AddTable(name string, columns Columns, pk Column, estimate uint64) *Node {
	op := &Table{TableName: name, PrimaryKey: pk, Estimate: estimate}
	return g.Append(name, op, slices.Clone(columns))
}

// AddJoin joins left and right. The output columns are left's columns
// followed by right's, duplicates included.
func (g *Graph) AddJoin(inner bool, left, right graph.NodeIdx) *Node {
	op := &Join{Inner: inner}
	columns := append(slices.Clone(g.Node(left).Columns), g.Node(right).Columns...)
	return g.Append(op.describe(), op, columns, left, right)
}

func (g *Graph) AddProject(input graph.NodeIdx, columns Columns) *Node {
	op := &Project{}
	return g.Append(op.describe(), op, slices.Clone(columns), input)
}

func (g *Graph) AddView(name string, input graph.NodeIdx) *Node {
	op := &View{PublicID: name}
	return g.Append(name, op, slices.Clone(g.Node(input).Columns), input)
}

// TableSet returns the sorted names of all base tables idx transitively
// reads from. A base node's set is its own name.
func (g *Graph) TableSet(idx graph.NodeIdx) []string {
	var tables []string
	dfs := graph.NewDFS(&g.g, idx, graph.DirectionIncoming)
	for dfs.Next() {
		if t, ok := g.Node(dfs.Current).Op.(*Table); ok {
			tables = append(tables, t.TableName)
		}
	}
	slices.Sort(tables)
	return slices.Compact(tables)
}

func (g *Graph) Edges() []graph.Edge {
	return g.g.RawEdges()
}

func (g *Graph) isAcyclic() bool {
	topo := graph.NewTopoVisitor(&g.g)
	for topo.Next() {
	}
	return topo.Visited() == g.Len()
}

// Sinks returns the nodes no other node reads from, in insertion order: view
// leaves and the projections of SELECTs that were not named.
func (g *Graph) Sinks() []graph.NodeIdx {
	var sinks []graph.NodeIdx
	ext := g.g.Externals(graph.DirectionOutgoing)
	for ext.Next() {
		sinks = append(sinks, ext.Current)
	}
	return sinks
}
