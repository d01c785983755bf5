package graph

import (
	"math"

	"go.uber.org/zap"
)

type Direction int

const (
	DirectionOutgoing Direction = iota
	DirectionIncoming
)

// NodeIdx is the position of a node in its Graph. Indices are handed out in
// insertion order and never reused, since the graph never removes nodes.
type NodeIdx uint32
type EdgeIdx uint32

func (n NodeIdx) Zap() zap.Field {
	return zap.Uint32("node_idx", uint32(n))
}

func (n NodeIdx) ZapField(field string) zap.Field {
	return zap.Uint32(field, uint32(n))
}

const InvalidNode NodeIdx = math.MaxUint32
const InvalidEdge EdgeIdx = math.MaxUint32

type Node[N any] struct {
	Value N
	next  [2]EdgeIdx
}

type Edge struct {
	next [2]EdgeIdx
	node [2]NodeIdx
}

func (e *Edge) Source() NodeIdx {
	return e.node[0]
}

func (e *Edge) Target() NodeIdx {
	return e.node[1]
}

// Graph is an append-only adjacency list. Nodes and edges can be added but
// never removed, which keeps every NodeIdx stable for the lifetime of the graph.
type Graph[N any] struct {
	nodes []Node[N]
	edges []Edge
}

func (g *Graph[N]) NodeCount() int {
	return len(g.nodes)
}

func (g *Graph[N]) RawEdges() []Edge {
	return g.edges
}

// NextIdx is the index the next call to AddNode will return.
func (g *Graph[N]) NextIdx() NodeIdx {
	return NodeIdx(len(g.nodes))
}

func (g *Graph[N]) AddNode(n N) NodeIdx {
	node := Node[N]{
		Value: n,
		next:  [2]EdgeIdx{InvalidEdge, InvalidEdge},
	}
	nodeIdx := NodeIdx(len(g.nodes))
	g.nodes = append(g.nodes, node)
	return nodeIdx
}

func (g *Graph[N]) AddEdge(from, to NodeIdx) EdgeIdx {
	edgeIdx := EdgeIdx(len(g.edges))
	edge := Edge{
		node: [2]NodeIdx{from, to},
	}

	a, b := int(from), int(to)
	switch {
	case max(a, b) >= len(g.nodes):
		panic("Graph.AddEdge: node indices out of bounds")
	case a == b:
		an := &g.nodes[a]
		edge.next = an.next
		an.next[0] = edgeIdx
		an.next[1] = edgeIdx
	default:
		an := &g.nodes[a]
		bn := &g.nodes[b]
		edge.next[0] = an.next[0]
		edge.next[1] = bn.next[1]
		an.next[0] = edgeIdx
		bn.next[1] = edgeIdx
	}

	g.edges = append(g.edges, edge)
	return edgeIdx
}

func (g *Graph[N]) Value(idx NodeIdx) N {
	return g.nodes[int(idx)].Value
}

func (g *Graph[N]) LookupValue(i NodeIdx) (value N, found bool) {
	idx := int(i)
	if idx < len(g.nodes) {
		value = g.nodes[idx].Value
		found = true
	}
	return
}

func (g *Graph[N]) ForEachValue(each func(v N) bool) {
	for _, n := range g.nodes {
		if !each(n.Value) {
			break
		}
	}
}

func (g *Graph[N]) NeighborsDirected(a NodeIdx, dir Direction) *Neighbors {
	iter := g.NeighborsUndirected(a)
	iter.next[1-int(dir)] = InvalidEdge
	iter.skipStart = InvalidNode
	return iter
}

func (g *Graph[N]) NeighborsUndirected(a NodeIdx) *Neighbors {
	var iter Neighbors
	iter.skipStart = a
	iter.edges = g.edges

	idx := int(a)
	if idx < len(g.nodes) {
		iter.next = g.nodes[idx].next
	} else {
		iter.next = [2]EdgeIdx{InvalidEdge, InvalidEdge}
	}

	return &iter
}

func (g *Graph[N]) Externals(dir Direction) *Externals[N] {
	return &Externals[N]{
		nodes: g.nodes,
		dir:   dir,
	}
}

type Neighbors struct {
	Current NodeIdx

	skipStart NodeIdx
	edges     []Edge
	next      [2]EdgeIdx
}

func (n *Neighbors) Next() bool {
	ei := int(n.next[0])
	if ei < len(n.edges) {
		edge := n.edges[ei]
		n.next[0] = edge.next[0]
		n.Current = edge.node[1]
		return true
	}

	for {
		ei := int(n.next[1])
		if ei >= len(n.edges) {
			break
		}

		edge := n.edges[ei]
		n.next[1] = edge.next[1]
		if edge.node[0] != n.skipStart {
			n.Current = edge.node[0]
			return true
		}
	}

	return false
}

func (n *Neighbors) Collect(s []NodeIdx) []NodeIdx {
	for n.Next() {
		s = append(s, n.Current)
	}
	return s
}

type Externals[N any] struct {
	Current NodeIdx

	idx   int
	nodes []Node[N]
	dir   Direction
}

func (e *Externals[N]) Next() bool {
	k := int(e.dir)
	for e.idx < len(e.nodes) {
		idx := e.idx
		node := e.nodes[e.idx]
		e.idx++

		if node.next[k] == InvalidEdge {
			e.Current = NodeIdx(idx)
			return true
		}
	}
	return false
}
