package graph

type Topo[N any] struct {
	Current NodeIdx

	g       *Graph[N]
	tovisit []NodeIdx
	ordered map[NodeIdx]struct{}
}

func NewTopoVisitor[N any](g *Graph[N]) *Topo[N] {
	topo := Topo[N]{
		g:       g,
		ordered: make(map[NodeIdx]struct{}),
	}

	for i := range g.nodes {
		idx := NodeIdx(i)
		if !g.NeighborsDirected(idx, DirectionIncoming).Next() {
			topo.tovisit = append(topo.tovisit, idx)
		}
	}

	return &topo
}

func (topo *Topo[N]) Next() bool {
	for len(topo.tovisit) > 0 {
		nix := topo.tovisit[len(topo.tovisit)-1]
		topo.tovisit = topo.tovisit[:len(topo.tovisit)-1]

		if _, visited := topo.ordered[nix]; visited {
			continue
		}
		topo.ordered[nix] = struct{}{}

		neigh := topo.g.NeighborsDirected(nix, DirectionOutgoing)
		for neigh.Next() {
			var allVisited = true
			reverse := topo.g.NeighborsDirected(neigh.Current, DirectionIncoming)
			for reverse.Next() {
				if _, visited := topo.ordered[reverse.Current]; !visited {
					allVisited = false
				}
			}
			if allVisited {
				topo.tovisit = append(topo.tovisit, neigh.Current)
			}
		}

		topo.Current = nix
		return true
	}
	return false
}

// Visited is the number of nodes the visitor has emitted so far. Once Next
// returns false, a Visited lower than NodeCount means the graph has a cycle.
func (topo *Topo[N]) Visited() int {
	return len(topo.ordered)
}

type bitset struct {
	words  []uint32
	length int
}

func bitsetWithCapacity(bits int) bitset {
	blocks := bits / 32
	rem := bits % 32
	if rem > 0 {
		blocks++
	}
	return bitset{
		words:  make([]uint32, blocks),
		length: bits,
	}
}

func (b *bitset) visit(bit NodeIdx) bool {
	word := &b.words[bit/32]
	mask := uint32(1) << (bit % 32)
	firstVisit := (*word & mask) == 0
	*word |= mask
	return firstVisit
}

func (b *bitset) isVisited(bit NodeIdx) bool {
	return b.words[bit/32]&(1<<(bit%32)) != 0
}

// DFS walks the graph depth-first from a start node, following edges in a
// single direction. DirectionIncoming walks towards the roots.
type DFS[N any] struct {
	Current NodeIdx

	g          *Graph[N]
	dir        Direction
	stack      []NodeIdx
	discovered bitset
}

func NewDFS[N any](g *Graph[N], start NodeIdx, dir Direction) *DFS[N] {
	return &DFS[N]{
		g:          g,
		dir:        dir,
		stack:      []NodeIdx{start},
		discovered: bitsetWithCapacity(g.NodeCount()),
	}
}

func (it *DFS[N]) Next() bool {
	for len(it.stack) > 0 {
		it.Current = it.stack[len(it.stack)-1]
		it.stack = it.stack[:len(it.stack)-1]

		if it.discovered.visit(it.Current) {
			succ := it.g.NeighborsDirected(it.Current, it.dir)
			for succ.Next() {
				if !it.discovered.isVisited(succ.Current) {
					it.stack = append(it.stack, succ.Current)
				}
			}
			return true
		}
	}
	it.Current = InvalidNode
	return false
}

func HasPathConnecting[N any](g *Graph[N], from, to NodeIdx) bool {
	dfs := NewDFS(g, from, DirectionOutgoing)
	for dfs.Next() {
		if dfs.Current == to {
			return true
		}
	}
	return false
}
