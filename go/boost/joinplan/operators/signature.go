package operators

import (
	"golang.org/x/exp/slices"

	"github.com/segmentio/fasthash/fnv1"

	"github.com/planetscale/joinplan/go/boost/graph"
)

type Hash uint64

// TableSignature hashes a set of table names independently of their order.
func TableSignature(tables []string) Hash {
	sorted := slices.Clone(tables)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	var hash = fnv1.Init64
	for _, rel := range sorted {
		hash = fnv1.AddString64(hash, rel)
	}
	return Hash(hash)
}

// Signature identifies the base tables covered by a node. Two joins over the
// same tables share a signature even when they were built in different orders.
func (g *Graph) Signature(idx graph.NodeIdx) Hash {
	return TableSignature(g.TableSet(idx))
}
