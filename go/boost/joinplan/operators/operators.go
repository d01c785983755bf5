package operators

import (
	"fmt"

	"github.com/planetscale/joinplan/go/boost/common/graphviz"
)

type (
	Operator interface {
		// Arity is the exact number of ancestors a node with this operator has.
		Arity() int

		// EstimateRows computes the node's row estimate from its ancestors.
		EstimateRows(ancestors []*Node) uint64

		describe() string
		addToGraph(gvz *graphviz.Node, node *Node)
	}

	// Table is a base relation. It has no ancestors; its rows come from the
	// catalog's cardinality estimate.
	Table struct {
		TableName string

		// PrimaryKey is the first column of the table's PRIMARY KEY, or empty
		// when none was declared. Join estimates do not look at it yet.
		PrimaryKey Column
		Estimate   uint64
	}

	// Join combines exactly two ancestors. Inner joins are assumed to be
	// primary-key equality joins; outer joins are estimated pessimistically.
	Join struct {
		Inner bool
	}

	Project struct{}

	// View is the leaf node that makes a compiled query addressable by name.
	View struct {
		PublicID string
	}
)

var _ Operator = (*Table)(nil)
var _ Operator = (*Join)(nil)
var _ Operator = (*Project)(nil)
var _ Operator = (*View)(nil)

func (t *Table) Arity() int   { return 0 }
func (j *Join) Arity() int    { return 2 }
func (p *Project) Arity() int { return 1 }
func (v *View) Arity() int    { return 1 }

func (t *Table) EstimateRows([]*Node) uint64 {
	return t.Estimate
}

func (j *Join) EstimateRows(ancestors []*Node) uint64 {
	if j.Inner {
		return min(ancestors[0].Rows, ancestors[1].Rows)
	}
	return ancestors[0].Rows + ancestors[1].Rows
}

func (p *Project) EstimateRows(ancestors []*Node) uint64 {
	return ancestors[0].Rows
}

func (v *View) EstimateRows(ancestors []*Node) uint64 {
	return ancestors[0].Rows
}

func (t *Table) describe() string { return fmt.Sprintf("base(%s)", t.TableName) }
func (p *Project) describe() string { return "project" }
func (v *View) describe() string    { return fmt.Sprintf("leaf(%s)", v.PublicID) }

func (j *Join) describe() string {
	if j.Inner {
		return "join"
	}
	return "outer join"
}
