package operators

import (
	"fmt"
	"strings"

	"vitess.io/vitess/go/vt/sqlparser"

	"github.com/planetscale/joinplan/go/boost/graph"
)

type (
	Node struct {
		// Idx is the node's position in its Graph and doubles as its identity:
		// two nodes are the same node for reuse purposes iff their Idx match.
		Idx  graph.NodeIdx
		Name string

		// Columns are the columns this node exposes to its children. Joins
		// concatenate the columns of both sides without deduplicating them.
		Columns Columns
		Op      Operator

		// Ancestors are the data inputs of this node, in order. They always
		// have a smaller Idx than the node itself.
		Ancestors []graph.NodeIdx

		// Rows is an upper bound estimate of the number of rows this node emits.
		Rows uint64
	}

	Column struct {
		Name string
	}

	Columns []Column
)

func ColumnsFromNames(names ...string) Columns {
	cols := make(Columns, 0, len(names))
	for _, name := range names {
		cols = append(cols, Column{Name: name})
	}
	return cols
}

func ColumnFromAST(col *sqlparser.ColName) Column {
	return Column{Name: col.Name.String()}
}

func (columns Columns) Names() []string {
	names := make([]string, 0, len(columns))
	for _, col := range columns {
		names = append(names, col.Name)
	}
	return names
}

func (columns Columns) String() string {
	return "[" + strings.Join(columns.Names(), " ") + "]"
}

func (col Column) IsEmpty() bool {
	return col.Name == ""
}

func (node *Node) IsBase() bool {
	_, ok := node.Op.(*Table)
	return ok
}

func (node *Node) IsInnerJoin() bool {
	j, ok := node.Op.(*Join)
	return ok && j.Inner
}

func (node *Node) IsOuterJoin() bool {
	j, ok := node.Op.(*Join)
	return ok && !j.Inner
}

func (node *Node) IsJoin() bool {
	_, ok := node.Op.(*Join)
	return ok
}

// HasAncestors reports whether the node's ancestors are exactly the given set,
// regardless of order.
func (node *Node) HasAncestors(a, b graph.NodeIdx) bool {
	if len(node.Ancestors) != 2 {
		return false
	}
	l, r := node.Ancestors[0], node.Ancestors[1]
	return (l == a && r == b) || (l == b && r == a)
}

// Describe returns the operator name and, for named operators, the relation
// it represents, e.g. "base(users)" or "outer join".
func (node *Node) Describe() string {
	return node.Op.describe()
}

func (node *Node) String() string {
	return fmt.Sprintf("n%d %s", node.Idx, node.Describe())
}
