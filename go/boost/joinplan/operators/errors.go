package operators

import (
	"fmt"
	"strings"

	"vitess.io/vitess/go/vt/sqlparser"
)

//enumcheck:exhaustive
type UnsupportedType int

const (
	Unknown UnsupportedType = iota
	TableDefinition
	TableExpression
	JoinRightSide
	CompoundView
	SelectColumnType
)

// UnsupportedError is returned for query shapes the planner cannot compile.
// It aborts the compilation run; nodes appended before it stay in the graph.
type UnsupportedError struct {
	AST  sqlparser.SQLNode
	Type UnsupportedType
}

func (n *UnsupportedError) ast() string {
	if n.AST == nil {
		return ""
	}
	return sqlparser.String(n.AST)
}

func (n *UnsupportedError) Error() string {
	var sb strings.Builder
	sb.WriteString("query not supported by join planner: ")
	switch n.Type {
	case Unknown:
		sb.WriteString("unknown problem")
	case TableDefinition:
		fmt.Fprintf(&sb, "table must be defined by an explicit column list: %s", n.ast())
	case TableExpression:
		fmt.Fprintf(&sb, "query contains an unsupported table expression: %s", n.ast())
	case JoinRightSide:
		fmt.Fprintf(&sb, "the right side of a join must be a plain table: %s", n.ast())
	case CompoundView:
		fmt.Fprintf(&sb, "view must be defined by a simple select: %s", n.ast())
	case SelectColumnType:
		fmt.Fprintf(&sb, "column reference of unknown type in select: %s", n.ast())
	}
	return sb.String()
}

// InvalidGraphError describes one invariant a Graph failed to satisfy.
type InvalidGraphError struct {
	Node   *Node
	Reason string
}

func (e *InvalidGraphError) Error() string {
	if e.Node == nil {
		return fmt.Sprintf("invalid graph: %s", e.Reason)
	}
	return fmt.Sprintf("invalid graph at %s: %s", e.Node, e.Reason)
}
