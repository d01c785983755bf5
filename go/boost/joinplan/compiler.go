package joinplan

import (
	"go.uber.org/zap"

	"vitess.io/vitess/go/vt/sqlparser"

	"github.com/planetscale/joinplan/go/boost/joinplan/config"
	"github.com/planetscale/joinplan/go/boost/joinplan/operators"
	"github.com/planetscale/joinplan/go/boost/joinplan/planner"
	"github.com/planetscale/joinplan/go/boost/joinplan/schema"
)

// Compiler translates statements into nodes of its Session's graph, one
// statement at a time and in order. It is not safe for concurrent use.
type Compiler struct {
	session *Session
	planner *planner.Planner
	parser  Parser
	log     *zap.Logger
}

func NewCompiler(session *Session, cfg *config.Config, parser Parser) *Compiler {
	if parser == nil {
		parser = SQLParser
	}
	return &Compiler{
		session: session,
		planner: planner.New(session.log, session.Graph, session.Registry, planner.OptionsFromConfig(cfg)),
		parser:  parser,
		log:     session.log,
	}
}

func (c *Compiler) Session() *Session {
	return c.session
}

func (c *Compiler) PlannerStats() planner.Stats {
	return c.planner.Stats()
}

// CompileTable registers a base table and appends its node.
func (c *Compiler) CompileTable(create *sqlparser.CreateTable) (*operators.Node, error) {
	spec := create.TableSpec
	if spec == nil {
		return nil, &operators.UnsupportedError{AST: create, Type: operators.TableDefinition}
	}

	name := create.Table.Name.String()
	columns := make(operators.Columns, 0, len(spec.Columns))
	for _, col := range spec.Columns {
		columns = append(columns, operators.Column{Name: col.Name.String()})
	}

	var pk operators.Column
	for _, idx := range spec.Indexes {
		if idx.Info.Primary && len(idx.Columns) > 0 {
			pk = operators.Column{Name: idx.Columns[0].Column.String()}
			break
		}
	}

	node := c.session.Catalog.RegisterTable(c.session.Graph, name, columns, pk)
	c.session.register(name, node)
	c.log.Debug("registered table", zap.String("table", name), node.Idx.Zap(), zap.Uint64("rows", node.Rows))
	return node, nil
}

// CompileSelect plans the join of every relation in the FROM clause and
// projects the selected columns out of it. The returned node is the Project.
func (c *Compiler) CompileSelect(sel *sqlparser.Select) (*operators.Node, error) {
	from := &fromClause{aliases: make(map[string]string)}
	for _, expr := range sel.From {
		if err := from.gather(expr); err != nil {
			return nil, err
		}
	}

	join, err := c.planner.PlanJoin(from.names)
	if err != nil {
		return nil, err
	}

	columns, err := c.projection(sel.SelectExprs, join, from)
	if err != nil {
		return nil, err
	}
	return c.session.Graph.AddProject(join.Idx, columns), nil
}

// CompileView compiles the SELECT body of a view and names the result. The
// returned node is the view's leaf, which the view name now resolves to.
func (c *Compiler) CompileView(create *sqlparser.CreateView) (string, *operators.Node, error) {
	sel, ok := create.Select.(*sqlparser.Select)
	if !ok {
		return "", nil, &operators.UnsupportedError{AST: create.Select, Type: operators.CompoundView}
	}

	project, err := c.CompileSelect(sel)
	if err != nil {
		return "", nil, err
	}

	name := create.ViewName.Name.String()
	leaf := c.session.Graph.AddView(name, project.Idx)
	c.session.register(name, leaf)
	c.log.Info("registered view", zap.String("view", name), leaf.Idx.Zap(), zap.Uint64("rows", leaf.Rows))
	return name, leaf, nil
}

// CompileStatement dispatches stmt by kind. Writes and DDL other than CREATE
// TABLE and CREATE VIEW are accepted and have no effect on the graph. Any
// other kind of statement returns an UnsupportedStatementError.
func (c *Compiler) CompileStatement(stmt sqlparser.Statement) error {
	switch stmt := stmt.(type) {
	case *sqlparser.Select:
		_, err := c.CompileSelect(stmt)
		return err
	case *sqlparser.CreateTable:
		_, err := c.CompileTable(stmt)
		return err
	case *sqlparser.CreateView:
		_, _, err := c.CompileView(stmt)
		return err
	case *sqlparser.Insert, *sqlparser.Update, *sqlparser.Delete, *sqlparser.DropTable, *sqlparser.Set:
		c.log.Debug("ignoring statement", zap.String("sql", sqlparser.String(stmt)))
		return nil
	default:
		return &UnsupportedStatementError{Statement: stmt}
	}
}

func (c *Compiler) projection(exprs sqlparser.SelectExprs, join *operators.Node, from *fromClause) (operators.Columns, error) {
	var columns operators.Columns
	for _, expr := range exprs {
		switch expr := expr.(type) {
		case *sqlparser.StarExpr:
			if expr.TableName.IsEmpty() {
				columns = append(columns, join.Columns...)
				continue
			}
			table := from.resolve(expr.TableName.Name.String())
			node, ok := c.session.Relation(table)
			if !ok {
				return nil, &schema.UnknownTableError{Table: table}
			}
			columns = append(columns, node.Columns...)

		case *sqlparser.AliasedExpr:
			col, ok := expr.Expr.(*sqlparser.ColName)
			if !ok {
				c.log.Debug("expression does not project a column", zap.String("expr", sqlparser.String(expr)))
				continue
			}
			column := operators.ColumnFromAST(col)
			if !expr.As.IsEmpty() {
				column.Name = expr.As.String()
			}
			columns = append(columns, column)

		default:
			return nil, &operators.UnsupportedError{AST: expr, Type: operators.SelectColumnType}
		}
	}
	return columns, nil
}

// fromClause collects the relations a SELECT reads from, in the order they
// appear, along with the aliases they were given.
type fromClause struct {
	names   []string
	aliases map[string]string
}

func (from *fromClause) gather(expr sqlparser.TableExpr) error {
	switch expr := expr.(type) {
	case *sqlparser.AliasedTableExpr:
		return from.addTable(expr)
	case *sqlparser.JoinTableExpr:
		if err := from.gather(expr.LeftExpr); err != nil {
			return err
		}
		right, ok := expr.RightExpr.(*sqlparser.AliasedTableExpr)
		if !ok {
			return &operators.UnsupportedError{AST: expr.RightExpr, Type: operators.JoinRightSide}
		}
		if _, ok := right.Expr.(sqlparser.TableName); !ok {
			return &operators.UnsupportedError{AST: right, Type: operators.JoinRightSide}
		}
		return from.addTable(right)
	case *sqlparser.ParenTableExpr:
		for _, inner := range expr.Exprs {
			if err := from.gather(inner); err != nil {
				return err
			}
		}
		return nil
	default:
		return &operators.UnsupportedError{AST: expr, Type: operators.TableExpression}
	}
}

func (from *fromClause) addTable(expr *sqlparser.AliasedTableExpr) error {
	table, ok := expr.Expr.(sqlparser.TableName)
	if !ok {
		return &operators.UnsupportedError{AST: expr, Type: operators.TableExpression}
	}
	name := table.Name.String()
	if !expr.As.IsEmpty() {
		from.aliases[expr.As.String()] = name
	}
	from.names = append(from.names, name)
	return nil
}

func (from *fromClause) resolve(name string) string {
	if table, ok := from.aliases[name]; ok {
		return table
	}
	return name
}
