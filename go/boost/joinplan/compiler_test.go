package joinplan

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"vitess.io/vitess/go/vt/sqlparser"

	"github.com/planetscale/joinplan/go/boost/joinplan/config"
	"github.com/planetscale/joinplan/go/boost/joinplan/operators"
	"github.com/planetscale/joinplan/go/boost/joinplan/planner"
	"github.com/planetscale/joinplan/go/boost/joinplan/schema"
)

func newTestCompiler(t *testing.T, cfg *config.Config) *Compiler {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return NewCompiler(NewSession(nil, cfg), cfg, nil)
}

func compileAll(t *testing.T, c *Compiler, statements ...string) {
	t.Helper()
	for _, sql := range statements {
		stmt, err := sqlparser.Parse(sql)
		require.NoError(t, err)
		require.NoError(t, c.CompileStatement(stmt), "compiling %q", sql)
	}
	require.NoError(t, operators.Validate(c.Session().Graph))
}

func parseAs[T sqlparser.Statement](t *testing.T, sql string) T {
	t.Helper()
	stmt, err := sqlparser.Parse(sql)
	require.NoError(t, err)
	typed, ok := stmt.(T)
	require.Truef(t, ok, "%q parsed as %T", sql, stmt)
	return typed
}

func TestCompileView(t *testing.T) {
	c := newTestCompiler(t, nil)
	compileAll(t, c,
		"CREATE TABLE a (id int)",
		"CREATE TABLE b (id int)",
		"CREATE VIEW v AS SELECT * FROM a, b",
	)

	g := c.Session().Graph
	require.Equal(t, 5, g.Len())

	leaf, ok := c.Session().Relation("v")
	require.True(t, ok)
	assert.Equal(t, "n4 leaf(v)", leaf.String())

	project := g.Node(leaf.Ancestors[0])
	assert.Equal(t, "n3 project", project.String())
	join := g.Node(project.Ancestors[0])
	assert.True(t, join.IsInnerJoin())
	assert.Equal(t, []string{"id", "id"}, leaf.Columns.Names())
	assert.Equal(t, []string{"a", "b"}, g.TableSet(leaf.Idx))

	views := c.Session().Views()
	require.Len(t, views, 1)
	assert.Same(t, leaf, views[0])
}

func TestCompileTable(t *testing.T) {
	c := newTestCompiler(t, nil)

	node, err := c.CompileTable(parseAs[*sqlparser.CreateTable](t, "CREATE TABLE item (i_title varchar(60), i_id int, PRIMARY KEY (i_id, i_title))"))
	require.NoError(t, err)

	table := node.Op.(*operators.Table)
	assert.Equal(t, "i_id", table.PrimaryKey.Name)
	assert.Equal(t, uint64(10_000), node.Rows)
	assert.Equal(t, []string{"i_title", "i_id"}, node.Columns.Names())

	node, err = c.CompileTable(parseAs[*sqlparser.CreateTable](t, "CREATE TABLE nokey (x int)"))
	require.NoError(t, err)
	assert.True(t, node.Op.(*operators.Table).PrimaryKey.IsEmpty())
	assert.Equal(t, schema.DefaultEstimate, node.Rows)

	cols, ok := c.Session().Catalog.Columns("nokey")
	require.True(t, ok)
	if diff := cmp.Diff(operators.ColumnsFromNames("x"), cols); diff != "" {
		t.Errorf("catalog columns (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"item", "nokey"}, c.Session().Catalog.Tables())
}

func TestCompileSelectProjection(t *testing.T) {
	c := newTestCompiler(t, nil)
	compileAll(t, c,
		"CREATE TABLE a (id int, name varchar(10))",
		"CREATE TABLE b (id int, a_id int)",
	)

	tests := []struct {
		query string
		want  []string
	}{
		{"SELECT * FROM a JOIN b ON a.id = b.a_id", []string{"id", "name", "id", "a_id"}},
		{"SELECT b.* FROM a, b", []string{"id", "a_id"}},
		{"SELECT x.*, b.id AS bid FROM a AS x JOIN b ON x.id = b.a_id", []string{"id", "name", "bid"}},
		{"SELECT name, count(*), 1 + 1 FROM a", []string{"name"}},
		{"SELECT a.name FROM a, b, a", []string{"name"}},
	}

	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			project, err := c.CompileSelect(parseAs[*sqlparser.Select](t, tc.query))
			require.NoError(t, err)
			assert.Equal(t, tc.want, project.Columns.Names())
			assert.Equal(t, "project", project.Describe())
			require.NoError(t, operators.Validate(c.Session().Graph))
		})
	}
}

func TestCompileErrors(t *testing.T) {
	setup := []string{
		"CREATE TABLE a (id int)",
		"CREATE TABLE b (id int)",
	}

	t.Run("unknown table", func(t *testing.T) {
		c := newTestCompiler(t, nil)
		compileAll(t, c, setup...)

		_, err := c.CompileSelect(parseAs[*sqlparser.Select](t, "SELECT * FROM a, nope"))
		var unknown *schema.UnknownTableError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "nope", unknown.Table)
		assert.Equal(t, 2, c.Session().Graph.Len())
	})

	t.Run("unknown star table", func(t *testing.T) {
		c := newTestCompiler(t, nil)
		compileAll(t, c, setup...)

		_, err := c.CompileSelect(parseAs[*sqlparser.Select](t, "SELECT nope.* FROM a"))
		var unknown *schema.UnknownTableError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "nope", unknown.Table)
	})

	t.Run("empty from", func(t *testing.T) {
		c := newTestCompiler(t, nil)

		sel := parseAs[*sqlparser.Select](t, "SELECT 1")
		sel.From = nil

		_, err := c.CompileSelect(sel)
		var empty *planner.EmptyJoinError
		require.ErrorAs(t, err, &empty)
	})

	unsupported := []struct {
		name string
		sql  string
		want operators.UnsupportedType
	}{
		{"derived table", "SELECT * FROM (SELECT * FROM a) AS x", operators.TableExpression},
		{"derived join right side", "SELECT * FROM a JOIN (SELECT * FROM b) AS x ON a.id = x.id", operators.JoinRightSide},
		{"compound view", "CREATE VIEW u AS SELECT * FROM a UNION SELECT * FROM b", operators.CompoundView},
		{"table like", "CREATE TABLE c LIKE a", operators.TableDefinition},
	}
	for _, tc := range unsupported {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestCompiler(t, nil)
			compileAll(t, c, setup...)

			stmt, err := sqlparser.Parse(tc.sql)
			require.NoError(t, err)

			err = c.CompileStatement(stmt)
			var target *operators.UnsupportedError
			require.ErrorAs(t, err, &target)
			assert.Equal(t, tc.want, target.Type)
			assert.True(t, strings.HasPrefix(err.Error(), "query not supported by join planner: "))
		})
	}

	t.Run("select column type", func(t *testing.T) {
		c := newTestCompiler(t, nil)
		compileAll(t, c, setup...)

		sel := parseAs[*sqlparser.Select](t, "SELECT * FROM a")
		sel.SelectExprs = sqlparser.SelectExprs{&sqlparser.Nextval{Expr: sqlparser.NewIntLiteral("1")}}

		_, err := c.CompileSelect(sel)
		var target *operators.UnsupportedError
		require.ErrorAs(t, err, &target)
		assert.Equal(t, operators.SelectColumnType, target.Type)
	})

	t.Run("top level union", func(t *testing.T) {
		c := newTestCompiler(t, nil)
		compileAll(t, c, setup...)

		stmt, err := sqlparser.Parse("SELECT * FROM a UNION SELECT * FROM b")
		require.NoError(t, err)

		var target *UnsupportedStatementError
		require.ErrorAs(t, c.CompileStatement(stmt), &target)
	})
}

func TestCompileIgnoredStatements(t *testing.T) {
	c := newTestCompiler(t, nil)
	compileAll(t, c,
		"CREATE TABLE a (id int)",
		"INSERT INTO a VALUES (1)",
		"UPDATE a SET id = 2 WHERE id = 1",
		"DELETE FROM a WHERE id = 2",
		"SET @x = 1",
		"DROP TABLE a",
	)
	assert.Equal(t, 1, c.Session().Graph.Len())
	_, ok := c.Session().Relation("a")
	assert.True(t, ok)
}

func TestViewReplacesTable(t *testing.T) {
	c := newTestCompiler(t, nil)
	compileAll(t, c,
		"CREATE TABLE a (id int, v int)",
		"CREATE TABLE b (id int)",
		"CREATE VIEW a AS SELECT id FROM a",
		"SELECT * FROM a, b",
	)

	leaf, ok := c.Session().Relation("a")
	require.True(t, ok)
	assert.Equal(t, "leaf(a)", leaf.Describe())

	join := c.Session().Graph.Find((*operators.Node).IsJoin)
	require.NotNil(t, join)
	assert.Equal(t, leaf.Idx, join.Ancestors[0])
	assert.Equal(t, []string{"id", "id"}, join.Columns.Names())
}

func TestCompileStream(t *testing.T) {
	t.Run("tallies failures", func(t *testing.T) {
		c := newTestCompiler(t, nil)

		result, err := c.CompileStream([]string{
			"CREATE TABLE a (id int)",
			"SELEKT * FROM a",
			"SELECT * FROM a UNION SELECT * FROM a",
			"SELECT * FROM a",
		})
		require.Error(t, err)
		assert.True(t, isTallied(err))

		var syntax *SyntaxError
		require.ErrorAs(t, err, &syntax)
		assert.Equal(t, "SELEKT * FROM a", syntax.Query)
		assert.Equal(t, syntax.Err, syntax.Cause())

		assert.Equal(t, 2, result.Succeeded)
		assert.Equal(t, 2, result.Failed)
		assert.Equal(t, 2, result.Nodes)
	})

	t.Run("fatal errors stop the stream", func(t *testing.T) {
		c := newTestCompiler(t, nil)

		result, err := c.CompileStream([]string{
			"CREATE TABLE a (id int)",
			"SELECT * FROM a, missing",
			"CREATE TABLE b (id int)",
		})
		var unknown *schema.UnknownTableError
		require.ErrorAs(t, err, &unknown)
		assert.False(t, isTallied(err))
		assert.Equal(t, Result{Succeeded: 1, Nodes: 1}, result)

		_, ok := c.Session().Relation("b")
		assert.False(t, ok)
	})

	t.Run("custom parser", func(t *testing.T) {
		cfg := config.DefaultConfig()
		var seen []string
		parser := ParserFunc(func(sql string) (sqlparser.Statement, error) {
			seen = append(seen, sql)
			return sqlparser.Parse(sql)
		})
		c := NewCompiler(NewSession(nil, cfg), cfg, parser)

		_, err := c.CompileStream([]string{"CREATE TABLE a (id int)"})
		require.NoError(t, err)
		assert.Equal(t, []string{"CREATE TABLE a (id int)"}, seen)
	})
}

func TestCompile(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	statements := []string{
		"CREATE TABLE a (id int)",
		"CREATE TABLE b (id int)",
		"CREATE VIEW v AS SELECT * FROM a, b",
		"SELECT * FROM b, a",
	}

	t.Run("renders the graph", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Reuse = true

		var out bytes.Buffer
		session, result, err := Compile(nil, statements, cfg, &out)
		require.NoError(t, err)

		assert.Equal(t, Result{
			Succeeded:     4,
			Nodes:         6,
			JoinsCreated:  1,
			JoinsReused:   1,
			Joins:         1,
			DistinctJoins: 1,
		}, result)
		assert.Equal(t, "undefined", session.Label)
		assert.True(t, strings.HasPrefix(out.String(), "digraph {\n"))
		assert.Contains(t, out.String(), "n2 -> n3")
	})

	t.Run("counts redundant joins", func(t *testing.T) {
		session, result, err := Compile(nil, statements, config.DefaultConfig(), nil)
		require.NoError(t, err)
		assert.Equal(t, 7, session.Graph.Len())
		assert.Equal(t, 2, result.Joins)
		assert.Equal(t, 1, result.DistinctJoins)
		assert.Equal(t, 2, result.JoinsCreated)
	})

	t.Run("fails after rendering", func(t *testing.T) {
		var out bytes.Buffer
		_, result, err := Compile(nil, append([]string{"nonsense"}, statements...), config.DefaultConfig(), &out)

		var failed *FailedStatementsError
		require.ErrorAs(t, err, &failed)
		assert.Equal(t, 1, failed.Failed)
		assert.Equal(t, 5, failed.Total)
		assert.Equal(t, 4, result.Succeeded)
		assert.NotEmpty(t, out.String())
	})

	t.Run("fatal errors skip rendering", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Compile(nil, []string{"SELECT * FROM missing"}, config.DefaultConfig(), &out)

		var unknown *schema.UnknownTableError
		require.ErrorAs(t, err, &unknown)
		assert.Empty(t, out.String())
	})
}
