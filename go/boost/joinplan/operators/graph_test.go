package operators

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/planetscale/joinplan/go/boost/graph"
)

// buildGraph creates
//
//	0 base(a)  1 base(b)  2 base(c)
//	3 join(0, 1)
//	4 outer join(3, 2)
//	5 project(4)
//	6 leaf(v)
func buildGraph(t *testing.T) *Graph {
	t.Helper()

	g := NewGraph()
	a := g.AddTable("a", ColumnsFromNames("id", "x"), Column{Name: "id"}, 100)
	b := g.AddTable("b", ColumnsFromNames("id"), Column{}, 20)
	c := g.AddTable("c", ColumnsFromNames("y"), Column{}, 7)
	ab := g.AddJoin(true, a.Idx, b.Idx)
	abc := g.AddJoin(false, ab.Idx, c.Idx)
	project := g.AddProject(abc.Idx, ColumnsFromNames("x", "y"))
	g.AddView("v", project.Idx)

	require.Equal(t, 7, g.Len())
	return g
}

func TestGraphAppend(t *testing.T) {
	g := buildGraph(t)
	require.NoError(t, Validate(g))

	join := g.Node(3)
	assert.Equal(t, []string{"id", "x", "id"}, join.Columns.Names())
	assert.Equal(t, uint64(20), join.Rows)

	outer := g.Node(4)
	assert.True(t, outer.IsOuterJoin())
	assert.Equal(t, "[id x id y]", outer.Columns.String())
	assert.Equal(t, uint64(27), outer.Rows)

	leaf := g.Node(6)
	assert.Equal(t, "leaf(v)", leaf.Describe())
	assert.Equal(t, "v", leaf.Name)
	assert.Equal(t, uint64(27), leaf.Rows)
	assert.Equal(t, []string{"x", "y"}, leaf.Columns.Names())

	assert.Equal(t, []graph.NodeIdx{3}, g.Children(0))
	assert.Equal(t, []graph.NodeIdx{4}, g.Children(2))
	assert.Empty(t, g.Children(6))
	assert.Len(t, g.Edges(), 6)

	ancestors := g.Ancestors(4)
	require.Len(t, ancestors, 2)
	assert.Same(t, join, ancestors[0])

	_, ok := g.Lookup(7)
	assert.False(t, ok)
}

func TestGraphAppendAsserts(t *testing.T) {
	g := buildGraph(t)

	assert.Panics(t, func() { g.Append("join", &Join{Inner: true}, nil, 0) })
	assert.Panics(t, func() { g.Append("project", &Project{}, nil, 9) })
	assert.Equal(t, 7, g.Len())
}

func TestGraphFind(t *testing.T) {
	g := buildGraph(t)

	assert.Equal(t, graph.NodeIdx(0), g.Find((*Node).IsBase).Idx)
	assert.Nil(t, g.Find(func(node *Node) bool { return node.Rows > 1000 }))
	assert.Len(t, g.FindAll((*Node).IsBase), 3)
	assert.Len(t, g.FindAll((*Node).IsJoin), 2)

	join := g.Node(3)
	assert.True(t, join.HasAncestors(1, 0))
	assert.False(t, join.HasAncestors(0, 2))
	assert.False(t, g.Node(5).HasAncestors(4, 4))
}

func TestTableSetAndSignature(t *testing.T) {
	g := buildGraph(t)

	assert.Equal(t, []string{"a"}, g.TableSet(0))
	assert.Equal(t, []string{"a", "b"}, g.TableSet(3))
	assert.Equal(t, []string{"a", "b", "c"}, g.TableSet(6))

	assert.Equal(t, TableSignature([]string{"b", "a"}), g.Signature(3))
	assert.Equal(t, TableSignature([]string{"a", "b", "a"}), TableSignature([]string{"b", "a"}))
	assert.NotEqual(t, g.Signature(3), g.Signature(4))
	assert.Equal(t, g.Signature(4), g.Signature(6))

	ba := g.AddJoin(true, 1, 0)
	assert.Equal(t, g.Signature(3), g.Signature(ba.Idx))
}

func TestValidate(t *testing.T) {
	t.Run("row estimates", func(t *testing.T) {
		g := buildGraph(t)
		g.Node(3).Rows = 99

		err := Validate(g)
		var invalid *InvalidGraphError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, graph.NodeIdx(3), invalid.Node.Idx)
		assert.EqualError(t, invalid, "invalid graph at n3 join: row estimate is 99, expected 20")
	})

	t.Run("join columns", func(t *testing.T) {
		g := buildGraph(t)
		g.Node(4).Columns = ColumnsFromNames("id", "x", "y")

		err := Validate(g)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "columns [id x y] are not the concatenation [id x id y]")
	})

	t.Run("arity and order", func(t *testing.T) {
		g := buildGraph(t)
		g.Node(5).Ancestors = nil
		g.Node(3).Ancestors = []graph.NodeIdx{0, 4}
		g.Node(1).Idx = 8

		errs := multierr.Errors(Validate(g))
		require.Len(t, errs, 3)
		for _, err := range errs {
			var invalid *InvalidGraphError
			assert.True(t, errors.As(err, &invalid))
		}
	})
}

func TestDump(t *testing.T) {
	g := buildGraph(t)

	var out bytes.Buffer
	Dump(&out, g)
	assert.Equal(t, `0: base(a) [id x] rows=100
1: base(b) [id] rows=20
2: base(c) [y] rows=7
3: join <- 0,1 [id x id] rows=20
4: outer join <- 3,2 [id x id y] rows=27
5: project <- 4 [x y] rows=27
6: leaf(v) <- 5 [x y] rows=27
`, out.String())
}

func TestExplain(t *testing.T) {
	g := buildGraph(t)

	tree := Explain(g, 6)
	lines := strings.Split(strings.TrimSpace(tree), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "n6 leaf(v) rows=27", lines[0])
	assert.Contains(t, lines[1], "n5 project rows=27")
	assert.Contains(t, lines[2], "n4 outer join rows=27")
	assert.Contains(t, lines[3], "n3 join rows=20")
	assert.Contains(t, lines[4], "n0 base(a) rows=100")
	assert.Contains(t, lines[5], "n1 base(b) rows=20")
	assert.Contains(t, lines[6], "n2 base(c) rows=7")

	assert.Equal(t, "n0 base(a) rows=100", strings.TrimSpace(Explain(g, 0)))
}

func TestGraphViz(t *testing.T) {
	g := buildGraph(t)

	var first, second bytes.Buffer
	RenderGraphViz(&first, g)
	RenderGraphViz(&second, g)
	assert.Equal(t, first.String(), second.String())

	dot := first.String()
	assert.True(t, strings.HasPrefix(dot, "digraph {\n"))
	assert.Contains(t, dot, "<B>a</B>")
	assert.Contains(t, dot, "key: id")
	assert.Contains(t, dot, "rows: 100")
	assert.Contains(t, dot, "⟗ outer join")
	assert.Contains(t, dot, "rows ≤ 20")
	assert.Contains(t, dot, "<B>v</B>")
	assert.Contains(t, dot, "n0 -> n3")
	assert.Contains(t, dot, "n4 -> n5 [style=\"dashed\" ]")
	assert.NotContains(t, dot, "n3 -> n4 [")
	assert.Equal(t, 1, strings.Count(dot, `<TABLE BORDER="3" CELLBORDER="1">`))
	assert.Equal(t, []graph.NodeIdx{6}, g.Sinks())
}
