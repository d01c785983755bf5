package schema

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/planetscale/joinplan/go/boost/joinplan/operators"
)

// DefaultEstimate is the row estimate for tables without a known size.
const DefaultEstimate uint64 = 10

// KnownEstimates are row counts for the TPC-W tables at 10k items, the
// workload the join strategies are usually compared on.
var KnownEstimates = map[string]uint64{
	"address":            576_000,
	"author":             2_500,
	"cc_xacts":           259_200,
	"country":            92,
	"customer":           288_000,
	"item":               10_000,
	"order_line":         777_600,
	"orders":             259_200,
	"shopping_cart":      10_000,
	"shopping_cart_line": 30_000,
}

// Estimates is a name to row count lookup with a fallback for unknown names.
type Estimates struct {
	Known   map[string]uint64
	Default uint64
}

func DefaultEstimates() Estimates {
	return Estimates{
		Known:   maps.Clone(KnownEstimates),
		Default: DefaultEstimate,
	}
}

func (e Estimates) Estimate(table string) uint64 {
	if rows, ok := e.Known[table]; ok {
		return rows
	}
	return e.Default
}

// Catalog keeps the column list of every base table and creates their nodes.
type Catalog struct {
	columns   map[string]operators.Columns
	estimates Estimates
}

func NewCatalog(estimates Estimates) *Catalog {
	return &Catalog{
		columns:   make(map[string]operators.Columns),
		estimates: estimates,
	}
}

// RegisterTable records the columns of table name and appends its base node
// to g. The node's row estimate comes from the catalog's Estimates.
func (c *Catalog) RegisterTable(g *operators.Graph, name string, columns operators.Columns, pk operators.Column) *operators.Node {
	c.columns[name] = slices.Clone(columns)
	return g.AddTable(name, columns, pk, c.estimates.Estimate(name))
}

func (c *Catalog) Columns(table string) (operators.Columns, bool) {
	cols, ok := c.columns[table]
	return cols, ok
}

func (c *Catalog) Tables() []string {
	tables := maps.Keys(c.columns)
	slices.Sort(tables)
	return tables
}

func (c *Catalog) Estimates() Estimates {
	return c.estimates
}
