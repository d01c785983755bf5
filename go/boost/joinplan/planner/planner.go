package planner

import (
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/planetscale/joinplan/go/boost/common/dbg"
	"github.com/planetscale/joinplan/go/boost/graph"
	"github.com/planetscale/joinplan/go/boost/joinplan/config"
	"github.com/planetscale/joinplan/go/boost/joinplan/operators"
	"github.com/planetscale/joinplan/go/boost/joinplan/schema"
)

type Options struct {
	Reuse     bool
	SortNames bool
	Strategy  config.Strategy
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Reuse:     cfg.Reuse,
		SortNames: cfg.SortNames,
		Strategy:  cfg.Strategy,
	}
}

type Stats struct {
	JoinsCreated int
	JoinsReused  int
}

// Planner turns a list of relation names into a single node joining all of
// them, appending to the session graph only the joins it cannot reuse.
type Planner struct {
	log    *zap.Logger
	graph  *operators.Graph
	tables *schema.Registry
	opts   Options
	stats  Stats
}

type relation struct {
	name string
	idx  graph.NodeIdx
}

func New(log *zap.Logger, g *operators.Graph, tables *schema.Registry, opts Options) *Planner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Planner{
		log:    log.With(zap.Stringer("strategy", opts.Strategy)),
		graph:  g,
		tables: tables,
		opts:   opts,
	}
}

func (p *Planner) Stats() Stats {
	return p.stats
}

// PlanJoin returns the node joining every relation in names. Duplicate names
// are dropped, and names are sorted first when SortNames is set. All names
// must resolve through the registry; nothing is appended to the graph when
// one does not.
func (p *Planner) PlanJoin(names []string) (*operators.Node, error) {
	names = p.normalize(names)
	if len(names) == 0 {
		return nil, &EmptyJoinError{}
	}

	rels := make([]relation, 0, len(names))
	for _, name := range names {
		idx, err := p.tables.Resolve(name)
		if err != nil {
			return nil, err
		}
		rels = append(rels, relation{name: name, idx: idx})
	}

	var result *operators.Node
	switch p.opts.Strategy {
	case config.StrategyMegaJoin:
		result = p.megajoin(rels)
	case config.StrategyPermutations:
		result = p.permutations(rels)
	case config.StrategyNonPrefix:
		result = p.nonprefix(rels)
	case config.StrategyBaseline:
		result = p.baseline(rels)
	default:
		dbg.Bug("unknown join strategy %v", p.opts.Strategy)
	}

	p.log.Debug("planned join", zap.Strings("relations", names), result.Idx.Zap())
	return result, nil
}

func (p *Planner) normalize(names []string) []string {
	if p.opts.SortNames {
		names = slices.Clone(names)
		slices.Sort(names)
		return slices.Compact(names)
	}

	deduped := make([]string, 0, len(names))
	for _, name := range names {
		if !slices.Contains(deduped, name) {
			deduped = append(deduped, name)
		}
	}
	return deduped
}
