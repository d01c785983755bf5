package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/exp/maps"

	"github.com/planetscale/joinplan/go/boost/joinplan/schema"
)

// Strategy selects how the planner orders joins and looks for reusable
// subgraphs.
type Strategy int

const (
	StrategyBaseline Strategy = iota
	StrategyNonPrefix
	StrategyPermutations
	StrategyMegaJoin
)

var strategyNames = map[Strategy]string{
	StrategyBaseline:     "baseline",
	StrategyNonPrefix:    "nonprefix",
	StrategyPermutations: "permutations",
	StrategyMegaJoin:     "megajoin",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// Set implements pflag.Value for Strategy
func (s *Strategy) Set(strVal string) error {
	for strategy, name := range strategyNames {
		if name == strVal {
			*s = strategy
			return nil
		}
	}
	return fmt.Errorf("invalid join strategy: %q", strVal)
}

// Type implements pflag.Value for Strategy
func (s *Strategy) Type() string {
	return "strategy"
}

// StrategyFromFlags collapses the individual strategy switches into one
// strategy. When several are enabled the first one in the order megajoin,
// permutations, nonprefix wins; with none enabled the baseline is used.
func StrategyFromFlags(megajoin, permutations, nonprefix bool) Strategy {
	switch {
	case megajoin:
		return StrategyMegaJoin
	case permutations:
		return StrategyPermutations
	case nonprefix:
		return StrategyNonPrefix
	default:
		return StrategyBaseline
	}
}

type Config struct {
	// Reuse enables looking up existing joins before creating new ones.
	Reuse bool
	// SortNames sorts the relations of every FROM list before planning so that
	// lists naming the same tables in different orders produce the same joins.
	SortNames bool
	Strategy  Strategy

	DefaultEstimate uint64
	Estimates       map[string]uint64

	// Label tags a compilation run in logs and reports.
	Label string
}

func DefaultConfig() *Config {
	return &Config{
		Reuse:           false,
		SortNames:       false,
		Strategy:        StrategyBaseline,
		DefaultEstimate: schema.DefaultEstimate,
		Estimates:       maps.Clone(schema.KnownEstimates),
		Label:           "undefined",
	}
}

func (cfg *Config) SchemaEstimates() schema.Estimates {
	return schema.Estimates{
		Known:   maps.Clone(cfg.Estimates),
		Default: cfg.DefaultEstimate,
	}
}

// RegisterFlags adds the configuration flags to fs. Load reads them back, so
// the same flag set can be handed to both.
func RegisterFlags(fs *pflag.FlagSet) {
	def := DefaultConfig()
	fs.BoolP("overlap", "o", def.Reuse, "Whether to attempt to reuse overlap with previous queries")
	fs.BoolP("sorted", "s", def.SortNames, "Whether to sort names of joined tables to aid in overlap")
	fs.BoolP("permutations", "p", false, "Whether to try all permutations of joined tables when looking for overlap")
	fs.BoolP("nonprefix", "n", false, "Whether to look for overlap in a non-topological way")
	fs.BoolP("megajoin", "m", false, "Whether to outer-join everything to maximize overlap")
	fs.String("strategy", "", "join strategy (baseline, nonprefix, permutations, megajoin); overrides the individual strategy flags")
	fs.Uint64("default-estimate", def.DefaultEstimate, "row estimate for tables without a known size")
	fs.StringP("label", "l", def.Label, "label for this compilation run")
}

// Load builds a Config from, in decreasing priority, flags that were set
// explicitly, the optional config file at path, and DefaultConfig.
// Config files use the flag names as keys plus an `estimates` table of
// per-table row counts. Table names in that table are lower-cased.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, err
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	if v.IsSet("overlap") {
		cfg.Reuse = v.GetBool("overlap")
	}
	if v.IsSet("sorted") {
		cfg.SortNames = v.GetBool("sorted")
	}
	cfg.Strategy = StrategyFromFlags(v.GetBool("megajoin"), v.GetBool("permutations"), v.GetBool("nonprefix"))
	if strategy := v.GetString("strategy"); strategy != "" {
		if err := cfg.Strategy.Set(strategy); err != nil {
			return nil, err
		}
	}
	if v.IsSet("default-estimate") {
		cfg.DefaultEstimate = v.GetUint64("default-estimate")
	}
	if v.IsSet("label") {
		cfg.Label = v.GetString("label")
	}
	if estimates := v.Sub("estimates"); estimates != nil {
		for _, table := range estimates.AllKeys() {
			cfg.Estimates[table] = estimates.GetUint64(table)
		}
	}
	return cfg, nil
}
