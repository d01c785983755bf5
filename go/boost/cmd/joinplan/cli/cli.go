package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/planetscale/joinplan/go/boost/joinplan"
	"github.com/planetscale/joinplan/go/boost/joinplan/config"
	"github.com/planetscale/joinplan/go/boost/joinplan/operators"
)

type options struct {
	configPath string
	graphviz   string
	explain    bool
	validate   bool
	verbose    bool
}

// New returns the joinplan command. It compiles the statements of a recipe
// file into one operator graph and reports how many joins were shared.
func New() *cobra.Command {
	var (
		opts options
		log  *zap.Logger
	)

	cmd := &cobra.Command{
		Use:   "joinplan INPUT",
		Short: "Compile a recipe of SQL statements into a shared join graph",
		Long: `joinplan reads one statement per line from INPUT, compiles every table, view
and query into a single operator graph and prints how many joins were created
and reused. Lines of the form "VIEW name: SELECT ..." define named views.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, args []string) (err error) {
			if opts.verbose {
				log, err = zap.NewDevelopment()
			} else {
				log, err = zap.NewProduction()
			}
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			defer log.Sync() //nolint:errcheck
			return run(cmd, args[0], &opts, log)
		},
	}

	flags := cmd.Flags()
	config.RegisterFlags(flags)
	flags.StringVar(&opts.configPath, "config", "", "path to a config file (yaml, json or toml)")
	flags.StringVarP(&opts.graphviz, "graphviz", "g", "", "write the graph in dot format to this file, or '-' for stdout")
	flags.BoolVar(&opts.explain, "explain", false, "print the ancestor tree of every view and unnamed query")
	flags.BoolVar(&opts.validate, "validate", false, "check the structural invariants of the compiled graph")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log every planning decision")

	return cmd
}

func run(cmd *cobra.Command, input string, opts *options, log *zap.Logger) error {
	cfg, err := config.Load(opts.configPath, cmd.Flags())
	if err != nil {
		return err
	}

	statements, err := loadRecipe(input)
	if err != nil {
		return err
	}
	log.Info("loaded recipe", zap.String("input", input), zap.Int("statements", len(statements)))

	out, closeOut, err := graphvizOutput(cmd, opts.graphviz)
	if err != nil {
		return err
	}
	defer closeOut()

	session, result, compileErr := joinplan.Compile(log, statements, cfg, out)

	w := cmd.OutOrStdout()
	writeSummary(w, cfg, len(statements), result)

	if opts.explain {
		for _, idx := range session.Graph.Sinks() {
			fmt.Fprint(w, operators.Explain(session.Graph, idx))
		}
	}
	if opts.validate {
		if err := operators.Validate(session.Graph); err != nil {
			return err
		}
		fmt.Fprintf(w, "graph is valid (%d nodes)\n", session.Graph.Len())
	}
	return compileErr
}

func loadRecipe(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return joinplan.LoadRecipe(f)
}

func graphvizOutput(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	switch path {
	case "":
		return nil, func() {}, nil
	case "-":
		return cmd.OutOrStdout(), func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func writeSummary(w io.Writer, cfg *config.Config, loaded int, result joinplan.Result) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"label", "strategy", "loaded", "succeeded", "failed", "nodes", "joins", "distinct", "created", "reused"})
	table.Append([]string{
		cfg.Label,
		cfg.Strategy.String(),
		fmt.Sprint(loaded),
		fmt.Sprint(result.Succeeded),
		fmt.Sprint(result.Failed),
		fmt.Sprint(result.Nodes),
		fmt.Sprint(result.Joins),
		fmt.Sprint(result.DistinctJoins),
		fmt.Sprint(result.JoinsCreated),
		fmt.Sprint(result.JoinsReused),
	})
	table.Render()
}
