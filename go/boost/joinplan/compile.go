package joinplan

import (
	"errors"
	"io"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/planetscale/joinplan/go/boost/joinplan/config"
	"github.com/planetscale/joinplan/go/boost/joinplan/operators"
)

type Result struct {
	Succeeded int
	Failed    int

	// Nodes is the size of the graph after the run.
	Nodes int

	JoinsCreated int
	JoinsReused  int

	// Joins counts the join nodes in the graph and DistinctJoins the number of
	// distinct base table sets they cover. The two differ when the same tables
	// were joined more than once.
	Joins         int
	DistinctJoins int
}

// CompileStream parses and compiles statements in order. Statements that do
// not parse and statements of unsupported kinds are counted as failures and
// their errors combined into the returned error. Any other error stops the
// stream: it is returned together with the counts up to that statement, and
// the nodes appended so far stay in the graph.
func (c *Compiler) CompileStream(statements []string) (Result, error) {
	var result Result
	var failures error

	for _, sql := range statements {
		err := c.compileOne(sql)
		switch {
		case err == nil:
			result.Succeeded++
		case isTallied(err):
			result.Failed++
			failures = multierr.Append(failures, err)
			c.log.Warn("failed to compile statement", zap.Error(err))
		default:
			c.fillResult(&result)
			return result, err
		}
	}

	c.fillResult(&result)
	return result, failures
}

func (c *Compiler) compileOne(sql string) error {
	stmt, err := c.parser.Parse(sql)
	if err != nil {
		return &SyntaxError{Err: err, Query: sql}
	}
	return c.CompileStatement(stmt)
}

func isTallied(err error) bool {
	var syntax *SyntaxError
	var unsupported *UnsupportedStatementError
	return errors.As(err, &syntax) || errors.As(err, &unsupported)
}

func (c *Compiler) fillResult(result *Result) {
	g := c.session.Graph
	stats := c.planner.Stats()

	result.Nodes = g.Len()
	result.JoinsCreated = stats.JoinsCreated
	result.JoinsReused = stats.JoinsReused

	signatures := make(map[operators.Hash]struct{})
	for _, join := range g.FindAll((*operators.Node).IsJoin) {
		signatures[g.Signature(join.Idx)] = struct{}{}
		result.Joins++
	}
	result.DistinctJoins = len(signatures)
}

// Compile runs a whole session over statements and, when out is not nil,
// writes the resulting graph to it in dot format. It fails when any statement
// failed, after rendering the graph.
func Compile(log *zap.Logger, statements []string, cfg *config.Config, out io.Writer) (*Session, Result, error) {
	session := NewSession(log, cfg)
	compiler := NewCompiler(session, cfg, SQLParser)

	result, err := compiler.CompileStream(statements)
	if err != nil && !isTallied(err) {
		return session, result, err
	}

	if out != nil {
		operators.RenderGraphViz(out, session.Graph)
	}

	session.log.Info("compilation finished",
		zap.Stringer("strategy", cfg.Strategy),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
		zap.Int("nodes", result.Nodes),
		zap.Int("joins.created", result.JoinsCreated),
		zap.Int("joins.reused", result.JoinsReused),
	)

	if result.Failed > 0 {
		return session, result, &FailedStatementsError{
			Failed: result.Failed,
			Total:  len(statements),
			Err:    err,
		}
	}
	return session, result, nil
}
