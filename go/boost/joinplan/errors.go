package joinplan

import (
	"fmt"

	"vitess.io/vitess/go/vt/sqlparser"
)

// SyntaxError is a statement the Parser could not turn into an AST. It is
// tallied as a failure and does not stop the stream.
type SyntaxError struct {
	Err   error
	Query string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error parsing %q: %v", e.Query, e.Err)
}

func (e *SyntaxError) Cause() error {
	return e.Err
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// UnsupportedStatementError is a parsed statement of a kind the compiler
// neither compiles nor ignores, e.g. a top-level UNION. Like a SyntaxError it
// is tallied as a failure.
type UnsupportedStatementError struct {
	Statement sqlparser.Statement
}

func (e *UnsupportedStatementError) Error() string {
	return fmt.Sprintf("unsupported statement type %T: %s", e.Statement, sqlparser.String(e.Statement))
}

// FailedStatementsError is returned by Compile when at least one statement
// failed to parse or was of an unsupported kind.
type FailedStatementsError struct {
	Failed, Total int
	Err           error
}

func (e *FailedStatementsError) Error() string {
	return fmt.Sprintf("%d of %d statements failed: %v", e.Failed, e.Total, e.Err)
}

func (e *FailedStatementsError) Unwrap() error {
	return e.Err
}
