package joinplan

import (
	"vitess.io/vitess/go/vt/sqlparser"
)

// Parser turns the text of one statement into its AST.
type Parser interface {
	Parse(sql string) (sqlparser.Statement, error)
}

type ParserFunc func(sql string) (sqlparser.Statement, error)

func (f ParserFunc) Parse(sql string) (sqlparser.Statement, error) {
	return f(sql)
}

// SQLParser parses MySQL syntax with the Vitess parser.
var SQLParser Parser = ParserFunc(sqlparser.Parse)
