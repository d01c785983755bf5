package joinplan

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

var commentPrefixes = []string{"#", "--", "/*"}

// LoadRecipe reads one statement per line from r. Blank lines and lines that
// start a comment are skipped. Named queries written as
//
//	VIEW name: SELECT ...
//	QUERY name: SELECT ...
//
// are rewritten into CREATE VIEW statements.
func LoadRecipe(r io.Reader) ([]string, error) {
	var statements []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for lineno := 1; scanner.Scan(); lineno++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || isComment(line) {
			continue
		}

		stmt, err := rewriteNamedQuery(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineno, err)
		}
		statements = append(statements, strings.TrimSuffix(stmt, ";"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return statements, nil
}

func isComment(line string) bool {
	for _, prefix := range commentPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

func rewriteNamedQuery(line string) (string, error) {
	for _, keyword := range []string{"VIEW ", "QUERY "} {
		rest, ok := strings.CutPrefix(line, keyword)
		if !ok {
			continue
		}
		name, body, ok := strings.Cut(rest, ":")
		if !ok {
			return "", fmt.Errorf("named query %q has no ':' separator", line)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return "", fmt.Errorf("named query %q has no name", line)
		}
		return fmt.Sprintf("CREATE VIEW %s AS %s", name, strings.TrimSpace(body)), nil
	}
	return line, nil
}
