package schema

import "fmt"

// UnknownTableError is returned when a query references a relation that was
// never registered. The compilation run stops at the first one.
type UnknownTableError struct {
	Table string
}

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("unknown table: %s", e.Table)
}
