package dbg

import "fmt"

// Assert panics when an internal invariant does not hold. It is reserved for
// programmer errors; conditions caused by user input are returned as errors.
func Assert(assertion bool, message string, args ...any) {
	if !assertion {
		panic(fmt.Errorf("invariant violated: "+message, args...))
	}
}

func Bug(message string, args ...any) {
	panic(fmt.Errorf("bug: "+message, args...))
}
