package internal

import "fmt"

// InvariantError is a fatal programming error. It is raised as a panic and is
// not meant to be recovered by this package.
type InvariantError struct {
	msg string
}

func (e *InvariantError) Error() string {
	return "reconcile: invariant violation: " + e.msg
}

func invariant(cond bool, format string, args ...any) {
	if !cond {
		panic(&InvariantError{msg: fmt.Sprintf(format, args...)})
	}
}
