package state

import "errors"

var (
	// ErrEmptyPath is returned when mutating the root of a tree.
	ErrEmptyPath = errors.New("cannot mutate the root of the tree")
	// ErrNotList is returned by Append when the target is not a list.
	ErrNotList = errors.New("not a list")
	// ErrRootNotMap is returned by New when the initial value is not a map.
	ErrRootNotMap = errors.New("root of a state tree must be a map")
)

// PathError records an error and the operation and path that caused it.
type PathError struct {
	Op   string
	Path Path
	Err  error
}

func (e *PathError) Error() string {
	return e.Op + " " + e.Path.String() + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error { return e.Err }
