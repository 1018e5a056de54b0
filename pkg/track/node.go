package track

import (
	"memo.elv.sh/pkg/persistent/hashmap"
	"memo.elv.sh/pkg/state"
	"memo.elv.sh/pkg/vals"
)

// Node is a read-only view of one position in a snapshot. Each read through a
// Node is logged into the Record the root Node was created with.
//
// Reading a missing position is not an error by itself: Index returns a Node
// for which Exists is false, and the typed accessors return an error. The
// access is still recorded, so that a later appearance of the value is seen
// as a change.
type Node struct {
	value  any
	exists bool
	path   state.Path
	rec    *recNode
}

// Wrap returns the tracked root Node of snap, logging into rec.
func Wrap(snap state.Snapshot, rec *Record) Node {
	return Node{snap.Root(), true, state.Path{}, rec.root}
}

// Index returns the child at key k. Keys other than strings and ints never
// address anything, so indexing with them records nothing.
func (n Node) Index(k any) Node {
	k = normalizeKey(n.value, k)
	switch k.(type) {
	case string, int:
	default:
		return Node{nil, false, n.path.Child(k), &recNode{}}
	}
	v, err := vals.Index(n.value, k)
	return Node{v, err == nil, n.path.Child(k), n.rec.child(k)}
}

// Path indexes the Node with each element of p in turn.
func (n Node) Path(p state.Path) Node {
	for _, k := range p {
		n = n.Index(k)
	}
	return n
}

// At is like Path, with the path parsed by state.ParsePath.
func (n Node) At(path string) Node {
	return n.Path(state.ParsePath(path))
}

// Exists reports whether the position holds a value.
func (n Node) Exists() bool {
	return n.exists
}

// Value returns the value at the position, or nil if it doesn't exist. The
// whole value counts as read, so for containers any change inside it is
// significant.
func (n Node) Value() any {
	n.rec.whole = true
	return n.value
}

// Get is like Value, but fails if the position doesn't exist.
func (n Node) Get() (any, error) {
	n.rec.whole = true
	if err := n.check(); err != nil {
		return nil, err
	}
	return n.value, nil
}

// Int returns the value as an int.
func (n Node) Int() (int, error) {
	n.rec.whole = true
	if err := n.check(); err != nil {
		return 0, err
	}
	if i, ok := n.value.(int); ok {
		return i, nil
	}
	return 0, n.wrongType("int")
}

// Float returns the value as a float64. Ints are converted.
func (n Node) Float() (float64, error) {
	n.rec.whole = true
	if err := n.check(); err != nil {
		return 0, err
	}
	switch v := n.value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	}
	return 0, n.wrongType("number")
}

// Str returns the value as a string.
func (n Node) Str() (string, error) {
	n.rec.whole = true
	if err := n.check(); err != nil {
		return "", err
	}
	if s, ok := n.value.(string); ok {
		return s, nil
	}
	return "", n.wrongType("string")
}

// Bool returns the value as a bool.
func (n Node) Bool() (bool, error) {
	n.rec.whole = true
	if err := n.check(); err != nil {
		return false, err
	}
	if b, ok := n.value.(bool); ok {
		return b, nil
	}
	return false, n.wrongType("bool")
}

// Len returns the number of elements of a container, or 0 for other values.
// Only the length counts as read.
func (n Node) Len() int {
	n.rec.shape = true
	if l := vals.Len(n.value); l > 0 {
		return l
	}
	return 0
}

// Keys returns the keys of a map in sorted order, or nil for other values.
// Only the key set counts as read.
func (n Node) Keys() []string {
	n.rec.shape = true
	if m, ok := n.value.(vals.Map); ok {
		return hashmap.Keys(m)
	}
	return nil
}

// Each calls f with each key and child of a container, in key order for maps
// and index order for lists, until f returns false. The key set counts as
// read, and each child is indexed as with Index.
func (n Node) Each(f func(k any, child Node) bool) {
	n.rec.shape = true
	switch v := n.value.(type) {
	case vals.Map:
		for _, k := range hashmap.Keys(v) {
			if !f(k, n.Index(k)) {
				return
			}
		}
	case vals.List:
		for i := 0; i < v.Len(); i++ {
			if !f(i, n.Index(i)) {
				return
			}
		}
	}
}

func (n Node) check() error {
	if n.exists || len(n.path) == 0 {
		return nil
	}
	return &state.PathError{Op: "read", Path: n.path, Err: vals.NoSuchKey(n.path[len(n.path)-1])}
}

func (n Node) wrongType(want string) error {
	return &state.PathError{Op: "read", Path: n.path,
		Err: &vals.WrongType{WantKind: want, GotKind: vals.Kind(n.value)}}
}

// normalizeKey converts k to the form the container v is indexed with, so
// that "0" and 0 record the same access. Keys for non-containers are kept as
// is.
func normalizeKey(v, k any) any {
	switch v.(type) {
	case vals.Map:
		if s, err := vals.MapKey(k); err == nil {
			return s
		}
	case vals.List:
		if i, err := vals.ListIndex(k); err == nil {
			return i
		}
	}
	return k
}
