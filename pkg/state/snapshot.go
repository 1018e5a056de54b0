package state

import (
	"encoding/json"

	"memo.elv.sh/pkg/vals"
)

// Snapshot is an immutable point-in-time view of a Tree. It is unaffected by
// later mutations of the tree, and shares all unchanged subtrees with
// snapshots taken before and after it.
//
// The zero Snapshot has a nil root.
type Snapshot struct {
	root    any
	version uint64
}

// NewSnapshot returns a Snapshot of a state tree value. It is mostly useful
// in tests; snapshots of live trees come from [Tree.Snapshot].
func NewSnapshot(root any) Snapshot {
	return Snapshot{root: root}
}

// Root returns the root value of the snapshot.
func (s Snapshot) Root() any { return s.root }

// Version returns the version of the tree the snapshot was taken at.
func (s Snapshot) Version() uint64 { return s.version }

// Get returns the value at p.
func (s Snapshot) Get(p Path) (any, error) {
	return getIn(s.root, p, "get")
}

// MarshalJSON encodes the root value.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.root)
}

func getIn(v any, p Path, op string) (any, error) {
	for i, k := range p {
		var err error
		v, err = vals.Index(v, k)
		if err != nil {
			return nil, &PathError{op, p[:i+1], err}
		}
	}
	return v, nil
}
