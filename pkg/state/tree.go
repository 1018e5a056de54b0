// Package state implements observable state trees.
//
// A [Tree] holds a mutable reference to an immutable value built from the
// types of package vals. Mutations replace the root with a new value that
// shares every untouched subtree with the old one, so taking a [Snapshot] is
// O(1) and snapshots never change after they are taken.
package state

import (
	"sync"

	"memo.elv.sh/pkg/logutil"
	"memo.elv.sh/pkg/vals"
)

var logger = logutil.GetLogger("[state] ")

// Tree is an observable mutable state tree. Its root is always a map. It is
// safe for concurrent use.
type Tree struct {
	mu      sync.RWMutex
	root    vals.Map
	version uint64
	guard   func(Path) error

	watchersMu  sync.Mutex
	watchers    map[int]func(Snapshot)
	nextWatcher int
}

// Option configures a Tree.
type Option func(*Tree)

// WithGuard installs a function that is consulted before each mutation with
// the path being mutated. If it returns a non-nil error, the mutation fails
// with that error and the tree is left unchanged.
func WithGuard(guard func(Path) error) Option {
	return func(t *Tree) { t.guard = guard }
}

// New makes an observable tree out of plain Go data or a vals.Map. The
// initial value must convert to a map.
func New(init any, opts ...Option) (*Tree, error) {
	v, err := vals.FromGo(init)
	if err != nil {
		return nil, err
	}
	if v == nil {
		v = vals.EmptyMap
	}
	root, ok := v.(vals.Map)
	if !ok {
		return nil, ErrRootNotMap
	}
	t := &Tree{root: root, watchers: make(map[int]func(Snapshot))}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Snapshot returns the current state of the tree. Two snapshots taken with no
// effective mutation in between have the identical root.
func (t *Tree) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Snapshot{t.root, t.version}
}

// Version returns the number of effective mutations made to the tree.
func (t *Tree) Version() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.version
}

// Get returns the value at p.
func (t *Tree) Get(p Path) (any, error) {
	return t.Snapshot().Get(p)
}

// Set associates p with v. The value is converted with vals.FromGo. Missing
// intermediate maps are created. Setting a value that is already there (as
// judged by vals.Same) is not an effective mutation.
func (t *Tree) Set(p Path, v any) error {
	converted, err := vals.FromGo(v)
	if err != nil {
		return &PathError{"set", p, err}
	}
	return t.mutate("set", p, func(root vals.Map) (any, error) {
		return setIn(root, p, converted)
	})
}

// Delete removes the value at p. The parent of p must exist, but deleting a
// map key that doesn't exist is not an error. Deleting from a list shifts the
// following elements down.
func (t *Tree) Delete(p Path) error {
	return t.mutate("delete", p, func(root vals.Map) (any, error) {
		return updateIn(root, p, func(parent any, k any) (any, error) {
			return deleteFrom(parent, k)
		})
	})
}

// Append appends v to the list at p. If p doesn't exist, a list containing
// just v is created.
func (t *Tree) Append(p Path, v any) error {
	converted, err := vals.FromGo(v)
	if err != nil {
		return &PathError{"append", p, err}
	}
	return t.mutate("append", p, func(root vals.Map) (any, error) {
		old, err := getIn(root, p, "append")
		if err != nil {
			if !vals.IsNoSuchKey(err) {
				return nil, err
			}
			old = vals.EmptyList
		}
		l, ok := old.(vals.List)
		if !ok {
			return nil, ErrNotList
		}
		return setIn(root, p, l.Conj(converted))
	})
}

// Update replaces the value at p with the result of calling f with the old
// value, or nil if p doesn't exist. The function is called without any lock
// held, and may be called again if the tree is mutated concurrently.
func (t *Tree) Update(p Path, f func(old any) (any, error)) error {
	if len(p) == 0 {
		return &PathError{"update", p, ErrEmptyPath}
	}
	for {
		snap := t.Snapshot()
		old, err := snap.Get(p)
		if err != nil && !vals.IsNoSuchKey(err) {
			return err
		}
		v, err := f(old)
		if err != nil {
			return err
		}
		converted, err := vals.FromGo(v)
		if err != nil {
			return &PathError{"update", p, err}
		}
		retry := false
		err = t.mutate("update", p, func(root vals.Map) (any, error) {
			if root != snap.root {
				retry = true
				return root, nil
			}
			return setIn(root, p, converted)
		})
		if !retry {
			return err
		}
	}
}

// Watch registers f to be called with a new snapshot after each effective
// mutation. Calls happen synchronously on the goroutine that mutated the
// tree, after its lock has been released. It returns a function that cancels
// the registration.
func (t *Tree) Watch(f func(Snapshot)) (cancel func()) {
	t.watchersMu.Lock()
	defer t.watchersMu.Unlock()
	id := t.nextWatcher
	t.nextWatcher++
	t.watchers[id] = f
	return func() {
		t.watchersMu.Lock()
		defer t.watchersMu.Unlock()
		delete(t.watchers, id)
	}
}

func (t *Tree) mutate(op string, p Path, f func(vals.Map) (any, error)) error {
	if len(p) == 0 {
		return &PathError{op, p, ErrEmptyPath}
	}
	if t.guard != nil {
		if err := t.guard(p); err != nil {
			return err
		}
	}
	t.mu.Lock()
	newRoot, err := f(t.root)
	if err != nil {
		t.mu.Unlock()
		return wrapPathError(op, p, err)
	}
	if vals.Same(newRoot, t.root) {
		t.mu.Unlock()
		return nil
	}
	t.root = newRoot.(vals.Map)
	t.version++
	snap := Snapshot{t.root, t.version}
	t.mu.Unlock()

	logger.Printf("%s %s -> version %d", op, p, snap.version)
	t.notify(snap)
	return nil
}

func (t *Tree) notify(snap Snapshot) {
	t.watchersMu.Lock()
	fs := make([]func(Snapshot), 0, len(t.watchers))
	for _, f := range t.watchers {
		fs = append(fs, f)
	}
	t.watchersMu.Unlock()
	for _, f := range fs {
		f(snap)
	}
}

func wrapPathError(op string, p Path, err error) error {
	if _, ok := err.(*PathError); ok {
		return err
	}
	return &PathError{op, p, err}
}
