package computed

import (
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"memo.elv.sh/pkg/persistent/hashmap"
	"memo.elv.sh/pkg/state"
	"memo.elv.sh/pkg/vals"
)

// Object is base data made observable, augmented with computed fields. It is
// safe for concurrent use; each field serializes its own recomputation.
//
// Getters must not read computed fields of the Object they belong to.
type Object struct {
	tree    *state.Tree
	names   []string
	entries map[string]*entry
	opts    options
}

// Tree returns the observable base data. Mutations made through it are seen
// by the next read of every computed field that depends on them.
func (o *Object) Tree() *state.Tree {
	return o.tree
}

// Snapshot returns the current snapshot of the base data.
func (o *Object) Snapshot() state.Snapshot {
	return o.tree.Snapshot()
}

// Get returns the value of a field. For a computed field, the getter is
// called if this is the first read or if any value it read last time has
// changed since; otherwise the cached value is returned. Other names are
// looked up among the top-level keys of the base data.
func (o *Object) Get(name string) (any, error) {
	e, ok := o.entries[name]
	if !ok {
		return o.tree.Get(state.Path{name})
	}
	return e.get(o.tree.Snapshot(), &o.opts)
}

// Set assigns to a field. For a computed field, its setter is called with the
// base data; a field without a setter fails with a *ReadOnlyFieldError. Other
// names are set as top-level keys of the base data.
func (o *Object) Set(name string, v any) error {
	e, ok := o.entries[name]
	if !ok {
		return o.tree.Set(state.Path{name}, v)
	}
	if e.def.Set == nil {
		return &ReadOnlyFieldError{name}
	}
	return e.def.Set(o.tree, v)
}

// Value gets a field and asserts that its value has type V.
func Value[V any](o *Object, name string) (V, error) {
	var zero V
	v, err := o.Get(name)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(V)
	if !ok {
		return zero, &vals.WrongType{WantKind: fmt.Sprintf("%T", zero), GotKind: vals.Kind(v)}
	}
	return typed, nil
}

// Fields returns the names of the computed fields, in registration order.
func (o *Object) Fields() []string {
	return append([]string(nil), o.names...)
}

// IsComputed reports whether name is a computed field.
func (o *Object) IsComputed(name string) bool {
	_, ok := o.entries[name]
	return ok
}

// Has reports whether name is a computed field or a top-level key of the base
// data.
func (o *Object) Has(name string) bool {
	if o.IsComputed(name) {
		return true
	}
	m, _ := o.tree.Snapshot().Root().(vals.Map)
	return m != nil && hashmap.HasKey(m, name)
}

// Stats returns the statistics of a computed field, and whether name is a
// computed field.
func (o *Object) Stats(name string) (Stats, bool) {
	e, ok := o.entries[name]
	if !ok {
		return Stats{}, false
	}
	return e.getStats(), true
}

// Dependencies returns the paths that the cached value of a computed field
// was derived from, in sorted order. It returns nil if the field hasn't been
// successfully evaluated or is not a computed field.
func (o *Object) Dependencies(name string) []state.Path {
	e, ok := o.entries[name]
	if !ok {
		return nil
	}
	return e.dependencies()
}

// All returns the base data as plain Go data, with the value of every
// computed field added. All values are taken from the same snapshot. The
// computed fields are evaluated concurrently, and only when needed. The first
// error from a getter is returned.
func (o *Object) All() (map[string]any, error) {
	snap := o.tree.Snapshot()
	values := make([]any, len(o.names))
	var g errgroup.Group
	for i, name := range o.names {
		i, e := i, o.entries[name]
		g.Go(func() error {
			v, err := e.get(snap, &o.opts)
			values[i] = v
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all, _ := vals.ToGo(snap.Root()).(map[string]any)
	if all == nil {
		all = map[string]any{}
	}
	for i, name := range o.names {
		all[name] = vals.ToGo(values[i])
	}
	return all, nil
}

// MarshalJSON encodes the result of All.
func (o *Object) MarshalJSON() ([]byte, error) {
	all, err := o.All()
	if err != nil {
		return nil, err
	}
	return json.Marshal(all)
}

// guard rejects mutations of the base data that would shadow a computed
// field.
func (o *Object) guard(p state.Path) error {
	name, err := vals.MapKey(p[0])
	if err != nil {
		return nil
	}
	if _, ok := o.entries[name]; ok {
		return &DuplicateFieldError{name}
	}
	return nil
}
