// Package computed augments a state tree with memoized derived fields.
//
// A computed field is defined by a [Getter], a pure function of a snapshot of
// the base data. The getter reads the snapshot through a tracking wrapper, so
// the exact paths it depends on are known. On each read of the field, those
// paths (and only those) are compared between the snapshot the cached value
// was computed from and the current one; the getter runs again only if one of
// them differs. A field that reads state.a.b therefore stays cached across
// any number of writes to state.c.
//
// Go has no way to install accessor properties on a value, so reads and
// writes go through [Object.Get] and [Object.Set]. Names that are not
// computed fields address the top-level keys of the base data, so an Object
// presents the combined shape of both.
//
// Getters must be pure: their result must depend only on what they read from
// the snapshot they are given. Setters must write through paths that the
// matching getter reads; no explicit invalidation happens on writes, the next
// read simply observes the change. Neither contract is enforced, though
// [WithPurityCheck] can catch some impure getters.
package computed

import (
	"errors"
	"fmt"
	"sort"

	"memo.elv.sh/pkg/logutil"
	"memo.elv.sh/pkg/persistent/hashmap"
	"memo.elv.sh/pkg/state"
	"memo.elv.sh/pkg/track"
	"memo.elv.sh/pkg/vals"
)

var logger = logutil.GetLogger("[computed] ")

// Getter computes the value of a field from a tracked snapshot of the base
// data. Any error it returns is passed to the caller of Get unchanged.
type Getter func(s track.Node) (any, error)

// Setter writes a value assigned to a field into the base data. Any error it
// returns is passed to the caller of Set unchanged.
type Setter func(t *state.Tree, v any) error

// Def is the definition of a computed field. It is implemented by Getter,
// for read-only fields, and by Field.
type Def interface {
	field() Field
}

// Field defines a computed field with an optional setter.
type Field struct {
	Get Getter
	Set Setter
}

func (f Field) field() Field { return f }

func (g Getter) field() Field { return Field{Get: g} }

// Fields maps field names to their definitions.
type Fields map[string]Def

// Named is a field definition with its name, for use with NewOrdered.
type Named struct {
	Name string
	Def  Def
}

// New makes an observable object from the initial data, which must convert
// to a map with vals.FromGo, and registers the computed fields, in sorted
// order of their names.
//
// It fails with a *DuplicateFieldError if a field name is also a key of the
// initial data. Registration is all-or-nothing: on any error, no Object is
// returned.
func New(init any, fields Fields, opts ...Option) (*Object, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	defs := make([]Named, len(names))
	for i, name := range names {
		defs[i] = Named{name, fields[name]}
	}
	return NewOrdered(init, defs, opts...)
}

// NewOrdered is like New, but registers the fields in the given order. A name
// that appears twice in defs is also a *DuplicateFieldError.
func NewOrdered(init any, defs []Named, opts ...Option) (*Object, error) {
	base, err := vals.FromGo(init)
	if err != nil {
		return nil, err
	}
	if base == nil {
		base = vals.EmptyMap
	}
	m, ok := base.(vals.Map)
	if !ok {
		return nil, ErrNotMap
	}

	o := &Object{entries: make(map[string]*entry, len(defs))}
	o.opts.logger = logger
	for _, opt := range opts {
		opt(&o.opts)
	}
	for _, d := range defs {
		var f Field
		if d.Def != nil {
			f = d.Def.field()
		}
		if f.Get == nil {
			return nil, fmt.Errorf("field %q: %w", d.Name, ErrNilGetter)
		}
		if _, dup := o.entries[d.Name]; dup || hashmap.HasKey(m, d.Name) {
			return nil, &DuplicateFieldError{d.Name}
		}
		o.entries[d.Name] = &entry{name: d.Name, def: f}
		o.names = append(o.names, d.Name)
	}

	// All fields are known before the base data becomes observable, so the
	// guard covers every mutation the tree will ever see.
	o.tree, err = state.New(m, state.WithGuard(o.guard))
	if err != nil {
		return nil, err
	}
	return o, nil
}

var (
	// ErrNotMap is returned by New when the initial data is not a map.
	ErrNotMap = errors.New("initial data must be a map")
	// ErrNilGetter is returned by New when a field has no getter.
	ErrNilGetter = errors.New("computed field has no getter")
)

// DuplicateFieldError is returned when a computed field name collides with a
// key of the base data, or with another computed field.
type DuplicateFieldError struct {
	Name string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("computed field %q collides with an existing field", e.Name)
}

// ReadOnlyFieldError is returned when assigning to a computed field that has
// no setter.
type ReadOnlyFieldError struct {
	Name string
}

func (e *ReadOnlyFieldError) Error() string {
	return fmt.Sprintf("computed field %q is read-only", e.Name)
}

// ImpureGetterError is returned when WithPurityCheck is in effect and a
// getter returns different values for the same snapshot.
type ImpureGetterError struct {
	Name          string
	First, Second any
}

func (e *ImpureGetterError) Error() string {
	return fmt.Sprintf("getter of computed field %q is impure: got %s, then %s",
		e.Name, vals.Repr(e.First), vals.Repr(e.Second))
}
