// Package vals contains the value model of state trees.
//
// A state tree is built from the following Go types:
//
//   - nil, bool, int, float64 and string for leaves;
//
//   - [Map] (a persistent string-keyed map) and [List] (a persistent vector)
//     for containers.
//
// Containers are immutable; "modifying" one produces a new container that
// shares unchanged subtrees with the original. This makes a reference to the
// root of a tree a point-in-time snapshot, and makes identity of containers a
// cheap proxy for "nothing under here has changed" (see [Same]).
package vals

import (
	"fmt"

	"memo.elv.sh/pkg/persistent/hashmap"
	"memo.elv.sh/pkg/persistent/vector"
)

// Map is the map type of state trees.
type Map = hashmap.Map

// List is the list type of state trees.
type List = vector.Vector

var (
	// EmptyMap is an empty Map.
	EmptyMap = hashmap.Empty
	// EmptyList is an empty List.
	EmptyList = vector.Empty
)

// MakeMap builds a Map from alternating keys and values. It panics if the
// number of arguments is odd. The values are stored as is.
func MakeMap(a ...any) Map {
	if len(a)%2 == 1 {
		panic("odd number of arguments to MakeMap")
	}
	m := EmptyMap
	for i := 0; i < len(a); i += 2 {
		m = m.Assoc(a[i].(string), a[i+1])
	}
	return m
}

// MakeList builds a List from its arguments. The values are stored as is.
func MakeList(vs ...any) List {
	return vector.FromSlice(vs)
}

// Kind returns the kind of a value: one of "nil", "bool", "number",
// "string", "map" and "list". For other types, it returns the Go type name of
// the argument preceded by "!!".
func Kind(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case bool:
		return "bool"
	case int, float64:
		return "number"
	case string:
		return "string"
	case Map:
		return "map"
	case List:
		return "list"
	default:
		return fmt.Sprintf("!!%T", v)
	}
}

// IsContainer reports whether v is a Map or List.
func IsContainer(v any) bool {
	switch v.(type) {
	case Map, List:
		return true
	}
	return false
}

// Len returns the length of a container, or -1 if v is not a container.
func Len(v any) int {
	switch v := v.(type) {
	case Map:
		return v.Len()
	case List:
		return v.Len()
	}
	return -1
}
