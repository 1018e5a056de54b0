// Package hashmap implements a persistent string-keyed hashmap.
//
// The map is a hash array mapped trie: each level consumes 5 bits of the key's
// hash, and modifying operations copy only the nodes along the path to the
// modified entry, so that a modified map shares every other node with the
// original.
package hashmap

import (
	"bytes"
	"encoding/json"
	"sort"

	"memo.elv.sh/pkg/persistent/hash"
)

// Map is a persistent associative data structure mapping string keys to
// values. It is immutable, and supports near-O(1) operations to create
// modified versions of the map that share the underlying data structure.
// Because it is immutable, all of its methods are safe for concurrent use.
type Map interface {
	json.Marshaler
	// Len returns the length of the map.
	Len() int
	// Index returns the value associated with the given key, and whether such
	// a value exists.
	Index(k string) (any, bool)
	// Assoc returns an almost identical map, with the given key associated
	// with the given value.
	Assoc(k string, v any) Map
	// Dissoc returns an almost identical map, with the given key associated
	// with no value. If the key doesn't exist, the receiver is returned.
	Dissoc(k string) Map
	// Range calls f for each entry of the map in an unspecified but
	// deterministic order, until f returns false.
	Range(f func(k string, v any) bool)
}

// Empty is an empty Map.
var Empty Map = &hashMap{0, emptyBitmapNode}

// Can be overridden in tests to construct hash collisions.
var hashString = hash.String

// HasKey reports whether a Map has the given key.
func HasKey(m Map, k string) bool {
	_, ok := m.Index(k)
	return ok
}

// Keys returns the keys of a Map in sorted order.
func Keys(m Map) []string {
	keys := make([]string, 0, m.Len())
	m.Range(func(k string, _ any) bool {
		keys = append(keys, k)
		return true
	})
	sort.Strings(keys)
	return keys
}

// FromGo builds a Map from a Go map. The values are stored as is.
func FromGo(src map[string]any) Map {
	m := Empty
	for k, v := range src {
		m = m.Assoc(k, v)
	}
	return m
}

type hashMap struct {
	count int
	root  node
}

func (m *hashMap) Len() int {
	return m.count
}

func (m *hashMap) Index(k string) (any, bool) {
	return m.root.find(0, hashString(k), k)
}

func (m *hashMap) Assoc(k string, v any) Map {
	newRoot, added := m.root.assoc(0, hashString(k), k, v)
	newCount := m.count
	if added {
		newCount++
	}
	return &hashMap{newCount, newRoot}
}

func (m *hashMap) Dissoc(k string) Map {
	newRoot, removed := m.root.dissoc(0, hashString(k), k)
	if !removed {
		return m
	}
	if newRoot == nil {
		return Empty
	}
	return &hashMap{m.count - 1, newRoot}
}

func (m *hashMap) Range(f func(k string, v any) bool) {
	m.root.each(f)
}

func (m *hashMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range Keys(m) {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, _ := json.Marshal(k)
		buf.Write(keyBytes)
		buf.WriteByte(':')
		v, _ := m.Index(k)
		valueBytes, err := json.Marshal(v)
		if err != nil {
			return nil, &marshalError{k, err}
		}
		buf.Write(valueBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type marshalError struct {
	key   string
	cause error
}

func (err *marshalError) Error() string {
	return "key " + err.key + ": " + err.cause.Error()
}

func (err *marshalError) Unwrap() error { return err.cause }
