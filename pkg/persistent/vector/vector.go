// Package vector implements a persistent vector.
//
// The vector is a trie with a branching factor of 32, plus a tail holding
// the last (up to 32) elements outside of the trie, in the manner of
// Clojure's PersistentVector. Modifying operations copy the path from the
// root to the modified leaf and share all other nodes.
package vector

import (
	"bytes"
	"encoding/json"
	"strconv"
)

const (
	chunkBits = 5
	nodeSize  = 1 << chunkBits
	chunkMask = nodeSize - 1
)

// Vector is a persistent sequential container for arbitrary values. It
// supports near-O(1) lookup by index, modification by index, and insertion
// and removal at the end, each producing a new Vector that shares most of its
// structure with the original. Being immutable, it is safe for concurrent
// use.
type Vector interface {
	json.Marshaler
	// Len returns the length of the vector.
	Len() int
	// Index returns the i-th element of the vector and whether it exists.
	Index(i int) (any, bool)
	// Assoc returns an almost identical Vector with the i-th element
	// replaced. If i equals the length of the vector, it is equivalent to
	// Conj. If i is out of range otherwise, it returns nil.
	Assoc(i int, v any) Vector
	// Conj returns an almost identical Vector with v appended.
	Conj(v any) Vector
	// Pop returns an almost identical Vector with the last element removed. It
	// returns nil if the vector is empty.
	Pop() Vector
	// Range calls f with each index and element in order, until f returns
	// false.
	Range(f func(i int, v any) bool)
}

// trieNode is a node of the trie. Elements of leaf nodes are vector elements;
// elements of inner nodes are *trieNode or nil.
type trieNode [nodeSize]any

type vector struct {
	count int
	// shift of the root level; the root is always an inner node.
	shift uint
	root  *trieNode
	tail  []any
}

// Empty is an empty Vector.
var Empty Vector = &vector{shift: chunkBits, root: &trieNode{}}

// FromSlice builds a Vector with the elements of s.
func FromSlice(s []any) Vector {
	v := Empty
	for _, elem := range s {
		v = v.Conj(elem)
	}
	return v
}

func (v *vector) Len() int {
	return v.count
}

// tailOffset returns the index of the first element in the tail.
func (v *vector) tailOffset() int {
	if v.count < nodeSize {
		return 0
	}
	return ((v.count - 1) >> chunkBits) << chunkBits
}

// leafFor returns the elements of the leaf containing the i-th element. The
// index must be in range.
func (v *vector) leafFor(i int) []any {
	if i >= v.tailOffset() {
		return v.tail
	}
	n := v.root
	for level := v.shift; level > 0; level -= chunkBits {
		n = n[(i>>level)&chunkMask].(*trieNode)
	}
	return n[:]
}

func (v *vector) Index(i int) (any, bool) {
	if i < 0 || i >= v.count {
		return nil, false
	}
	return v.leafFor(i)[i&chunkMask], true
}

func (v *vector) Assoc(i int, val any) Vector {
	switch {
	case i < 0 || i > v.count:
		return nil
	case i == v.count:
		return v.Conj(val)
	case i >= v.tailOffset():
		newTail := append([]any(nil), v.tail...)
		newTail[i&chunkMask] = val
		return &vector{v.count, v.shift, v.root, newTail}
	}
	return &vector{v.count, v.shift, assocIn(v.shift, v.root, i, val), v.tail}
}

func assocIn(level uint, n *trieNode, i int, val any) *trieNode {
	m := *n
	if level == 0 {
		m[i&chunkMask] = val
	} else {
		sub := (i >> level) & chunkMask
		m[sub] = assocIn(level-chunkBits, n[sub].(*trieNode), i, val)
	}
	return &m
}

func (v *vector) Conj(val any) Vector {
	if v.count-v.tailOffset() < nodeSize {
		newTail := make([]any, len(v.tail)+1)
		copy(newTail, v.tail)
		newTail[len(v.tail)] = val
		return &vector{v.count + 1, v.shift, v.root, newTail}
	}
	// The tail is full; move it into the trie.
	var leaf trieNode
	copy(leaf[:], v.tail)
	newShift := v.shift
	var newRoot *trieNode
	if (v.count >> chunkBits) > (1 << v.shift) {
		// The trie is full at this height; grow a new root.
		newRoot = &trieNode{}
		newRoot[0] = v.root
		newRoot[1] = pathTo(v.shift, &leaf)
		newShift += chunkBits
	} else {
		newRoot = v.pushLeaf(v.shift, v.root, &leaf)
	}
	return &vector{v.count + 1, newShift, newRoot, []any{val}}
}

// pushLeaf returns a copy of n with leaf inserted as its rightmost leaf.
func (v *vector) pushLeaf(level uint, n *trieNode, leaf *trieNode) *trieNode {
	m := *n
	sub := ((v.count - 1) >> level) & chunkMask
	switch {
	case level == chunkBits:
		m[sub] = leaf
	case n[sub] == nil:
		m[sub] = pathTo(level-chunkBits, leaf)
	default:
		m[sub] = v.pushLeaf(level-chunkBits, n[sub].(*trieNode), leaf)
	}
	return &m
}

// pathTo returns a chain of inner nodes of the given height ending in leaf.
func pathTo(level uint, leaf *trieNode) *trieNode {
	if level == 0 {
		return leaf
	}
	n := &trieNode{}
	n[0] = pathTo(level-chunkBits, leaf)
	return n
}

func (v *vector) Pop() Vector {
	switch v.count {
	case 0:
		return nil
	case 1:
		return Empty
	}
	if v.count-v.tailOffset() > 1 {
		newTail := make([]any, len(v.tail)-1)
		copy(newTail, v.tail)
		return &vector{v.count - 1, v.shift, v.root, newTail}
	}
	// The tail becomes empty; the rightmost leaf of the trie becomes the new
	// tail.
	newTail := v.leafFor(v.count - 2)
	newRoot := v.popLeaf(v.shift, v.root)
	newShift := v.shift
	if newRoot == nil {
		newRoot = &trieNode{}
	}
	if newShift > chunkBits && newRoot[1] == nil {
		newRoot = newRoot[0].(*trieNode)
		newShift -= chunkBits
	}
	return &vector{v.count - 1, newShift, newRoot, newTail}
}

// popLeaf returns a copy of n without its rightmost leaf, or nil if nothing
// would be left.
func (v *vector) popLeaf(level uint, n *trieNode) *trieNode {
	sub := ((v.count - 2) >> level) & chunkMask
	if level > chunkBits {
		newChild := v.popLeaf(level-chunkBits, n[sub].(*trieNode))
		if newChild == nil && sub == 0 {
			return nil
		}
		m := *n
		if newChild == nil {
			// Assigning a nil *trieNode would store a non-nil interface.
			m[sub] = nil
		} else {
			m[sub] = newChild
		}
		return &m
	}
	if sub == 0 {
		return nil
	}
	m := *n
	m[sub] = nil
	return &m
}

func (v *vector) Range(f func(i int, v any) bool) {
	for base := 0; base < v.count; base += nodeSize {
		leaf := v.leafFor(base)
		for j := 0; j < nodeSize && base+j < v.count; j++ {
			if !f(base+j, leaf[j]) {
				return
			}
		}
	}
}

func (v *vector) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	var err error
	buf.WriteByte('[')
	v.Range(func(i int, elem any) bool {
		if i > 0 {
			buf.WriteByte(',')
		}
		var elemBytes []byte
		elemBytes, err = json.Marshal(elem)
		if err != nil {
			err = &marshalError{i, err}
			return false
		}
		buf.Write(elemBytes)
		return true
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

type marshalError struct {
	index int
	cause error
}

func (err *marshalError) Error() string {
	return "element " + strconv.Itoa(err.index) + ": " + err.cause.Error()
}

func (err *marshalError) Unwrap() error { return err.cause }
