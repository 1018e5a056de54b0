package hashmap

import "math/bits"

const (
	chunkBits = 5
	nodeCap   = 1 << chunkBits
	chunkMask = nodeCap - 1
)

// node is a node in the trie.
type node interface {
	// assoc adds or replaces an entry. It returns the new node, and whether a
	// new entry was added (as opposed to replaced).
	assoc(shift, h uint32, k string, v any) (node, bool)
	// dissoc removes an entry. It returns the new node, which is nil if the
	// node became empty, and whether an entry was removed. If nothing was
	// removed, the node itself is returned.
	dissoc(shift, h uint32, k string) (node, bool)
	// find returns the value associated with a key and whether it exists.
	find(shift, h uint32, k string) (any, bool)
	// each calls f on each entry until f returns false. It returns false if
	// iteration was stopped.
	each(f func(k string, v any) bool) bool
}

// entry is either a leaf holding a key and value, or a pointer to a child
// node. A non-nil child marks the latter.
type entry struct {
	key   string
	value any
	child node
}

var emptyBitmapNode = &bitmapNode{}

// bitmapNode stores up to nodeCap entries, one for each 5-bit chunk of the
// hash present in the bitmap, packed in chunk order.
type bitmapNode struct {
	bitmap  uint32
	entries []entry
}

func chunk(shift, h uint32) uint32 {
	return (h >> shift) & chunkMask
}

func bitpos(shift, h uint32) uint32 {
	return 1 << chunk(shift, h)
}

func index(bitmap, bit uint32) int {
	return bits.OnesCount32(bitmap & (bit - 1))
}

func (n *bitmapNode) assoc(shift, h uint32, k string, v any) (node, bool) {
	bit := bitpos(shift, h)
	idx := index(n.bitmap, bit)
	if n.bitmap&bit == 0 {
		newEntries := make([]entry, len(n.entries)+1)
		copy(newEntries[:idx], n.entries[:idx])
		newEntries[idx] = entry{key: k, value: v}
		copy(newEntries[idx+1:], n.entries[idx:])
		return &bitmapNode{n.bitmap | bit, newEntries}, true
	}
	e := n.entries[idx]
	if e.child != nil {
		newChild, added := e.child.assoc(shift+chunkBits, h, k, v)
		return n.withEntry(idx, entry{child: newChild}), added
	}
	if e.key == k {
		return n.withEntry(idx, entry{key: k, value: v}), false
	}
	sub := pairNode(shift+chunkBits, e.key, e.value, h, k, v)
	return n.withEntry(idx, entry{child: sub}), true
}

func (n *bitmapNode) dissoc(shift, h uint32, k string) (node, bool) {
	bit := bitpos(shift, h)
	if n.bitmap&bit == 0 {
		return n, false
	}
	idx := index(n.bitmap, bit)
	e := n.entries[idx]
	if e.child != nil {
		newChild, removed := e.child.dissoc(shift+chunkBits, h, k)
		if !removed {
			return n, false
		}
		if newChild == nil {
			return n.withoutEntry(bit, idx), true
		}
		if leaf, ok := soleLeaf(newChild); ok {
			// Pull a lone leaf up, so that removals don't leave chains of
			// single-entry nodes behind.
			return n.withEntry(idx, leaf), true
		}
		return n.withEntry(idx, entry{child: newChild}), true
	}
	if e.key != k {
		return n, false
	}
	return n.withoutEntry(bit, idx), true
}

func (n *bitmapNode) find(shift, h uint32, k string) (any, bool) {
	bit := bitpos(shift, h)
	if n.bitmap&bit == 0 {
		return nil, false
	}
	e := n.entries[index(n.bitmap, bit)]
	if e.child != nil {
		return e.child.find(shift+chunkBits, h, k)
	}
	if e.key == k {
		return e.value, true
	}
	return nil, false
}

func (n *bitmapNode) each(f func(k string, v any) bool) bool {
	for _, e := range n.entries {
		if e.child != nil {
			if !e.child.each(f) {
				return false
			}
		} else if !f(e.key, e.value) {
			return false
		}
	}
	return true
}

func (n *bitmapNode) withEntry(idx int, e entry) *bitmapNode {
	newEntries := append([]entry(nil), n.entries...)
	newEntries[idx] = e
	return &bitmapNode{n.bitmap, newEntries}
}

// withoutEntry returns a node with the entry at idx removed, or nil if that
// was the only entry.
func (n *bitmapNode) withoutEntry(bit uint32, idx int) node {
	if len(n.entries) == 1 {
		return nil
	}
	newEntries := make([]entry, len(n.entries)-1)
	copy(newEntries[:idx], n.entries[:idx])
	copy(newEntries[idx:], n.entries[idx+1:])
	return &bitmapNode{n.bitmap ^ bit, newEntries}
}

// pairNode builds a node holding two leaves whose hashes agree in all the
// chunks before shift.
func pairNode(shift uint32, k1 string, v1 any, h2 uint32, k2 string, v2 any) node {
	h1 := hashString(k1)
	if h1 == h2 {
		return &collisionNode{h1, []entry{{key: k1, value: v1}, {key: k2, value: v2}}}
	}
	n, _ := emptyBitmapNode.assoc(shift, h1, k1, v1)
	n, _ = n.assoc(shift, h2, k2, v2)
	return n
}

func soleLeaf(n node) (entry, bool) {
	var entries []entry
	switch n := n.(type) {
	case *bitmapNode:
		entries = n.entries
	case *collisionNode:
		entries = n.entries
	}
	if len(entries) == 1 && entries[0].child == nil {
		return entries[0], true
	}
	return entry{}, false
}

// collisionNode stores leaves whose keys have the same full hash.
type collisionNode struct {
	hash    uint32
	entries []entry
}

func (n *collisionNode) assoc(shift, h uint32, k string, v any) (node, bool) {
	if h != n.hash {
		wrap := &bitmapNode{bitpos(shift, n.hash), []entry{{child: n}}}
		return wrap.assoc(shift, h, k, v)
	}
	idx := n.findIndex(k)
	if idx != -1 {
		newEntries := append([]entry(nil), n.entries...)
		newEntries[idx] = entry{key: k, value: v}
		return &collisionNode{n.hash, newEntries}, false
	}
	newEntries := make([]entry, len(n.entries), len(n.entries)+1)
	copy(newEntries, n.entries)
	newEntries = append(newEntries, entry{key: k, value: v})
	return &collisionNode{n.hash, newEntries}, true
}

func (n *collisionNode) dissoc(shift, h uint32, k string) (node, bool) {
	idx := n.findIndex(k)
	if idx == -1 {
		return n, false
	}
	if len(n.entries) == 1 {
		return nil, true
	}
	newEntries := make([]entry, 0, len(n.entries)-1)
	newEntries = append(newEntries, n.entries[:idx]...)
	newEntries = append(newEntries, n.entries[idx+1:]...)
	return &collisionNode{n.hash, newEntries}, true
}

func (n *collisionNode) find(shift, h uint32, k string) (any, bool) {
	if idx := n.findIndex(k); idx != -1 {
		return n.entries[idx].value, true
	}
	return nil, false
}

func (n *collisionNode) each(f func(k string, v any) bool) bool {
	for _, e := range n.entries {
		if !f(e.key, e.value) {
			return false
		}
	}
	return true
}

func (n *collisionNode) findIndex(k string) int {
	for i, e := range n.entries {
		if e.key == k {
			return i
		}
	}
	return -1
}
