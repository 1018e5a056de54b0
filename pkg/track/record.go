// Package track records which parts of a state snapshot are read, and decides
// whether those parts differ between two snapshots.
//
// A getter reads a snapshot through a [Node] obtained from [Wrap]. Every
// access is logged into a [Record]; afterwards [Changed] walks only the
// recorded paths to tell whether a later snapshot would give the getter
// different inputs. Since unchanged subtrees of snapshots keep their identity,
// the walk stops as soon as it reaches a subtree shared by both snapshots.
package track

import (
	"sort"
	"strings"

	"memo.elv.sh/pkg/state"
)

// Record is the set of paths read during one evaluation, stored as a trie.
// A Record is not safe for concurrent use.
type Record struct {
	root *recNode
}

type recNode struct {
	children map[any]*recNode
	// The value itself was consumed; any change to it matters.
	whole bool
	// The set of keys (or the length) was consumed.
	shape bool
}

// NewRecord returns an empty Record.
func NewRecord() *Record {
	return &Record{&recNode{}}
}

func (n *recNode) child(k any) *recNode {
	if c, ok := n.children[k]; ok {
		return c
	}
	if n.children == nil {
		n.children = make(map[any]*recNode)
	}
	c := &recNode{}
	n.children[k] = c
	return c
}

// Empty reports whether nothing has been recorded.
func (r *Record) Empty() bool {
	return len(r.root.children) == 0 && !r.root.whole && !r.root.shape
}

// Paths returns the recorded paths in sorted order. A path is included if the
// value at it was consumed, or if it was reached and nothing below it was
// read.
func (r *Record) Paths() []state.Path {
	var paths []state.Path
	var walk func(n *recNode, p state.Path)
	walk = func(n *recNode, p state.Path) {
		if n.whole || n.shape || (len(n.children) == 0 && len(p) > 0) {
			paths = append(paths, p)
		}
		for k, c := range n.children {
			walk(c, p.Child(k))
		}
	}
	walk(r.root, state.Path{})
	sort.Slice(paths, func(i, j int) bool {
		return paths[i].String() < paths[j].String()
	})
	return paths
}

// String returns the recorded paths, one per line. Paths whose key set was
// read are suffixed with "[shape]"; the root is written as ".".
func (r *Record) String() string {
	var sb strings.Builder
	for _, p := range r.Paths() {
		s := p.String()
		if s == "" {
			s = "."
		}
		sb.WriteString(s)
		if n := r.find(p); n != nil && n.shape {
			sb.WriteString(" [shape]")
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (r *Record) find(p state.Path) *recNode {
	n := r.root
	for _, k := range p {
		if n = n.children[k]; n == nil {
			return nil
		}
	}
	return n
}
