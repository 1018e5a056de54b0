package track

import (
	"memo.elv.sh/pkg/persistent/hashmap"
	"memo.elv.sh/pkg/state"
	"memo.elv.sh/pkg/vals"
)

// Changed reports whether any path recorded in rec resolves to a different
// value in next than in prev. Containers are compared by identity and leaves
// by value (see vals.Same), and only the recorded parts are examined. An empty
// record never reports a change.
func Changed(prev, next state.Snapshot, rec *Record) bool {
	return changedAt(rec.root, prev.Root(), true, next.Root(), true)
}

func changedAt(n *recNode, prev any, prevOK bool, next any, nextOK bool) bool {
	if prevOK != nextOK {
		return true
	}
	if !prevOK || vals.Same(prev, next) {
		return false
	}
	if n.whole {
		return true
	}
	if n.shape && shapeChanged(prev, next) {
		return true
	}
	for k, c := range n.children {
		pv, perr := vals.Index(prev, k)
		nv, nerr := vals.Index(next, k)
		if changedAt(c, pv, perr == nil, nv, nerr == nil) {
			return true
		}
	}
	return false
}

func shapeChanged(prev, next any) bool {
	if vals.Kind(prev) != vals.Kind(next) || vals.Len(prev) != vals.Len(next) {
		return true
	}
	pm, ok := prev.(vals.Map)
	if !ok {
		return false
	}
	nm := next.(vals.Map)
	same := true
	pm.Range(func(k string, _ any) bool {
		same = hashmap.HasKey(nm, k)
		return same
	})
	return !same
}
