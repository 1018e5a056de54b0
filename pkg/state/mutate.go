package state

import "memo.elv.sh/pkg/vals"

// setIn returns a copy of node with the value at p replaced by v. Nodes that
// don't change keep their identity.
func setIn(node any, p Path, v any) (any, error) {
	if len(p) == 0 {
		return v, nil
	}
	k := p[0]
	child, err := vals.Index(node, k)
	exists := err == nil
	if !exists {
		if !missing(node, k, err) {
			return nil, err
		}
		if len(p) > 1 {
			child = vals.EmptyMap
		}
	}
	newChild, err := setIn(child, p[1:], v)
	if err != nil {
		return nil, err
	}
	if exists && vals.Same(child, newChild) {
		return node, nil
	}
	return vals.Assoc(node, k, newChild)
}

// missing reports whether err from indexing node with k means that k can be
// added to node: a missing map key, or a list index one past the end.
func missing(node, k any, err error) bool {
	if vals.IsNoSuchKey(err) {
		return true
	}
	if oor, ok := err.(*vals.IndexOutOfRange); ok {
		return oor.Index == oor.Len
	}
	return false
}

// updateIn calls f with the parent of the node at p and the last element of
// p, and returns a copy of node with that parent replaced by the result.
func updateIn(node any, p Path, f func(parent, k any) (any, error)) (any, error) {
	if len(p) == 1 {
		return f(node, p[0])
	}
	child, err := vals.Index(node, p[0])
	if err != nil {
		return nil, err
	}
	newChild, err := updateIn(child, p[1:], f)
	if err != nil {
		return nil, err
	}
	if vals.Same(child, newChild) {
		return node, nil
	}
	return vals.Assoc(node, p[0], newChild)
}

func deleteFrom(parent, k any) (any, error) {
	switch parent := parent.(type) {
	case vals.Map:
		return vals.Dissoc(parent, k)
	case vals.List:
		i, err := vals.ListIndex(k)
		if err != nil {
			return nil, err
		}
		if i < 0 || i >= parent.Len() {
			return nil, &vals.IndexOutOfRange{Index: i, Len: parent.Len()}
		}
		return removeAt(parent, i), nil
	}
	return nil, vals.ErrNotIndexable
}

// removeAt returns l without its i-th element.
func removeAt(l vals.List, i int) vals.List {
	if i == l.Len()-1 {
		return l.Pop()
	}
	// Keep the prefix, and re-append everything after i.
	rest := make([]any, 0, l.Len()-i-1)
	l.Range(func(j int, v any) bool {
		if j > i {
			rest = append(rest, v)
		}
		return true
	})
	for l.Len() > i {
		l = l.Pop()
	}
	for _, v := range rest {
		l = l.Conj(v)
	}
	return l
}
