package state

import (
	"strconv"
	"strings"
)

// Path addresses a node in a state tree. Each element is a string (a map key)
// or an int (a list index).
type Path []any

// P builds a Path from its arguments.
func P(elems ...any) Path {
	return Path(elems)
}

// ParsePath parses a dot-separated path such as "a.b.0.c". Segments that are
// non-negative decimal integers become ints; all other segments are map keys.
// The empty string parses to the empty path.
func ParsePath(s string) Path {
	if s == "" {
		return Path{}
	}
	segs := strings.Split(s, ".")
	p := make(Path, len(segs))
	for i, seg := range segs {
		if n, err := strconv.Atoi(seg); err == nil && n >= 0 && seg[0] != '+' {
			p[i] = n
		} else {
			p[i] = seg
		}
	}
	return p
}

// String returns the dot-separated form of the path, the inverse of
// ParsePath.
func (p Path) String() string {
	var sb strings.Builder
	for i, elem := range p {
		if i > 0 {
			sb.WriteByte('.')
		}
		switch elem := elem.(type) {
		case string:
			sb.WriteString(elem)
		case int:
			sb.WriteString(strconv.Itoa(elem))
		}
	}
	return sb.String()
}

// Child returns a new path with k appended. The receiver is not modified.
func (p Path) Child(k any) Path {
	child := make(Path, len(p)+1)
	copy(child, p)
	child[len(p)] = k
	return child
}
