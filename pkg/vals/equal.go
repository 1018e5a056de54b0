package vals

import (
	"math"
	"reflect"
)

// Same reports whether x and y are the same value under the rules of
// snapshots: containers are the same iff they are the identical object, and
// leaves are the same iff they are equal (in the sense of Equal, so a NaN
// leaf is the same as another NaN leaf). Since containers are never
// modified in place, two Same containers hold Equal content.
func Same(x, y any) bool {
	switch x := x.(type) {
	case Map:
		y, ok := y.(Map)
		return ok && x == y
	case List:
		y, ok := y.(List)
		return ok && x == y
	default:
		return leafEqual(x, y)
	}
}

// Equal reports whether two values are deeply equal. Numbers of different Go
// types (int and float64) are never equal. Floats are compared by their bit
// patterns, so NaN is equal to itself and 0.0 is not equal to -0.0.
func Equal(x, y any) bool {
	switch x := x.(type) {
	case Map:
		y, ok := y.(Map)
		return ok && (x == y || equalMap(x, y))
	case List:
		y, ok := y.(List)
		return ok && (x == y || equalList(x, y))
	default:
		return leafEqual(x, y)
	}
}

func leafEqual(x, y any) bool {
	switch x := x.(type) {
	case nil:
		return y == nil
	case bool:
		return x == y
	case int:
		return x == y
	case float64:
		y, ok := y.(float64)
		return ok && math.Float64bits(x) == math.Float64bits(y)
	case string:
		return x == y
	default:
		return reflect.DeepEqual(x, y)
	}
}

func equalMap(x, y Map) bool {
	if x.Len() != y.Len() {
		return false
	}
	eq := true
	x.Range(func(k string, vx any) bool {
		vy, ok := y.Index(k)
		eq = ok && Equal(vx, vy)
		return eq
	})
	return eq
}

func equalList(x, y List) bool {
	if x.Len() != y.Len() {
		return false
	}
	eq := true
	x.Range(func(i int, vx any) bool {
		vy, _ := y.Index(i)
		eq = Equal(vx, vy)
		return eq
	})
	return eq
}
