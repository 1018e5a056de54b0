package vals

import (
	"fmt"
	"math"
	"reflect"
	"sort"
)

// Conversion between plain Go data and state tree values.
//
// Plain data is what decoders produce: map[string]any, []any, and numbers of
// any Go numeric type. FromGo turns it into persistent containers with int
// and float64 numbers; ToGo turns a tree back into plain data.

// TypeError is returned by FromGo for values that have no state tree
// representation.
type TypeError struct {
	// Path to the offending value, outermost key first.
	Path []any
	// Type of the offending value.
	Type reflect.Type
	// Reason, if any, that the value couldn't be converted.
	Reason string
}

func (err *TypeError) Error() string {
	msg := fmt.Sprintf("cannot convert %v", err.Type)
	if len(err.Path) > 0 {
		msg += fmt.Sprintf(" at %v", err.Path)
	}
	if err.Reason != "" {
		msg += ": " + err.Reason
	}
	return msg
}

// WrongType is returned when a value of one kind is needed but a value of
// another kind is found.
type WrongType struct {
	WantKind string
	GotKind  string
}

func (err *WrongType) Error() string {
	return fmt.Sprintf("wrong type: need %s, got %s", err.WantKind, err.GotKind)
}

// FromGo converts plain Go data to a state tree value. Values that are
// already Map or List are returned as is.
func FromGo(v any) (any, error) {
	return fromGo(v, nil)
}

func fromGo(v any, path []any) (any, error) {
	switch v := v.(type) {
	case nil, bool, int, float64, string, Map, List:
		return v, nil
	case float32:
		return float64(v), nil
	case map[string]any:
		m := EmptyMap
		for _, k := range sortedKeys(v) {
			elem, err := fromGo(v[k], append(path, k))
			if err != nil {
				return nil, err
			}
			m = m.Assoc(k, elem)
		}
		return m, nil
	case []any:
		l := EmptyList
		for i, elem := range v {
			converted, err := fromGo(elem, append(path, i))
			if err != nil {
				return nil, err
			}
			l = l.Conj(converted)
		}
		return l, nil
	}
	return fromGoReflect(reflect.ValueOf(v), path)
}

func fromGoReflect(rv reflect.Value, path []any) (any, error) {
	typeError := func(reason string) error {
		return &TypeError{append([]any(nil), path...), rv.Type(), reason}
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := rv.Int()
		if i < math.MinInt || i > math.MaxInt {
			return nil, typeError("out of int range")
		}
		return int(i), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt {
			return nil, typeError("out of int range")
		}
		return int(u), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Slice, reflect.Array:
		l := EmptyList
		for i := 0; i < rv.Len(); i++ {
			elem, err := fromGo(rv.Index(i).Interface(), append(path, i))
			if err != nil {
				return nil, err
			}
			l = l.Conj(elem)
		}
		return l, nil
	case reflect.Map:
		keys := rv.MapKeys()
		strKeys := make([]string, len(keys))
		byKey := make(map[string]reflect.Value, len(keys))
		for i, key := range keys {
			// Integer keys, which YAML produces for mappings like {1: x},
			// become their decimal form, the same way paths address them.
			converted, err := fromGo(key.Interface(), path)
			if err != nil {
				return nil, typeError(fmt.Sprintf("map key %v is not a string", key.Interface()))
			}
			s, err := MapKey(converted)
			if err != nil {
				return nil, typeError(fmt.Sprintf("map key %v is not a string", key.Interface()))
			}
			if _, dup := byKey[s]; dup {
				return nil, typeError(fmt.Sprintf("duplicate map key %q", s))
			}
			strKeys[i] = s
			byKey[s] = rv.MapIndex(key)
		}
		sort.Strings(strKeys)
		m := EmptyMap
		for _, k := range strKeys {
			elem, err := fromGo(byKey[k].Interface(), append(path, k))
			if err != nil {
				return nil, err
			}
			m = m.Assoc(k, elem)
		}
		return m, nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return fromGo(rv.Elem().Interface(), path)
	}
	return nil, typeError("")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ToGo converts a state tree value to plain Go data: maps become
// map[string]any and lists become []any. Leaves are returned as is.
func ToGo(v any) any {
	switch v := v.(type) {
	case Map:
		m := make(map[string]any, v.Len())
		v.Range(func(k string, elem any) bool {
			m[k] = ToGo(elem)
			return true
		})
		return m
	case List:
		l := make([]any, 0, v.Len())
		v.Range(func(_ int, elem any) bool {
			l = append(l, ToGo(elem))
			return true
		})
		return l
	}
	return v
}
