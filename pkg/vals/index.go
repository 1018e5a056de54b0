package vals

import (
	"errors"
	"strconv"
)

var (
	// ErrNotIndexable is returned when indexing a value that is not a
	// container.
	ErrNotIndexable = errors.New("not indexable")
	// ErrNotMap is returned by Dissoc when the container is not a Map.
	ErrNotMap = errors.New("not a map")

	errMapKeyMustBeString = errors.New("map key must be string or int")
	errListIndexMustBeInt = errors.New("list index must be int")
)

type noSuchKeyError struct {
	key any
}

// NoSuchKey returns an error indicating that a key is not found in a map.
func NoSuchKey(k any) error {
	return noSuchKeyError{k}
}

func (err noSuchKeyError) Error() string {
	return "no such key: " + Repr(err.key)
}

// IsNoSuchKey reports whether err was returned by NoSuchKey.
func IsNoSuchKey(err error) bool {
	var nsk noSuchKeyError
	return errors.As(err, &nsk)
}

// IndexOutOfRange is returned when a list index is out of range.
type IndexOutOfRange struct {
	Index, Len int
}

func (err *IndexOutOfRange) Error() string {
	return "index out of range: " + strconv.Itoa(err.Index) +
		" (length " + strconv.Itoa(err.Len) + ")"
}

// MapKey converts a path element to a map key. Strings are used as is and
// ints are formatted in decimal.
func MapKey(k any) (string, error) {
	switch k := k.(type) {
	case string:
		return k, nil
	case int:
		return strconv.Itoa(k), nil
	}
	return "", errMapKeyMustBeString
}

// ListIndex converts a path element to a list index. Ints are used as is and
// strings must be decimal integers.
func ListIndex(k any) (int, error) {
	switch k := k.(type) {
	case int:
		return k, nil
	case string:
		if i, err := strconv.Atoi(k); err == nil {
			return i, nil
		}
	}
	return 0, errListIndexMustBeInt
}

// Index indexes a container with the given key. Maps are indexed by string
// keys and lists by int indices; see [MapKey] and [ListIndex] for accepted
// conversions.
func Index(a, k any) (any, error) {
	switch a := a.(type) {
	case Map:
		key, err := MapKey(k)
		if err != nil {
			return nil, err
		}
		v, ok := a.Index(key)
		if !ok {
			return nil, NoSuchKey(key)
		}
		return v, nil
	case List:
		i, err := ListIndex(k)
		if err != nil {
			return nil, err
		}
		v, ok := a.Index(i)
		if !ok {
			return nil, &IndexOutOfRange{i, a.Len()}
		}
		return v, nil
	}
	return nil, ErrNotIndexable
}

// HasKey reports whether a container has the given key.
func HasKey(a, k any) bool {
	_, err := Index(a, k)
	return err == nil
}

// Assoc returns a copy of the container a with key k associated with v. For
// lists, an index equal to the length appends.
func Assoc(a, k, v any) (any, error) {
	switch a := a.(type) {
	case Map:
		key, err := MapKey(k)
		if err != nil {
			return nil, err
		}
		return a.Assoc(key, v), nil
	case List:
		i, err := ListIndex(k)
		if err != nil {
			return nil, err
		}
		l := a.Assoc(i, v)
		if l == nil {
			return nil, &IndexOutOfRange{i, a.Len()}
		}
		return l, nil
	}
	return nil, ErrNotIndexable
}

// Dissoc returns a copy of the map a without the key k.
func Dissoc(a, k any) (any, error) {
	m, ok := a.(Map)
	if !ok {
		return nil, ErrNotMap
	}
	key, err := MapKey(k)
	if err != nil {
		return nil, err
	}
	return m.Dissoc(key), nil
}
