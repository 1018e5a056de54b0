package vector

import (
	"errors"
	"testing"
)

// Sizes that exercise the tail, a root leaf and three levels of the trie.
var sizes = []int{0, 1, nodeSize - 1, nodeSize, nodeSize + 1,
	nodeSize * nodeSize, nodeSize*nodeSize + 1, nodeSize*nodeSize*nodeSize + 33}

func makeVector(n int) Vector {
	v := Empty
	for i := 0; i < n; i++ {
		v = v.Conj(i)
	}
	return v
}

func TestConjAndIndex(t *testing.T) {
	for _, n := range sizes {
		v := makeVector(n)
		if v.Len() != n {
			t.Errorf("Len = %d, want %d", v.Len(), n)
		}
		for i := 0; i < n; i++ {
			if got, ok := v.Index(i); !ok || got != i {
				t.Fatalf("n=%d: Index(%d) = (%v, %v), want (%d, true)", n, i, got, ok, i)
			}
		}
		if _, ok := v.Index(n); ok {
			t.Errorf("n=%d: Index(%d) exists", n, n)
		}
		if _, ok := v.Index(-1); ok {
			t.Errorf("n=%d: Index(-1) exists", n)
		}
	}
}

func TestAssoc(t *testing.T) {
	for _, n := range sizes {
		v := makeVector(n)
		w := v
		for i := 0; i < n; i++ {
			w = w.Assoc(i, -i)
		}
		for i := 0; i < n; i++ {
			if got, _ := w.Index(i); got != -i {
				t.Fatalf("n=%d: after Assoc, Index(%d) = %v, want %d", n, i, got, -i)
			}
			if got, _ := v.Index(i); got != i {
				t.Fatalf("n=%d: original changed, Index(%d) = %v", n, i, got)
			}
		}
		if v.Assoc(n+1, 0) != nil || v.Assoc(-1, 0) != nil {
			t.Errorf("n=%d: out-of-range Assoc returned non-nil", n)
		}
		if got := v.Assoc(n, "x"); got.Len() != n+1 {
			t.Errorf("n=%d: Assoc at end doesn't append", n)
		}
	}
}

func TestPop(t *testing.T) {
	for _, n := range sizes {
		v := makeVector(n)
		for i := n - 1; i >= 0; i-- {
			v = v.Pop()
			if v.Len() != i {
				t.Fatalf("Len after Pop = %d, want %d", v.Len(), i)
			}
			if i > 0 {
				if got, _ := v.Index(i - 1); got != i-1 {
					t.Fatalf("after Pop to %d, last = %v", i, got)
				}
			}
		}
		if v.Pop() != nil {
			t.Errorf("Pop on empty vector returned non-nil")
		}
	}
}

func TestPopThenConj(t *testing.T) {
	n := nodeSize*nodeSize + 1
	v := makeVector(n).Pop().Pop().Conj("a").Conj("b")
	for i := 0; i < n-2; i++ {
		if got, _ := v.Index(i); got != i {
			t.Fatalf("Index(%d) = %v, want %d", i, got, i)
		}
	}
	if got, _ := v.Index(n - 1); got != "b" {
		t.Errorf("last element = %v, want b", got)
	}
}

func TestRange(t *testing.T) {
	for _, n := range sizes {
		next := 0
		makeVector(n).Range(func(i int, v any) bool {
			if i != next || v != i {
				t.Fatalf("Range yields (%d, %v), want (%d, %d)", i, v, next, next)
			}
			next++
			return true
		})
		if next != n {
			t.Errorf("Range yields %d elements, want %d", next, n)
		}
	}
	calls := 0
	makeVector(10).Range(func(int, any) bool {
		calls++
		return false
	})
	if calls != 1 {
		t.Errorf("Range continued after f returned false")
	}
}

func TestMarshalJSON(t *testing.T) {
	out, err := FromSlice([]any{1, "a", nil}).MarshalJSON()
	if string(out) != `[1,"a",null]` || err != nil {
		t.Errorf("MarshalJSON -> (%s, %v)", out, err)
	}
	_, err = FromSlice([]any{func() {}}).MarshalJSON()
	var merr *marshalError
	if !errors.As(err, &merr) || merr.index != 0 {
		t.Errorf("MarshalJSON of func -> %v, want *marshalError at 0", err)
	}
}
