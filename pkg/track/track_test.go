package track

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"memo.elv.sh/pkg/state"
	"memo.elv.sh/pkg/vals"
)

func newTree(t *testing.T, init map[string]any) *state.Tree {
	t.Helper()
	tree, err := state.New(init)
	if err != nil {
		t.Fatal(err)
	}
	return tree
}

func paths(rec *Record) []string {
	var ps []string
	for _, p := range rec.Paths() {
		ps = append(ps, p.String())
	}
	return ps
}

func TestWrap_RecordsPaths(t *testing.T) {
	tree := newTree(t, map[string]any{
		"a": map[string]any{"b": 1, "c": 2},
		"l": []any{"x", "y"},
		"s": "str",
	})
	rec := NewRecord()
	n := Wrap(tree.Snapshot(), rec)
	if v, err := n.At("a.b").Int(); v != 1 || err != nil {
		t.Errorf("a.b -> (%v, %v)", v, err)
	}
	if v, err := n.Index("l").Index("1").Str(); v != "y" || err != nil {
		t.Errorf("l.1 -> (%v, %v)", v, err)
	}
	n.Index("missing").Exists()

	want := []string{"a.b", "l.1", "missing"}
	if diff := cmp.Diff(want, paths(rec)); diff != "" {
		t.Errorf("Paths (-want +got):\n%s", diff)
	}
	if rec.Empty() {
		t.Errorf("Empty() = true after reads")
	}
	if !NewRecord().Empty() {
		t.Errorf("Empty() = false for a new record")
	}
}

func TestNode_TypedAccessors(t *testing.T) {
	tree := newTree(t, map[string]any{"i": 2, "f": 1.5, "s": "x", "b": true})
	n := Wrap(tree.Snapshot(), NewRecord())

	if f, err := n.Index("i").Float(); f != 2 || err != nil {
		t.Errorf("Float of int -> (%v, %v)", f, err)
	}
	if f, err := n.Index("f").Float(); f != 1.5 || err != nil {
		t.Errorf("Float -> (%v, %v)", f, err)
	}
	if b, err := n.Index("b").Bool(); !b || err != nil {
		t.Errorf("Bool -> (%v, %v)", b, err)
	}

	if v, err := n.Index("s").Get(); v != "x" || err != nil {
		t.Errorf("Get -> (%v, %v)", v, err)
	}
	if _, err := n.Index("nope").Get(); !vals.IsNoSuchKey(err) {
		t.Errorf("Get of missing -> err %v, want no such key", err)
	}

	_, err := n.Index("s").Int()
	var wrongType *vals.WrongType
	if !errors.As(err, &wrongType) || wrongType.GotKind != "string" {
		t.Errorf("Int of string -> err %v, want WrongType", err)
	}
	_, err = n.At("nope.deeper").Str()
	var pathErr *state.PathError
	if !errors.As(err, &pathErr) || pathErr.Path.String() != "nope.deeper" || !vals.IsNoSuchKey(err) {
		t.Errorf("Str of missing -> err %v, want PathError for nope.deeper", err)
	}
}

func TestNode_IndexWithUnusableKey(t *testing.T) {
	tree := newTree(t, map[string]any{"m": map[string]any{"a": 1}, "l": []any{1}})
	rec := NewRecord()
	n := Wrap(tree.Snapshot(), rec)

	for _, k := range []any{[]any{"a"}, map[string]any{}, 1.5} {
		if c := n.Index(k); c.Exists() {
			t.Errorf("Index(%v) exists", k)
		}
		if c := n.Index("m").Index(k); c.Exists() {
			t.Errorf("m.Index(%v) exists", k)
		}
		if c := n.Index("l").Index(k); c.Exists() {
			t.Errorf("l.Index(%v) exists", k)
		}
	}
	if _, err := n.Index([]any{"a"}).Get(); !vals.IsNoSuchKey(err) {
		t.Errorf("Get via unhashable key -> err %v, want no such key", err)
	}
	// Only the containers themselves were reached.
	want := []state.Path{state.P("l"), state.P("m")}
	if diff := cmp.Diff(want, rec.Paths()); diff != "" {
		t.Errorf("Paths (-want +got):\n%s", diff)
	}
}

func TestNode_ShapeAccessors(t *testing.T) {
	tree := newTree(t, map[string]any{
		"m": map[string]any{"b": 1, "a": 2},
		"l": []any{10, 20, 30},
	})
	n := Wrap(tree.Snapshot(), NewRecord())
	if diff := cmp.Diff([]string{"a", "b"}, n.Index("m").Keys()); diff != "" {
		t.Errorf("Keys (-want +got):\n%s", diff)
	}
	if l := n.Index("l").Len(); l != 3 {
		t.Errorf("Len = %d, want 3", l)
	}
	if l := n.Index("nope").Len(); l != 0 {
		t.Errorf("Len of missing = %d, want 0", l)
	}
	sum := 0
	n.Index("l").Each(func(k any, c Node) bool {
		i, _ := c.Int()
		sum += i
		return true
	})
	if sum != 60 {
		t.Errorf("sum over Each = %d, want 60", sum)
	}
}

// changedAfter records reads done by read on the tree's snapshot, applies
// mutate, and reports whether Changed detects a difference.
func changedAfter(t *testing.T, init map[string]any, read func(Node), mutate func(*state.Tree)) bool {
	t.Helper()
	tree := newTree(t, init)
	prev := tree.Snapshot()
	rec := NewRecord()
	read(Wrap(prev, rec))
	mutate(tree)
	return Changed(prev, tree.Snapshot(), rec)
}

func set(p string, v any) func(*state.Tree) {
	return func(tree *state.Tree) {
		if err := tree.Set(state.ParsePath(p), v); err != nil {
			panic(err)
		}
	}
}

func del(p string) func(*state.Tree) {
	return func(tree *state.Tree) {
		if err := tree.Delete(state.ParsePath(p)); err != nil {
			panic(err)
		}
	}
}

func readInt(p string) func(Node) {
	return func(n Node) { n.At(p).Int() }
}

var changedTests = []struct {
	name   string
	read   func(Node)
	mutate func(*state.Tree)
	want   bool
}{
	{"read leaf, mutate it", readInt("a.b"), set("a.b", 5), true},
	{"read leaf, mutate sibling", readInt("a.b"), set("a.c", 5), false},
	{"read leaf, mutate other subtree", readInt("a.b"), set("x", 5), false},
	{"read leaf, set same value", readInt("a.b"), set("a.b", 1), false},
	{"read leaf, delete it", readInt("a.b"), del("a.b"), true},
	{"read leaf, replace parent", readInt("a.b"), set("a", 3), true},
	{"read missing, create it", readInt("a.z"), set("a.z", 1), true},
	{"read missing, create sibling", readInt("a.z"), set("a.y", 1), false},
	{"read nothing", func(Node) {}, set("a.b", 9), false},
	{"read map whole, mutate inside",
		func(n Node) { n.Index("a").Value() }, set("a.c", 9), true},
	{"read keys, change a value",
		func(n Node) { n.Index("a").Keys() }, set("a.b", 9), false},
	{"read keys, add a key",
		func(n Node) { n.Index("a").Keys() }, set("a.new", 9), true},
	{"read keys, rename a key",
		func(n Node) { n.Index("a").Keys() },
		func(tree *state.Tree) { set("a.new", 1)(tree); del("a.b")(tree) }, true},
	{"read list length, change element",
		func(n Node) { n.Index("l").Len() }, set("l.0", "z"), false},
	{"read list length, append",
		func(n Node) { n.Index("l").Len() },
		func(tree *state.Tree) { tree.Append(state.P("l"), "z") }, true},
	{"read list element, change other element",
		func(n Node) { n.At("l.0").Str() }, set("l.1", "z"), false},
	{"read list element by string key, change it",
		func(n Node) { n.Index("l").Index("0").Str() }, set("l.0", "z"), true},
	{"read NaN leaf, change other leaf",
		func(n Node) { n.Index("n").Float() }, set("x", 5), false},
	{"read NaN leaf, set it to NaN again",
		func(n Node) { n.Index("n").Float() }, set("n", math.NaN()), false},
	{"read NaN leaf, set it to a number",
		func(n Node) { n.Index("n").Float() }, set("n", 1.0), true},
	{"read zero, set it to negative zero",
		func(n Node) { n.Index("z").Float() }, set("z", math.Copysign(0, -1)), true},
}

func TestChanged(t *testing.T) {
	for _, test := range changedTests {
		t.Run(test.name, func(t *testing.T) {
			init := map[string]any{
				"a": map[string]any{"b": 1, "c": 2},
				"l": []any{"x", "y"},
				"x": 0,
				"n": math.NaN(),
				"z": 0.0,
			}
			if got := changedAfter(t, init, test.read, test.mutate); got != test.want {
				t.Errorf("Changed = %v, want %v", got, test.want)
			}
		})
	}
}

func TestRecord_String(t *testing.T) {
	tree := newTree(t, map[string]any{"a": map[string]any{"b": 1}})
	rec := NewRecord()
	n := Wrap(tree.Snapshot(), rec)
	n.At("a.b").Int()
	n.Index("a").Keys()
	want := "a [shape]\na.b\n"
	if got := rec.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
