package hashmap

import (
	"math/rand"
	"strconv"
	"testing"

	"memo.elv.sh/pkg/testutil"
)

const (
	NSequential = 0x1000
	NRandom     = 0x2000
	NReplace    = 0x200

	NIneffectiveDissoc = 0x200
)

type refEntry struct {
	k string
	v string
}

func hex(i uint64) string {
	return "0x" + strconv.FormatUint(i, 16)
}

func TestMap(t *testing.T) {
	var refEntries []refEntry
	add := func(k, v string) {
		refEntries = append(refEntries, refEntry{k, v})
	}
	for i := 0; i < NSequential; i++ {
		add(hex(uint64(i)), "seq "+hex(uint64(i)))
	}
	for i := 0; i < NRandom; i++ {
		k := rand.Uint64()
		add("r"+hex(k), "random "+hex(k))
	}
	for i := 0; i < NReplace; i++ {
		k := uint64(rand.Int31n(NSequential))
		add(hex(k), "replace "+hex(k))
	}
	testMapWithRefEntries(t, refEntries)
}

func TestMap_Collisions(t *testing.T) {
	// Only use the lowest 6 bits of the hash, so that most keys collide.
	testutil.Set(t, &hashString, func(s string) uint32 {
		return defaultHash(s) & 0x3f
	})
	var refEntries []refEntry
	for i := 0; i < 0x400; i++ {
		k := hex(uint64(i))
		refEntries = append(refEntries, refEntry{k, "collision " + k})
	}
	testMapWithRefEntries(t, refEntries)
}

var defaultHash = hashString

func TestMap_StructuralSharing(t *testing.T) {
	m := Empty
	for i := 0; i < 100; i++ {
		m = m.Assoc(hex(uint64(i)), i)
	}
	m2 := m.Assoc("0x1", "changed")
	if v, _ := m.Index("0x1"); v != 1 {
		t.Errorf("original map changed after Assoc: got %v", v)
	}
	if v, _ := m2.Index("0x1"); v != "changed" {
		t.Errorf("m2.Index(0x1) = %v, want changed", v)
	}
	if m.Dissoc("no such key") != m {
		t.Errorf("ineffective Dissoc returned a different map")
	}
}

func TestKeys(t *testing.T) {
	m := Empty.Assoc("b", 1).Assoc("a", 2).Assoc("c", 3)
	keys := Keys(m)
	want := []string{"a", "b", "c"}
	if len(keys) != len(want) {
		t.Fatalf("Keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Keys = %v, want %v", keys, want)
		}
	}
	if !HasKey(m, "a") || HasKey(m, "d") {
		t.Errorf("HasKey gives wrong results")
	}
}

func TestRange_Stops(t *testing.T) {
	m := FromGo(map[string]any{"a": 1, "b": 2, "c": 3})
	n := 0
	m.Range(func(string, any) bool {
		n++
		return n < 2
	})
	if n != 2 {
		t.Errorf("Range called f %d times after stopping, want 2", n)
	}
}

var marshalJSONTests = []struct {
	in      Map
	wantOut string
	wantErr bool
}{
	{FromGo(map[string]any{"b": "x", "a": 1}), `{"a":1,"b":"x"}`, false},
	{Empty, `{}`, false},
	// Unsupported value type
	{Empty.Assoc("x", func() {}), "", true},
}

func TestMarshalJSON(t *testing.T) {
	for i, test := range marshalJSONTests {
		out, err := test.in.MarshalJSON()
		if string(out) != test.wantOut {
			t.Errorf("m%d.MarshalJSON -> out %s, want %s", i, out, test.wantOut)
		}
		if (err != nil) != test.wantErr {
			t.Errorf("m%d.MarshalJSON -> err %v, want err %v", i, err, test.wantErr)
		}
	}
}

// testMapWithRefEntries builds a Map from the supplied list of entries, and
// tests its operations against a Go map built alongside.
func testMapWithRefEntries(t *testing.T, refEntries []refEntry) {
	t.Helper()
	m := Empty
	if m.Len() != 0 {
		t.Errorf("m.Len = %d, want %d", m.Len(), 0)
	}

	ref := make(map[string]string, len(refEntries))
	for _, e := range refEntries {
		ref[e.k] = e.v
		m = m.Assoc(e.k, e.v)
		if m.Len() != len(ref) {
			t.Errorf("m.Len = %d, want %d", m.Len(), len(ref))
		}
	}

	testMapContent(t, m, ref)
	if got, in := m.Index("bad key"); in {
		t.Errorf("m.Index <bad key> returns entry %v", got)
	}
	testRange(t, m, ref)

	for i := 0; i < NIneffectiveDissoc; i++ {
		m = m.Dissoc("bad key " + strconv.Itoa(i))
		if m.Len() != len(ref) {
			t.Errorf("m.Dissoc removes item when it shouldn't")
		}
	}

	for x := 0; x < len(refEntries); x++ {
		k := refEntries[rand.Intn(len(refEntries))].k
		delete(ref, k)
		m = m.Dissoc(k)
		if m.Len() != len(ref) {
			t.Errorf("m.Len() = %d after removing, should be %v", m.Len(), len(ref))
		}
		if _, in := m.Index(k); in {
			t.Errorf("m.Index(%v) still returns item after removal", k)
		}
		// Checking all elements is expensive. Only do this 1% of the time.
		if rand.Float64() < 0.01 {
			testMapContent(t, m, ref)
			testRange(t, m, ref)
		}
	}
}

func testMapContent(t *testing.T, m Map, ref map[string]string) {
	t.Helper()
	for k, v := range ref {
		got, in := m.Index(k)
		if !in {
			t.Errorf("m.Index %s returns no entry", k)
		}
		if got != v {
			t.Errorf("m.Index(%s) = %v, want %v", k, got, v)
		}
	}
}

func testRange(t *testing.T, m Map, ref map[string]string) {
	t.Helper()
	ref2 := make(map[string]string, len(ref))
	for k, v := range ref {
		ref2[k] = v
	}
	m.Range(func(k string, v any) bool {
		if ref2[k] != v {
			t.Errorf("Range yields unexpected pair %v, %v", k, v)
		}
		delete(ref2, k)
		return true
	})
	if len(ref2) != 0 {
		t.Errorf("Range was not exhaustive")
	}
}
