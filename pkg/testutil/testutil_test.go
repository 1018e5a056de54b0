package testutil

import (
	"sync"
	"testing"
)

var dedentTests = []struct {
	name string
	in   string
	out  string
}{
	{
		name: "no leading newline, no trailing newline",
		in:   " \n  foo\n bar",
		out:  "\n foo\nbar",
	},
	{
		name: "leading newline, no trailing newline",
		in: `
			a
			 b
			c`,
		out: "a\n b\nc",
	},
	{
		name: "leading newline and trailing newline",
		in: `
			a
			 b
			c
			`,
		out: "a\n b\nc\n",
	},
	{
		name: "no consistent leading whitespace removes as much as possible",
		in: `
				a
			b`,
		out: "\ta\nb",
	},
}

func TestDedent(t *testing.T) {
	for _, test := range dedentTests {
		t.Run(test.name, func(t *testing.T) {
			if got := Dedent(test.in); got != test.out {
				t.Errorf("Dedent(%q) = %q, want %q", test.in, got, test.out)
			}
		})
	}
}

func TestSet(t *testing.T) {
	x := 1
	t.Run("inner", func(t *testing.T) {
		Set(t, &x, 2)
		if x != 2 {
			t.Errorf("x = %d after Set, want 2", x)
		}
	})
	if x != 1 {
		t.Errorf("x = %d after test finished, want 1", x)
	}
}

func TestCalls(t *testing.T) {
	var c Calls
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Inc()
		}()
	}
	wg.Wait()
	if c.N() != 10 {
		t.Errorf("c.N() = %d, want 10", c.N())
	}
}
