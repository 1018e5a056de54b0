package state

import (
	"testing"

	"memo.elv.sh/pkg/tt"
)

func TestParsePath(t *testing.T) {
	tt.Test(t, ParsePath,
		tt.Args("").Rets(Path{}),
		tt.Args("a").Rets(Path{"a"}),
		tt.Args("a.b.0.c").Rets(Path{"a", "b", 0, "c"}),
		tt.Args("a.-1.+2").Rets(Path{"a", "-1", "+2"}),
	)
}

func TestPath_String(t *testing.T) {
	tt.Test(t, Path.String,
		tt.Args(Path{}).Rets(""),
		tt.Args(P("a", 0, "b")).Rets("a.0.b"),
	)
}

func TestPath_Child(t *testing.T) {
	p := make(Path, 1, 4)
	p[0] = "a"
	c1 := p.Child("b")
	c2 := p.Child("c")
	if c1.String() != "a.b" || c2.String() != "a.c" {
		t.Errorf("Child shares storage: got %s and %s", c1, c2)
	}
}
