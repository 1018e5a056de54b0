package hash

import (
	"testing"

	"memo.elv.sh/pkg/tt"
)

func TestString(t *testing.T) {
	tt.Test(t, String,
		tt.Args("").Rets(DJBInit),
		tt.Args("a").Rets(DJBCombine(DJBInit, 'a')),
		tt.Args("ab").Rets(DJB('a', 'b')),
	)
}

func TestInt(t *testing.T) {
	tt.Test(t, Int,
		tt.Args(0).Rets(uint32(0)),
		tt.Args(7).Rets(uint32(7)),
		tt.Args(-1).Rets(uint32(0xffffffde)),
	)
}
