// Package hash contains the hash functions used by the persistent hashmap.
package hash

// DJBInit is the initial accumulator of the DJB hash.
const DJBInit uint32 = 5381

// DJBCombine folds h into the accumulator acc.
func DJBCombine(acc, h uint32) uint32 {
	return mul33(acc) + h
}

// DJB combines a sequence of hashes.
func DJB(hs ...uint32) uint32 {
	acc := DJBInit
	for _, h := range hs {
		acc = DJBCombine(acc, h)
	}
	return acc
}

// String hashes a string one byte at a time.
func String(s string) uint32 {
	h := DJBInit
	for i := 0; i < len(s); i++ {
		h = DJBCombine(h, uint32(s[i]))
	}
	return h
}

// Int hashes an int, folding the upper half on 64-bit platforms.
func Int(i int) uint32 {
	u := uint64(i)
	return mul33(uint32(u>>32)) + uint32(u&0xffffffff)
}

func mul33(u uint32) uint32 {
	return u<<5 + u
}
