package vals

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"memo.elv.sh/pkg/persistent/hashmap"
)

// Repr returns a compact, human-readable representation of a value:
//
//   - $nil, $true and $false for nil and bools;
//
//   - (num 1) for numbers;
//
//   - strings as is if they consist only of "safe" characters, quoted
//     otherwise;
//
//   - [a b c] for lists and [&k=v] for maps, with map keys sorted.
func Repr(v any) string {
	var sb strings.Builder
	writeRepr(&sb, v)
	return sb.String()
}

func writeRepr(sb *strings.Builder, v any) {
	switch v := v.(type) {
	case nil:
		sb.WriteString("$nil")
	case bool:
		if v {
			sb.WriteString("$true")
		} else {
			sb.WriteString("$false")
		}
	case int:
		sb.WriteString("(num " + strconv.Itoa(v) + ")")
	case float64:
		sb.WriteString("(num " + formatFloat64(v) + ")")
	case string:
		sb.WriteString(quote(v))
	case List:
		sb.WriteByte('[')
		v.Range(func(i int, elem any) bool {
			if i > 0 {
				sb.WriteByte(' ')
			}
			writeRepr(sb, elem)
			return true
		})
		sb.WriteByte(']')
	case Map:
		if v.Len() == 0 {
			sb.WriteString("[&]")
			return
		}
		sb.WriteByte('[')
		for i, k := range hashmap.Keys(v) {
			if i > 0 {
				sb.WriteByte(' ')
			}
			elem, _ := v.Index(k)
			sb.WriteString("&" + quote(k) + "=")
			writeRepr(sb, elem)
		}
		sb.WriteByte(']')
	default:
		fmt.Fprintf(sb, "<unknown %v>", v)
	}
}

func formatFloat64(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		// Keep floats distinguishable from ints.
		s += ".0"
	}
	return s
}

func quote(s string) string {
	if s == "" {
		return "''"
	}
	for _, r := range s {
		if !isBarewordRune(r) {
			return strconv.Quote(s)
		}
	}
	return s
}

func isBarewordRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' ||
		strings.ContainsRune("-_./:@+,%", r)
}
