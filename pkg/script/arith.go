package script

import "memo.elv.sh/pkg/track"

// number reads an int or float64 from n, keeping ints as ints.
func number(n track.Node) (any, error) {
	if i, err := n.Int(); err == nil {
		return i, nil
	}
	f, err := n.Float()
	if err != nil {
		return nil, err
	}
	return f, nil
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, float64:
		return true
	}
	return false
}

func toFloat(v any) float64 {
	switch v := v.(type) {
	case int:
		return float64(v)
	case float64:
		return v
	}
	return 0
}

func add(a, b any) any {
	if a, ok := a.(int); ok {
		if b, ok := b.(int); ok {
			return a + b
		}
	}
	return toFloat(a) + toFloat(b)
}

func mul(a, b any) any {
	if a, ok := a.(int); ok {
		if b, ok := b.(int); ok {
			return a * b
		}
	}
	return toFloat(a) * toFloat(b)
}

// div divides a by b, which must be non-zero. The result is an int when both
// operands are ints and the division is exact.
func div(a, b any) any {
	if a, ok := a.(int); ok {
		if b, ok := b.(int); ok && a%b == 0 {
			return a / b
		}
	}
	return toFloat(a) / toFloat(b)
}
