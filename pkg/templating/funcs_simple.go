package templating

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// toNumber converts ints, floats and numeric strings to float64. Anything
// else, including strings that do not parse, is an error.
func toNumber(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n)
		}
		return f, nil
	}
	return 0, fmt.Errorf("not a number: %v (%T)", v, v)
}

// binary lifts a float operation to the loose operand types templates pass.
func binary(op func(a, b float64) float64) func(a, b any) (float64, error) {
	return func(a, b any) (float64, error) {
		x, err := toNumber(a)
		if err != nil {
			return 0, err
		}
		y, err := toNumber(b)
		if err != nil {
			return 0, err
		}
		return op(x, y), nil
	}
}

var (
	add  = binary(func(a, b float64) float64 { return a + b })
	sub  = binary(func(a, b float64) float64 { return a - b })
	mult = binary(func(a, b float64) float64 { return a * b })
	// div returns 0 if b is 0.
	div = binary(func(a, b float64) float64 {
		if b == 0 {
			return 0
		}
		return a / b
	})
	// mod returns 0 if b is 0.
	mod = binary(func(a, b float64) float64 {
		if b == 0 {
			return 0
		}
		return math.Mod(a, b)
	})
	maxOf = binary(math.Max)
	minOf = binary(math.Min)
)

// neg returns -a.
func neg(a any) (float64, error) {
	x, err := toNumber(a)
	return -x, err
}

// num formats a number the way SVG attributes expect it: no exponent and no
// trailing zeros.
func num(a any) (string, error) {
	x, err := toNumber(a)
	if err != nil {
		return "", err
	}
	return strconv.FormatFloat(x, 'f', -1, 64), nil
}

// isSet returns true if a value is not its zero value.
func isSet(val any) bool {
	v := reflect.ValueOf(val)
	if !v.IsValid() {
		return false
	}
	return !v.IsZero()
}

// orDefault returns val, or def when val is unset.
func orDefault(def, val any) any {
	if isSet(val) {
		return val
	}
	return def
}
