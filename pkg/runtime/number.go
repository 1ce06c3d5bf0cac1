package runtime

import (
	"math"

	"cilisp/interpreter-go/pkg/ast"
)

// Number is the typed result of evaluating an expression.
type Number struct {
	Type  ast.NumberType
	Value float64
}

// Zero is the (Int, 0) fallback.
func Zero() Number {
	return Number{Type: ast.IntType, Value: 0}
}

// NaN is the (Double, NaN) fallback.
func NaN() Number {
	return Number{Type: ast.DoubleType, Value: math.NaN()}
}

func Int(value float64) Number {
	return Number{Type: ast.IntType, Value: value}
}

func Double(value float64) Number {
	return Number{Type: ast.DoubleType, Value: value}
}

func (n Number) IsInt() bool    { return n.Type == ast.IntType }
func (n Number) IsDouble() bool { return n.Type == ast.DoubleType }
func (n Number) IsNaN() bool    { return math.IsNaN(n.Value) }

// Promote returns DoubleType when either operand is a double, IntType otherwise.
func Promote(left, right Number) ast.NumberType {
	if left.IsDouble() || right.IsDouble() {
		return ast.DoubleType
	}
	return ast.IntType
}

// Cast converts n to typ. Double to int truncates toward zero; non-finite
// values keep their value and only change type. NoType leaves n unchanged.
func Cast(n Number, typ ast.NumberType) Number {
	switch typ {
	case ast.IntType:
		return Number{Type: ast.IntType, Value: math.Trunc(n.Value)}
	case ast.DoubleType:
		return Number{Type: ast.DoubleType, Value: n.Value}
	default:
		return n
	}
}

// Same reports whether two results have the same type and value, treating
// NaN as equal to NaN.
func Same(a, b Number) bool {
	if a.Type != b.Type {
		return false
	}
	if math.IsNaN(a.Value) || math.IsNaN(b.Value) {
		return math.IsNaN(a.Value) && math.IsNaN(b.Value)
	}
	return a.Value == b.Value
}
