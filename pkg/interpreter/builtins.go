package interpreter

import (
	"math"

	"cilisp/interpreter-go/pkg/ast"
	"cilisp/interpreter-go/pkg/runtime"
)

// Arity classifies how a builtin treats its operand count.
type Arity int

const (
	// ArityUnary takes exactly one operand. None yields NaN; extras are
	// ignored with a warning.
	ArityUnary Arity = iota
	// ArityBinary takes exactly two operands. None yields Zero, one yields
	// NaN, extras beyond the second are ignored with a warning.
	ArityBinary
	// ArityVariadic folds over every operand. None yields Zero.
	ArityVariadic
)

func (a Arity) String() string {
	switch a {
	case ArityUnary:
		return "unary"
	case ArityBinary:
		return "binary"
	default:
		return "variadic"
	}
}

// Builtin is one entry of the dispatch table. Exactly one of Unary, Binary and
// Variadic is set, matching Arity.
type Builtin struct {
	Op       ast.Operator
	Name     string
	Arity    Arity
	Unary    func(runtime.Number) runtime.Number
	Binary   func(left, right runtime.Number) runtime.Number
	Variadic func([]runtime.Number) runtime.Number
}

var builtins = map[ast.Operator]Builtin{
	ast.OpNeg: unary(ast.OpNeg, func(x runtime.Number) runtime.Number {
		return runtime.Number{Type: x.Type, Value: -x.Value}
	}),
	ast.OpAbs: unary(ast.OpAbs, func(x runtime.Number) runtime.Number {
		return runtime.Number{Type: x.Type, Value: math.Abs(x.Value)}
	}),
	ast.OpExp: unary(ast.OpExp, doubleUnary(math.Exp)),
	ast.OpExp2: unary(ast.OpExp2, func(x runtime.Number) runtime.Number {
		result := runtime.Number{Type: x.Type, Value: math.Exp2(x.Value)}
		if result.Value < 0 {
			result.Type = ast.DoubleType
		}
		return result
	}),
	ast.OpLog:  unary(ast.OpLog, doubleUnary(math.Log)),
	ast.OpSqrt: unary(ast.OpSqrt, doubleUnary(math.Sqrt)),
	ast.OpCbrt: unary(ast.OpCbrt, doubleUnary(math.Cbrt)),

	ast.OpSub:  binary(ast.OpSub, promoted(func(a, b float64) float64 { return a - b })),
	ast.OpMult: binary(ast.OpMult, promoted(func(a, b float64) float64 { return a * b })),
	ast.OpDiv:  binary(ast.OpDiv, promoted(func(a, b float64) float64 { return a / b })),
	ast.OpRemainder: binary(ast.OpRemainder, promoted(func(a, b float64) float64 {
		return math.Abs(math.Mod(a, b))
	})),
	ast.OpPow: binary(ast.OpPow, promoted(math.Pow)),

	ast.OpAdd:   variadic(ast.OpAdd, add),
	ast.OpHypot: variadic(ast.OpHypot, hypot),
	ast.OpMin:   variadic(ast.OpMin, extremum(func(candidate, best float64) bool { return candidate < best })),
	ast.OpMax:   variadic(ast.OpMax, extremum(func(candidate, best float64) bool { return candidate > best })),
}

// LookupBuiltin returns the dispatch table entry for op.
func LookupBuiltin(op ast.Operator) (Builtin, bool) {
	builtin, ok := builtins[op]
	return builtin, ok
}

func unary(op ast.Operator, fn func(runtime.Number) runtime.Number) Builtin {
	return Builtin{Op: op, Name: op.String(), Arity: ArityUnary, Unary: fn}
}

func binary(op ast.Operator, fn func(left, right runtime.Number) runtime.Number) Builtin {
	return Builtin{Op: op, Name: op.String(), Arity: ArityBinary, Binary: fn}
}

func variadic(op ast.Operator, fn func([]runtime.Number) runtime.Number) Builtin {
	return Builtin{Op: op, Name: op.String(), Arity: ArityVariadic, Variadic: fn}
}

func doubleUnary(fn func(float64) float64) func(runtime.Number) runtime.Number {
	return func(x runtime.Number) runtime.Number {
		return runtime.Double(fn(x.Value))
	}
}

func promoted(fn func(a, b float64) float64) func(left, right runtime.Number) runtime.Number {
	return func(left, right runtime.Number) runtime.Number {
		return runtime.Number{Type: runtime.Promote(left, right), Value: fn(left.Value, right.Value)}
	}
}

func add(operands []runtime.Number) runtime.Number {
	result := runtime.Zero()
	for _, operand := range operands {
		result.Type = runtime.Promote(result, operand)
		result.Value += operand.Value
	}
	return result
}

func hypot(operands []runtime.Number) runtime.Number {
	sum := 0.0
	for _, operand := range operands {
		sum += operand.Value * operand.Value
	}
	return runtime.Double(math.Sqrt(sum))
}

// extremum keeps the first operand until a later one beats it; the winner's
// type is the result type.
func extremum(beats func(candidate, best float64) bool) func([]runtime.Number) runtime.Number {
	return func(operands []runtime.Number) runtime.Number {
		best := operands[0]
		for _, operand := range operands[1:] {
			if beats(operand.Value, best.Value) {
				best = operand
			}
		}
		return best
	}
}
