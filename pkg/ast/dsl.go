package ast

import "cilisp/interpreter-go/pkg/diagnostics"

// Literal and reference helpers.

func Int(value int64) *Number {
	return NewNumber(float64(value), IntType)
}

func Dbl(value float64) *Number {
	return NewNumber(value, DoubleType)
}

func Sym(id string) *SymbolReference {
	return NewSymbolReference(id)
}

// Call builds a function call, resolving name against the builtin catalogue.
func Call(name string, operands ...Node) *FunctionCall {
	return NewFunctionCall(ResolveOperator(name), name, ExpressionList(operands))
}

// Binding helpers.

func Bind(id string, value Node) *Binding {
	return NewBinding(id, value, NoType)
}

func BindInt(id string, value Node) *Binding {
	return NewBinding(id, value, IntType)
}

func BindDouble(id string, value Node) *Binding {
	return NewBinding(id, value, DoubleType)
}

// Let builds a scope over body, merging bindings in order. Duplicate ids are
// resolved as MergeBinding does and their warnings are discarded.
func Let(body Node, bindings ...*Binding) *Scope {
	return LetWith(diagnostics.Discard, body, bindings...)
}

// LetWith is Let reporting duplicate-binding warnings to sink.
func LetWith(sink diagnostics.Sink, body Node, bindings ...*Binding) *Scope {
	table := NewSymbolTable()
	for _, binding := range bindings {
		table = MergeBinding(binding, table, sink)
	}
	return NewScope(table, body)
}
