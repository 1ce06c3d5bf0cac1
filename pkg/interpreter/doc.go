// Package interpreter evaluates CILisp expression trees built with package ast.
// Evaluation is plain structural recursion over the four node variants; symbol
// references are resolved through the enclosing-scope chain and re-evaluated
// on every use. Operand-count problems, duplicate bindings and undefined
// symbols are reported as warnings and never abort evaluation.
package interpreter
