package ast

import "fmt"

type NodeType string

const (
	NodeNumber          NodeType = "Number"
	NodeFunctionCall    NodeType = "FunctionCall"
	NodeSymbolReference NodeType = "SymbolReference"
	NodeScope           NodeType = "Scope"
)

// Node is the closed set of expression variants: *Number, *FunctionCall,
// *SymbolReference and *Scope.
type Node interface {
	NodeType() NodeType
	Span() Span
	// Parent is the non-owning back-reference to the node this one was
	// attached to (a FunctionCall or a Scope), or nil at top level.
	Parent() Node
	base() *nodeImpl
}

type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type nodeImpl struct {
	kind     NodeType
	span     Span
	parent   Node
	released bool
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{kind: kind}
}

func (n *nodeImpl) NodeType() NodeType { return n.kind }
func (n *nodeImpl) Span() Span         { return n.span }
func (n *nodeImpl) Parent() Node       { return n.parent }
func (n *nodeImpl) base() *nodeImpl    { return n }
func (n *nodeImpl) setSpan(span Span)  { n.span = span }

// attach records the back-reference exactly once. Attaching a node to a
// second owner would turn the tree into a DAG and is a construction bug.
func attach(child Node, parent Node) {
	if child == nil {
		return
	}
	impl := child.base()
	if impl.parent != nil && impl.parent != parent {
		panic(fmt.Sprintf("ast: %s node already attached to a %s", impl.kind, impl.parent.NodeType()))
	}
	impl.parent = parent
}

// NumberType is the numeric tower tag shared by literals, forced casts and
// evaluation results.
type NumberType int

const (
	IntType NumberType = iota
	DoubleType
	// NoType marks an absent forced cast on a binding.
	NoType
)

func (t NumberType) String() string {
	switch t {
	case IntType:
		return "int"
	case DoubleType:
		return "double"
	default:
		return "none"
	}
}

// ExpressionList is an ordered operand list. Element order is evaluation order.
type ExpressionList []Node

// PrependExpression returns a new list with expr in front of list. Front ends
// that reduce right-to-left use it to build lists in source order.
func PrependExpression(expr Node, list ExpressionList) ExpressionList {
	out := make(ExpressionList, 0, len(list)+1)
	out = append(out, expr)
	return append(out, list...)
}

// Number is a numeric literal leaf.
type Number struct {
	nodeImpl

	Type  NumberType `json:"numberType"`
	Value float64    `json:"value"`
}

func NewNumber(value float64, typ NumberType) *Number {
	return &Number{nodeImpl: newNodeImpl(NodeNumber), Type: typ, Value: value}
}

// FunctionCall applies a builtin operator to its operands. Name keeps the
// source spelling so unrecognised operators can be reported.
type FunctionCall struct {
	nodeImpl

	Operator Operator       `json:"operator"`
	Name     string         `json:"name"`
	Operands ExpressionList `json:"operands"`
}

func NewFunctionCall(op Operator, name string, operands ExpressionList) *FunctionCall {
	if name == "" {
		name = op.String()
	}
	if operands == nil {
		operands = make(ExpressionList, 0)
	}
	call := &FunctionCall{nodeImpl: newNodeImpl(NodeFunctionCall), Operator: op, Name: name, Operands: operands}
	for _, operand := range operands {
		attach(operand, call)
	}
	return call
}

type SymbolReference struct {
	nodeImpl

	ID string `json:"id"`
}

func NewSymbolReference(id string) *SymbolReference {
	return &SymbolReference{nodeImpl: newNodeImpl(NodeSymbolReference), ID: id}
}

// Scope introduces the bindings of a let form. Bindings are not evaluated
// eagerly; they are resolved on demand from references inside Body or inside
// other binding values of the same table.
type Scope struct {
	nodeImpl

	Bindings *SymbolTable `json:"bindings"`
	Body     Node         `json:"body"`
}

func NewScope(table *SymbolTable, body Node) *Scope {
	if table == nil {
		table = NewSymbolTable()
	}
	scope := &Scope{nodeImpl: newNodeImpl(NodeScope), Bindings: table, Body: body}
	for _, binding := range table.bindings {
		attach(binding.Value, scope)
	}
	attach(body, scope)
	return scope
}

// EnclosingScope returns the innermost Scope that node is nested in, following
// back-references only.
func EnclosingScope(node Node) *Scope {
	if node == nil {
		return nil
	}
	for current := node.Parent(); current != nil; current = current.Parent() {
		if scope, ok := current.(*Scope); ok {
			return scope
		}
	}
	return nil
}
