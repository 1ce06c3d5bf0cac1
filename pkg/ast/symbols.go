package ast

import "cilisp/interpreter-go/pkg/diagnostics"

// Binding associates an id with an unevaluated expression. Cast forces the
// resolved value to IntType or DoubleType; NoType leaves it untouched.
type Binding struct {
	ID    string     `json:"id"`
	Value Node       `json:"value"`
	Cast  NumberType `json:"cast"`
	span  Span
}

func NewBinding(id string, value Node, cast NumberType) *Binding {
	return &Binding{ID: id, Value: value, Cast: cast}
}

func (b *Binding) Span() Span        { return b.span }
func (b *Binding) SetSpan(span Span) { b.span = span }
func (b *Binding) HasCast() bool     { return b.Cast == IntType || b.Cast == DoubleType }

// SymbolTable is the ordered binding list of one let form. Ids are unique.
type SymbolTable struct {
	bindings []*Binding
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{bindings: make([]*Binding, 0)}
}

// Lookup scans the table for id.
func (t *SymbolTable) Lookup(id string) (*Binding, bool) {
	if t == nil {
		return nil, false
	}
	for _, binding := range t.bindings {
		if binding.ID == id {
			return binding, true
		}
	}
	return nil, false
}

func (t *SymbolTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.bindings)
}

// Bindings returns the entries in slot order.
func (t *SymbolTable) Bindings() []*Binding {
	if t == nil {
		return nil
	}
	out := make([]*Binding, len(t.bindings))
	copy(out, t.bindings)
	return out
}

// IDs returns the bound ids in slot order.
func (t *SymbolTable) IDs() []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.bindings))
	for _, binding := range t.bindings {
		out = append(out, binding.ID)
	}
	return out
}

// MergeBinding adds binding to table, creating the table when nil. When the
// id is already bound the existing slot keeps its position and takes the new
// value and cast; the displaced value is released and a warning is reported.
func MergeBinding(binding *Binding, table *SymbolTable, sink diagnostics.Sink) *SymbolTable {
	if table == nil {
		table = NewSymbolTable()
	}
	if binding == nil {
		return table
	}
	existing, ok := table.Lookup(binding.ID)
	if !ok {
		table.bindings = append(table.bindings, binding)
		return table
	}
	diagnostics.Warn(sink, locationOf(binding.span), "duplicate assignment to symbol '%s'", binding.ID)
	displaced := existing.Value
	existing.Value = binding.Value
	existing.Cast = binding.Cast
	binding.Value = nil
	Release(displaced)
	return table
}

// Location converts the start of a span to a diagnostic location.
func Location(node Node) diagnostics.Location {
	if node == nil {
		return diagnostics.Location{}
	}
	return locationOf(node.Span())
}

func locationOf(span Span) diagnostics.Location {
	return diagnostics.Location{Line: span.Start.Line, Column: span.Start.Column}
}
