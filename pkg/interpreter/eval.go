package interpreter

import (
	"log/slog"

	"cilisp/interpreter-go/pkg/ast"
	"cilisp/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluate(node ast.Node, state *evalState) (runtime.Number, error) {
	if node == nil {
		return runtime.NaN(), &FatalError{Err: ErrNilNode}
	}
	state.depth++
	defer func() { state.depth-- }()
	if state.depth > i.maxDepth {
		return runtime.NaN(), &DepthError{Limit: i.maxDepth, Location: ast.Location(node)}
	}
	i.stats.Evaluations++

	switch n := node.(type) {
	case *ast.Number:
		return runtime.Number{Type: n.Type, Value: n.Value}, nil
	case *ast.FunctionCall:
		return i.evaluateCall(n, state)
	case *ast.SymbolReference:
		return i.evaluateSymbol(n, state)
	case *ast.Scope:
		return i.evaluate(n.Body, state)
	default:
		return runtime.NaN(), fatalf("unsupported node type %s", node.NodeType())
	}
}

func (i *Interpreter) evaluateCall(call *ast.FunctionCall, state *evalState) (runtime.Number, error) {
	builtin, ok := LookupBuiltin(call.Operator)
	if !ok {
		i.warn(call, "unknown function '%s', nan returned", call.Name)
		return runtime.NaN(), nil
	}
	i.logger.Debug("dispatch builtin",
		slog.String("op", builtin.Name),
		slog.Int("operands", len(call.Operands)),
		slog.Int("depth", state.depth))

	switch builtin.Arity {
	case ArityUnary:
		return i.applyUnary(builtin, call, state)
	case ArityBinary:
		return i.applyBinary(builtin, call, state)
	default:
		return i.applyVariadic(builtin, call, state)
	}
}

func (i *Interpreter) applyUnary(builtin Builtin, call *ast.FunctionCall, state *evalState) (runtime.Number, error) {
	operands := call.Operands
	if len(operands) == 0 {
		i.warn(call, "%s called with no operands, nan returned", builtin.Name)
		return runtime.NaN(), nil
	}
	if len(operands) > 1 {
		i.warn(call, "%s called with extra operands", builtin.Name)
	}
	operand, err := i.evaluate(operands[0], state)
	if err != nil {
		return runtime.NaN(), err
	}
	return builtin.Unary(operand), nil
}

// applyBinary never evaluates operands past the second.
func (i *Interpreter) applyBinary(builtin Builtin, call *ast.FunctionCall, state *evalState) (runtime.Number, error) {
	operands := call.Operands
	switch len(operands) {
	case 0:
		i.warn(call, "%s called with no operands, 0 returned", builtin.Name)
		return runtime.Zero(), nil
	case 1:
		i.warn(call, "%s called with 1 operand, nan returned", builtin.Name)
		return runtime.NaN(), nil
	}
	left, err := i.evaluate(operands[0], state)
	if err != nil {
		return runtime.NaN(), err
	}
	right, err := i.evaluate(operands[1], state)
	if err != nil {
		return runtime.NaN(), err
	}
	if len(operands) > 2 {
		i.warn(call, "%s called with too many operands, ignoring extra", builtin.Name)
	}
	return builtin.Binary(left, right), nil
}

func (i *Interpreter) applyVariadic(builtin Builtin, call *ast.FunctionCall, state *evalState) (runtime.Number, error) {
	if len(call.Operands) == 0 {
		i.warn(call, "%s called with no operands, 0 returned", builtin.Name)
		return runtime.Zero(), nil
	}
	values := make([]runtime.Number, 0, len(call.Operands))
	for _, operand := range call.Operands {
		value, err := i.evaluate(operand, state)
		if err != nil {
			return runtime.NaN(), err
		}
		values = append(values, value)
	}
	return builtin.Variadic(values), nil
}

// evaluateSymbol walks the enclosing scopes innermost first and evaluates the
// bound expression afresh on every reference.
func (i *Interpreter) evaluateSymbol(ref *ast.SymbolReference, state *evalState) (runtime.Number, error) {
	i.stats.Resolutions++
	for scope := ast.EnclosingScope(ref); scope != nil; scope = ast.EnclosingScope(scope) {
		binding, ok := scope.Bindings.Lookup(ref.ID)
		if !ok {
			continue
		}
		i.logger.Debug("resolve symbol",
			slog.String("id", ref.ID),
			slog.String("cast", binding.Cast.String()),
			slog.Int("depth", state.depth))
		value, err := i.evaluate(binding.Value, state)
		if err != nil {
			return runtime.NaN(), err
		}
		if binding.HasCast() {
			value = runtime.Cast(value, binding.Cast)
		}
		return value, nil
	}
	i.warn(ref, "undefined symbol '%s', nan returned", ref.ID)
	return runtime.NaN(), nil
}
