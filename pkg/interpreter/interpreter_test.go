package interpreter

import (
	"errors"
	"math"
	"strings"
	"testing"

	"cilisp/interpreter-go/pkg/ast"
	"cilisp/interpreter-go/pkg/diagnostics"
	"cilisp/interpreter-go/pkg/runtime"
)

func evaluateWithWarnings(t *testing.T, node ast.Node) (runtime.Number, []string) {
	t.Helper()
	sink := diagnostics.NewCollector()
	interp := New(WithSink(sink))
	result, err := interp.Evaluate(node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return result, sink.Messages()
}

func expectNumber(t *testing.T, label string, got runtime.Number, want runtime.Number) {
	t.Helper()
	if !runtime.Same(got, want) {
		t.Fatalf("%s: got %s (%v), want %s (%v)", label, got.Type, got.Value, want.Type, want.Value)
	}
}

func TestBuiltinResults(t *testing.T) {
	cases := []struct {
		name string
		expr ast.Node
		want runtime.Number
	}{
		{"AddEmpty", ast.Call("add"), runtime.Int(0)},
		{"AddMixed", ast.Call("add", ast.Int(3), ast.Dbl(4.5)), runtime.Double(7.5)},
		{"AddInts", ast.Call("add", ast.Int(1), ast.Int(2), ast.Int(3)), runtime.Int(6)},
		{"AddDoubleFirst", ast.Call("add", ast.Dbl(1), ast.Int(2)), runtime.Double(3)},
		{"SubInts", ast.Call("sub", ast.Int(5), ast.Int(2)), runtime.Int(3)},
		{"MultMixed", ast.Call("mult", ast.Int(2), ast.Dbl(1.5)), runtime.Double(3)},
		{"DivInts", ast.Call("div", ast.Int(1), ast.Int(1)), runtime.Int(1)},
		{"DivIntsKeepsFraction", ast.Call("div", ast.Int(1), ast.Int(2)), runtime.Int(0.5)},
		{"DivMixed", ast.Call("div", ast.Dbl(1), ast.Int(1)), runtime.Double(1)},
		{"RemainderNegative", ast.Call("remainder", ast.Int(-7), ast.Int(3)), runtime.Int(1)},
		{"RemainderDouble", ast.Call("remainder", ast.Dbl(7.5), ast.Int(2)), runtime.Double(1.5)},
		{"PowInts", ast.Call("pow", ast.Int(2), ast.Int(10)), runtime.Int(1024)},
		{"PowMixed", ast.Call("pow", ast.Dbl(4), ast.Dbl(0.5)), runtime.Double(2)},
		{"NegInt", ast.Call("neg", ast.Int(5)), runtime.Int(-5)},
		{"NegDouble", ast.Call("neg", ast.Dbl(5.5)), runtime.Double(-5.5)},
		{"AbsInt", ast.Call("abs", ast.Int(-4)), runtime.Int(4)},
		{"ExpAlwaysDouble", ast.Call("exp", ast.Int(0)), runtime.Double(1)},
		{"Exp2KeepsIntType", ast.Call("exp2", ast.Int(3)), runtime.Int(8)},
		{"Exp2Double", ast.Call("exp2", ast.Dbl(-1)), runtime.Double(0.5)},
		{"LogAlwaysDouble", ast.Call("log", ast.Int(1)), runtime.Double(0)},
		{"SqrtInt", ast.Call("sqrt", ast.Int(4)), runtime.Double(2)},
		{"SqrtDouble", ast.Call("sqrt", ast.Dbl(4)), runtime.Double(2)},
		{"CbrtInt", ast.Call("cbrt", ast.Int(27)), runtime.Double(math.Cbrt(27))},
		{"Hypot", ast.Call("hypot", ast.Int(3), ast.Int(4)), runtime.Double(5)},
		{"HypotThree", ast.Call("hypot", ast.Int(1), ast.Int(2), ast.Int(2)), runtime.Double(3)},
		{"HypotEmpty", ast.Call("hypot"), runtime.Int(0)},
		{"MinSingle", ast.Call("min", ast.Dbl(2.5)), runtime.Double(2.5)},
		{"MaxSingle", ast.Call("max", ast.Int(7)), runtime.Int(7)},
		{"MinWinnerType", ast.Call("min", ast.Dbl(3), ast.Int(1), ast.Dbl(2)), runtime.Int(1)},
		{"MaxWinnerType", ast.Call("max", ast.Int(3), ast.Dbl(9), ast.Int(2)), runtime.Double(9)},
		{"MaxTieKeepsFirst", ast.Call("max", ast.Int(3), ast.Dbl(3)), runtime.Int(3)},
		{"MinEmpty", ast.Call("min"), runtime.Int(0)},
	}
	for _, tc := range cases {
		got, _ := evaluateWithWarnings(t, tc.expr)
		expectNumber(t, tc.name, got, tc.want)
	}
}

func TestArityWarnings(t *testing.T) {
	cases := []struct {
		name    string
		expr    ast.Node
		want    runtime.Number
		warning string
	}{
		{"AddEmpty", ast.Call("add"), runtime.Zero(), "add called with no operands, 0 returned"},
		{"SubSingle", ast.Call("sub", ast.Int(5)), runtime.NaN(), "sub called with 1 operand, nan returned"},
		{"SubExtra", ast.Call("sub", ast.Int(5), ast.Int(2), ast.Int(9)), runtime.Int(3), "sub called with too many operands, ignoring extra"},
		{"DivEmpty", ast.Call("div"), runtime.Zero(), "div called with no operands, 0 returned"},
		{"NegEmpty", ast.Call("neg"), runtime.NaN(), "neg called with no operands, nan returned"},
		{"AbsExtra", ast.Call("abs", ast.Int(-2), ast.Int(8)), runtime.Int(2), "abs called with extra operands"},
		{"SqrtExtra", ast.Call("sqrt", ast.Int(9), ast.Int(1)), runtime.Double(3), "sqrt called with extra operands"},
		{"MaxEmpty", ast.Call("max"), runtime.Zero(), "max called with no operands, 0 returned"},
		{"Unknown", ast.Call("frobnicate", ast.Int(1)), runtime.NaN(), "unknown function 'frobnicate', nan returned"},
	}
	for _, tc := range cases {
		got, warnings := evaluateWithWarnings(t, tc.expr)
		expectNumber(t, tc.name, got, tc.want)
		if len(warnings) != 1 || warnings[0] != tc.warning {
			t.Fatalf("%s: expected warning %q, got %v", tc.name, tc.warning, warnings)
		}
	}
}

func TestBinaryDoesNotEvaluateBeyondSecondOperand(t *testing.T) {
	expr := ast.Call("sub", ast.Int(5), ast.Int(2), ast.Sym("missing"))
	got, warnings := evaluateWithWarnings(t, expr)
	expectNumber(t, "sub", got, runtime.Int(3))
	for _, w := range warnings {
		if strings.Contains(w, "undefined symbol") {
			t.Fatalf("third operand should not be evaluated, got %v", warnings)
		}
	}
}

func TestWarningsDoNotAbortEnclosingExpression(t *testing.T) {
	expr := ast.Call("add", ast.Call("sub", ast.Int(1)), ast.Int(2))
	got, warnings := evaluateWithWarnings(t, expr)
	if !got.IsNaN() || got.Type != ast.DoubleType {
		t.Fatalf("expected NaN to propagate as a double, got %+v", got)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %v", warnings)
	}

	expr = ast.Call("add", ast.Call("mult"), ast.Int(2))
	got, _ = evaluateWithWarnings(t, expr)
	expectNumber(t, "zero fallback", got, runtime.Int(2))
}

func TestShadowingResolvesInnermostFirst(t *testing.T) {
	inner := ast.Let(ast.Sym("x"), ast.Bind("x", ast.Int(2)))
	outer := ast.Let(ast.Call("add", inner, ast.Sym("x")), ast.Bind("x", ast.Int(10)))
	got, warnings := evaluateWithWarnings(t, outer)
	expectNumber(t, "shadowed", got, runtime.Int(12))
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings %v", warnings)
	}
}

func TestOuterBindingsVisibleInNestedScope(t *testing.T) {
	inner := ast.Let(ast.Call("mult", ast.Sym("x"), ast.Sym("y")), ast.Bind("y", ast.Int(3)))
	outer := ast.Let(inner, ast.Bind("x", ast.Dbl(1.5)))
	got, _ := evaluateWithWarnings(t, outer)
	expectNumber(t, "nested", got, runtime.Double(4.5))
}

func TestBindingValuesSeeSiblingBindings(t *testing.T) {
	expr := ast.Let(ast.Sym("y"),
		ast.Bind("x", ast.Int(4)),
		ast.Bind("y", ast.Call("add", ast.Sym("x"), ast.Int(1))),
	)
	got, _ := evaluateWithWarnings(t, expr)
	expectNumber(t, "sibling", got, runtime.Int(5))
}

func TestDuplicateBindingUsesLaterValue(t *testing.T) {
	sink := diagnostics.NewCollector()
	expr := ast.LetWith(sink, ast.Sym("x"), ast.Bind("x", ast.Int(1)), ast.Bind("x", ast.Int(2)))
	if expr.Bindings.Len() != 1 {
		t.Fatalf("expected a single entry for x, got %v", expr.Bindings.IDs())
	}
	got, err := New(WithSink(sink)).Evaluate(expr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectNumber(t, "duplicate", got, runtime.Int(2))
	if msgs := sink.Messages(); len(msgs) != 1 {
		t.Fatalf("expected exactly one warning, got %v", msgs)
	}
}

func TestUndefinedSymbol(t *testing.T) {
	expr := ast.Let(ast.Call("add", ast.Sym("x"), ast.Sym("nope")), ast.Bind("x", ast.Int(1)))
	got, warnings := evaluateWithWarnings(t, expr)
	if !got.IsNaN() || !got.IsDouble() {
		t.Fatalf("expected (double, nan), got %+v", got)
	}
	if len(warnings) != 1 || warnings[0] != "undefined symbol 'nope', nan returned" {
		t.Fatalf("unexpected warnings %v", warnings)
	}

	got, _ = evaluateWithWarnings(t, ast.Sym("top"))
	if !got.IsNaN() {
		t.Fatalf("top-level reference should be NaN, got %+v", got)
	}
}

func TestUnresolvedReferenceInsideUnrelatedScope(t *testing.T) {
	sibling := ast.Let(ast.Int(0), ast.Bind("x", ast.Int(1)))
	expr := ast.Call("add", sibling, ast.Sym("x"))
	got, warnings := evaluateWithWarnings(t, expr)
	if !got.IsNaN() || len(warnings) != 1 {
		t.Fatalf("bindings of a sibling scope must not be visible, got %+v %v", got, warnings)
	}
}

// Forced casts are applied when the symbol is resolved: int truncates toward
// zero, double widens the type.
func TestForcedCastAtResolution(t *testing.T) {
	cases := []struct {
		name string
		expr ast.Node
		want runtime.Number
	}{
		{"IntTruncates", ast.Let(ast.Sym("x"), ast.BindInt("x", ast.Dbl(2.9))), runtime.Int(2)},
		{"IntTruncatesNegative", ast.Let(ast.Sym("x"), ast.BindInt("x", ast.Dbl(-2.9))), runtime.Int(-2)},
		{"DoubleWidens", ast.Let(ast.Sym("x"), ast.BindDouble("x", ast.Int(3))), runtime.Double(3)},
		{"CastFeedsPromotion", ast.Let(ast.Call("add", ast.Sym("x"), ast.Int(1)), ast.BindInt("x", ast.Call("sqrt", ast.Int(10)))), runtime.Int(4)},
		{"NoCast", ast.Let(ast.Sym("x"), ast.Bind("x", ast.Dbl(2.9))), runtime.Double(2.9)},
	}
	for _, tc := range cases {
		got, _ := evaluateWithWarnings(t, tc.expr)
		expectNumber(t, tc.name, got, tc.want)
	}
}

func TestBindingsEvaluatedOnEveryReference(t *testing.T) {
	interp := New()
	bound := ast.Call("add", ast.Int(1), ast.Int(2))
	expr := ast.Let(ast.Call("add", ast.Sym("x"), ast.Sym("x"), ast.Sym("x")), ast.Bind("x", bound))
	got, err := interp.Evaluate(expr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectNumber(t, "call by name", got, runtime.Int(9))
	stats := interp.Stats()
	if stats.Resolutions != 3 {
		t.Fatalf("expected 3 resolutions, got %d", stats.Resolutions)
	}
	// scope + outer add + 3 refs + 3 * (inner add + 2 literals)
	if stats.Evaluations != 14 {
		t.Fatalf("expected 14 evaluations, got %d", stats.Evaluations)
	}
	interp.ResetStats()
	if interp.Stats() != (Stats{}) {
		t.Fatalf("expected stats to reset")
	}
}

func TestUnusedBindingsAreNotEvaluated(t *testing.T) {
	interp := New()
	expr := ast.Let(ast.Int(1), ast.Bind("x", ast.Sym("undefined")))
	got, err := interp.Evaluate(expr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectNumber(t, "lazy", got, runtime.Int(1))
	if interp.Stats().Warnings != 0 {
		t.Fatalf("unused binding should not be evaluated")
	}
}

func TestNilNodeIsFatal(t *testing.T) {
	_, err := New().Evaluate(nil)
	if err == nil || !IsFatal(err) || !errors.Is(err, ErrNilNode) {
		t.Fatalf("expected fatal nil-node error, got %v", err)
	}
}

func TestDepthLimitIsRecoverable(t *testing.T) {
	var expr ast.Node = ast.Int(1)
	for idx := 0; idx < 50; idx++ {
		expr = ast.Call("neg", expr)
	}
	interp := New(WithMaxDepth(20))
	_, err := interp.Evaluate(expr)
	if err == nil || !errors.Is(err, ErrDepthExceeded) {
		t.Fatalf("expected depth error, got %v", err)
	}
	if IsFatal(err) {
		t.Fatalf("depth errors must be recoverable")
	}
	var depthErr *DepthError
	if !errors.As(err, &depthErr) || depthErr.Limit != 20 {
		t.Fatalf("expected DepthError with limit 20, got %v", err)
	}

	got, err := New(WithMaxDepth(51)).Evaluate(expr)
	if err != nil {
		t.Fatalf("51 levels should fit, got %v", err)
	}
	expectNumber(t, "deep", got, runtime.Int(1))
}

func TestSelfReferentialBindingHitsDepthLimit(t *testing.T) {
	expr := ast.Let(ast.Sym("x"), ast.Bind("x", ast.Call("add", ast.Sym("x"), ast.Int(1))))
	_, err := New(WithMaxDepth(200)).Evaluate(expr)
	if !errors.Is(err, ErrDepthExceeded) {
		t.Fatalf("expected depth error for recursive binding, got %v", err)
	}
}

func TestEvaluateReleaseRoundTrip(t *testing.T) {
	expr := ast.Let(
		ast.Call("hypot", ast.Sym("a"), ast.Sym("b")),
		ast.Bind("a", ast.Int(3)),
		ast.BindDouble("b", ast.Int(4)),
	)
	nodes := ast.CountNodes(expr)
	got, err := New().Evaluate(expr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectNumber(t, "hypot", got, runtime.Double(5))
	if released := ast.Release(expr); released != nodes {
		t.Fatalf("released %d of %d nodes", released, nodes)
	}
}

func TestWarningLocationsComeFromSpans(t *testing.T) {
	ref := ast.Sym("ghost")
	ast.SetSpan(ref, ast.Span{Start: ast.Position{Line: 1, Column: 6}})
	sink := diagnostics.NewCollector()
	if _, err := New(WithSink(sink)).Evaluate(ast.Call("neg", ref)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	diags := sink.Diagnostics()
	if len(diags) != 1 || diags[0].Location != (diagnostics.Location{Line: 1, Column: 6}) {
		t.Fatalf("unexpected diagnostics %+v", diags)
	}
}

func TestDispatchTableCoversCatalogue(t *testing.T) {
	for _, op := range ast.Operators() {
		builtin, ok := LookupBuiltin(op)
		if !ok {
			t.Fatalf("missing builtin for %s", op)
		}
		if builtin.Name != op.String() {
			t.Fatalf("builtin name %q for %s", builtin.Name, op)
		}
		switch builtin.Arity {
		case ArityUnary:
			if builtin.Unary == nil {
				t.Fatalf("%s lacks unary implementation", op)
			}
		case ArityBinary:
			if builtin.Binary == nil {
				t.Fatalf("%s lacks binary implementation", op)
			}
		case ArityVariadic:
			if builtin.Variadic == nil {
				t.Fatalf("%s lacks variadic implementation", op)
			}
		}
	}
	if _, ok := LookupBuiltin(ast.OpCustom); ok {
		t.Fatalf("custom operator must not have a builtin")
	}
}
