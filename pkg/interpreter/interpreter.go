package interpreter

import (
	"log/slog"

	"cilisp/interpreter-go/pkg/ast"
	"cilisp/interpreter-go/pkg/diagnostics"
	"cilisp/interpreter-go/pkg/runtime"
)

// DefaultMaxDepth bounds evaluation nesting when no limit is configured.
const DefaultMaxDepth = 10000

// Stats counts evaluator work since the last reset.
type Stats struct {
	Evaluations int
	Resolutions int
	Warnings    int
}

// Interpreter evaluates expression trees. It keeps no state between
// top-level evaluations other than Stats.
type Interpreter struct {
	sink     diagnostics.Sink
	logger   *slog.Logger
	maxDepth int
	stats    Stats
}

type Option func(*Interpreter)

// WithSink routes warnings to sink.
func WithSink(sink diagnostics.Sink) Option {
	return func(i *Interpreter) {
		if sink != nil {
			i.sink = sink
		}
	}
}

// WithMaxDepth sets the nesting limit; values below 1 keep the default.
func WithMaxDepth(depth int) Option {
	return func(i *Interpreter) {
		if depth > 0 {
			i.maxDepth = depth
		}
	}
}

// WithLogger enables debug tracing of dispatch and symbol resolution.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) {
		if logger != nil {
			i.logger = logger
		}
	}
}

func New(opts ...Option) *Interpreter {
	i := &Interpreter{
		sink:     diagnostics.Discard,
		logger:   slog.New(slog.DiscardHandler),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Interpreter) MaxDepth() int {
	return i.maxDepth
}

func (i *Interpreter) Stats() Stats {
	return i.stats
}

func (i *Interpreter) ResetStats() {
	i.stats = Stats{}
}

// Evaluate computes the value of node. Warnings go to the sink and never
// produce an error. The error is non-nil only for a missing node (fatal, see
// IsFatal) or when nesting exceeds the depth limit (recoverable).
func (i *Interpreter) Evaluate(node ast.Node) (runtime.Number, error) {
	state := &evalState{}
	return i.evaluate(node, state)
}

type evalState struct {
	depth int
}

func (i *Interpreter) warn(node ast.Node, format string, args ...any) {
	i.stats.Warnings++
	diagnostics.Warn(i.sink, ast.Location(node), format, args...)
}
