package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/tevino/abool/v2"

	"cilisp/interpreter-go/pkg/ast"
	"cilisp/interpreter-go/pkg/diagnostics"
	"cilisp/interpreter-go/pkg/interpreter"
	"cilisp/interpreter-go/pkg/parser"
	"cilisp/interpreter-go/pkg/runtime"
)

// Session evaluates chunks of input against one interpreter. Each top-level
// expression is evaluated, printed and released before the next one starts.
type Session struct {
	interp *interpreter.Interpreter
	sink   diagnostics.Sink
	out    io.Writer
	logger *slog.Logger
	quit   *abool.AtomicBool
}

// NewSession writes results to out and routes warnings and reported errors to
// sink. opts are passed through to the interpreter.
func NewSession(out io.Writer, sink diagnostics.Sink, opts ...interpreter.Option) *Session {
	if sink == nil {
		sink = diagnostics.Discard
	}
	if out == nil {
		out = io.Discard
	}
	opts = append([]interpreter.Option{interpreter.WithSink(sink)}, opts...)
	return &Session{
		interp: interpreter.New(opts...),
		sink:   sink,
		out:    out,
		logger: slog.New(slog.DiscardHandler),
		quit:   abool.NewBool(false),
	}
}

// Open builds a session from cfg: results go to out, diagnostics are printed
// to errOut, and tracing (when enabled) is logged to errOut at debug level.
func Open(cfg Config, out io.Writer, errOut io.Writer) *Session {
	opts := []interpreter.Option{interpreter.WithMaxDepth(cfg.MaxDepth)}
	var logger *slog.Logger
	if cfg.Trace {
		logger = slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: slog.LevelDebug}))
		opts = append(opts, interpreter.WithLogger(logger))
	}
	session := NewSession(out, diagnostics.NewPrinter(errOut, cfg.Color), opts...)
	if logger != nil {
		session.logger = logger
	}
	return session
}

func (s *Session) Interpreter() *interpreter.Interpreter {
	return s.interp
}

// Quit marks the session finished. Safe to call from a signal handler.
func (s *Session) Quit() {
	s.quit.Set()
}

// Done reports whether quit was requested.
func (s *Session) Done() bool {
	return s.quit.IsSet()
}

// Eval runs the expressions of src in order. Each one is parsed, evaluated,
// printed and released before the next is parsed, so a syntax error stops the
// chunk after the expressions ahead of it have run. The syntax error is
// returned untouched; the caller decides whether to ask for more input or
// report it. Depth errors are reported and the next expression still runs. A
// fatal error stops the chunk and is returned.
func (s *Session) Eval(src string) error {
	if s.Done() {
		return nil
	}
	stream, err := parser.NewStream(src, s.sink)
	if err != nil {
		return err
	}
	for idx := 0; !s.Done(); idx++ {
		expr, err := stream.Next()
		if err != nil {
			return err
		}
		if expr == nil {
			break
		}
		err = s.run(idx, expr)
		ast.Release(expr)
		if err != nil {
			return err
		}
	}
	if stream.Quit() {
		s.Quit()
	}
	return nil
}

func (s *Session) run(idx int, expr ast.Node) error {
	if s.logger.Enabled(context.Background(), slog.LevelDebug) {
		s.logger.Debug("evaluating",
			slog.Int("expression", idx),
			slog.Int("nesting", ast.Depth(expr)),
			slog.Int("max_depth", s.interp.MaxDepth()))
	}
	value, err := s.interp.Evaluate(expr)
	if err != nil {
		if interpreter.IsFatal(err) {
			return err
		}
		s.Report(err)
		return nil
	}
	s.logger.Debug("evaluated",
		slog.Int("expression", idx),
		slog.String("result", runtime.Format(value)))
	fmt.Fprintln(s.out, runtime.Format(value))
	return nil
}

// Report sends err to the session sink as an error diagnostic, keeping the
// location when err carries one.
func (s *Session) Report(err error) {
	if err == nil {
		return
	}
	var location diagnostics.Location
	var syntaxErr *parser.SyntaxError
	var depthErr *interpreter.DepthError
	msg := err.Error()
	switch {
	case errors.As(err, &syntaxErr):
		location = syntaxErr.Location
		msg = syntaxErr.Msg
	case errors.As(err, &depthErr):
		location = depthErr.Location
		msg = fmt.Sprintf("%s (limit %d)", interpreter.ErrDepthExceeded.Error(), depthErr.Limit)
	}
	diagnostics.Error(s.sink, location, "%s", msg)
}
