package diagnostics

import (
	"fmt"
	"strings"
	"sync"
)

// Severity captures diagnostic levels.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Location references a source position for diagnostics. The zero value means
// the position is unknown.
type Location struct {
	Line   int
	Column int
}

// Diagnostic is a single structured message produced while building or
// evaluating an expression.
type Diagnostic struct {
	Severity Severity
	Message  string
	Location Location
}

// Sink receives diagnostics. Implementations must not influence evaluation.
type Sink interface {
	Report(Diagnostic)
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(Diagnostic)

func (f SinkFunc) Report(d Diagnostic) {
	if f != nil {
		f(d)
	}
}

// Discard drops every diagnostic.
var Discard Sink = SinkFunc(func(Diagnostic) {})

// Warn reports a warning to sink. A nil sink is treated as Discard.
func Warn(sink Sink, loc Location, format string, args ...any) {
	if sink == nil {
		return
	}
	sink.Report(Diagnostic{
		Severity: SeverityWarning,
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
	})
}

// Error reports an error-level diagnostic to sink.
func Error(sink Sink, loc Location, format string, args ...any) {
	if sink == nil {
		return
	}
	sink.Report(Diagnostic{
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
	})
}

// Describe formats a diagnostic for plain-text output.
func Describe(d Diagnostic) string {
	message := strings.TrimSpace(d.Message)
	prefix := "error: "
	if d.Severity == SeverityWarning {
		prefix = "warning: "
	}
	if location := FormatLocation(d.Location); location != "" {
		return fmt.Sprintf("%s%s %s", prefix, location, message)
	}
	return prefix + message
}

// FormatLocation renders loc, or "" when it is unknown.
func FormatLocation(loc Location) string {
	switch {
	case loc.Line > 0 && loc.Column > 0:
		return fmt.Sprintf("line %d, column %d", loc.Line, loc.Column)
	case loc.Line > 0:
		return fmt.Sprintf("line %d", loc.Line)
	default:
		return ""
	}
}

// Collector records diagnostics in arrival order.
type Collector struct {
	mu    sync.Mutex
	items []Diagnostic
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	c.items = append(c.items, d)
	c.mu.Unlock()
}

// Diagnostics returns a copy of everything reported so far.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	c.mu.Unlock()
	return out
}

// Messages returns the message text of every warning, in order.
func (c *Collector) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.items))
	for _, d := range c.items {
		out = append(out, d.Message)
	}
	return out
}

func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Collector) Reset() {
	c.mu.Lock()
	c.items = c.items[:0]
	c.mu.Unlock()
}

// Tee fans every diagnostic out to each non-nil sink.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(d Diagnostic) {
		for _, sink := range sinks {
			if sink != nil {
				sink.Report(d)
			}
		}
	})
}
