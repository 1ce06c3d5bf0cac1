package diagnostics

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Printer writes diagnostics to a terminal, highlighting them in red.
type Printer struct {
	out   io.Writer
	paint *color.Color
}

// NewPrinter returns a Printer writing to out. When useColor is false the
// output carries no escape sequences.
func NewPrinter(out io.Writer, useColor bool) *Printer {
	paint := color.New(color.FgRed)
	if useColor {
		paint.EnableColor()
	} else {
		paint.DisableColor()
	}
	return &Printer{out: out, paint: paint}
}

func (p *Printer) Report(d Diagnostic) {
	if p == nil || p.out == nil {
		return
	}
	label := "ERROR"
	if d.Severity == SeverityWarning {
		label = "WARNING"
	}
	text := d.Message
	if location := FormatLocation(d.Location); location != "" {
		text = fmt.Sprintf("%s: %s", location, d.Message)
	}
	p.paint.Fprintf(p.out, "%s: %s\n", label, text)
}
