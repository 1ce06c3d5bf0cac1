package main

import (
	"fmt"
	"io"
)

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  cilisp [options]                 start the interactive prompt")
	fmt.Fprintln(w, "  cilisp [options] <file.cilisp>...")
	fmt.Fprintln(w, "  cilisp [options] -e <expr>")
	fmt.Fprintln(w, "  cilisp [options] < input")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  -c <file>   read settings from a YAML config file")
	fmt.Fprintln(w, "  -e <expr>   evaluate expr (may be repeated)")
	fmt.Fprintln(w, "  -d <n>      maximum evaluation depth")
	fmt.Fprintln(w, "  -n          disable colored diagnostics")
	fmt.Fprintln(w, "  -t          trace evaluation to stderr")
	fmt.Fprintln(w, "  -h          show this help")
	fmt.Fprintln(w, "  -V          print the version")
}
