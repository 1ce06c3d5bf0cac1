package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"cilisp/interpreter-go/pkg/diagnostics"
	"cilisp/interpreter-go/pkg/driver"
	"cilisp/interpreter-go/pkg/parser"
)

const (
	promptCont  = "... "
	historyFile = ".cilisp_history"
)

func runRepl(session *driver.Session, cfg driver.Config, stdout io.Writer, sd *shutdown) int {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := historyPath(cfg.HistoryFile)
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	sd.OnExit(func() {
		saveHistory(ln, histPath)
		_ = ln.Close()
	})

	code := 0
	for !session.Done() {
		src, ok := readChunk(ln, cfg.Prompt)
		if !ok {
			fmt.Fprintln(stdout)
			break
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		if code = evalChunk(session, src); code != 0 {
			break
		}
	}

	saveHistory(ln, histPath)
	return code
}

func saveHistory(ln *liner.State, path string) {
	if path == "" {
		return
	}
	if f, err := os.Create(path); err == nil {
		_, _ = ln.WriteHistory(f)
		_ = f.Close()
	}
}

// readChunk keeps prompting until the buffered lines parse or fail for a
// reason other than missing input. Ctrl+C drops the buffer; EOF ends input.
func readChunk(ln *liner.State, prompt string) (string, bool) {
	var b strings.Builder
	for {
		current := prompt
		if b.Len() > 0 {
			current = promptCont
		}
		line, err := ln.Prompt(current)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if needsMore(src) {
			continue
		}
		return src, true
	}
}

func needsMore(src string) bool {
	program, err := parser.Parse(src, diagnostics.Discard)
	if err != nil {
		return parser.IsIncomplete(err)
	}
	program.Release()
	return false
}

func historyPath(configured string) string {
	if configured != "" {
		return configured
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyFile)
}
