package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"git.sr.ht/~sircmpwn/getopt"
	"github.com/mattn/go-isatty"

	"cilisp/interpreter-go/pkg/driver"
	"cilisp/interpreter-go/pkg/interpreter"
)

const cliToolVersion = "cilisp 0.0.0-dev"

type options struct {
	configPath string
	exprs      []string
	maxDepth   int
	noColor    bool
	trace      bool
	help       bool
	version    bool
	files      []string
}

func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

func parseOptions(argv []string) (options, error) {
	var opts options
	parsed, optind, err := getopt.Getopts(argv, "c:e:d:nthV")
	if err != nil {
		return opts, err
	}
	for _, opt := range parsed {
		switch opt.Option {
		case 'c':
			opts.configPath = opt.Value
		case 'e':
			opts.exprs = append(opts.exprs, opt.Value)
		case 'd':
			depth, err := strconv.Atoi(opt.Value)
			if err != nil || depth < 1 {
				return opts, fmt.Errorf("invalid -d parameter %q", opt.Value)
			}
			opts.maxDepth = depth
		case 'n':
			opts.noColor = true
		case 't':
			opts.trace = true
		case 'h':
			opts.help = true
		case 'V':
			opts.version = true
		}
	}
	opts.files = argv[optind:]
	return opts, nil
}

func run(argv []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseOptions(argv)
	if err != nil {
		fmt.Fprintln(stderr, err)
		printUsage(stderr)
		return 1
	}
	if opts.help {
		printUsage(stdout)
		return 0
	}
	if opts.version {
		fmt.Fprintln(stdout, cliToolVersion)
		return 0
	}

	cfg, err := driver.LoadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if opts.maxDepth > 0 {
		cfg.MaxDepth = opts.maxDepth
	}
	if opts.noColor {
		cfg.Color = false
	}
	if opts.trace {
		cfg.Trace = true
	}

	session := driver.Open(cfg, stdout, stderr)
	sd := quitOnSignal(session)
	defer sd.Stop()

	switch {
	case len(opts.exprs) > 0:
		for _, expr := range opts.exprs {
			if code := evalChunk(session, expr); code != 0 || session.Done() {
				return code
			}
		}
		return 0
	case len(opts.files) > 0:
		return runFiles(session, opts.files, stderr)
	case isTerminal(stdin):
		return runRepl(session, cfg, stdout, sd)
	default:
		src, err := io.ReadAll(stdin)
		if err != nil {
			fmt.Fprintf(stderr, "read stdin: %v\n", err)
			return 1
		}
		return evalChunk(session, string(src))
	}
}

func runFiles(session *driver.Session, paths []string, stderr io.Writer) int {
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "read %s: %v\n", path, err)
			return 1
		}
		if code := evalChunk(session, string(src)); code != 0 || session.Done() {
			return code
		}
	}
	return 0
}

// evalChunk runs src and maps the outcome to an exit code. Syntax errors are
// reported and do not fail the run; fatal errors do.
func evalChunk(session *driver.Session, src string) int {
	err := session.Eval(src)
	if err == nil {
		return 0
	}
	session.Report(err)
	if interpreter.IsFatal(err) {
		return 1
	}
	return 0
}

func isTerminal(r io.Reader) bool {
	file, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

// exitProcess is swapped out in tests.
var exitProcess = os.Exit

// shutdown ends the process on SIGINT or SIGTERM. The main goroutine may be
// blocked reading input and never look at the quit flag, so the handler marks
// the session done, runs the exit hooks and exits itself.
type shutdown struct {
	session *driver.Session
	signals chan os.Signal
	done    chan struct{}

	mu    sync.Mutex
	hooks []func()
}

func quitOnSignal(session *driver.Session) *shutdown {
	sd := &shutdown{
		session: session,
		signals: make(chan os.Signal, 1),
		done:    make(chan struct{}),
	}
	signal.Notify(sd.signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sd.signals:
			sd.handle(sig)
		case <-sd.done:
		}
	}()
	return sd
}

// OnExit registers fn to run before a signal ends the process. Hooks run
// newest first.
func (sd *shutdown) OnExit(fn func()) {
	sd.mu.Lock()
	sd.hooks = append(sd.hooks, fn)
	sd.mu.Unlock()
}

func (sd *shutdown) handle(sig os.Signal) {
	sd.session.Quit()
	sd.mu.Lock()
	hooks := append([]func(){}, sd.hooks...)
	sd.mu.Unlock()
	for idx := len(hooks) - 1; idx >= 0; idx-- {
		hooks[idx]()
	}
	exitProcess(signalExitCode(sig))
}

// Stop restores default signal handling.
func (sd *shutdown) Stop() {
	signal.Stop(sd.signals)
	close(sd.done)
}

func signalExitCode(sig os.Signal) int {
	if num, ok := sig.(syscall.Signal); ok {
		return 128 + int(num)
	}
	return 1
}
