// cargo-junit converts cargo test console output into JUnit XML, SARIF,
// JSON or a readable summary.
//
// Usage:
//
//	cargo test 2>&1 | cargo-junit > junit.xml
//	cargo-junit --input test.log --format sarif
//	cargo-junit run -- --workspace
//
// Output formats:
//
//	junit     JUnit XML (default when stdout is not a terminal)
//	terminal  styled summary (default when stdout is a terminal)
//	sarif     SARIF 2.1.0, one result per failing test
//	llm       terse plain text for AI consumption
//	json      summary patterns as JSON
//
// Exit codes: 0 when every suite passed, 1 when a test or the build failed,
// 2 for usage, input or parse errors.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"golang.org/x/term"

	"github.com/dkoosis/cargojunit/internal/capture"
	"github.com/dkoosis/cargojunit/internal/config"
	"github.com/dkoosis/cargojunit/internal/detect"
	"github.com/dkoosis/cargojunit/internal/version"
	"github.com/dkoosis/cargojunit/pkg/cargotest"
	"github.com/dkoosis/cargojunit/pkg/junit"
	"github.com/dkoosis/cargojunit/pkg/mapper"
	"github.com/dkoosis/cargojunit/pkg/render"
	"github.com/dkoosis/cargojunit/pkg/sarif"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// usageError is a command-line error the flag package has not already
// reported.
type usageError string

func (e usageError) Error() string { return string(e) }

// options are the parsed command line.
type options struct {
	flags   config.CliFlags
	input   string
	name    string
	version bool
	runArgs []string // nil unless the run subcommand was given
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("cargo-junit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: cargo-junit [flags] [run [-- cargo test args]]\n\n")
		fs.PrintDefaults()
	}

	o := &options{}
	fs.StringVar(&o.flags.Format, "format", "", "Output format: auto, junit, sarif, json, terminal, llm")
	fs.StringVar(&o.flags.Theme, "theme", "", "Terminal theme: default, orca, mono")
	fs.StringVar(&o.flags.Output, "output", "", "Write output to `file` instead of stdout")
	fs.StringVar(&o.flags.Output, "o", "", "Shorthand for --output")
	fs.StringVar(&o.flags.SuitePrefix, "suite-prefix", "", "Prefix for JUnit classnames")
	fs.StringVar(&o.flags.ConfigPath, "config", "", "Read configuration from `file`")
	fs.BoolVar(&o.flags.Debug, "debug", false, "Log diagnostics to stderr")
	fs.BoolVar(&o.flags.NoColor, "no-color", false, "Disable colors")
	fs.StringVar(&o.input, "input", "", "Read the transcript from `file` instead of stdin")
	fs.StringVar(&o.name, "name", "cargo test", "JUnit testsuites name")
	fs.BoolVar(&o.version, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "debug":
			o.flags.DebugSet = true
		case "no-color":
			o.flags.NoColorSet = true
		}
	})

	rest := fs.Args()
	if len(rest) > 0 {
		if rest[0] != "run" {
			return nil, usageError(fmt.Sprintf("unknown command %q", rest[0]))
		}
		o.runArgs = rest[1:]
		if len(o.runArgs) > 0 && o.runArgs[0] == "--" {
			o.runArgs = o.runArgs[1:]
		}
		if o.runArgs == nil {
			o.runArgs = []string{}
		}
		if o.input != "" {
			return nil, usageError("--input cannot be combined with run")
		}
	}
	return o, nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	o, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintf(stderr, "cargo-junit: %v\n", err)
		}
		return exitUsage
	}
	if o.version {
		fmt.Fprintln(stdout, version.String())
		return exitOK
	}

	cfg, err := config.Resolve(o.flags)
	if err != nil {
		fmt.Fprintf(stderr, "cargo-junit: %v\n", err)
		return exitUsage
	}
	logger := newLogger(stderr, cfg.Debug)
	logger.Debug("config resolved",
		"path", cfg.ConfigPath,
		"format", cfg.Format, "format_source", cfg.FormatSource,
		"theme", cfg.Theme, "theme_source", cfg.ThemeSource,
		"output", cfg.Output, "output_source", cfg.OutputSource)

	input, code := readTranscript(o, cfg, stdin, stderr, logger)
	if code >= 0 {
		return code
	}

	report, code := parseTranscript(input, stderr, logger)
	if code >= 0 {
		return code
	}

	out, closeOut, err := openOutput(cfg.Output, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "cargo-junit: %v\n", err)
		return exitUsage
	}
	format := resolveFormat(cfg.Format, out)
	logger.Debug("writing report", "format", format, "suites", len(report))

	werr := writeReport(out, report, format, cfg, o.name, logger)
	if cerr := closeOut(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		fmt.Fprintf(stderr, "cargo-junit: writing output: %v\n", werr)
		return exitUsage
	}

	if report.Failed() {
		return exitFailed
	}
	return exitOK
}

// readTranscript returns the cargo test output from the run subcommand, the
// --input file or stdin. Returns (data, -1) on success; (nil, exitCode) on error.
func readTranscript(o *options, cfg *config.Resolved, stdin io.Reader, stderr io.Writer, logger *slog.Logger) ([]byte, int) {
	var data []byte
	switch {
	case o.runArgs != nil:
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		opts := capture.Options{Args: append(append([]string{}, cfg.CargoArgs...), o.runArgs...)}
		if isTTYWriter(stderr) {
			opts.Progress = stderr
		}
		logger.Debug("running cargo", "args", opts.Args)
		res, err := capture.Run(ctx, opts)
		if err != nil {
			fmt.Fprintf(stderr, "cargo-junit: %v\n", err)
			return nil, exitUsage
		}
		logger.Debug("cargo finished", "exit_code", res.ExitCode, "duration", res.Duration, "bytes", len(res.Output))
		data = res.Output
	case o.input != "":
		b, err := os.ReadFile(o.input)
		if err != nil {
			fmt.Fprintf(stderr, "cargo-junit: %v\n", err)
			return nil, exitUsage
		}
		data = capture.Strip(b)
	default:
		b, err := io.ReadAll(stdin)
		if err != nil {
			fmt.Fprintf(stderr, "cargo-junit: reading stdin: %v\n", err)
			return nil, exitUsage
		}
		data = capture.Strip(b)
	}
	if len(data) == 0 {
		fmt.Fprintf(stderr, "cargo-junit: no input\n")
		return nil, exitUsage
	}
	return data, -1
}

// parseTranscript sniffs and parses input. Returns (report, -1) on success;
// (nil, exitCode) on error.
func parseTranscript(input []byte, stderr io.Writer, logger *slog.Logger) (cargotest.Report, int) {
	kind := detect.Sniff(input)
	logger.Debug("input sniffed", "kind", kind.String(), "bytes", len(input))
	switch kind {
	case detect.SARIF, detect.GoTestJSON:
		fmt.Fprintf(stderr, "cargo-junit: input is %s, not cargo test output\n", kind)
		return nil, exitUsage
	case detect.Unknown:
		fmt.Fprintf(stderr, "cargo-junit: no cargo test output found in input\n")
		return nil, exitUsage
	}

	report, err := cargotest.Parse(input)
	if err != nil {
		var se *cargotest.SyntaxError
		if errors.As(err, &se) {
			logger.Debug("parse failed", "rule", se.Rule, "line", se.Line, "offset", se.Offset)
		}
		fmt.Fprintf(stderr, "cargo-junit: parsing input: %v\n", err)
		return nil, exitUsage
	}
	stats := report.Stats()
	logger.Debug("parsed", "suites", stats.Suites, "tests", stats.Tests,
		"failed", stats.Failed, "compile_error", stats.CompileError)
	return report, -1
}

func writeReport(w io.Writer, report cargotest.Report, format string, cfg *config.Resolved, name string, logger *slog.Logger) error {
	switch format {
	case "junit":
		host, _ := os.Hostname()
		return junit.Write(w, report, junit.Options{
			Name:      name,
			Package:   cfg.SuitePrefix,
			Timestamp: time.Now(),
			Hostname:  host,
		})
	case "sarif":
		stats, err := sarif.Write(w, report, version.Resolved())
		if err != nil {
			return err
		}
		logger.Debug("sarif written", "results", stats.Total, "by_rule", stats.ByRule, "by_file", stats.ByFile)
		return nil
	}

	var r render.Renderer
	switch format {
	case "json":
		r = render.NewJSON()
	case "llm":
		r = render.NewLLM()
	default:
		r = render.NewTerminal(render.ThemeByName(cfg.Theme), termWidth(w))
	}
	_, err := io.WriteString(w, r.Render(mapper.FromReport(report)))
	return err
}

// openOutput returns stdout when path is empty, otherwise a created file.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func resolveFormat(format string, w io.Writer) string {
	if format != "auto" {
		return format
	}
	// TTY = terminal, piped or file = junit
	if isTTYWriter(w) {
		return "terminal"
	}
	return "junit"
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// isTTYWriter reports whether w is a terminal.
func isTTYWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// termWidth returns the terminal width for w, defaulting to 80.
func termWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil && tw > 0 {
			return tw
		}
	}
	return 80
}
