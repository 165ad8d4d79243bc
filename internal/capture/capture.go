// Package capture runs cargo test and collects its console transcript.
package capture

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/acarl005/stripansi"
)

// DefaultCommand is the command line Run executes before Options.Args.
var DefaultCommand = []string{"cargo", "test"}

// Options configure a cargo test run.
type Options struct {
	// Command replaces DefaultCommand, e.g. {"cross", "test"}.
	Command []string
	// Args are appended to the command, e.g. {"--workspace"}.
	Args []string
	Dir  string
	// Env is added to the inherited environment.
	Env []string
	// Progress, when set, receives a live spinner. It should be a terminal.
	Progress io.Writer
}

// Result is a finished run.
type Result struct {
	// Output is stdout and stderr interleaved as cargo wrote them, with
	// ANSI escape sequences removed.
	Output   []byte
	ExitCode int
	Duration time.Duration
}

// Run executes cargo test and returns its transcript. A non-zero exit from
// cargo is not an error: failing tests are the common case. Errors are
// reserved for failing to start or wait on the process.
func Run(ctx context.Context, opts Options) (Result, error) {
	argv := append(append([]string{}, commandOrDefault(opts.Command)...), opts.Args...)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = opts.Dir
	cmd.Env = append(os.Environ(), "CARGO_TERM_COLOR=never")
	cmd.Env = append(cmd.Env, opts.Env...)

	out, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, fmt.Errorf("capture: %w", err)
	}
	// One pipe for both streams keeps cargo's "Running" headers (stderr)
	// ordered with the test lines (stdout).
	cmd.Stderr = cmd.Stdout

	var prog *progress
	if opts.Progress != nil {
		prog = startProgress(ctx, opts.Progress, argv)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		prog.stop()
		return Result{}, fmt.Errorf("capture: start %s: %w", argv[0], err)
	}

	var buf bytes.Buffer
	scanErr := collect(out, &buf, prog.line)

	waitErr := cmd.Wait()
	prog.stop()

	res := Result{Output: buf.Bytes(), Duration: time.Since(start)}
	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
	case errors.As(waitErr, &exitErr) && exitErr.ExitCode() >= 0:
		res.ExitCode = exitErr.ExitCode()
	case ctx.Err() != nil:
		return res, fmt.Errorf("capture: %w", ctx.Err())
	default:
		return res, fmt.Errorf("capture: wait %s: %w", argv[0], waitErr)
	}
	if scanErr != nil {
		return res, fmt.Errorf("capture: read output: %w", scanErr)
	}
	return res, nil
}

func commandOrDefault(c []string) []string {
	if len(c) == 0 {
		return DefaultCommand
	}
	return c
}

// collect copies r into buf line by line with ANSI sequences stripped,
// reporting each line to onLine. Lines have no length limit, so the pipe is
// always drained and cargo never blocks on a full pipe.
func collect(r io.Reader, buf *bytes.Buffer, onLine func(string)) error {
	br := bufio.NewReader(r)
	for {
		raw, err := br.ReadString('\n')
		if raw != "" {
			line := stripansi.Strip(strings.TrimSuffix(strings.TrimSuffix(raw, "\n"), "\r"))
			buf.WriteString(line)
			buf.WriteByte('\n')
			onLine(line)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Strip removes ANSI escape sequences from a transcript read from a file or
// stdin, so colored cargo output parses the same as plain output.
func Strip(data []byte) []byte {
	if bytes.IndexByte(data, 0x1b) < 0 {
		return data
	}
	return []byte(stripansi.Strip(string(data)))
}
