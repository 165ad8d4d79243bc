package junit

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dkoosis/cargojunit/pkg/cargotest"
)

// Failure and error type attributes.
const (
	TypeTestFailure  = "test failure"
	TypeCompileError = "compile error"
)

// Options control document-level attributes.
type Options struct {
	// Name is the <testsuites> name attribute.
	Name string
	// Package prefixes every classname, e.g. "mycrate" gives
	// "mycrate.tests" for a test named "tests::it_works".
	Package string
	// Timestamp, when set, is stamped on every suite.
	Timestamp time.Time
	Hostname  string
}

// FromReport converts r into a JUnit document.
func FromReport(r cargotest.Report, opts Options) *TestSuites {
	doc := &TestSuites{Name: opts.Name}
	for _, s := range r {
		ts := fromSuite(s, opts)
		doc.Suites = append(doc.Suites, ts)
		doc.Tests += ts.Tests
		doc.Failures += ts.Failures
		doc.Errors += ts.Errors
		doc.Skipped += ts.Skipped
		doc.Time += ts.Time
	}
	return doc
}

func fromSuite(s cargotest.Suite, opts Options) *TestSuite {
	ts := &TestSuite{
		Name:     s.Name,
		Tests:    s.Total,
		Failures: s.Failed,
		Skipped:  s.Ignored,
		Time:     s.Duration.Seconds(),
		Hostname: opts.Hostname,
	}
	if !opts.Timestamp.IsZero() {
		ts.Timestamp = opts.Timestamp.UTC().Format("2006-01-02T15:04:05")
	}
	if s.Measured > 0 {
		ts.Properties = append(ts.Properties, Property{Name: "measured", Value: fmt.Sprint(s.Measured)})
	}

	if s.IsCompileError() {
		// A build that never ran is an error, not a failed assertion.
		ts.Failures, ts.Errors = 0, 1
		msg := s.Tests[0].Message()
		ts.Cases = []TestCase{{
			Name:      cargotest.CompileErrorTest,
			Classname: classname(opts.Package, ""),
			Error:     &Result{Message: firstLine(msg), Type: TypeCompileError, Content: msg},
		}}
		return ts
	}

	ts.Cases = make([]TestCase, 0, len(s.Tests))
	for _, t := range s.Tests {
		module, name := splitPath(t.Name)
		tc := TestCase{Name: name, Classname: classname(opts.Package, module)}
		if t.Status == cargotest.StatusFail {
			msg := t.Message()
			if msg == "" {
				msg = "test failed"
			}
			tc.Failure = &Result{Message: msg, Type: TypeTestFailure, Content: msg}
		}
		ts.Cases = append(ts.Cases, tc)
	}
	return ts
}

// Write encodes r as an indented JUnit XML document with an XML header.
func Write(w io.Writer, r cargotest.Report, opts Options) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write junit header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(FromReport(r, opts)); err != nil {
		return fmt.Errorf("encode junit: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode junit: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// splitPath splits a Rust test path into module and leaf name:
// "tests::it_works" gives ("tests", "it_works").
func splitPath(name string) (module, leaf string) {
	i := strings.LastIndex(name, "::")
	if i < 0 {
		return "", name
	}
	return name[:i], name[i+2:]
}

func classname(pkg, module string) string {
	module = strings.ReplaceAll(module, "::", ".")
	switch {
	case pkg == "":
		return module
	case module == "":
		return pkg
	default:
		return pkg + "." + module
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
