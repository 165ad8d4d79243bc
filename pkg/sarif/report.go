package sarif

import (
	"io"
	"regexp"
	"strconv"

	"github.com/dkoosis/cargojunit/pkg/cargotest"
)

// ToolName is the driver name stamped on documents built from reports.
const ToolName = "cargo-junit"

// Rule IDs.
const (
	RuleTestFailure  = "test-failure"
	RuleCompileError = "compile-error"
)

// rustLocation finds "path/file.rs:line" or "path/file.rs:line:col" in
// panic messages and compiler "-->" pointers.
var rustLocation = regexp.MustCompile(`([A-Za-z0-9_.\-/\\]+\.rs):(\d+)(?::(\d+))?`)

// FromReport builds a document with one error-level result per failing
// test. A compile-error report yields a single compile-error result.
func FromReport(r cargotest.Report, version string) *Document {
	return fromReport(r, version).Document()
}

// Write encodes the document for r as indented JSON and returns the stats of
// what was written.
func Write(w io.Writer, r cargotest.Report, version string) (Stats, error) {
	doc := FromReport(r, version)
	if _, err := doc.WriteTo(w); err != nil {
		return Stats{}, err
	}
	return ComputeStats(doc), nil
}

func fromReport(r cargotest.Report, version string) *Builder {
	b := NewBuilder(ToolName, version)
	for _, s := range r {
		if s.IsCompileError() {
			b.AddRule(RuleCompileError, "The crate failed to compile before tests ran")
			msg := s.Tests[0].Message()
			b.Add(Result{
				RuleID:    RuleCompileError,
				Level:     "error",
				Message:   Message{Text: msg},
				Locations: ParseLocation(msg),
			})
			continue
		}
		for _, t := range s.Failures() {
			b.AddRule(RuleTestFailure, "A test reported FAILED")
			text := t.Message()
			if text == "" {
				text = "test " + t.Name + " failed"
			}
			b.Add(Result{
				RuleID:     RuleTestFailure,
				Level:      "error",
				Message:    Message{Text: text},
				Locations:  ParseLocation(t.Message()),
				Properties: map[string]string{"suite": s.Name, "test": t.Name},
			})
		}
	}
	return b
}

// ParseLocation returns the first Rust source location mentioned in msg,
// or nil when there is none.
func ParseLocation(msg string) []Location {
	m := rustLocation.FindStringSubmatch(msg)
	if m == nil {
		return nil
	}
	line, _ := strconv.Atoi(m[2])
	col := 0
	if m[3] != "" {
		col, _ = strconv.Atoi(m[3])
	}
	return location(m[1], line, col)
}
