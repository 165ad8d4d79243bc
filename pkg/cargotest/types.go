// Package cargotest parses the console transcript of a cargo test run into
// suites of test outcomes.
package cargotest

import "time"

// Status is the outcome of a test or a whole suite.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
)

// Names used for the synthetic suite built from a compile failure.
const (
	CompileErrorSuite = "unknown"
	CompileErrorTest  = "compile failed"
)

// Test is a single test line, optionally carrying the first line of its
// failure output.
type Test struct {
	Name   string  `json:"name"`
	Status Status  `json:"status"`
	Error  *string `json:"error,omitempty"`
}

// Message returns the correlated failure message, or "" when there is none.
func (t Test) Message() string {
	if t.Error == nil {
		return ""
	}
	return *t.Error
}

// SuiteResult holds the counts from a "test result:" summary line.
type SuiteResult struct {
	State    Status
	Passed   int
	Failed   int
	Ignored  int
	Measured int
	Total    int // Passed + Failed + Ignored
	Duration time.Duration
}

// Suite is one test binary's run: header name, summary counts and the tests
// in the order they were printed.
type Suite struct {
	Name     string        `json:"name"`
	State    Status        `json:"state"`
	Passed   int           `json:"passed"`
	Failed   int           `json:"failed"`
	Ignored  int           `json:"ignored"`
	Measured int           `json:"measured"`
	Total    int           `json:"total"`
	Duration time.Duration `json:"duration,omitempty"`
	Tests    []Test        `json:"tests"`
}

// Failures returns the tests of s whose status is fail, in order.
func (s Suite) Failures() []Test {
	var out []Test
	for _, t := range s.Tests {
		if t.Status == StatusFail {
			out = append(out, t)
		}
	}
	return out
}

// IsCompileError reports whether s was synthesized from a compiler error
// rather than parsed from a test binary's output.
func (s Suite) IsCompileError() bool {
	return s.Name == CompileErrorSuite && len(s.Tests) == 1 && s.Tests[0].Name == CompileErrorTest
}

// Report is the ordered list of suites found in a transcript.
type Report []Suite

// Failed reports whether any suite in r failed.
func (r Report) Failed() bool {
	for _, s := range r {
		if s.State == StatusFail {
			return true
		}
	}
	return false
}
