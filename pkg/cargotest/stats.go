package cargotest

import "time"

// Stats holds aggregate statistics across all suites of a report.
type Stats struct {
	Suites       int
	FailedSuites int
	Tests        int
	Passed       int
	Failed       int
	Ignored      int
	Measured     int
	Duration     time.Duration
	CompileError bool
}

// Stats aggregates the summary counts of every suite in r.
func (r Report) Stats() Stats {
	var s Stats
	s.Suites = len(r)
	for _, suite := range r {
		s.Tests += suite.Total
		s.Passed += suite.Passed
		s.Failed += suite.Failed
		s.Ignored += suite.Ignored
		s.Measured += suite.Measured
		s.Duration += suite.Duration
		if suite.State == StatusFail {
			s.FailedSuites++
		}
		if suite.IsCompileError() {
			s.CompileError = true
		}
	}
	return s
}
