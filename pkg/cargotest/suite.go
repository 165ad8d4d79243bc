package cargotest

import "time"

const summaryTag = "test result: "

// Count labels of the summary line, in the order cargo prints them.
var summaryLabels = [...]string{"passed;", "failed;", "ignored;", "measured;"}

func (p *parser) suites() Report {
	var report Report
	for p.err == nil {
		suite, ok := p.suite()
		if !ok {
			break
		}
		report = append(report, suite)
	}
	return report
}

// suite assembles header, count, test lines, optional failures and summary.
// Nothing is returned unless every required part matched.
func (p *parser) suite() (Suite, bool) {
	start := p.pos
	name, ok := p.suiteHeader()
	if !ok {
		return Suite{}, false
	}
	p.sawHeader = true

	if !p.suiteCount() {
		p.pos = start
		return Suite{}, false
	}
	tests := p.testLines()
	failures, _ := p.failureSection()
	result, ok := p.suiteSummary()
	if !ok || p.err != nil {
		p.pos = start
		return Suite{}, false
	}

	return Suite{
		Name:     name,
		State:    result.State,
		Passed:   result.Passed,
		Failed:   result.Failed,
		Ignored:  result.Ignored,
		Measured: result.Measured,
		Total:    result.Total,
		Duration: result.Duration,
		Tests:    correlate(tests, failures),
	}, true
}

// suiteHeader matches "Running <path>" or "Doc-tests <crate>" and returns
// the rest of the line verbatim.
func (p *parser) suiteHeader() (string, bool) {
	start := p.pos
	if !p.token("Running") && !p.token("Doc-tests") {
		return "", p.backtrack(start, "suite header")
	}
	name, ok := p.restOfLine()
	if !ok {
		return "", p.backtrack(start, "suite header")
	}
	return name, true
}

// suiteCount matches "running N tests". The count is not checked against
// anything.
func (p *parser) suiteCount() bool {
	start := p.pos
	if !p.token("running") || !p.skipLine() {
		return p.backtrack(start, "test count")
	}
	return true
}

func (p *parser) testLines() []Test {
	var tests []Test
	for p.err == nil {
		t, ok := p.testLine()
		if !ok {
			break
		}
		tests = append(tests, t)
	}
	return tests
}

// testLine matches "test <name> ... ok|FAILED". The name ends at the first
// " ..." on the line.
func (p *parser) testLine() (Test, bool) {
	start := p.pos
	if !p.literal("test") || !p.blanks() {
		return Test{}, p.backtrack(start, "test line")
	}
	raw, ok := p.until(" ...")
	if !ok {
		return Test{}, p.backtrack(start, "test line")
	}
	name, ok := p.text(raw)
	if !ok {
		return Test{}, false
	}
	p.literal(" ...")

	p.skipSpace()
	status, ok := p.outcome()
	if !ok {
		return Test{}, p.backtrack(start, "test outcome")
	}
	p.skipSpace()
	return Test{Name: name, Status: status}, true
}

func (p *parser) outcome() (Status, bool) {
	switch {
	case p.literal("ok"):
		return StatusPass, true
	case p.literal("FAILED"):
		return StatusFail, true
	}
	return "", false
}

// suiteSummary matches
//
//	test result: ok. 1 passed; 0 failed; 0 ignored; 0 measured; 0 filtered out
//
// exactly, optionally followed by "; finished in 0.12s".
func (p *parser) suiteSummary() (SuiteResult, bool) {
	start := p.pos
	if !p.token(summaryTag) {
		return SuiteResult{}, p.backtrack(start, "suite summary")
	}
	state, ok := p.outcome()
	if !ok || !p.literal(".") {
		return SuiteResult{}, p.backtrack(start, "suite summary")
	}

	var counts [len(summaryLabels)]int
	for i, label := range summaryLabels {
		n, ok := p.number()
		if !ok || !p.literal(label) {
			return SuiteResult{}, p.backtrack(start, "suite summary")
		}
		counts[i] = n
	}
	if _, ok := p.number(); !ok || !p.literal("filtered out") {
		return SuiteResult{}, p.backtrack(start, "suite summary")
	}

	total, ok := sum(counts[0], counts[1], counts[2])
	if !ok {
		return SuiteResult{}, p.backtrack(start, "suite summary")
	}

	r := SuiteResult{
		State:    state,
		Passed:   counts[0],
		Failed:   counts[1],
		Ignored:  counts[2],
		Measured: counts[3],
		Total:    total,
	}
	r.Duration = p.finishedIn()
	p.skipSpace()
	return r, true
}

// finishedIn matches the "; finished in 0.12s" suffix newer cargo releases
// append to the summary. It returns zero when the suffix is absent.
func (p *parser) finishedIn() time.Duration {
	start := p.pos
	if !p.literal(";") || !p.token("finished in") {
		p.pos = start
		return 0
	}
	d, ok := p.seconds()
	if !ok {
		p.pos = start
		return 0
	}
	return d
}
