// Package mapper converts parsed cargo test reports into visualization
// patterns.
package mapper

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dkoosis/cargojunit/pkg/cargotest"
	"github.com/dkoosis/cargojunit/pkg/pattern"
)

var printer = message.NewPrinter(language.English)

// FromReport converts a report into patterns: a Summary, a TestTable per
// failing suite, and one collapsed TestTable of passing suites.
func FromReport(r cargotest.Report) []pattern.Pattern {
	stats := r.Stats()
	patterns := []pattern.Pattern{summary(stats)}

	sorted := make(cargotest.Report, len(r))
	copy(sorted, r)
	sort.SliceStable(sorted, func(i, j int) bool {
		return suitePriority(sorted[i]) < suitePriority(sorted[j])
	})

	for _, s := range sorted {
		switch {
		case s.IsCompileError():
			patterns = append(patterns, compileErrorTable(s))
		case s.State == cargotest.StatusFail:
			patterns = append(patterns, failedSuiteTable(s))
		}
	}

	var passItems []pattern.TestTableItem
	for _, s := range sorted {
		if s.State == cargotest.StatusPass {
			passItems = append(passItems, pattern.TestTableItem{
				Name:     ShortSuiteName(s.Name),
				Status:   "pass",
				Duration: formatDuration(s.Duration),
				Count:    s.Total,
			})
		}
	}
	if len(passItems) > 0 {
		patterns = append(patterns, &pattern.TestTable{
			Label:   fmt.Sprintf("Passing Suites (%d)", len(passItems)),
			Results: passItems,
		})
	}
	return patterns
}

func summary(s cargotest.Stats) *pattern.Summary {
	if s.CompileError {
		return &pattern.Summary{
			Label: "BUILD FAIL",
			Kind:  pattern.SummaryKindCompile,
			Metrics: []pattern.SummaryItem{
				{Label: "Build Errors", Value: "1", Kind: "error"},
			},
		}
	}

	var metrics []pattern.SummaryItem
	if s.Failed > 0 {
		metrics = append(metrics, pattern.SummaryItem{
			Label: "Failed", Value: printer.Sprintf("%d/%d tests", s.Failed, s.Tests), Kind: "error",
		})
	}
	if s.Passed > 0 {
		kind := "success"
		if s.Failed > 0 {
			kind = "info"
		}
		metrics = append(metrics, pattern.SummaryItem{
			Label: "Passed", Value: printer.Sprintf("%d/%d tests", s.Passed, s.Tests), Kind: kind,
		})
	}
	if s.Ignored > 0 {
		metrics = append(metrics, pattern.SummaryItem{
			Label: "Ignored", Value: printer.Sprintf("%d", s.Ignored), Kind: "warning",
		})
	}
	if s.Measured > 0 {
		metrics = append(metrics, pattern.SummaryItem{
			Label: "Measured", Value: printer.Sprintf("%d", s.Measured), Kind: "info",
		})
	}
	metrics = append(metrics, pattern.SummaryItem{
		Label: "Suites", Value: printer.Sprintf("%d", s.Suites), Kind: "info",
	})

	label := fmt.Sprintf("PASS (%s)", formatDuration(s.Duration))
	if s.FailedSuites > 0 {
		label = printer.Sprintf("FAIL %d/%d tests, %d suites affected (%s)",
			s.Failed, s.Tests, s.FailedSuites, formatDuration(s.Duration))
	}
	return &pattern.Summary{
		Label:   label,
		Kind:    pattern.SummaryKindTest,
		Metrics: metrics,
	}
}

func compileErrorTable(s cargotest.Suite) *pattern.TestTable {
	msg := s.Tests[0].Message()
	return &pattern.TestTable{
		Label: "BUILD FAIL",
		Results: []pattern.TestTableItem{{
			Name:    "COMPILE ERROR",
			Status:  "fail",
			Details: truncateLines(strings.Split(strings.TrimRight(msg, "\n"), "\n"), 8),
		}},
	}
}

func failedSuiteTable(s cargotest.Suite) *pattern.TestTable {
	failures := s.Failures()
	items := make([]pattern.TestTableItem, 0, len(failures))
	for _, t := range failures {
		items = append(items, pattern.TestTableItem{
			Name:    t.Name,
			Status:  "fail",
			Details: truncateString(t.Message(), 300),
		})
	}
	return &pattern.TestTable{
		Label:   fmt.Sprintf("FAIL %s (%d/%d failed)", ShortSuiteName(s.Name), s.Failed, s.Total),
		Results: items,
	}
}

func suitePriority(s cargotest.Suite) int {
	switch {
	case s.IsCompileError():
		return 0
	case s.State == cargotest.StatusFail:
		return 1
	}
	return 2
}

// ShortSuiteName trims a suite header to something readable:
// "target/debug/deps/foo-5a7be5d1b9c8e0f6" gives "foo" and
// "unittests src/lib.rs (target/debug/deps/foo-1)" gives "unittests src/lib.rs".
func ShortSuiteName(name string) string {
	if i := strings.Index(name, " ("); i > 0 {
		return name[:i]
	}
	base := path.Base(name)
	if i := strings.LastIndexByte(base, '-'); i > 0 && isHex(base[i+1:]) {
		return base[:i]
	}
	return base
}

func isHex(s string) bool {
	if len(s) < 8 {
		return false
	}
	for _, c := range s {
		if !strings.ContainsRune("0123456789abcdef", c) {
			return false
		}
	}
	return true
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return "0s"
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func truncateLines(lines []string, max int) string {
	if len(lines) <= max {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[:max], "\n") + fmt.Sprintf("\n... (%d more lines)", len(lines)-max)
}

func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
