package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/dkoosis/cargojunit/pkg/pattern"
)

func failPatterns() []pattern.Pattern {
	return []pattern.Pattern{
		&pattern.Summary{
			Label: "FAIL 2/3 tests, 1 suites affected (0s)",
			Kind:  pattern.SummaryKindTest,
			Metrics: []pattern.SummaryItem{
				{Label: "Failed", Value: "2/3 tests", Kind: "error"},
				{Label: "Passed", Value: "1/3 tests", Kind: "info"},
				{Label: "Suites", Value: "2", Kind: "info"},
			},
		},
		&pattern.TestTable{
			Label: "FAIL integration_test (2/3 failed)",
			Results: []pattern.TestTableItem{
				{Name: "fail", Status: "fail", Details: "thread 'fail' panicked at 'assertion failed', tests/integration_test.rs:16"},
				{Name: "fail2", Status: "fail"},
			},
		},
		&pattern.TestTable{
			Label: "Passing Suites (1)",
			Results: []pattern.TestTableItem{
				{Name: "docker_command", Status: "pass", Duration: "12ms", Count: 4},
			},
		},
	}
}

func TestTerminal_RenderMono(t *testing.T) {
	out := NewTerminal(MonoTheme(), 80).Render(failPatterns())

	for _, want := range []string{
		"FAIL 2/3 tests, 1 suites affected (0s)",
		"x Failed: 2/3 tests",
		"FAIL integration_test (2/3 failed)",
		"x fail ",
		"tests/integration_test.rs:16",
		"+ docker_command",
		"4 tests",
		"12ms",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestTerminal_PadsByDisplayWidth(t *testing.T) {
	tt := &pattern.TestTable{
		Results: []pattern.TestTableItem{
			{Name: "日本", Status: "pass", Duration: "1ms"},
			{Name: "abcdef", Status: "pass", Duration: "1ms"},
		},
	}
	out := NewTerminal(MonoTheme(), 80).Render([]pattern.Pattern{tt})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), out)
	}
	// "日本" is four columns wide, so it gets two columns of padding.
	i0 := strings.Index(lines[0], "1ms")
	i1 := strings.Index(lines[1], "1ms")
	if i0 < 0 || i1 < 0 {
		t.Fatalf("missing duration:\n%s", out)
	}
	if runewidth.StringWidth(lines[0][:i0]) != runewidth.StringWidth(lines[1][:i1]) {
		t.Errorf("columns not aligned:\n%s", out)
	}
}

func TestTerminal_TruncatesLongNames(t *testing.T) {
	long := strings.Repeat("a", 100)
	tt := &pattern.TestTable{Results: []pattern.TestTableItem{{Name: long, Status: "fail"}}}
	out := NewTerminal(MonoTheme(), 80).Render([]pattern.Pattern{tt})
	if strings.Contains(out, long) {
		t.Error("expected long name to be truncated")
	}
	if !strings.Contains(out, "...") {
		t.Errorf("expected ellipsis in output:\n%s", out)
	}
}

func TestTerminal_SkipsEmptyTable(t *testing.T) {
	out := NewTerminal(MonoTheme(), 0).Render([]pattern.Pattern{&pattern.TestTable{Label: "nothing"}})
	if out != "" {
		t.Errorf("expected no output, got %q", out)
	}
}

func TestJSON_Render(t *testing.T) {
	out := NewJSON().Render(failPatterns())

	var doc struct {
		Version  string `json:"version"`
		Failed   bool   `json:"failed"`
		Patterns []struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		} `json:"patterns"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(doc.Patterns) != 3 {
		t.Fatalf("expected 3 patterns, got %d", len(doc.Patterns))
	}
	if !doc.Failed {
		t.Error("expected failed=true with failing rows")
	}
	if !strings.Contains(string(doc.Patterns[1].Data), `"label": "FAIL integration_test (2/3 failed)"`) {
		t.Errorf("expected snake_case pattern data, got %s", doc.Patterns[1].Data)
	}
	if doc.Patterns[0].Type != "summary" || doc.Patterns[1].Type != "test-table" {
		t.Errorf("unexpected types: %s, %s", doc.Patterns[0].Type, doc.Patterns[1].Type)
	}
}

func TestThemeByName(t *testing.T) {
	for name, want := range map[string]string{"orca": "orca", "mono": "mono", "": "default", "bogus": "default"} {
		if got := ThemeByName(name).Name; got != want {
			t.Errorf("ThemeByName(%q) = %q, want %q", name, got, want)
		}
	}
}
