package render

import (
	"fmt"
	"strings"

	"github.com/dkoosis/cargojunit/pkg/pattern"
)

const (
	statusFail   = "fail"
	llmMaxDetail = 3
)

// LLM renders patterns as terse plain text for AI consumption: no ANSI
// codes, a SCOPE line, and failure details cut to a few lines.
type LLM struct{}

// NewLLM creates an LLM renderer.
func NewLLM() *LLM {
	return &LLM{}
}

// Render formats all patterns for LLM consumption.
func (l *LLM) Render(patterns []pattern.Pattern) string {
	var sb strings.Builder
	for _, p := range patterns {
		switch v := p.(type) {
		case *pattern.Summary:
			l.renderSummary(&sb, v)
		case *pattern.TestTable:
			l.renderTable(&sb, v)
		}
	}
	return sb.String()
}

func (l *LLM) renderSummary(sb *strings.Builder, s *pattern.Summary) {
	sb.WriteString("SCOPE: " + s.Label + "\n")
	if s.Kind == pattern.SummaryKindCompile {
		return
	}
	parts := make([]string, 0, len(s.Metrics))
	for _, m := range s.Metrics {
		parts = append(parts, strings.ToLower(m.Label)+"="+m.Value)
	}
	if len(parts) > 0 {
		sb.WriteString("STATS: " + strings.Join(parts, ", ") + "\n")
	}
}

func (l *LLM) renderTable(sb *strings.Builder, t *pattern.TestTable) {
	sb.WriteString("\n" + t.Label + "\n")
	for _, item := range t.Results {
		prefix := "  PASS"
		if item.Status == statusFail {
			prefix = "  FAIL"
		}
		dur := ""
		if item.Duration != "" {
			dur = " (" + item.Duration + ")"
		}
		sb.WriteString(fmt.Sprintf("%s %s%s\n", prefix, item.Name, dur))

		if item.Details == "" {
			continue
		}
		lines := strings.Split(item.Details, "\n")
		n := min(len(lines), llmMaxDetail)
		for _, line := range lines[:n] {
			sb.WriteString("    " + line + "\n")
		}
		if len(lines) > llmMaxDetail {
			sb.WriteString(fmt.Sprintf("    ... (%d more lines)\n", len(lines)-llmMaxDetail))
		}
	}
}
