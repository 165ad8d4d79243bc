package pattern

// SummaryKind identifies what produced a summary so renderers can dispatch
// without string matching.
type SummaryKind string

const (
	SummaryKindTest    SummaryKind = "test"
	SummaryKindCompile SummaryKind = "compile"
)

// Summary represents high-level metrics and counts.
type Summary struct {
	Label   string        `json:"label"`
	Kind    SummaryKind   `json:"kind"`
	Metrics []SummaryItem `json:"metrics"`
}

// SummaryItem is a single metric in a summary.
type SummaryItem struct {
	Label string `json:"label"` // e.g. "Passed", "Ignored", "Suites"
	Value string `json:"value"` // formatted value
	Kind  string `json:"kind"`  // "success", "error", "warning", "info"; affects coloring
}

func (s *Summary) Type() PatternType { return PatternTypeSummary }
