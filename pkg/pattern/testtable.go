package pattern

// TestTable represents test results with status and timing.
type TestTable struct {
	Label   string          `json:"label"`
	Results []TestTableItem `json:"results"`
}

// TestTableItem is a single test or suite row.
type TestTableItem struct {
	Name     string `json:"name"`               // test or suite name
	Status   string `json:"status"`             // "pass", "fail"
	Duration string `json:"duration,omitempty"` // formatted duration
	Count    int    `json:"count,omitempty"`    // number of tests (suite-level)
	Details  string `json:"details,omitempty"`  // failure message or extra info
}

func (t *TestTable) Type() PatternType { return PatternTypeTestTable }
