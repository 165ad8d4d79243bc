package render

import (
	"encoding/json"

	"github.com/dkoosis/cargojunit/pkg/pattern"
)

// jsonSchemaVersion is bumped when the shape of jsonOutput changes.
const jsonSchemaVersion = "1.0"

// JSON renders patterns as structured JSON for automation.
type JSON struct{}

// NewJSON creates a JSON renderer.
func NewJSON() *JSON {
	return &JSON{}
}

type jsonOutput struct {
	Version  string        `json:"version"`
	Tool     string        `json:"tool"`
	Failed   bool          `json:"failed"`
	Patterns []jsonPattern `json:"patterns"`
}

type jsonPattern struct {
	Type pattern.PatternType `json:"type"`
	Data pattern.Pattern     `json:"data"`
}

// Render formats all patterns as JSON. failed is true when any table row
// failed.
func (j *JSON) Render(patterns []pattern.Pattern) string {
	out := jsonOutput{
		Version:  jsonSchemaVersion,
		Tool:     "cargo-junit",
		Patterns: make([]jsonPattern, 0, len(patterns)),
	}
	for _, p := range patterns {
		out.Patterns = append(out.Patterns, jsonPattern{Type: p.Type(), Data: p})
		if t, ok := p.(*pattern.TestTable); ok {
			for _, r := range t.Results {
				if r.Status == statusFail {
					out.Failed = true
				}
			}
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		errJSON, _ := json.Marshal(map[string]string{"error": err.Error()})
		return string(errJSON)
	}
	return string(data) + "\n"
}
