// Package render turns visualization patterns into terminal, LLM or JSON
// output.
package render

import "github.com/dkoosis/cargojunit/pkg/pattern"

// Renderer converts patterns to formatted output.
type Renderer interface {
	Render(patterns []pattern.Pattern) string
}
