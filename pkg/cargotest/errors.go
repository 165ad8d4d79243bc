package cargotest

import (
	"errors"
	"fmt"
)

var (
	// ErrNoContent means the transcript held neither a test suite nor a
	// compiler error.
	ErrNoContent = errors.New("no test suites or compile error found")

	// ErrMalformed means a suite was started but could not be completed.
	ErrMalformed = errors.New("malformed test suite")

	// ErrInvalidUTF8 means a captured name or message was not valid UTF-8.
	ErrInvalidUTF8 = errors.New("invalid UTF-8")
)

// SyntaxError locates a parse failure in the transcript.
type SyntaxError struct {
	Rule   string // grammar rule that was being matched
	Offset int    // byte offset into the transcript
	Line   int    // 1-based line number
	Err    error  // one of ErrNoContent, ErrMalformed, ErrInvalidUTF8
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s: %v", e.Line, e.Rule, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }
