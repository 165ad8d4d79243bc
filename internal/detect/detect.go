// Package detect sniffs input to decide whether it looks like cargo test
// output before handing it to the parser.
package detect

import (
	"bytes"
	"encoding/json"
)

// Format represents a recognized input format.
type Format int

const (
	Unknown      Format = iota
	CargoTest           // cargo test transcript with at least one suite marker
	CompileError        // compiler error before any test binary ran
	SARIF               // SARIF 2.1.0 JSON document
	GoTestJSON          // go test -json NDJSON stream
)

func (f Format) String() string {
	switch f {
	case CargoTest:
		return "cargo test"
	case CompileError:
		return "compile error"
	case SARIF:
		return "SARIF"
	case GoTestJSON:
		return "go test -json"
	default:
		return "unknown"
	}
}

// Markers that only occur once cargo starts running test binaries. The
// parser allows any whitespace after a keyword, so no separator is required.
var suiteMarkers = [][]byte{
	[]byte("Running"),
	[]byte("Doc-tests"),
	[]byte("test result: "),
}

const blank = " \t\r"

// Sniff examines input to determine its format.
func Sniff(data []byte) Format {
	data = bytes.TrimLeft(data, " \t\r\n")
	if len(data) == 0 {
		return Unknown
	}

	if data[0] == '{' {
		if isSARIF(data) {
			return SARIF
		}
		if isGoTestJSON(data) {
			return GoTestJSON
		}
		return Unknown
	}

	for len(data) > 0 {
		line := data
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, data = data[:i], data[i+1:]
		} else {
			data = nil
		}
		line = bytes.TrimLeft(line, blank)
		if hasAnyPrefix(line, suiteMarkers) {
			return CargoTest
		}
		if isCompileLine(line) {
			return CompileError
		}
	}
	return Unknown
}

func hasAnyPrefix(line []byte, prefixes [][]byte) bool {
	for _, p := range prefixes {
		if bytes.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// isCompileLine matches "error", an optional "[CODE]" and a colon, with
// optional whitespace between them: "error[E0308]: ...", "error : ...".
func isCompileLine(line []byte) bool {
	rest, ok := bytes.CutPrefix(line, []byte("error"))
	if !ok {
		return false
	}
	rest = bytes.TrimLeft(rest, blank)
	if code, ok := bytes.CutPrefix(rest, []byte("[")); ok {
		if i := bytes.IndexByte(code, ']'); i >= 0 {
			rest = bytes.TrimLeft(code[i+1:], blank)
		}
	}
	return len(rest) > 0 && rest[0] == ':'
}

func isSARIF(data []byte) bool {
	var probe struct {
		Version string            `json:"version"`
		Runs    []json.RawMessage `json:"runs"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	return probe.Version != "" && probe.Runs != nil
}

func isGoTestJSON(data []byte) bool {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		data = data[:i]
	}
	var event struct {
		Action string `json:"Action"`
	}
	if err := json.Unmarshal(data, &event); err != nil {
		return false
	}
	switch event.Action {
	case "start", "run", "pause", "cont", "pass", "bench", "fail", "output", "skip":
		return true
	}
	return false
}
