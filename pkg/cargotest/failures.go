package cargotest

import "bytes"

// failure is one "---- name stdout ----" block. Only the first line of the
// captured output is kept.
type failure struct {
	name    string
	message string
}

// failureSection matches "failures:" followed by one or more failure blocks,
// then skips the name listing cargo repeats before the summary line. The
// listing is not checked against the blocks.
func (p *parser) failureSection() ([]failure, bool) {
	start := p.pos
	if !p.token("failures:") {
		return nil, p.backtrack(start, "failures section")
	}

	var failures []failure
	for p.err == nil {
		f, ok := p.failureBlock()
		if !ok {
			break
		}
		failures = append(failures, f)
	}
	if len(failures) == 0 || p.err != nil {
		return nil, p.backtrack(start, "failure block")
	}

	next := bytes.Index(p.buf[p.pos:], []byte(summaryTag))
	if next < 0 {
		return nil, p.backtrack(start, "failures section")
	}
	p.pos += next
	return failures, true
}

func (p *parser) failureBlock() (failure, bool) {
	start := p.pos
	name, ok := p.failureBanner()
	if !ok {
		return failure{}, p.backtrack(start, "failure banner")
	}
	message, ok := p.restOfLine()
	if !ok {
		return failure{}, p.backtrack(start, "failure message")
	}

	// Later lines of the output, the backtrace hint among them, run up to
	// the blank line that closes the block.
	for {
		line, ok := p.line()
		if !ok {
			return failure{}, p.backtrack(start, "failure block end")
		}
		if len(line) == 0 {
			break
		}
		p.skipLine()
	}
	p.lineEnd()

	return failure{name: name, message: message}, true
}

// failureBanner matches "---- <name> stdout ----".
func (p *parser) failureBanner() (string, bool) {
	if !p.token("----") {
		return "", false
	}
	raw, ok := p.until(" ")
	if !ok {
		return "", false
	}
	name, ok := p.text(raw)
	if !ok {
		return "", false
	}
	if !p.token("stdout") || !p.token("----") {
		return "", false
	}
	return name, true
}

// correlate attaches each failure message to the test with the same name.
// Statuses are left untouched and tests without a matching block keep a nil
// Error.
func correlate(tests []Test, failures []failure) []Test {
	if len(failures) == 0 {
		return tests
	}
	out := make([]Test, len(tests))
	for i, t := range tests {
		out[i] = t
		for _, f := range failures {
			if f.name == t.Name {
				msg := f.message
				out[i].Error = &msg
				break
			}
		}
	}
	return out
}
