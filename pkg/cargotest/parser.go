package cargotest

import "bytes"

// Status lines cargo prints before the first test binary runs. They carry
// nothing for the report and may appear in any order.
var noiseTags = []string{
	"Updating",
	"Downloading",
	"Downloaded",
	"Installing",
	"Compiling",
	"Finished",
	"Locking",
	"Blocking",
	"Fresh",
}

// Parse converts a complete cargo test transcript into a Report.
//
// The transcript is either one or more suite blocks, or a compiler error when
// the build failed before any test ran. In the latter case the Report holds a
// single failed suite named CompileErrorSuite with one test named
// CompileErrorTest carrying the compiler output.
//
// Errors wrap ErrNoContent, ErrMalformed or ErrInvalidUTF8 in a
// *SyntaxError. No Report is returned alongside an error.
func Parse(data []byte) (Report, error) {
	p := &parser{buf: data}
	p.skipNoise()
	start := p.pos

	report := p.suites()
	if p.err != nil {
		return nil, p.err
	}
	if len(report) > 0 {
		return report, nil
	}

	p.pos = start
	if suite, ok := p.compileError(); ok {
		return Report{suite}, nil
	}
	if p.err != nil {
		return nil, p.err
	}

	if p.sawHeader {
		return nil, p.syntaxError(ErrMalformed, p.farPos, p.farRule)
	}
	return nil, p.syntaxError(ErrNoContent, start, "transcript")
}

func (p *parser) skipNoise() {
	for p.noiseLine() {
	}
}

func (p *parser) noiseLine() bool {
	start := p.pos
	for _, tag := range noiseTags {
		if !p.token(tag) {
			continue
		}
		// Noise content is discarded, so it is not decoded.
		if p.skipLine() {
			return true
		}
		p.pos = start
	}
	return false
}

// compileError matches "error[CODE]: message" and swallows the rest of the
// transcript, including any "error: aborting" trailer, as the message.
func (p *parser) compileError() (Suite, bool) {
	start := p.pos
	if !p.token("error") {
		return Suite{}, p.backtrack(start, "compile error")
	}
	p.errorCode()
	if !p.token(":") {
		return Suite{}, p.backtrack(start, "compile error")
	}
	msg, ok := p.text(p.buf[p.pos:])
	if !ok {
		return Suite{}, false
	}
	p.pos = len(p.buf)

	return Suite{
		Name:   CompileErrorSuite,
		State:  StatusFail,
		Failed: 1,
		Total:  1,
		Tests: []Test{{
			Name:   CompileErrorTest,
			Status: StatusFail,
			Error:  &msg,
		}},
	}, true
}

// errorCode skips an optional "[E0369]" annotation. An unclosed bracket is
// left in place for the ":" check to reject.
func (p *parser) errorCode() {
	start := p.pos
	if !p.literal("[") {
		return
	}
	end := bytes.IndexByte(p.buf[p.pos:], ']')
	if end < 0 {
		p.pos = start
		return
	}
	p.pos += end + 1
}
