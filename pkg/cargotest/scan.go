package cargotest

import (
	"bytes"
	"errors"
	"math"
	"strconv"
	"time"
	"unicode/utf8"
)

// parser is a cursor over an immutable transcript. Rules advance pos on a
// match and leave it where it was on a mismatch.
type parser struct {
	buf []byte
	pos int

	// Furthest mismatch seen, reported when no suite completes.
	farPos  int
	farRule string

	sawHeader bool
	err       error // hard failure, stops every rule
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// backtrack records a mismatch of rule at the current position, then rewinds
// to start. It always returns false.
func (p *parser) backtrack(start int, rule string) bool {
	if p.pos >= p.farPos {
		p.farPos, p.farRule = p.pos, rule
	}
	p.pos = start
	return false
}

func (p *parser) syntaxError(err error, offset int, rule string) *SyntaxError {
	if offset > len(p.buf) {
		offset = len(p.buf)
	}
	return &SyntaxError{
		Rule:   rule,
		Offset: offset,
		Line:   bytes.Count(p.buf[:offset], []byte{'\n'}) + 1,
		Err:    err,
	}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.buf) && isSpace(p.buf[p.pos]) {
		p.pos++
	}
}

// blanks consumes one or more spaces or tabs.
func (p *parser) blanks() bool {
	start := p.pos
	for p.pos < len(p.buf) && (p.buf[p.pos] == ' ' || p.buf[p.pos] == '\t') {
		p.pos++
	}
	return p.pos > start
}

func (p *parser) literal(s string) bool {
	if len(p.buf)-p.pos < len(s) || string(p.buf[p.pos:p.pos+len(s)]) != s {
		return false
	}
	p.pos += len(s)
	return true
}

// token matches s with any whitespace, including newlines, around it.
func (p *parser) token(s string) bool {
	start := p.pos
	p.skipSpace()
	if !p.literal(s) {
		p.pos = start
		return false
	}
	p.skipSpace()
	return true
}

// text decodes a captured region. Invalid UTF-8 is a hard failure.
func (p *parser) text(b []byte) (string, bool) {
	if !utf8.Valid(b) {
		if p.err == nil {
			p.err = p.syntaxError(ErrInvalidUTF8, p.pos, "text")
		}
		return "", false
	}
	return string(b), true
}

// lineEnd consumes a single "\n" or "\r\n".
func (p *parser) lineEnd() bool {
	switch {
	case p.literal("\n"):
		return true
	case p.literal("\r\n"):
		return true
	}
	return false
}

// line returns the bytes up to the next line terminator without consuming
// anything. ok is false when no terminator follows.
func (p *parser) line() (line []byte, ok bool) {
	rest := p.buf[p.pos:]
	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 {
		return rest, false
	}
	return bytes.TrimSuffix(rest[:nl], []byte{'\r'}), true
}

// skipLine discards the rest of the current line and its terminator.
func (p *parser) skipLine() bool {
	nl := bytes.IndexByte(p.buf[p.pos:], '\n')
	if nl < 0 {
		return false
	}
	p.pos += nl + 1
	return true
}

// restOfLine captures the rest of the current line and consumes its
// terminator. It fails when the transcript ends without one.
func (p *parser) restOfLine() (string, bool) {
	line, ok := p.line()
	if !ok {
		return "", false
	}
	s, ok := p.text(line)
	if !ok {
		return "", false
	}
	p.skipLine()
	return s, true
}

// until captures the text before marker on the current line and leaves the
// cursor on the marker.
func (p *parser) until(marker string) ([]byte, bool) {
	line, _ := p.line()
	i := bytes.Index(line, []byte(marker))
	if i < 0 {
		return nil, false
	}
	p.pos += i
	return line[:i], true
}

// number matches a decimal integer with optional whitespace around it.
func (p *parser) number() (int, bool) {
	start := p.pos
	p.skipSpace()
	digits := p.pos
	for p.pos < len(p.buf) && isDigit(p.buf[p.pos]) {
		p.pos++
	}
	n, err := strconv.Atoi(string(p.buf[digits:p.pos]))
	if err != nil {
		p.pos = start
		return 0, false
	}
	p.skipSpace()
	return n, true
}

// seconds matches a decimal number of seconds followed by "s", e.g. "0.12s".
// A value beyond the range of time.Duration still matches and yields zero.
func (p *parser) seconds() (time.Duration, bool) {
	start := p.pos
	for p.pos < len(p.buf) && (isDigit(p.buf[p.pos]) || p.buf[p.pos] == '.') {
		p.pos++
	}
	secs, err := strconv.ParseFloat(string(p.buf[start:p.pos]), 64)
	if (err != nil && !errors.Is(err, strconv.ErrRange)) || !p.literal("s") {
		p.pos = start
		return 0, false
	}
	nanos := math.Round(secs * float64(time.Second))
	if err != nil || nanos >= math.MaxInt64 {
		return 0, true
	}
	return time.Duration(nanos), true
}

// sum adds non-negative counts, reporting false when the total overflows int.
func sum(counts ...int) (int, bool) {
	total := 0
	for _, n := range counts {
		if n > math.MaxInt-total {
			return 0, false
		}
		total += n
	}
	return total, true
}
