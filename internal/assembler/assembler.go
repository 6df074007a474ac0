// Package assembler accumulates bytes received from a socket until a
// newline closes out a complete record.
package assembler

import "bytes"

// Assembler holds the tail bytes of a record that has not yet been
// newline-terminated. It is not safe for concurrent use; the Log Facade
// serializes access to it, including the shared-buffer behavior the
// design intentionally preserves (see the design notes on a single
// partial buffer living in the facade rather than per connection).
type Assembler struct {
	buf []byte
}

// New returns an empty Assembler.
func New() *Assembler {
	return &Assembler{}
}

// Feed appends bytes verbatim to the partial buffer. An empty slice is a
// no-op.
func (a *Assembler) Feed(b []byte) {
	if len(b) == 0 {
		return
	}
	a.buf = append(a.buf, b...)
}

// ExtractRecord returns the shortest prefix of the partial buffer ending
// at the first newline, and retains everything after that newline as the
// new partial state. It returns (nil, false) if no newline is present
// yet.
//
// Callers that need to drain every complete record contained in one Feed
// call ExtractRecord repeatedly until it returns false.
func (a *Assembler) ExtractRecord() ([]byte, bool) {
	idx := bytes.IndexByte(a.buf, '\n')
	if idx < 0 {
		return nil, false
	}
	record := make([]byte, idx+1)
	copy(record, a.buf[:idx+1])
	remaining := len(a.buf) - (idx + 1)
	if remaining > 0 {
		copy(a.buf, a.buf[idx+1:])
	}
	a.buf = a.buf[:remaining]
	return record, true
}

// Pending returns the number of bytes currently buffered without a
// terminating newline.
func (a *Assembler) Pending() int {
	return len(a.buf)
}
