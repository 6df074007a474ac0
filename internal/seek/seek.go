// Package seek recognizes and parses the in-band seek directive a client
// may send in place of an ordinary record.
package seek

import (
	"bytes"
	"errors"
	"strconv"
)

// Prefix is the literal byte sequence that marks a complete record as a
// seek directive rather than log content. It is exactly 19 bytes.
const Prefix = "AESDCHAR_IOCSEEKTO:"

// ErrMalformed is returned when a record carries the seek prefix but its
// payload does not parse as "<uint>,<uint>".
var ErrMalformed = errors.New("seek: malformed directive")

// Directive is a parsed, not-yet-validated seek request.
type Directive struct {
	RecordIndex int
	ByteOffset  int64
}

// IsDirective reports whether record begins with Prefix. It does not
// validate the remainder.
func IsDirective(record []byte) bool {
	return bytes.HasPrefix(record, []byte(Prefix))
}

// Parse strips Prefix and the trailing newline from record and parses the
// remaining "<record_index>,<byte_offset>" payload. The caller must have
// already confirmed IsDirective(record).
//
// Parse only validates syntax; range-checking record_index and
// byte_offset against the present log state is the caller's
// responsibility (see logfacade.ApplySeek), since that requires the
// ring's current contents.
func Parse(record []byte) (Directive, error) {
	body := bytes.TrimPrefix(record, []byte(Prefix))
	body = bytes.TrimSuffix(body, []byte("\n"))

	parts := bytes.SplitN(body, []byte(","), 2)
	if len(parts) != 2 {
		return Directive{}, ErrMalformed
	}
	// Reject a third field smuggled past SplitN's limit of 2.
	if bytes.ContainsRune(parts[1], ',') {
		return Directive{}, ErrMalformed
	}

	recordIndex, err := strconv.ParseUint(string(parts[0]), 10, 31)
	if err != nil {
		return Directive{}, ErrMalformed
	}
	byteOffset, err := strconv.ParseUint(string(parts[1]), 10, 63)
	if err != nil {
		return Directive{}, ErrMalformed
	}

	return Directive{RecordIndex: int(recordIndex), ByteOffset: int64(byteOffset)}, nil
}
