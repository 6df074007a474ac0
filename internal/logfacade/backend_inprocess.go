//go:build !delegated

package logfacade

import (
	"time"

	"github.com/mskogen/aesdlogd/internal/assembler"
	"github.com/mskogen/aesdlogd/internal/ring"
	"github.com/mskogen/aesdlogd/internal/seek"
)

// inProcessBackend is the default log backend: a fixed-capacity Ring Log
// fed by a single shared Partial Assembler, both living in this process'
// memory and gone on exit. This is the backend the Periodic Timestamp
// Emitter is allowed to run against.
type inProcessBackend struct {
	ring *ring.Ring
	buf  *assembler.Assembler
}

// NewBackend constructs the in-process backend with the ring capacity
// named in cfg. Production callers always leave Capacity at
// ring.DefaultCapacity; cfg.DelegatedPath is ignored by this backend.
func NewBackend(cfg BackendConfig) (Backend, error) {
	capacity := cfg.Capacity
	if capacity == 0 {
		capacity = ring.DefaultCapacity
	}
	return &inProcessBackend{
		ring: ring.New(capacity),
		buf:  assembler.New(),
	}, nil
}

// HasTimestampEmitter reports whether the Periodic Timestamp Emitter may
// run against this backend. Only the in-process backend supports it.
func HasTimestampEmitter() bool { return true }

func (b *inProcessBackend) AppendBytes(raw []byte) ([]Event, int, int, error) {
	b.buf.Feed(raw)

	var events []Event
	var appended, overwritten int
	for {
		record, ok := b.buf.ExtractRecord()
		if !ok {
			break
		}
		if seek.IsDirective(record) {
			events = append(events, Event{Kind: EventSeek, Raw: record})
			continue
		}
		if b.ring.Add(record) {
			overwritten++
		}
		appended++
		events = append(events, Event{Kind: EventRecord, Raw: record})
	}
	return events, appended, overwritten, nil
}

func (b *inProcessBackend) ApplySeek(_ int64, directiveRaw []byte) (int64, error) {
	directive, err := seek.Parse(directiveRaw)
	if err != nil {
		return 0, err
	}

	record, err := b.ring.Addressable(directive.RecordIndex)
	if err != nil {
		return 0, err
	}
	if directive.ByteOffset >= int64(len(record)) {
		return 0, seek.ErrMalformed
	}

	return b.ring.OffsetOf(directive.RecordIndex) + directive.ByteOffset, nil
}

func (b *inProcessBackend) SnapshotFrom(cursor int64) ([]byte, error) {
	total := b.ring.TotalBytes()
	if cursor >= total {
		return nil, nil
	}

	out := make([]byte, 0, total-cursor)
	var consumed int64
	b.ring.Iterate(func(_ int, record ring.Record) bool {
		size := int64(len(record))
		recStart := consumed
		recEnd := consumed + size
		consumed = recEnd

		if recEnd <= cursor {
			return true
		}
		start := int64(0)
		if cursor > recStart {
			start = cursor - recStart
		}
		out = append(out, record[start:]...)
		return true
	})
	return out, nil
}

func (b *inProcessBackend) AppendTimestamp(t time.Time) error {
	b.ring.Add(ring.Record(formatTimestamp(t)))
	return nil
}

func (b *inProcessBackend) TotalBytes() int64 {
	return b.ring.TotalBytes()
}

func (b *inProcessBackend) Close() error {
	return nil
}

// formatTimestamp renders the RFC-2822-ish record the design specifies:
// strftime "timestamp:%a, %d %b %Y %T %z\n".
func formatTimestamp(t time.Time) []byte {
	return []byte("timestamp:" + t.Format("Mon, 02 Jan 2006 15:04:05 -0700") + "\n")
}
