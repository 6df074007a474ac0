//go:build delegated

package logfacade

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mskogen/aesdlogd/internal/errs"
	"github.com/mskogen/aesdlogd/internal/seek"
)

// ErrTimestampDisabled is returned by AppendTimestamp on the delegated
// backend: the design only runs the Periodic Timestamp Emitter against
// the in-process backend, so this path should never actually be called,
// but it fails loudly instead of silently no-opping if it ever is.
var ErrTimestampDisabled = errors.New("logfacade: timestamp emitter disabled on delegated backend")

// delegatedBackend implements the log over an external append-only
// device: a regular file opened O_CREATE|O_RDWR|O_APPEND, written
// through a buffered writer and fsync'd on every append, mirroring the
// durability pattern of the teacher's on-disk event log. Unlike the
// in-process backend it persists across restarts for as long as the
// file exists, and it has no in-memory ring — record boundaries are
// derived by rescanning the file, and no N-record retention window is
// applied: every record the file holds stays present.
type delegatedBackend struct {
	file   *os.File
	writer *bufio.Writer
	path   string
}

// NewBackend opens (creating if necessary) the file at
// cfg.DelegatedPath. cfg.Capacity is ignored: retention is whatever the
// external device holds.
func NewBackend(cfg BackendConfig) (Backend, error) {
	file, err := os.OpenFile(cfg.DelegatedPath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logfacade: open delegated log: %w", err)
	}
	return &delegatedBackend{
		file:   file,
		writer: bufio.NewWriter(file),
		path:   cfg.DelegatedPath,
	}, nil
}

// HasTimestampEmitter reports whether the Periodic Timestamp Emitter may
// run against this backend. The delegated backend does not support it.
func HasTimestampEmitter() bool { return false }

func (b *delegatedBackend) AppendBytes(raw []byte) ([]Event, int, int, error) {
	// The delegated backend has no shared assembler of its own: partial
	// (non-newline-terminated) bytes are written through as-is, and the
	// next scan treats the file's own trailing bytes as the partial
	// state, which is equivalent to the in-process assembler's buffer
	// for a single append-only, append-in-order device.
	if len(raw) == 0 {
		return nil, 0, 0, nil
	}

	var events []Event
	start := 0
	for i, c := range raw {
		if c != '\n' {
			continue
		}
		record := raw[start : i+1]
		if seek.IsDirective(record) {
			events = append(events, Event{Kind: EventSeek, Raw: append([]byte(nil), record...)})
			start = i + 1
			continue
		}
		if _, err := b.writer.Write(record); err != nil {
			return events, 0, 0, fmt.Errorf("logfacade: write delegated record: %w: %w", errs.ErrResourceExhausted, err)
		}
		events = append(events, Event{Kind: EventRecord, Raw: append([]byte(nil), record...)})
		start = i + 1
	}
	if start < len(raw) {
		if _, err := b.writer.Write(raw[start:]); err != nil {
			return events, 0, 0, fmt.Errorf("logfacade: write delegated partial record: %w: %w", errs.ErrResourceExhausted, err)
		}
	}
	if err := b.writer.Flush(); err != nil {
		return events, 0, 0, fmt.Errorf("logfacade: flush delegated log: %w: %w", errs.ErrResourceExhausted, err)
	}
	if err := b.file.Sync(); err != nil {
		return events, 0, 0, fmt.Errorf("logfacade: sync delegated log: %w: %w", errs.ErrResourceExhausted, err)
	}

	appended := 0
	for _, e := range events {
		if e.Kind == EventRecord {
			appended++
		}
	}
	// The delegated backend never evicts; retention is whatever the
	// external device holds, so overwritten is always 0.
	return events, appended, 0, nil
}

func (b *delegatedBackend) records() ([][]byte, error) {
	f, err := os.Open(b.path)
	if err != nil {
		return nil, fmt.Errorf("logfacade: reopen delegated log for read: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("logfacade: read delegated log: %w", err)
	}

	var records [][]byte
	start := 0
	for i, c := range data {
		if c == '\n' {
			records = append(records, data[start:i+1])
			start = i + 1
		}
	}
	return records, nil
}

func (b *delegatedBackend) ApplySeek(_ int64, directiveRaw []byte) (int64, error) {
	directive, err := seek.Parse(directiveRaw)
	if err != nil {
		return 0, err
	}

	records, err := b.records()
	if err != nil {
		return 0, err
	}
	if directive.RecordIndex < 0 || directive.RecordIndex >= len(records) {
		return 0, seek.ErrMalformed
	}
	record := records[directive.RecordIndex]
	if directive.ByteOffset >= int64(len(record)) {
		return 0, seek.ErrMalformed
	}

	var offset int64
	for _, r := range records[:directive.RecordIndex] {
		offset += int64(len(r))
	}
	return offset + directive.ByteOffset, nil
}

func (b *delegatedBackend) SnapshotFrom(cursor int64) ([]byte, error) {
	records, err := b.records()
	if err != nil {
		return nil, err
	}

	var out []byte
	var consumed int64
	for _, r := range records {
		size := int64(len(r))
		recStart := consumed
		recEnd := consumed + size
		consumed = recEnd
		if recEnd <= cursor {
			continue
		}
		start := int64(0)
		if cursor > recStart {
			start = cursor - recStart
		}
		out = append(out, r[start:]...)
	}
	return out, nil
}

func (b *delegatedBackend) AppendTimestamp(time.Time) error {
	return ErrTimestampDisabled
}

func (b *delegatedBackend) TotalBytes() int64 {
	info, err := b.file.Stat()
	if err != nil {
		return 0
	}
	return info.Size()
}

func (b *delegatedBackend) Close() error {
	if err := b.writer.Flush(); err != nil {
		return err
	}
	return b.file.Close()
}
