// Package logfacade serializes the ring log, the partial assembler, and
// the seek parser behind a single mutex, and generalizes the design's
// build-time log backend choice into a Go interface so the same facade
// type drives either backend.
package logfacade

import (
	"sync"
	"time"
)

// EventKind distinguishes a complete record that belongs in the log from
// one that was actually a seek directive.
type EventKind int

const (
	// EventRecord is an ordinary record that was added to the log and
	// should be echoed to the connection that sent it.
	EventRecord EventKind = iota
	// EventSeek is a record that matched the seek directive prefix. It
	// was not added to the log and must not be echoed; the caller must
	// follow up with ApplySeek using its own read cursor.
	EventSeek
)

// Event describes one complete record extracted from a Feed/AppendBytes
// call, in the order the records completed.
type Event struct {
	Kind EventKind
	// Raw is the complete record, including its trailing newline. For
	// EventSeek, Raw is passed to ApplySeek unmodified.
	Raw []byte
}

// BackendConfig parameterizes whichever Backend this build compiles.
// Capacity is read by the in-process backend; DelegatedPath is read by
// the delegated backend. Each backend ignores the field it does not
// need, so callers can build one BackendConfig regardless of build tag.
type BackendConfig struct {
	Capacity      int
	DelegatedPath string
}

// Backend is the generalized log backend the facade drives. Two
// implementations exist, selected at build time by the "delegated" build
// tag: an in-process ring + partial assembler + seek parser, and a
// delegated backend that reads and writes an external append-only file.
//
// Every method assumes the facade's mutex is already held; Backend
// implementations are not expected to do their own locking.
type Backend interface {
	AppendBytes(raw []byte) (events []Event, appended int, overwritten int, err error)
	ApplySeek(cursor int64, directiveRaw []byte) (newCursor int64, err error)
	SnapshotFrom(cursor int64) ([]byte, error)
	AppendTimestamp(t time.Time) error
	TotalBytes() int64
	Close() error
}

// Facade is the mutex-guarded handle every Connection Worker and the
// Periodic Timestamp Emitter share. It is an explicit value passed in by
// the caller (see the design notes on avoiding a module-global facade),
// never a package-level singleton.
type Facade struct {
	mu      sync.Mutex
	backend Backend
}

// New wraps an already-constructed Backend in a Facade.
func New(backend Backend) *Facade {
	return &Facade{backend: backend}
}

// AppendBytes feeds raw bytes to the backend and returns one Event per
// complete record the bytes closed out. appended and overwritten count
// ring mutations for the caller's metrics bookkeeping; they are not
// touched by the facade itself.
func (f *Facade) AppendBytes(raw []byte) (events []Event, appended int, overwritten int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.backend.AppendBytes(raw)
}

// ApplySeek validates directiveRaw against the current log state and
// returns the absolute offset it names. It mutates nothing but the
// returned value; the caller owns applying it to its own cursor.
func (f *Facade) ApplySeek(cursor int64, directiveRaw []byte) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.backend.ApplySeek(cursor, directiveRaw)
}

// SnapshotFrom returns a copy of every byte in [cursor, TotalBytes()) as
// it exists at the moment the lock is held, satisfying the design's
// "copy the frames out under the lock" contract.
func (f *Facade) SnapshotFrom(cursor int64) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.backend.SnapshotFrom(cursor)
}

// AppendTimestamp appends one complete timestamp record, bypassing the
// partial assembler since timestamps are always already complete.
func (f *Facade) AppendTimestamp(t time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.backend.AppendTimestamp(t)
}

// TotalBytes returns the current logical length of the log.
func (f *Facade) TotalBytes() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.backend.TotalBytes()
}

// Close releases the backend's owned resources. Called once, by the
// Acceptor, after every worker and the emitter have stopped.
func (f *Facade) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.backend.Close()
}
