// Package errs names the error taxonomy from the design's error handling
// section as sentinel errors, so callers use errors.Is/errors.As instead
// of matching on concrete network or syscall error types. Kind is used
// purely for logging: it labels which branch of the taxonomy a given
// errors.Is/errors.As check landed in, it never drives control flow on
// its own.
package errs

import "errors"

// Kind classifies an error for logging and metrics purposes. It is never
// used for control flow on its own — sentinel errors below are.
type Kind int

const (
	KindTransientNetwork Kind = iota
	KindPeerClosed
	KindResourceExhausted
	KindMalformedDirective
	KindFatalSetup
	KindSignal
)

func (k Kind) String() string {
	switch k {
	case KindTransientNetwork:
		return "transient_network"
	case KindPeerClosed:
		return "peer_closed"
	case KindResourceExhausted:
		return "resource_exhausted"
	case KindMalformedDirective:
		return "malformed_directive"
	case KindFatalSetup:
		return "fatal_setup"
	case KindSignal:
		return "signal"
	default:
		return "unknown"
	}
}

var (
	// ErrPeerClosed marks an orderly peer close (recv returning 0).
	ErrPeerClosed = errors.New("errs: peer closed the connection")

	// ErrResourceExhausted marks a write/flush/sync failure against the
	// log backend (e.g. disk full) that should close the affected
	// connection without killing the server, unless it originates in
	// the supervisor, in which case it is fatal.
	ErrResourceExhausted = errors.New("errs: resource exhausted")

	// ErrDaemonUnsupported is returned when -d is requested on a
	// platform this build does not know how to daemonize.
	ErrDaemonUnsupported = errors.New("errs: daemon mode unsupported on this platform")
)
