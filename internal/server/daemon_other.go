//go:build !linux && !darwin

package server

import (
	"net"

	"github.com/mskogen/aesdlogd/internal/errs"
)

func isDaemonChild() bool { return false }

func daemonizeFork(net.Listener) error {
	return errs.ErrDaemonUnsupported
}

func daemonListenerFromFD() (net.Listener, error) {
	return nil, errs.ErrDaemonUnsupported
}
