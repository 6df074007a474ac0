//go:build linux || darwin

package server

import (
	"fmt"
	"net"
	"os"
	"os/exec"
	"syscall"
)

// daemonChildEnv marks a process as the already-forked child so the
// re-exec'd process does not try to fork again. Go has no raw fork()
// that is safe to call after the runtime has started goroutines, so
// daemonization here follows the standard Go idiom: re-exec the same
// binary in its own session with the already-bound listener handed
// across as an inherited file descriptor, then the original process
// exits.
const daemonChildEnv = "AESDLOGD_DAEMON_CHILD=1"

// daemonListenerFD is the descriptor the child inherits the listener
// on. fd 0-2 are stdio, so the first (and only) extra file lands on 3.
const daemonListenerFD = 3

// isDaemonChild reports whether this process is the re-exec'd child of
// a daemonizing parent.
func isDaemonChild() bool {
	return os.Getenv("AESDLOGD_DAEMON_CHILD") == "1"
}

// daemonizeFork re-execs the current binary with listener attached as an
// inherited file descriptor and the child marker set, then returns to
// the caller so the parent can close its own copy of the listener and
// exit successfully. It is only ever called by the parent (the child
// is identified by isDaemonChild before a listener is even created).
func daemonizeFork(listener net.Listener) error {
	tcpListener, ok := listener.(*net.TCPListener)
	if !ok {
		return fmt.Errorf("server: daemonize: listener is not a *net.TCPListener")
	}
	file, err := tcpListener.File()
	if err != nil {
		return fmt.Errorf("server: daemonize: dup listener fd: %w", err)
	}
	defer file.Close()

	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("server: daemonize: resolve executable: %w", err)
	}

	cmd := exec.Command(self, os.Args[1:]...)
	cmd.ExtraFiles = []*os.File{file}
	cmd.Env = append(os.Environ(), daemonChildEnv)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("server: daemonize: start child: %w", err)
	}
	return nil
}

// daemonListenerFromFD reconstructs the inherited listener in the child
// process from fd 3.
func daemonListenerFromFD() (net.Listener, error) {
	f := os.NewFile(uintptr(daemonListenerFD), "listener")
	l, err := net.FileListener(f)
	if err != nil {
		return nil, fmt.Errorf("server: daemonize: wrap inherited listener: %w", err)
	}
	return l, nil
}
