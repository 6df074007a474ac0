// Package server implements the Acceptor & Supervisor: binding the
// listening socket, spawning and reaping Connection Workers, and running
// the Periodic Timestamp Emitter and metrics listener under one shutdown
// latch.
package server

import (
	"context"
	"errors"
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/mskogen/aesdlogd/internal/connection"
	"github.com/mskogen/aesdlogd/internal/logfacade"
	"github.com/mskogen/aesdlogd/internal/metrics"
)

// workerHandle tracks one spawned Connection Worker so the Acceptor can
// sweep-join it once it finishes, without blocking the accept loop.
type workerHandle struct {
	done chan struct{}
}

// Acceptor binds a listening socket and owns the collection of live
// worker handles. It is destroyed at shutdown after every worker has
// been joined and the Log Facade has been closed.
type Acceptor struct {
	listener net.Listener
	facade   *logfacade.Facade
	metrics  *metrics.Metrics
	logger   *zap.Logger

	mu   sync.Mutex
	live []*workerHandle
}

// NewAcceptor wraps an already-bound listener.
func NewAcceptor(listener net.Listener, facade *logfacade.Facade, m *metrics.Metrics, logger *zap.Logger) *Acceptor {
	return &Acceptor{
		listener: listener,
		facade:   facade,
		metrics:  m,
		logger:   logger,
	}
}

// Serve runs the accept loop until ctx is cancelled. It performs the
// listener half-close itself (via a watcher goroutine) so a blocked
// Accept unblocks promptly, then joins every live worker before
// returning.
func (a *Acceptor) Serve(ctx context.Context) error {
	closeOnce := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			a.listener.Close()
		case <-closeOnce:
		}
	}()
	defer close(closeOnce)

	for {
		conn, err := a.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Temporary() { //nolint:staticcheck
				a.logger.Warn("transient accept error", zap.Error(err))
				continue
			}
			a.logger.Error("accept failed", zap.Error(err))
			break
		}

		h := &workerHandle{done: make(chan struct{})}
		a.mu.Lock()
		a.live = append(a.live, h)
		a.mu.Unlock()

		go func() {
			defer close(h.done)
			w := connection.New(conn, a.facade, a.metrics, a.logger)
			w.Run(ctx)
		}()

		a.sweep()
	}

	a.drain()
	return a.facade.Close()
}

// sweep removes any worker handle that has already finished, so the
// live list does not grow without bound across a long-lived server.
func (a *Acceptor) sweep() {
	a.mu.Lock()
	defer a.mu.Unlock()

	live := a.live[:0]
	for _, h := range a.live {
		select {
		case <-h.done:
		default:
			live = append(live, h)
		}
	}
	a.live = live
}

// drain joins every remaining worker handle, used once on shutdown.
func (a *Acceptor) drain() {
	a.mu.Lock()
	handles := a.live
	a.live = nil
	a.mu.Unlock()

	for _, h := range handles {
		<-h.done
	}
}
