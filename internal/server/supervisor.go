// Package server also hosts the Supervisor, which binds the wire
// protocol listener, starts the Acceptor, the Periodic Timestamp
// Emitter, and the metrics listener under one errgroup, and tears
// everything down when its shared context is cancelled.
package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mskogen/aesdlogd/internal/config"
	"github.com/mskogen/aesdlogd/internal/logfacade"
	"github.com/mskogen/aesdlogd/internal/metrics"
)

// shutdownGrace bounds how long the metrics HTTP server is given to
// drain in-flight requests once shutdown begins.
const shutdownGrace = 5 * time.Second

// Supervisor owns the listening socket and the lifetime of every
// goroutine group (component F of the design). Shutdown is driven
// entirely by cancelling the context passed to Run: there is no
// separate shutdown flag, since every blocking loop underneath
// (accept, recv, the emitter's ticker, the metrics server) already
// observes the same context.
type Supervisor struct {
	cfg     config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New builds a Supervisor from resolved configuration.
func New(cfg config.Config, logger *zap.Logger, m *metrics.Metrics) *Supervisor {
	return &Supervisor{cfg: cfg, logger: logger, metrics: m}
}

// Run binds the listener, optionally daemonizes, then serves until ctx
// is cancelled. It returns a non-nil error for a setup failure (bind,
// listen, daemonization, or constructing the log backend) and for an
// error from closing the Log Facade at shutdown; a metrics listener
// failure is logged and not returned.
func (s *Supervisor) Run(ctx context.Context) error {
	var listener net.Listener

	if s.cfg.Daemon && isDaemonChild() {
		l, err := daemonListenerFromFD()
		if err != nil {
			return err
		}
		listener = l
	} else {
		l, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
		if err != nil {
			return fmt.Errorf("server: listen on port %d: %w", s.cfg.Port, err)
		}
		listener = l

		if s.cfg.Daemon {
			if err := daemonizeFork(listener); err != nil {
				listener.Close()
				return err
			}
			// We are the parent; the child now owns an inherited copy
			// of the listening socket. Close ours and exit cleanly.
			listener.Close()
			return nil
		}
	}

	backend, err := logfacade.NewBackend(logfacade.BackendConfig{
		Capacity:      s.cfg.RingCapacity,
		DelegatedPath: s.cfg.DelegatedPath,
	})
	if err != nil {
		listener.Close()
		return fmt.Errorf("server: construct log backend: %w", err)
	}
	facade := logfacade.New(backend)

	group, gctx := errgroup.WithContext(ctx)

	acceptor := NewAcceptor(listener, facade, s.metrics, s.logger)
	group.Go(func() error {
		return acceptor.Serve(gctx)
	})

	if logfacade.HasTimestampEmitter() {
		emitter := NewTimestampEmitter(facade, s.logger)
		group.Go(func() error {
			return emitter.Run(gctx)
		})
	}

	if s.cfg.MetricsAddr != "" {
		metricsSrv := NewMetricsServer(s.cfg.MetricsAddr, s.metrics, s.logger)
		group.Go(func() error {
			return metricsSrv.Run(gctx)
		})
	}

	return group.Wait()
}
