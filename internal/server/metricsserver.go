package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mskogen/aesdlogd/internal/metrics"
)

// MetricsServer exposes a Metrics registry over HTTP on its own address,
// entirely independent of the wire protocol socket. Its failure is
// logged but never fatal to the core protocol loop.
type MetricsServer struct {
	addr    string
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewMetricsServer builds a MetricsServer bound to addr.
func NewMetricsServer(addr string, m *metrics.Metrics, logger *zap.Logger) *MetricsServer {
	return &MetricsServer{addr: addr, metrics: m, logger: logger}
}

// Run serves /metrics until ctx is cancelled.
func (s *MetricsServer) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: s.addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("metrics server shutdown error", zap.Error(err))
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		s.logger.Warn("metrics server stopped", zap.Error(err))
		return nil
	}
}
