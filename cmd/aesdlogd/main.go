// Command aesdlogd runs the concurrent line-oriented record log
// accumulator server: a TCP listener on the configured port that appends
// every newline-terminated record it receives to a shared log and echoes
// the log back to the sender, plus a seek directive for positioned
// reads. See SPEC_FULL.md for the full design.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mskogen/aesdlogd/internal/config"
	"github.com/mskogen/aesdlogd/internal/errs"
	"github.com/mskogen/aesdlogd/internal/logging"
	"github.com/mskogen/aesdlogd/internal/metrics"
	"github.com/mskogen/aesdlogd/internal/server"
)

func main() {
	if err := config.Load(os.Args[1:], run); err != nil {
		fmt.Fprintf(os.Stderr, "aesdlogd: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.ParseLevel()
	logCfg.JSON = cfg.LogJSON || cfg.Daemon

	logger, err := logging.Init(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "aesdlogd: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	sup := server.New(cfg, logger, m)

	logger.Info("starting aesdlogd",
		zap.Int("port", cfg.Port),
		zap.String("metrics_addr", cfg.MetricsAddr),
		zap.Bool("daemon", cfg.Daemon),
	)

	if err := sup.Run(ctx); err != nil {
		logger.Error("fatal setup error", zap.Error(err), zap.Stringer("error_kind", errs.KindFatalSetup))
		os.Exit(1)
	}

	logger.Info("aesdlogd stopped")
	return nil
}
