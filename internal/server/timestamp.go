package server

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mskogen/aesdlogd/internal/logfacade"
)

// TimestampInterval is the period the Periodic Timestamp Emitter waits
// between appends.
const TimestampInterval = 10 * time.Second

// TimestampEmitter posts one timestamp record into the Log Facade every
// TimestampInterval. It holds only a non-owning handle to the facade and
// shares the facade's lock with every connected client for the duration
// of one append.
type TimestampEmitter struct {
	facade *logfacade.Facade
	logger *zap.Logger
}

// NewTimestampEmitter constructs an emitter bound to facade.
func NewTimestampEmitter(facade *logfacade.Facade, logger *zap.Logger) *TimestampEmitter {
	return &TimestampEmitter{facade: facade, logger: logger}
}

// Run blocks, appending a timestamp every TimestampInterval, until ctx is
// cancelled.
func (e *TimestampEmitter) Run(ctx context.Context) error {
	ticker := time.NewTicker(TimestampInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-ticker.C:
			if err := e.facade.AppendTimestamp(t); err != nil {
				e.logger.Error("timestamp append failed", zap.Error(err))
			}
		}
	}
}
