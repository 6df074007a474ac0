// Package connection implements the per-client state machine: receive
// bytes, feed them to the shared Log Facade, and echo the log back to
// the client from its own read cursor.
package connection

import (
	"context"
	"errors"
	"io"
	"net"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mskogen/aesdlogd/internal/errs"
	"github.com/mskogen/aesdlogd/internal/logfacade"
	"github.com/mskogen/aesdlogd/internal/metrics"
)

// ReadSize is the per-recv buffer size suggested by the design.
const ReadSize = 1024

// WriteSize is the per-send frame size suggested by the design; it is
// not required for correctness, only to avoid handing arbitrarily large
// slices to a single Write call.
const WriteSize = 1024

// Worker owns one accepted connection end to end: its socket, its peer
// address, and its read cursor. It is created on accept and destroyed on
// exit, guaranteeing the socket is closed on every exit path.
type Worker struct {
	conn    net.Conn
	facade  *logfacade.Facade
	metrics *metrics.Metrics
	logger  *zap.Logger
	id      uuid.UUID
	cursor  int64
}

// New constructs a Worker for an already-accepted connection.
func New(conn net.Conn, facade *logfacade.Facade, m *metrics.Metrics, logger *zap.Logger) *Worker {
	id := uuid.New()
	return &Worker{
		conn:    conn,
		facade:  facade,
		metrics: m,
		logger:  logger.With(zap.String("conn_id", id.String()), zap.String("peer_addr", conn.RemoteAddr().String())),
		id:      id,
	}
}

// Run drives the connection until the peer closes it, an unrecoverable
// I/O error occurs, or ctx is cancelled by the supervisor. It always
// closes the socket before returning.
func (w *Worker) Run(ctx context.Context) {
	defer w.conn.Close()

	w.metrics.ConnectionsTotal.Inc()
	w.metrics.ConnectionsInFlight.Inc()
	defer w.metrics.ConnectionsInFlight.Dec()

	stopWatch := make(chan struct{})
	defer close(stopWatch)
	go func() {
		select {
		case <-ctx.Done():
			w.conn.Close()
		case <-stopWatch:
		}
	}()

	w.logger.Debug("connection accepted")

	buf := make([]byte, ReadSize)
	for {
		n, err := w.conn.Read(buf)
		if n > 0 {
			if stop := w.handleBytes(buf[:n]); stop {
				return
			}
		}
		if err != nil {
			kind := classifyReadErr(err)
			if kind == errs.KindPeerClosed {
				w.logger.Debug("peer closed connection", zap.Stringer("error_kind", kind))
			} else {
				w.logger.Debug("connection read ended", zap.Error(err), zap.Stringer("error_kind", kind))
			}
			return
		}
	}
}

// classifyReadErr tags a conn.Read failure with the error kind the
// design's error handling section uses for logging: an orderly peer
// close is PeerClosed, anything else reaching this call site is a
// TransientNetwork condition the worker does not retry, only reports.
func classifyReadErr(err error) errs.Kind {
	if errors.Is(err, io.EOF) {
		return errs.KindPeerClosed
	}
	return errs.KindTransientNetwork
}

// handleBytes feeds raw to the facade and processes every record it
// completed, in order. It returns true if the worker should stop.
func (w *Worker) handleBytes(raw []byte) (stop bool) {
	events, appended, overwritten, err := w.facade.AppendBytes(raw)
	if err != nil {
		if errors.Is(err, errs.ErrResourceExhausted) {
			w.logger.Error("append to log failed", zap.Error(err), zap.Stringer("error_kind", errs.KindResourceExhausted))
		} else {
			w.logger.Error("append to log failed", zap.Error(err))
		}
		return true
	}
	w.metrics.RecordsAppendedTotal.Add(float64(appended))
	w.metrics.RecordsOverwrittenTotal.Add(float64(overwritten))

	for _, ev := range events {
		switch ev.Kind {
		case logfacade.EventSeek:
			w.applySeek(ev.Raw)
		case logfacade.EventRecord:
			if err := w.echo(); err != nil {
				w.logger.Debug("echo failed", zap.Error(err))
				return true
			}
		}
	}
	return false
}

// applySeek resolves a seek directive against the facade and repositions
// the cursor on success. On failure the directive is dropped and the
// cursor is left exactly where it was, per the design's seek error
// policy; the connection stays open either way.
func (w *Worker) applySeek(directiveRaw []byte) {
	newCursor, err := w.facade.ApplySeek(w.cursor, directiveRaw)
	if err != nil {
		w.metrics.SeekMalformedTotal.Inc()
		w.logger.Warn("malformed seek directive", zap.Error(err), zap.Stringer("error_kind", errs.KindMalformedDirective))
		return
	}
	w.metrics.SeekAppliedTotal.Inc()
	w.cursor = newCursor
}

// echo sends everything from the worker's cursor to the log's current
// end, in WriteSize frames, and advances the cursor by what was sent.
func (w *Worker) echo() error {
	data, err := w.facade.SnapshotFrom(w.cursor)
	if err != nil {
		return err
	}

	sent := 0
	for sent < len(data) {
		end := sent + WriteSize
		if end > len(data) {
			end = len(data)
		}
		n, err := w.conn.Write(data[sent:end])
		sent += n
		if err != nil {
			w.cursor += int64(sent)
			w.metrics.BytesEchoedTotal.Add(float64(sent))
			return err
		}
	}
	w.cursor += int64(sent)
	w.metrics.BytesEchoedTotal.Add(float64(sent))
	return nil
}
