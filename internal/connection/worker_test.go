//go:build !delegated

package connection

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/mskogen/aesdlogd/internal/logfacade"
	"github.com/mskogen/aesdlogd/internal/metrics"
	"github.com/mskogen/aesdlogd/internal/ring"
)

func newTestWorker(t *testing.T) (*Worker, net.Conn) {
	t.Helper()
	backend, err := logfacade.NewBackend(logfacade.BackendConfig{Capacity: ring.DefaultCapacity})
	require.NoError(t, err)
	facade := logfacade.New(backend)

	client, server := net.Pipe()
	w := New(server, facade, metrics.New(), zap.NewNop())
	return w, client
}

func recvAll(t *testing.T, conn net.Conn, want int) []byte {
	t.Helper()
	buf := make([]byte, want)
	total := 0
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for total < want {
		n, err := conn.Read(buf[total:])
		total += n
		require.NoError(t, err)
	}
	return buf[:total]
}

func TestWorker_EchoesSingleRecord(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	w, client := newTestWorker(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	_, err := client.Write([]byte("hello\n"))
	require.NoError(t, err)

	got := recvAll(t, client, len("hello\n"))
	require.Equal(t, "hello\n", string(got))

	client.Close()
	cancel()
	<-done
}

func TestWorker_SeekDirectiveNeverEchoed(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	w, client := newTestWorker(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	for _, s := range []string{"a\n", "b\n", "c\n"} {
		_, err := client.Write([]byte(s))
		require.NoError(t, err)
		recvAll(t, client, len(s))
	}

	_, err := client.Write([]byte("AESDCHAR_IOCSEEKTO:1,0\n"))
	require.NoError(t, err)

	_, err = client.Write([]byte("d\n"))
	require.NoError(t, err)
	got := recvAll(t, client, len("b\nc\nd\n"))
	require.Equal(t, "b\nc\nd\n", string(got))

	client.Close()
	cancel()
	<-done
}
