//go:build !delegated

package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mskogen/aesdlogd/internal/logfacade"
	"github.com/mskogen/aesdlogd/internal/metrics"
	"github.com/mskogen/aesdlogd/internal/ring"
)

func TestAcceptor_EchoesAcrossMultipleConnections(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	backend, err := logfacade.NewBackend(logfacade.BackendConfig{Capacity: ring.DefaultCapacity})
	require.NoError(t, err)
	facade := logfacade.New(backend)

	acceptor := NewAcceptor(listener, facade, metrics.New(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	serveDone := make(chan error, 1)
	go func() { serveDone <- acceptor.Serve(ctx) }()

	addr := listener.Addr().String()

	conn1, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	_, err = conn1.Write([]byte("hello\n"))
	require.NoError(t, err)
	buf := make([]byte, len("hello\n"))
	conn1.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err = readFull(conn1, buf)
	require.NoError(t, err)
	require.Equal(t, "hello\n", string(buf))
	conn1.Close()

	conn2, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	_, err = conn2.Write([]byte("world\n"))
	require.NoError(t, err)
	buf2 := make([]byte, len("hello\nworld\n"))
	conn2.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err = readFull(conn2, buf2)
	require.NoError(t, err)
	require.Equal(t, "hello\nworld\n", string(buf2))
	conn2.Close()

	cancel()
	require.NoError(t, <-serveDone)
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
