//go:build !delegated

package logfacade

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFacade(t *testing.T, capacity int) *Facade {
	t.Helper()
	backend, err := NewBackend(BackendConfig{Capacity: capacity})
	require.NoError(t, err)
	return New(backend)
}

func TestFacade_Scenario1_SingleRecordEcho(t *testing.T) {
	f := newTestFacade(t, 10)

	events, appended, overwritten, err := f.AppendBytes([]byte("hello\n"))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventRecord, events[0].Kind)
	assert.Equal(t, 1, appended)
	assert.Equal(t, 0, overwritten)

	snap, err := f.SnapshotFrom(0)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(snap))
}

func TestFacade_Scenario2_ThreeRecordsSameConnection(t *testing.T) {
	f := newTestFacade(t, 10)

	for _, s := range []string{"a\n", "b\n", "c\n"} {
		_, _, _, err := f.AppendBytes([]byte(s))
		require.NoError(t, err)
	}

	snap, err := f.SnapshotFrom(0)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\n", string(snap))
}

func TestFacade_Scenario3_RingOverflow(t *testing.T) {
	f := newTestFacade(t, 10)

	for c := byte('0'); c <= '9'; c++ {
		_, _, _, err := f.AppendBytes([]byte{c, '\n'})
		require.NoError(t, err)
	}
	_, _, overwritten, err := f.AppendBytes([]byte("a\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, overwritten)

	snap, err := f.SnapshotFrom(0)
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n3\n4\n5\n6\n7\n8\n9\na\n", string(snap))
}

func TestFacade_Scenario4_SeekRepositionsCursor(t *testing.T) {
	f := newTestFacade(t, 10)
	for _, s := range []string{"a\n", "b\n", "c\n"} {
		_, _, _, err := f.AppendBytes([]byte(s))
		require.NoError(t, err)
	}

	events, _, _, err := f.AppendBytes([]byte("AESDCHAR_IOCSEEKTO:1,0\n"))
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, EventSeek, events[0].Kind)

	cursor, err := f.ApplySeek(6, events[0].Raw)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cursor)

	events, _, _, err = f.AppendBytes([]byte("d\n"))
	require.NoError(t, err)
	require.Len(t, events, 1)

	snap, err := f.SnapshotFrom(cursor)
	require.NoError(t, err)
	assert.Equal(t, "b\nc\nd\n", string(snap))
}

func TestFacade_Scenario5_MalformedSeekLeavesCursorUnchanged(t *testing.T) {
	f := newTestFacade(t, 10)
	for _, s := range []string{"a\n", "b\n", "c\n"} {
		_, _, _, err := f.AppendBytes([]byte(s))
		require.NoError(t, err)
	}
	preCursor := f.TotalBytes()

	events, _, _, err := f.AppendBytes([]byte("AESDCHAR_IOCSEEKTO:9,0\n"))
	require.NoError(t, err)
	require.Len(t, events, 1)

	_, err = f.ApplySeek(preCursor, events[0].Raw)
	assert.Error(t, err)

	_, _, _, err = f.AppendBytes([]byte("x\n"))
	require.NoError(t, err)

	snap, err := f.SnapshotFrom(preCursor)
	require.NoError(t, err)
	assert.Equal(t, "x\n", string(snap))
}

func TestFacade_Scenario6_RecordsSpanMultipleWrites(t *testing.T) {
	f := newTestFacade(t, 10)

	for _, chunk := range []string{"hel", "lo\nwo", "rld\n"} {
		_, _, _, err := f.AppendBytes([]byte(chunk))
		require.NoError(t, err)
	}

	snap, err := f.SnapshotFrom(0)
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld\n", string(snap))
}

func TestFacade_SeekOffsetEqualToLengthIsMalformed(t *testing.T) {
	f := newTestFacade(t, 10)
	_, _, _, err := f.AppendBytes([]byte("hi\n"))
	require.NoError(t, err)

	events, _, _, err := f.AppendBytes([]byte("AESDCHAR_IOCSEEKTO:0,3\n"))
	require.NoError(t, err)

	_, err = f.ApplySeek(3, events[0].Raw)
	assert.Error(t, err)
}

func TestFacade_AppendTimestamp(t *testing.T) {
	f := newTestFacade(t, 10)
	require.NoError(t, f.AppendTimestamp(time.Now()))

	snap, err := f.SnapshotFrom(0)
	require.NoError(t, err)
	assert.Contains(t, string(snap), "timestamp:")
}
