package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRing_AddAndIterate(t *testing.T) {
	r := New(3)

	r.Add(Record("a\n"))
	r.Add(Record("b\n"))

	assert.Equal(t, 2, r.Count())
	assert.Equal(t, int64(4), r.TotalBytes())

	var got []string
	r.Iterate(func(_ int, rec Record) bool {
		got = append(got, string(rec))
		return true
	})
	assert.Equal(t, []string{"a\n", "b\n"}, got)
}

func TestRing_OverwriteOnFull(t *testing.T) {
	r := New(3)
	for _, s := range []string{"0\n", "1\n", "2\n", "3\n"} {
		r.Add(Record(s))
	}

	require.Equal(t, 3, r.Count())
	assert.Equal(t, int64(6), r.TotalBytes())

	var got []string
	r.Iterate(func(_ int, rec Record) bool {
		got = append(got, string(rec))
		return true
	})
	assert.Equal(t, []string{"1\n", "2\n", "3\n"}, got)
}

func TestRing_FillEleven(t *testing.T) {
	r := New(DefaultCapacity)
	for c := byte('0'); c <= '9'; c++ {
		r.Add(Record([]byte{c, '\n'}))
	}
	r.Add(Record([]byte{'a', '\n'}))

	var got []string
	r.Iterate(func(_ int, rec Record) bool {
		got = append(got, string(rec))
		return true
	})
	assert.Equal(t, []string{"1\n", "2\n", "3\n", "4\n", "5\n", "6\n", "7\n", "8\n", "9\n", "a\n"}, got)
}

func TestRing_LookupWalksPresentRecords(t *testing.T) {
	r := New(3)
	r.Add(Record("hello\n"))
	r.Add(Record("world\n"))

	rec, within, err := r.Lookup(0)
	require.NoError(t, err)
	assert.Equal(t, Record("hello\n"), rec)
	assert.Equal(t, int64(0), within)

	rec, within, err = r.Lookup(7)
	require.NoError(t, err)
	assert.Equal(t, Record("world\n"), rec)
	assert.Equal(t, int64(1), within)

	_, _, err = r.Lookup(12)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRing_AddressableIsLogical(t *testing.T) {
	r := New(3)
	for _, s := range []string{"0\n", "1\n", "2\n", "3\n"} {
		r.Add(Record(s))
	}

	rec, err := r.Addressable(0)
	require.NoError(t, err)
	assert.Equal(t, Record("1\n"), rec)

	_, err = r.Addressable(3)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = r.Addressable(-1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestRing_OffsetOf(t *testing.T) {
	r := New(5)
	r.Add(Record("ab\n"))
	r.Add(Record("c\n"))
	r.Add(Record("defg\n"))

	assert.Equal(t, int64(0), r.OffsetOf(0))
	assert.Equal(t, int64(3), r.OffsetOf(1))
	assert.Equal(t, int64(5), r.OffsetOf(2))
}
