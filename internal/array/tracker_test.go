package array

import (
	"testing"

	"github.com/arloliu/idgraph/errs"
	"github.com/stretchr/testify/require"
)

func TestNewTracker_PicksWidth(t *testing.T) {
	require.IsType(t, &tracker32{}, NewTracker(8, 0))
	require.IsType(t, &tracker32{}, NewTracker(8, maxUint32))
	require.IsType(t, &tracker40{}, NewTracker(8, maxUint32+1))
}

func TestTracker32_GetSet(t *testing.T) {
	tr := NewTracker(4, 100)
	require.NoError(t, tr.Set(0, 42))
	require.NoError(t, tr.Set(5, 7))
	require.Equal(t, int64(42), tr.Get(0))
	require.Equal(t, int64(7), tr.Get(5))
	require.Equal(t, int64(0), tr.Get(1))

	err := tr.Set(1, maxUint32+1)
	require.ErrorIs(t, err, errs.ErrInternalIDOutOfRange)
}

func TestTracker40_GetSetRoundTrip(t *testing.T) {
	tr := NewTracker(4, maxUint32+1)
	values := []int64{0, 1, 255, 1 << 20, maxUint40 - 1, maxUint40}
	for i, v := range values {
		require.NoError(t, tr.Set(i, v))
	}
	for i, v := range values {
		require.Equal(t, v, tr.Get(i))
	}

	err := tr.Set(0, maxUint40+1)
	require.Error(t, err)
}

func TestTracker_Swap(t *testing.T) {
	for _, tr := range []Tracker{NewTracker(4, 10), NewTracker(4, maxUint32+1)} {
		require.NoError(t, tr.Set(0, 11))
		require.NoError(t, tr.Set(1, 22))
		tr.Swap(0, 1)
		require.Equal(t, int64(22), tr.Get(0))
		require.Equal(t, int64(11), tr.Get(1))
	}
}

func TestTracker_Accept(t *testing.T) {
	for _, tr := range []Tracker{NewTracker(4, 10), NewTracker(4, maxUint32+1)} {
		require.NoError(t, tr.Set(0, 1))
		var got MemoryStats
		tr.Accept("tracker", visitorFunc(func(s MemoryStats) { got = s }))
		require.Equal(t, "tracker", got.Name)
		require.Greater(t, got.ReservedBytes, int64(0))
	}
}

