package collect

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlice_AccumulatesInOrder(t *testing.T) {
	s := NewSlice()
	s.Duplicate("alice", 1, "g0")
	s.Duplicate("bob", 2, "g1")

	all := s.All()
	require.Len(t, all, 2)
	require.Equal(t, "alice", all[0].InputID)
	require.Equal(t, int64(2), all[1].InternalID)
	require.Equal(t, 2, s.Len())
}

func TestSlice_AllReturnsCopy(t *testing.T) {
	s := NewSlice()
	s.Duplicate("alice", 1, "g0")
	all := s.All()
	all[0].InputID = "mutated"
	require.Equal(t, "alice", s.All()[0].InputID)
}

func TestLogging_CountsAndLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	l := NewLogging(logger)

	l.Duplicate("dup", 3, "g0")
	l.Duplicate("dup", 4, "g0")

	require.Equal(t, int64(2), l.Count())
	require.Contains(t, buf.String(), "duplicate input identifier")
	require.Contains(t, buf.String(), "group=g0")
}

func TestLogging_NilLoggerDefaults(t *testing.T) {
	require.NotPanics(t, func() {
		l := NewLogging(nil)
		l.Duplicate("x", 1, "g")
	})
}
