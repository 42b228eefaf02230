package progress

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoop_DoesNotPanic(t *testing.T) {
	var p Progress = Noop{}
	p.Started("SORT")
	p.Add(100)
	p.Done()
}

func TestLogging_EmitsStageEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	p := NewLogging(logger, 10)

	p.Started("SPLIT")
	p.Add(5)
	p.Add(5)
	p.Done()

	out := buf.String()
	require.Contains(t, out, "prepare stage started")
	require.Contains(t, out, "stage=SPLIT")
	require.Contains(t, out, "prepare stage done")
	require.Contains(t, out, "count=10")
}

func TestLogging_DefaultsFlushEveryToOne(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p := NewLogging(logger, 0)
	p.Started("SORT")
	p.Add(1)
	require.Contains(t, buf.String(), "prepare stage progress")
}

func TestLogging_NilLoggerUsesDefault(t *testing.T) {
	require.NotPanics(t, func() {
		p := NewLogging(nil, 1)
		p.Started("DETECT")
		p.Done()
	})
}
