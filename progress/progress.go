// Package progress provides the Progress collaborator Prepare reports
// through: Started/Add/Done across the SPLIT, SORT, DETECT, RESOLVE, and
// DEDUPLICATE stages.
package progress

import (
	"log/slog"
	"sync/atomic"
)

// Progress receives stage lifecycle and counter updates during Prepare.
type Progress interface {
	Started(stage string)
	Add(n uint64)
	Done()
}

// Noop discards all progress events. Prepare falls back to Logging when
// given a nil Progress, so a caller that wants silence passes Noop
// explicitly.
type Noop struct{}

// Started implements Progress.
func (Noop) Started(string) {}

// Add implements Progress.
func (Noop) Add(uint64) {}

// Done implements Progress.
func (Noop) Done() {}

// Logging reports stage transitions and batched Add totals through a
// structured logger: terse, one line per notable event.
type Logging struct {
	logger      *slog.Logger
	flushEvery  uint64
	stage       string
	accumulated atomic.Uint64
}

// NewLogging creates a Logging progress reporter. flushEvery batches Add
// calls so a billion-entry import doesn't emit a billion log lines;
// flushEvery <= 0 logs every call.
func NewLogging(logger *slog.Logger, flushEvery uint64) *Logging {
	if logger == nil {
		logger = slog.Default()
	}
	if flushEvery == 0 {
		flushEvery = 1
	}

	return &Logging{logger: logger, flushEvery: flushEvery}
}

// Started implements Progress.
func (l *Logging) Started(stage string) {
	l.stage = stage
	l.accumulated.Store(0)
	l.logger.Info("prepare stage started", "stage", stage)
}

// Add implements Progress.
func (l *Logging) Add(n uint64) {
	total := l.accumulated.Add(n)
	if total%l.flushEvery < n {
		l.logger.Debug("prepare stage progress", "stage", l.stage, "count", total)
	}
}

// Done implements Progress.
func (l *Logging) Done() {
	l.logger.Info("prepare stage done", "stage", l.stage, "count", l.accumulated.Load())
}
