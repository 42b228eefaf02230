// Package collect provides the Collector collaborator Prepare's phase C
// reports duplicate inputs through.
package collect

import (
	"log/slog"
	"sync"
)

// Collector receives a structured report of each detected duplicate
// (same input identifier Put into the same group more than once).
type Collector interface {
	Duplicate(inputID any, internalID int64, groupName string)
}

// Duplicate is one recorded report, captured by Slice.
type Duplicate struct {
	InputID    any
	InternalID int64
	GroupName  string
}

// Slice accumulates every duplicate report into memory, for callers that
// want the full list back (small imports, tests).
type Slice struct {
	mu   sync.Mutex
	dups []Duplicate
}

// NewSlice creates an empty Slice collector.
func NewSlice() *Slice {
	return &Slice{}
}

// Duplicate implements Collector.
func (s *Slice) Duplicate(inputID any, internalID int64, groupName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dups = append(s.dups, Duplicate{InputID: inputID, InternalID: internalID, GroupName: groupName})
}

// All returns every duplicate reported so far.
func (s *Slice) All() []Duplicate {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Duplicate, len(s.dups))
	copy(out, s.dups)

	return out
}

// Len returns the number of duplicates reported so far.
func (s *Slice) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.dups)
}

// Logging reports each duplicate through a structured logger instead of
// retaining it, for large imports where collecting every report would
// itself become a memory liability.
type Logging struct {
	logger *slog.Logger
	count  int64
	mu     sync.Mutex
}

// NewLogging creates a Logging collector.
func NewLogging(logger *slog.Logger) *Logging {
	if logger == nil {
		logger = slog.Default()
	}

	return &Logging{logger: logger}
}

// Duplicate implements Collector.
func (l *Logging) Duplicate(inputID any, internalID int64, groupName string) {
	l.mu.Lock()
	l.count++
	l.mu.Unlock()
	l.logger.Warn("duplicate input identifier",
		"input_id", inputID, "internal_id", internalID, "group", groupName)
}

// Count returns how many duplicates have been reported so far.
func (l *Logging) Count() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.count
}
