// Package errs collects the sentinel errors shared by every package in
// idgraph. Call sites wrap a sentinel with fmt.Errorf("%w: ...",
// errs.ErrXxx, ...) rather than constructing ad-hoc error strings.
package errs

import "errors"

var (
	// ErrGapEncoding is returned when an Encoder produces the reserved
	// GAP value (0) for a non-empty input identifier.
	ErrGapEncoding = errors.New("idgraph: encoder produced the reserved GAP value (0)")

	// ErrReservedBit is returned when an Encoder sets bit 56 (the
	// collision mark), which is reserved for the mapper.
	ErrReservedBit = errors.New("idgraph: encoder set the reserved collision-mark bit")

	// ErrEmptyInput is returned by encoders that cannot represent the
	// empty identifier without colliding with GAP.
	ErrEmptyInput = errors.New("idgraph: empty input identifier")

	// ErrNotOpen is returned when Put is called outside the Open state.
	ErrNotOpen = errors.New("idgraph: mapper is not open for Put")

	// ErrAlreadyPrepared is returned when Prepare is called more than once.
	ErrAlreadyPrepared = errors.New("idgraph: mapper has already been prepared")

	// ErrPoisoned is returned by Prepare when an earlier Prepare failed;
	// only Close remains legal (Put then returns ErrNotOpen and Get
	// returns NotFound).
	ErrPoisoned = errors.New("idgraph: mapper is poisoned by a failed prepare")

	// ErrUnsortedData is a fatal invariant violation raised during the
	// collision-detection pass when two adjacent tracker entries are out
	// of order.
	ErrUnsortedData = errors.New("idgraph: tracker is not sorted")

	// ErrTooManyCollisions is raised when the collision counter would
	// overflow a 32-bit signed integer.
	ErrTooManyCollisions = errors.New("idgraph: collision count overflowed int32")

	// ErrInterrupted is raised when Prepare's context is cancelled before
	// the worker pool finishes.
	ErrInterrupted = errors.New("idgraph: prepare was interrupted")

	// ErrGroupOverflow is raised when more than group.MaxGroups distinct
	// groups are registered.
	ErrGroupOverflow = errors.New("idgraph: group registry is full")

	// ErrUnknownGroup is raised when a group id has no registered name.
	ErrUnknownGroup = errors.New("idgraph: unknown group id")

	// ErrDuplicateGroup is raised when registering a group id twice with
	// a different name.
	ErrDuplicateGroup = errors.New("idgraph: group id already registered with a different name")

	// ErrInternalIDOutOfRange is raised when an internal id cannot be
	// represented by the configured tracker width.
	ErrInternalIDOutOfRange = errors.New("idgraph: internal id exceeds tracker width")
)
