// Package idmap implements the encoding id mapper: a bulk, two-phase
// structure that assigns every Put'd input identifier a dense internal id
// and, once Prepare has run, answers Get(inputID, group) with a radix-zoomed
// binary search over an indirectly sorted tracker.
package idmap

import (
	"fmt"
	"sync/atomic"

	"github.com/arloliu/idgraph/errs"
	"github.com/arloliu/idgraph/group"
	"github.com/arloliu/idgraph/internal/array"
	"github.com/arloliu/idgraph/internal/bitpack"
	"github.com/arloliu/idgraph/internal/collision"
	"github.com/arloliu/idgraph/internal/options"
	"github.com/arloliu/idgraph/internal/radix"
)

// NotFound is the sentinel Get returns when no internal id matches.
const NotFound int64 = -1

type state int32

const (
	stateOpen state = iota
	statePrepared
	stateClosed
	statePoisoned
)

// InputIDLookup resolves an internal id back to the original input
// identifier that was Put there. The mapper itself never retains input
// identifiers (that would defeat its memory budget); this collaborator is
// supplied by the caller, usually backed by whatever store already holds
// the raw input records, and is consulted only for collision-marked ids
// during Prepare's phase C.
type InputIDLookup interface {
	Lookup(internalID int64) any
}

// InputIDLookupFunc adapts a plain function to InputIDLookup.
type InputIDLookupFunc func(internalID int64) any

// Lookup implements InputIDLookup.
func (f InputIDLookupFunc) Lookup(internalID int64) any { return f(internalID) }

// Collector receives a structured report of each detected duplicate input
// (same input identifier Put into the same group more than once).
type Collector interface {
	Duplicate(inputID any, internalID int64, groupName string)
}

// Progress receives stage lifecycle and counter updates during Prepare.
// Stages are emitted in order: SPLIT, SORT, DETECT, RESOLVE (n collisions),
// DEDUPLICATE.
type Progress interface {
	Started(stage string)
	Add(n uint64)
	Done()
}

// MemoryVisitor receives one array.MemoryStats report per live packed array
// via AcceptMemoryStats.
type MemoryVisitor = array.Visitor

// Mapper is the encoding id mapper. Put is legal only in the Open state
// (the caller must serialize calls to it); Prepare is a one-shot Open ->
// Prepared transition; Get is legal only once Prepared, after which it is
// read-only and safe for concurrent callers because every field Get
// touches is written once, during Prepare, and never again.
type Mapper struct {
	cfg    Config
	groups *group.Registry

	state atomic.Int32

	data       *array.LongArray
	groupCache *array.GroupArray
	tracker    array.Tracker

	highestInternalID int64

	zoom           []radix.ZoomEntry
	collisionStore *collision.Store
}

// New creates a Mapper configured by opts.
func New(opts ...Option) (*Mapper, error) {
	cfg := defaultConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, fmt.Errorf("idmap: %w", err)
	}

	m := &Mapper{
		cfg:               cfg,
		groups:            group.NewRegistry(),
		data:              array.NewLongArray(cfg.ChunkSize),
		groupCache:        array.NewGroupArray(cfg.ChunkSize),
		highestInternalID: -1,
	}
	m.state.Store(int32(stateOpen))

	return m, nil
}

// NeedsPreparation reports whether this mapper must be Prepare'd before
// Get is legal. Always true: there is no eager/incremental mode.
func (m *Mapper) NeedsPreparation() bool { return true }

// Put records that inputID (via the configured Encoder) maps to internalID
// within group. Legal only before Prepare; not safe for concurrent callers
// on the same Mapper (the import pipeline serializes its own Put calls).
func (m *Mapper) Put(inputID any, internalID int64, grp group.Group) error {
	if state(m.state.Load()) != stateOpen {
		return errs.ErrNotOpen
	}
	if internalID < 0 {
		return fmt.Errorf("idmap: internal id must be non-negative, got %d", internalID)
	}

	eid, err := m.cfg.Encoder.Encode(inputID)
	if err != nil {
		return err
	}
	if eid == 0 {
		return errs.ErrGapEncoding
	}
	if bitpack.HasCollisionMark(eid) {
		return errs.ErrReservedBit
	}

	if err := m.groups.Register(grp); err != nil {
		return err
	}

	idx := int(internalID)
	m.data.Set(idx, eid)
	m.groupCache.Set(idx, grp.ID)

	if internalID > m.highestInternalID {
		m.highestInternalID = internalID
	}

	return nil
}

// Close releases every packed array the mapper holds. Legal from any
// state.
func (m *Mapper) Close() error {
	m.state.Store(int32(stateClosed))
	m.data = nil
	m.groupCache = nil
	m.tracker = nil
	m.zoom = nil
	m.collisionStore = nil

	return nil
}

// CalculateMemoryUsage estimates the byte footprint of a mapper holding
// numNodes entries: 8 bytes of data cache plus the tracker width that
// highestInternalID = numNodes-1 would select.
func (m *Mapper) CalculateMemoryUsage(numNodes uint64) uint64 {
	highest := int64(-1)
	if numNodes > 0 {
		highest = int64(numNodes - 1)
	}
	trackerWidth := uint64(array.TrackerWidthBytes(highest))

	return numNodes * (8 + trackerWidth)
}

// AcceptMemoryStats reports each live packed array (data cache, group
// cache, tracker) to visitor.
func (m *Mapper) AcceptMemoryStats(visitor MemoryVisitor) {
	if m.data != nil {
		m.data.Accept("data", visitor)
	}
	if m.groupCache != nil {
		m.groupCache.Accept("group", visitor)
	}
	if m.tracker != nil {
		m.tracker.Accept("tracker", visitor)
	}
}
