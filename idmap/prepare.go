package idmap

import (
	"context"
	"fmt"
	"math"

	"github.com/arloliu/idgraph/collect"
	"github.com/arloliu/idgraph/errs"
	"github.com/arloliu/idgraph/internal/array"
	"github.com/arloliu/idgraph/internal/bitpack"
	"github.com/arloliu/idgraph/internal/collision"
	"github.com/arloliu/idgraph/internal/sorter"
	"github.com/arloliu/idgraph/internal/workerpool"
	"github.com/arloliu/idgraph/progress"
)

// Prepare runs the mapper's two-phase bulk algorithm: sort the tracker so
// the data cache appears sorted under indirection, mark accidental and
// actual collisions, and (unless disabled or unnecessary) resolve them
// against the side-store, reporting duplicates to collector. It is legal
// to call only once, from the Open state; on any error the mapper is
// poisoned and only Close remains legal.
func (m *Mapper) Prepare(ctx context.Context, lookup InputIDLookup, collector Collector, prog Progress) (err error) {
	switch state(m.state.Load()) {
	case statePoisoned:
		return errs.ErrPoisoned
	case statePrepared, stateClosed:
		return errs.ErrAlreadyPrepared
	}

	// A caller-supplied Progress/Collector wins outright; otherwise fall back
	// to a logger built from the configured slog.Logger rather than a bare
	// Noop, so an unattended import still surfaces stage transitions and
	// duplicate reports through whatever logging the caller configured via
	// WithLogger.
	if prog == nil {
		prog = progress.NewLogging(m.cfg.Logger, 100000)
	}
	if collector == nil {
		collector = collect.NewLogging(m.cfg.Logger)
	}

	defer func() {
		if err != nil {
			m.state.Store(int32(statePoisoned))
		}
	}()

	total := int(m.highestInternalID + 1)

	prog.Started("SPLIT")
	m.tracker = array.NewTracker(m.cfg.ChunkSize, m.highestInternalID)
	for i := 0; i < total; i++ {
		if err := m.tracker.Set(i, int64(i)); err != nil {
			return err
		}
	}
	prog.Add(uint64(total))
	prog.Done()

	keyFn := func(internalID int64) uint64 {
		return bitpack.ClearCollisionMark(m.data.Get(int(internalID)))
	}

	prog.Started("SORT")
	zoom, err := sorter.Sort(ctx, m.tracker, total, keyFn, m.cfg.WorkerCount)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", errs.ErrInterrupted, ctx.Err())
		}

		return fmt.Errorf("idmap: sort: %w", err)
	}
	m.zoom = zoom
	prog.Done()

	prog.Started("DETECT")
	marked, err := m.detectCollisions(ctx, total)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", errs.ErrInterrupted, ctx.Err())
		}

		return err
	}
	prog.Add(uint64(len(marked)))
	prog.Done()

	if len(marked) > 0 {
		if !m.cfg.CollisionResolution {
			return fmt.Errorf("idmap: %d collisions detected but collision resolution is disabled", len(marked))
		}

		prog.Started(fmt.Sprintf("RESOLVE (%d collisions)", len(marked)))
		if err := m.resolveCollisions(marked, lookup); err != nil {
			return err
		}
		prog.Add(uint64(len(marked)))
		prog.Done()

		prog.Started("DEDUPLICATE")
		namer := collision.GroupNamer(func(id uint16) string { return m.groups.NameOrEmpty(id) })
		if err := collision.Deduplicate(m.collisionStore, namer, collector); err != nil {
			return err
		}
		prog.Done()
	}

	m.state.Store(int32(statePrepared))

	return nil
}

// detectCollisions runs phase B: a worker-pool scan over every adjacent
// tracker pair. Workers partition the tracker positions [0, total); each
// range also owns the seam pair into its right neighbor, except the last
// (position total-1 has no right neighbor). Workers only read during the
// scan: each returns the internal ids it decided to mark, and the marks
// are applied once every worker has joined, so the join is the only
// synchronization point. The full set of marked ids is then collected with
// a single ascending scan over the data cache.
func (m *Mapper) detectCollisions(ctx context.Context, total int) ([]int64, error) {
	if total <= 1 {
		return nil, nil
	}

	toMark, err := workerpool.RunCollect(ctx, total, func(_ context.Context, r workerpool.Range) ([]int64, error) {
		return m.detectCollisionsRange(r)
	})
	if err != nil {
		return nil, err
	}

	// Idempotent: the same id can be reported by two workers when an
	// equal-eId run straddles their boundary, or several times within one
	// worker's run.
	for _, ids := range toMark {
		for _, id := range ids {
			idx := int(id)
			eid := m.data.Get(idx)
			if !bitpack.HasCollisionMark(eid) {
				m.data.Set(idx, bitpack.WithCollisionMark(eid))
			}
		}
	}

	marked := make([]int64, 0)
	for i := 0; i < total; i++ {
		if bitpack.HasCollisionMark(m.data.Get(i)) {
			marked = append(marked, int64(i))
		}
	}

	if len(marked) > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %d", errs.ErrTooManyCollisions, len(marked))
	}

	return marked, nil
}

// detectCollisionsRange scans the adjacent pairs (tracker[i], tracker[i+1])
// owned by r: every i in [r.Start, r.End), where the final pair peeks at
// the first slot of the next range (the seam), minus that seam when r is
// the last range. It maintains a per-group "first member of this run" map
// that resets whenever the eId changes (or a GAP is seen), and returns the
// internal ids to mark rather than marking them itself: the scan writes
// neither the data cache nor the tracker, so concurrent workers share only
// reads.
//
// r.Start can land mid-run: an equal-eId run with three or more distinct
// groups may straddle a worker boundary, and the pair immediately before
// r.Start (owned by the previous worker) already holds group history this
// worker has no direct view of. seedGroupFirst recovers that history by
// walking backward from r.Start to the run's true start before the main
// loop begins, so a same-group match spanning the boundary is still
// detected and both members still get marked.
func (m *Mapper) detectCollisionsRange(r workerpool.Range) ([]int64, error) {
	pairEnd := r.End
	if r.Last {
		pairEnd--
	}
	if pairEnd <= r.Start {
		return nil, nil
	}

	groupFirst, runEID := m.seedGroupFirst(r.Start)

	var mark []int64
	for i := r.Start; i < pairEnd; i++ {
		aID := m.tracker.Get(i)
		bID := m.tracker.Get(i + 1)

		aEID := bitpack.ClearCollisionMark(m.data.Get(int(aID)))
		bEID := bitpack.ClearCollisionMark(m.data.Get(int(bID)))

		if aEID == 0 || bEID == 0 {
			runEID = 0
			groupFirst = nil

			continue
		}

		if groupFirst == nil || aEID != runEID {
			runEID = aEID
			groupFirst = map[uint16]int64{m.groupCache.Get(int(aID)): aID}
		}

		switch {
		case bEID < aEID:
			return nil, fmt.Errorf("%w: tracker[%d] (eid=%#x) > tracker[%d] (eid=%#x)",
				errs.ErrUnsortedData, i, aEID, i+1, bEID)
		case bEID == aEID:
			// The sorter totally orders by (eId, internal id), so equal-eId
			// runs arrive with ascending internal ids; anything else means
			// the sort itself is broken.
			if aID > bID {
				return nil, fmt.Errorf("%w: tracker[%d] and tracker[%d] share eid=%#x out of internal-id order",
					errs.ErrUnsortedData, i, i+1, aEID)
			}

			groupB := m.groupCache.Get(int(bID))
			if firstID, ok := groupFirst[groupB]; ok {
				mark = append(mark, firstID, bID)
			} else {
				groupFirst[groupB] = bID
			}
		default: // bEID > aEID: the run ends at a, a fresh one begins at b
			runEID = bEID
			groupFirst = map[uint16]int64{m.groupCache.Get(int(bID)): bID}
		}
	}

	return mark, nil
}

// seedGroupFirst walks backward from tracker position startPos while the
// eId stays equal (stopping at a GAP, a changed eId, or index 0), then
// replays that prefix in ascending-index order to rebuild the "first member
// per group" map a single-threaded, whole-run scan would have produced by
// the time it reached startPos. It returns (nil, 0) when startPos is itself
// a GAP, matching the zero-value state detectCollisionsRange starts with
// for a fresh or GAP-adjacent run.
func (m *Mapper) seedGroupFirst(startPos int) (map[uint16]int64, uint64) {
	startID := m.tracker.Get(startPos)
	runEID := bitpack.ClearCollisionMark(m.data.Get(int(startID)))
	if runEID == 0 {
		return nil, 0
	}

	positions := []int{startPos}
	for p := startPos - 1; p >= 0; p-- {
		id := m.tracker.Get(p)
		eid := bitpack.ClearCollisionMark(m.data.Get(int(id)))
		if eid != runEID {
			break
		}
		positions = append(positions, p)
	}

	groupFirst := make(map[uint16]int64, len(positions))
	for i := len(positions) - 1; i >= 0; i-- {
		id := m.tracker.Get(positions[i])
		g := m.groupCache.Get(int(id))
		if _, ok := groupFirst[g]; !ok {
			groupFirst[g] = id
		}
	}

	return groupFirst, runEID
}

// resolveCollisions runs phase C: build the collision side-store from
// every marked internal id (consulting lookup for their original input
// identifiers) and sort it for binary search by Get.
func (m *Mapper) resolveCollisions(marked []int64, lookup InputIDLookup) error {
	if lookup == nil {
		return fmt.Errorf("idmap: collisions detected but no InputIDLookup was supplied to Prepare")
	}

	store := collision.Build(marked,
		func(id int64) uint64 { return bitpack.ClearCollisionMark(m.data.Get(int(id))) },
		func(id int64) uint16 { return m.groupCache.Get(int(id)) },
		func(id int64) any { return lookup.Lookup(id) },
	)
	m.collisionStore = store

	return nil
}
