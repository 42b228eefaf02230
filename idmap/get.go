package idmap

import (
	"github.com/arloliu/idgraph/group"
	"github.com/arloliu/idgraph/internal/bitpack"
	"github.com/arloliu/idgraph/internal/radix"
)

// Get returns the lowest internal id Put with inputID within grp, or
// NotFound if none matches. Legal only once the mapper has been Prepared;
// read-only and safe for many concurrent callers thereafter.
func (m *Mapper) Get(inputID any, grp group.Group) int64 {
	if state(m.state.Load()) != statePrepared {
		return NotFound
	}

	total := m.tracker.Size()
	if total == 0 {
		return NotFound
	}

	x, err := m.cfg.Encoder.Encode(inputID)
	if err != nil || x == 0 {
		return NotFound
	}
	x = bitpack.ClearCollisionMark(x)

	rx := radix.Code(x)
	low, high := radix.Narrow(m.zoom, total, rx)
	if id, ok := m.searchRange(low, high, x, grp, inputID); ok {
		return id
	}

	// The radix zoom table narrows by the eId's top nibble. Sort builds no
	// zoom table for a single-entry tracker, so there the narrowed range is
	// empty and this full-range search is the one that finds the entry.
	// Otherwise a zoom miss means the requested eId doesn't exist, and
	// re-checking the full range once guards against a boundary straddle
	// between two buckets' ranges (see DESIGN.md for why this is kept
	// rather than trusted to the zoom alone).
	if id, ok := m.searchRange(0, total, x, grp, inputID); ok {
		return id
	}

	return NotFound
}

// searchRange binary-searches tracker[low:high) for eId x, expands to the
// full run of adjacent equal-eId entries, and resolves the answer within
// grp: a non-collision match is unique in its group and returned
// immediately; collision-marked matches are disambiguated via the
// collision side-store by semantic equality of inputID.
func (m *Mapper) searchRange(low, high int, x uint64, grp group.Group, inputID any) (int64, bool) {
	mid, found := m.binarySearch(low, high, x)
	if !found {
		return NotFound, false
	}

	lo, hi := m.expandEqualRun(low, high, mid, x)

	hasCollisionInGroup := false
	for i := lo; i <= hi; i++ {
		id := m.tracker.Get(i)
		if m.groupCache.Get(int(id)) != grp.ID {
			continue
		}

		eid := m.data.Get(int(id))
		if !bitpack.HasCollisionMark(eid) {
			// Phase B marks every same-group member of an equal-eId run, so
			// an unmarked entry is the only one of its group in this run.
			return id, true
		}
		hasCollisionInGroup = true
	}

	if hasCollisionInGroup && m.collisionStore != nil {
		cLo, cHi := m.collisionStore.Range(x)
		if id, ok := m.collisionStore.Lookup(cLo, cHi, grp.ID, inputID); ok {
			return id, true
		}
	}

	return NotFound, false
}

// binarySearch finds a tracker index in [low, high) whose (mark-cleared)
// eId equals x, returning its index and true, or (0, false) if absent.
func (m *Mapper) binarySearch(low, high int, x uint64) (int, bool) {
	for low < high {
		mid := low + (high-low)/2
		id := m.tracker.Get(mid)
		eid := bitpack.ClearCollisionMark(m.data.Get(int(id)))

		switch {
		case eid < x:
			low = mid + 1
		case eid > x:
			high = mid
		default:
			return mid, true
		}
	}

	return 0, false
}

// expandEqualRun scans outward from mid within [low, high) to find the
// full [lo, hi] inclusive range of tracker indices whose eId equals x.
func (m *Mapper) expandEqualRun(low, high, mid int, x uint64) (int, int) {
	lo, hi := mid, mid

	for lo > low {
		id := m.tracker.Get(lo - 1)
		if bitpack.ClearCollisionMark(m.data.Get(int(id))) != x {
			break
		}
		lo--
	}

	for hi < high-1 {
		id := m.tracker.Get(hi + 1)
		if bitpack.ClearCollisionMark(m.data.Get(int(id))) != x {
			break
		}
		hi++
	}

	return lo, hi
}
