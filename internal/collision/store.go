// Package collision implements the side-store built during Prepare's phase
// C: once the sort and collision-mark passes know which internal ids share
// an eId, this store remembers their real input identifiers so Get can
// break the tie by semantic equality instead of eId equality alone.
package collision

import (
	"reflect"
	"sort"
)

// Entry is one marked internal id's record in the side-store.
type Entry struct {
	EID        uint64 // collision mark already cleared
	InternalID int64
	GroupID    uint16
	InputID    any
}

// Collector receives duplicate-input reports found while scanning the
// store; see idmap.Collector for the public-facing equivalent.
type Collector interface {
	Duplicate(inputID any, internalID int64, groupName string)
}

// GroupNamer resolves a group id to its display name for Collector reports.
type GroupNamer func(groupID uint16) string

// Store holds every marked entry, sorted for binary search by eId then
// internal id.
type Store struct {
	entries []Entry
}

// Build constructs the side-store from the list of internal ids whose eId
// carries the collision mark. eidOf and groupOf read the data/group caches;
// lookup resolves an internal id back to its original input identifier.
func Build(markedInternalIDs []int64, eidOf func(int64) uint64, groupOf func(int64) uint16, lookup func(int64) any) *Store {
	entries := make([]Entry, len(markedInternalIDs))
	for i, id := range markedInternalIDs {
		entries[i] = Entry{
			EID:        eidOf(id),
			InternalID: id,
			GroupID:    groupOf(id),
			InputID:    lookup(id),
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].EID != entries[j].EID {
			return entries[i].EID < entries[j].EID
		}

		return entries[i].InternalID < entries[j].InternalID
	})

	return &Store{entries: entries}
}

// Len returns the number of entries in the store.
func (s *Store) Len() int { return len(s.entries) }

// At returns the entry at index i.
func (s *Store) At(i int) Entry { return s.entries[i] }

// Range returns the half-open [lo, hi) index range of entries whose EID
// equals eid, via binary search. If none match, lo == hi.
func (s *Store) Range(eid uint64) (lo, hi int) {
	lo = sort.Search(len(s.entries), func(i int) bool { return s.entries[i].EID >= eid })
	hi = sort.Search(len(s.entries), func(i int) bool { return s.entries[i].EID > eid })

	return lo, hi
}

// Lookup searches the [lo, hi) range (as returned by Range) for an entry in
// the given group whose InputID is semantically equal to query, returning
// the lowest matching internal id.
func (s *Store) Lookup(lo, hi int, groupID uint16, query any) (int64, bool) {
	found := false
	var best int64

	for i := lo; i < hi; i++ {
		e := s.entries[i]
		if e.GroupID != groupID {
			continue
		}
		if !inputEqual(e.InputID, query) {
			continue
		}
		if !found || e.InternalID < best {
			best = e.InternalID
			found = true
		}
	}

	return best, found
}

// Deduplicate scans the store for runs of equal (EID, GroupID) and reports
// every input identifier that semantically duplicates one already seen
// earlier in the same run. It assumes the store is sorted (the state Build
// leaves it in); a store mutated out of order after Build is a programmer
// error.
func Deduplicate(s *Store, namer GroupNamer, collector Collector) error {
	n := s.Len()
	i := 0
	for i < n {
		j := i + 1
		for j < n && s.entries[j].EID == s.entries[i].EID {
			j++
		}
		if err := dedupRun(s.entries[i:j], namer, collector); err != nil {
			return err
		}
		i = j
	}

	return nil
}

func dedupRun(run []Entry, namer GroupNamer, collector Collector) error {
	// Entries are already EID-sorted but not necessarily group-grouped
	// within a run; group them first so "same run" means (EID, group).
	byGroup := make(map[uint16][]Entry)
	for _, e := range run {
		byGroup[e.GroupID] = append(byGroup[e.GroupID], e)
	}

	for _, entries := range byGroup {
		seen := make([]any, 0, len(entries))
		for _, e := range entries {
			dup := false
			for _, s := range seen {
				if inputEqual(s, e.InputID) {
					dup = true
					break
				}
			}
			if dup {
				if collector != nil {
					collector.Duplicate(e.InputID, e.InternalID, namer(e.GroupID))
				}

				continue
			}
			seen = append(seen, e.InputID)
		}
	}

	return nil
}

// inputEqual reports semantic equality of two input identifiers. Opaque
// input ids are usually comparable (strings, integers) but are typed as
// `any`, so we fall back to reflect.DeepEqual rather than requiring callers
// to satisfy comparable.
func inputEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}

	return reflect.DeepEqual(a, b)
}
