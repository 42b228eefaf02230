package collision

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeCollector struct {
	dups []dupReport
}

type dupReport struct {
	inputID    any
	internalID int64
	groupName  string
}

func (f *fakeCollector) Duplicate(inputID any, internalID int64, groupName string) {
	f.dups = append(f.dups, dupReport{inputID, internalID, groupName})
}

func namerFor(names map[uint16]string) GroupNamer {
	return func(id uint16) string { return names[id] }
}

func TestBuild_SortsByEidThenInternalID(t *testing.T) {
	eids := map[int64]uint64{10: 500, 11: 100, 12: 100}
	groups := map[int64]uint16{10: 0, 11: 0, 12: 0}
	inputs := map[int64]any{10: "a", 11: "b", 12: "c"}

	s := Build([]int64{10, 11, 12},
		func(id int64) uint64 { return eids[id] },
		func(id int64) uint16 { return groups[id] },
		func(id int64) any { return inputs[id] },
	)

	require.Equal(t, 3, s.Len())
	require.Equal(t, int64(11), s.At(0).InternalID)
	require.Equal(t, int64(12), s.At(1).InternalID)
	require.Equal(t, int64(10), s.At(2).InternalID)
}

func TestStore_RangeAndLookup(t *testing.T) {
	eids := map[int64]uint64{1: 42, 2: 42, 3: 42, 4: 99}
	groups := map[int64]uint16{1: 0, 2: 0, 3: 1, 4: 0}
	inputs := map[int64]any{1: "alice", 2: "bob", 3: "alice", 4: "carol"}

	s := Build([]int64{1, 2, 3, 4},
		func(id int64) uint64 { return eids[id] },
		func(id int64) uint16 { return groups[id] },
		func(id int64) any { return inputs[id] },
	)

	lo, hi := s.Range(42)
	require.Equal(t, 3, hi-lo)

	id, ok := s.Lookup(lo, hi, 0, "bob")
	require.True(t, ok)
	require.Equal(t, int64(2), id)

	// Same input, different group: isolated.
	id, ok = s.Lookup(lo, hi, 1, "alice")
	require.True(t, ok)
	require.Equal(t, int64(3), id)

	_, ok = s.Lookup(lo, hi, 0, "nobody")
	require.False(t, ok)

	lo, hi = s.Range(99)
	require.Equal(t, 1, hi-lo)
}

func TestStore_LookupPrefersLowestInternalID(t *testing.T) {
	eids := map[int64]uint64{5: 7, 6: 7}
	groups := map[int64]uint16{5: 0, 6: 0}
	inputs := map[int64]any{5: "x", 6: "x"}

	s := Build([]int64{6, 5}, // Put out of order; Build must still sort.
		func(id int64) uint64 { return eids[id] },
		func(id int64) uint16 { return groups[id] },
		func(id int64) any { return inputs[id] },
	)

	lo, hi := s.Range(7)
	id, ok := s.Lookup(lo, hi, 0, "x")
	require.True(t, ok)
	require.Equal(t, int64(5), id)
}

func TestDeduplicate_ReportsRepeatsWithinGroupRun(t *testing.T) {
	eids := map[int64]uint64{1: 1, 2: 1, 3: 1, 4: 1}
	groups := map[int64]uint16{1: 0, 2: 0, 3: 0, 4: 1}
	inputs := map[int64]any{1: "dup", 2: "dup", 3: "unique", 4: "dup"}

	s := Build([]int64{1, 2, 3, 4},
		func(id int64) uint64 { return eids[id] },
		func(id int64) uint16 { return groups[id] },
		func(id int64) any { return inputs[id] },
	)

	col := &fakeCollector{}
	names := namerFor(map[uint16]string{0: "g0", 1: "g1"})
	require.NoError(t, Deduplicate(s, names, col))

	require.Len(t, col.dups, 1)
	require.Equal(t, "dup", col.dups[0].inputID)
	require.Equal(t, "g0", col.dups[0].groupName)
}

func TestDeduplicate_NoFalsePositivesAcrossGroups(t *testing.T) {
	eids := map[int64]uint64{1: 1, 2: 1}
	groups := map[int64]uint16{1: 0, 2: 1}
	inputs := map[int64]any{1: "same", 2: "same"}

	s := Build([]int64{1, 2},
		func(id int64) uint64 { return eids[id] },
		func(id int64) uint16 { return groups[id] },
		func(id int64) any { return inputs[id] },
	)

	col := &fakeCollector{}
	names := namerFor(map[uint16]string{0: "g0", 1: "g1"})
	require.NoError(t, Deduplicate(s, names, col))
	require.Empty(t, col.dups)
}
