// Package radix provides the nibble-indexed histogram and bucket table that
// drive the parallel sorter's partitioning and the lookup "zoom" step.
//
// The 4-bit (nibble) fan-out mirrors SnellerInc's radixTree64
// (vm/radix64.go), which buckets 64-bit hashes with `radix = 4`,
// `tabsize = 1<<radix = 16` slots per level. This package borrows that
// fan-out but not the trie: the mapper only ever needs one level of
// histogram, over the eId's top nibble, since the sorter recursively
// splits any bucket that remains too large rather than descending to a
// second radix level.
package radix

import "github.com/arloliu/idgraph/internal/bitpack"

// NumBuckets is the nibble fan-out, 1<<4.
const NumBuckets = 16

// payloadTop is the field covering the eId's top nibble (bits 60-63),
// above the reserved collision mark. The code must come from the word's
// most significant bits: the sorter lays buckets out in code order and
// sorts each one by the full (mark-cleared) eId, so global tracker order
// is only correct when code order agrees with unsigned eId order.
var payloadTop = bitpack.NewField(60, 4)

// Code returns the radix bucket (0..NumBuckets-1) for an eId. The
// collision mark is ignored: the top nibble lives above the mark, so its
// value is the same whether or not callers cleared it first.
func Code(eid uint64) uint8 {
	return uint8(payloadTop.Get(eid))
}

// Histogram counts how many eIds fall into each radix bucket. GAP (0)
// entries are tracked separately via Gaps rather than folded into bucket 0,
// since they never carry a real radix code and the sorter collects them in
// their own prefix region ahead of every bucket instead of sharing bucket
// 0's range.
type Histogram struct {
	counts [NumBuckets]int
	gaps   int
}

// Add records one non-GAP eId's bucket.
func (h *Histogram) Add(eid uint64) {
	h.counts[Code(eid)]++
}

// Populate scans n data-cache entries via get, counting GAP (0) entries
// separately (see Gaps) instead of bucketing them.
func (h *Histogram) Populate(n int, get func(i int) uint64) {
	for i := 0; i < n; i++ {
		v := get(i)
		if v == 0 {
			h.gaps++
			continue
		}
		h.Add(bitpack.ClearCollisionMark(v))
	}
}

// Gaps returns how many GAP (0) entries Populate counted.
func (h *Histogram) Gaps() int {
	return h.gaps
}

// Counts returns the raw per-bucket counts.
func (h *Histogram) Counts() [NumBuckets]int {
	return h.counts
}

// Offsets returns the exclusive prefix sum of counts: Offsets()[b] is the
// first tracker slot assigned to bucket b once buckets are laid out
// contiguously in ascending order, and Offsets()[NumBuckets] is the total.
func (h *Histogram) Offsets() [NumBuckets + 1]int {
	var offs [NumBuckets + 1]int
	sum := 0
	for b := 0; b < NumBuckets; b++ {
		offs[b] = sum
		sum += h.counts[b]
	}
	offs[NumBuckets] = sum

	return offs
}

// BucketRange is a half-open [Start, End) tracker-index range assigned to
// one radix bucket, used to partition work across the worker pool before
// sorting.
type BucketRange struct {
	Bucket uint8
	Start  int
	End    int
}

// Ranges expands Offsets into a list of non-empty bucket ranges.
func (h *Histogram) Ranges() []BucketRange {
	offs := h.Offsets()
	ranges := make([]BucketRange, 0, NumBuckets)
	for b := 0; b < NumBuckets; b++ {
		if offs[b+1] > offs[b] {
			ranges = append(ranges, BucketRange{Bucket: uint8(b), Start: offs[b], End: offs[b+1]})
		}
	}

	return ranges
}

// ZoomEntry is one row of the sort-bucket "zoom" table captured after the
// sort completes: every tracker slot in [Start, next entry's Start) holds an
// eId whose radix code is <= Ceiling.
type ZoomEntry struct {
	Ceiling uint8
	Start   int
}

// BuildZoomTable converts a histogram's bucket ranges, as laid out by the
// sorter, into the zoom table used by Get to narrow its binary-search range.
// Buckets skipped entirely (zero entries) are omitted; their slots are
// covered by the surrounding ceilings.
func BuildZoomTable(ranges []BucketRange) []ZoomEntry {
	table := make([]ZoomEntry, 0, len(ranges))
	for _, r := range ranges {
		table = append(table, ZoomEntry{Ceiling: r.Bucket, Start: r.Start})
	}

	return table
}

// Narrow returns the [low, high) tracker range the zoom table assigns to
// radix code rx: the first entry whose ceiling is >= rx, up to the next
// entry's start (or the total size for the last entry).
func Narrow(table []ZoomEntry, total int, rx uint8) (low, high int) {
	for i, e := range table {
		if e.Ceiling >= rx {
			low = e.Start
			if i+1 < len(table) {
				high = table[i+1].Start
			} else {
				high = total
			}

			return low, high
		}
	}

	return total, total
}
