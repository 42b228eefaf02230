// Package sorter implements the parallel, radix-partitioned quicksort that
// brings the tracker array into eId order during Prepare.
//
// The approach is a classic two-pass radix sort: a single-threaded counting
// pass buckets every tracker entry by the top nibble of its eId (see
// internal/radix), then each bucket, now a contiguous tracker range, is
// quicksorted independently and concurrently. Concurrency is bounded the
// same way the worker pool bounds it elsewhere in the mapper: one goroutine
// per non-empty bucket, capped by workerpool.Workers.
package sorter

import (
	"context"
	"fmt"

	"github.com/arloliu/idgraph/internal/array"
	"github.com/arloliu/idgraph/internal/pool"
	"github.com/arloliu/idgraph/internal/radix"
	"github.com/arloliu/idgraph/internal/workerpool"
	"golang.org/x/sync/errgroup"
)

// KeyFunc returns the comparison key (collision mark already cleared) for a
// tracker value v, which is itself an internal id to be looked up in the
// data cache. A GAP entry must return 0.
type KeyFunc func(internalID int64) uint64

// insertionSortCutoff is the range length below which insertion sort beats
// quicksort's overhead.
const insertionSortCutoff = 12

// Sort reorders tr[0:total) so that, under key, values appear in
// non-decreasing order (ties broken by ascending tracker value, i.e.
// ascending internal id). It returns the zoom table produced by the radix
// partition, for use by a later binary-search narrowing step.
//
// workerOverride, if positive, replaces the pool's default N = max(1,
// cores-1) sizing (idmap.WithWorkerCount's escape hatch); zero or negative
// falls back to workerpool.Workers.
func Sort(ctx context.Context, tr array.Tracker, total int, key KeyFunc, workerOverride int) ([]radix.ZoomEntry, error) {
	if total <= 1 {
		return nil, nil
	}

	var hist radix.Histogram
	hist.Populate(total, func(i int) uint64 { return key(tr.Get(i)) })

	gapCount := hist.Gaps()
	ranges := hist.Ranges()
	for i := range ranges {
		ranges[i].Start += gapCount
		ranges[i].End += gapCount
	}
	if err := bucketPlace(tr, total, key, hist, gapCount); err != nil {
		return nil, err
	}

	workers := workerpool.Workers(total)
	if workerOverride > 0 {
		workers = workerOverride
	}
	sem := make(chan struct{}, workers)
	g, gctx := errgroup.WithContext(ctx)

	for _, r := range ranges {
		r := r
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			if gctx.Err() != nil {
				return gctx.Err()
			}

			quicksort(tr, r.Start, r.End, key)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("sorter: %w", err)
	}

	return radix.BuildZoomTable(ranges), nil
}

// bucketPlace performs the single-threaded counting-sort pass: every
// GAP (key 0) entry is moved into its own prefix region of gapCount slots
// (GAPs never carry a real radix code and the histogram never reserved
// bucket-0 space for them), and every other entry is moved into the
// contiguous range its radix bucket owns, shifted past that prefix.
func bucketPlace(tr array.Tracker, total int, key KeyFunc, hist radix.Histogram, gapCount int) error {
	cursor := hist.Offsets()
	scratch, release := pool.GetInt64Slice(total)
	defer release()

	gapPos := 0
	for i := 0; i < total; i++ {
		v := tr.Get(i)
		k := key(v)
		if k == 0 {
			scratch[gapPos] = v
			gapPos++

			continue
		}

		b := radix.Code(k)
		pos := gapCount + cursor[b]
		cursor[b]++
		scratch[pos] = v
	}

	for i, v := range scratch {
		if err := tr.Set(i, v); err != nil {
			return err
		}
	}

	return nil
}

func less(tr array.Tracker, key KeyFunc, i, j int) bool {
	vi, vj := tr.Get(i), tr.Get(j)
	ki, kj := key(vi), key(vj)
	if ki != kj {
		return ki < kj
	}

	return vi < vj
}

// quicksort sorts tr[lo:hi) in place, median-of-three pivoting, falling
// back to insertion sort for small ranges.
func quicksort(tr array.Tracker, lo, hi int, key KeyFunc) {
	for hi-lo > insertionSortCutoff {
		p := medianOfThreePivot(tr, lo, hi, key)
		p = partition(tr, lo, hi, p, key)

		// Recurse into the smaller side, loop on the larger one: bounds
		// the call stack to O(log n) even on adversarial input.
		if p-lo < hi-p {
			quicksort(tr, lo, p, key)
			lo = p + 1
		} else {
			quicksort(tr, p+1, hi, key)
			hi = p
		}
	}
	insertionSort(tr, lo, hi, key)
}

func medianOfThreePivot(tr array.Tracker, lo, hi int, key KeyFunc) int {
	mid := lo + (hi-lo)/2
	last := hi - 1

	if less(tr, key, mid, lo) {
		tr.Swap(mid, lo)
	}
	if less(tr, key, last, lo) {
		tr.Swap(last, lo)
	}
	if less(tr, key, last, mid) {
		tr.Swap(last, mid)
	}

	return mid
}

func partition(tr array.Tracker, lo, hi, pivotIdx int, key KeyFunc) int {
	last := hi - 1
	tr.Swap(pivotIdx, last)
	pivotVal := tr.Get(last)
	pivotKey := key(pivotVal)

	store := lo
	for i := lo; i < last; i++ {
		vi := tr.Get(i)
		ki := key(vi)
		if ki < pivotKey || (ki == pivotKey && vi < pivotVal) {
			tr.Swap(i, store)
			store++
		}
	}
	tr.Swap(store, last)

	return store
}

func insertionSort(tr array.Tracker, lo, hi int, key KeyFunc) {
	for i := lo + 1; i < hi; i++ {
		for j := i; j > lo && less(tr, key, j, j-1); j-- {
			tr.Swap(j, j-1)
		}
	}
}
