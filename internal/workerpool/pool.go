// Package workerpool runs a fixed number of workers over disjoint,
// half-open index ranges and joins them with the first error, in the style
// of dgraph's restore mapper (worker/restore_map.go), which spins up
// `runtime.NumCPU()`-derived goroutines with golang.org/x/sync/errgroup and
// lets the group's context cancellation stop the others once one fails.
package workerpool

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// MinStride is the smallest number of entries per worker below which the
// pool collapses to single-threaded execution: spinning up goroutines for
// a handful of entries each costs more than it saves.
const MinStride = 10

// Range is a disjoint, half-open index range assigned to one worker. Last
// is true for the final range, for callers whose last worker must treat
// the partition's trailing edge differently.
type Range struct {
	Start int
	End   int
	Last  bool
}

// Workers returns N = max(1, cores-1), the fixed worker count used to size
// a pool, unless a smaller count is forced by total being too small to give
// each worker at least MinStride entries.
func Workers(total int) int {
	n := runtime.NumCPU() - 1
	if n < 1 {
		n = 1
	}
	if total/n < MinStride {
		n = 1
	}
	if n > total && total > 0 {
		n = total
	}

	return n
}

// Partition splits [0, total) into Workers(total) disjoint ranges.
func Partition(total int) []Range {
	n := Workers(total)
	if total <= 0 {
		return nil
	}

	ranges := make([]Range, 0, n)
	stride := total / n
	if stride == 0 {
		stride = 1
		n = total
	}

	start := 0
	for i := 0; i < n; i++ {
		end := start + stride
		if i == n-1 {
			end = total
		}
		ranges = append(ranges, Range{Start: start, End: end, Last: i == n-1})
		start = end
	}

	return ranges
}

// Run executes fn once per range in Partition(total), concurrently, joining
// all workers and returning the first error encountered (if any). fn must
// be safe to call concurrently for disjoint ranges; the pool guarantees it
// is never called twice for overlapping ranges.
func Run(ctx context.Context, total int, fn func(ctx context.Context, r Range) error) error {
	_, err := RunCollect(ctx, total, func(ctx context.Context, r Range) (struct{}, error) {
		return struct{}{}, fn(ctx, r)
	})

	return err
}

// RunCollect is Run for workers that produce a partial result: each worker's
// value is kept in its own slot and the slots are returned, in range order,
// only after every worker has joined. The join is the sole synchronization
// point; workers share nothing else.
func RunCollect[T any](ctx context.Context, total int, fn func(ctx context.Context, r Range) (T, error)) ([]T, error) {
	ranges := Partition(total)
	if len(ranges) == 0 {
		return nil, nil
	}

	results := make([]T, len(ranges))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range ranges {
		i, r := i, r
		g.Go(func() error {
			out, err := fn(gctx, r)
			if err != nil {
				return err
			}
			results[i] = out

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
