package workerpool

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPartition_CoversRangeDisjointly(t *testing.T) {
	for _, total := range []int{0, 1, 9, 10, 11, 1000, 1_000_000} {
		ranges := Partition(total)
		if total == 0 {
			require.Empty(t, ranges)
			continue
		}

		covered := 0
		for i, r := range ranges {
			require.LessOrEqual(t, r.Start, r.End)
			if i > 0 {
				require.Equal(t, ranges[i-1].End, r.Start)
			}
			covered += r.End - r.Start
		}
		require.Equal(t, total, covered)
		require.True(t, ranges[len(ranges)-1].Last)
		for _, r := range ranges[:len(ranges)-1] {
			require.False(t, r.Last)
		}
	}
}

func TestPartition_SmallTotalCollapses(t *testing.T) {
	ranges := Partition(5)
	require.Len(t, ranges, 1)
	require.Equal(t, Range{Start: 0, End: 5, Last: true}, ranges[0])
}

func TestRun_VisitsEveryIndexExactlyOnce(t *testing.T) {
	const total = 10_007
	var mu sync.Mutex
	seen := make(map[int]bool, total)

	err := Run(context.Background(), total, func(_ context.Context, r Range) error {
		mu.Lock()
		defer mu.Unlock()
		for i := r.Start; i < r.End; i++ {
			seen[i] = true
		}

		return nil
	})
	require.NoError(t, err)
	require.Len(t, seen, total)
}

func TestRun_PropagatesFirstError(t *testing.T) {
	wantErr := errors.New("boom")
	err := Run(context.Background(), 1000, func(_ context.Context, r Range) error {
		if r.Start == 0 {
			return wantErr
		}

		return nil
	})
	require.ErrorIs(t, err, wantErr)
}

func TestRunCollect_AggregatesPerWorkerResults(t *testing.T) {
	const total = 10_007
	counts, err := RunCollect(context.Background(), total, func(_ context.Context, r Range) (int, error) {
		return r.End - r.Start, nil
	})
	require.NoError(t, err)

	sum := 0
	for _, c := range counts {
		sum += c
	}
	require.Equal(t, total, sum)
}

func TestRunCollect_FirstErrorDiscardsResults(t *testing.T) {
	wantErr := errors.New("boom")
	results, err := RunCollect(context.Background(), 1000, func(_ context.Context, r Range) ([]int, error) {
		if r.Last {
			return nil, wantErr
		}

		return []int{r.Start}, nil
	})
	require.ErrorIs(t, err, wantErr)
	require.Nil(t, results)
}

func TestRun_EmptyTotal(t *testing.T) {
	called := false
	err := Run(context.Background(), 0, func(_ context.Context, r Range) error {
		called = true

		return nil
	})
	require.NoError(t, err)
	require.False(t, called)
}
