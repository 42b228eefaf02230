package array

import (
	"fmt"

	"github.com/arloliu/idgraph/errs"
)

const (
	// maxUint32 bounds the values a 32-bit tracker can hold.
	maxUint32 = 1<<32 - 1
	// maxUint40 bounds the values a 40-bit tracker can hold.
	maxUint40 = 1<<40 - 1
)

// Tracker maps a sort-slot index to the internal id that currently occupies
// it (or its inverse, depending on the caller's convention). The mapper
// picks a backing width based on the highest internal id it has seen: a
// 32-bit tracker for imports under 2^32 nodes, a 40-bit tracker beyond that,
// trading eight bytes per slot for five once the import is large enough
// that the saving matters.
type Tracker interface {
	Get(i int) int64
	Set(i int, v int64) error
	Size() int
	Swap(i, j int)
	Accept(name string, v Visitor)
}

// NewTracker picks a tracker implementation sized for highestInternalID.
func NewTracker(chunkSize int, highestInternalID int64) Tracker {
	if highestInternalID >= 0 && highestInternalID <= maxUint32 {
		return newTracker32(chunkSize)
	}

	return newTracker40(chunkSize)
}

// TrackerWidthBytes returns the per-entry byte width NewTracker would pick
// for highestInternalID, used by CalculateMemoryUsage to report a memory
// estimate without allocating a tracker.
func TrackerWidthBytes(highestInternalID int64) int {
	if highestInternalID >= 0 && highestInternalID <= maxUint32 {
		return 4
	}

	return bytesPerEntry40
}

// tracker32 is a Tracker backed by a plain uint32 chunked array.
type tracker32 struct {
	data *Chunked[uint32]
}

func newTracker32(chunkSize int) *tracker32 {
	return &tracker32{data: NewChunked[uint32](chunkSize, 0)}
}

func (t *tracker32) Get(i int) int64 {
	return int64(t.data.Get(i))
}

func (t *tracker32) Set(i int, v int64) error {
	if v < 0 || v > maxUint32 {
		return fmt.Errorf("%w: %d does not fit in 32 bits", errs.ErrInternalIDOutOfRange, v)
	}
	t.data.Set(i, uint32(v))

	return nil
}

func (t *tracker32) Size() int { return t.data.Size() }

func (t *tracker32) Swap(i, j int) { t.data.Swap(i, j) }

func (t *tracker32) Accept(name string, v Visitor) { t.data.Accept(name, v) }

// tracker40 is a Tracker that packs each value into 5 bytes of a byte
// chunked array instead of a full 8-byte word, spending a handful of
// shifts per access to buy back three bytes per entry.
type tracker40 struct {
	data      *Chunked[uint8]
	chunkSize int
	size      int
}

const bytesPerEntry40 = 5

func newTracker40(chunkSize int) *tracker40 {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	return &tracker40{
		data:      NewChunked[uint8](chunkSize*bytesPerEntry40, 0),
		chunkSize: chunkSize,
	}
}

func (t *tracker40) byteOffset(i int) int {
	return i * bytesPerEntry40
}

func (t *tracker40) Get(i int) int64 {
	off := t.byteOffset(i)
	var v uint64
	for k := 0; k < bytesPerEntry40; k++ {
		v |= uint64(t.data.Get(off+k)) << (8 * k)
	}

	return int64(v)
}

func (t *tracker40) Set(i int, v int64) error {
	if v < 0 || v > maxUint40 {
		return fmt.Errorf("%w: %d does not fit in 40 bits", errs.ErrInternalIDOutOfRange, v)
	}

	off := t.byteOffset(i)
	uv := uint64(v)
	for k := 0; k < bytesPerEntry40; k++ {
		t.data.Set(off+k, uint8(uv>>(8*k)))
	}
	if i+1 > t.size {
		t.size = i + 1
	}

	return nil
}

func (t *tracker40) Size() int { return t.size }

func (t *tracker40) Swap(i, j int) {
	vi := t.Get(i)
	vj := t.Get(j)
	_ = t.Set(i, vj)
	_ = t.Set(j, vi)
}

func (t *tracker40) Accept(name string, v Visitor) {
	var stats MemoryStats
	t.data.Accept(name, visitorFunc(func(s MemoryStats) { stats = s }))
	v.Visit(MemoryStats{
		Name:          name,
		LiveBytes:     int64(t.size) * bytesPerEntry40,
		ReservedBytes: stats.ReservedBytes,
	})
}

type visitorFunc func(MemoryStats)

func (f visitorFunc) Visit(s MemoryStats) { f(s) }
