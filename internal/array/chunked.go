// Package array provides the chunked, growable packed arrays the mapper
// uses as its data cache, group cache, and tracker: plain slices would
// require one contiguous allocation sized to the highest internal id seen so
// far, which for a billion-node import would repeatedly trigger multi-GB
// copies as the caller's Put calls grow the id space. Chunking trades that
// for a small, constant number of fixed-size chunks allocated lazily as
// indices are first touched.
package array

// DefaultChunkSize is the number of entries per chunk: large enough that
// chunk allocation overhead is negligible relative to chunk contents, small
// enough that a single chunk's footprint stays in the low megabytes.
const DefaultChunkSize = 1 << 20

// Numeric is the set of element types the chunked arrays in this package
// support.
type Numeric interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~int64
}

// Chunked is a dynamic, chunked array of T with a fixed gap (default) value
// returned for any index that has never been written.
type Chunked[T Numeric] struct {
	chunks    [][]T
	chunkSize int
	gap       T
	size      int // highest index written + 1; 0 if empty
}

// NewChunked creates a Chunked array with the given chunk size and gap value.
// chunkSize <= 0 selects DefaultChunkSize.
func NewChunked[T Numeric](chunkSize int, gap T) *Chunked[T] {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	return &Chunked[T]{chunkSize: chunkSize, gap: gap}
}

func (c *Chunked[T]) chunkIndex(i int) (chunk, offset int) {
	return i / c.chunkSize, i % c.chunkSize
}

// ensure grows c.chunks so that chunk index ci exists and is allocated,
// pre-filled with the gap value.
func (c *Chunked[T]) ensure(ci int) {
	for len(c.chunks) <= ci {
		c.chunks = append(c.chunks, nil)
	}
	if c.chunks[ci] == nil {
		buf := make([]T, c.chunkSize)
		if c.gap != 0 {
			for i := range buf {
				buf[i] = c.gap
			}
		}
		c.chunks[ci] = buf
	}
}

// Get returns the value at index i, or the gap value if i has never been
// set (including indices in a chunk that was never allocated).
func (c *Chunked[T]) Get(i int) T {
	ci, off := c.chunkIndex(i)
	if ci >= len(c.chunks) || c.chunks[ci] == nil {
		return c.gap
	}

	return c.chunks[ci][off]
}

// Set writes value at index i, growing the backing chunks as needed.
func (c *Chunked[T]) Set(i int, value T) {
	ci, off := c.chunkIndex(i)
	c.ensure(ci)
	c.chunks[ci][off] = value
	if i+1 > c.size {
		c.size = i + 1
	}
}

// Size returns one plus the highest index ever Set.
func (c *Chunked[T]) Size() int {
	return c.size
}

// Swap exchanges the values stored at indices i and j.
func (c *Chunked[T]) Swap(i, j int) {
	vi := c.Get(i)
	vj := c.Get(j)
	c.Set(i, vj)
	c.Set(j, vi)
}

// MemoryStats describes one chunked array's memory footprint for the
// Accept/MemoryVisitor protocol (see diag.MemoryVisitor).
type MemoryStats struct {
	Name         string
	LiveBytes    int64 // bytes actually touched (size * element size)
	ReservedBytes int64 // bytes allocated (allocated chunks * chunk size * element size)
}

// Visitor receives a MemoryStats report. Implemented by diag.MemoryVisitor.
type Visitor interface {
	Visit(MemoryStats)
}

// Accept reports this array's memory footprint to v.
func (c *Chunked[T]) Accept(name string, v Visitor) {
	var zero T
	elemSize := int64(sizeOf(zero))

	allocated := 0
	for _, chunk := range c.chunks {
		if chunk != nil {
			allocated++
		}
	}

	v.Visit(MemoryStats{
		Name:          name,
		LiveBytes:     int64(c.size) * elemSize,
		ReservedBytes: int64(allocated*c.chunkSize) * elemSize,
	})
}

func sizeOf[T Numeric](v T) int {
	switch any(v).(type) {
	case uint8:
		return 1
	case uint16:
		return 2
	case uint32:
		return 4
	case uint64, int64:
		return 8
	default:
		return 8
	}
}
