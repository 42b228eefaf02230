package compress

import (
	"fmt"
)

// Compressor compresses arbitrary byte payloads.
//
// It is used by the diag package to shrink memory-usage snapshots before
// they are written to an operator-facing export; it has no involvement in
// the mapper's hot path.
type Compressor interface {
	// Compress compresses the input data and returns the compressed result.
	//
	// Memory management:
	//   - Returned slice is newly allocated and owned by the caller, except
	//     for NoOpCompressor, which returns the input slice itself
	//   - Input slice is not modified
	//   - Internal buffers may be reused for efficiency
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses a payload produced by the matching Compressor.
//
// Thread Safety: Decompressor implementations must be safe for concurrent use
// or document their thread safety requirements clearly.
type Decompressor interface {
	// Decompress decompresses the input data and returns the original result.
	//
	// Error conditions:
	//   - Returns error if input data is corrupted or invalid
	//   - Returns error if data was compressed with incompatible algorithm
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// Kind identifies a codec implementation for lookup and reporting purposes.
type Kind uint8

const (
	KindNone Kind = iota + 1
	KindZstd
	KindS2
	KindLZ4
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindZstd:
		return "zstd"
	case KindS2:
		return "s2"
	case KindLZ4:
		return "lz4"
	default:
		return "unknown"
	}
}

// Stats describes the outcome of a single compression operation, useful for
// deciding whether a snapshot export paid for its own compression overhead.
type Stats struct {
	Algorithm      Kind
	OriginalSize   int64
	CompressedSize int64
}

// Ratio returns the ratio of compressed size to original size (< 1.0 for a
// net reduction in size).
func (s Stats) Ratio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// CreateCodec is a factory function that creates a Codec for the given kind.
func CreateCodec(kind Kind) (Codec, error) {
	switch kind {
	case KindNone:
		return NewNoOpCompressor(), nil
	case KindZstd:
		return NewZstdCompressor(), nil
	case KindS2:
		return NewS2Compressor(), nil
	case KindLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("compress: unknown codec kind %d", kind)
	}
}
