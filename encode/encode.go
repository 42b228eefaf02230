// Package encode provides the Encoder implementations the mapper uses to
// turn an opaque input identifier into a 64-bit eId with bit 56 (the
// collision mark) left clear.
package encode

import (
	"fmt"

	"github.com/arloliu/idgraph/errs"
	"github.com/arloliu/idgraph/internal/bitpack"
	"github.com/arloliu/idgraph/internal/hash"
)

func defaultHash(s string) uint64 { return hash.ID(s) }

// Encoder deterministically maps an opaque input identifier to a non-zero
// eId with bit 56 (the collision mark) unset. It must never return 0.
type Encoder interface {
	Encode(inputID any) (uint64, error)
}

// lengthField holds the source string's byte length (0..7, saturating) in
// the word's top bits, well above the reserved collision-mark bit. Putting
// the length at the top also spreads encoded values across radix buckets
// by length, so the sorter's partition stays useful for this encoder.
var lengthField = bitpack.NewField(61, 3)

const maxASCIIBytes = 7

// StringASCIIEncoder packs up to the first 7 bytes of a string input
// directly into the eId's payload, one byte per 8-bit lane, plus the
// (saturating) source length. It is cheap and fully reversible for inputs
// of 7 bytes or fewer, but inputs longer than 7 bytes that share the same
// first 7 bytes collide by construction, which is the scenario the mapper's
// collision-detection pass exists to catch.
type StringASCIIEncoder struct{}

// NewStringASCIIEncoder returns a StringASCIIEncoder.
func NewStringASCIIEncoder() StringASCIIEncoder {
	return StringASCIIEncoder{}
}

// Encode implements Encoder.
func (StringASCIIEncoder) Encode(inputID any) (uint64, error) {
	s, ok := inputID.(string)
	if !ok {
		return 0, fmt.Errorf("encode: StringASCIIEncoder requires a string input id, got %T", inputID)
	}
	if s == "" {
		return 0, errs.ErrEmptyInput
	}

	var eid uint64
	n := len(s)
	if n > maxASCIIBytes {
		n = maxASCIIBytes
	}
	for i := 0; i < n; i++ {
		eid |= uint64(s[i]) << (8 * uint(i))
	}

	length := len(s)
	if length > maxASCIIBytes {
		length = maxASCIIBytes
	}
	eid = lengthField.Set(eid, uint64(length))

	if bitpack.HasCollisionMark(eid) {
		// Unreachable given the field layout above, but guarded per the
		// Encoder contract.
		return 0, errs.ErrReservedBit
	}
	if eid == 0 {
		return 0, errs.ErrGapEncoding
	}

	return eid, nil
}

// fallbackNonZero is substituted whenever XXHashEncoder's hash happens to
// land on the reserved GAP value after masking.
const fallbackNonZero = 1

// XXHashEncoder hashes arbitrary byte/string input identifiers with
// xxHash64 (via internal/hash) and folds the result into a non-zero eId.
// Unlike StringASCIIEncoder it never truncates input, trading a
// truncation-collision guarantee for a combinatorial hash-collision
// probability instead.
type XXHashEncoder struct {
	hash func(string) uint64
}

// NewXXHashEncoder returns an XXHashEncoder using xxhash.Sum64String.
func NewXXHashEncoder() XXHashEncoder {
	return XXHashEncoder{hash: defaultHash}
}

// Encode implements Encoder.
func (e XXHashEncoder) Encode(inputID any) (uint64, error) {
	var s string
	switch v := inputID.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return 0, fmt.Errorf("encode: XXHashEncoder requires a string or []byte input id, got %T", inputID)
	}

	h := e.hashFunc()(s)
	eid := bitpack.ClearCollisionMark(h)
	if eid == 0 {
		eid = fallbackNonZero
	}

	return eid, nil
}

func (e XXHashEncoder) hashFunc() func(string) uint64 {
	if e.hash != nil {
		return e.hash
	}

	return defaultHash
}
