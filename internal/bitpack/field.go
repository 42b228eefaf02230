// Package bitpack provides contiguous-bitfield access inside a single
// 64-bit word: a small set of named bit ranges packed into one machine
// word, read and written through masks rather than a generic
// shift-and-mask call at every use site.
package bitpack

// Field describes a contiguous run of bits inside a uint64, starting at bit
// Offset (0 = least significant bit) and Width bits wide.
type Field struct {
	Offset uint
	Width  uint
	mask   uint64
}

// NewField builds a Field descriptor for the given offset and width.
// Offset+Width must not exceed 64.
func NewField(offset, width uint) Field {
	if width == 0 || offset+width > 64 {
		panic("bitpack: invalid field offset/width")
	}

	var mask uint64
	if width == 64 {
		mask = ^uint64(0)
	} else {
		mask = (uint64(1) << width) - 1
	}

	return Field{Offset: offset, Width: width, mask: mask}
}

// CollisionMark is the reserved single-bit field at bit 56 used by the
// mapper to flag a colliding eId. Encoders must never write it.
var CollisionMark = NewField(56, 1)

// Get extracts this field's value from word, right-aligned.
func (f Field) Get(word uint64) uint64 {
	return (word >> f.Offset) & f.mask
}

// Set returns word with this field replaced by value (value is masked to
// the field's width first; other bits of word are preserved).
func (f Field) Set(word, value uint64) uint64 {
	return (word &^ (f.mask << f.Offset)) | ((value & f.mask) << f.Offset)
}

// Clear returns word with this field zeroed, all other bits preserved.
func (f Field) Clear(word uint64) uint64 {
	return word &^ (f.mask << f.Offset)
}

// IsSet reports whether this field (interpreted as a flag) is non-zero.
func (f Field) IsSet(word uint64) bool {
	return f.Get(word) != 0
}

// HasCollisionMark reports whether the collision-mark bit is set on eid.
func HasCollisionMark(eid uint64) bool {
	return CollisionMark.IsSet(eid)
}

// WithCollisionMark returns eid with the collision-mark bit set.
func WithCollisionMark(eid uint64) uint64 {
	return CollisionMark.Set(eid, 1)
}

// ClearCollisionMark returns eid with the collision-mark bit cleared. The
// result (all 64 bits except bit 56, including any encoder bits above the
// mark) is the key used for all ordering and equality decisions.
func ClearCollisionMark(eid uint64) uint64 {
	return CollisionMark.Clear(eid)
}
