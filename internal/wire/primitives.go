package wire

import (
	"encoding/binary"
	"math"
)

// ReadUint64 decodes a little-endian u64 at offset. The caller guarantees
// offset+8 <= len(buf).
func ReadUint64(buf []byte, offset int) uint64 {
	return binary.LittleEndian.Uint64(buf[offset : offset+8])
}

// ReadFloat64 decodes a little-endian f64 at offset. The caller guarantees
// offset+8 <= len(buf).
func ReadFloat64(buf []byte, offset int) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(buf[offset : offset+8]))
}
