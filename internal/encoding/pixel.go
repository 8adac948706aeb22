package encoding

import (
	"math"
)

// Unit16 scales v in [0,1] onto 0..65535, values outside are clamped
func Unit16(v float64) uint16 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 1 {
		return math.MaxUint16
	}
	return uint16(math.Round(v * math.MaxUint16))
}

// FromUnit16 is the inverse of Unit16 (to within 1/65535)
func FromUnit16(u uint16) float64 {
	return float64(u) / math.MaxUint16
}

// Split16 uint16 to two uint8 (high, low)
func Split16(in uint16) (uint8, uint8) {
	return uint8(in >> 8), uint8(in)
}

// Merge8 two uint8 (high, low) to uint16
func Merge8(hi, lo uint8) uint16 {
	return (uint16(hi) << 8) | uint16(lo)
}

// FromBytes8 turns a 1 byte bitmap back into a uint8, extra bytes are ignored
func FromBytes8(data []byte) uint8 {
	if len(data) == 0 {
		return 0
	}
	return data[0]
}

// ToBytes8 turns a uint8 into a fresh []byte of len 1
func ToBytes8(in uint8) []byte {
	return []byte{in}
}
