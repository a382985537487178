package wordwidth

import "math/bits"

func trailingZeros64(w uint64) int {
	return bits.TrailingZeros64(w)
}

func trailingZeros32(w uint32) int {
	return bits.TrailingZeros32(w)
}
