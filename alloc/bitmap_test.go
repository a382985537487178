package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newBitmap(numWords int) []word {
	return make([]word, numWords)
}

func Test_SetBits_ClearBits_RoundTrip(t *testing.T) {
	bm := newBitmap(4)
	setBits(bm, 5, 37)
	require.Equal(t, uint32(37), countNonzeroBits(bm, 5, maxHint, wordBits*4))
	require.Equal(t, uint32(0), countNonzeroBits(bm, 42, maxHint, wordBits*4))

	clearBits(bm, 5, 37)
	for _, w := range bm {
		require.Zero(t, w)
	}
}

func Test_SetBits_SpansMultipleWords(t *testing.T) {
	bm := newBitmap(4)
	setBits(bm, 0, uint32(len(bm))*wordBits)
	for _, w := range bm {
		require.Equal(t, wordMax, w)
	}
}

func Test_CountZeroBits_StopsAtFirstSetBit(t *testing.T) {
	bm := newBitmap(2)
	setBits(bm, 3, 1) // single occupied bit at position 3
	n := countZeroBits(bm, 0, maxHint, wordBits*2)
	require.Equal(t, uint32(3), n)
}

func Test_CountNonzeroBits_Symmetric(t *testing.T) {
	bm := newBitmap(2)
	setBits(bm, 10, 20)
	require.Equal(t, uint32(10), countZeroBits(bm, 0, maxHint, wordBits*2))
	require.Equal(t, uint32(20), countNonzeroBits(bm, 10, maxHint, wordBits*2))
}

func Test_Cleanse(t *testing.T) {
	b := make([]byte, 64)
	for i := range b {
		b[i] = 0xAA
	}
	cleanse(b, 8, 32)
	for i, c := range b {
		if i >= 8 && i < 32 {
			require.Zero(t, c, "byte %d should be cleansed", i)
		} else {
			require.Equal(t, byte(0xAA), c, "byte %d should be untouched", i)
		}
	}
}
