// Package wordwidth selects the machine word used by the bitmap allocator's
// bit-scanning primitives. Word is uint64 by default; build with the
// bmalloc_word32 tag to force uint32, matching 32-bit targets where a
// 64-bit word would straddle unaligned loads.
package wordwidth

// Size is the width of Word in bytes.
const Size = wordSize

// Bits is the width of Word in bits.
const Bits = Size * 8

// Max is the all-ones value of Word.
const Max = Word(^Word(0))
