package alloc

import (
	"encoding/binary"
	"unsafe"

	"github.com/thoughtful-pet/bmalloc/internal/wordwidth"
)

// Page header layout, little-endian throughout (internal/format/encoding.go
// in the example pack documents why: encoding/binary benchmarks as fast as
// an unsafe struct overlay and is far simpler to reason about).
//
//	0   next    8 bytes  Addr of next page in this page's current bucket
//	8   prev    8 bytes  Addr of previous page
//	16  bucket  4 bytes  index into the owning superblock's bucket array
//	20  _       4 bytes  padding, keeps bitmap word-aligned
//	24  bitmap  variable
const (
	pageOffNext   = 0
	pageOffPrev   = 8
	pageOffBucket = 16
	pageHeaderLen = 24
)

// bmPage is a view over one OS page used by the bitmap sub-allocator. It
// holds no state beyond layout constants shared by every page; the page's
// actual linked-list and bitmap data live in the mapped bytes themselves,
// recovered fresh from an address whenever needed (bm_page_from_addr in
// the original).
type bmPage struct {
	bytes []byte

	headerUnits uint32 // bm_page_header_size_in_units
	unitsPerPage uint32
	maxDataUnits uint32
}

func (p *bmPage) next() Addr        { return Addr(binary.LittleEndian.Uint64(p.bytes[pageOffNext:])) }
func (p *bmPage) prev() Addr        { return Addr(binary.LittleEndian.Uint64(p.bytes[pageOffPrev:])) }
func (p *bmPage) bucket() uint32    { return binary.LittleEndian.Uint32(p.bytes[pageOffBucket:]) }
func (p *bmPage) setNext(a Addr)    { binary.LittleEndian.PutUint64(p.bytes[pageOffNext:], uint64(a)) }
func (p *bmPage) setPrev(a Addr)    { binary.LittleEndian.PutUint64(p.bytes[pageOffPrev:], uint64(a)) }
func (p *bmPage) setBucket(b uint32) {
	binary.LittleEndian.PutUint32(p.bytes[pageOffBucket:], b)
}

func (p *bmPage) addr() Addr { return addrOf(p.bytes) }

// bitmapWords returns the page's bitmap as a []word slice suitable for the
// primitives in bitmap.go.
func (p *bmPage) bitmapWords() []word {
	return wordsOver(p.bytes[pageHeaderLen:])
}

// findFreeBlock searches for a run of at least blockSize free units,
// starting right after the header. It returns (0, false) if no run is long
// enough — the header always occupies the prefix, so offset 0 can never be
// a legitimate hit, matching the original's sentinel-return contract
// translated into an explicit ok flag.
func (p *bmPage) findFreeBlock(blockSize uint32) (offset uint32, ok bool) {
	bitmap := p.bitmapWords()
	offset = p.headerUnits
	for offset < p.unitsPerPage {
		length := countZeroBits(bitmap, offset, blockSize, p.unitsPerPage)
		if length >= blockSize {
			return offset, true
		}
		offset += length
		offset += countNonzeroBits(bitmap, offset, maxHint, p.unitsPerPage)
	}
	return 0, false
}

// findLongestFreeBlock returns the length of the longest run of free units
// on the page.
func (p *bmPage) findLongestFreeBlock() uint32 {
	bitmap := p.bitmapWords()
	offset := p.headerUnits
	n := p.maxDataUnits
	var lfb uint32
	for n > 0 {
		length := countZeroBits(bitmap, offset, n, p.unitsPerPage)
		if length > lfb {
			lfb = length
		}
		offset += length
		n -= min(length, n)

		length = countNonzeroBits(bitmap, offset, n, p.unitsPerPage)
		offset += length
		n -= min(length, n)
	}
	return lfb
}

// setUnits marks numUnits units starting at offset as occupied.
func (p *bmPage) setUnits(offset, numUnits uint32) {
	setBits(p.bitmapWords(), offset, numUnits)
}

// clearUnits marks numUnits units starting at offset as free.
func (p *bmPage) clearUnits(offset, numUnits uint32) {
	clearBits(p.bitmapWords(), offset, numUnits)
}

// unitsAllocated reports the length of the run of occupied units starting
// at offset. numUnits is a scan hint: the count can exceed it when the run
// continues past offset+numUnits. The allocator itself does not call it.
func (p *bmPage) unitsAllocated(offset, numUnits uint32) uint32 {
	return countNonzeroBits(p.bitmapWords(), offset, numUnits, p.unitsPerPage)
}

// ptrdiffToUnits converts a byte address within the page to a unit offset
// relative to the page's own base address.
func (p *bmPage) ptrdiffToUnits(addr Addr, unitSize uint32) uint32 {
	return uint32(uintptr(addr)-uintptr(p.addr())) / unitSize
}

// wordsOver reinterprets b as a []word slice. b's length must already be a
// multiple of the word size; bmPage sizes its bitmap region that way.
func wordsOver(b []byte) []word {
	if len(b) == 0 {
		return nil
	}
	n := len(b) / wordwidth.Size
	return unsafe.Slice((*word)(unsafe.Pointer(&b[0])), n)
}
