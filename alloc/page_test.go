//go:build unix

package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestPage(t *testing.T) *bmPage {
	t.Helper()
	unitsPerPage := PageSize / unitSizeDefault
	bitmapBytes := unitsPerPage / 8
	headerUnits := (pageHeaderLen + bitmapBytes + unitSizeDefault - 1) / unitSizeDefault
	maxDataUnits := unitsPerPage - headerUnits

	b, err := pages.Map(PageSize, true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pages.Unmap(addrOf(b), PageSize) })

	return &bmPage{
		bytes:        b,
		headerUnits:  headerUnits,
		unitsPerPage: unitsPerPage,
		maxDataUnits: maxDataUnits,
	}
}

func Test_BmPage_FindFreeBlock_SkipsHeader(t *testing.T) {
	p := newTestPage(t)
	p.setUnits(0, p.headerUnits)

	offset, ok := p.findFreeBlock(4)
	require.True(t, ok)
	require.Equal(t, p.headerUnits, offset)
	require.NotZero(t, offset, "offset can never legitimately be zero")
}

func Test_BmPage_FindFreeBlock_NoneFound(t *testing.T) {
	p := newTestPage(t)
	p.setUnits(0, p.unitsPerPage)

	_, ok := p.findFreeBlock(1)
	require.False(t, ok)
}

func Test_BmPage_FindLongestFreeBlock(t *testing.T) {
	p := newTestPage(t)
	p.setUnits(0, p.headerUnits)
	p.setUnits(p.headerUnits, 10)
	// a gap of 5, then another allocated run
	p.setUnits(p.headerUnits+15, 3)

	lfb := p.findLongestFreeBlock()
	require.Equal(t, p.maxDataUnits-10-5-3, lfb)
}

func Test_BmPage_SetClear_UnitsAllocated(t *testing.T) {
	p := newTestPage(t)
	p.setUnits(p.headerUnits, 8)
	require.Equal(t, uint32(8), p.unitsAllocated(p.headerUnits, 8))

	p.clearUnits(p.headerUnits, 8)
	require.Zero(t, p.unitsAllocated(p.headerUnits, 8))
}

func Test_BmPage_HeaderFields_RoundTrip(t *testing.T) {
	p := newTestPage(t)
	p.setNext(Addr(0x1000))
	p.setPrev(Addr(0x2000))
	p.setBucket(42)

	require.Equal(t, Addr(0x1000), p.next())
	require.Equal(t, Addr(0x2000), p.prev())
	require.Equal(t, uint32(42), p.bucket())
}

func Test_BmPage_PtrdiffToUnits(t *testing.T) {
	p := newTestPage(t)
	addr := Addr(uintptr(p.addr()) + uintptr(p.headerUnits)*unitSizeDefault)
	require.Equal(t, p.headerUnits, p.ptrdiffToUnits(addr, unitSizeDefault))
}
