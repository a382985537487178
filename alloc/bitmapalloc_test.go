//go:build unix

package alloc

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestAllocator(t *testing.T) *BitmapAllocator {
	t.Helper()
	a, err := NewBitmapAllocator(DefaultConfig)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func Test_Allocate_ZeroBytes_Fails(t *testing.T) {
	a := newTestAllocator(t)
	_, ok := a.Allocate(0, false)
	require.False(t, ok)
}

func Test_Allocate_SmallBlock_IsNotPageAligned(t *testing.T) {
	a := newTestAllocator(t)
	addr, ok := a.Allocate(64, false)
	require.True(t, ok)
	require.NotZero(t, uintptr(addr)%uintptr(PageSize), "small block address must never be page-aligned")
	a.Release(&addr, 64)
}

func Test_Allocate_LargeBlock_IsPageAligned(t *testing.T) {
	a := newTestAllocator(t)
	big := a.maxDataUnits*unitSizeDefault + unitSizeDefault
	addr, ok := a.Allocate(big, false)
	require.True(t, ok)
	require.Zero(t, uintptr(addr)%uintptr(PageSize))
	a.Release(&addr, big)
}

func Test_Allocate_Clean_ZeroesMemory(t *testing.T) {
	a := newTestAllocator(t)
	addr, ok := a.Allocate(256, false)
	require.True(t, ok)
	copy(bytesAt(addr, 256), bytes.Repeat([]byte{0xAA}, 256))
	a.Release(&addr, 256)

	addr2, ok := a.Allocate(256, true)
	require.True(t, ok)
	for _, b := range bytesAt(addr2, 256) {
		require.Zero(t, b)
	}
	a.Release(&addr2, 256)
}

func Test_Release_ZeroAddr_IsNoop(t *testing.T) {
	a := newTestAllocator(t)
	var addr Addr
	a.Release(&addr, 64) // must not panic
}

func Test_Stats_TracksOutstandingBlocks(t *testing.T) {
	a := newTestAllocator(t)
	addr1, _ := a.Allocate(64, false)
	addr2, _ := a.Allocate(128, false)
	require.EqualValues(t, 2, a.Stats().BlocksAllocated)

	a.Release(&addr1, 64)
	require.EqualValues(t, 1, a.Stats().BlocksAllocated)
	a.Release(&addr2, 128)
	require.EqualValues(t, 0, a.Stats().BlocksAllocated)
}

func Test_Reallocate_SameUnitClass_KeepsAddress(t *testing.T) {
	a := newTestAllocator(t)
	addr, _ := a.Allocate(10, false)
	orig := addr
	changed, ok := a.Reallocate(&addr, 10, 15, false)
	require.True(t, ok)
	require.False(t, changed)
	require.Equal(t, orig, addr)
	a.Release(&addr, 15)
}

func Test_Reallocate_Grow_PreservesContent(t *testing.T) {
	a := newTestAllocator(t)
	addr, _ := a.Allocate(32, false)
	copy(bytesAt(addr, 32), []byte("hello, world, this is a block!!!"))

	_, ok := a.Reallocate(&addr, 32, 2048, false)
	require.True(t, ok)
	require.Equal(t, "hello, world, this is a block!!!", string(bytesAt(addr, 32)))
	a.Release(&addr, 2048)
}

func Test_Reallocate_Shrink_PreservesContent(t *testing.T) {
	a := newTestAllocator(t)
	addr, _ := a.Allocate(4096, false)
	copy(bytesAt(addr, 5), []byte("hello"))

	_, ok := a.Reallocate(&addr, 4096, 16, false)
	require.True(t, ok)
	require.Equal(t, "hello", string(bytesAt(addr, 5)))
	a.Release(&addr, 16)
}

func Test_Reallocate_FromNil_Allocates(t *testing.T) {
	a := newTestAllocator(t)
	var addr Addr
	changed, ok := a.Reallocate(&addr, 0, 64, false)
	require.True(t, ok)
	require.True(t, changed)
	require.NotZero(t, addr)
	a.Release(&addr, 64)
}

func Test_NoLeaks_RandomizedAllocFreeSequence(t *testing.T) {
	a := newTestAllocator(t)
	rng := rand.New(rand.NewSource(1))

	type live struct {
		addr Addr
		size uint32
	}
	var blocks []live

	for i := 0; i < 2000; i++ {
		if len(blocks) > 0 && rng.Intn(2) == 0 {
			idx := rng.Intn(len(blocks))
			b := blocks[idx]
			a.Release(&b.addr, b.size)
			blocks[idx] = blocks[len(blocks)-1]
			blocks = blocks[:len(blocks)-1]
			continue
		}
		size := uint32(1 + rng.Intn(8192))
		addr, ok := a.Allocate(size, false)
		if ok {
			blocks = append(blocks, live{addr, size})
		}
	}
	for _, b := range blocks {
		a.Release(&b.addr, b.size)
	}
	require.Zero(t, a.Stats().BlocksAllocated)
	require.Zero(t, a.Stats().BmPages, "every bitmap page should have been returned to the OS")
}

func Test_Dump_DoesNotPanic(t *testing.T) {
	a := newTestAllocator(t)
	addr, _ := a.Allocate(64, false)
	var buf bytes.Buffer
	a.Dump(&buf)
	require.Contains(t, buf.String(), "Bitmap allocator")
	a.Release(&addr, 64)
}
