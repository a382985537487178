package alloc

import "golang.org/x/sys/unix"

// PageSize is the OS page size, queried once at package init. All mapping
// sizes are rounded up to a multiple of it.
var PageSize = uint32(unix.Getpagesize())

// alignToPage rounds n up to the next multiple of PageSize.
func alignToPage(n uint32) uint32 {
	return alignUnsigned(n, PageSize)
}

// alignUnsigned rounds n up to the next multiple of alignment, which must
// be zero or a power of two.
func alignUnsigned(n, alignment uint32) uint32 {
	if alignment > 1 {
		alignment--
		return (n + alignment) &^ alignment
	}
	return n
}

// pages is the process-wide OS page source. Replaced in tests that need to
// inject failures without actually exhausting address space.
var pages Pages = osPages{}

// Pages maps, unmaps and resizes anonymous memory in page-sized units. It
// is the Go analog of the original's call_mmap/call_munmap/call_mremap
// trio, split out behind an interface so the bitmap allocator's tests can
// substitute a fake implementation.
type Pages interface {
	// Map allocates size bytes, rounded up to a page multiple, and returns
	// a byte slice view over it. If clean is true the memory is zeroed
	// (freshly mmap'd pages already are, so this only matters after a
	// reuse path sets clean, which today none do — Map always returns
	// fresh memory).
	Map(size uint32, clean bool) ([]byte, error)

	// Unmap releases a mapping previously returned by Map or Remap. size
	// must be the size that was passed to the call that produced addr
	// (rounded up to a page multiple internally).
	Unmap(addr Addr, size uint32) error

	// Remap resizes the mapping at addr from oldSize to newSize, both in
	// unaligned bytes. Shrinking never moves the mapping. Growing may. If
	// clean is true, bytes beyond oldSize are zeroed after the call.
	Remap(addr Addr, oldSize, newSize uint32, clean bool) (Addr, error)
}
