// Package alloc provides a page-bitmap sub-allocator for fixed-size units
// of memory, plus two adaptors sharing the same Allocator interface for
// comparison and debugging.
//
// # Overview
//
// BitmapAllocator carves small allocations out of shared OS pages: each
// page carries its own bitmap (one bit per UNIT_SIZE-byte unit) and is
// filed into a superblock bucket keyed by its longest free run of units,
// so finding a page with enough room is an O(1) bucket lookup followed by
// an O(page) bitmap scan. Requests too large to fit the bitmap scheme are
// mapped directly with the OS page source; the two paths are told apart
// purely by address alignment, since a bitmap-carved block's address is
// never page-aligned (the page header occupies the prefix) while a
// directly-mapped block's always is.
//
// # Implementations
//
// BitmapAllocator: the production allocator described above.
//
// StdlibAllocator: backs Allocate/Release with Go's own runtime
// allocator, useful as a baseline to benchmark BitmapAllocator against.
//
// DebugAllocator: wraps any Allocator and surrounds every block with
// sentinel-filled red zones, fataling on the first corrupted byte found at
// Release time.
//
// # Usage
//
//	a, err := alloc.NewBitmapAllocator(alloc.DefaultConfig)
//	if err != nil {
//	    return err
//	}
//	alloc.Init(a)
//
//	addr, ok := alloc.Allocate(128, true)
//	if !ok {
//	    return alloc.ErrOutOfMemory
//	}
//	defer alloc.Release(&addr, 128)
//
// # Caller-Supplied Sizes
//
// Reallocate and Release take the block's current size from the caller;
// no implementation here stores it. This is more error-prone than a
// self-describing allocation but lets BitmapAllocator avoid a per-block
// size header. Block, a thin Addr+Size pair, exists for callers that would
// rather not track sizes by hand across two call sites.
//
// # Thread Safety
//
// BitmapAllocator's superblock is safe for concurrent use: a single mutex
// guards bucket attach/detach, and once a page has been detached its
// bitmap can be mutated without holding any lock because only the
// detaching caller can see it. StdlibAllocator and DebugAllocator guard
// their own bookkeeping maps with a mutex as well.
package alloc
