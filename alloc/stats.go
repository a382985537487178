package alloc

import "sync/atomic"

// Stats is a snapshot of an allocator's bookkeeping counters.
type Stats struct {
	BlocksAllocated int64
	BmPages         int64 // 0 for allocators with no bitmap sub-allocator
}

// stats holds the atomic counters a single Allocator instance maintains.
// Mirrors AllocatorStats.blocks_allocated plus the bitmap allocator's own
// num_bm_pages counter, both updated with atomic add/sub per spec.
type stats struct {
	blocksAllocated atomic.Int64
	bmPages         atomic.Int64
}

func (s *stats) snapshot() Stats {
	return Stats{
		BlocksAllocated: s.blocksAllocated.Load(),
		BmPages:         s.bmPages.Load(),
	}
}
