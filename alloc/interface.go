package alloc

import (
	"io"
	"sync"
)

// Addr is a raw memory address outside the Go heap. Zero is the nil
// sentinel, exactly as a C void* of 0 would be: OS-mapped pages are never
// moved or scanned by the garbage collector, so holding one as a bare
// uintptr between calls is safe.
type Addr uintptr

// Allocator is the shared contract every allocation strategy in this
// package implements. Unlike a typical Go allocator, Release and
// Reallocate take the caller's own record of the block's current size:
// no implementation stores it internally. This is more error-prone than a
// self-describing allocation, but it is what lets the bitmap allocator
// avoid a per-block size header.
type Allocator interface {
	// Allocate returns a new block able to hold nbytes bytes. If clean is
	// true the block is zero-filled. ok is false on OutOfMemory; nbytes
	// must be nonzero.
	Allocate(nbytes uint32, clean bool) (addr Addr, ok bool)

	// Reallocate resizes the block at *addrPtr from oldNbytes to
	// newNbytes, growing or shrinking in place when possible and
	// allocating a replacement block otherwise. *addrPtr is updated to the
	// resulting address on success; changed reports whether the address
	// moved. On failure *addrPtr is left untouched and ok is false.
	Reallocate(addrPtr *Addr, oldNbytes, newNbytes uint32, clean bool) (changed bool, ok bool)

	// Release frees the block at *addrPtr, which must have been allocated
	// with size nbytes (after accounting for any Reallocate calls).
	// *addrPtr is set to 0 on return. nbytes must be nonzero.
	Release(addrPtr *Addr, nbytes uint32)

	// Dump writes a human-readable description of the allocator's internal
	// state to w, for interactive inspection only.
	Dump(w io.Writer)

	// Stats returns a snapshot of the allocator's bookkeeping counters.
	Stats() Stats
}

var (
	defaultMu  sync.RWMutex
	defaultAll Allocator
)

// Init installs a as the process-wide default allocator. It is the Go
// analog of init_allocator: there is exactly one default instance, held in
// an explicit package variable rather than a per-goroutine one, so every
// caller that uses the package-level Allocate/Reallocate/Release wrappers
// observes the same allocator.
func Init(a Allocator) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultAll = a
}

// Default returns the process-wide default allocator installed by Init, or
// nil if Init has not been called yet.
func Default() Allocator {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultAll
}

// Allocate forwards to the default allocator.
func Allocate(nbytes uint32, clean bool) (Addr, bool) {
	return Default().Allocate(nbytes, clean)
}

// Reallocate forwards to the default allocator.
func Reallocate(addrPtr *Addr, oldNbytes, newNbytes uint32, clean bool) (bool, bool) {
	return Default().Reallocate(addrPtr, oldNbytes, newNbytes, clean)
}

// Release forwards to the default allocator.
func Release(addrPtr *Addr, nbytes uint32) {
	Default().Release(addrPtr, nbytes)
}

// Block pairs an Addr with the size it was allocated for, so callers that
// don't want to thread sizes through two call sites by hand have somewhere
// to keep it. It carries no logic the Allocator interface doesn't already
// define; it is a bookkeeping convenience only.
type Block struct {
	Addr Addr
	Size uint32
}

// AllocBlock allocates nbytes via a and returns the resulting Block.
func AllocBlock(a Allocator, nbytes uint32, clean bool) (Block, bool) {
	addr, ok := a.Allocate(nbytes, clean)
	if !ok {
		return Block{}, false
	}
	return Block{Addr: addr, Size: nbytes}, true
}

// Realloc resizes b via a, updating b.Addr (which may move) and b.Size on
// success.
func (b *Block) Realloc(a Allocator, newSize uint32, clean bool) bool {
	_, ok := a.Reallocate(&b.Addr, b.Size, newSize, clean)
	if !ok {
		return false
	}
	b.Size = newSize
	return true
}

// Release frees b via a and zeroes it.
func (b *Block) Release(a Allocator) {
	a.Release(&b.Addr, b.Size)
	b.Size = 0
}
