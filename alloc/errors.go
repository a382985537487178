package alloc

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrOutOfMemory indicates mmap/mremap failed or no page could be grabbed.
	// It is always recoverable: callers get a false/empty return, never a panic.
	ErrOutOfMemory = errors.New("alloc: out of memory")

	// ErrInvalidArgument indicates a caller-supplied size or address could not
	// have produced the allocator's own internal state (e.g. a zero nbytes on
	// release, or an address that does not belong to this allocator).
	ErrInvalidArgument = errors.New("alloc: invalid argument")

	// ErrCorruption indicates the debug allocator found a damaged red zone.
	ErrCorruption = errors.New("alloc: corrupted red zone")
)

// fatal reports msg to the logger and stderr, then terminates the process.
// It is reserved for InvalidArgument and InternalInvariant conditions that
// the bitmap allocator's own contract says can never legitimately happen,
// and for red-zone Corruption found by the debug allocator; OutOfMemory is
// never fatal and must be returned instead.
func fatal(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	L.Error(msg)
	fmt.Fprintln(os.Stderr, "bmalloc: fatal: "+msg)
	os.Exit(2)
}
