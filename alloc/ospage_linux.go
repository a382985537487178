//go:build linux

package alloc

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// remapPage resizes addr via mremap(2). Growing may move the mapping
// (MREMAP_MAYMOVE); shrinking never does, matching the "if shrinking, it
// must not move" contract. On shrink failure the old address is returned
// unchanged rather than propagating the error, since the mapping is still
// valid at its old, larger size.
func remapPage(addr Addr, oldNbytes, newNbytes uint32, clean bool) (Addr, error) {
	oldSize := alignToPage(oldNbytes)
	newSize := alignToPage(newNbytes)
	if newSize == oldSize {
		if clean && newNbytes > oldNbytes {
			cleanse(bytesAt(addr, newSize), oldNbytes, newNbytes)
		}
		return addr, nil
	}

	flags := 0
	if newSize > oldSize {
		flags = unix.MREMAP_MAYMOVE
	} else {
		clean = false // don't clean when shrinking
	}

	newAddrPtr, err := unix.Mremap(bytesAt(addr, oldSize), int(newSize), flags)
	if err != nil {
		if newSize > oldSize {
			return 0, fmt.Errorf("alloc: mremap grow: %w", err)
		}
		return addr, nil
	}
	newAddr := addrOf(newAddrPtr)

	if clean {
		cleanse(bytesAt(newAddr, newSize), oldNbytes, newNbytes)
	}
	return newAddr, nil
}
