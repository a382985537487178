//go:build unix && !linux

package alloc

import "fmt"

// remapPage emulates mremap on platforms without it (darwin, the BSDs):
// shrinking in place is a pure bitmap/pointer-arithmetic operation so it
// never needs to move anything; growing has to map fresh, copy, and unmap
// the old region, which can fail independently at each step.
func remapPage(addr Addr, oldNbytes, newNbytes uint32, clean bool) (Addr, error) {
	oldSize := alignToPage(oldNbytes)
	newSize := alignToPage(newNbytes)
	if newSize <= oldSize {
		if clean && newNbytes > oldNbytes {
			cleanse(bytesAt(addr, oldSize), oldNbytes, newNbytes)
		}
		return addr, nil
	}

	newBuf, err := pages.Map(newSize, false)
	if err != nil {
		return 0, fmt.Errorf("alloc: remap grow: %w", err)
	}
	copy(newBuf, bytesAt(addr, oldSize))
	if clean {
		cleanse(newBuf, oldNbytes, newNbytes)
	}
	if err := pages.Unmap(addr, oldSize); err != nil {
		return 0, fmt.Errorf("alloc: remap grow unmap old: %w", err)
	}
	return addrOf(newBuf), nil
}
