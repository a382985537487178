//go:build unix

package alloc

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// osPages backs Pages with anonymous mmap/munmap via golang.org/x/sys/unix.
// Unlike internal/mmfile's file-backed mapping, these mappings have no file
// descriptor: MAP_ANONYMOUS|MAP_PRIVATE over -1.
type osPages struct{}

func (osPages) Map(size uint32, clean bool) ([]byte, error) {
	size = alignToPage(size)
	b, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("alloc: mmap: %w", err)
	}
	if clean {
		cleanse(b, 0, uint32(len(b)))
	}
	return b, nil
}

func (osPages) Unmap(addr Addr, size uint32) error {
	size = alignToPage(size)
	b := bytesAt(addr, size)
	if err := unix.Munmap(b); err != nil {
		return fmt.Errorf("alloc: munmap(%#x, %d): %w", addr, size, err)
	}
	return nil
}

func (osPages) Remap(addr Addr, oldSize, newSize uint32, clean bool) (Addr, error) {
	return remapPage(addr, oldSize, newSize, clean)
}

// bytesAt recovers a []byte view over size bytes starting at a bare Addr.
// Valid because the memory is kernel-backed and was obtained from Map:
// the Go runtime never relocates or collects it between Map and the
// matching Unmap.
func bytesAt(addr Addr, size uint32) []byte {
	if addr == 0 || size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), size)
}

// addrOf returns the base address of a mapped byte slice as an Addr.
func addrOf(b []byte) Addr {
	if len(b) == 0 {
		return 0
	}
	return Addr(uintptr(unsafe.Pointer(&b[0])))
}
