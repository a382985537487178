package alloc

import (
	"fmt"
	"io"
)

// dumpBmPage writes one page's header and bitmap to w, the Go analog of
// dump_bm_page.
func dumpBmPage(w io.Writer, p *bmPage) {
	fmt.Fprintf(w, "Page %#x: next=%#x prev=%#x bucket=%d\n", p.addr(), p.next(), p.prev(), p.bucket())
	dumpBitmap(w, p.bytes[pageHeaderLen:pageHeaderLen+p.unitsPerPage/8])
}

// dumpBitmap renders a bitmap region as one character per bit: '#' for an
// occupied unit, '.' for a free one, wrapped at 64 columns.
func dumpBitmap(w io.Writer, bitmap []byte) {
	const cols = 64
	for i, b := range bitmap {
		for bit := 0; bit < 8; bit++ {
			if b&(1<<bit) != 0 {
				fmt.Fprint(w, "#")
			} else {
				fmt.Fprint(w, ".")
			}
			n := i*8 + bit + 1
			if n%cols == 0 {
				fmt.Fprintln(w)
			}
		}
	}
	fmt.Fprintln(w)
}

// dumpHex renders b as a conventional hex-and-ASCII dump, 16 bytes per
// line, the Go analog of dump_hex.
func dumpHex(w io.Writer, b []byte) {
	for off := 0; off < len(b); off += 16 {
		end := min(off+16, len(b))
		line := b[off:end]

		fmt.Fprintf(w, "%08x  ", off)
		for i := 0; i < 16; i++ {
			if i < len(line) {
				fmt.Fprintf(w, "%02x ", line[i])
			} else {
				fmt.Fprint(w, "   ")
			}
			if i == 7 {
				fmt.Fprint(w, " ")
			}
		}
		fmt.Fprint(w, " |")
		for _, c := range line {
			if c >= 0x20 && c < 0x7f {
				fmt.Fprintf(w, "%c", c)
			} else {
				fmt.Fprint(w, ".")
			}
		}
		fmt.Fprintln(w, "|")
	}
}

// dumpHexSimple renders b as bare hex bytes with no offset column or ASCII
// gutter, the Go analog of dump_hex_simple used by the debug allocator's
// corruption report.
func dumpHexSimple(w io.Writer, b []byte) {
	for i, c := range b {
		if i > 0 && i%16 == 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%02x ", c)
	}
	fmt.Fprintln(w)
}
