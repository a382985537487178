package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/thoughtful-pet/bmalloc/alloc"
)

var allocClean bool

var allocCmd = &cobra.Command{
	Use:   "alloc <bytes>",
	Short: "Allocate and release a single block, reporting its address class",
	Args:  cobra.ExactArgs(1),
	RunE:  runAlloc,
}

func init() {
	allocCmd.Flags().BoolVar(&allocClean, "clean", false, "Zero-fill the block")
	rootCmd.AddCommand(allocCmd)
}

func runAlloc(cmd *cobra.Command, args []string) error {
	nbytes, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		printError("invalid byte count %q: %v\n", args[0], err)
		return err
	}

	a, err := alloc.NewBitmapAllocator(alloc.DefaultConfig)
	if err != nil {
		return err
	}
	defer a.Close()

	addr, ok := a.Allocate(uint32(nbytes), allocClean)
	if !ok {
		printError("allocate(%d) failed: out of memory\n", nbytes)
		return alloc.ErrOutOfMemory
	}

	class := "small (bitmap sub-allocator)"
	if uintptr(addr)%uintptr(alloc.PageSize) == 0 {
		class = "large (direct mapping)"
	}

	if jsonOut {
		err := printJSON(map[string]any{
			"addr":  addr,
			"bytes": nbytes,
			"class": class,
		})
		a.Release(&addr, uint32(nbytes))
		return err
	}
	printInfo("allocated %d bytes at %#x: %s\n", nbytes, addr, class)
	printVerbose("stats: %+v\n", a.Stats())

	a.Release(&addr, uint32(nbytes))
	printInfo("released\n")
	return nil
}
