package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/thoughtful-pet/bmalloc/alloc"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Allocate a scripted sequence of blocks and dump the allocator's state",
	RunE:  runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	a, err := alloc.NewBitmapAllocator(alloc.Config{UnitSize: 16, Verbose: verbose})
	if err != nil {
		return err
	}
	defer a.Close()

	sizes := []uint32{16, 64, 200, 1024, 4096, 32}
	var addrs []alloc.Addr
	for _, s := range sizes {
		addr, ok := a.Allocate(s, false)
		if !ok {
			printError("allocate(%d) failed\n", s)
			continue
		}
		addrs = append(addrs, addr)
	}

	a.Dump(os.Stdout)

	for i, addr := range addrs {
		a.Release(&addr, sizes[i])
	}
	return nil
}
