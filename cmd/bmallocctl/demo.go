package main

import (
	"github.com/spf13/cobra"

	"github.com/thoughtful-pet/bmalloc/alloc"
)

var stdlibDemoCmd = &cobra.Command{
	Use:   "stdlib-demo",
	Short: "Allocate and release a block via the stdlib adaptor",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := alloc.NewStdlibAllocator()
		addr, ok := a.Allocate(128, true)
		if !ok {
			printError("allocate failed\n")
			return alloc.ErrOutOfMemory
		}
		printInfo("allocated %#x via stdlib adaptor\n", addr)
		a.Release(&addr, 128)
		printInfo("released\n")
		return nil
	},
}

var debugCorrupt bool

var debugDemoCmd = &cobra.Command{
	Use:   "debug-demo",
	Short: "Allocate and release a block via the debug adaptor, optionally corrupting a red zone",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := alloc.NewDebugAllocator(alloc.NewStdlibAllocator())
		addr, ok := a.Allocate(64, true)
		if !ok {
			printError("allocate failed\n")
			return alloc.ErrOutOfMemory
		}
		printInfo("allocated %#x via debug adaptor\n", addr)

		if debugCorrupt {
			printInfo("corrupting the lower red zone; release is expected to fatal\n")
			a.PokeRedZone(addr)
		}

		a.Release(&addr, 64)
		printInfo("released cleanly\n")
		return nil
	},
}

func init() {
	debugDemoCmd.Flags().BoolVar(&debugCorrupt, "corrupt", false, "Write a stray byte into the lower red zone before releasing")
	rootCmd.AddCommand(stdlibDemoCmd)
	rootCmd.AddCommand(debugDemoCmd)
}
