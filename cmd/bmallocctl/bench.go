package main

import (
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/thoughtful-pet/bmalloc/alloc"
)

var (
	benchOps     int
	benchMaxSize int
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run a randomized allocate/reallocate/release workload",
	RunE:  runBench,
}

func init() {
	benchCmd.Flags().IntVar(&benchOps, "ops", 100000, "Number of operations to run")
	benchCmd.Flags().IntVar(&benchMaxSize, "max-size", 8192, "Largest allocation size in bytes")
	rootCmd.AddCommand(benchCmd)
}

type liveBlock struct {
	addr alloc.Addr
	size uint32
}

func runBench(cmd *cobra.Command, args []string) error {
	a, err := alloc.NewBitmapAllocator(alloc.DefaultConfig)
	if err != nil {
		return err
	}
	defer a.Close()

	rng := rand.New(rand.NewSource(1))
	var live []liveBlock

	for i := 0; i < benchOps; i++ {
		switch {
		case len(live) > 0 && rng.Intn(3) == 0:
			idx := rng.Intn(len(live))
			b := live[idx]
			newSize := uint32(1 + rng.Intn(benchMaxSize))
			if _, ok := a.Reallocate(&b.addr, b.size, newSize, false); ok {
				live[idx] = liveBlock{b.addr, newSize}
			}
		case len(live) > 0 && rng.Intn(2) == 0:
			idx := rng.Intn(len(live))
			b := live[idx]
			a.Release(&b.addr, b.size)
			live[idx] = live[len(live)-1]
			live = live[:len(live)-1]
		default:
			size := uint32(1 + rng.Intn(benchMaxSize))
			if addr, ok := a.Allocate(size, false); ok {
				live = append(live, liveBlock{addr, size})
			}
		}
	}

	for _, b := range live {
		a.Release(&b.addr, b.size)
	}

	stats := a.Stats()
	if jsonOut {
		return printJSON(map[string]any{
			"ops":   benchOps,
			"stats": stats,
		})
	}
	printInfo("ran %d ops, final stats: %+v\n", benchOps, stats)
	return nil
}
