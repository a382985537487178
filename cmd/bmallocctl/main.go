// Command bmallocctl exercises the bmalloc allocators from the command
// line: one-shot allocate/release walkthroughs, a randomized benchmark,
// and a scripted dump of the bitmap allocator's internal state.
package main

func main() {
	execute()
}
