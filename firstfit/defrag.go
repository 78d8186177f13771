package firstfit

import (
	"context"
	"fmt"

	"github.com/vkngwrapper/arsenal/memsim"
	"github.com/vkngwrapper/arsenal/memsim/blocklist"
	"golang.org/x/exp/slog"
)

// DefragmentationStats describes the effect of a single call to Defrag
type DefragmentationStats struct {
	// Merges is the number of free blocks that were absorbed into an earlier free block
	Merges int

	FreeRegionsBefore       int
	FreeRegionsAfter        int
	LargestFreeRegionBefore int
	LargestFreeRegionAfter  int
}

func (s DefragmentationStats) String() string {
	return fmt.Sprintf("merges=%d regions=%d->%d largest=%d->%d",
		s.Merges,
		s.FreeRegionsBefore, s.FreeRegionsAfter,
		s.LargestFreeRegionBefore, s.LargestFreeRegionAfter)
}

// Defrag merges free blocks that touch. The free list is walked from its head; each free block
// absorbs any free block later in the list that starts exactly where it ends, repeatedly, so chains
// of touching blocks collapse into the earliest of them.
//
// Merging only runs forward through the list. A free block that ends where an earlier free block
// starts is not merged into it, so the result depends on free list order and not only on
// addresses.
func (a *Allocator) Defrag() DefragmentationStats {
	stats := DefragmentationStats{
		FreeRegionsBefore:       a.freeList.Size(),
		LargestFreeRegionBefore: a.LargestFreeRegion(),
	}

	// Absorbed nodes are always later than node and are unlinked before we advance, so Next
	// only ever reaches live nodes
	for node := a.freeList.First(); node != nil; node = node.Next() {
		stats.Merges += a.absorbFollowing(node)
	}

	stats.FreeRegionsAfter = a.freeList.Size()
	stats.LargestFreeRegionAfter = a.LargestFreeRegion()

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "Allocator::Defrag",
		slog.Int("Merges", stats.Merges),
		slog.Int("FreeRegionsBefore", stats.FreeRegionsBefore),
		slog.Int("FreeRegionsAfter", stats.FreeRegionsAfter),
	)
	memsim.DebugValidate(a)

	return stats
}

func (a *Allocator) absorbFollowing(node *blocklist.Node) int {
	var merges int

	candidate := node.Next()
	for candidate != nil {
		if candidate.Block.BaseAddress != node.Block.End() {
			candidate = candidate.Next()
			continue
		}

		node.Block = blocklist.MemoryBlock{
			BaseAddress: node.Block.BaseAddress,
			Length:      node.Block.Length + candidate.Block.Length,
		}

		err := a.freeList.RemoveNode(candidate)
		if err != nil {
			panic(fmt.Sprintf("failed to remove merged free block with unexpected error: %+v", err))
		}
		merges++

		// The grown block may now touch a block we already passed
		candidate = node.Next()
	}

	return merges
}
