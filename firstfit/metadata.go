package firstfit

import (
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/arsenal/memsim"
	"github.com/vkngwrapper/arsenal/memsim/blocklist"
	"golang.org/x/exp/slices"
)

// Size returns the number of addresses in the simulated address space
func (a *Allocator) Size() int { return a.maxSize }

// SumFreeSize returns the number of addresses covered by free blocks
func (a *Allocator) SumFreeSize() int { return a.sumFreeSize }

// AllocationCount returns the number of allocated blocks
func (a *Allocator) AllocationCount() int { return a.allocatedList.Size() }

// FreeRegionsCount returns the number of blocks in the free list. Touching free blocks are counted
// separately until Defrag merges them.
func (a *Allocator) FreeRegionsCount() int { return a.freeList.Size() }

// IsEmpty will return true if nothing is allocated
func (a *Allocator) IsEmpty() bool { return a.allocatedList.Size() == 0 }

// LargestFreeRegion returns the length of the largest free block, or 0 if there are none. This is
// the largest length that Malloc can currently satisfy.
func (a *Allocator) LargestFreeRegion() int {
	largest := 0
	for it := a.freeList.Iterator(); it.HasNext(); {
		if length := it.Next().Block.Length; length > largest {
			largest = length
		}
	}
	return largest
}

// VisitAllRegions calls the provided callback once for each free block, in free list order, and then
// once for each allocated block, in allocation order. Visiting stops at the first error, which is returned.
func (a *Allocator) VisitAllRegions(handleBlock func(block blocklist.MemoryBlock, free bool) error) error {
	err := a.freeList.VisitAll(func(index int, node *blocklist.Node) error {
		return handleBlock(node.Block, true)
	})
	if err != nil {
		return err
	}

	return a.allocatedList.VisitAll(func(index int, node *blocklist.Node) error {
		return handleBlock(node.Block, false)
	})
}

// AddStatistics sums this allocator's statistics into the provided memsim.Statistics object
func (a *Allocator) AddStatistics(stats *memsim.Statistics) {
	stats.SpaceCount++
	stats.AllocationCount += a.allocatedList.Size()
	stats.SpaceSize += a.maxSize
	stats.AllocatedSize += a.maxSize - a.sumFreeSize
}

// AddDetailedStatistics sums this allocator's statistics into the provided memsim.DetailedStatistics object
func (a *Allocator) AddDetailedStatistics(stats *memsim.DetailedStatistics) {
	stats.SpaceCount++
	stats.SpaceSize += a.maxSize

	_ = a.VisitAllRegions(func(block blocklist.MemoryBlock, free bool) error {
		if free {
			stats.AddFreeRegion(block.Length)
		} else {
			stats.AddAllocation(block.Length)
		}
		return nil
	})
}

// Validate performs consistency checks on both lists and verifies that, together, the free and
// allocated blocks cover the entire address space with no gaps or overlaps. It is not cheap and
// is intended for tests and diagnostics.
func (a *Allocator) Validate() error {
	err := a.freeList.Validate()
	if err != nil {
		return errors.Wrap(err, "free list")
	}

	err = a.allocatedList.Validate()
	if err != nil {
		return errors.Wrap(err, "allocated list")
	}

	regionCount := a.freeList.Size() + a.allocatedList.Size()
	lengths := swiss.NewMap[int, int](uint32(regionCount))
	bases := make([]int, 0, regionCount)
	allocatedCounts := make(map[int]int)
	var freeSize int

	err = a.VisitAllRegions(func(block blocklist.MemoryBlock, free bool) error {
		if block.BaseAddress < 0 {
			return errors.Newf("block %s starts before address 0", block)
		}

		if _, exists := lengths.Get(block.BaseAddress); exists {
			return errors.Newf("more than one block starts at address %d", block.BaseAddress)
		}
		lengths.Put(block.BaseAddress, block.Length)
		bases = append(bases, block.BaseAddress)

		if free {
			freeSize += block.Length
		} else {
			allocatedCounts[block.BaseAddress]++
		}
		return nil
	})
	if err != nil {
		return err
	}

	slices.Sort(bases)

	nextAddress := 0
	for _, base := range bases {
		if base > nextAddress {
			return errors.Newf("addresses [%d, %d) are not covered by any block", nextAddress, base)
		} else if base < nextAddress {
			return errors.Newf("block starting at address %d overlaps the previous block, which ends at %d", base, nextAddress)
		}

		length, _ := lengths.Get(base)
		nextAddress = memsim.EndAddress(base, length)
	}

	if nextAddress != a.maxSize {
		return errors.Errorf("blocks cover addresses up to %d, but the address space has size %d", nextAddress, a.maxSize)
	}

	if freeSize != a.sumFreeSize {
		return errors.Errorf("the free size of the allocator is %d, but the free blocks add up to %d", a.sumFreeSize, freeSize)
	}

	if a.allocatedAt.Count() != len(allocatedCounts) {
		return errors.Errorf("the allocation index holds %d addresses, but allocated blocks start at %d addresses", a.allocatedAt.Count(), len(allocatedCounts))
	}

	for base, count := range allocatedCounts {
		indexed, _ := a.allocatedAt.Get(base)
		if indexed != count {
			return errors.Errorf("the allocation index holds %d blocks at address %d, but the allocated list holds %d", indexed, base, count)
		}
	}

	return nil
}

// PrintDetailedMap writes a json object describing the address space and every block in it
func (a *Allocator) PrintDetailedMap(writer *jwriter.Writer) {
	obj := writer.Object()
	defer obj.End()

	obj.Name("TotalSize").Int(a.maxSize)
	obj.Name("FreeSize").Int(a.sumFreeSize)
	obj.Name("Allocations").Int(a.allocatedList.Size())
	obj.Name("FreeRegions").Int(a.freeList.Size())
	obj.Name("LargestFreeRegion").Int(a.LargestFreeRegion())

	freeBlocks := obj.Name("FreeBlocks").Array()
	a.freeList.WriteJson(&freeBlocks)
	freeBlocks.End()

	allocatedBlocks := obj.Name("AllocatedBlocks").Array()
	a.allocatedList.WriteJson(&allocatedBlocks)
	allocatedBlocks.End()
}
