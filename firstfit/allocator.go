package firstfit

import (
	"context"
	"fmt"

	cerrors "github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/arsenal/memsim"
	"github.com/vkngwrapper/arsenal/memsim/blocklist"
	"golang.org/x/exp/slog"
)

// InvalidAddress is returned from Malloc when no free block can hold the requested length
const InvalidAddress int = -1

// Allocator simulates malloc and free over an abstract address space of fixed size. It tracks two
// lists: free blocks, and blocks that are currently allocated. Between calls, every address in the
// space is covered by exactly one block from one of the two lists.
//
// Allocation is first-fit: the free list is scanned in list order, which is not necessarily address
// order, and the first free block that is large enough is used. Allocator is not safe for concurrent use.
type Allocator struct {
	logger  *slog.Logger
	maxSize int

	sumFreeSize   int
	freeList      blocklist.List
	allocatedList blocklist.List
	// base address -> number of allocated blocks starting there
	allocatedAt *swiss.Map[int, int]
}

var _ memsim.Validatable = &Allocator{}

// Malloc allocates length addresses from the first free block that can hold them and returns the
// base address of the new allocation. The allocation is taken from the front of the free block; the
// rest of the free block stays in the free list in the same position. If the free block is used up
// entirely, it is removed from the free list.
//
// InvalidAddress is returned if no free block is large enough or length is not positive. Malloc
// does not defragment on failure: call Defrag and retry.
func (a *Allocator) Malloc(length int) int {
	if length <= 0 {
		a.logger.Debug("Allocator::Malloc rejected non-positive length", slog.Int("Length", length))
		return InvalidAddress
	}

	for it := a.freeList.Iterator(); it.HasNext(); {
		node := it.Next()
		if node.Block.Length < length {
			continue
		}

		allocated := blocklist.MemoryBlock{BaseAddress: node.Block.BaseAddress, Length: length}
		a.allocatedList.InsertLast(allocated)
		a.trackAllocation(allocated.BaseAddress)
		a.sumFreeSize -= length

		if node.Block.Length == length {
			err := a.freeList.RemoveNode(node)
			if err != nil {
				panic(fmt.Sprintf("failed to remove exhausted free block with unexpected error: %+v", err))
			}
		} else {
			node.Block.BaseAddress += length
			node.Block.Length -= length
		}

		a.logger.LogAttrs(context.Background(), slog.LevelDebug, "Allocator::Malloc",
			slog.Int("Length", length),
			slog.Int("BaseAddress", allocated.BaseAddress),
		)
		memsim.DebugValidate(a)

		return allocated.BaseAddress
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "Allocator::Malloc found no free block",
		slog.Int("Length", length),
		slog.Int("FreeSize", a.sumFreeSize),
		slog.Int("FreeRegions", a.freeList.Size()),
	)
	return InvalidAddress
}

// Free returns every allocated block whose base address is address to the end of the free list.
// More than one allocated block may share a base address, in which case all of them are freed.
// Freeing an address that no allocated block starts at does nothing. Free never merges free blocks;
// call Defrag for that.
//
// ErrEmptyList is returned if there are no allocated blocks at all, whatever the address.
func (a *Allocator) Free(address int) error {
	if a.allocatedList.Size() == 0 {
		return cerrors.Wrapf(memsim.ErrEmptyList, "attempted to free address %d", address)
	}

	if !a.IsAllocated(address) {
		a.logger.Debug("Allocator::Free found no allocation", slog.Int("BaseAddress", address))
		return nil
	}

	var matches []*blocklist.Node
	for it := a.allocatedList.Iterator(); it.HasNext(); {
		node := it.Next()
		if node.Block.BaseAddress == address {
			matches = append(matches, node)
		}
	}

	for _, node := range matches {
		a.freeList.InsertLast(node.Block)
		err := a.allocatedList.RemoveNode(node)
		if err != nil {
			return err
		}

		a.untrackAllocation(address)
		a.sumFreeSize += node.Block.Length

		a.logger.LogAttrs(context.Background(), slog.LevelDebug, "Allocator::Free",
			slog.Int("BaseAddress", node.Block.BaseAddress),
			slog.Int("Length", node.Block.Length),
		)
	}

	memsim.DebugValidate(a)
	return nil
}

// IsAllocated returns true if at least one allocated block starts at address
func (a *Allocator) IsAllocated(address int) bool {
	_, ok := a.allocatedAt.Get(address)
	return ok
}

func (a *Allocator) trackAllocation(address int) {
	count, _ := a.allocatedAt.Get(address)
	a.allocatedAt.Put(address, count+1)
}

func (a *Allocator) untrackAllocation(address int) {
	count, ok := a.allocatedAt.Get(address)
	if !ok {
		return
	}

	if count <= 1 {
		a.allocatedAt.Delete(address)
		return
	}
	a.allocatedAt.Put(address, count-1)
}

// String renders the free list, a newline, and then the allocated list
func (a *Allocator) String() string {
	return a.freeList.String() + "\n" + a.allocatedList.String()
}
