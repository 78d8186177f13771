package firstfit_test

import (
	"bytes"
	"testing"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/arsenal/memsim/blocklist"
	"github.com/vkngwrapper/arsenal/memsim/firstfit"
	"golang.org/x/exp/slog"
)

func TestPrintDetailedMap(t *testing.T) {
	allocator := newAllocator(t, 100)
	require.Equal(t, 0, allocator.Malloc(25))
	require.Equal(t, 25, allocator.Malloc(25))
	require.NoError(t, allocator.Free(0))

	writer := jwriter.NewWriter()
	allocator.PrintDetailedMap(&writer)
	require.NoError(t, writer.Error())

	require.JSONEq(t, `{
		"TotalSize": 100,
		"FreeSize": 75,
		"Allocations": 1,
		"FreeRegions": 2,
		"LargestFreeRegion": 50,
		"FreeBlocks": [
			{"BaseAddress": 50, "Length": 50},
			{"BaseAddress": 0, "Length": 25}
		],
		"AllocatedBlocks": [
			{"BaseAddress": 25, "Length": 25}
		]
	}`, string(writer.Bytes()))
}

func TestVisitAllRegionsOrder(t *testing.T) {
	allocator := newAllocator(t, 30)
	require.Equal(t, 0, allocator.Malloc(10))
	require.Equal(t, 10, allocator.Malloc(10))
	require.NoError(t, allocator.Free(0))

	var visited []string
	err := allocator.VisitAllRegions(func(block blocklist.MemoryBlock, free bool) error {
		if free {
			visited = append(visited, "free"+block.String())
		} else {
			visited = append(visited, "alloc"+block.String())
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"free(20 , 10)", "free(0 , 10)", "alloc(10 , 10)"}, visited)
}

func TestLogging(t *testing.T) {
	var buffer bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buffer, &slog.HandlerOptions{Level: slog.LevelDebug}))

	allocator, err := firstfit.New(logger, firstfit.CreateOptions{MaxSize: 10})
	require.NoError(t, err)

	require.Equal(t, 0, allocator.Malloc(4))
	require.Equal(t, firstfit.InvalidAddress, allocator.Malloc(40))
	require.NoError(t, allocator.Free(0))
	allocator.Defrag()

	output := buffer.String()
	require.Contains(t, output, "Allocator::New")
	require.Contains(t, output, "Allocator::Malloc")
	require.Contains(t, output, "Allocator::Malloc found no free block")
	require.Contains(t, output, "Allocator::Free")
	require.Contains(t, output, "Allocator::Defrag")
	require.Contains(t, output, "BaseAddress=0")
}
