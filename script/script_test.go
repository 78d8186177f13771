package script_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/arsenal/memsim"
	"github.com/vkngwrapper/arsenal/memsim/firstfit"
	"github.com/vkngwrapper/arsenal/memsim/script"
)

func TestParse(t *testing.T) {
	commands, err := script.Parse(strings.NewReader(`
# set up two blocks
malloc 10
MALLOC 5

free 0
defrag
dump
stats
validate
`))
	require.NoError(t, err)
	require.Equal(t, []script.Command{
		{Operation: script.OperationMalloc, Argument: 10, Line: 3},
		{Operation: script.OperationMalloc, Argument: 5, Line: 4},
		{Operation: script.OperationFree, Argument: 0, Line: 6},
		{Operation: script.OperationDefrag, Line: 7},
		{Operation: script.OperationDump, Line: 8},
		{Operation: script.OperationStats, Line: 9},
		{Operation: script.OperationValidate, Line: 10},
	}, commands)
	require.Equal(t, "malloc 10", commands[0].String())
	require.Equal(t, "defrag", commands[3].String())
}

func TestParseErrors(t *testing.T) {
	for _, source := range []string{
		"allocate 10",
		"malloc",
		"malloc ten",
		"free 1 2",
		"defrag now",
	} {
		_, err := script.Parse(strings.NewReader(source))
		require.True(t, errors.Is(err, script.ErrBadCommand), source)
		require.Contains(t, err.Error(), "line 1", source)
	}
}

func TestRun(t *testing.T) {
	commands, err := script.Parse(strings.NewReader(`
malloc 10
malloc 5
free 0
free 10
defrag
malloc 20
malloc 15
dump
stats
validate
`))
	require.NoError(t, err)

	allocator, err := firstfit.New(nil, firstfit.CreateOptions{MaxSize: 15})
	require.NoError(t, err)

	var out bytes.Buffer
	runner := script.Runner{Allocator: allocator, Out: &out}
	require.NoError(t, runner.Run(commands))

	require.Equal(t, `malloc 10 -> 0
malloc 5 -> 10
free 0
free 10
defrag merges=1 regions=2->1 largest=10->15
malloc 20 -> -1
malloc 15 -> 0

(0 , 15) 
allocations=1 allocated=15 free=0 regions=0 fragmentation=0.00
ok
`, out.String())
}

func TestRunJsonDump(t *testing.T) {
	commands, err := script.Parse(strings.NewReader("malloc 4\ndump\n"))
	require.NoError(t, err)

	allocator, err := firstfit.New(nil, firstfit.CreateOptions{MaxSize: 10})
	require.NoError(t, err)

	var out bytes.Buffer
	runner := script.Runner{Allocator: allocator, Out: &out, Json: true}
	require.NoError(t, runner.Run(commands))

	lines := strings.SplitN(out.String(), "\n", 2)
	require.Equal(t, "malloc 4 -> 0", lines[0])
	require.JSONEq(t, `{
		"TotalSize": 10,
		"FreeSize": 6,
		"Allocations": 1,
		"FreeRegions": 1,
		"LargestFreeRegion": 6,
		"FreeBlocks": [{"BaseAddress": 4, "Length": 6}],
		"AllocatedBlocks": [{"BaseAddress": 0, "Length": 4}]
	}`, lines[1])
}

func TestRunStopsAtFailure(t *testing.T) {
	commands, err := script.Parse(strings.NewReader("free 0\nmalloc 1\n"))
	require.NoError(t, err)

	allocator, err := firstfit.New(nil, firstfit.CreateOptions{MaxSize: 10})
	require.NoError(t, err)

	var out bytes.Buffer
	runner := script.Runner{Allocator: allocator, Out: &out}
	err = runner.Run(commands)
	require.True(t, errors.Is(err, memsim.ErrEmptyList))
	require.Contains(t, err.Error(), "line 1: free 0")
	require.Empty(t, out.String())
	require.True(t, allocator.IsEmpty())
}
