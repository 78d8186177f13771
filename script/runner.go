package script

import (
	"fmt"
	"io"

	cerrors "github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/arsenal/memsim"
	"github.com/vkngwrapper/arsenal/memsim/firstfit"
)

// Runner executes parsed commands against an allocator and reports the result of each to Out
type Runner struct {
	Allocator *firstfit.Allocator
	Out       io.Writer
	// Json switches dump output from the text rendering to the detailed json map
	Json bool
}

// Run executes commands in order. It stops at the first command that fails, and the returned error
// names that command's line.
func (r *Runner) Run(commands []Command) error {
	for _, command := range commands {
		err := r.execute(command)
		if err != nil {
			return cerrors.Wrapf(err, "line %d: %s", command.Line, command)
		}
	}

	return nil
}

func (r *Runner) execute(command Command) error {
	switch command.Operation {
	case OperationMalloc:
		address := r.Allocator.Malloc(command.Argument)
		_, err := fmt.Fprintf(r.Out, "%s -> %d\n", command, address)
		return err
	case OperationFree:
		err := r.Allocator.Free(command.Argument)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(r.Out, "%s\n", command)
		return err
	case OperationDefrag:
		stats := r.Allocator.Defrag()
		_, err := fmt.Fprintf(r.Out, "%s %s\n", command, stats)
		return err
	case OperationDump:
		return r.dump()
	case OperationStats:
		var stats memsim.DetailedStatistics
		stats.Clear()
		r.Allocator.AddDetailedStatistics(&stats)

		_, err := fmt.Fprintf(r.Out, "allocations=%d allocated=%d free=%d regions=%d fragmentation=%.2f\n",
			stats.AllocationCount, stats.AllocatedSize, stats.FreeSize(), stats.FreeRegionCount,
			stats.ExternalFragmentation())
		return err
	case OperationValidate:
		err := r.Allocator.Validate()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(r.Out, "ok")
		return err
	}

	return cerrors.Wrapf(ErrBadCommand, "unknown operation %d", command.Operation)
}

func (r *Runner) dump() error {
	if !r.Json {
		_, err := fmt.Fprintln(r.Out, r.Allocator.String())
		return err
	}

	writer := jwriter.NewWriter()
	r.Allocator.PrintDetailedMap(&writer)
	if err := writer.Error(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(r.Out, "%s\n", writer.Bytes())
	return err
}
