package firstfit

import (
	"io"

	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/arsenal/memsim"
	"github.com/vkngwrapper/arsenal/memsim/blocklist"
	"golang.org/x/exp/slog"
)

// CreateOptions contains the settings used to build a new Allocator
type CreateOptions struct {
	// MaxSize is the number of addresses in the simulated address space. The space covers
	// addresses [0, MaxSize). It must be greater than zero.
	MaxSize int
}

// New creates an Allocator managing a single free block that covers the entire address space described
// by options. If logger is nil, log output is discarded.
func New(logger *slog.Logger, options CreateOptions) (*Allocator, error) {
	err := memsim.CheckPositive(options.MaxSize, "options.MaxSize")
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	allocator := &Allocator{
		logger:      logger,
		maxSize:     options.MaxSize,
		sumFreeSize: options.MaxSize,
		allocatedAt: swiss.NewMap[int, int](42),
	}
	allocator.freeList.InsertFirst(blocklist.MemoryBlock{BaseAddress: 0, Length: options.MaxSize})

	logger.Debug("Allocator::New", slog.Int("MaxSize", options.MaxSize))

	return allocator, nil
}
