package memsim

import "github.com/pkg/errors"

var (
	// ErrIndexOutOfRange is returned by blocklist.List when an index argument falls outside the range
	// the operation accepts, or when the list is empty and indexed access is attempted
	ErrIndexOutOfRange error = errors.New("index must be between 0 and size")
	// ErrNilNode is returned by blocklist.List.RemoveNode when it receives a nil node
	ErrNilNode error = errors.New("can't remove nil node")
	// ErrEmptyList is returned by firstfit.Allocator.Free when there are no allocated blocks at all
	ErrEmptyList error = errors.New("the allocated list is empty")
	// ErrNonPositive is the error returned from CheckPositive or other methods if a size or length is zero
	// or negative
	ErrNonPositive error = errors.New("number must be greater than zero")
)
