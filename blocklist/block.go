package blocklist

import "fmt"

// MemoryBlock is a contiguous range of abstract addresses, starting at BaseAddress and covering
// Length addresses. Two blocks are equal when both fields are equal.
type MemoryBlock struct {
	BaseAddress int
	Length      int
}

// End returns the first address past the block
func (b MemoryBlock) End() int {
	return b.BaseAddress + b.Length
}

// String renders the block as "(base , length)"
func (b MemoryBlock) String() string {
	return fmt.Sprintf("(%d , %d)", b.BaseAddress, b.Length)
}
