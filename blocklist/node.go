package blocklist

// Node is a single entry of a List. The node owns its MemoryBlock by value, so the block may be
// edited in place through the Block field without affecting any other list.
type Node struct {
	Block MemoryBlock

	next *Node
}

// Next returns the node following this one, or nil if this node is the last in its list
func (n *Node) Next() *Node {
	return n.next
}

// Iterator walks a List from the node it was anchored at to the end of the list
type Iterator struct {
	current *Node
}

// HasNext returns true while the iterator has not run off the end of the list
func (it *Iterator) HasNext() bool {
	return it.current != nil
}

// Next returns the current node and advances the iterator. It returns nil once the iterator is exhausted.
func (it *Iterator) Next() *Node {
	node := it.current
	if node != nil {
		it.current = node.next
	}
	return node
}
