package blocklist

import (
	"strings"

	cerrors "github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/arsenal/memsim"
)

// List is a singly-linked, position-addressable sequence of MemoryBlock values. Insertion at either
// end is O(1); everything addressed by index walks the list from its head.
//
// The zero value is an empty list ready for use. List is not safe for concurrent use.
type List struct {
	count int
	head  *Node
	tail  *Node
}

// New creates an empty List
func New() *List {
	return &List{}
}

// Size returns the number of nodes in the list
func (l *List) Size() int { return l.count }

// First returns the head of the list, or nil if the list is empty
func (l *List) First() *Node { return l.head }

// Last returns the tail of the list, or nil if the list is empty
func (l *List) Last() *Node { return l.tail }

// NodeAt returns the node at the provided 0-based index. An index equal to Size addresses the position
// past the tail and returns a nil node without error.
//
// ErrIndexOutOfRange is returned if index is negative, greater than Size, or the list is empty.
func (l *List) NodeAt(index int) (*Node, error) {
	if index < 0 || index > l.count || l.count == 0 {
		return nil, cerrors.Wrapf(memsim.ErrIndexOutOfRange, "node index %d, list size %d", index, l.count)
	}

	current := l.head
	for i := 0; i < index; i++ {
		current = current.next
	}

	return current, nil
}

// BlockAt returns the block held by the node at the provided 0-based index.
//
// ErrIndexOutOfRange is returned if index is negative or not less than Size.
func (l *List) BlockAt(index int) (MemoryBlock, error) {
	if index < 0 || index >= l.count {
		return MemoryBlock{}, cerrors.Wrapf(memsim.ErrIndexOutOfRange, "block index %d, list size %d", index, l.count)
	}

	node, err := l.NodeAt(index)
	if err != nil {
		return MemoryBlock{}, err
	}

	return node.Block, nil
}

// InsertFirst wraps block in a new node that becomes the head of the list
func (l *List) InsertFirst(block MemoryBlock) {
	memsim.DebugCheckPositive(block.Length, "block.Length")

	node := &Node{Block: block, next: l.head}
	l.head = node

	if l.count == 0 {
		l.tail = node
	}
	l.count++
}

// InsertLast wraps block in a new node that becomes the tail of the list
func (l *List) InsertLast(block MemoryBlock) {
	memsim.DebugCheckPositive(block.Length, "block.Length")

	node := &Node{Block: block}

	if l.tail != nil {
		l.tail.next = node
	}
	l.tail = node

	if l.count == 0 {
		l.head = node
	}
	l.count++
}

// InsertAt wraps block in a new node and places it before the node currently at index. Index 0
// and index Size are handled by InsertFirst and InsertLast respectively and cost O(1); any other
// index costs O(index).
//
// ErrIndexOutOfRange is returned if index is negative or greater than Size.
func (l *List) InsertAt(index int, block MemoryBlock) error {
	if index < 0 || index > l.count {
		return cerrors.Wrapf(memsim.ErrIndexOutOfRange, "insert index %d, list size %d", index, l.count)
	}

	if index == 0 {
		l.InsertFirst(block)
		return nil
	} else if index == l.count {
		l.InsertLast(block)
		return nil
	}

	prev, err := l.NodeAt(index - 1)
	if err != nil {
		return err
	}

	memsim.DebugCheckPositive(block.Length, "block.Length")
	prev.next = &Node{Block: block, next: prev.next}
	l.count++
	return nil
}

// IndexOf returns the position of the first node whose block equals the provided block, or -1
// if there is no such node
func (l *List) IndexOf(block MemoryBlock) int {
	index := 0
	for node := l.head; node != nil; node = node.next {
		if node.Block == block {
			return index
		}
		index++
	}

	return -1
}

// RemoveNode unlinks the provided node from the list. Nodes are matched by identity, not by the value
// of their block. Passing a node that does not belong to this list leaves the list unchanged and
// does not return an error, unlike RemoveAt and RemoveBlock.
//
// ErrNilNode is returned if node is nil.
func (l *List) RemoveNode(node *Node) error {
	if node == nil {
		return memsim.ErrNilNode
	}

	var prev *Node
	for current := l.head; current != nil; current = current.next {
		if current == node {
			if prev == nil {
				l.head = current.next
			} else {
				prev.next = current.next
			}

			if current == l.tail {
				l.tail = prev
			}

			l.count--
			return nil
		}

		prev = current
	}

	return nil
}

// RemoveAt unlinks the node at the provided index.
//
// ErrIndexOutOfRange is returned if index is negative or not less than Size.
func (l *List) RemoveAt(index int) error {
	if index < 0 || index >= l.count {
		return cerrors.Wrapf(memsim.ErrIndexOutOfRange, "remove index %d, list size %d", index, l.count)
	}

	if l.count == 1 {
		l.Clear()
		return nil
	}

	node, err := l.NodeAt(index)
	if err != nil {
		return err
	}

	return l.RemoveNode(node)
}

// RemoveBlock unlinks the first node whose block equals the provided block.
//
// ErrIndexOutOfRange is returned if no node holds the block.
func (l *List) RemoveBlock(block MemoryBlock) error {
	err := l.RemoveAt(l.IndexOf(block))
	if err != nil {
		return cerrors.Wrapf(err, "block %s is not in the list", block)
	}

	return nil
}

// Clear drops every node in the list
func (l *List) Clear() {
	l.head = nil
	l.tail = nil
	l.count = 0
}

// Iterator returns a new Iterator anchored at the current head of the list. Changing the list's
// structure while an iterator is in use gives no ordering guarantee for the nodes it visits.
func (l *List) Iterator() *Iterator {
	return &Iterator{current: l.head}
}

// VisitAll calls visit once for each node in list order and stops at the first error, which is returned
func (l *List) VisitAll(visit func(index int, node *Node) error) error {
	index := 0
	for node := l.head; node != nil; node = node.next {
		err := visit(index, node)
		if err != nil {
			return err
		}
		index++
	}

	return nil
}

// Validate performs internal consistency checks on the list
func (l *List) Validate() error {
	if (l.count == 0) != (l.head == nil) || (l.count == 0) != (l.tail == nil) {
		return cerrors.Newf("list has size %d, but head present is %t and tail present is %t", l.count, l.head != nil, l.tail != nil)
	}

	if l.tail != nil && l.tail.next != nil {
		return cerrors.New("the tail of the list has a next node")
	}

	actualCount := 0
	var last *Node
	for node := l.head; node != nil; node = node.next {
		if node.Block.Length <= 0 {
			return cerrors.Newf("block %s at index %d does not have a positive length", node.Block, actualCount)
		}

		actualCount++
		last = node

		if actualCount > l.count {
			return cerrors.Newf("the list has more nodes than its listed size of %d", l.count)
		}
	}

	if actualCount != l.count {
		return cerrors.Newf("the listed number of nodes in the list (%d) does not match the actual number of nodes (%d)", l.count, actualCount)
	}

	if last != l.tail {
		return cerrors.New("traversal from the head of the list does not end at its tail")
	}

	return nil
}

// WriteJson adds one object per block, in list order, to the provided json array
func (l *List) WriteJson(array *jwriter.ArrayState) {
	for node := l.head; node != nil; node = node.next {
		obj := array.Object()
		obj.Name("BaseAddress").Int(node.Block.BaseAddress)
		obj.Name("Length").Int(node.Block.Length)
		obj.End()
	}
}

// String renders each block in list order, each one followed by a space
func (l *List) String() string {
	var sb strings.Builder
	for node := l.head; node != nil; node = node.next {
		sb.WriteString(node.Block.String())
		sb.WriteString(" ")
	}
	return sb.String()
}
