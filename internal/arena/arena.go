// Package arena stores tree nodes in a single slice and links them through
// stable identities instead of pointers.
package arena

import (
	"errors"
	"fmt"
	"iter"
)

var (
	// ErrUnknownNode is returned when an identity does not belong to the arena.
	ErrUnknownNode = errors.New("arena: unknown node")
	// ErrAlreadyAttached is returned when a node that already has a parent is appended again.
	ErrAlreadyAttached = errors.New("arena: node already has a parent")
	// ErrSelfAttachment is returned when a node is appended to itself.
	ErrSelfAttachment = errors.New("arena: node cannot be its own child")
)

// NodeID identifies a node slot. The zero value identifies no node.
type NodeID struct {
	slot uint32
}

// Index returns the zero-based allocation position of the node, or -1 for the zero NodeID.
func (id NodeID) Index() int {
	return int(id.slot) - 1
}

// IsZero reports whether the identity refers to no node.
func (id NodeID) IsZero() bool {
	return id.slot == 0
}

// String renders the identity for diagnostics.
func (id NodeID) String() string {
	if id.IsZero() {
		return "node(none)"
	}
	return fmt.Sprintf("node(%d)", id.Index())
}

func idForIndex(index int) NodeID {
	return NodeID{slot: uint32(index) + 1}
}

type node[T any] struct {
	data            T
	parent          NodeID
	firstChild      NodeID
	lastChild       NodeID
	previousSibling NodeID
	nextSibling     NodeID
}

// Arena owns a set of nodes for its whole lifetime. Nodes are never removed.
type Arena[T any] struct {
	nodes []node[T]
}

// New returns an empty arena with room for capacity nodes.
func New[T any](capacity int) *Arena[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Arena[T]{nodes: make([]node[T], 0, capacity)}
}

// Alloc stores data in a fresh, unattached node.
func (arena *Arena[T]) Alloc(data T) NodeID {
	arena.nodes = append(arena.nodes, node[T]{data: data})
	return idForIndex(len(arena.nodes) - 1)
}

// Len returns the number of allocated nodes.
func (arena *Arena[T]) Len() int {
	return len(arena.nodes)
}

// Contains reports whether id was allocated by this arena.
func (arena *Arena[T]) Contains(id NodeID) bool {
	index := id.Index()
	return index >= 0 && index < len(arena.nodes)
}

// Get returns the data stored under id.
func (arena *Arena[T]) Get(id NodeID) (T, bool) {
	if !arena.Contains(id) {
		var zero T
		return zero, false
	}
	return arena.nodes[id.Index()].data, true
}

// Append attaches child as the last child of parent.
func (arena *Arena[T]) Append(parent NodeID, child NodeID) error {
	if !arena.Contains(parent) {
		return fmt.Errorf("%w: parent %s", ErrUnknownNode, parent)
	}
	if !arena.Contains(child) {
		return fmt.Errorf("%w: child %s", ErrUnknownNode, child)
	}
	if parent == child {
		return fmt.Errorf("%w: %s", ErrSelfAttachment, child)
	}
	childNode := &arena.nodes[child.Index()]
	if !childNode.parent.IsZero() {
		return fmt.Errorf("%w: %s", ErrAlreadyAttached, child)
	}

	parentNode := &arena.nodes[parent.Index()]
	childNode.parent = parent
	childNode.previousSibling = parentNode.lastChild
	if parentNode.lastChild.IsZero() {
		parentNode.firstChild = child
	} else {
		arena.nodes[parentNode.lastChild.Index()].nextSibling = child
	}
	parentNode.lastChild = child
	return nil
}

// Parent returns the parent of id when it has one.
func (arena *Arena[T]) Parent(id NodeID) (NodeID, bool) {
	return arena.link(id, func(current *node[T]) NodeID { return current.parent })
}

// FirstChild returns the first child of id.
func (arena *Arena[T]) FirstChild(id NodeID) (NodeID, bool) {
	return arena.link(id, func(current *node[T]) NodeID { return current.firstChild })
}

// LastChild returns the last child of id.
func (arena *Arena[T]) LastChild(id NodeID) (NodeID, bool) {
	return arena.link(id, func(current *node[T]) NodeID { return current.lastChild })
}

// NextSibling returns the sibling following id.
func (arena *Arena[T]) NextSibling(id NodeID) (NodeID, bool) {
	return arena.link(id, func(current *node[T]) NodeID { return current.nextSibling })
}

// PreviousSibling returns the sibling preceding id.
func (arena *Arena[T]) PreviousSibling(id NodeID) (NodeID, bool) {
	return arena.link(id, func(current *node[T]) NodeID { return current.previousSibling })
}

func (arena *Arena[T]) link(id NodeID, selector func(*node[T]) NodeID) (NodeID, bool) {
	if !arena.Contains(id) {
		return NodeID{}, false
	}
	linked := selector(&arena.nodes[id.Index()])
	return linked, !linked.IsZero()
}

// Children yields the children of id in attachment order.
func (arena *Arena[T]) Children(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		child, ok := arena.FirstChild(id)
		for ok {
			if !yield(child) {
				return
			}
			child, ok = arena.NextSibling(child)
		}
	}
}

// Ancestors yields the parent chain of id, nearest first.
func (arena *Arena[T]) Ancestors(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		ancestor, ok := arena.Parent(id)
		for ok {
			if !yield(ancestor) {
				return
			}
			ancestor, ok = arena.Parent(ancestor)
		}
	}
}

// Descendants yields id followed by every node below it in pre-order.
func (arena *Arena[T]) Descendants(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		if !arena.Contains(id) {
			return
		}
		current := id
		for {
			if !yield(current) {
				return
			}
			if child, ok := arena.FirstChild(current); ok {
				current = child
				continue
			}
			for {
				if current == id {
					return
				}
				if sibling, ok := arena.NextSibling(current); ok {
					current = sibling
					break
				}
				parent, ok := arena.Parent(current)
				if !ok {
					return
				}
				current = parent
			}
		}
	}
}

// Roots yields every node without a parent in allocation order.
func (arena *Arena[T]) Roots() iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		for index := range arena.nodes {
			if !arena.nodes[index].parent.IsZero() {
				continue
			}
			if !yield(idForIndex(index)) {
				return
			}
		}
	}
}
