package walktree

import (
	"iter"
	"path/filepath"
	"slices"

	"go.uber.org/multierr"

	"github.com/temirov/walktree/internal/arena"
	"github.com/temirov/walktree/internal/bimap"
)

// Tree is the assembled result of a walk. It exposes no mutation and is safe
// for concurrent readers.
type Tree[T any] struct {
	rootPath string
	nodes    *arena.Arena[T]
	index    *bimap.BiMap[string, NodeID]
	paths    []string
	failures []*TraversalError
}

// RootPath returns the absolute, cleaned root the tree was built from.
func (tree *Tree[T]) RootPath() string {
	return tree.rootPath
}

// Len returns the number of nodes.
func (tree *Tree[T]) Len() int {
	return tree.nodes.Len()
}

// NodeByPath returns the node stored for path. The path is cleaned before lookup.
func (tree *Tree[T]) NodeByPath(path string) (NodeID, bool) {
	return tree.index.GetByLeft(filepath.Clean(path))
}

// PathByNode returns the path of node.
func (tree *Tree[T]) PathByNode(node NodeID) (string, bool) {
	return tree.index.GetByRight(node)
}

// DataByPath returns the data stored for path.
func (tree *Tree[T]) DataByPath(path string) (T, bool) {
	node, found := tree.NodeByPath(path)
	if !found {
		var zero T
		return zero, false
	}
	return tree.nodes.Get(node)
}

// DataByNode returns the data stored in node.
func (tree *Tree[T]) DataByNode(node NodeID) (T, bool) {
	return tree.nodes.Get(node)
}

// Parent returns the parent of node. Roots have none.
func (tree *Tree[T]) Parent(node NodeID) (NodeID, bool) {
	return tree.nodes.Parent(node)
}

// Children returns the children of node in traversal order.
func (tree *Tree[T]) Children(node NodeID) []NodeID {
	return slices.Collect(tree.nodes.Children(node))
}

// Roots returns every parentless node in traversal order. Besides the walk
// root, any entry whose parent directory was not produced is a root.
func (tree *Tree[T]) Roots() []NodeID {
	return slices.Collect(tree.nodes.Roots())
}

// Position returns the sequence position at which node was produced.
func (tree *Tree[T]) Position(node NodeID) (int, bool) {
	if !tree.nodes.Contains(node) {
		return 0, false
	}
	return node.Index(), true
}

// Paths returns every path in traversal order.
func (tree *Tree[T]) Paths() []string {
	return slices.Clone(tree.paths)
}

// Descendants yields node and everything below it in pre-order.
func (tree *Tree[T]) Descendants(node NodeID) iter.Seq[NodeID] {
	return tree.nodes.Descendants(node)
}

// All yields every node with its data in traversal order.
func (tree *Tree[T]) All() iter.Seq2[NodeID, T] {
	return func(yield func(NodeID, T) bool) {
		for _, path := range tree.paths {
			node, _ := tree.index.GetByLeft(path)
			data, _ := tree.nodes.Get(node)
			if !yield(node, data) {
				return
			}
		}
	}
}

// TraversalErrors returns the failures collected while walking.
func (tree *Tree[T]) TraversalErrors() []*TraversalError {
	return slices.Clone(tree.failures)
}

// Err combines the collected traversal failures. It is nil when the walk saw none.
func (tree *Tree[T]) Err() error {
	var combined error
	for _, failure := range tree.failures {
		combined = multierr.Append(combined, failure)
	}
	return combined
}
