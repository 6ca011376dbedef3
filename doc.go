// Package walktree builds an in-memory tree from a directory traversal.
//
// Every entry the traversal produces becomes a node holding caller-supplied
// data. Nodes are linked by filesystem path hierarchy and the resulting
// Tree answers path-to-node and node-to-path lookups in constant time.
//
//	tree, err := walktree.Load[string](root).
//		WithMap(func(entry *walktree.Entry) string { return entry.Name }).
//		WithTraversalOption(walktree.SortByFileName()).
//		Walk(ctx)
//
// Construction is configured once through a Builder and performed by Walk.
// Walk calls the filter, comparators, and mapper one at a time on its own
// goroutine, so they may share state without locking.
// The returned Tree is immutable and safe for concurrent readers.
package walktree

import (
	"github.com/temirov/walktree/internal/arena"
	"github.com/temirov/walktree/internal/traversal"
)

// Entry describes one filesystem entry produced by a traversal.
type Entry = traversal.Entry

// NodeID identifies a node of a Tree. The zero value identifies no node.
type NodeID = arena.NodeID

// Provider enumerates entries below a root. The default provider walks a filesystem.
type Provider = traversal.Provider

// Policy carries the compiled traversal options handed to a Provider.
type Policy = traversal.Policy

// VisitFunc receives each entry or traversal failure from a Provider.
type VisitFunc = traversal.VisitFunc

// ErrLinkLoop is wrapped by traversal failures for symbolic links that resolve to an ancestor.
var ErrLinkLoop = traversal.ErrLinkLoop
