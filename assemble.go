package walktree

import (
	"fmt"
	"path/filepath"

	"github.com/temirov/walktree/internal/arena"
	"github.com/temirov/walktree/internal/bimap"
)

const linkNodeErrorFormat = "walktree: link %s under %s: %w"

// assemble turns records into a tree in two passes. The first allocates a
// node per record and indexes its path; the second links every node under
// the node of its parent directory. Linking walks the record list, so
// siblings keep their sequence order.
func assemble[T any](rootPath string, records []record[T], failures []*TraversalError) (*Tree[T], error) {
	nodes := arena.New[T](len(records))
	index := bimap.New[string, NodeID](len(records))
	paths := make([]string, len(records))
	identities := make([]NodeID, len(records))

	for position, current := range records {
		cleanPath := filepath.Clean(current.path)
		if firstIdentity, exists := index.GetByLeft(cleanPath); exists {
			return nil, &DuplicatePathError{Path: cleanPath, FirstPosition: firstIdentity.Index(), SecondPosition: position}
		}
		identity := nodes.Alloc(current.data)
		if insertError := index.Insert(cleanPath, identity); insertError != nil {
			return nil, insertError
		}
		paths[position] = cleanPath
		identities[position] = identity
	}

	for position, childPath := range paths {
		parentPath := filepath.Dir(childPath)
		if parentPath == childPath {
			continue
		}
		parentIdentity, hasParent := index.GetByLeft(parentPath)
		if !hasParent {
			continue
		}
		if appendError := nodes.Append(parentIdentity, identities[position]); appendError != nil {
			return nil, fmt.Errorf(linkNodeErrorFormat, childPath, parentPath, appendError)
		}
	}

	return &Tree[T]{
		rootPath: filepath.Clean(rootPath),
		nodes:    nodes,
		index:    index,
		paths:    paths,
		failures: failures,
	}, nil
}
