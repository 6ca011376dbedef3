package walktree_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"

	"github.com/temirov/walktree"
)

func memoryLayout(t *testing.T, directories []string, files []string) afero.Fs {
	t.Helper()
	filesystem := afero.NewMemMapFs()
	for _, directory := range directories {
		if err := filesystem.MkdirAll(directory, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", directory, err)
		}
	}
	for _, file := range files {
		if err := afero.WriteFile(filesystem, file, []byte(file), 0o644); err != nil {
			t.Fatalf("write %s: %v", file, err)
		}
	}
	return filesystem
}

// smallLayout is /r with directory a holding file x, and file b.
func smallLayout(t *testing.T) afero.Fs {
	return memoryLayout(t, []string{"/r/a"}, []string{"/r/a/x", "/r/b"})
}

// wideLayout has several levels and siblings at every level.
func wideLayout(t *testing.T) afero.Fs {
	return memoryLayout(t,
		[]string{"/r/a/k", "/r/c/d/e", "/r/f"},
		[]string{"/r/a/x", "/r/a/k/m", "/r/b", "/r/c/d/y", "/r/c/d/e/w", "/r/c/z", "/r/f/q", "/r/g"},
	)
}

func pathOf(entry *walktree.Entry) string {
	return entry.Path
}

func mustWalk[T any](t *testing.T, builder *walktree.Builder[T]) *walktree.Tree[T] {
	t.Helper()
	tree, err := builder.Walk(context.Background())
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	return tree
}

func childPaths[T any](t *testing.T, tree *walktree.Tree[T], parent string) []string {
	t.Helper()
	node, found := tree.NodeByPath(parent)
	if !found {
		t.Fatalf("missing node for %s", parent)
	}
	var paths []string
	for _, child := range tree.Children(node) {
		path, ok := tree.PathByNode(child)
		if !ok {
			t.Fatalf("child %s has no path", child)
		}
		paths = append(paths, path)
	}
	return paths
}

// sliceProvider replays a fixed list of entries and failures.
type sliceProvider struct {
	steps []providerStep
}

type providerStep struct {
	entry walktree.Entry
	err   error
}

func (provider sliceProvider) Walk(ctx context.Context, root string, policy walktree.Policy, visit walktree.VisitFunc) error {
	for _, step := range provider.steps {
		if contextError := ctx.Err(); contextError != nil {
			return contextError
		}
		if policy.Filter != nil && step.err == nil && !policy.Filter(&step.entry) {
			continue
		}
		if visitError := visit(step.entry, step.err); visitError != nil {
			return visitError
		}
	}
	return nil
}

func entryAt(path string) providerStep {
	return providerStep{entry: walktree.Entry{Path: path}}
}
