package walktree_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"github.com/temirov/walktree"
)

func ExampleLoad() {
	filesystem := afero.NewMemMapFs()
	_ = filesystem.MkdirAll("/r/a", 0o755)
	_ = afero.WriteFile(filesystem, "/r/a/x", nil, 0o644)
	_ = afero.WriteFile(filesystem, "/r/b", nil, 0o644)

	tree, err := walktree.Load[string]("/r").
		WithFileSystem(filesystem).
		WithMap(func(entry *walktree.Entry) string { return entry.Name }).
		WithTraversalOption(walktree.SortByFileName()).
		Walk(context.Background())
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, root := range tree.Roots() {
		for node := range tree.Descendants(root) {
			path, _ := tree.PathByNode(node)
			name, _ := tree.DataByNode(node)
			depth := strings.Count(strings.TrimPrefix(path, tree.RootPath()), "/")
			fmt.Printf("%s%s\n", strings.Repeat("  ", depth), name)
		}
	}
	// Output:
	// r
	//   a
	//     x
	//   b
}
