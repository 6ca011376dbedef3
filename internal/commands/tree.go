// Package commands contains the data collection behind the CLI commands.
package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/walktree"
	"github.com/temirov/walktree/internal/tokenizer"
	"github.com/temirov/walktree/internal/types"
	"github.com/temirov/walktree/internal/utils"
)

const (
	// errorAbsolutePathFormat is used when the absolute path cannot be determined.
	errorAbsolutePathFormat = "getting absolute path for %s: %w"
	// errorUnsupportedSortFormat is used when the sort discipline is not recognised.
	errorUnsupportedSortFormat = "unsupported sort %q (expected name, size, modified, or none)"
)

// TreeBuilder builds walked trees of node information using configured options.
type TreeBuilder struct {
	Filesystem afero.Fs
	// Logger receives inspection warnings.
	Logger *zap.Logger
	// WalkLogger receives the walk diagnostics and defaults to Logger.
	WalkLogger     *zap.Logger
	IgnorePatterns []string
	TokenCounter   tokenizer.Counter
	Sort           string
	ContentsFirst  bool
	FollowLinks    bool
	SameFileSystem bool
	MinDepth       int
	// MaxDepth is unbounded when nil.
	MaxDepth *int
	// MaxOpen keeps the library default when zero.
	MaxOpen  int
	FailFast bool
}

// Build walks rootPath and returns its tree. Under the default policy
// unreadable entries are recorded on the tree; with FailFast the first one
// aborts the walk.
func (treeBuilder *TreeBuilder) Build(ctx context.Context, rootPath string) (*walktree.Tree[types.NodeInfo], error) {
	traversalOptions, optionsError := treeBuilder.traversalOptions()
	if optionsError != nil {
		return nil, optionsError
	}
	absoluteRootPath, absolutePathError := filepath.Abs(rootPath)
	if absolutePathError != nil {
		return nil, fmt.Errorf(errorAbsolutePathFormat, rootPath, absolutePathError)
	}

	errorPolicy := walktree.CollectErrors
	if treeBuilder.FailFast {
		errorPolicy = walktree.AbortOnError
	}
	inspector := &Inspector{
		Filesystem:   treeBuilder.Filesystem,
		TokenCounter: treeBuilder.TokenCounter,
		Logger:       treeBuilder.Logger,
	}

	walkLogger := treeBuilder.WalkLogger
	if walkLogger == nil {
		walkLogger = treeBuilder.Logger
	}

	return walktree.Load[types.NodeInfo](absoluteRootPath).
		WithFileSystem(treeBuilder.Filesystem).
		WithLogger(walkLogger).
		WithErrorPolicy(errorPolicy).
		WithFilter(ignoreFilter(absoluteRootPath, treeBuilder.IgnorePatterns)).
		WithMap(inspector.Inspect).
		WithTraversalOptions(traversalOptions...).
		Walk(ctx)
}

func (treeBuilder *TreeBuilder) traversalOptions() ([]walktree.Option, error) {
	var options []walktree.Option
	switch treeBuilder.Sort {
	case types.SortByName, "":
		options = append(options, walktree.SortByFileName())
	case types.SortBySize:
		options = append(options, walktree.SortByKey(entrySize))
	case types.SortByModified:
		options = append(options, walktree.SortByKey(entryModificationTime))
	case types.SortByNone:
	default:
		return nil, fmt.Errorf(errorUnsupportedSortFormat, treeBuilder.Sort)
	}

	if treeBuilder.ContentsFirst {
		options = append(options, walktree.ContentsFirst())
	}
	if treeBuilder.FollowLinks {
		options = append(options, walktree.FollowLinks())
	}
	if treeBuilder.SameFileSystem {
		options = append(options, walktree.SameFileSystem())
	}
	if treeBuilder.MinDepth != 0 {
		options = append(options, walktree.MinDepth(treeBuilder.MinDepth))
	}
	if treeBuilder.MaxDepth != nil {
		options = append(options, walktree.MaxDepth(*treeBuilder.MaxDepth))
	}
	if treeBuilder.MaxOpen != 0 {
		options = append(options, walktree.MaxOpen(treeBuilder.MaxOpen))
	}
	return options, nil
}

// ignoreFilter never rejects the root itself.
func ignoreFilter(absoluteRootPath string, ignorePatterns []string) func(*walktree.Entry) bool {
	return func(entry *walktree.Entry) bool {
		relativePath := utils.RelativePathOrSelf(entry.Path, absoluteRootPath)
		if relativePath == "." {
			return true
		}
		return !utils.ShouldIgnoreByPath(relativePath, entry.IsDir(), ignorePatterns)
	}
}

func entrySize(entry *walktree.Entry) int64 {
	if entry.Info == nil || entry.IsDir() {
		return 0
	}
	return entry.Info.Size()
}

func entryModificationTime(entry *walktree.Entry) int64 {
	if entry.Info == nil {
		return 0
	}
	return entry.Info.ModTime().UnixNano()
}
