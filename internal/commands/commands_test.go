package commands_test

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/walktree"
	"github.com/temirov/walktree/internal/commands"
	"github.com/temirov/walktree/internal/types"
)

const (
	rootDirectory     = "/project"
	textFileContent   = "hello world"
	binaryFileContent = "\x00\xff\x00"
)

type wordCounter struct{}

func (wordCounter) Name() string { return "words" }

func (wordCounter) CountString(input string) (int, error) {
	return len(strings.Fields(input)), nil
}

type failingCounter struct{}

func (failingCounter) Name() string { return "failing" }

func (failingCounter) CountString(string) (int, error) {
	return 0, errors.New("counter unavailable")
}

func writeFiles(t *testing.T, filesystem afero.Fs, files map[string]string) {
	t.Helper()
	for path, content := range files {
		if err := filesystem.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
		}
		if err := afero.WriteFile(filesystem, path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

func projectLayout(t *testing.T) afero.Fs {
	t.Helper()
	filesystem := afero.NewMemMapFs()
	writeFiles(t, filesystem, map[string]string{
		rootDirectory + "/plain.txt":        textFileContent,
		rootDirectory + "/data.bin":         binaryFileContent,
		rootDirectory + "/debug.log":        "log line",
		rootDirectory + "/dir/nested.txt":   "nested text file",
		rootDirectory + "/skip/hidden.txt":  "never seen",
		rootDirectory + "/dir/skip/too.txt": "pruned as well",
	})
	return filesystem
}

func childNames(t *testing.T, tree *walktree.Tree[types.NodeInfo], path string) []string {
	t.Helper()
	identity, found := tree.NodeByPath(path)
	if !found {
		t.Fatalf("path %s missing from tree", path)
	}
	var names []string
	for _, child := range tree.Children(identity) {
		info, _ := tree.DataByNode(child)
		names = append(names, info.Name)
	}
	return names
}

func TestTreeBuilderAppliesIgnorePatterns(t *testing.T) {
	treeBuilder := &commands.TreeBuilder{
		Filesystem:     projectLayout(t),
		IgnorePatterns: []string{"skip/", "*.log"},
	}
	tree, err := treeBuilder.Build(t.Context(), rootDirectory)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if names := childNames(t, tree, rootDirectory); !slices.Equal(names, []string{"data.bin", "dir", "plain.txt"}) {
		t.Fatalf("unexpected root children %v", names)
	}
	if names := childNames(t, tree, rootDirectory+"/dir"); !slices.Equal(names, []string{"nested.txt"}) {
		t.Fatalf("unexpected dir children %v", names)
	}
	if tree.Err() != nil {
		t.Fatalf("unexpected traversal failures: %v", tree.Err())
	}
}

func TestTreeBuilderClassifiesEntries(t *testing.T) {
	treeBuilder := &commands.TreeBuilder{
		Filesystem:   projectLayout(t),
		TokenCounter: wordCounter{},
	}
	tree, err := treeBuilder.Build(t.Context(), rootDirectory)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	testCases := []struct {
		name          string
		path          string
		expectedType  string
		expectedSize  int64
		expectTokens  int
		expectCounted bool
	}{
		{name: "text", path: "/plain.txt", expectedType: types.NodeTypeFile, expectedSize: int64(len(textFileContent)), expectTokens: 2, expectCounted: true},
		{name: "binary", path: "/data.bin", expectedType: types.NodeTypeBinary, expectedSize: int64(len(binaryFileContent))},
		{name: "directory", path: "/dir", expectedType: types.NodeTypeDirectory},
		{name: "nested", path: "/dir/nested.txt", expectedType: types.NodeTypeFile, expectedSize: 16, expectTokens: 3, expectCounted: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			info, found := tree.DataByPath(rootDirectory + testCase.path)
			if !found {
				t.Fatalf("missing %s", testCase.path)
			}
			if info.Type != testCase.expectedType {
				t.Fatalf("expected type %s, got %s", testCase.expectedType, info.Type)
			}
			if info.SizeBytes != testCase.expectedSize {
				t.Fatalf("expected size %d, got %d", testCase.expectedSize, info.SizeBytes)
			}
			if info.Tokens != testCase.expectTokens || info.Counted != testCase.expectCounted {
				t.Fatalf("unexpected tokens %d counted %v", info.Tokens, info.Counted)
			}
			if info.LastModified.IsZero() {
				t.Fatalf("expected a modification time")
			}
		})
	}

	binary, _ := tree.DataByPath(rootDirectory + "/data.bin")
	if binary.MimeType == "" {
		t.Fatalf("binary files must carry a MIME type")
	}
}

func TestTreeBuilderSortDisciplines(t *testing.T) {
	filesystem := afero.NewMemMapFs()
	writeFiles(t, filesystem, map[string]string{
		rootDirectory + "/b": "12345",
		rootDirectory + "/a": "1234567890",
		rootDirectory + "/c": "1",
	})
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for offset, name := range []string{"c", "a", "b"} {
		stamp := base.Add(time.Duration(offset) * time.Hour)
		if err := filesystem.Chtimes(rootDirectory+"/"+name, stamp, stamp); err != nil {
			t.Fatalf("chtimes %s: %v", name, err)
		}
	}

	testCases := []struct {
		name     string
		sort     string
		expected []string
	}{
		{name: "default", sort: "", expected: []string{"a", "b", "c"}},
		{name: "name", sort: types.SortByName, expected: []string{"a", "b", "c"}},
		{name: "size", sort: types.SortBySize, expected: []string{"c", "b", "a"}},
		{name: "modified", sort: types.SortByModified, expected: []string{"c", "a", "b"}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			treeBuilder := &commands.TreeBuilder{Filesystem: filesystem, Sort: testCase.sort}
			tree, err := treeBuilder.Build(t.Context(), rootDirectory)
			if err != nil {
				t.Fatalf("Build error: %v", err)
			}
			if names := childNames(t, tree, rootDirectory); !slices.Equal(names, testCase.expected) {
				t.Fatalf("expected %v, got %v", testCase.expected, names)
			}
		})
	}
}

func TestTreeBuilderRejectsUnknownSort(t *testing.T) {
	treeBuilder := &commands.TreeBuilder{Filesystem: afero.NewMemMapFs(), Sort: "random"}
	if _, err := treeBuilder.Build(t.Context(), rootDirectory); err == nil {
		t.Fatalf("expected an error for an unknown sort")
	}
}

func TestTreeBuilderDepthBounds(t *testing.T) {
	maxDepth := 1
	treeBuilder := &commands.TreeBuilder{
		Filesystem: projectLayout(t),
		MinDepth:   1,
		MaxDepth:   &maxDepth,
	}
	tree, err := treeBuilder.Build(t.Context(), rootDirectory)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if _, found := tree.NodeByPath(rootDirectory); found {
		t.Fatalf("root must be excluded by the minimum depth")
	}
	if _, found := tree.NodeByPath(rootDirectory + "/dir/nested.txt"); found {
		t.Fatalf("depth 2 entries must be excluded by the maximum depth")
	}
	if tree.Len() != 5 || len(tree.Roots()) != 5 {
		t.Fatalf("expected five depth-one roots, got %d nodes and %d roots", tree.Len(), len(tree.Roots()))
	}
}

func TestTreeBuilderErrorPolicies(t *testing.T) {
	testCases := []struct {
		name        string
		failFast    bool
		expectError bool
	}{
		{name: "collect", failFast: false},
		{name: "fail_fast", failFast: true, expectError: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			treeBuilder := &commands.TreeBuilder{Filesystem: afero.NewMemMapFs(), FailFast: testCase.failFast}
			tree, err := treeBuilder.Build(context.Background(), "/missing")
			if testCase.expectError {
				var traversalError *walktree.TraversalError
				if !errors.As(err, &traversalError) || tree != nil {
					t.Fatalf("expected a traversal error and no tree, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Build error: %v", err)
			}
			if tree.Len() != 0 || len(tree.TraversalErrors()) != 1 {
				t.Fatalf("expected an empty tree with one failure, got %d nodes and %d failures", tree.Len(), len(tree.TraversalErrors()))
			}
		})
	}
}

func TestInspectorLogsTokenFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	filesystem := projectLayout(t)
	inspector := &commands.Inspector{
		Filesystem:   filesystem,
		TokenCounter: failingCounter{},
		Logger:       zap.New(core),
	}
	info, statError := filesystem.Stat(rootDirectory + "/plain.txt")
	if statError != nil {
		t.Fatalf("stat: %v", statError)
	}
	entry := walktree.Entry{Path: rootDirectory + "/plain.txt", Name: "plain.txt", Depth: 1, Mode: info.Mode(), Info: info}

	result := inspector.Inspect(&entry)
	if result.Type != types.NodeTypeFile || result.Counted {
		t.Fatalf("unexpected inspection result %+v", result)
	}
	if logs.Len() != 1 {
		t.Fatalf("expected one warning, got %d", logs.Len())
	}
}

func TestInspectorReportsUnfollowedLinks(t *testing.T) {
	inspector := &commands.Inspector{Filesystem: afero.NewMemMapFs()}
	entry := walktree.Entry{
		Path:       "/project/link",
		Name:       "link",
		Depth:      1,
		Mode:       fs.ModeSymlink | 0o777,
		IsSymlink:  true,
		LinkTarget: "target",
	}
	result := inspector.Inspect(&entry)
	if result.Type != types.NodeTypeSymlink || result.LinkTarget != "target" {
		t.Fatalf("unexpected link inspection %+v", result)
	}
}
