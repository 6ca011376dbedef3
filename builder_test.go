package walktree_test

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/walktree"
)

func TestWalkRejectsInvalidConfiguration(t *testing.T) {
	testCases := []struct {
		name             string
		builder          func() *walktree.Builder[string]
		expectedProblems []string
	}{
		{
			name: "missing_mapper",
			builder: func() *walktree.Builder[string] {
				return walktree.Load[string]("/r")
			},
			expectedProblems: []string{"mapper"},
		},
		{
			name: "two_sort_disciplines",
			builder: func() *walktree.Builder[string] {
				return walktree.Load[string]("/r").WithMap(pathOf).
					WithTraversalOption(walktree.SortByFileName()).
					WithTraversalOption(walktree.SortByKey(func(entry *walktree.Entry) int64 { return entry.Info.Size() }))
			},
			expectedProblems: []string{"at most one sort discipline"},
		},
		{
			name: "min_depth_above_max_depth",
			builder: func() *walktree.Builder[string] {
				return walktree.Load[string]("/r").WithMap(pathOf).
					WithTraversalOptions(walktree.MinDepth(3), walktree.MaxDepth(1))
			},
			expectedProblems: []string{"minimum depth 3 exceeds maximum depth 1"},
		},
		{
			name: "negative_values",
			builder: func() *walktree.Builder[string] {
				return walktree.Load[string]("/r").WithMap(pathOf).
					WithTraversalOptions(walktree.MaxDepth(-1), walktree.MaxOpen(-2))
			},
			expectedProblems: []string{"MaxDepth must not be negative", "MaxOpen must not be negative"},
		},
		{
			name: "nil_functions",
			builder: func() *walktree.Builder[string] {
				return walktree.Load[string]("/r").WithMap(pathOf).
					WithFilter(nil).
					WithTraversalOption(walktree.SortBy(nil))
			},
			expectedProblems: []string{"WithFilter", "SortBy requires"},
		},
		{
			name: "everything_reported_together",
			builder: func() *walktree.Builder[string] {
				return walktree.Load[string]("").
					WithErrorPolicy(walktree.ErrorPolicy(7)).
					WithTraversalOptions(walktree.SortByFileName(), walktree.SortByFileName(), walktree.Option{})
			},
			expectedProblems: []string{"root path", "mapper", "ErrorPolicy(7)", "at most one sort discipline", "zero Option"},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			filesystem := &countingOpenFs{Fs: smallLayout(t)}
			tree, err := testCase.builder().WithFileSystem(filesystem).Walk(context.Background())
			if tree != nil {
				t.Fatalf("expected no tree")
			}
			var configurationError *walktree.ConfigurationError
			if !errors.As(err, &configurationError) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if len(configurationError.Problems) != len(testCase.expectedProblems) {
				t.Fatalf("expected %d problems, got %v", len(testCase.expectedProblems), configurationError.Problems)
			}
			for _, expected := range testCase.expectedProblems {
				if !strings.Contains(err.Error(), expected) {
					t.Errorf("error %q does not mention %q", err.Error(), expected)
				}
			}
			if filesystem.opened != 0 {
				t.Fatalf("validation must happen before any I/O, %d opens observed", filesystem.opened)
			}
		})
	}
}

type countingOpenFs struct {
	afero.Fs
	opened int
}

func (filesystem *countingOpenFs) Open(name string) (afero.File, error) {
	filesystem.opened++
	return filesystem.Fs.Open(name)
}

func (filesystem *countingOpenFs) Stat(name string) (fs.FileInfo, error) {
	filesystem.opened++
	return filesystem.Fs.Stat(name)
}

func TestRepeatedScalarOptionUsesLastValue(t *testing.T) {
	tree := mustWalk(t, walktree.Load[string]("/r").
		WithFileSystem(wideLayout(t)).
		WithMap(pathOf).
		WithTraversalOptions(walktree.MaxDepth(3), walktree.MaxDepth(1), walktree.MaxOpen(0)))
	for _, path := range tree.Paths() {
		if strings.Count(strings.TrimPrefix(path, "/r"), "/") > 1 {
			t.Fatalf("%s is deeper than the last MaxDepth", path)
		}
	}
	if tree.Len() != 6 {
		t.Fatalf("expected the root and five children, got %v", tree.Paths())
	}
}

func TestBuilderWalksOnce(t *testing.T) {
	builder := walktree.Load[string]("/r").WithFileSystem(smallLayout(t)).WithMap(pathOf)
	if _, err := builder.Walk(context.Background()); err != nil {
		t.Fatalf("first walk: %v", err)
	}
	_, err := builder.Walk(context.Background())
	var configurationError *walktree.ConfigurationError
	if !errors.As(err, &configurationError) {
		t.Fatalf("expected ConfigurationError on second walk, got %v", err)
	}
}

type deniedFs struct {
	afero.Fs
	denied string
}

func (filesystem *deniedFs) Open(name string) (afero.File, error) {
	if name == filesystem.denied {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
	}
	return filesystem.Fs.Open(name)
}

func TestErrorPolicies(t *testing.T) {
	t.Run("collect", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		tree, err := walktree.Load[string]("/r").
			WithFileSystem(&deniedFs{Fs: wideLayout(t), denied: "/r/c"}).
			WithMap(pathOf).
			WithTraversalOption(walktree.SortByFileName()).
			WithLogger(zap.New(core)).
			Walk(context.Background())
		if err != nil {
			t.Fatalf("collect policy must not fail the walk: %v", err)
		}
		if _, found := tree.NodeByPath("/r/c"); !found {
			t.Fatalf("the unreadable directory itself is still part of the tree")
		}
		if _, found := tree.NodeByPath("/r/g"); !found {
			t.Fatalf("walk must continue after the failure")
		}
		failures := tree.TraversalErrors()
		if len(failures) != 1 || failures[0].Path != "/r/c" || failures[0].Depth != 1 {
			t.Fatalf("unexpected failures: %v", failures)
		}
		if !errors.Is(tree.Err(), fs.ErrPermission) {
			t.Fatalf("combined error should wrap the cause: %v", tree.Err())
		}
		if logs.FilterField(zap.String("path", "/r/c")).Len() != 1 {
			t.Fatalf("expected one warning for /r/c, got %v", logs.All())
		}
	})

	t.Run("abort", func(t *testing.T) {
		tree, err := walktree.Load[string]("/r").
			WithFileSystem(&deniedFs{Fs: wideLayout(t), denied: "/r/c"}).
			WithMap(pathOf).
			WithTraversalOption(walktree.SortByFileName()).
			WithErrorPolicy(walktree.AbortOnError).
			Walk(context.Background())
		if tree != nil {
			t.Fatalf("expected no tree")
		}
		var traversalError *walktree.TraversalError
		if !errors.As(err, &traversalError) || traversalError.Path != "/r/c" {
			t.Fatalf("expected TraversalError for /r/c, got %v", err)
		}
		if !errors.Is(err, fs.ErrPermission) {
			t.Fatalf("expected the permission cause, got %v", err)
		}
	})

	t.Run("clean_walk_has_no_errors", func(t *testing.T) {
		tree := mustWalk(t, walktree.Load[string]("/r").WithFileSystem(smallLayout(t)).WithMap(pathOf))
		if tree.Err() != nil || len(tree.TraversalErrors()) != 0 {
			t.Fatalf("unexpected errors: %v", tree.Err())
		}
	})
}

func TestProviderFailuresBecomeTraversalErrors(t *testing.T) {
	cause := errors.New("listing failed")
	provider := sliceProvider{steps: []providerStep{
		entryAt("/r"),
		{entry: walktree.Entry{Path: "/r/a", Depth: 1}, err: cause},
		entryAt("/r/b"),
	}}
	tree := mustWalk(t, walktree.Load[string]("/r").WithProvider(provider).WithMap(pathOf))
	if tree.Len() != 2 {
		t.Fatalf("unexpected nodes: %v", tree.Paths())
	}
	failures := tree.TraversalErrors()
	if len(failures) != 1 || !errors.Is(failures[0], cause) {
		t.Fatalf("unexpected failures: %v", failures)
	}
}

func TestWalkHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tree, err := walktree.Load[string]("/r").WithFileSystem(wideLayout(t)).WithMap(pathOf).Walk(ctx)
	if tree != nil {
		t.Fatalf("expected no tree")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMapperRunsInTraversalOrder(t *testing.T) {
	var order []string
	tree := mustWalk(t, walktree.Load[int]("/r").
		WithFileSystem(wideLayout(t)).
		WithTraversalOption(walktree.SortByFileName()).
		WithMap(func(entry *walktree.Entry) int {
			order = append(order, entry.Path)
			return len(order) - 1
		}))
	for node, sequence := range tree.All() {
		if position, _ := tree.Position(node); position != sequence {
			t.Fatalf("mapper call %d stored at position %d", sequence, position)
		}
	}
	if len(order) != tree.Len() {
		t.Fatalf("mapper called %d times for %d nodes", len(order), tree.Len())
	}
}

func TestFilterAndMapperShareState(t *testing.T) {
	seen := 0
	var events []string
	tree := mustWalk(t, walktree.Load[int]("/r").
		WithFileSystem(wideLayout(t)).
		WithTraversalOption(walktree.SortByFileName()).
		WithFilter(func(entry *walktree.Entry) bool {
			seen++
			events = append(events, "filter "+entry.Path)
			return true
		}).
		WithMap(func(entry *walktree.Entry) int {
			seen++
			events = append(events, "map "+entry.Path)
			return seen
		}))

	if len(events) != 2*tree.Len() {
		t.Fatalf("expected one filter and one map call per node, got %v", events)
	}
	for index := 0; index < len(events); index += 2 {
		filtered := strings.TrimPrefix(events[index], "filter ")
		mapped := strings.TrimPrefix(events[index+1], "map ")
		if filtered != mapped {
			t.Fatalf("map %s did not directly follow filter %s", mapped, filtered)
		}
	}
	for node, data := range tree.All() {
		position, _ := tree.Position(node)
		if data != 2*(position+1) {
			t.Fatalf("node at position %d observed counter %d", position, data)
		}
	}
}

func TestLaterCallsReplaceNilFunctions(t *testing.T) {
	keepAll := func(*walktree.Entry) bool { return true }
	provider := sliceProvider{steps: []providerStep{entryAt("/r"), entryAt("/r/a")}}

	testCases := []struct {
		name          string
		builder       func() *walktree.Builder[string]
		expectedError string
	}{
		{
			name: "filter_replaced",
			builder: func() *walktree.Builder[string] {
				return walktree.Load[string]("/r").WithProvider(provider).WithMap(pathOf).
					WithFilter(nil).WithFilter(keepAll)
			},
		},
		{
			name: "provider_replaced",
			builder: func() *walktree.Builder[string] {
				return walktree.Load[string]("/r").WithMap(pathOf).
					WithProvider(nil).WithProvider(provider)
			},
		},
		{
			name: "filter_cleared",
			builder: func() *walktree.Builder[string] {
				return walktree.Load[string]("/r").WithProvider(provider).WithMap(pathOf).
					WithFilter(keepAll).WithFilter(nil)
			},
			expectedError: "WithFilter",
		},
		{
			name: "provider_cleared",
			builder: func() *walktree.Builder[string] {
				return walktree.Load[string]("/r").WithMap(pathOf).
					WithProvider(provider).WithProvider(nil)
			},
			expectedError: "WithProvider",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			tree, err := testCase.builder().Walk(context.Background())
			if testCase.expectedError == "" {
				if err != nil {
					t.Fatalf("walk: %v", err)
				}
				if tree.Len() != 2 {
					t.Fatalf("unexpected nodes: %v", tree.Paths())
				}
				return
			}
			var configurationError *walktree.ConfigurationError
			if !errors.As(err, &configurationError) || !strings.Contains(err.Error(), testCase.expectedError) {
				t.Fatalf("expected ConfigurationError mentioning %q, got %v", testCase.expectedError, err)
			}
		})
	}
}

type handleCountingFs struct {
	afero.Fs
	openHandles    int
	maxOpenHandles int
}

func (filesystem *handleCountingFs) Open(name string) (afero.File, error) {
	file, openError := filesystem.Fs.Open(name)
	if openError != nil {
		return nil, openError
	}
	filesystem.openHandles++
	filesystem.maxOpenHandles = max(filesystem.maxOpenHandles, filesystem.openHandles)
	return &handleCountingFile{File: file, owner: filesystem}, nil
}

type handleCountingFile struct {
	afero.File
	owner  *handleCountingFs
	closed bool
}

func (file *handleCountingFile) Close() error {
	if !file.closed {
		file.closed = true
		file.owner.openHandles--
	}
	return file.File.Close()
}

func TestMaxOpenZeroKeepsOneHandle(t *testing.T) {
	filesystem := &handleCountingFs{Fs: wideLayout(t)}
	tree := mustWalk(t, walktree.Load[string]("/r").
		WithFileSystem(filesystem).
		WithMap(pathOf).
		WithTraversalOption(walktree.MaxOpen(0)))

	if filesystem.maxOpenHandles != 1 {
		t.Fatalf("expected exactly one open handle at a time, observed %d", filesystem.maxOpenHandles)
	}
	if filesystem.openHandles != 0 {
		t.Fatalf("handles leaked: %d", filesystem.openHandles)
	}
	if tree.Len() != 15 {
		t.Fatalf("expected the whole layout, got %v", tree.Paths())
	}
}
