package walktree

import (
	"cmp"
	"fmt"

	"github.com/temirov/walktree/internal/traversal"
)

type optionKind int

const (
	optionContentsFirst optionKind = iota + 1
	optionFollowLinks
	optionMaxDepth
	optionMaxOpen
	optionMinDepth
	optionSameFileSystem
	optionSort
)

const (
	contentsFirstOptionName  = "ContentsFirst"
	followLinksOptionName    = "FollowLinks"
	maxDepthOptionName       = "MaxDepth"
	maxOpenOptionName        = "MaxOpen"
	minDepthOptionName       = "MinDepth"
	sameFileSystemOptionName = "SameFileSystem"
	sortByOptionName         = "SortBy"
	sortByFileNameOptionName = "SortByFileName"
	sortByKeyOptionName      = "SortByKey"
	unknownOptionName        = "unknown"

	scalarOptionFormat           = "%s(%d)"
	negativeValueProblemFormat   = "%s must not be negative, got %d"
	missingFunctionProblemFormat = "%s requires a non-nil function"
	multipleSortProblemFormat    = "at most one sort discipline may be supplied, got %d: %v"
	depthRangeProblemFormat      = "minimum depth %d exceeds maximum depth %d"
	unknownOptionProblemMessage  = "zero Option value supplied; construct options with the provided functions"
)

// Option is one traversal policy setting. Options are created by the
// functions in this file and passed to Builder.WithTraversalOption.
type Option struct {
	kind    optionKind
	name    string
	value   int
	compare func(left, right *Entry) int
}

// ContentsFirst yields a directory after its contents instead of before.
func ContentsFirst() Option {
	return Option{kind: optionContentsFirst, name: contentsFirstOptionName}
}

// FollowLinks descends into directories reached through symbolic links.
func FollowLinks() Option {
	return Option{kind: optionFollowLinks, name: followLinksOptionName}
}

// MaxDepth stops descent below depth. The root has depth 0.
func MaxDepth(depth int) Option {
	return Option{kind: optionMaxDepth, name: maxDepthOptionName, value: depth}
}

// MaxOpen bounds the number of directory handles held open at once. Zero is treated as one.
func MaxOpen(handles int) Option {
	return Option{kind: optionMaxOpen, name: maxOpenOptionName, value: handles}
}

// MinDepth omits entries shallower than depth. Shallower directories are still descended.
func MinDepth(depth int) Option {
	return Option{kind: optionMinDepth, name: minDepthOptionName, value: depth}
}

// SameFileSystem does not descend into directories on a different device than the root.
func SameFileSystem() Option {
	return Option{kind: optionSameFileSystem, name: sameFileSystemOptionName}
}

// SortBy orders the children of every directory with compare.
func SortBy(compare func(left, right *Entry) int) Option {
	return Option{kind: optionSort, name: sortByOptionName, compare: compare}
}

// SortByFileName orders the children of every directory by name.
func SortByFileName() Option {
	return Option{kind: optionSort, name: sortByFileNameOptionName, compare: traversal.CompareFileNames}
}

// SortByKey orders the children of every directory by the key extracted from each entry.
func SortByKey[K cmp.Ordered](key func(*Entry) K) Option {
	option := Option{kind: optionSort, name: sortByKeyOptionName}
	if key != nil {
		option.compare = traversal.CompareByKey(key)
	}
	return option
}

// String renders the option for diagnostics.
func (option Option) String() string {
	switch option.kind {
	case optionMaxDepth, optionMaxOpen, optionMinDepth:
		return fmt.Sprintf(scalarOptionFormat, option.name, option.value)
	case 0:
		return unknownOptionName
	default:
		return option.name
	}
}

// compilePolicy folds options into a provider policy and returns every problem found.
func compilePolicy(options []Option) (traversal.Policy, []string) {
	policy := traversal.DefaultPolicy()
	var problems []string
	var sortOptions []string
	maxDepthSet := false

	for _, option := range options {
		switch option.kind {
		case optionContentsFirst:
			policy.ContentsFirst = true
		case optionFollowLinks:
			policy.FollowLinks = true
		case optionSameFileSystem:
			policy.SameFileSystem = true
		case optionMaxDepth, optionMinDepth, optionMaxOpen:
			if option.value < 0 {
				problems = append(problems, fmt.Sprintf(negativeValueProblemFormat, option.name, option.value))
				continue
			}
			switch option.kind {
			case optionMaxDepth:
				policy.MaxDepth = option.value
				maxDepthSet = true
			case optionMinDepth:
				policy.MinDepth = option.value
			default:
				policy.MaxOpen = option.value
			}
		case optionSort:
			sortOptions = append(sortOptions, option.name)
			if option.compare == nil {
				problems = append(problems, fmt.Sprintf(missingFunctionProblemFormat, option.name))
				continue
			}
			policy.Compare = option.compare
		default:
			problems = append(problems, unknownOptionProblemMessage)
		}
	}

	if len(sortOptions) > 1 {
		problems = append(problems, fmt.Sprintf(multipleSortProblemFormat, len(sortOptions), sortOptions))
	}
	if maxDepthSet && policy.MinDepth > policy.MaxDepth {
		problems = append(problems, fmt.Sprintf(depthRangeProblemFormat, policy.MinDepth, policy.MaxDepth))
	}
	return policy, problems
}
