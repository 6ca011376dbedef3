package walktree

import (
	"fmt"
	"strings"
)

// ErrorPolicy decides what happens when the traversal cannot read an entry.
type ErrorPolicy int

const (
	// CollectErrors keeps walking, records every failure on the Tree, and returns the best-effort tree.
	CollectErrors ErrorPolicy = iota
	// AbortOnError stops at the first failure and returns it without a tree.
	AbortOnError
)

const (
	configurationErrorPrefix = "walktree: invalid configuration: "
	configurationProblemSep  = "; "
	traversalErrorFormat     = "walktree: traverse %s: %v"
	duplicatePathErrorFormat = "walktree: duplicate path %s at positions %d and %d"
	errorPolicyCollectName   = "collect"
	errorPolicyAbortName     = "abort"
	errorPolicyUnknownFormat = "ErrorPolicy(%d)"
)

// String returns the policy name.
func (policy ErrorPolicy) String() string {
	switch policy {
	case CollectErrors:
		return errorPolicyCollectName
	case AbortOnError:
		return errorPolicyAbortName
	default:
		return fmt.Sprintf(errorPolicyUnknownFormat, int(policy))
	}
}

// ConfigurationError lists every problem found while validating a Builder.
// It is returned before any traversal takes place.
type ConfigurationError struct {
	Problems []string
}

func (configurationError *ConfigurationError) Error() string {
	return configurationErrorPrefix + strings.Join(configurationError.Problems, configurationProblemSep)
}

// TraversalError reports an entry the provider failed to read.
type TraversalError struct {
	Path  string
	Depth int
	Err   error
}

func (traversalError *TraversalError) Error() string {
	return fmt.Sprintf(traversalErrorFormat, traversalError.Path, traversalError.Err)
}

// Unwrap returns the provider's cause.
func (traversalError *TraversalError) Unwrap() error {
	return traversalError.Err
}

// DuplicatePathError reports two entries that share one path. Positions are
// sequence positions in traversal order.
type DuplicatePathError struct {
	Path           string
	FirstPosition  int
	SecondPosition int
}

func (duplicatePathError *DuplicatePathError) Error() string {
	return fmt.Sprintf(duplicatePathErrorFormat, duplicatePathError.Path, duplicatePathError.FirstPosition, duplicatePathError.SecondPosition)
}
