package traversal

import (
	"context"
	"errors"
	"math"
)

const (
	// Unlimited disables the maximum depth bound.
	Unlimited = math.MaxInt
	// DefaultMaxOpen is the number of directory handles kept open when no limit is configured.
	DefaultMaxOpen = 10
)

var (
	// ErrLinkLoop reports a followed symbolic link that resolves to one of its ancestors.
	ErrLinkLoop = errors.New("symbolic link loop")
	// ErrNilVisitor is returned when Walk is called without a visit function.
	ErrNilVisitor = errors.New("traversal: visit function is nil")
)

// VisitFunc receives every produced entry in order. A non-nil err reports a
// path that could not be produced; entry then carries only Path, Name, and
// Depth. Returning a non-nil error stops the walk and Walk returns it.
type VisitFunc func(entry Entry, err error) error

// Provider produces the entries below root.
type Provider interface {
	Walk(ctx context.Context, root string, policy Policy, visit VisitFunc) error
}

// Policy controls which entries a Provider produces and in what order.
type Policy struct {
	// ContentsFirst yields a directory after its contents.
	ContentsFirst bool
	// FollowLinks resolves symbolic links and descends into linked directories.
	FollowLinks bool
	// SameFileSystem refuses to descend into directories on another device than the root.
	SameFileSystem bool
	// MinDepth suppresses entries shallower than this depth. They are still descended.
	MinDepth int
	// MaxDepth bounds the depth of produced entries. Negative values mean Unlimited.
	MaxDepth int
	// MaxOpen bounds the number of simultaneously open directory handles.
	MaxOpen int
	// Compare orders the entries of each directory before they are produced.
	Compare func(left, right *Entry) int
	// Filter reports whether an entry is kept. A rejected directory is not
	// descended, so none of its contents are produced.
	Filter func(entry *Entry) bool
}

// DefaultPolicy returns a policy without depth bounds that keeps DefaultMaxOpen handles.
func DefaultPolicy() Policy {
	return Policy{
		MaxDepth: Unlimited,
		MaxOpen:  DefaultMaxOpen,
	}
}

func (policy Policy) normalized() Policy {
	if policy.MaxDepth < 0 {
		policy.MaxDepth = Unlimited
	}
	if policy.MinDepth < 0 {
		policy.MinDepth = 0
	}
	if policy.MaxOpen < 1 {
		policy.MaxOpen = 1
	}
	return policy
}
