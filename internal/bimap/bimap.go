// Package bimap implements a one-to-one mapping queryable from both sides.
package bimap

import (
	"errors"
	"fmt"
	"iter"
)

var (
	// ErrLeftExists is returned when the left key is already mapped.
	ErrLeftExists = errors.New("bimap: left key already present")
	// ErrRightExists is returned when the right key is already mapped.
	ErrRightExists = errors.New("bimap: right key already present")
)

// BiMap keeps forward and reverse maps in lockstep. Insertion never overwrites.
type BiMap[L comparable, R comparable] struct {
	forward map[L]R
	reverse map[R]L
}

// New returns an empty BiMap sized for capacity pairs.
func New[L comparable, R comparable](capacity int) *BiMap[L, R] {
	if capacity < 0 {
		capacity = 0
	}
	return &BiMap[L, R]{
		forward: make(map[L]R, capacity),
		reverse: make(map[R]L, capacity),
	}
}

// Insert adds the pair unless either side is already mapped.
func (mapping *BiMap[L, R]) Insert(left L, right R) error {
	if _, exists := mapping.forward[left]; exists {
		return fmt.Errorf("%w: %v", ErrLeftExists, left)
	}
	if _, exists := mapping.reverse[right]; exists {
		return fmt.Errorf("%w: %v", ErrRightExists, right)
	}
	mapping.forward[left] = right
	mapping.reverse[right] = left
	return nil
}

// GetByLeft returns the right value mapped to left.
func (mapping *BiMap[L, R]) GetByLeft(left L) (R, bool) {
	right, ok := mapping.forward[left]
	return right, ok
}

// GetByRight returns the left value mapped to right.
func (mapping *BiMap[L, R]) GetByRight(right R) (L, bool) {
	left, ok := mapping.reverse[right]
	return left, ok
}

// ContainsLeft reports whether left is mapped.
func (mapping *BiMap[L, R]) ContainsLeft(left L) bool {
	_, ok := mapping.forward[left]
	return ok
}

// ContainsRight reports whether right is mapped.
func (mapping *BiMap[L, R]) ContainsRight(right R) bool {
	_, ok := mapping.reverse[right]
	return ok
}

// Len returns the number of pairs.
func (mapping *BiMap[L, R]) Len() int {
	return len(mapping.forward)
}

// All yields every pair. Iteration order is unspecified.
func (mapping *BiMap[L, R]) All() iter.Seq2[L, R] {
	return func(yield func(L, R) bool) {
		for left, right := range mapping.forward {
			if !yield(left, right) {
				return
			}
		}
	}
}
