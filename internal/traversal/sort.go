package traversal

import (
	"cmp"
	"strings"
)

// CompareFileNames orders entries by their final path element.
func CompareFileNames(left, right *Entry) int {
	return strings.Compare(left.Name, right.Name)
}

// CompareByKey builds a comparator from a key extractor.
func CompareByKey[K cmp.Ordered](key func(*Entry) K) func(left, right *Entry) int {
	return func(left, right *Entry) int {
		return cmp.Compare(key(left), key(right))
	}
}
