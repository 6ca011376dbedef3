package utils

import (
	"path/filepath"
	"strings"
)

const pathSegmentSeparator = "/"

var serviceFiles = map[string]struct{}{
	IgnoreFileName:    {},
	GitIgnoreFileName: {},
}

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// RelativePathOrSelf returns fullPath relative to root in forward-slash form,
// "." when both are the same directory, and the cleaned fullPath when no
// relative form exists.
func RelativePathOrSelf(fullPath, root string) string {
	cleanPath := filepath.Clean(fullPath)
	cleanRoot := filepath.Clean(root)
	if cleanPath == cleanRoot {
		return "."
	}
	relativePath, relativeError := filepath.Rel(cleanRoot, cleanPath)
	if relativeError != nil {
		return cleanPath
	}
	return filepath.ToSlash(relativePath)
}

// ShouldIgnoreByPath reports whether a path relative to the walk root is
// excluded by ignorePatterns. Paths and patterns are compared in forward-slash
// form, one segment at a time with filepath.Match semantics:
//   - "name" without a slash matches the last segment at any depth;
//   - "dir/" matches the directory dir and everything below it;
//   - "a/b" matches exactly that path;
//   - "EXCL:a/b" matches a/b and everything below it, file or directory.
//
// Ignore files themselves are always excluded.
func ShouldIgnoreByPath(relativePath string, isDirectory bool, ignorePatterns []string) bool {
	normalizedPath := strings.ReplaceAll(relativePath, "\\", pathSegmentSeparator)
	pathSegments := strings.Split(normalizedPath, pathSegmentSeparator)
	lastSegment := pathSegments[len(pathSegments)-1]

	if _, isServiceFile := serviceFiles[lastSegment]; isServiceFile && !isDirectory {
		return true
	}

	for _, patternValue := range ignorePatterns {
		normalizedPattern := strings.ReplaceAll(patternValue, "\\", pathSegmentSeparator)

		if exclusionPattern, isExclusion := strings.CutPrefix(normalizedPattern, ExclusionPrefix); isExclusion {
			exclusionSegments := strings.Split(strings.TrimSuffix(exclusionPattern, pathSegmentSeparator), pathSegmentSeparator)
			if len(pathSegments) >= len(exclusionSegments) && segmentsMatch(pathSegments[:len(exclusionSegments)], exclusionSegments) {
				return true
			}
			continue
		}

		trimmedPattern, isDirectoryPattern := strings.CutSuffix(normalizedPattern, pathSegmentSeparator)
		patternSegments := strings.Split(trimmedPattern, pathSegmentSeparator)

		if isDirectoryPattern {
			if directoryPatternMatches(pathSegments, patternSegments, isDirectory) {
				return true
			}
			continue
		}

		if len(patternSegments) == 1 {
			isMatched, matchError := filepath.Match(patternSegments[0], lastSegment)
			if matchError == nil && isMatched {
				return true
			}
			continue
		}

		if len(pathSegments) == len(patternSegments) && segmentsMatch(pathSegments, patternSegments) {
			return true
		}
	}

	return false
}

// directoryPatternMatches handles "dir/" patterns. A single-segment pattern
// matches a directory of that name at any depth; a nested pattern is anchored
// at the walk root.
func directoryPatternMatches(pathSegments, patternSegments []string, isDirectory bool) bool {
	if len(patternSegments) == 1 {
		for segmentIndex, pathSegment := range pathSegments {
			isLast := segmentIndex == len(pathSegments)-1
			if isLast && !isDirectory {
				return false
			}
			if isMatched, matchError := filepath.Match(patternSegments[0], pathSegment); matchError == nil && isMatched {
				return true
			}
		}
		return false
	}
	if len(pathSegments) < len(patternSegments) {
		return false
	}
	if len(pathSegments) == len(patternSegments) && !isDirectory {
		return false
	}
	return segmentsMatch(pathSegments[:len(patternSegments)], patternSegments)
}

// segmentsMatch reports whether each pattern segment matches the corresponding
// path segment using filepath.Match semantics.
func segmentsMatch(pathSegments, patternSegments []string) bool {
	for segmentIndex, patternSegment := range patternSegments {
		isMatched, matchError := filepath.Match(patternSegment, pathSegments[segmentIndex])
		if matchError != nil || !isMatched {
			return false
		}
	}
	return true
}
