package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"github.com/temirov/walktree/internal/utils"
)

const (
	// gitDirectoryPattern represents the pattern that matches the Git directory.
	gitDirectoryPattern = utils.GitDirectoryName + "/"
	commentPrefix       = "#"
	negationPrefix      = "!"
	// sectionHeaderPrefix starts lines such as "[binary]" that group patterns for other tools.
	sectionHeaderPrefix = "["
	ignoreSectionHeader = "[ignore]"

	loadIgnoreFileErrorFormat = "loading %s from %s: %w"
)

// LoadIgnoreFilePatterns reads the ignore file at ignoreFilePath. A missing file yields no patterns.
// Comments, negations, and patterns outside the default or [ignore] section are skipped.
func LoadIgnoreFilePatterns(filesystem afero.Fs, ignoreFilePath string) ([]string, error) {
	fileHandle, openFileError := filesystem.Open(ignoreFilePath)
	if openFileError != nil {
		if errors.Is(openFileError, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, openFileError
	}
	defer func() {
		if closeError := fileHandle.Close(); closeError != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close %s: %v\n", ignoreFilePath, closeError)
		}
	}()

	var ignorePatterns []string
	inIgnoreSection := true
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
			continue
		}
		if strings.HasPrefix(trimmedLine, sectionHeaderPrefix) {
			inIgnoreSection = strings.EqualFold(trimmedLine, ignoreSectionHeader)
			continue
		}
		if !inIgnoreSection || strings.HasPrefix(trimmedLine, negationPrefix) {
			continue
		}
		ignorePatterns = append(ignorePatterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, scanError
	}
	return ignorePatterns, nil
}

// IgnoreOptions selects which ignore sources contribute patterns.
type IgnoreOptions struct {
	ExclusionPatterns []string
	UseGitignore      bool
	UseIgnoreFile     bool
	IncludeGit        bool
}

// LoadRecursiveIgnorePatterns walks rootDirectoryPath and aggregates ignore patterns.
// Patterns found in a nested directory are prefixed with that directory's path
// relative to the root. The .git directory is ignored unless IncludeGit is set.
// Unreadable nested directories are skipped. Exclusion patterns are appended last.
func LoadRecursiveIgnorePatterns(filesystem afero.Fs, rootDirectoryPath string, options IgnoreOptions) ([]string, error) {
	var aggregatedPatterns []string

	sources := make([]string, 0, 2)
	if options.UseIgnoreFile {
		sources = append(sources, utils.IgnoreFileName)
	}
	if options.UseGitignore {
		sources = append(sources, utils.GitIgnoreFileName)
	}

	walkFunction := func(currentPath string, info fs.FileInfo, walkError error) error {
		if walkError != nil {
			if currentPath != rootDirectoryPath && errors.Is(walkError, fs.ErrPermission) {
				return filepath.SkipDir
			}
			return walkError
		}
		if !info.IsDir() {
			return nil
		}
		if !options.IncludeGit && info.Name() == utils.GitDirectoryName {
			return filepath.SkipDir
		}

		prefix := ""
		if relativeDirectory := utils.RelativePathOrSelf(currentPath, rootDirectoryPath); relativeDirectory != "." {
			prefix = relativeDirectory + "/"
		}
		for _, sourceName := range sources {
			patterns, loadError := LoadIgnoreFilePatterns(filesystem, filepath.Join(currentPath, sourceName))
			if loadError != nil {
				return fmt.Errorf(loadIgnoreFileErrorFormat, sourceName, currentPath, loadError)
			}
			for _, pattern := range patterns {
				aggregatedPatterns = append(aggregatedPatterns, prefix+pattern)
			}
		}
		return nil
	}

	if len(sources) > 0 {
		if walkError := afero.Walk(filesystem, rootDirectoryPath, walkFunction); walkError != nil {
			return nil, walkError
		}
	}

	if !options.IncludeGit {
		aggregatedPatterns = append(aggregatedPatterns, gitDirectoryPattern)
	}

	deduplicatedPatterns := utils.DeduplicatePatterns(aggregatedPatterns)
	for _, pattern := range options.ExclusionPatterns {
		trimmedPattern := strings.TrimSpace(pattern)
		if trimmedPattern == "" {
			continue
		}
		if !slices.Contains(deduplicatedPatterns, trimmedPattern) {
			deduplicatedPatterns = append(deduplicatedPatterns, trimmedPattern)
		}
	}
	return deduplicatedPatterns, nil
}
