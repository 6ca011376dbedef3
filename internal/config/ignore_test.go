package config

import (
	"path/filepath"
	"slices"
	"testing"

	"github.com/spf13/afero"

	"github.com/temirov/walktree/internal/utils"
)

func TestLoadIgnoreFilePatterns(t *testing.T) {
	filesystem := afero.NewMemMapFs()
	content := "# comment\n\n*.log\n!keep.log\nbuild/\n[binary]\nimage.png\n[ignore]\ntmp/\n"
	writeConfiguration(t, filesystem, "/project/.ignore", content)

	patterns, err := LoadIgnoreFilePatterns(filesystem, "/project/.ignore")
	if err != nil {
		t.Fatalf("LoadIgnoreFilePatterns error: %v", err)
	}
	if !slices.Equal(patterns, []string{"*.log", "build/", "tmp/"}) {
		t.Fatalf("unexpected patterns %v", patterns)
	}

	missing, err := LoadIgnoreFilePatterns(filesystem, "/project/missing")
	if err != nil || missing != nil {
		t.Fatalf("missing file should yield no patterns, got %v, %v", missing, err)
	}
}

func TestLoadRecursiveIgnorePatterns(t *testing.T) {
	const rootDirectory = "/project"

	testCases := []struct {
		name     string
		options  IgnoreOptions
		expected []string
	}{
		{
			name:     "ignore_files_only",
			options:  IgnoreOptions{UseIgnoreFile: true},
			expected: []string{"root.txt", "nested/nested.txt", gitDirectoryPattern},
		},
		{
			name:     "gitignore_only",
			options:  IgnoreOptions{UseGitignore: true},
			expected: []string{"root.md", "nested/nested.md", gitDirectoryPattern},
		},
		{
			name:     "include_git_and_exclusions",
			options:  IgnoreOptions{UseIgnoreFile: true, IncludeGit: true, ExclusionPatterns: []string{" dist ", "", "root.txt"}},
			expected: []string{"root.txt", ".git/hidden", "nested/nested.txt", "dist"},
		},
		{
			name:     "no_sources",
			options:  IgnoreOptions{},
			expected: []string{gitDirectoryPattern},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			filesystem := afero.NewMemMapFs()
			writeConfiguration(t, filesystem, filepath.Join(rootDirectory, utils.IgnoreFileName), "root.txt\n")
			writeConfiguration(t, filesystem, filepath.Join(rootDirectory, utils.GitIgnoreFileName), "root.md\n")
			writeConfiguration(t, filesystem, filepath.Join(rootDirectory, "nested", utils.IgnoreFileName), "nested.txt\n")
			writeConfiguration(t, filesystem, filepath.Join(rootDirectory, "nested", utils.GitIgnoreFileName), "nested.md\n")
			writeConfiguration(t, filesystem, filepath.Join(rootDirectory, utils.GitDirectoryName, utils.IgnoreFileName), "hidden\n")

			patterns, err := LoadRecursiveIgnorePatterns(filesystem, rootDirectory, testCase.options)
			if err != nil {
				t.Fatalf("LoadRecursiveIgnorePatterns error: %v", err)
			}
			if !slices.Equal(patterns, testCase.expected) {
				t.Fatalf("unexpected patterns: got %v want %v", patterns, testCase.expected)
			}
		})
	}
}
