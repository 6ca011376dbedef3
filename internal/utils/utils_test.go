package utils_test

import (
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/temirov/walktree/internal/utils"
)

func TestShouldIgnoreByPath(t *testing.T) {
	testCases := []struct {
		name         string
		relativePath string
		isDirectory  bool
		patterns     []string
		expected     bool
	}{
		{name: "name pattern at depth", relativePath: "src/app.log", patterns: []string{"*.log"}, expected: true},
		{name: "name pattern miss", relativePath: "src/app.go", patterns: []string{"*.log"}, expected: false},
		{name: "directory pattern matches directory", relativePath: "node_modules", isDirectory: true, patterns: []string{"node_modules/"}, expected: true},
		{name: "directory pattern matches nested directory", relativePath: "web/node_modules", isDirectory: true, patterns: []string{"node_modules/"}, expected: true},
		{name: "directory pattern skips file of same name", relativePath: "build", patterns: []string{"build/"}, expected: false},
		{name: "anchored directory pattern", relativePath: "subdir/node_modules", isDirectory: true, patterns: []string{"subdir/node_modules/"}, expected: true},
		{name: "anchored directory pattern descendant", relativePath: "subdir/node_modules/index.js", patterns: []string{"subdir/node_modules/"}, expected: true},
		{name: "anchored directory pattern elsewhere", relativePath: "other/subdir/node_modules/index.js", patterns: []string{"subdir/node_modules/"}, expected: false},
		{name: "backslash pattern", relativePath: "subdir/node_modules", isDirectory: true, patterns: []string{`subdir\node_modules\`}, expected: true},
		{name: "exact nested file", relativePath: "subdir/.clasp.json", patterns: []string{"subdir/.clasp.json"}, expected: true},
		{name: "exact nested file elsewhere", relativePath: "other/subdir/.clasp.json", patterns: []string{"subdir/.clasp.json"}, expected: false},
		{name: "exclusion prefix", relativePath: "vendor/lib/a.go", patterns: []string{utils.ExclusionPrefix + "vendor"}, expected: true},
		{name: "ignore files always excluded", relativePath: "pkg/.gitignore", expected: true},
		{name: "git directory pattern", relativePath: ".git", isDirectory: true, patterns: []string{".git/"}, expected: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			actual := utils.ShouldIgnoreByPath(testCase.relativePath, testCase.isDirectory, testCase.patterns)
			if actual != testCase.expected {
				t.Fatalf("ShouldIgnoreByPath(%q) = %v, expected %v", testCase.relativePath, actual, testCase.expected)
			}
		})
	}
}

func TestDeduplicatePatterns(t *testing.T) {
	actual := utils.DeduplicatePatterns([]string{"a", "b", "a", "c", "b"})
	if !slices.Equal(actual, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected patterns %v", actual)
	}
}

func TestRelativePathOrSelf(t *testing.T) {
	root := filepath.FromSlash("/work/project")
	testCases := []struct {
		name     string
		fullPath string
		expected string
	}{
		{name: "same directory", fullPath: root, expected: "."},
		{name: "nested", fullPath: filepath.Join(root, "a", "b"), expected: "a/b"},
		{name: "outside root", fullPath: filepath.FromSlash("/work/other"), expected: "../other"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if actual := utils.RelativePathOrSelf(testCase.fullPath, root); actual != testCase.expected {
				t.Fatalf("expected %s, got %s", testCase.expected, actual)
			}
		})
	}
}

func TestFormatFileSize(t *testing.T) {
	testCases := []struct {
		name     string
		bytes    int64
		expected string
	}{
		{name: "negative", bytes: -1, expected: "0b"},
		{name: "zero", bytes: 0, expected: "0b"},
		{name: "bytes", bytes: 512, expected: "512b"},
		{name: "one kilobyte", bytes: 1024, expected: "1kb"},
		{name: "fractional kilobyte", bytes: 1536, expected: "1.5kb"},
		{name: "ten megabytes", bytes: 10 * 1024 * 1024, expected: "10mb"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if result := utils.FormatFileSize(testCase.bytes); result != testCase.expected {
				t.Fatalf("expected %s, got %s", testCase.expected, result)
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	if result := utils.FormatTimestamp(time.Time{}); result != "" {
		t.Fatalf("expected empty string for zero time, got %q", result)
	}
	value := time.Date(2024, time.January, 2, 15, 4, 0, 0, time.Local)
	if result := utils.FormatTimestamp(value); result != "2024-01-02 15:04" {
		t.Fatalf("unexpected timestamp %q", result)
	}
}

func TestSniffFile(t *testing.T) {
	filesystem := afero.NewMemMapFs()
	if err := afero.WriteFile(filesystem, "/text.txt", []byte("plain text"), 0o644); err != nil {
		t.Fatalf("write text: %v", err)
	}
	if err := afero.WriteFile(filesystem, "/blob.bin", []byte{0x00, 0x01, 0xff}, 0o644); err != nil {
		t.Fatalf("write binary: %v", err)
	}

	text, err := utils.SniffFile(filesystem, "/text.txt")
	if err != nil {
		t.Fatalf("sniff text: %v", err)
	}
	if text.Binary || text.MimeType != "text/plain; charset=utf-8" {
		t.Fatalf("unexpected text sniff %+v", text)
	}

	binary, err := utils.SniffFile(filesystem, "/blob.bin")
	if err != nil {
		t.Fatalf("sniff binary: %v", err)
	}
	if !binary.Binary {
		t.Fatalf("expected binary classification")
	}

	missing, err := utils.SniffFile(filesystem, "/missing")
	if err == nil || missing.MimeType != utils.UnknownMimeType {
		t.Fatalf("expected error and unknown mime type, got %+v, %v", missing, err)
	}
}
