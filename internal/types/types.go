// Package types defines the data structures shared by the walktree command packages.
package types

import (
	"encoding/xml"
	"time"
)

const (
	NodeTypeFile      = "file"
	NodeTypeDirectory = "directory"
	NodeTypeBinary    = "binary"
	NodeTypeSymlink   = "symlink"

	CommandTree = "tree"
	CommandInit = "init"

	FormatRaw  = "raw"
	FormatJSON = "json"
	FormatXML  = "xml"

	SortByName     = "name"
	SortBySize     = "size"
	SortByModified = "modified"
	SortByNone     = "none"
)

// NodeInfo is the data the tree command stores for every walked entry.
type NodeInfo struct {
	Path         string
	Name         string
	Type         string
	SizeBytes    int64
	LastModified time.Time
	MimeType     string
	LinkTarget   string
	Tokens       int
	Counted      bool
}

// TreeOutputNode represents a node of a rendered directory tree.
type TreeOutputNode struct {
	XMLName      xml.Name          `json:"-" xml:"node"`
	Path         string            `json:"path" xml:"path"`
	Name         string            `json:"name" xml:"name"`
	Type         string            `json:"type" xml:"type"`
	Size         string            `json:"size,omitempty" xml:"size,omitempty"`
	SizeBytes    int64             `json:"-" xml:"-"`
	LastModified string            `json:"lastModified,omitempty" xml:"lastModified,omitempty"`
	MimeType     string            `json:"mimeType,omitempty" xml:"mimeType,omitempty"`
	LinkTarget   string            `json:"linkTarget,omitempty" xml:"linkTarget,omitempty"`
	Tokens       int               `json:"tokens,omitempty" xml:"tokens,omitempty"`
	Model        string            `json:"model,omitempty" xml:"model,omitempty"`
	Children     []*TreeOutputNode `json:"children,omitempty" xml:"children>node,omitempty"`
	TotalFiles   int               `json:"totalFiles,omitempty" xml:"totalFiles,omitempty"`
	TotalSize    string            `json:"totalSize,omitempty" xml:"totalSize,omitempty"`
	TotalTokens  int               `json:"totalTokens,omitempty" xml:"totalTokens,omitempty"`
}

// OutputSummary captures aggregate information about rendered files.
type OutputSummary struct {
	TotalFiles  int    `json:"totalFiles" xml:"totalFiles"`
	TotalSize   string `json:"totalSize" xml:"totalSize"`
	TotalTokens int    `json:"totalTokens,omitempty" xml:"totalTokens,omitempty"`
	Model       string `json:"model,omitempty" xml:"model,omitempty"`
}
