package commands

import (
	"io/fs"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/walktree"
	"github.com/temirov/walktree/internal/tokenizer"
	"github.com/temirov/walktree/internal/types"
	"github.com/temirov/walktree/internal/utils"
)

const (
	sniffFailedMessage      = "unable to classify file"
	tokenCountFailedMessage = "failed to count tokens"
	pathLogField            = "path"
)

// Inspector maps walked entries to the node information rendered by the tree command.
type Inspector struct {
	// Filesystem defaults to the OS filesystem.
	Filesystem   afero.Fs
	TokenCounter tokenizer.Counter
	Logger       *zap.Logger
}

// Inspect describes entry. Regular files are sniffed for binary content and,
// when a counter is configured, their text tokens are counted. Failures are
// logged and leave the affected fields empty.
func (inspector *Inspector) Inspect(entry *walktree.Entry) types.NodeInfo {
	info := types.NodeInfo{
		Path: entry.Path,
		Name: entry.Name,
		Type: types.NodeTypeFile,
	}
	if entry.IsSymlink {
		info.LinkTarget = entry.LinkTarget
	}
	if entry.Info != nil {
		info.LastModified = entry.Info.ModTime()
	}

	switch {
	case entry.IsDir():
		info.Type = types.NodeTypeDirectory
		return info
	case entry.Mode&fs.ModeSymlink != 0:
		info.Type = types.NodeTypeSymlink
		return info
	case !entry.Mode.IsRegular():
		return info
	}

	if entry.Info != nil {
		info.SizeBytes = entry.Info.Size()
	}
	filesystem := inspector.filesystem()
	sniff, sniffError := utils.SniffFile(filesystem, entry.Path)
	if sniffError != nil {
		inspector.logger().Warn(sniffFailedMessage, zap.String(pathLogField, entry.Path), zap.Error(sniffError))
		return info
	}
	info.MimeType = sniff.MimeType
	if sniff.Binary {
		info.Type = types.NodeTypeBinary
		return info
	}

	if inspector.TokenCounter == nil {
		return info
	}
	countResult, countError := tokenizer.CountFile(inspector.TokenCounter, filesystem, entry.Path)
	if countError != nil {
		inspector.logger().Warn(tokenCountFailedMessage, zap.String(pathLogField, entry.Path), zap.Error(countError))
		return info
	}
	info.Tokens = countResult.Tokens
	info.Counted = countResult.Counted
	return info
}

func (inspector *Inspector) filesystem() afero.Fs {
	if inspector.Filesystem == nil {
		inspector.Filesystem = afero.NewOsFs()
	}
	return inspector.Filesystem
}

func (inspector *Inspector) logger() *zap.Logger {
	if inspector.Logger == nil {
		return zap.NewNop()
	}
	return inspector.Logger
}
