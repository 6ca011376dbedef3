package output

import (
	"github.com/temirov/walktree"
	"github.com/temirov/walktree/internal/types"
	"github.com/temirov/walktree/internal/utils"
)

// BuildTreeNodes converts every root of tree into a rendered node hierarchy.
// Entries whose parent directory was not walked appear as additional top-level nodes.
func BuildTreeNodes(tree *walktree.Tree[types.NodeInfo], model string) []*types.TreeOutputNode {
	if tree == nil {
		return nil
	}
	var nodes []*types.TreeOutputNode
	for _, root := range tree.Roots() {
		nodes = append(nodes, buildTreeNode(tree, root, model))
	}
	return nodes
}

func buildTreeNode(tree *walktree.Tree[types.NodeInfo], identity walktree.NodeID, model string) *types.TreeOutputNode {
	info, _ := tree.DataByNode(identity)
	node := &types.TreeOutputNode{
		Path:         info.Path,
		Name:         info.Name,
		Type:         info.Type,
		SizeBytes:    info.SizeBytes,
		LastModified: utils.FormatTimestamp(info.LastModified),
		MimeType:     info.MimeType,
		LinkTarget:   info.LinkTarget,
		Tokens:       info.Tokens,
	}
	if info.Counted {
		node.Model = model
	}
	if info.Type != types.NodeTypeDirectory {
		node.Size = utils.FormatFileSize(info.SizeBytes)
		return node
	}

	var totalBytes int64
	for _, child := range tree.Children(identity) {
		childNode := buildTreeNode(tree, child, model)
		node.Children = append(node.Children, childNode)
		if childNode.Type == types.NodeTypeDirectory {
			node.TotalFiles += childNode.TotalFiles
			node.TotalTokens += childNode.TotalTokens
			totalBytes += childNode.SizeBytes
			continue
		}
		if isCountedFile(childNode) {
			node.TotalFiles++
			node.TotalTokens += childNode.Tokens
			totalBytes += childNode.SizeBytes
		}
	}
	node.SizeBytes = totalBytes
	node.TotalSize = utils.FormatFileSize(totalBytes)
	return node
}

func isCountedFile(node *types.TreeOutputNode) bool {
	return node.Type == types.NodeTypeFile || node.Type == types.NodeTypeBinary
}

// ComputeSummary aggregates file counts, sizes and tokens over nodes.
func ComputeSummary(nodes []*types.TreeOutputNode, model string) *types.OutputSummary {
	var totalFiles int
	var totalBytes int64
	var totalTokens int
	for _, node := range nodes {
		if node == nil {
			continue
		}
		if node.Type == types.NodeTypeDirectory {
			totalFiles += node.TotalFiles
			totalTokens += node.TotalTokens
			totalBytes += node.SizeBytes
			continue
		}
		if isCountedFile(node) {
			totalFiles++
			totalTokens += node.Tokens
			totalBytes += node.SizeBytes
		}
	}
	summary := &types.OutputSummary{
		TotalFiles:  totalFiles,
		TotalSize:   utils.FormatFileSize(totalBytes),
		TotalTokens: totalTokens,
	}
	if totalTokens > 0 {
		summary.Model = model
	}
	return summary
}
