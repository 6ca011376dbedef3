package output

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/disiqueira/gotree/v3"

	"github.com/temirov/walktree/internal/types"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	xmlHeader = xml.Header

	fileLabelFormat          = "[File] %s"
	fileTokensLabelFormat    = "[File] %s (%d tokens)"
	binaryLabelFormat        = "[Binary] %s (Mime Type: %s)"
	symlinkLabelFormat       = "[Link] %s -> %s"
	directorySummaryFormat   = "%s (%d %s, %s%s)"
	tokenSuffixFormat        = ", %d tokens"
	modelSuffixFormat        = " (model: %s)"
	summaryLineFormat        = "Summary: %d %s, %s%s%s"
	singularFileLabel        = "file"
	pluralFileLabel          = "files"
	unsupportedFormatMessage = "unsupported output format %q"
)

// Render writes nodes to writer in format.
func Render(writer io.Writer, format string, nodes []*types.TreeOutputNode, summary *types.OutputSummary) error {
	switch format {
	case types.FormatJSON:
		rendered, renderError := RenderJSON(nodes, summary)
		if renderError != nil {
			return renderError
		}
		_, writeError := fmt.Fprintln(writer, rendered)
		return writeError
	case types.FormatXML:
		rendered, renderError := RenderXML(nodes, summary)
		if renderError != nil {
			return renderError
		}
		_, writeError := fmt.Fprintln(writer, rendered)
		return writeError
	case types.FormatRaw:
		_, writeError := io.WriteString(writer, RenderRaw(nodes, summary))
		return writeError
	default:
		return fmt.Errorf(unsupportedFormatMessage, format)
	}
}

type jsonDocument struct {
	Summary *types.OutputSummary    `json:"summary,omitempty"`
	Trees   []*types.TreeOutputNode `json:"trees"`
}

// RenderJSON marshals nodes as JSON. A single tree without a summary is
// rendered as one object, several trees as an array; a summary wraps them in a document.
func RenderJSON(nodes []*types.TreeOutputNode, summary *types.OutputSummary) (string, error) {
	var value any
	switch {
	case summary != nil:
		value = jsonDocument{Summary: summary, Trees: nonNilNodes(nodes)}
	case len(nodes) == 1:
		value = nodes[0]
	default:
		value = nonNilNodes(nodes)
	}
	encoded, jsonEncodeError := json.MarshalIndent(value, indentPrefix, indentSpacer)
	return string(encoded), jsonEncodeError
}

type xmlDocument struct {
	XMLName xml.Name                `xml:"result"`
	Summary *types.OutputSummary    `xml:"summary,omitempty"`
	Nodes   []*types.TreeOutputNode `xml:"node"`
}

// RenderXML marshals nodes as an XML document. A single tree without a summary is the document root.
func RenderXML(nodes []*types.TreeOutputNode, summary *types.OutputSummary) (string, error) {
	var value any = xmlDocument{Summary: summary, Nodes: nonNilNodes(nodes)}
	if summary == nil && len(nodes) == 1 {
		value = nodes[0]
	}
	encoded, xmlMarshalError := xml.MarshalIndent(value, indentPrefix, indentSpacer)
	if xmlMarshalError != nil {
		return "", xmlMarshalError
	}
	return xmlHeader + string(encoded), nil
}

// RenderRaw draws every tree with box-drawing connectors. Directory labels
// carry their totals when summary is set.
func RenderRaw(nodes []*types.TreeOutputNode, summary *types.OutputSummary) string {
	var builder strings.Builder
	if summary != nil {
		builder.WriteString(FormatSummaryLine(summary))
		builder.WriteString("\n\n")
	}
	for _, node := range nodes {
		if node == nil {
			continue
		}
		visual := gotree.New(nodeLabel(node, node.Path, summary != nil))
		addChildren(visual, node, summary != nil)
		builder.WriteString(visual.Print())
	}
	return builder.String()
}

func addChildren(visual gotree.Tree, node *types.TreeOutputNode, includeSummary bool) {
	for _, child := range node.Children {
		if child == nil {
			continue
		}
		branch := visual.Add(nodeLabel(child, child.Name, includeSummary))
		addChildren(branch, child, includeSummary)
	}
}

func nodeLabel(node *types.TreeOutputNode, name string, includeSummary bool) string {
	switch node.Type {
	case types.NodeTypeFile:
		if node.Tokens > 0 {
			return fmt.Sprintf(fileTokensLabelFormat, name, node.Tokens)
		}
		return fmt.Sprintf(fileLabelFormat, name)
	case types.NodeTypeBinary:
		return fmt.Sprintf(binaryLabelFormat, name, node.MimeType)
	case types.NodeTypeSymlink:
		return fmt.Sprintf(symlinkLabelFormat, name, node.LinkTarget)
	}
	if !includeSummary {
		return name
	}
	tokenSuffix := ""
	if node.TotalTokens > 0 {
		tokenSuffix = fmt.Sprintf(tokenSuffixFormat, node.TotalTokens)
	}
	return fmt.Sprintf(directorySummaryFormat, name, node.TotalFiles, fileLabel(node.TotalFiles), node.TotalSize, tokenSuffix)
}

// FormatSummaryLine formats an OutputSummary into the raw summary line.
func FormatSummaryLine(summary *types.OutputSummary) string {
	if summary == nil {
		summary = &types.OutputSummary{}
	}
	extra := ""
	if summary.TotalTokens > 0 {
		extra = fmt.Sprintf(tokenSuffixFormat, summary.TotalTokens)
	}
	modelSuffix := ""
	if summary.Model != "" {
		modelSuffix = fmt.Sprintf(modelSuffixFormat, summary.Model)
	}
	return fmt.Sprintf(summaryLineFormat, summary.TotalFiles, fileLabel(summary.TotalFiles), summary.TotalSize, extra, modelSuffix)
}

func fileLabel(count int) string {
	if count == 1 {
		return singularFileLabel
	}
	return pluralFileLabel
}

func nonNilNodes(nodes []*types.TreeOutputNode) []*types.TreeOutputNode {
	filtered := make([]*types.TreeOutputNode, 0, len(nodes))
	for _, node := range nodes {
		if node != nil {
			filtered = append(filtered, node)
		}
	}
	return filtered
}
