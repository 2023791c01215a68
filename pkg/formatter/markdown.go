package formatter

import (
	"fmt"
	"strings"

	"github.com/hellenic-development/layer-prep/pkg/host"
	"github.com/hellenic-development/layer-prep/pkg/layer"
)

// ToMarkdown renders the document's layer tree as a markdown report: a
// summary table, the indented tree, and the groups the masks and flatten
// actions would act on.
func ToMarkdown(doc host.Document) string {
	var sb strings.Builder
	roots := doc.Layers()
	candidates := layer.FindLayers(roots)

	sb.WriteString(fmt.Sprintf("# Layer Report - %s\n\n", doc.Name()))

	total, groups, masked := 0, 0, 0
	layer.Walk(roots, func(n *layer.Node, _ int) bool {
		total++
		if n.IsGroup() {
			groups++
		}
		if n.HasMask {
			masked++
		}
		return true
	})

	sb.WriteString("| Property | Value |\n")
	sb.WriteString("|----------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Canvas | %dx%d |\n", doc.Width(), doc.Height()))
	sb.WriteString(fmt.Sprintf("| Layers | %d |\n", total))
	sb.WriteString(fmt.Sprintf("| Groups | %d |\n", groups))
	sb.WriteString(fmt.Sprintf("| Masked | %d |\n", masked))
	sb.WriteString(fmt.Sprintf("| Candidates | %d |\n", len(candidates)))
	sb.WriteString("\n")

	sb.WriteString("## Layer Tree\n\n")
	if total == 0 {
		sb.WriteString("_No layers._\n\n")
	} else {
		sb.WriteString("```\n")
		layer.Walk(roots, func(n *layer.Node, depth int) bool {
			sb.WriteString(strings.Repeat("  ", depth))
			sb.WriteString(formatNode(n))
			sb.WriteString("\n")
			return true
		})
		sb.WriteString("```\n\n")
	}

	sb.WriteString("## Candidates\n\n")
	if len(candidates) == 0 {
		sb.WriteString("_No `_SWIPE` or `_MERGE` groups found._\n")
		return sb.String()
	}

	sb.WriteString("| Layer | Suffix | Flattened Name | Bounds |\n")
	sb.WriteString("|-------|--------|----------------|--------|\n")
	for _, n := range candidates {
		sb.WriteString(fmt.Sprintf("| %s | `%s` | %s | %s |\n",
			n.Name, layer.MatchSuffix(n.Name), layer.StripSuffixes(n.Name), formatBounds(n.Bounds)))
	}

	return sb.String()
}

func formatNode(n *layer.Node) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s [%s] %s", n.Name, n.Kind, formatBounds(n.Bounds)))
	if n.HasMask {
		sb.WriteString(" mask")
	}
	if layer.IsCandidate(n) {
		sb.WriteString(" *")
	}
	return sb.String()
}

func formatBounds(b layer.Bounds) string {
	if b.Empty() {
		return "(empty)"
	}
	return fmt.Sprintf("(%d,%d)-(%d,%d) %dx%d", b.Left, b.Top, b.Right, b.Bottom, b.Width(), b.Height())
}
