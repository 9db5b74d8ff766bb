package graph

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/nodeweave/pkg/document"
)

// GraphOverlay contains evaluation state to visualize on the graph.
type GraphOverlay struct {
	Evaluated []string
	Failed    []string
}

// TitleFunc resolves a display title for a node type. It may be nil.
type TitleFunc func(typeID string) string

// GenerateMermaid produces a Mermaid flowchart (left to right) from a graph
// document. Each node is a box labelled with its title and short instance id;
// each connection is an edge labelled "output → input". Shapes follow the
// node family:
// - const.*: ([Stadium])
// - print*: [/Parallelogram/]
// - scene.*: [[Subroutine]]
// - Default: [Rectangle]
func GenerateMermaid(doc *document.Document, title TitleFunc, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, item := range doc.Items {
		safeID := sanitizeMermaidID(item.InstanceID)

		opener, closer := "[", "]"
		switch {
		case strings.HasPrefix(item.TypeIdentifier, "const."):
			opener, closer = "([", "])"
		case strings.HasPrefix(item.TypeIdentifier, "print"):
			opener, closer = "[/", "/]"
		case strings.HasPrefix(item.TypeIdentifier, "scene."):
			opener, closer = "[[", "]]"
		}

		label := item.TypeIdentifier
		if title != nil {
			if t := title(item.TypeIdentifier); t != "" {
				label = t
			}
		}
		label = escape(label)
		fmt.Fprintf(&sb, "    %s%s\"%s<br/><small>%s</small>\"%s\n", safeID, opener, label, shortID(item.InstanceID), closer)
	}

	for _, item := range doc.Items {
		for _, input := range slices.Sorted(maps.Keys(item.Inputs)) {
			state := item.Inputs[input]
			if !state.Connected() {
				continue
			}
			fmt.Fprintf(&sb, "    %s -- \"%s → %s\" --> %s\n",
				sanitizeMermaidID(state.ConnectionTargetInstanceID),
				escape(state.ConnectionTargetOutputName), escape(input),
				sanitizeMermaidID(item.InstanceID))
		}
	}

	// Apply Overlay Styles
	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef evaluated fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#b71c1c,stroke-width:4px,color:#000;\n")

		writeClass(&sb, overlay.Evaluated, "evaluated")
		writeClass(&sb, overlay.Failed, "failed")
	}

	return sb.String()
}

func writeClass(sb *strings.Builder, ids []string, class string) {
	seen := make(map[string]bool)
	for _, id := range ids {
		safeID := sanitizeMermaidID(id)
		if safeID == "" || seen[safeID] {
			continue
		}
		seen[safeID] = true
		fmt.Fprintf(sb, "    class %s %s;\n", safeID, class)
	}
}

// shortID keeps the first uuid group.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
