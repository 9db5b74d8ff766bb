package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/nodeweave/pkg/registry"
	"github.com/aretw0/nodeweave/pkg/schema"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// The style follows the terminal background.
func NewRenderer() (func(string) (string, error), error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}

// TypeCatalog describes registered node types as Markdown, one section per type.
func TypeCatalog(entries []registry.Entry) string {
	var sb strings.Builder
	sb.WriteString("# Node types\n\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "## %s\n\n`%s`\n\n", e.Title, e.TypeID)
		writePorts(&sb, "Inputs", e.Signature.Inputs)
		writePorts(&sb, "Outputs", e.Signature.Outputs)
	}
	return sb.String()
}

func writePorts(sb *strings.Builder, heading string, defs []schema.PortDef) {
	if len(defs) == 0 {
		fmt.Fprintf(sb, "_No %s._\n\n", strings.ToLower(heading))
		return
	}
	fmt.Fprintf(sb, "| %s | Kind |\n|---|---|\n", heading)
	for _, d := range defs {
		fmt.Fprintf(sb, "| %s | %s |\n", d.Name, d.Kind)
	}
	sb.WriteString("\n")
}
