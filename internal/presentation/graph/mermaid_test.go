package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/nodeweave/internal/presentation/graph"
	"github.com/aretw0/nodeweave/pkg/document"
)

func TestGenerateMermaid(t *testing.T) {
	titles := func(typeID string) string {
		if typeID == "math.add" {
			return "Add"
		}
		return ""
	}

	tests := []struct {
		name     string
		items    []document.Item
		overlay  *graph.GraphOverlay
		contains []string
		excludes []string
	}{
		{
			name: "Node Shapes",
			items: []document.Item{
				{TypeIdentifier: "const.integer", InstanceID: "k"},
				{TypeIdentifier: "print", InstanceID: "p"},
				{TypeIdentifier: "scene.joint", InstanceID: "j"},
				{TypeIdentifier: "math.add", InstanceID: "a"},
			},
			contains: []string{
				"graph LR\n",
				`k(["const.integer<br/><small>k</small>"])`,
				`p[/"print<br/><small>p</small>"/]`,
				`j[["scene.joint<br/><small>j</small>"]]`,
				`a["Add<br/><small>a</small>"]`,
			},
		},
		{
			name: "ID Sanitization",
			items: []document.Item{
				{TypeIdentifier: "logic.not", InstanceID: "5f0c2d7e-9a1b-4c3d-8e2f-000000000001"},
			},
			contains: []string{
				`5f0c2d7e_9a1b_4c3d_8e2f_000000000001["logic.not<br/><small>5f0c2d7e</small>"]`,
			},
		},
		{
			name: "Connection Labels",
			items: []document.Item{
				{TypeIdentifier: "const.string", InstanceID: "c"},
				{TypeIdentifier: "string.concat", InstanceID: "s", Inputs: map[string]document.InputState{
					"b":         {ConnectionTargetInstanceID: "c", ConnectionTargetOutputName: "value"},
					"a":         {ConnectionTargetInstanceID: "c", ConnectionTargetOutputName: "value"},
					"separator": {ManualValue: " "},
				}},
			},
			contains: []string{
				"    c -- \"value → a\" --> s\n    c -- \"value → b\" --> s\n",
			},
			excludes: []string{"separator"},
		},
		{
			name: "Overlay",
			items: []document.Item{
				{TypeIdentifier: "logic.not", InstanceID: "n"},
			},
			overlay: &graph.GraphOverlay{Evaluated: []string{"n", "n"}, Failed: []string{"x"}},
			contains: []string{
				"classDef evaluated",
				"class n evaluated;",
				"class x failed;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(&document.Document{Items: tt.items}, titles, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(got, bad) {
					t.Errorf("GenerateMermaid() = \n%v\nUnexpected substring: %v", got, bad)
				}
			}
			if strings.Count(got, "class n evaluated;") > 1 {
				t.Errorf("duplicate class lines:\n%v", got)
			}
		})
	}
}
