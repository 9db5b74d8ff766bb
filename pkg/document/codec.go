package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/nodeweave/pkg/graph"
	"gopkg.in/yaml.v3"
)

// Format selects the on-disk encoding of a Document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks a format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Encode renders doc in the requested format.
func Encode(doc *Document, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal graph yaml: %w", err)
		}
		return data, nil
	case FormatJSON, "":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal graph json: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported document format: %q", format)
	}
}

// Decode parses data in the requested format.
// JSON numbers are kept as json.Number so large integers survive.
func Decode(data []byte, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse graph yaml: %w", err)
		}
	case FormatJSON, "":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to parse graph json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported document format: %q", format)
	}
	return &doc, nil
}

// Marshal serializes g to indented JSON.
func Marshal(g *graph.Graph) ([]byte, error) {
	return Encode(Serialize(g), FormatJSON)
}

// Unmarshal parses JSON and rebuilds the graph.
func Unmarshal(data []byte, nodes NodeFactory, opts ...graph.Option) (*graph.Graph, error) {
	doc, err := Decode(data, FormatJSON)
	if err != nil {
		return nil, err
	}
	return Deserialize(doc, nodes, opts...)
}
