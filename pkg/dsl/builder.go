package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/nodeweave/pkg/document"
	"github.com/aretw0/nodeweave/pkg/domain"
	"github.com/aretw0/nodeweave/pkg/graph"
)

// ErrTypeRedeclared is returned by Build when Add reuses an id with another type.
var ErrTypeRedeclared = errors.New("node redeclared with a different type")

// Builder manages the graph construction.
// Nodes keep the order in which they were first added.
type Builder struct {
	order []string
	nodes map[string]*NodeBuilder
	errs  []error
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*NodeBuilder),
	}
}

// Add declares a node of typeID under id.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id, typeID string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		if nb.item.TypeIdentifier != typeID {
			b.errs = append(b.errs, fmt.Errorf("%w: %s is %s, not %s", ErrTypeRedeclared, id, nb.item.TypeIdentifier, typeID))
		}
		return nb
	}
	nb := &NodeBuilder{
		item: document.Item{
			TypeIdentifier: typeID,
			InstanceID:     id,
			Inputs:         make(map[string]document.InputState),
		},
		builder: b,
	}
	b.order = append(b.order, id)
	b.nodes[id] = nb
	return nb
}

// Document returns the persisted form of the graph declared so far.
func (b *Builder) Document() *document.Document {
	doc := &document.Document{Items: make([]document.Item, 0, len(b.order))}
	for _, id := range b.order {
		doc.Items = append(doc.Items, b.nodes[id].item)
	}
	return doc.Clone()
}

// Validate reports every problem in the declared graph.
func (b *Builder) Validate(types document.SignatureLookup) error {
	if err := errors.Join(b.errs...); err != nil {
		return err
	}
	return document.Validate(b.Document(), types)
}

// Build compiles the declaration into a live graph.
func (b *Builder) Build(factory document.NodeFactory, opts ...graph.Option) (*graph.Graph, error) {
	if err := errors.Join(b.errs...); err != nil {
		return nil, err
	}
	g, err := document.Deserialize(b.Document(), factory, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build graph: %w", err)
	}
	return g, nil
}

// NodeBuilder helps configure a specific node.
type NodeBuilder struct {
	item    document.Item
	builder *Builder
}

// At sets the canvas position.
func (nb *NodeBuilder) At(x, y float64) *NodeBuilder {
	nb.item.Position = domain.Position{X: x, Y: y}
	return nb
}

// Set stores the manual value of input.
func (nb *NodeBuilder) Set(input string, value any) *NodeBuilder {
	state := nb.item.Inputs[input]
	state.ManualValue = value
	nb.item.Inputs[input] = state
	return nb
}

// Wire connects input to the output of the node declared as from.
// The source may be declared later.
func (nb *NodeBuilder) Wire(input, from, output string) *NodeBuilder {
	state := nb.item.Inputs[input]
	state.ConnectionTargetInstanceID = from
	state.ConnectionTargetOutputName = output
	nb.item.Inputs[input] = state
	return nb
}

// Add declares another node, allowing chained declarations.
func (nb *NodeBuilder) Add(id, typeID string) *NodeBuilder {
	return nb.builder.Add(id, typeID)
}
