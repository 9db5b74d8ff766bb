package document

import (
	"fmt"
	"maps"
	"slices"

	"github.com/aretw0/nodeweave/pkg/domain"
	"github.com/aretw0/nodeweave/pkg/graph"
	"github.com/aretw0/nodeweave/pkg/schema"
)

// Serialize captures g as a Document.
func Serialize(g *graph.Graph) *Document {
	doc := &Document{Items: make([]Item, 0, g.Len())}
	for _, n := range g.Nodes() {
		item := Item{
			TypeIdentifier: n.TypeIdentifier(),
			InstanceID:     n.UniqueIdentifier(),
			Position:       n.Position,
			Inputs:         make(map[string]InputState, len(n.InputDefs())),
		}
		for _, in := range n.Inputs() {
			state := InputState{ManualValue: in.ManualValue()}
			if out := in.Connection(); out != nil {
				state.ConnectionTargetInstanceID = out.Node().UniqueIdentifier()
				state.ConnectionTargetOutputName = out.Name()
			}
			item.Inputs[in.Name()] = state
		}
		doc.Items = append(doc.Items, item)
	}
	return doc
}

// Deserialize rebuilds a graph from doc.
//
// Pass one creates every node with its persisted identity and position.
// Pass two restores manual values and connections, so forward references
// resolve. On any error the partially built graph is discarded and nil is
// returned.
//
// Hooks given through opts are installed only once the graph is complete, so
// restoring wires emits no connection events.
func Deserialize(doc *Document, nodes NodeFactory, opts ...graph.Option) (*graph.Graph, error) {
	if doc == nil {
		return nil, fmt.Errorf("deserialize: document is nil")
	}
	g := graph.New(nodes, opts...)
	hooks := g.Hooks()
	g.SetHooks(domain.LifecycleHooks{})

	if err := populate(g, doc, nodes); err != nil {
		g.Clear()
		return nil, err
	}
	g.SetHooks(hooks)
	return g, nil
}

func populate(g *graph.Graph, doc *Document, nodes NodeFactory) error {
	created := make([]*graph.Node, len(doc.Items))
	for i, item := range doc.Items {
		n, err := nodes.Create(item.TypeIdentifier)
		if err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		if item.InstanceID != "" {
			if err := n.SetInstanceID(item.InstanceID); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
		n.Position = item.Position
		if err := g.AddNode(n); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		created[i] = n
	}

	for i, item := range doc.Items {
		n := created[i]
		// Undeclared names fail before any input of the node is touched.
		for _, name := range slices.Sorted(maps.Keys(item.Inputs)) {
			if _, ok := n.Input(name); !ok {
				return fmt.Errorf("node %s: %w: %s has no input %q",
					n.UniqueIdentifier(), domain.ErrUnknownPort, n.TypeIdentifier(), name)
			}
		}
		for _, in := range n.Inputs() {
			state, ok := item.Inputs[in.Name()]
			if !ok {
				continue
			}
			if err := restoreInput(g, in, state); err != nil {
				return fmt.Errorf("node %s: %w", n.UniqueIdentifier(), err)
			}
		}
	}
	return nil
}

func restoreInput(g *graph.Graph, in *graph.InputPort, state InputState) error {
	name := in.Name()
	v, err := schema.DecodeValue(in.Kind(), state.ManualValue)
	if err != nil {
		return fmt.Errorf("input %q manual value: %w", name, err)
	}
	if err := in.SetManualValue(v); err != nil {
		return err
	}

	if !state.Connected() {
		return nil
	}
	target, ok := g.FindNodeByInstanceID(state.ConnectionTargetInstanceID)
	if !ok {
		return fmt.Errorf("%w: input %q references instance %s",
			domain.ErrUnresolvedReference, name, state.ConnectionTargetInstanceID)
	}
	out, ok := target.Output(state.ConnectionTargetOutputName)
	if !ok {
		return fmt.Errorf("%w: input %q references output %q of %s",
			domain.ErrUnknownPort, name, state.ConnectionTargetOutputName, target.TypeIdentifier())
	}
	return in.Connect(out)
}
