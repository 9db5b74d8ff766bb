// Package document converts graphs to and from their persisted form.
//
// A Document is a plain tree that encodes to the JSON layout
//
//	{ "items": [ { "typeIdentifier", "instanceId", "position": [x, y],
//	    "inputs": { name: { "manualValue", "connectionTargetInstanceId",
//	                        "connectionTargetOutputName" } } } ] }
//
// Items keep graph insertion order. Deserialize rebuilds a graph in two
// passes so connections may reference items that appear later in the file.
package document

import (
	"github.com/aretw0/nodeweave/pkg/domain"
	"github.com/aretw0/nodeweave/pkg/graph"
)

// Document is the persisted form of a graph.
type Document struct {
	Items []Item `json:"items" yaml:"items"`
}

// Item is one persisted node.
type Item struct {
	TypeIdentifier string                `json:"typeIdentifier" yaml:"typeIdentifier"`
	InstanceID     string                `json:"instanceId" yaml:"instanceId"`
	Position       domain.Position       `json:"position" yaml:"position"`
	Inputs         map[string]InputState `json:"inputs" yaml:"inputs"`
}

// InputState is the persisted state of one input port.
// ConnectionTargetInstanceID is empty when the input is unconnected.
type InputState struct {
	ManualValue                any    `json:"manualValue" yaml:"manualValue"`
	ConnectionTargetInstanceID string `json:"connectionTargetInstanceId" yaml:"connectionTargetInstanceId"`
	ConnectionTargetOutputName string `json:"connectionTargetOutputName" yaml:"connectionTargetOutputName"`
}

// Connected reports whether the input references an upstream output.
func (s InputState) Connected() bool { return s.ConnectionTargetInstanceID != "" }

// NodeFactory creates nodes by type id. *registry.Registry implements it.
type NodeFactory interface {
	graph.TypeChecker
	Create(typeID string) (*graph.Node, error)
}

// Find returns the item with the given instance id.
func (d *Document) Find(instanceID string) (*Item, bool) {
	for i := range d.Items {
		if d.Items[i].InstanceID == instanceID {
			return &d.Items[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy of d. Manual values are scalars or Vector3
// values and are copied by assignment.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{Items: make([]Item, len(d.Items))}
	for i, item := range d.Items {
		cp := item
		if item.Inputs != nil {
			cp.Inputs = make(map[string]InputState, len(item.Inputs))
			for k, v := range item.Inputs {
				cp.Inputs[k] = v
			}
		}
		out.Items[i] = cp
	}
	return out
}
