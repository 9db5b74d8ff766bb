// Package command defines the boundary between node execute bodies and an
// external scene-authoring tool.
//
// Nodes drive the tool only through Interpreter. Recorder is an in-memory
// implementation that keeps a scene model and a call log; hosts embedding a
// real 3D application provide their own Interpreter.
package command

import (
	"errors"

	"github.com/aretw0/nodeweave/pkg/domain"
)

// ErrEntityNotFound is returned when a command references a missing scene entity.
var ErrEntityNotFound = errors.New("entity not found")

// Handle references an entity in the external scene.
type Handle struct {
	Name string `json:"name"`
}

// Interpreter is the command surface of the external tool.
type Interpreter interface {
	// Exists reports whether an entity with the given name exists.
	Exists(name string) bool
	// Delete removes the entity if it exists.
	Delete(name string) error
	// CreateJoint creates a joint, optionally parented and positioned.
	// The returned handle carries the name the tool actually assigned.
	CreateJoint(name string, parent *Handle, position *domain.Vector3) (Handle, error)
	// Parent makes child a child of parent.
	Parent(parent, child Handle) error
}
