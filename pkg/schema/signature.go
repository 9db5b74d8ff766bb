package schema

import (
	"fmt"

	"github.com/aretw0/nodeweave/pkg/domain"
)

// PortDef declares one named, typed port.
type PortDef struct {
	Name string          `json:"name" yaml:"name"`
	Kind domain.DataKind `json:"kind" yaml:"kind"`
}

// In is shorthand for an input PortDef.
func In(name string, kind domain.DataKind) PortDef { return PortDef{Name: name, Kind: kind} }

// Out is shorthand for an output PortDef.
func Out(name string, kind domain.DataKind) PortDef { return PortDef{Name: name, Kind: kind} }

// Signature is the static port shape of a node type.
// Order is significant: inputs are gathered in declaration order.
type Signature struct {
	Inputs  []PortDef `json:"inputs" yaml:"inputs"`
	Outputs []PortDef `json:"outputs" yaml:"outputs"`
}

// Input returns the definition of the named input.
func (s Signature) Input(name string) (PortDef, bool) {
	return find(s.Inputs, name)
}

// Output returns the definition of the named output.
func (s Signature) Output(name string) (PortDef, bool) {
	return find(s.Outputs, name)
}

func find(defs []PortDef, name string) (PortDef, bool) {
	for _, d := range defs {
		if d.Name == name {
			return d, true
		}
	}
	return PortDef{}, false
}

// Validate checks that every port has a name, a port-capable kind,
// and that names are unique within each direction.
func (s Signature) Validate() error {
	var errs []error
	check := func(dir string, defs []PortDef) {
		seen := make(map[string]bool, len(defs))
		for i, d := range defs {
			key := fmt.Sprintf("%s[%d]", dir, i)
			if d.Name != "" {
				key = dir + "." + d.Name
			}
			switch {
			case d.Name == "":
				errs = append(errs, &ValidationError{Key: key, Reason: "port name is empty"})
			case seen[d.Name]:
				errs = append(errs, &ValidationError{Key: key, Reason: "duplicate port name"})
			}
			if !d.Kind.IsPortKind() {
				errs = append(errs, &ValidationError{Key: key, Reason: fmt.Sprintf("%s is not a valid port kind", d.Kind)})
			}
			seen[d.Name] = true
		}
	}
	check("inputs", s.Inputs)
	check("outputs", s.Outputs)

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
