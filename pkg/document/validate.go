package document

import (
	"fmt"
	"maps"
	"slices"

	"github.com/aretw0/nodeweave/pkg/domain"
	"github.com/aretw0/nodeweave/pkg/schema"
)

// SignatureLookup resolves the port signature of a node type.
type SignatureLookup interface {
	NodeFactory
	Signature(typeID string) (schema.Signature, bool)
}

// Validate reports every structural problem in doc without stopping at the
// first one. Problems are returned as a *schema.AggregateError.
// A document that passes the static checks is also built once, which
// surfaces cyclic wiring.
func Validate(doc *Document, types SignatureLookup) error {
	var errs []error
	add := func(key string, kind error, format string, args ...any) {
		errs = append(errs, &schema.ValidationError{Key: key, Reason: fmt.Sprintf(format, args...), Err: kind})
	}

	seen := make(map[string]bool, len(doc.Items))
	for i, item := range doc.Items {
		key := fmt.Sprintf("items[%d]", i)
		if item.InstanceID == "" {
			add(key, nil, "instanceId is empty")
		} else if seen[item.InstanceID] {
			add(key, domain.ErrDuplicateInstance, "duplicate instanceId %s", item.InstanceID)
		}
		seen[item.InstanceID] = true
		if !types.Has(item.TypeIdentifier) {
			add(key, domain.ErrUnknownTypeID, "%v: %q", domain.ErrUnknownTypeID, item.TypeIdentifier)
		}
	}

	for i, item := range doc.Items {
		sig, ok := types.Signature(item.TypeIdentifier)
		if !ok {
			continue
		}
		for _, name := range slices.Sorted(maps.Keys(item.Inputs)) {
			state := item.Inputs[name]
			key := fmt.Sprintf("items[%d].inputs.%s", i, name)
			def, ok := sig.Input(name)
			if !ok {
				add(key, domain.ErrUnknownPort, "%v: input not declared by %s", domain.ErrUnknownPort, item.TypeIdentifier)
				continue
			}
			if _, err := schema.DecodeValue(def.Kind, state.ManualValue); err != nil {
				add(key, domain.ErrTypeMismatch, "manualValue: %v", err)
			}
			if !state.Connected() {
				continue
			}
			target, ok := doc.Find(state.ConnectionTargetInstanceID)
			if !ok {
				add(key, domain.ErrUnresolvedReference, "%v: instance %s", domain.ErrUnresolvedReference, state.ConnectionTargetInstanceID)
				continue
			}
			targetSig, ok := types.Signature(target.TypeIdentifier)
			if !ok {
				continue
			}
			out, ok := targetSig.Output(state.ConnectionTargetOutputName)
			if !ok {
				add(key, domain.ErrUnknownPort, "%v: %s has no output %q", domain.ErrUnknownPort, target.TypeIdentifier, state.ConnectionTargetOutputName)
				continue
			}
			if out.Kind != def.Kind {
				add(key, domain.ErrTypeMismatch, "%v: %s output feeds %s input", domain.ErrTypeMismatch, out.Kind, def.Kind)
			}
		}
	}

	if len(errs) == 0 {
		if _, err := Deserialize(doc, types); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return &schema.AggregateError{Errors: errs}
	}
	return nil
}
