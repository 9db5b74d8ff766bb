// Package schema describes and validates the shape of node ports.
//
// It maps every port-capable domain.DataKind to a Type that knows how to
// validate a canonical Go value and how to decode loosely typed input (for
// example values produced by encoding/json) into that canonical form.
// A Signature lists the ordered input and output ports of a node type.
//
// Basic usage:
//
//	sig := schema.Signature{
//	    Inputs:  []schema.PortDef{schema.In("name", domain.KindString)},
//	    Outputs: []schema.PortDef{schema.Out("joint", domain.KindString)},
//	}
//	if err := sig.Validate(); err != nil {
//	    // Handle invalid declarations
//	}
//
// Manual values read from a document are coerced with DecodeValue:
//
//	v, err := schema.DecodeValue(domain.KindInteger, float64(3)) // int64(3)
//
// Validation failures are reported as *ValidationError, grouped in an
// *AggregateError when more than one problem is found.
package schema
