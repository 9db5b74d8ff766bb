package domain

import "errors"

// Port and value errors.
var (
	// ErrTypeMismatch is returned when a value or connection does not match a port's DataKind.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrOutputArityMismatch is returned when an execute body returns a single value
	// but the node does not declare exactly one output.
	ErrOutputArityMismatch = errors.New("output arity mismatch")
	// ErrReturnTypeMismatch is returned when an execute body produces a value whose
	// kind differs from the declared output kind.
	ErrReturnTypeMismatch = errors.New("return type mismatch")
	// ErrUnknownPort is returned when a port name is not declared on a node.
	ErrUnknownPort = errors.New("unknown port")
	// ErrNodePanic is returned when an execute body panics.
	ErrNodePanic = errors.New("node body panicked")
)

// Registry errors.
var (
	ErrDuplicateTypeID = errors.New("duplicate type id")
	ErrUnknownTypeID   = errors.New("unknown type id")
)

// Graph errors.
var (
	// ErrUnregisteredType is returned when a node whose type is not in the graph's registry is added.
	ErrUnregisteredType = errors.New("unregistered node type")
	// ErrDuplicateInstance is returned when two nodes share an instance id.
	ErrDuplicateInstance = errors.New("duplicate instance id")
	// ErrForeignNode is returned when an operation references a node outside the graph.
	ErrForeignNode = errors.New("node does not belong to graph")
	// ErrNodeNotFound is returned when an instance id cannot be resolved.
	ErrNodeNotFound = errors.New("node not found")
	// ErrCyclicConnection is returned when a connection would close a cycle.
	ErrCyclicConnection = errors.New("cyclic connection")
	// ErrCyclicEvaluation is returned when a node is asked to execute while it is already executing.
	ErrCyclicEvaluation = errors.New("cyclic evaluation")
)

// Persistence errors.
var (
	// ErrUnresolvedReference is returned when a document references an instance id that does not exist.
	ErrUnresolvedReference = errors.New("unresolved reference")
	// ErrGraphNotFound is returned when a named graph cannot be found in the store.
	ErrGraphNotFound = errors.New("graph not found")
	// ErrInvalidGraphName is returned when a graph name is empty or not a plain file name.
	ErrInvalidGraphName = errors.New("invalid graph name")
)
