package graph

import (
	"fmt"
	"time"

	"github.com/aretw0/nodeweave/pkg/domain"
	"github.com/aretw0/nodeweave/pkg/schema"
	"github.com/google/uuid"
)

// Behavior is the capability a node type supplies: a static port signature
// and an execute body.
//
// Execute may either return a single value, which is written to the sole
// declared output, or return nil and write outputs by name through
// ExecContext.SetOutput.
type Behavior interface {
	Signature() schema.Signature
	Execute(ec *ExecContext) (any, error)
}

// funcBehavior adapts a plain function to Behavior.
type funcBehavior struct {
	sig schema.Signature
	fn  func(*ExecContext) (any, error)
}

func (b *funcBehavior) Signature() schema.Signature          { return b.sig }
func (b *funcBehavior) Execute(ec *ExecContext) (any, error) { return b.fn(ec) }

// Define builds a Behavior from a signature and an execute function.
func Define(sig schema.Signature, fn func(*ExecContext) (any, error)) Behavior {
	return &funcBehavior{sig: sig, fn: fn}
}

// Node is one dataflow unit: identity, display data and a fixed set of ports.
type Node struct {
	typeID     string
	instanceID string

	// Title and Position are display only; Position is persisted.
	Title    string
	Position domain.Position

	behavior   Behavior
	sig        schema.Signature
	inputs     map[string]*InputPort
	outputs    map[string]*OutputPort
	inputList  []*InputPort
	outputList []*OutputPort

	graph     *Graph
	executing bool
}

// NewNode builds a node of the given type. Ports are created from the
// behavior's signature and never change afterwards.
func NewNode(typeID, title string, b Behavior) (*Node, error) {
	if typeID == "" {
		return nil, fmt.Errorf("node type id cannot be empty")
	}
	if b == nil {
		return nil, fmt.Errorf("node %q: behavior is nil", typeID)
	}
	sig := b.Signature()
	if err := sig.Validate(); err != nil {
		return nil, fmt.Errorf("node %q: invalid signature: %w", typeID, err)
	}

	n := &Node{
		typeID:   typeID,
		Title:    title,
		behavior: b,
		sig:      sig,
		inputs:   make(map[string]*InputPort, len(sig.Inputs)),
		outputs:  make(map[string]*OutputPort, len(sig.Outputs)),
	}
	for _, def := range sig.Inputs {
		p := newInputPort(n, def.Name, def.Kind)
		n.inputs[def.Name] = p
		n.inputList = append(n.inputList, p)
	}
	for _, def := range sig.Outputs {
		p := newOutputPort(n, def.Name, def.Kind)
		n.outputs[def.Name] = p
		n.outputList = append(n.outputList, p)
	}
	return n, nil
}

// TypeIdentifier returns the registry key of the node's type.
func (n *Node) TypeIdentifier() string { return n.typeID }

// UniqueIdentifier returns the instance id, generating a UUID on first use.
// Once assigned it never changes while the node is in a graph.
func (n *Node) UniqueIdentifier() string {
	if n.instanceID == "" {
		n.instanceID = uuid.NewString()
	}
	return n.instanceID
}

// SetInstanceID restores a persisted identity. It is only allowed before the
// node joins a graph.
func (n *Node) SetInstanceID(id string) error {
	if id == "" {
		return fmt.Errorf("instance id cannot be empty")
	}
	if n.graph != nil {
		return fmt.Errorf("node %s: cannot change identity while in a graph", n.UniqueIdentifier())
	}
	n.instanceID = id
	return nil
}

// Behavior returns the node's execute capability.
func (n *Node) Behavior() Behavior { return n.behavior }

// Graph returns the graph the node belongs to, or nil.
func (n *Node) Graph() *Graph { return n.graph }

// InputDefs returns the ordered input declarations.
func (n *Node) InputDefs() []schema.PortDef { return n.sig.Inputs }

// OutputDefs returns the ordered output declarations.
func (n *Node) OutputDefs() []schema.PortDef { return n.sig.Outputs }

// Input returns the named input port.
func (n *Node) Input(name string) (*InputPort, bool) {
	p, ok := n.inputs[name]
	return p, ok
}

// Output returns the named output port.
func (n *Node) Output(name string) (*OutputPort, bool) {
	p, ok := n.outputs[name]
	return p, ok
}

// Inputs returns the input ports in declaration order.
func (n *Node) Inputs() []*InputPort { return append([]*InputPort(nil), n.inputList...) }

// Outputs returns the output ports in declaration order.
func (n *Node) Outputs() []*OutputPort { return append([]*OutputPort(nil), n.outputList...) }

// MustInput is like Input but panics if the port does not exist.
func (n *Node) MustInput(name string) *InputPort {
	p, ok := n.inputs[name]
	if !ok {
		panic(fmt.Sprintf("graph: node %s has no input %q", n.typeID, name))
	}
	return p
}

// MustOutput is like Output but panics if the port does not exist.
func (n *Node) MustOutput(name string) *OutputPort {
	p, ok := n.outputs[name]
	if !ok {
		panic(fmt.Sprintf("graph: node %s has no output %q", n.typeID, name))
	}
	return p
}

// ExecuteAndCache gathers the inputs, runs the execute body and stores the
// results in the output ports. On failure the previous cached values are
// left untouched and an *ExecutionError is returned.
//
// Nodes in a graph are memoized per evaluation pass.
func (n *Node) ExecuteAndCache() error {
	if n.graph != nil {
		return n.graph.execute(n)
	}
	if n.executing {
		return n.fail(fmt.Errorf("%w: node re-entered while executing", domain.ErrCyclicEvaluation))
	}
	n.executing = true
	defer func() { n.executing = false }()
	return n.run(domain.LifecycleHooks{})
}

func (n *Node) run(hooks domain.LifecycleHooks) error {
	start := time.Now()
	if hooks.OnNodeExecute != nil {
		hooks.OnNodeExecute(n.event(domain.EventNodeExecute, 0, nil))
	}

	err := n.execute()

	if hooks.OnNodeResult != nil {
		hooks.OnNodeResult(n.event(domain.EventNodeResult, time.Since(start), err))
	}
	return err
}

func (n *Node) execute() error {
	ec := &ExecContext{
		node: n,
		args: make([]any, 0, len(n.inputList)),
		in:   make(map[string]any, len(n.inputList)),
		out:  make(map[string]any, len(n.outputList)),
	}
	for _, in := range n.inputList {
		v, err := in.Value()
		if err != nil {
			return n.fail(fmt.Errorf("input %q: %w", in.name, err))
		}
		ec.args = append(ec.args, v)
		ec.in[in.name] = v
	}

	ret, err := n.call(ec)
	if err != nil {
		return n.fail(err)
	}
	if ec.err != nil {
		return n.fail(ec.err)
	}

	if ret != nil {
		if len(n.outputList) != 1 {
			return n.fail(fmt.Errorf("%w: returned a value but declares %d outputs",
				domain.ErrOutputArityMismatch, len(n.outputList)))
		}
		if len(ec.out) > 0 {
			return n.fail(fmt.Errorf("%w: returned a value and also set outputs by name",
				domain.ErrOutputArityMismatch))
		}
		if err := ec.SetOutput(n.outputList[0].name, ret); err != nil {
			return n.fail(err)
		}
	}

	for _, out := range n.outputList {
		if v, ok := ec.out[out.name]; ok {
			out.value = v
			out.hasValue = true
		}
	}
	return nil
}

// call runs the body, turning a panic into an error of this node.
func (n *Node) call(ec *ExecContext) (ret any, err error) {
	defer func() {
		if r := recover(); r != nil {
			ret, err = nil, fmt.Errorf("%w: %v", domain.ErrNodePanic, r)
		}
	}()
	return n.behavior.Execute(ec)
}

func (n *Node) fail(err error) error {
	return &ExecutionError{InstanceID: n.UniqueIdentifier(), TypeID: n.typeID, Err: err}
}

func (n *Node) event(t domain.EventType, d time.Duration, err error) *domain.NodeEvent {
	return &domain.NodeEvent{
		EventBase:  domain.EventBase{Timestamp: time.Now(), Type: t},
		InstanceID: n.UniqueIdentifier(),
		TypeID:     n.typeID,
		Duration:   d,
		Err:        err,
	}
}

// ExecutionError reports a failed ExecuteAndCache.
type ExecutionError struct {
	InstanceID string
	TypeID     string
	Err        error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("node %s (%s) failed: %v", e.InstanceID, e.TypeID, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }
