package graph

import (
	"errors"
	"fmt"
	"slices"

	"github.com/aretw0/nodeweave/pkg/domain"
)

// TypeChecker reports whether a node type is known. *registry.Registry implements it.
type TypeChecker interface {
	Has(typeID string) bool
}

// Connection is one wire between an output and an input.
type Connection struct {
	From *OutputPort
	To   *InputPort
}

// Graph owns a set of nodes (in insertion order) and the wires between them.
type Graph struct {
	types  TypeChecker
	nodes  []*Node
	hooks  domain.LifecycleHooks
	pass   *pass
	passes uint64
}

// pass is the memo of one top-level evaluation.
type pass struct {
	id      uint64
	results map[*Node]error
	active  map[*Node]bool
}

// Option configures a Graph.
type Option func(*Graph)

// WithHooks registers lifecycle hooks.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(g *Graph) {
		g.hooks = h
	}
}

// New creates an empty graph bound to a type registry for its whole lifetime.
func New(types TypeChecker, opts ...Option) *Graph {
	g := &Graph{types: types}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SetHooks replaces the lifecycle hooks.
func (g *Graph) SetHooks(h domain.LifecycleHooks) { g.hooks = h }

// Hooks returns the registered lifecycle hooks.
func (g *Graph) Hooks() domain.LifecycleHooks { return g.hooks }

// AddNode appends n to the graph.
func (g *Graph) AddNode(n *Node) error {
	if n == nil {
		return fmt.Errorf("add node: node is nil")
	}
	if g.types == nil || !g.types.Has(n.TypeIdentifier()) {
		return fmt.Errorf("%w: %q", domain.ErrUnregisteredType, n.TypeIdentifier())
	}
	if n.graph == g {
		return nil
	}
	if n.graph != nil {
		return fmt.Errorf("%w: node %s already belongs to another graph", domain.ErrForeignNode, n.UniqueIdentifier())
	}
	if _, exists := g.FindNodeByInstanceID(n.UniqueIdentifier()); exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateInstance, n.UniqueIdentifier())
	}
	for _, in := range n.inputList {
		if in.conn != nil {
			return fmt.Errorf("%w: node %s is wired outside the graph", domain.ErrForeignNode, n.UniqueIdentifier())
		}
	}
	for _, out := range n.outputList {
		if len(out.subscribers) > 0 {
			return fmt.Errorf("%w: node %s is wired outside the graph", domain.ErrForeignNode, n.UniqueIdentifier())
		}
	}

	n.graph = g
	g.nodes = append(g.nodes, n)
	return nil
}

// RemoveNode severs every connection touching n and removes it.
// It is a no-op if n is not in the graph.
func (g *Graph) RemoveNode(n *Node) {
	if n == nil || n.graph != g {
		return
	}
	for _, in := range n.inputList {
		in.Disconnect()
	}
	for _, out := range n.outputList {
		out.DisconnectAll()
	}
	g.nodes = slices.DeleteFunc(g.nodes, func(x *Node) bool { return x == n })
	n.graph = nil
}

// Clear removes every node.
func (g *Graph) Clear() {
	for _, n := range g.Nodes() {
		g.RemoveNode(n)
	}
}

// FindNodeByInstanceID returns the node with the given instance id.
func (g *Graph) FindNodeByInstanceID(id string) (*Node, bool) {
	for _, n := range g.nodes {
		if n.UniqueIdentifier() == id {
			return n, true
		}
	}
	return nil, false
}

// Contains reports whether n is in the graph.
func (g *Graph) Contains(n *Node) bool {
	return n != nil && n.graph == g
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node { return slices.Clone(g.nodes) }

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Connections lists every wire, ordered by consuming node then input declaration.
func (g *Graph) Connections() []Connection {
	var conns []Connection
	for _, n := range g.nodes {
		for _, in := range n.inputList {
			if in.conn != nil {
				conns = append(conns, Connection{From: in.conn, To: in})
			}
		}
	}
	return conns
}

// Connect wires from.output into to.input.
func (g *Graph) Connect(from *Node, output string, to *Node, input string) error {
	if !g.Contains(from) || !g.Contains(to) {
		return fmt.Errorf("connect: %w", domain.ErrForeignNode)
	}
	out, ok := from.Output(output)
	if !ok {
		return fmt.Errorf("%w: %s has no output %q", domain.ErrUnknownPort, from.TypeIdentifier(), output)
	}
	in, ok := to.Input(input)
	if !ok {
		return fmt.Errorf("%w: %s has no input %q", domain.ErrUnknownPort, to.TypeIdentifier(), input)
	}
	return in.Connect(out)
}

// Disconnect severs the connection feeding to.input.
func (g *Graph) Disconnect(to *Node, input string) error {
	if !g.Contains(to) {
		return fmt.Errorf("disconnect: %w", domain.ErrForeignNode)
	}
	in, ok := to.Input(input)
	if !ok {
		return fmt.Errorf("%w: %s has no input %q", domain.ErrUnknownPort, to.TypeIdentifier(), input)
	}
	in.Disconnect()
	return nil
}

// Evaluate executes n (pulling its upstream) in a fresh evaluation pass.
func (g *Graph) Evaluate(n *Node) error {
	if !g.Contains(n) {
		return fmt.Errorf("evaluate: %w", domain.ErrForeignNode)
	}
	return n.ExecuteAndCache()
}

// Pull returns the value of n.output, executing whatever is needed.
func (g *Graph) Pull(n *Node, output string) (any, error) {
	if !g.Contains(n) {
		return nil, fmt.Errorf("pull: %w", domain.ErrForeignNode)
	}
	out, ok := n.Output(output)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no output %q", domain.ErrUnknownPort, n.TypeIdentifier(), output)
	}
	return out.Value()
}

// EvaluateAll executes every node once, in insertion order, within a single
// pass. Failures do not stop the remaining nodes; they are joined.
func (g *Graph) EvaluateAll() error {
	return g.within(func() error {
		var errs []error
		for _, n := range g.Nodes() {
			if err := n.ExecuteAndCache(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

// Passes returns how many evaluation passes have been opened.
func (g *Graph) Passes() uint64 { return g.passes }

// within runs fn inside an evaluation pass, opening one if none is active.
func (g *Graph) within(fn func() error) error {
	if g.pass != nil {
		return fn()
	}
	g.passes++
	g.pass = &pass{
		id:      g.passes,
		results: make(map[*Node]error),
		active:  make(map[*Node]bool),
	}
	defer func() { g.pass = nil }()
	return fn()
}

func (g *Graph) execute(n *Node) error {
	return g.within(func() error {
		p := g.pass
		if err, done := p.results[n]; done {
			if g.hooks.OnNodeResult != nil {
				ev := n.event(domain.EventNodeResult, 0, err)
				ev.Memoized = true
				g.hooks.OnNodeResult(ev)
			}
			return err
		}
		if p.active[n] {
			return n.fail(fmt.Errorf("%w: node re-entered within pass %d", domain.ErrCyclicEvaluation, p.id))
		}

		p.active[n] = true
		err := n.run(g.hooks)
		delete(p.active, n)
		p.results[n] = err
		return err
	})
}
