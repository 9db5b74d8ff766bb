package graph

import (
	"fmt"
	"slices"
	"time"

	"github.com/aretw0/nodeweave/pkg/domain"
)

// InputPort is a named, typed attachment point that consumes a value.
// It holds at most one connection and a manual value used when unconnected.
type InputPort struct {
	name   string
	kind   domain.DataKind
	node   *Node
	manual any
	conn   *OutputPort
}

func newInputPort(n *Node, name string, kind domain.DataKind) *InputPort {
	return &InputPort{name: name, kind: kind, node: n, manual: domain.Zero(kind)}
}

func (p *InputPort) Name() string          { return p.name }
func (p *InputPort) Kind() domain.DataKind { return p.kind }
func (p *InputPort) Node() *Node           { return p.node }

// ManualValue returns the value authored directly on the port.
// It is retained while the port is connected.
func (p *InputPort) ManualValue() any { return p.manual }

// SetManualValue replaces the manual value.
func (p *InputPort) SetManualValue(v any) error {
	v = domain.Normalize(v)
	if err := domain.Check(p.kind, v); err != nil {
		return fmt.Errorf("input %q: %w", p.name, err)
	}
	p.manual = v
	return nil
}

// Connection returns the output this input is wired to, or nil.
func (p *InputPort) Connection() *OutputPort { return p.conn }

// IsConnected reports whether the port is wired to an output.
func (p *InputPort) IsConnected() bool { return p.conn != nil }

// Editable reports whether the manual value is in use (the port is unconnected).
func (p *InputPort) Editable() bool { return p.conn == nil }

// Connect wires out into this input, replacing any previous connection.
// On failure neither port is modified.
func (p *InputPort) Connect(out *OutputPort) error {
	if out == nil {
		return fmt.Errorf("input %q: connect to nil output", p.name)
	}
	if out.kind != p.kind {
		return fmt.Errorf("%w: cannot connect %s output %q to %s input %q",
			domain.ErrTypeMismatch, out.kind, out.name, p.kind, p.name)
	}
	if p.node.graph != out.node.graph {
		return fmt.Errorf("%w: ports %q and %q live in different graphs",
			domain.ErrForeignNode, out.name, p.name)
	}
	if p.conn == out {
		return nil
	}
	if dependsOn(out.node, p.node) {
		return fmt.Errorf("%w: %s.%s -> %s.%s",
			domain.ErrCyclicConnection, out.node.UniqueIdentifier(), out.name, p.node.UniqueIdentifier(), p.name)
	}

	p.Disconnect()
	p.conn = out
	out.subscribers = append(out.subscribers, p)
	p.node.emitConnection(domain.EventConnect, out, p)
	return nil
}

// Disconnect severs the connection, if any. The manual value becomes active again.
func (p *InputPort) Disconnect() {
	out := p.conn
	if out == nil {
		return
	}
	out.subscribers = slices.DeleteFunc(out.subscribers, func(s *InputPort) bool { return s == p })
	p.conn = nil
	p.node.emitConnection(domain.EventDisconnect, out, p)
}

// Value returns the upstream value when connected (which may execute the
// upstream node) and the manual value otherwise.
func (p *InputPort) Value() (any, error) {
	if p.conn != nil {
		return p.conn.Value()
	}
	return p.manual, nil
}

// OutputPort is a named, typed attachment point that produces a value.
// Its value is computed by executing the owning node.
type OutputPort struct {
	name        string
	kind        domain.DataKind
	node        *Node
	value       any
	hasValue    bool
	subscribers []*InputPort
}

func newOutputPort(n *Node, name string, kind domain.DataKind) *OutputPort {
	return &OutputPort{name: name, kind: kind, node: n}
}

func (p *OutputPort) Name() string          { return p.name }
func (p *OutputPort) Kind() domain.DataKind { return p.kind }
func (p *OutputPort) Node() *Node           { return p.node }

// Value executes the owning node and returns the cached result.
// If execution fails the previous cached value is returned with the error.
func (p *OutputPort) Value() (any, error) {
	if err := p.node.ExecuteAndCache(); err != nil {
		return p.value, err
	}
	return p.value, nil
}

// CachedValue returns the last computed value without executing anything.
func (p *OutputPort) CachedValue() (any, bool) {
	return p.value, p.hasValue
}

// SetValue stores v as the cached value.
func (p *OutputPort) SetValue(v any) error {
	v = domain.Normalize(v)
	if err := domain.Check(p.kind, v); err != nil {
		return fmt.Errorf("output %q: %w", p.name, err)
	}
	p.value = v
	p.hasValue = true
	return nil
}

// Subscribers returns the inputs currently wired to this output.
func (p *OutputPort) Subscribers() []*InputPort {
	return slices.Clone(p.subscribers)
}

// DisconnectAll severs every connection fed by this output.
func (p *OutputPort) DisconnectAll() {
	for _, in := range p.Subscribers() {
		in.Disconnect()
	}
}

// dependsOn reports whether node n (transitively) consumes an output of target.
// Connecting target's output into n is safe unless the reverse already holds.
func dependsOn(n, target *Node) bool {
	if n == target {
		return true
	}
	seen := map[*Node]bool{n: true}
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, in := range cur.inputList {
			if in.conn == nil {
				continue
			}
			up := in.conn.node
			if up == target {
				return true
			}
			if !seen[up] {
				seen[up] = true
				stack = append(stack, up)
			}
		}
	}
	return false
}

func (n *Node) emitConnection(t domain.EventType, out *OutputPort, in *InputPort) {
	if n.graph == nil {
		return
	}
	hook := n.graph.hooks.OnConnect
	if t == domain.EventDisconnect {
		hook = n.graph.hooks.OnDisconnect
	}
	if hook == nil {
		return
	}
	hook(&domain.ConnectionEvent{
		EventBase:      domain.EventBase{Timestamp: time.Now(), Type: t},
		FromInstanceID: out.node.UniqueIdentifier(),
		FromOutput:     out.name,
		ToInstanceID:   in.node.UniqueIdentifier(),
		ToInput:        in.name,
	})
}
