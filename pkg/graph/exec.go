package graph

import (
	"fmt"

	"github.com/aretw0/nodeweave/pkg/domain"
)

// ExecContext is handed to an execute body. It exposes the gathered input
// values and collects named outputs.
type ExecContext struct {
	node *Node
	args []any
	in   map[string]any
	out  map[string]any
	err  error
}

// Node returns the executing node.
func (c *ExecContext) Node() *Node { return c.node }

// Args returns the input values in declaration order.
func (c *ExecContext) Args() []any { return c.args }

// Input returns the value gathered for the named input, or nil if undeclared.
func (c *ExecContext) Input(key string) any { return c.in[key] }

// String returns a string input; the zero value if absent or of another kind.
func (c *ExecContext) String(key string) string {
	s, _ := c.in[key].(string)
	return s
}

// Bool returns a boolean input.
func (c *ExecContext) Bool(key string) bool {
	b, _ := c.in[key].(bool)
	return b
}

// Int returns an integer input.
func (c *ExecContext) Int(key string) int64 {
	i, _ := domain.Normalize(c.in[key]).(int64)
	return i
}

// Vector returns a vector3 input.
func (c *ExecContext) Vector(key string) domain.Vector3 {
	v, _ := domain.Normalize(c.in[key]).(domain.Vector3)
	return v
}

// SetOutput records the value of a named output. Values are committed to the
// ports only if the whole execution succeeds. An invalid write also fails the
// execution even if the body ignores the returned error.
func (c *ExecContext) SetOutput(key string, v any) error {
	out, ok := c.node.outputs[key]
	if !ok {
		return c.record(fmt.Errorf("%w: output %q", domain.ErrUnknownPort, key))
	}
	v = domain.Normalize(v)
	got, ok := domain.KindOf(v)
	if !ok || got != out.kind {
		return c.record(fmt.Errorf("%w: output %q expects %s, got %T",
			domain.ErrReturnTypeMismatch, key, out.kind, v))
	}
	c.out[key] = v
	return nil
}

func (c *ExecContext) record(err error) error {
	if c.err == nil {
		c.err = err
	}
	return err
}
