// Package nodes provides the builtin node types.
//
// Register installs them into a registry. Nodes with side effects reach the
// outside world only through the collaborators in Deps.
package nodes

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/aretw0/nodeweave/pkg/command"
	"github.com/aretw0/nodeweave/pkg/domain"
	"github.com/aretw0/nodeweave/pkg/graph"
	"github.com/aretw0/nodeweave/pkg/registry"
	"github.com/aretw0/nodeweave/pkg/schema"
)

// Builtin type identifiers.
const (
	ConstString    = "const.string"
	ConstBoolean   = "const.boolean"
	ConstInteger   = "const.integer"
	ConstVector3   = "const.vector3"
	Print          = "print"
	PrintMulti     = "print.multi"
	MathAdd        = "math.add"
	StringConcat   = "string.concat"
	LogicNot       = "logic.not"
	Vector3Compose = "vector3.compose"
	Vector3Split   = "vector3.split"
	Vector3Add     = "vector3.add"
	SceneJoint     = "scene.joint"
)

// ErrNoInterpreter is returned by scene nodes when no interpreter is wired.
var ErrNoInterpreter = errors.New("no scene interpreter configured")

// Sink receives the text produced by print nodes.
type Sink interface {
	Print(line string) error
}

// Deps are the collaborators of side-effecting nodes.
type Deps struct {
	Sink        Sink
	Interpreter command.Interpreter
	Logger      *slog.Logger
}

// WriterSink prints each line to an io.Writer.
type WriterSink struct {
	W io.Writer
}

// Print implements Sink.
func (s WriterSink) Print(line string) error {
	_, err := fmt.Fprintln(s.W, line)
	return err
}

// Buffer is a Sink that keeps every printed line in memory.
type Buffer struct {
	mu    sync.Mutex
	lines []string
}

// Print implements Sink.
func (b *Buffer) Print(line string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
	return nil
}

// Lines returns a copy of the printed lines.
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.lines...)
}

// Register installs every builtin type into reg.
func Register(reg *registry.Registry, deps Deps) error {
	if deps.Sink == nil {
		deps.Sink = WriterSink{W: io.Discard}
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}

	defs := []struct {
		id, title string
		factory   registry.Factory
	}{
		{ConstString, "String", constant(domain.KindString)},
		{ConstBoolean, "Boolean", constant(domain.KindBoolean)},
		{ConstInteger, "Integer", constant(domain.KindInteger)},
		{ConstVector3, "Vector3", constant(domain.KindVector3)},
		{Print, "Print", printer(deps)},
		{PrintMulti, "Print Multiple", printMulti(deps)},
		{MathAdd, "Add", mathAdd},
		{StringConcat, "Concatenate", stringConcat},
		{LogicNot, "Not", logicNot},
		{Vector3Compose, "Compose Vector3", vectorCompose},
		{Vector3Split, "Split Vector3", vectorSplit},
		{Vector3Add, "Add Vector3", vectorAdd},
		{SceneJoint, "Create Joint", sceneJoint(deps)},
	}

	var errs []error
	for _, d := range defs {
		if err := reg.Register(d.id, d.title, d.factory); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewRegistry returns a registry preloaded with the builtins.
func NewRegistry(deps Deps) (*registry.Registry, error) {
	reg := registry.NewRegistry()
	if err := Register(reg, deps); err != nil {
		return nil, err
	}
	return reg, nil
}

// constant forwards its "value" input, so the value is edited as a manual value.
func constant(kind domain.DataKind) registry.Factory {
	sig := schema.Signature{
		Inputs:  []schema.PortDef{schema.In("value", kind)},
		Outputs: []schema.PortDef{schema.Out("value", kind)},
	}
	return func() graph.Behavior {
		return graph.Define(sig, func(ec *graph.ExecContext) (any, error) {
			return ec.Input("value"), nil
		})
	}
}

func printer(deps Deps) registry.Factory {
	sig := schema.Signature{
		Inputs: []schema.PortDef{schema.In("text", domain.KindString)},
	}
	return func() graph.Behavior {
		return graph.Define(sig, func(ec *graph.ExecContext) (any, error) {
			return nil, deps.Sink.Print(ec.String("text"))
		})
	}
}

func printMulti(deps Deps) registry.Factory {
	sig := schema.Signature{
		Inputs: []schema.PortDef{
			schema.In("string", domain.KindString),
			schema.In("boolean", domain.KindBoolean),
		},
	}
	return func() graph.Behavior {
		return graph.Define(sig, func(ec *graph.ExecContext) (any, error) {
			return nil, deps.Sink.Print(fmt.Sprintf("%s %t", ec.String("string"), ec.Bool("boolean")))
		})
	}
}

func mathAdd() graph.Behavior {
	return graph.Define(schema.Signature{
		Inputs: []schema.PortDef{
			schema.In("a", domain.KindInteger),
			schema.In("b", domain.KindInteger),
		},
		Outputs: []schema.PortDef{schema.Out("sum", domain.KindInteger)},
	}, func(ec *graph.ExecContext) (any, error) {
		return ec.Int("a") + ec.Int("b"), nil
	})
}

func stringConcat() graph.Behavior {
	return graph.Define(schema.Signature{
		Inputs: []schema.PortDef{
			schema.In("a", domain.KindString),
			schema.In("b", domain.KindString),
			schema.In("separator", domain.KindString),
		},
		Outputs: []schema.PortDef{schema.Out("out", domain.KindString)},
	}, func(ec *graph.ExecContext) (any, error) {
		return strings.Join([]string{ec.String("a"), ec.String("b")}, ec.String("separator")), nil
	})
}

func logicNot() graph.Behavior {
	return graph.Define(schema.Signature{
		Inputs:  []schema.PortDef{schema.In("in", domain.KindBoolean)},
		Outputs: []schema.PortDef{schema.Out("out", domain.KindBoolean)},
	}, func(ec *graph.ExecContext) (any, error) {
		return !ec.Bool("in"), nil
	})
}

func vectorCompose() graph.Behavior {
	return graph.Define(schema.Signature{
		Inputs: []schema.PortDef{
			schema.In("x", domain.KindInteger),
			schema.In("y", domain.KindInteger),
			schema.In("z", domain.KindInteger),
		},
		Outputs: []schema.PortDef{schema.Out("vector", domain.KindVector3)},
	}, func(ec *graph.ExecContext) (any, error) {
		return domain.Vector3{
			X: float64(ec.Int("x")),
			Y: float64(ec.Int("y")),
			Z: float64(ec.Int("z")),
		}, nil
	})
}

// vectorSplit truncates each component toward zero.
func vectorSplit() graph.Behavior {
	return graph.Define(schema.Signature{
		Inputs: []schema.PortDef{schema.In("vector", domain.KindVector3)},
		Outputs: []schema.PortDef{
			schema.Out("x", domain.KindInteger),
			schema.Out("y", domain.KindInteger),
			schema.Out("z", domain.KindInteger),
		},
	}, func(ec *graph.ExecContext) (any, error) {
		v := ec.Vector("vector")
		err := errors.Join(
			ec.SetOutput("x", int64(v.X)),
			ec.SetOutput("y", int64(v.Y)),
			ec.SetOutput("z", int64(v.Z)),
		)
		return nil, err
	})
}

func vectorAdd() graph.Behavior {
	return graph.Define(schema.Signature{
		Inputs: []schema.PortDef{
			schema.In("a", domain.KindVector3),
			schema.In("b", domain.KindVector3),
		},
		Outputs: []schema.PortDef{schema.Out("sum", domain.KindVector3)},
	}, func(ec *graph.ExecContext) (any, error) {
		return ec.Vector("a").Add(ec.Vector("b")), nil
	})
}

// sceneJoint creates a joint in the external tool and outputs the name the
// tool assigned. An empty parent creates a root joint.
func sceneJoint(deps Deps) registry.Factory {
	sig := schema.Signature{
		Inputs: []schema.PortDef{
			schema.In("name", domain.KindString),
			schema.In("parent", domain.KindString),
			schema.In("position", domain.KindVector3),
		},
		Outputs: []schema.PortDef{schema.Out("joint", domain.KindString)},
	}
	return func() graph.Behavior {
		return graph.Define(sig, func(ec *graph.ExecContext) (any, error) {
			if deps.Interpreter == nil {
				return nil, ErrNoInterpreter
			}
			var parent *command.Handle
			if name := ec.String("parent"); name != "" {
				if !deps.Interpreter.Exists(name) {
					return nil, fmt.Errorf("parent %q: %w", name, command.ErrEntityNotFound)
				}
				parent = &command.Handle{Name: name}
			}
			pos := ec.Vector("position")
			h, err := deps.Interpreter.CreateJoint(ec.String("name"), parent, &pos)
			if err != nil {
				return nil, err
			}
			deps.Logger.Debug("joint created", "name", h.Name, "node", ec.Node().UniqueIdentifier())
			return h.Name, nil
		})
	}
}
