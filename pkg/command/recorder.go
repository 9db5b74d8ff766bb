package command

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"

	"github.com/aretw0/nodeweave/pkg/domain"
)

// Call is one recorded interpreter invocation.
type Call struct {
	Op   string `json:"op"`
	Args []any  `json:"args,omitempty"`
}

// Entity is a recorded scene object.
type Entity struct {
	Name     string         `json:"name"`
	Kind     string         `json:"kind"`
	Parent   string         `json:"parent,omitempty"`
	Position domain.Vector3 `json:"position"`
}

// Recorder is an in-memory Interpreter.
// Name clashes are resolved by appending a counter, the way authoring tools do.
type Recorder struct {
	mu       sync.Mutex
	entities map[string]*Entity
	order    []string
	calls    []Call
	logger   *slog.Logger
}

// NewRecorder creates an empty scene. A nil logger discards output.
func NewRecorder(logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Recorder{
		entities: make(map[string]*Entity),
		logger:   logger,
	}
}

func (r *Recorder) record(op string, args ...any) {
	r.calls = append(r.calls, Call{Op: op, Args: args})
	r.logger.Debug("scene command", "op", op, "args", args)
}

// Exists implements Interpreter.
func (r *Recorder) Exists(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("exists", name)
	_, ok := r.entities[name]
	return ok
}

// Delete implements Interpreter. Children are re-parented to the scene root.
func (r *Recorder) Delete(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("delete", name)
	if _, ok := r.entities[name]; !ok {
		return nil
	}
	delete(r.entities, name)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == name })
	for _, e := range r.entities {
		if e.Parent == name {
			e.Parent = ""
		}
	}
	return nil
}

// CreateJoint implements Interpreter.
func (r *Recorder) CreateJoint(name string, parent *Handle, position *domain.Vector3) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if name == "" {
		name = "joint"
	}
	r.record("create_joint", name)

	e := &Entity{Name: r.uniqueName(name), Kind: "joint"}
	if position != nil {
		e.Position = *position
	}
	if parent != nil {
		if _, ok := r.entities[parent.Name]; !ok {
			return Handle{}, fmt.Errorf("parent %q: %w", parent.Name, ErrEntityNotFound)
		}
		e.Parent = parent.Name
	}
	r.entities[e.Name] = e
	r.order = append(r.order, e.Name)
	return Handle{Name: e.Name}, nil
}

// Parent implements Interpreter.
func (r *Recorder) Parent(parent, child Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("parent", parent.Name, child.Name)
	if _, ok := r.entities[parent.Name]; !ok {
		return fmt.Errorf("parent %q: %w", parent.Name, ErrEntityNotFound)
	}
	c, ok := r.entities[child.Name]
	if !ok {
		return fmt.Errorf("child %q: %w", child.Name, ErrEntityNotFound)
	}
	c.Parent = parent.Name
	return nil
}

// Entities returns a snapshot of the scene in creation order.
func (r *Recorder) Entities() []Entity {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entity, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, *r.entities[name])
	}
	return out
}

// Calls returns the recorded call log.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

func (r *Recorder) uniqueName(name string) string {
	if _, taken := r.entities[name]; !taken {
		return name
	}
	for i := 1; ; i++ {
		candidate := name + strconv.Itoa(i)
		if _, taken := r.entities[candidate]; !taken {
			return candidate
		}
	}
}
