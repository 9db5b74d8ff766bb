package nodeweave

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/nodeweave/pkg/adapters/memory"
	"github.com/aretw0/nodeweave/pkg/document"
	"github.com/aretw0/nodeweave/pkg/domain"
	"github.com/aretw0/nodeweave/pkg/graph"
	"github.com/aretw0/nodeweave/pkg/nodes"
	"github.com/aretw0/nodeweave/pkg/observability"
	"github.com/aretw0/nodeweave/pkg/ports"
	"github.com/aretw0/nodeweave/pkg/registry"
	"github.com/aretw0/nodeweave/pkg/schema"
)

// DefaultLockTTL bounds how long a crashed Save can hold the store lock.
const DefaultLockTTL = 30 * time.Second

// Editor is the high-level entry point for the nodeweave library.
// It owns one graph together with its registry and store, and serializes
// every operation on them. It is safe for concurrent use.
type Editor struct {
	mu       sync.Mutex
	registry *registry.Registry
	graph    *graph.Graph
	store    ports.GraphStore
	locker   ports.DistributedLocker
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	deps     nodes.Deps
	lockTTL  time.Duration
}

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithRegistry uses reg instead of a registry preloaded with the builtin nodes.
func WithRegistry(reg *registry.Registry) Option {
	return func(e *Editor) {
		e.registry = reg
	}
}

// WithNodeDeps sets the collaborators of the builtin side-effecting nodes.
// It has no effect together with WithRegistry.
func WithNodeDeps(deps nodes.Deps) Option {
	return func(e *Editor) {
		e.deps = deps
	}
}

// WithStore sets the graph store used by Save and Load (default: in memory).
func WithStore(store ports.GraphStore) Option {
	return func(e *Editor) {
		e.store = store
	}
}

// WithLocker serializes Save across processes sharing the store.
func WithLocker(l ports.DistributedLocker, ttl time.Duration) Option {
	return func(e *Editor) {
		e.locker = l
		e.lockTTL = ttl
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Editor) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// New initializes an Editor with an empty graph.
func New(opts ...Option) (*Editor, error) {
	e := &Editor{}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	if e.registry == nil {
		if e.deps.Logger == nil {
			e.deps.Logger = e.logger
		}
		reg, err := nodes.NewRegistry(e.deps)
		if err != nil {
			return nil, fmt.Errorf("failed to register builtin nodes: %w", err)
		}
		e.registry = reg
	}
	if e.store == nil {
		e.store = memory.NewStore()
	}
	if e.lockTTL <= 0 {
		e.lockTTL = DefaultLockTTL
	}
	e.hooks = observability.LogHooks(e.logger).Merge(e.hooks)
	e.graph = graph.New(e.registry, graph.WithHooks(e.hooks))
	return e, nil
}

// Registry returns the node type registry.
func (e *Editor) Registry() *registry.Registry { return e.registry }

// Graph returns the current graph. The graph is replaced by Load, and
// direct use bypasses the editor lock; prefer View for concurrent callers.
func (e *Editor) Graph() *graph.Graph {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph
}

// View runs fn with exclusive access to the current graph.
func (e *Editor) View(fn func(g *graph.Graph) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.graph)
}

func (e *Editor) node(id string) (*graph.Node, error) {
	n, ok := e.graph.FindNodeByInstanceID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	return n, nil
}

// AddNode creates a node of the given type at pos and adds it to the graph.
func (e *Editor) AddNode(typeID string, pos domain.Position) (*graph.Node, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	n, err := e.registry.Create(typeID)
	if err != nil {
		return nil, err
	}
	n.Position = pos
	if err := e.graph.AddNode(n); err != nil {
		return nil, err
	}
	e.logger.Debug("node added", "node_id", n.UniqueIdentifier(), "type", typeID)
	return n, nil
}

// RemoveNode removes the node and every connection touching it.
func (e *Editor) RemoveNode(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	n, err := e.node(id)
	if err != nil {
		return err
	}
	e.graph.RemoveNode(n)
	e.logger.Debug("node removed", "node_id", id)
	return nil
}

// MoveNode updates the canvas position of a node.
func (e *Editor) MoveNode(id string, pos domain.Position) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	n, err := e.node(id)
	if err != nil {
		return err
	}
	n.Position = pos
	return nil
}

// Connect wires fromID.output into toID.input.
func (e *Editor) Connect(fromID, output, toID, input string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	from, err := e.node(fromID)
	if err != nil {
		return err
	}
	to, err := e.node(toID)
	if err != nil {
		return err
	}
	return e.graph.Connect(from, output, to, input)
}

// Disconnect severs the connection feeding toID.input.
func (e *Editor) Disconnect(toID, input string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	to, err := e.node(toID)
	if err != nil {
		return err
	}
	return e.graph.Disconnect(to, input)
}

// SetManualValue sets the manual value of an input. raw is coerced to the
// port kind the same way document values are, so JSON-decoded numbers and
// {"x","y","z"} maps are accepted.
func (e *Editor) SetManualValue(id, input string, raw any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	n, err := e.node(id)
	if err != nil {
		return err
	}
	in, ok := n.Input(input)
	if !ok {
		return fmt.Errorf("%w: %s has no input %q", domain.ErrUnknownPort, n.TypeIdentifier(), input)
	}
	v, err := schema.DecodeValue(in.Kind(), raw)
	if err != nil {
		return fmt.Errorf("input %q: %w", input, err)
	}
	return in.SetManualValue(v)
}

// Evaluate executes the node in a fresh evaluation pass.
func (e *Editor) Evaluate(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	n, err := e.node(id)
	if err != nil {
		return err
	}
	return e.graph.Evaluate(n)
}

// EvaluateAll executes every node once in a single pass.
func (e *Editor) EvaluateAll() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph.EvaluateAll()
}

// Pull returns the value of an output, executing whatever is needed.
func (e *Editor) Pull(id, output string) (any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	n, err := e.node(id)
	if err != nil {
		return nil, err
	}
	return e.graph.Pull(n, output)
}

// Snapshot returns the current graph as a document.
func (e *Editor) Snapshot() *document.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return document.Serialize(e.graph)
}

// Save stores the current graph under name.
func (e *Editor) Save(ctx context.Context, name string) error {
	if err := ports.ValidateName(name); err != nil {
		return err
	}
	doc := e.Snapshot()

	if e.locker != nil {
		unlock, err := e.locker.Lock(ctx, name, e.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to lock graph %q: %w", name, err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				e.logger.Warn("failed to release graph lock", "graph", name, "error", err)
			}
		}()
	}

	if err := e.store.Save(ctx, name, doc); err != nil {
		return fmt.Errorf("failed to save graph %q: %w", name, err)
	}
	e.logger.Info("graph saved", "graph", name, "nodes", len(doc.Items))
	return nil
}

// Load replaces the current graph with the one stored under name.
// On any error the current graph is left untouched.
func (e *Editor) Load(ctx context.Context, name string) error {
	doc, err := e.store.Load(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to load graph %q: %w", name, err)
	}
	return e.Restore(doc)
}

// Restore replaces the current graph with one built from doc.
// On any error the current graph is left untouched.
func (e *Editor) Restore(doc *document.Document) error {
	g, err := document.Deserialize(doc, e.registry, graph.WithHooks(e.hooks))
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.graph = g
	e.mu.Unlock()

	e.logger.Info("graph restored", "nodes", g.Len())
	return nil
}

// Delete removes a stored graph.
func (e *Editor) Delete(ctx context.Context, name string) error {
	return e.store.Delete(ctx, name)
}

// List returns the names of stored graphs.
func (e *Editor) List(ctx context.Context) ([]string, error) {
	return e.store.List(ctx)
}

// Validate checks doc against the editor's registry without loading it.
func (e *Editor) Validate(doc *document.Document) error {
	return document.Validate(doc, e.registry)
}
