// Package cli wires configuration into a ready-to-use editor for the
// nodeweave commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/nodeweave"
	"github.com/aretw0/nodeweave/internal/config"
	"github.com/aretw0/nodeweave/pkg/adapters/file"
	httpadapter "github.com/aretw0/nodeweave/pkg/adapters/http"
	"github.com/aretw0/nodeweave/pkg/adapters/memory"
	"github.com/aretw0/nodeweave/pkg/adapters/redis"
	"github.com/aretw0/nodeweave/pkg/command"
	"github.com/aretw0/nodeweave/pkg/document"
	"github.com/aretw0/nodeweave/pkg/nodes"
	"github.com/aretw0/nodeweave/pkg/observability"
	"github.com/aretw0/nodeweave/pkg/persistence/middleware"
	"github.com/aretw0/nodeweave/pkg/ports"
	"github.com/aretw0/nodeweave/pkg/registry"
	"github.com/prometheus/client_golang/prometheus"
)

// Runtime bundles an editor with the collaborators the commands expose.
type Runtime struct {
	Editor  *nodeweave.Editor
	Scene   *command.Recorder
	Streams *httpadapter.StreamManager
	Metrics *prometheus.Registry
	Store   ports.GraphStore
	closers []func() error
}

// NewRuntime builds the editor described by cfg. Print nodes write to out.
func NewRuntime(cfg config.Config, logger *slog.Logger, out io.Writer) (*Runtime, error) {
	rt := &Runtime{
		Scene:   command.NewRecorder(logger),
		Streams: httpadapter.NewStreamManager(),
		Metrics: prometheus.NewRegistry(),
	}

	metrics, err := observability.NewMetrics(rt.Metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	var (
		store  ports.GraphStore
		locker ports.DistributedLocker
	)
	switch cfg.Store {
	case config.StoreMemory:
		store, locker = memory.NewStore(), memory.NewLocker()
	case config.StoreRedis:
		prefix := cfg.Redis.Prefix
		if prefix == "" {
			prefix = redis.DefaultPrefix
		}
		rs := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithTTL(cfg.Redis.TTL), redis.WithPrefix(prefix))
		store = rs
		locker = redis.NewLocker(rs.Client(), prefix)
		rt.closers = append(rt.closers, rs.Close)
	default:
		store = file.New(cfg.StoreDir, document.Format(cfg.Format))
	}

	reg, err := nodes.NewRegistry(nodes.Deps{
		Sink:        nodes.WriterSink{W: out},
		Interpreter: rt.Scene,
		Logger:      logger,
	})
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("failed to register builtin nodes: %w", err)
	}

	mws, err := storeMiddleware(cfg.Security, reg)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	store = middleware.Chain(store, mws...)
	rt.Store = store

	editorOpts := []nodeweave.Option{
		nodeweave.WithLogger(logger),
		nodeweave.WithStore(store),
		nodeweave.WithRegistry(reg),
		nodeweave.WithLifecycleHooks(metrics.Hooks()),
		nodeweave.WithLifecycleHooks(rt.Streams.Hooks()),
	}
	if locker != nil {
		editorOpts = append(editorOpts, nodeweave.WithLocker(locker, nodeweave.DefaultLockTTL))
	}

	ed, err := nodeweave.New(editorOpts...)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("error initializing editor: %w", err)
	}
	rt.Editor = ed
	return rt, nil
}

// storeMiddleware builds the decorators for sec, outermost first:
// validation sees the plain graph, redaction runs before encryption.
func storeMiddleware(sec config.Security, reg *registry.Registry) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if sec.ValidateOnSave {
		mws = append(mws, middleware.NewValidationMiddleware(reg))
	}
	if len(sec.Redact) > 0 {
		mw, err := middleware.NewRedactionMiddleware(sec.Redact)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	active, fallback, err := sec.Keys()
	if err != nil {
		return nil, err
	}
	if active != nil {
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		})
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	return mws, nil
}

// Close releases store connections.
func (rt *Runtime) Close() error {
	var errs []error
	for _, c := range rt.closers {
		errs = append(errs, c())
	}
	rt.closers = nil
	return errors.Join(errs...)
}

// Open replaces the editor graph with source: a graph file path when one
// exists, otherwise a name in the configured store.
func (rt *Runtime) Open(ctx context.Context, source string) error {
	if _, err := os.Stat(source); err == nil {
		doc, err := ReadDocument(source)
		if err != nil {
			return err
		}
		return rt.Editor.Restore(doc)
	}
	return rt.Editor.Load(ctx, source)
}

// ReadDocument decodes a graph file, picking the format from its extension.
func ReadDocument(path string) (*document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}
	doc, err := document.Decode(data, document.FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
