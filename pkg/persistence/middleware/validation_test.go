package middleware_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/nodeweave/pkg/adapters/memory"
	"github.com/aretw0/nodeweave/pkg/document"
	"github.com/aretw0/nodeweave/pkg/domain"
	"github.com/aretw0/nodeweave/pkg/nodes"
	"github.com/aretw0/nodeweave/pkg/persistence/middleware"
	"github.com/aretw0/nodeweave/pkg/ports"
	"github.com/aretw0/nodeweave/pkg/schema"
)

func TestValidationMiddleware(t *testing.T) {
	reg, err := nodes.NewRegistry(nodes.Deps{})
	if err != nil {
		t.Fatal(err)
	}
	store := memory.NewStore()
	validated := middleware.NewValidationMiddleware(reg)(store)
	ctx := context.Background()

	bad := &document.Document{Items: []document.Item{{TypeIdentifier: "nope", InstanceID: "x"}}}
	err = validated.Save(ctx, "bad", bad)
	var aggr *schema.AggregateError
	if !errors.As(err, &aggr) {
		t.Fatalf("Expected aggregate error, got %v", err)
	}
	if !errors.Is(err, domain.ErrUnknownTypeID) {
		t.Errorf("Expected ErrUnknownTypeID in %v", err)
	}
	if _, err := store.Load(ctx, "bad"); !errors.Is(err, domain.ErrGraphNotFound) {
		t.Errorf("Invalid graph reached the store: %v", err)
	}

	if err := validated.Save(ctx, "good", secretDoc()); err != nil {
		t.Fatalf("Save valid graph failed: %v", err)
	}
}

func TestChain_OrderIsOutermostFirst(t *testing.T) {
	reg, err := nodes.NewRegistry(nodes.Deps{})
	if err != nil {
		t.Fatal(err)
	}
	key := generateKey(t)
	enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
	if err != nil {
		t.Fatal(err)
	}
	store := memory.NewStore()
	var chained ports.GraphStore = middleware.Chain(store, middleware.NewValidationMiddleware(reg), enc)
	ctx := context.Background()

	// Validation runs before encryption, so the envelope type never has to be registered.
	if err := chained.Save(ctx, "g", secretDoc()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := chained.Load(ctx, "g")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := loaded.Find("token"); !ok {
		t.Fatal("Expected decrypted document")
	}
}
