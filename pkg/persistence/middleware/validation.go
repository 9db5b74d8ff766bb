package middleware

import (
	"context"

	"github.com/aretw0/nodeweave/pkg/document"
	"github.com/aretw0/nodeweave/pkg/ports"
)

type validationMiddleware struct {
	next  ports.GraphStore
	types document.SignatureLookup
}

// NewValidationMiddleware rejects documents that do not validate against types
// before they reach the store.
func NewValidationMiddleware(types document.SignatureLookup) Middleware {
	return func(next ports.GraphStore) ports.GraphStore {
		return &validationMiddleware{next: next, types: types}
	}
}

func (m *validationMiddleware) Save(ctx context.Context, name string, doc *document.Document) error {
	if err := document.Validate(doc, m.types); err != nil {
		return err
	}
	return m.next.Save(ctx, name, doc)
}

func (m *validationMiddleware) Load(ctx context.Context, name string) (*document.Document, error) {
	return m.next.Load(ctx, name)
}

func (m *validationMiddleware) Delete(ctx context.Context, name string) error {
	return m.next.Delete(ctx, name)
}

func (m *validationMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
