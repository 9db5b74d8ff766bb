package ports

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/nodeweave/pkg/document"
	"github.com/aretw0/nodeweave/pkg/domain"
)

// GraphStore defines the interface for persisting graph documents by name.
type GraphStore interface {
	// Save persists the document under name, replacing any previous version.
	Save(ctx context.Context, name string, doc *document.Document) error

	// Load retrieves the document stored under name.
	// Returns domain.ErrGraphNotFound if nothing is stored under name.
	Load(ctx context.Context, name string) (*document.Document, error)

	// Delete removes the document. Deleting a missing name is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the stored names in lexical order.
	List(ctx context.Context) ([]string, error)
}

// ValidateName rejects names that cannot be used as a store key or a file name.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", domain.ErrInvalidGraphName, name)
	}
	if strings.ContainsAny(name, `/\:`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: %q contains a path separator", domain.ErrInvalidGraphName, name)
	}
	return nil
}
