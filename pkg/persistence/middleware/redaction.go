package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/nodeweave/pkg/document"
	"github.com/aretw0/nodeweave/pkg/ports"
)

// Mask replaces redacted manual values.
const Mask = "***"

type redactionMiddleware struct {
	next     ports.GraphStore
	patterns []*regexp.Regexp
}

// NewRedactionMiddleware creates a middleware that masks string manual values
// of inputs whose name matches one of the patterns. Other kinds are kept so
// the stored graph still loads.
func NewRedactionMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("redaction pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.GraphStore) ports.GraphStore {
		return &redactionMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *redactionMiddleware) Save(ctx context.Context, name string, doc *document.Document) error {
	// Clone to avoid side effects on the caller's document.
	cloned := doc.Clone()
	for i := range cloned.Items {
		m.mask(cloned.Items[i].Inputs)
	}
	return m.next.Save(ctx, name, cloned)
}

func (m *redactionMiddleware) mask(inputs map[string]document.InputState) {
	for name, state := range inputs {
		if _, ok := state.ManualValue.(string); !ok {
			continue
		}
		for _, p := range m.patterns {
			if p.MatchString(name) {
				state.ManualValue = Mask
				inputs[name] = state
				break
			}
		}
	}
}

func (m *redactionMiddleware) Load(ctx context.Context, name string) (*document.Document, error) {
	return m.next.Load(ctx, name)
}

func (m *redactionMiddleware) Delete(ctx context.Context, name string) error {
	return m.next.Delete(ctx, name)
}

func (m *redactionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
