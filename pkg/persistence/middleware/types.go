// Package middleware decorates graph stores: encryption at rest, redaction
// of secret manual values and validation on save.
package middleware

import "github.com/aretw0/nodeweave/pkg/ports"

// Middleware allows wrapping a GraphStore to add behavior.
type Middleware func(ports.GraphStore) ports.GraphStore

// Chain applies mws so that the first one is outermost.
func Chain(store ports.GraphStore, mws ...Middleware) ports.GraphStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
