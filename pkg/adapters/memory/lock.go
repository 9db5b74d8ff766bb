package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/nodeweave/pkg/ports"
)

// Locker implements ports.DistributedLocker within one process.
// Locks never expire, so ttl is ignored.
type Locker struct {
	mu   sync.Mutex
	keys map[string]chan struct{}
}

// NewLocker creates an in-process locker.
func NewLocker() *Locker {
	return &Locker{keys: make(map[string]chan struct{})}
}

// Lock blocks until key is free or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string, _ time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	sem, ok := l.keys[key]
	if !ok {
		sem = make(chan struct{}, 1)
		l.keys[key] = sem
	}
	l.mu.Unlock()

	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() { <-sem })
		return nil
	}, nil
}
