package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes writers of the same graph across processes.
type DistributedLocker interface {
	// Lock acquires the lock for key (e.g., a graph name).
	// It blocks until the lock is acquired or the context is canceled.
	// The ttl bounds how long a crashed holder can keep the lock; adapters
	// that cannot expire locks may ignore it.
	// Returns an UnlockFunc that MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
