package tests

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/nodeweave/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// LockerContractTest is a reusable test suite that verifies if an adapter complies with ports.DistributedLocker.
func LockerContractTest(t *testing.T, locker ports.DistributedLocker) {
	t.Helper()
	ctx := context.Background()

	t.Run("LockUnlock", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, "contract-a", 5*time.Second)
		require.NoError(t, err)
		require.NotNil(t, unlock)
		require.NoError(t, unlock(ctx))

		unlock, err = locker.Lock(ctx, "contract-a", 5*time.Second)
		require.NoError(t, err, "lock should be free again after unlock")
		require.NoError(t, unlock(ctx))
	})

	t.Run("Contention", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, "contract-b", 5*time.Second)
		require.NoError(t, err)

		ctxTimeout, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(ctxTimeout, "contract-b", 5*time.Second)
		assert.ErrorIs(t, err, context.DeadlineExceeded, "second holder should block until the deadline")

		require.NoError(t, unlock(ctx))

		unlock, err = locker.Lock(ctx, "contract-b", 5*time.Second)
		require.NoError(t, err)
		require.NoError(t, unlock(ctx))
	})

	t.Run("IndependentKeys", func(t *testing.T) {
		unlockA, err := locker.Lock(ctx, "contract-c", 5*time.Second)
		require.NoError(t, err)
		defer unlockA(ctx)

		ctxTimeout, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		unlockB, err := locker.Lock(ctxTimeout, "contract-d", 5*time.Second)
		require.NoError(t, err, "a different key must not contend")
		require.NoError(t, unlockB(ctx))
	})
}
