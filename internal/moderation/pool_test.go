package moderation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestPool(t *testing.T) {
	t.Run("RunsWork", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		pool := NewPool(PoolOptions{Size: 2, SpawnThreshold: 5, IdleTimeout: time.Minute})
		defer pool.Close()

		ran := false
		require.NoError(t, pool.Do(context.Background(), func() { ran = true }))
		assert.True(t, ran)
		assert.Equal(t, 1, pool.Workers())
	})

	t.Run("PanicIsReported", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		pool := NewPool(PoolOptions{Size: 1, IdleTimeout: time.Minute, Logger: discardLogger()})
		defer pool.Close()

		err := pool.Do(context.Background(), func() { panic("boom") })
		assert.ErrorIs(t, err, ErrModerationUnavailable)

		assert.NoError(t, pool.Do(context.Background(), func() {}), "worker survives a panic")
	})

	t.Run("GrowsUpToSize", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		pool := NewPool(PoolOptions{Size: 2, SpawnThreshold: 1, IdleTimeout: time.Minute})
		defer pool.Close()

		release := make(chan struct{})
		var wg sync.WaitGroup
		for i := 0; i < 3; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = pool.Do(context.Background(), func() { <-release })
			}()
		}

		assert.Eventually(t, func() bool { return pool.Workers() == 2 }, time.Second, 5*time.Millisecond)
		close(release)
		wg.Wait()
		assert.Equal(t, 2, pool.Workers())
	})

	t.Run("IdleWorkersStop", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		pool := NewPool(PoolOptions{Size: 1, IdleTimeout: 20 * time.Millisecond})
		defer pool.Close()

		require.NoError(t, pool.Do(context.Background(), func() {}))
		assert.Eventually(t, func() bool { return pool.Workers() == 0 }, time.Second, 5*time.Millisecond)

		require.NoError(t, pool.Do(context.Background(), func() {}), "a new worker starts on demand")
	})

	t.Run("CancelledWhileQueued", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		pool := NewPool(PoolOptions{Size: 1, SpawnThreshold: 10, IdleTimeout: time.Minute})
		defer pool.Close()

		release := make(chan struct{})
		started := make(chan struct{})
		done := make(chan error, 1)
		go func() {
			done <- pool.Do(context.Background(), func() {
				close(started)
				<-release
			})
		}()
		<-started

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		err := pool.Do(ctx, func() {})
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		close(release)
		assert.NoError(t, <-done)
	})

	t.Run("Closed", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		pool := NewPool(PoolOptions{Size: 1})
		require.NoError(t, pool.Do(context.Background(), func() {}))
		pool.Close()
		pool.Close()

		assert.ErrorIs(t, pool.Do(context.Background(), func() {}), ErrPoolClosed)
		assert.Equal(t, 0, pool.Workers())
	})
}
