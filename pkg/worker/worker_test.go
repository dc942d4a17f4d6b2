package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool(t *testing.T) {
	t.Run("runs all tasks", func(t *testing.T) {
		pool := NewPool(4, nil)

		var count int64
		for i := 0; i < 20; i++ {
			pool.Submit(func(ctx context.Context) error {
				atomic.AddInt64(&count, 1)
				return nil
			})
		}

		require.NoError(t, pool.Wait(context.Background()))
		assert.Equal(t, int64(20), atomic.LoadInt64(&count))
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		pool := NewPool(2, nil)

		var current, peak int64
		for i := 0; i < 10; i++ {
			pool.Submit(func(ctx context.Context) error {
				n := atomic.AddInt64(&current, 1)
				for {
					p := atomic.LoadInt64(&peak)
					if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt64(&current, -1)
				return nil
			})
		}

		require.NoError(t, pool.Wait(context.Background()))
		assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(2))
	})

	t.Run("joins task errors", func(t *testing.T) {
		pool := NewPool(4, nil)

		sentinel := errors.New("boom")
		pool.Submit(func(ctx context.Context) error { return nil })
		pool.Submit(func(ctx context.Context) error { return sentinel })

		err := pool.Wait(context.Background())
		assert.ErrorIs(t, err, sentinel)
	})

	t.Run("recovers panics as errors", func(t *testing.T) {
		pool := NewPool(1, nil)

		pool.Submit(func(ctx context.Context) error {
			panic("worker exploded")
		})

		err := pool.Wait(context.Background())
		require.Error(t, err)

		var panicErr *PanicError
		require.ErrorAs(t, err, &panicErr)
		assert.Equal(t, "worker exploded", panicErr.Value)
		assert.NotEmpty(t, panicErr.StackTrace)
	})

	t.Run("cancelled context fails queued tasks", func(t *testing.T) {
		pool := NewPool(1, nil)

		release := make(chan struct{})
		pool.Submit(func(ctx context.Context) error {
			<-release
			return nil
		})
		for i := 0; i < 5; i++ {
			pool.Submit(func(ctx context.Context) error { return nil })
		}

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- pool.Wait(ctx) }()

		cancel()
		close(release)

		err := <-done
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("wait with no tasks returns nil", func(t *testing.T) {
		pool := NewPool(4, nil)
		assert.NoError(t, pool.Wait(context.Background()))
	})
}
