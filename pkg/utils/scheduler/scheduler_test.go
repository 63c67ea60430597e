package scheduler_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/hy-sato/picket/pkg/utils/scheduler"
)

func TestTask(t *testing.T) {
	t.Run("runs on every tick until stopped", func(t *testing.T) {
		var runs atomic.Int32
		task := scheduler.New(10*time.Millisecond, func(context.Context) {
			runs.Add(1)
		})

		task.Start(context.Background())
		time.Sleep(100 * time.Millisecond)
		task.Stop()

		n := runs.Load()
		gt.True(t, n >= 2)

		time.Sleep(50 * time.Millisecond)
		gt.Value(t, runs.Load()).Equal(n)
	})

	t.Run("start is idempotent", func(t *testing.T) {
		var runs atomic.Int32
		task := scheduler.New(10*time.Millisecond, func(context.Context) {
			runs.Add(1)
		})

		ctx := context.Background()
		task.Start(ctx)
		task.Start(ctx)
		time.Sleep(55 * time.Millisecond)
		task.Stop()

		// a second loop would roughly double the count
		gt.True(t, runs.Load() <= 7)
	})

	t.Run("stop before start is a no-op", func(t *testing.T) {
		task := scheduler.New(time.Second, func(context.Context) {})
		task.Stop()
	})

	t.Run("a panicking run does not kill the loop", func(t *testing.T) {
		var runs atomic.Int32
		task := scheduler.New(10*time.Millisecond, func(context.Context) {
			if runs.Add(1) == 1 {
				panic("boom")
			}
		})

		task.Start(context.Background())
		time.Sleep(60 * time.Millisecond)
		task.Stop()

		gt.True(t, runs.Load() >= 2)
	})

	t.Run("parent cancellation stops the loop", func(t *testing.T) {
		var runs atomic.Int32
		task := scheduler.New(10*time.Millisecond, func(context.Context) {
			runs.Add(1)
		})

		ctx, cancel := context.WithCancel(context.Background())
		task.Start(ctx)
		time.Sleep(35 * time.Millisecond)
		cancel()
		time.Sleep(30 * time.Millisecond)

		n := runs.Load()
		time.Sleep(30 * time.Millisecond)
		gt.Value(t, runs.Load()).Equal(n)

		task.Stop()
	})
}
