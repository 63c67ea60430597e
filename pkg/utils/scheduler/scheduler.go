package scheduler

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/m-mizutani/ctxlog"
)

// Task invokes a function on a fixed interval until stopped. It replaces the
// classic sleep-forever cleanup loop with something tied to the process
// lifecycle: started once at boot, cancelled at shutdown.
type Task struct {
	interval time.Duration
	fn       func(ctx context.Context)

	startOnce sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

// New creates a periodic task. fn runs once per interval; a panic inside fn
// is recovered and logged so a single bad run never kills the loop.
func New(interval time.Duration, fn func(ctx context.Context)) *Task {
	return &Task{
		interval: interval,
		fn:       fn,
		done:     make(chan struct{}),
	}
}

// Start launches the loop. Subsequent calls are no-ops.
func (t *Task) Start(ctx context.Context) {
	t.startOnce.Do(func() {
		ctx, t.cancel = context.WithCancel(ctx)

		go func() {
			defer close(t.done)

			ticker := time.NewTicker(t.interval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					t.run(ctx)
				}
			}
		}()
	})
}

// Stop cancels the loop and waits for the current run, if any, to finish
func (t *Task) Stop() {
	if t.cancel == nil {
		return
	}
	t.cancel()
	<-t.done
}

func (t *Task) run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			ctxlog.From(ctx).Error("panic in scheduled task",
				"recover", r,
				"stack", string(debug.Stack()),
			)
		}
	}()

	t.fn(ctx)
}
