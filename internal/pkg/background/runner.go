// Package background runs fire-and-forget work that must outlive the request
// that scheduled it but not the process.
package background

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"

	"go.uber.org/atomic"
)

const defaultLimit = 64

// Runner bounds the number of in-flight tasks. Tasks scheduled while the
// runner is full or shutting down are dropped and counted.
type Runner struct {
	slots   chan struct{}
	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool
	dropped *atomic.Int64
}

func NewRunner(limit int) *Runner {
	if limit < 1 {
		limit = defaultLimit
	}
	return &Runner{
		slots:   make(chan struct{}, limit),
		dropped: atomic.NewInt64(0),
	}
}

// Go runs fn with a context detached from ctx's cancellation. It reports
// whether the task was accepted.
func (r *Runner) Go(ctx context.Context, name string, fn func(ctx context.Context)) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.stopped {
		r.drop(ctx, name, "runner stopped")
		return false
	}

	select {
	case r.slots <- struct{}{}:
	default:
		r.drop(ctx, name, "runner full")
		return false
	}

	taskCtx := context.WithoutCancel(ctx)
	r.wg.Go(func() {
		defer func() {
			<-r.slots
			if rec := recover(); rec != nil {
				slog.ErrorContext(taskCtx, "background task panicked",
					"task", name, "panic", rec, "stack", string(debug.Stack()))
			}
		}()
		fn(taskCtx)
	})
	return true
}

// Dropped is the number of tasks rejected since the runner was created.
func (r *Runner) Dropped() int64 { return r.dropped.Load() }

// Shutdown stops accepting tasks and waits for running ones until ctx is done.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) drop(ctx context.Context, name, reason string) {
	r.dropped.Inc()
	slog.WarnContext(ctx, "background task dropped", "task", name, "reason", reason)
}
