// Package ext defines the extension system for hookq. Extensions are
// notified of lifecycle events (hook enqueued, batch claimed, execution
// started/completed, scheduler errors) and can react to them — logging,
// metrics, tracing, etc.
//
// Each lifecycle hook is a separate interface so extensions opt in only
// to the events they care about.
package ext

import (
	"context"
	"time"

	"github.com/xraph/hookq/hook"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// HookEnqueued is called after a hook is successfully enqueued.
type HookEnqueued interface {
	OnHookEnqueued(ctx context.Context, h *hook.Hook) error
}

// BatchClaimed is called after each poll tick's claim query. claimed is
// the number of hooks claimed this tick (zero when the tick was skipped
// for backpressure or nothing was due); outstanding is the number of
// hooks that were still processing at tick start.
type BatchClaimed interface {
	OnBatchClaimed(ctx context.Context, claimed int, outstanding int64) error
}

// ExecutionStarted is called when a claimed hook begins executing.
type ExecutionStarted interface {
	OnExecutionStarted(ctx context.Context, h *hook.Hook) error
}

// ExecutionCompleted is called after a hook cycle reaches a terminal
// status. h carries the persisted status and results.
type ExecutionCompleted interface {
	OnExecutionCompleted(ctx context.Context, h *hook.Hook, elapsed time.Duration) error
}

// SchedulerError is called when a poll tick fails against the store.
type SchedulerError interface {
	OnSchedulerError(ctx context.Context, err error) error
}

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
