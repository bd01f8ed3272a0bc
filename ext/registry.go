package ext

import (
	"context"
	"log/slog"
	"time"

	"github.com/xraph/hookq/hook"
)

// Named entry types pair a hook implementation with the extension name
// captured at registration time. This avoids type-asserting back to
// Extension inside the emit methods.
type hookEnqueuedEntry struct {
	name string
	hook HookEnqueued
}

type batchClaimedEntry struct {
	name string
	hook BatchClaimed
}

type executionStartedEntry struct {
	name string
	hook ExecutionStarted
}

type executionCompletedEntry struct {
	name string
	hook ExecutionCompleted
}

type schedulerErrorEntry struct {
	name string
	hook SchedulerError
}

type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered extensions and dispatches lifecycle events
// to them. It type-caches extensions at registration time so emit calls
// iterate only over extensions that implement the relevant hook.
type Registry struct {
	extensions []Extension
	logger     *slog.Logger

	// Type-cached slices for each lifecycle hook.
	hookEnqueued       []hookEnqueuedEntry
	batchClaimed       []batchClaimedEntry
	executionStarted   []executionStartedEntry
	executionCompleted []executionCompletedEntry
	schedulerError     []schedulerErrorEntry
	shutdown           []shutdownEntry
}

// NewRegistry creates an extension registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds an extension and type-asserts it into all applicable
// hook caches. Extensions are notified in registration order.
func (r *Registry) Register(e Extension) {
	r.extensions = append(r.extensions, e)
	name := e.Name()

	if h, ok := e.(HookEnqueued); ok {
		r.hookEnqueued = append(r.hookEnqueued, hookEnqueuedEntry{name, h})
	}
	if h, ok := e.(BatchClaimed); ok {
		r.batchClaimed = append(r.batchClaimed, batchClaimedEntry{name, h})
	}
	if h, ok := e.(ExecutionStarted); ok {
		r.executionStarted = append(r.executionStarted, executionStartedEntry{name, h})
	}
	if h, ok := e.(ExecutionCompleted); ok {
		r.executionCompleted = append(r.executionCompleted, executionCompletedEntry{name, h})
	}
	if h, ok := e.(SchedulerError); ok {
		r.schedulerError = append(r.schedulerError, schedulerErrorEntry{name, h})
	}
	if h, ok := e.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []Extension { return r.extensions }

// EmitHookEnqueued notifies all extensions that implement HookEnqueued.
func (r *Registry) EmitHookEnqueued(ctx context.Context, h *hook.Hook) {
	for _, e := range r.hookEnqueued {
		if err := e.hook.OnHookEnqueued(ctx, h); err != nil {
			r.logHookError("OnHookEnqueued", e.name, err)
		}
	}
}

// EmitBatchClaimed notifies all extensions that implement BatchClaimed.
func (r *Registry) EmitBatchClaimed(ctx context.Context, claimed int, outstanding int64) {
	for _, e := range r.batchClaimed {
		if err := e.hook.OnBatchClaimed(ctx, claimed, outstanding); err != nil {
			r.logHookError("OnBatchClaimed", e.name, err)
		}
	}
}

// EmitExecutionStarted notifies all extensions that implement ExecutionStarted.
func (r *Registry) EmitExecutionStarted(ctx context.Context, h *hook.Hook) {
	for _, e := range r.executionStarted {
		if err := e.hook.OnExecutionStarted(ctx, h); err != nil {
			r.logHookError("OnExecutionStarted", e.name, err)
		}
	}
}

// EmitExecutionCompleted notifies all extensions that implement ExecutionCompleted.
func (r *Registry) EmitExecutionCompleted(ctx context.Context, h *hook.Hook, elapsed time.Duration) {
	for _, e := range r.executionCompleted {
		if err := e.hook.OnExecutionCompleted(ctx, h, elapsed); err != nil {
			r.logHookError("OnExecutionCompleted", e.name, err)
		}
	}
}

// EmitSchedulerError notifies all extensions that implement SchedulerError.
func (r *Registry) EmitSchedulerError(ctx context.Context, tickErr error) {
	for _, e := range r.schedulerError {
		if err := e.hook.OnSchedulerError(ctx, tickErr); err != nil {
			r.logHookError("OnSchedulerError", e.name, err)
		}
	}
}

// EmitShutdown notifies all extensions that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated — they must not block the
// scheduler or affect hook status.
func (r *Registry) logHookError(hookName, extName string, err error) {
	r.logger.Warn("extension hook error",
		slog.String("hook", hookName),
		slog.String("extension", extName),
		slog.String("error", err.Error()),
	)
}
