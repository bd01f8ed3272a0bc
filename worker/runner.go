package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/xraph/hookq/action"
	"github.com/xraph/hookq/backoff"
	"github.com/xraph/hookq/ext"
	"github.com/xraph/hookq/hook"
)

// Runner orchestrates one execution cycle for an already-claimed hook:
// it invokes the action executor and persists the aggregated outcome as
// a single partial update.
type Runner struct {
	store      hook.Store
	registry   *action.Registry
	executor   *action.Executor
	extensions *ext.Registry
	backoff    backoff.Strategy
	maxRetries int
	logger     *slog.Logger
}

// NewRunner creates a Runner with the given dependencies.
func NewRunner(
	store hook.Store,
	registry *action.Registry,
	executor *action.Executor,
	extensions *ext.Registry,
	bo backoff.Strategy,
	maxRetries int,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		store:      store,
		registry:   registry,
		executor:   executor,
		extensions: extensions,
		backoff:    bo,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Run executes one cycle for h, which must already be in processing
// status (claimed by the scheduler or reset by the retrier). It persists
// results, status and completedAt as one partial update and returns the
// aggregated outcome. A persistence failure aborts the cycle; the hook
// stays claimable on a later tick once its backoff window reopens.
//
// Extension emission failures never affect hook status.
func (r *Runner) Run(ctx context.Context, h *hook.Hook) (*action.Outcome, error) {
	r.extensions.EmitExecutionStarted(ctx, h)
	start := time.Now()

	var outcome *action.Outcome
	bindings, ok := r.registry.Bindings(h.Name)
	if !ok {
		// Registry drift: the hook's name was registered at enqueue time
		// but is gone now. Fail the cycle rather than guess.
		r.logger.Warn("no actions registered for claimed hook",
			slog.String("hook_id", h.ID.String()),
			slog.String("hook_name", h.Name),
		)
		outcome = &action.Outcome{Status: hook.StatusFailed, Results: []hook.Result{}}
	} else {
		outcome = r.executor.Run(ctx, h, bindings)
	}
	elapsed := time.Since(start)

	now := time.Now().UTC()
	patch := hook.Patch{
		Status:      &outcome.Status,
		Results:     outcome.Results,
		CompletedAt: &now,
	}
	if outcome.Failed() && (r.maxRetries <= 0 || h.Attempts < r.maxRetries) {
		// Retries remain: push RunAfter out so the failure is re-admitted
		// after a backoff window instead of on the very next tick.
		next := now.Add(r.backoff.Delay(h.Attempts))
		patch.RunAfter = &next
	}

	if err := r.store.Update(ctx, h.ID, patch); err != nil {
		r.logger.Error("failed to persist hook outcome",
			slog.String("hook_id", h.ID.String()),
			slog.String("hook_name", h.Name),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	h.Status = outcome.Status
	h.Results = outcome.Results
	h.CompletedAt = &now
	h.UpdatedAt = now

	r.extensions.EmitExecutionCompleted(ctx, h, elapsed)

	return outcome, nil
}
