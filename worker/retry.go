package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/hookq"
	"github.com/xraph/hookq/action"
	"github.com/xraph/hookq/hook"
	"github.com/xraph/hookq/id"
)

// Retrier re-admits a specific hook for re-execution on operator demand.
// Unlike the scheduler's claim, a retry ignores the hook's current
// status: it is an explicit operator action. The execution runs
// synchronously and the aggregated outcome is returned to the caller in
// addition to being persisted.
//
// A retry may race with a concurrently-running poll cycle touching the
// same hook; last write wins at the field level.
type Retrier struct {
	store      hook.Store
	runner     *Runner
	maxRetries int
	logger     *slog.Logger
}

// NewRetrier creates a Retrier.
func NewRetrier(store hook.Store, runner *Runner, maxRetries int, logger *slog.Logger) *Retrier {
	return &Retrier{
		store:      store,
		runner:     runner,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Retry re-executes the hook with the given id and returns the
// aggregated outcome. It fails with hookq.ErrHookNotFound if no hook
// exists for the id, and with hookq.ErrRetryExhausted — mutating no
// state — if the hook's attempts already reached the ceiling.
func (r *Retrier) Retry(ctx context.Context, hookID id.HookID) (*action.Outcome, error) {
	h, err := r.store.Get(ctx, hookID)
	if err != nil {
		return nil, err
	}

	if r.maxRetries > 0 && h.Attempts >= r.maxRetries {
		return nil, fmt.Errorf("%w: hook %s ran %d of %d cycles",
			hookq.ErrRetryExhausted, h.ID, h.Attempts, r.maxRetries)
	}

	status := hook.StatusProcessing
	attempts := h.Attempts + 1
	if err := r.store.Update(ctx, h.ID, hook.Patch{Status: &status, Attempts: &attempts}); err != nil {
		return nil, err
	}
	h.Status = status
	h.Attempts = attempts

	r.logger.Info("hook retry requested",
		slog.String("hook_id", h.ID.String()),
		slog.String("hook_name", h.Name),
		slog.Int("attempt", h.Attempts),
	)

	return r.runner.Run(ctx, h)
}
