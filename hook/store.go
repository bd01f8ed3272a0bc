package hook

import (
	"context"
	"time"

	"github.com/xraph/hookq/id"
)

// ClaimOpts controls eligibility and sizing for ClaimDue.
type ClaimOpts struct {
	// Statuses a hook must be in to be claimable.
	Statuses []Status
	// Limit is the maximum number of hooks to claim. Zero means no limit.
	Limit int
	// MaxAttempts excludes hooks whose Attempts already reached the
	// ceiling. Zero means no ceiling.
	MaxAttempts int
}

// Patch is a partial-field update. Only non-nil fields are written, so
// concurrent writers touching disjoint fields never clobber each other.
type Patch struct {
	Status      *Status
	Results     []Result
	Attempts    *int
	CompletedAt *time.Time
	RunAfter    *time.Time
}

// Store defines the persistence contract for hooks. Transport errors
// propagate to the caller; the core never retries them internally — the
// scheduler's next poll tick is the retry.
type Store interface {
	// Insert persists a new hook. If the hook's ID is nil one is
	// assigned. Returns the stored ID.
	Insert(ctx context.Context, h *Hook) (id.HookID, error)

	// Get retrieves a hook by ID. Returns hookq.ErrHookNotFound if no
	// hook exists for the id.
	Get(ctx context.Context, hookID id.HookID) (*Hook, error)

	// ClaimDue atomically claims up to opts.Limit due hooks: each
	// returned hook matched status ∈ opts.Statuses, RunAfter <= now and
	// Attempts < opts.MaxAttempts, and was flipped to processing with
	// Attempts incremented in a single conditional update. A hook
	// claimed by a concurrent scheduler is simply not returned.
	ClaimDue(ctx context.Context, opts ClaimOpts) ([]*Hook, error)

	// Update applies a partial-field update to an existing hook.
	// Returns hookq.ErrHookNotFound if no hook exists for the id.
	Update(ctx context.Context, hookID id.HookID, patch Patch) error

	// CountStatus returns the number of hooks in the given status.
	CountStatus(ctx context.Context, status Status) (int64, error)
}
