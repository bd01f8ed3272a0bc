package hook

import (
	"time"

	"github.com/xraph/hookq/id"
)

// Status represents the lifecycle state of a hook.
type Status string

const (
	// StatusWaiting means the hook has been enqueued and not yet claimed.
	StatusWaiting Status = "waiting"
	// StatusProcessing means a scheduler has claimed the hook and its
	// actions are executing.
	StatusProcessing Status = "processing"
	// StatusComplete means every action in the last cycle succeeded.
	StatusComplete Status = "complete"
	// StatusFailed means at least one action in the last cycle failed.
	// A failed hook is claimed again once its RunAfter backoff elapses,
	// until Attempts reaches the configured ceiling.
	StatusFailed Status = "failed"
)

// Result records one action's outcome within a hook cycle. Exactly one of
// Output and Error is meaningful: Error is empty on success.
type Result struct {
	Action string `json:"action" bson:"action"`
	Output any    `json:"output,omitempty" bson:"output,omitempty"`
	Error  string `json:"error,omitempty" bson:"error,omitempty"`
}

// Failed reports whether this result records a failure.
func (r Result) Failed() bool { return r.Error != "" }

// Hook is one unit of enqueued, persisted work: a name selecting the
// action list to run, an opaque payload, and the execution bookkeeping
// the scheduler maintains across cycles.
type Hook struct {
	ID          id.HookID      `json:"id"`
	Name        string         `json:"name"`
	Data        map[string]any `json:"data,omitempty"`
	Status      Status         `json:"status"`
	Results     []Result       `json:"results,omitempty"`
	Attempts    int            `json:"attempts"`
	AddedAt     time.Time      `json:"added_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	RunAfter    time.Time      `json:"run_after"`
}

// Terminal reports whether the hook's status is terminal for its current
// cycle (complete or failed).
func (h *Hook) Terminal() bool {
	return h.Status == StatusComplete || h.Status == StatusFailed
}

// New builds a waiting hook eligible for immediate claiming.
func New(name string, data map[string]any) *Hook {
	now := time.Now().UTC()
	return &Hook{
		ID:        id.NewHookID(),
		Name:      name,
		Data:      data,
		Status:    StatusWaiting,
		AddedAt:   now,
		UpdatedAt: now,
		RunAfter:  now,
	}
}
