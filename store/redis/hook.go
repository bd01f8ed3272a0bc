package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/hookq"
	"github.com/xraph/hookq/hook"
	"github.com/xraph/hookq/id"
)

// Insert stores the hook as a Hash and indexes it in the due Sorted Set
// and the status Set.
func (s *Store) Insert(ctx context.Context, h *hook.Hook) (id.HookID, error) {
	if h.ID.IsNil() {
		h.ID = id.NewHookID()
	}
	hID := h.ID.String()
	key := s.hookKey(hID)

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return id.Nil, fmt.Errorf("hookq/redis: insert check exists: %w", err)
	}
	if exists > 0 {
		return id.Nil, hookq.ErrHookAlreadyExists
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, hookToMap(h))
	pipe.SAdd(ctx, s.statusKey(h.Status), hID)
	if claimableStatus(h.Status) {
		pipe.ZAdd(ctx, s.dueKey(), goredis.Z{Score: dueScore(h.RunAfter), Member: hID})
	}

	if _, err = pipe.Exec(ctx); err != nil {
		return id.Nil, fmt.Errorf("hookq/redis: insert hook: %w", err)
	}
	return h.ID, nil
}

// Get retrieves a hook by ID.
func (s *Store) Get(ctx context.Context, hookID id.HookID) (*hook.Hook, error) {
	return s.getHookByKey(ctx, s.hookKey(hookID.String()))
}

// ClaimDue claims up to opts.Limit due hooks. Candidates come from the
// due Sorted Set; ZRem arbitrates between concurrent claimers, so a
// member removed by another scheduler is simply skipped. Hooks at the
// attempts ceiling are dropped from the index rather than claimed; an
// Update that schedules a new run_after re-indexes them.
func (s *Store) ClaimDue(ctx context.Context, opts hook.ClaimOpts) ([]*hook.Hook, error) {
	t := now()

	statusSet := make(map[hook.Status]struct{}, len(opts.Statuses))
	for _, st := range opts.Statuses {
		statusSet[st] = struct{}{}
	}

	rangeBy := &goredis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(t.UnixMilli(), 10),
	}
	if opts.Limit > 0 {
		// Over-fetch so members lost to races or the attempts ceiling
		// do not starve the batch.
		rangeBy.Count = int64(opts.Limit * 2)
	}

	members, err := s.client.ZRangeByScore(ctx, s.dueKey(), rangeBy).Result()
	if err != nil {
		return nil, fmt.Errorf("hookq/redis: claim zrangebyscore: %w", err)
	}

	var claimed []*hook.Hook
	for _, hID := range members {
		if opts.Limit > 0 && len(claimed) >= opts.Limit {
			break
		}

		// Whoever removes the member owns the claim.
		removed, zErr := s.client.ZRem(ctx, s.dueKey(), hID).Result()
		if zErr != nil {
			return nil, fmt.Errorf("hookq/redis: claim zrem: %w", zErr)
		}
		if removed == 0 {
			continue // lost the race to another claimer
		}

		key := s.hookKey(hID)
		h, getErr := s.getHookByKey(ctx, key)
		if getErr != nil {
			if errors.Is(getErr, hookq.ErrHookNotFound) {
				continue // stale index entry
			}
			return nil, getErr
		}

		if _, ok := statusSet[h.Status]; !ok {
			continue
		}
		if opts.MaxAttempts > 0 && h.Attempts >= opts.MaxAttempts {
			continue
		}

		prevStatus := h.Status
		h.Status = hook.StatusProcessing
		h.Attempts++
		h.UpdatedAt = t

		pipe := s.client.TxPipeline()
		pipe.HSet(ctx, key,
			"status", string(hook.StatusProcessing),
			"attempts", strconv.Itoa(h.Attempts),
			"updated_at", t.Format(time.RFC3339Nano),
		)
		pipe.SMove(ctx, s.statusKey(prevStatus), s.statusKey(hook.StatusProcessing), hID)
		if _, pErr := pipe.Exec(ctx); pErr != nil {
			return nil, fmt.Errorf("hookq/redis: claim update: %w", pErr)
		}

		claimed = append(claimed, h)
	}
	return claimed, nil
}

// Update applies a partial-field update to an existing hook and keeps
// the status Set and due Sorted Set in sync.
func (s *Store) Update(ctx context.Context, hookID id.HookID, patch hook.Patch) error {
	hID := hookID.String()
	key := s.hookKey(hID)
	t := now()

	current, err := s.client.HMGet(ctx, key, "status", "run_after").Result()
	if err != nil {
		return fmt.Errorf("hookq/redis: update read current: %w", err)
	}
	curStatusStr, ok := current[0].(string)
	if !ok || curStatusStr == "" {
		return hookq.ErrHookNotFound
	}
	curStatus := hook.Status(curStatusStr)

	fields := map[string]interface{}{
		"updated_at": t.Format(time.RFC3339Nano),
	}
	newStatus := curStatus
	if patch.Status != nil {
		newStatus = *patch.Status
		fields["status"] = string(newStatus)
	}
	if patch.Results != nil {
		fields["results"] = marshalJSON(patch.Results)
	}
	if patch.Attempts != nil {
		fields["attempts"] = strconv.Itoa(*patch.Attempts)
	}
	if patch.CompletedAt != nil {
		fields["completed_at"] = patch.CompletedAt.Format(time.RFC3339Nano)
	}
	if patch.RunAfter != nil {
		fields["run_after"] = patch.RunAfter.Format(time.RFC3339Nano)
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, fields)
	if newStatus != curStatus {
		pipe.SMove(ctx, s.statusKey(curStatus), s.statusKey(newStatus), hID)
	}

	// Re-index: claimable hooks with a scheduled run belong in the due
	// set, everything else leaves it.
	switch {
	case claimableStatus(newStatus) && patch.RunAfter != nil:
		pipe.ZAdd(ctx, s.dueKey(), goredis.Z{Score: dueScore(*patch.RunAfter), Member: hID})
	case claimableStatus(newStatus) && patch.Status != nil && newStatus == hook.StatusWaiting:
		// Reset back to waiting without a new run_after: reuse the
		// stored one so the hook stays claimable.
		if runAfterStr, sok := current[1].(string); sok && runAfterStr != "" {
			if runAfter, pErr := time.Parse(time.RFC3339Nano, runAfterStr); pErr == nil {
				pipe.ZAdd(ctx, s.dueKey(), goredis.Z{Score: dueScore(runAfter), Member: hID})
			}
		}
	case !claimableStatus(newStatus):
		pipe.ZRem(ctx, s.dueKey(), hID)
	}

	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("hookq/redis: update hook: %w", err)
	}
	return nil
}

// CountStatus returns the number of hooks in the given status.
func (s *Store) CountStatus(ctx context.Context, status hook.Status) (int64, error) {
	n, err := s.client.SCard(ctx, s.statusKey(status)).Result()
	if err != nil {
		return 0, fmt.Errorf("hookq/redis: count status: %w", err)
	}
	return n, nil
}

// ── helpers ──

// claimableStatus reports whether hooks in this status belong in the
// due index.
func claimableStatus(st hook.Status) bool {
	return st == hook.StatusWaiting || st == hook.StatusFailed
}

// dueScore maps run_after to a Sorted Set score. Lower score = due
// earlier.
func dueScore(runAfter time.Time) float64 {
	return float64(runAfter.UnixMilli())
}

func hookToMap(h *hook.Hook) map[string]interface{} {
	m := map[string]interface{}{
		"id":         h.ID.String(),
		"name":       h.Name,
		"data":       marshalJSON(h.Data),
		"status":     string(h.Status),
		"results":    marshalJSON(h.Results),
		"attempts":   strconv.Itoa(h.Attempts),
		"added_at":   h.AddedAt.Format(time.RFC3339Nano),
		"updated_at": h.UpdatedAt.Format(time.RFC3339Nano),
		"run_after":  h.RunAfter.Format(time.RFC3339Nano),
	}
	if h.CompletedAt != nil {
		m["completed_at"] = h.CompletedAt.Format(time.RFC3339Nano)
	}
	return m
}

func (s *Store) getHookByKey(ctx context.Context, key string) (*hook.Hook, error) {
	vals, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("hookq/redis: get hook: %w", err)
	}
	if len(vals) == 0 {
		return nil, hookq.ErrHookNotFound
	}
	return mapToHook(vals)
}

func mapToHook(m map[string]string) (*hook.Hook, error) {
	hID, err := id.ParseHookID(m["id"])
	if err != nil {
		return nil, fmt.Errorf("hookq/redis: parse hook id: %w", err)
	}

	attempts, _ := strconv.Atoi(m["attempts"]) //nolint:errcheck // best-effort parse from trusted Redis data

	addedAt, _ := time.Parse(time.RFC3339Nano, m["added_at"])     //nolint:errcheck // best-effort parse from trusted Redis data
	updatedAt, _ := time.Parse(time.RFC3339Nano, m["updated_at"]) //nolint:errcheck // best-effort parse from trusted Redis data
	runAfter, _ := time.Parse(time.RFC3339Nano, m["run_after"])   //nolint:errcheck // best-effort parse from trusted Redis data

	h := &hook.Hook{
		ID:        hID,
		Name:      m["name"],
		Data:      unmarshalData(m["data"]),
		Status:    hook.Status(m["status"]),
		Results:   unmarshalResults(m["results"]),
		Attempts:  attempts,
		AddedAt:   addedAt,
		UpdatedAt: updatedAt,
		RunAfter:  runAfter,
	}
	if v := m["completed_at"]; v != "" {
		t, _ := time.Parse(time.RFC3339Nano, v) //nolint:errcheck // best-effort parse from trusted Redis data
		h.CompletedAt = &t
	}
	return h, nil
}

// marshalJSON is a helper to marshal to a JSON string.
func marshalJSON(v interface{}) string {
	b, _ := json.Marshal(v) //nolint:errcheck // marshal should not fail for basic types
	return string(b)
}

// unmarshalData parses a JSON object into the hook payload map.
func unmarshalData(s string) map[string]any {
	if s == "" || s == "null" {
		return nil
	}
	out := make(map[string]any)
	_ = json.Unmarshal([]byte(s), &out) //nolint:errcheck // best-effort parse from trusted Redis data
	return out
}

// unmarshalResults parses a JSON array of action results.
func unmarshalResults(s string) []hook.Result {
	if s == "" || s == "null" {
		return nil
	}
	var out []hook.Result
	_ = json.Unmarshal([]byte(s), &out) //nolint:errcheck // best-effort parse from trusted Redis data
	return out
}
