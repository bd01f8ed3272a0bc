package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/hookq"
	"github.com/xraph/hookq/hook"
	"github.com/xraph/hookq/id"
)

// Insert persists a new hook document, assigning an ID if none is set.
func (s *Store) Insert(ctx context.Context, h *hook.Hook) (id.HookID, error) {
	if h.ID.IsNil() {
		h.ID = id.NewHookID()
	}

	_, err := s.collection().InsertOne(ctx, toHookModel(h))
	if err != nil {
		if isDuplicateKey(err) {
			return id.Nil, hookq.ErrHookAlreadyExists
		}
		return id.Nil, fmt.Errorf("hookq/mongo: insert hook: %w", err)
	}
	return h.ID, nil
}

// Get retrieves a hook by ID.
func (s *Store) Get(ctx context.Context, hookID id.HookID) (*hook.Hook, error) {
	var m hookModel
	err := s.collection().FindOne(ctx, bson.M{"_id": hookID.String()}).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, hookq.ErrHookNotFound
		}
		return nil, fmt.Errorf("hookq/mongo: get hook: %w", err)
	}
	return fromHookModel(&m)
}

// ClaimDue atomically claims up to opts.Limit due hooks. Each claim is a
// single FindOneAndUpdate conditioned on status, run_after and attempts,
// so two schedulers observing the same waiting hook cannot both flip it
// to processing: the loser's condition no longer matches and the loop
// just moves on.
func (s *Store) ClaimDue(ctx context.Context, opts hook.ClaimOpts) ([]*hook.Hook, error) {
	t := now()
	col := s.collection()

	statuses := make([]string, len(opts.Statuses))
	for i, st := range opts.Statuses {
		statuses[i] = string(st)
	}

	filter := bson.M{
		"status":    bson.M{"$in": statuses},
		"run_after": bson.M{"$lte": t},
	}
	if opts.MaxAttempts > 0 {
		filter["attempts"] = bson.M{"$lt": opts.MaxAttempts}
	}

	update := bson.M{
		"$set": bson.M{
			"status":     string(hook.StatusProcessing),
			"updated_at": t,
		},
		"$inc": bson.M{"attempts": 1},
	}

	findOpts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetSort(bson.D{{Key: "run_after", Value: 1}})

	var claimed []*hook.Hook
	for opts.Limit <= 0 || len(claimed) < opts.Limit {
		var m hookModel
		err := col.FindOneAndUpdate(ctx, filter, update, findOpts).Decode(&m)
		if err != nil {
			if isNoDocuments(err) {
				break
			}
			return nil, fmt.Errorf("hookq/mongo: claim due: %w", err)
		}

		h, convErr := fromHookModel(&m)
		if convErr != nil {
			return nil, fmt.Errorf("hookq/mongo: claim convert: %w", convErr)
		}
		claimed = append(claimed, h)
	}

	return claimed, nil
}

// Update applies a partial-field update to an existing hook. Only fields
// set on the patch are written.
func (s *Store) Update(ctx context.Context, hookID id.HookID, patch hook.Patch) error {
	set := bson.M{"updated_at": now()}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}
	if patch.Results != nil {
		set["results"] = toResultModels(patch.Results)
	}
	if patch.Attempts != nil {
		set["attempts"] = *patch.Attempts
	}
	if patch.CompletedAt != nil {
		set["completed_at"] = *patch.CompletedAt
	}
	if patch.RunAfter != nil {
		set["run_after"] = *patch.RunAfter
	}

	res, err := s.collection().UpdateOne(ctx,
		bson.M{"_id": hookID.String()},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("hookq/mongo: update hook: %w", err)
	}
	if res.MatchedCount == 0 {
		return hookq.ErrHookNotFound
	}
	return nil
}

// CountStatus returns the number of hooks in the given status.
func (s *Store) CountStatus(ctx context.Context, status hook.Status) (int64, error) {
	count, err := s.collection().CountDocuments(ctx, bson.M{"status": string(status)})
	if err != nil {
		return 0, fmt.Errorf("hookq/mongo: count status: %w", err)
	}
	return count, nil
}
