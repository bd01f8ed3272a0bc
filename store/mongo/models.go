package mongo

import (
	"fmt"
	"time"

	"github.com/xraph/hookq/hook"
	"github.com/xraph/hookq/id"
)

// hookModel is the persisted document shape for a hook.
type hookModel struct {
	ID          string         `bson:"_id"`
	Name        string         `bson:"name"`
	Data        map[string]any `bson:"data,omitempty"`
	Status      string         `bson:"status"`
	Results     []resultModel  `bson:"results,omitempty"`
	Attempts    int            `bson:"attempts"`
	AddedAt     time.Time      `bson:"added_at"`
	UpdatedAt   time.Time      `bson:"updated_at"`
	CompletedAt *time.Time     `bson:"completed_at,omitempty"`
	RunAfter    time.Time      `bson:"run_after"`
}

type resultModel struct {
	Action string `bson:"action"`
	Output any    `bson:"output,omitempty"`
	Error  string `bson:"error,omitempty"`
}

func toHookModel(h *hook.Hook) *hookModel {
	m := &hookModel{
		ID:          h.ID.String(),
		Name:        h.Name,
		Data:        h.Data,
		Status:      string(h.Status),
		Attempts:    h.Attempts,
		AddedAt:     h.AddedAt,
		UpdatedAt:   h.UpdatedAt,
		CompletedAt: h.CompletedAt,
		RunAfter:    h.RunAfter,
	}
	if len(h.Results) > 0 {
		m.Results = make([]resultModel, len(h.Results))
		for i, r := range h.Results {
			m.Results[i] = resultModel(r)
		}
	}
	return m
}

func fromHookModel(m *hookModel) (*hook.Hook, error) {
	hookID, err := id.ParseHookID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("hookq/mongo: invalid hook id %q: %w", m.ID, err)
	}

	h := &hook.Hook{
		ID:          hookID,
		Name:        m.Name,
		Data:        m.Data,
		Status:      hook.Status(m.Status),
		Attempts:    m.Attempts,
		AddedAt:     m.AddedAt,
		UpdatedAt:   m.UpdatedAt,
		CompletedAt: m.CompletedAt,
		RunAfter:    m.RunAfter,
	}
	if len(m.Results) > 0 {
		h.Results = make([]hook.Result, len(m.Results))
		for i, r := range m.Results {
			h.Results[i] = hook.Result(r)
		}
	}
	return h, nil
}

func toResultModels(results []hook.Result) []resultModel {
	out := make([]resultModel, len(results))
	for i, r := range results {
		out[i] = resultModel(r)
	}
	return out
}
