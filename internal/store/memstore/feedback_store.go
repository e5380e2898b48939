// Package memstore provides an in-process FeedbackRepository for tests and
// local runs that do not need durability.
package memstore

import (
	"context"
	"sync"

	"github.com/NomadCrew/feedback-tracker-backend/internal/store"
	"github.com/NomadCrew/feedback-tracker-backend/types"
)

// Ensure FeedbackStore implements store.FeedbackRepository
var _ store.FeedbackRepository = (*FeedbackStore)(nil)

// FeedbackStore keeps a private copy of the collection so callers never
// share slices with it.
type FeedbackStore struct {
	mu    sync.RWMutex
	items []types.Feedback
	saves int
}

// NewFeedbackStore creates a store seeded with items.
func NewFeedbackStore(items ...types.Feedback) *FeedbackStore {
	return &FeedbackStore{items: clone(items)}
}

func (s *FeedbackStore) Load(ctx context.Context) ([]types.Feedback, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.items), nil
}

func (s *FeedbackStore) Save(ctx context.Context, items []types.Feedback) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = clone(items)
	s.saves++
	return nil
}

func (s *FeedbackStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Saves returns how many times Save succeeded.
func (s *FeedbackStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func clone(items []types.Feedback) []types.Feedback {
	out := make([]types.Feedback, len(items))
	copy(out, items)
	return out
}
