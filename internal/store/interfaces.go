package store

import (
	"context"

	"github.com/NomadCrew/feedback-tracker-backend/types"
)

// FeedbackRepository persists the feedback collection as one document.
// Implementations read and write the whole ordered collection; there are no
// partial updates.
type FeedbackRepository interface {
	// Load returns the stored collection in stored order. A collection that
	// was never saved loads as an empty, non-nil slice.
	Load(ctx context.Context) ([]types.Feedback, error)
	// Save replaces the stored collection with items.
	Save(ctx context.Context, items []types.Feedback) error
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}
