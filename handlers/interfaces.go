package handlers

import (
	"context"

	"github.com/NomadCrew/feedback-tracker-backend/types"
)

// FeedbackServiceInterface defines the feedback store operations needed by handlers
type FeedbackServiceInterface interface {
	List(ctx context.Context) ([]types.Feedback, error)
	Create(ctx context.Context, req types.FeedbackCreate) (types.Feedback, error)
	Vote(ctx context.Context, id string, action types.VoteAction) (types.Feedback, error)
	Delete(ctx context.Context, id string) (types.Feedback, error)
	Stats(ctx context.Context) (types.FeedbackStats, error)
}

// HealthServiceInterface defines the health checks needed by handlers
type HealthServiceInterface interface {
	Summary() types.HealthCheck
	CheckHealth(ctx context.Context) types.HealthCheck
}
