package handlers

import (
	"context"

	"github.com/NomadCrew/feedback-tracker-backend/types"
	"github.com/stretchr/testify/mock"
)

// MockFeedbackService implements FeedbackServiceInterface for handler tests.
type MockFeedbackService struct {
	mock.Mock
}

var _ FeedbackServiceInterface = (*MockFeedbackService)(nil)

func (m *MockFeedbackService) List(ctx context.Context) ([]types.Feedback, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Feedback), args.Error(1)
}

func (m *MockFeedbackService) Create(ctx context.Context, req types.FeedbackCreate) (types.Feedback, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(types.Feedback), args.Error(1)
}

func (m *MockFeedbackService) Vote(ctx context.Context, id string, action types.VoteAction) (types.Feedback, error) {
	args := m.Called(ctx, id, action)
	return args.Get(0).(types.Feedback), args.Error(1)
}

func (m *MockFeedbackService) Delete(ctx context.Context, id string) (types.Feedback, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(types.Feedback), args.Error(1)
}

func (m *MockFeedbackService) Stats(ctx context.Context) (types.FeedbackStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(types.FeedbackStats), args.Error(1)
}

// MockHealthService implements HealthServiceInterface for handler tests.
type MockHealthService struct {
	mock.Mock
}

var _ HealthServiceInterface = (*MockHealthService)(nil)

func (m *MockHealthService) Summary() types.HealthCheck {
	args := m.Called()
	return args.Get(0).(types.HealthCheck)
}

func (m *MockHealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	args := m.Called(ctx)
	return args.Get(0).(types.HealthCheck)
}
