// Package redisstore keeps the feedback collection as a single JSON value in Redis.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/NomadCrew/feedback-tracker-backend/internal/store"
	"github.com/NomadCrew/feedback-tracker-backend/types"
	"github.com/redis/go-redis/v9"
)

// DefaultKey is used when no key is configured.
const DefaultKey = "feedback:collection"

// Ensure FeedbackStore implements store.FeedbackRepository
var _ store.FeedbackRepository = (*FeedbackStore)(nil)

// FeedbackStore provides Redis-backed storage for the feedback collection.
type FeedbackStore struct {
	client redis.UniversalClient
	key    string
}

// NewFeedbackStore creates a new Redis-backed store writing under key.
func NewFeedbackStore(client redis.UniversalClient, key string) *FeedbackStore {
	if key == "" {
		key = DefaultKey
	}
	return &FeedbackStore{client: client, key: key}
}

// Load retrieves the collection. A missing key is an empty collection.
func (s *FeedbackStore) Load(ctx context.Context) ([]types.Feedback, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return []types.Feedback{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from redis: %w", s.key, err)
	}

	items, err := store.DecodeDocument([]byte(val))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s from redis: %w", s.key, err)
	}
	return items, nil
}

// Save overwrites the collection. The key never expires.
func (s *FeedbackStore) Save(ctx context.Context, items []types.Feedback) error {
	data, err := store.EncodeDocument(items)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, string(data), 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s to redis: %w", s.key, err)
	}
	return nil
}

// Ping checks the Redis connection.
func (s *FeedbackStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
