// Package postgres keeps the feedback collection as a JSONB document in PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/NomadCrew/feedback-tracker-backend/internal/store"
	"github.com/NomadCrew/feedback-tracker-backend/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of *pgxpool.Pool the store needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

const (
	selectDocumentSQL = `SELECT body FROM feedback_documents WHERE name = $1`
	upsertDocumentSQL = `INSERT INTO feedback_documents (name, body, updated_at) VALUES ($1, $2, NOW())
ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`
)

// Ensure FeedbackStore implements store.FeedbackRepository
var _ store.FeedbackRepository = (*FeedbackStore)(nil)

// FeedbackStore stores the whole collection in one row of feedback_documents,
// keyed by document name. The table is created by RunMigrations.
type FeedbackStore struct {
	db   DBTX
	name string
}

// NewFeedbackStore creates a new feedback store backed by db.
func NewFeedbackStore(db DBTX, name string) *FeedbackStore {
	return &FeedbackStore{db: db, name: name}
}

// Load reads the document. A missing row is an empty collection.
func (s *FeedbackStore) Load(ctx context.Context) ([]types.Feedback, error) {
	var body []byte
	err := s.db.QueryRow(ctx, selectDocumentSQL, s.name).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return []types.Feedback{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback document %q: %w", s.name, err)
	}

	items, err := store.DecodeDocument(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feedback document %q: %w", s.name, err)
	}
	return items, nil
}

// Save upserts the document.
func (s *FeedbackStore) Save(ctx context.Context, items []types.Feedback) error {
	data, err := store.EncodeDocument(items)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, upsertDocumentSQL, s.name, string(data)); err != nil {
		return fmt.Errorf("failed to save feedback document %q: %w", s.name, err)
	}
	return nil
}

// Ping checks the database connection.
func (s *FeedbackStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
