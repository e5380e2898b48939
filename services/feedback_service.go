package services

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	apperrors "github.com/NomadCrew/feedback-tracker-backend/errors"
	"github.com/NomadCrew/feedback-tracker-backend/internal/store"
	"github.com/NomadCrew/feedback-tracker-backend/logger"
	"github.com/NomadCrew/feedback-tracker-backend/types"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	minNameLength    = 2
	minMessageLength = 10

	defaultPersistenceTimeout = 5 * time.Second
)

// emailPattern rejects any whitespace, including vertical tab, Unicode
// space separators and the byte order mark.
var emailPattern = regexp.MustCompile(`^[^\s\x{0B}\p{Z}\x{FEFF}@]+@[^\s\x{0B}\p{Z}\x{FEFF}@]+\.[^\s\x{0B}\p{Z}\x{FEFF}@]+$`)

// IDGenerator returns a new unique feedback id.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// FeedbackService owns validation, mutation and persistence of the feedback
// collection. Every operation reloads the collection from the repository;
// every mutation rewrites it in full before returning.
//
// Mutations are serialized within one process. Separate processes sharing a
// backend can still lose updates to each other.
type FeedbackService struct {
	repo    store.FeedbackRepository
	newID   IDGenerator
	now     Clock
	timeout time.Duration
	mu      sync.Mutex
	log     *zap.SugaredLogger
	metrics *feedbackMetrics
}

// FeedbackServiceOption customizes a FeedbackService.
type FeedbackServiceOption func(*FeedbackService)

// WithIDGenerator overrides the default UUIDv4 generator.
func WithIDGenerator(gen IDGenerator) FeedbackServiceOption {
	return func(s *FeedbackService) { s.newID = gen }
}

// WithClock overrides the wall clock used for createdAt.
func WithClock(clock Clock) FeedbackServiceOption {
	return func(s *FeedbackService) { s.now = clock }
}

// WithPersistenceTimeout bounds every repository call.
func WithPersistenceTimeout(d time.Duration) FeedbackServiceOption {
	return func(s *FeedbackService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewFeedbackService creates a FeedbackService on top of repo.
func NewFeedbackService(repo store.FeedbackRepository, opts ...FeedbackServiceOption) *FeedbackService {
	s := &FeedbackService{
		repo:    repo,
		newID:   uuid.NewString,
		now:     func() time.Time { return time.Now().UTC() },
		timeout: defaultPersistenceTimeout,
		log:     logger.GetLogger().Named("feedback"),
		metrics: newFeedbackMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every record, newest first.
func (s *FeedbackService) List(ctx context.Context) (items []types.Feedback, err error) {
	defer s.observe("list", time.Now(), &err)

	items, err = s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.log.Debugw("Retrieved feedback", "count", len(items))
	return items, nil
}

// Create validates req, then prepends a new record and persists the collection.
func (s *FeedbackService) Create(ctx context.Context, req types.FeedbackCreate) (fb types.Feedback, err error) {
	defer s.observe("create", time.Now(), &err)

	normalized, err := validateFeedback(req)
	if err != nil {
		return types.Feedback{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return types.Feedback{}, err
	}

	fb = types.Feedback{
		ID:        s.newID(),
		Name:      normalized.Name,
		Email:     normalized.Email,
		Message:   normalized.Message,
		Votes:     0,
		CreatedAt: s.now(),
	}

	updated := make([]types.Feedback, 0, len(items)+1)
	updated = append(updated, fb)
	updated = append(updated, items...)

	if err = s.save(ctx, updated); err != nil {
		return types.Feedback{}, err
	}

	s.log.Infow("Created feedback", "id", fb.ID, "email", logger.MaskEmail(fb.Email))
	return fb, nil
}

// Vote applies one upvote or downvote to the record with the given id.
func (s *FeedbackService) Vote(ctx context.Context, id string, action types.VoteAction) (fb types.Feedback, err error) {
	defer s.observe("vote", time.Now(), &err)

	if !action.IsValid() {
		return types.Feedback{}, apperrors.ValidationFailed(apperrors.CodeInvalidAction, `Action must be "upvote" or "downvote"`)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return types.Feedback{}, err
	}

	idx := indexOf(items, id)
	if idx == -1 {
		return types.Feedback{}, apperrors.NotFound("Feedback", id)
	}

	items[idx].Votes += action.Delta()
	if err = s.save(ctx, items); err != nil {
		return types.Feedback{}, err
	}

	s.log.Infow("Recorded vote", "id", id, "action", action, "votes", items[idx].Votes)
	return items[idx], nil
}

// Delete removes the record with the given id and returns it.
func (s *FeedbackService) Delete(ctx context.Context, id string) (fb types.Feedback, err error) {
	defer s.observe("delete", time.Now(), &err)

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return types.Feedback{}, err
	}

	idx := indexOf(items, id)
	if idx == -1 {
		return types.Feedback{}, apperrors.NotFound("Feedback", id)
	}

	fb = items[idx]
	remaining := append(items[:idx:idx], items[idx+1:]...)
	if err = s.save(ctx, remaining); err != nil {
		return types.Feedback{}, err
	}

	s.log.Infow("Deleted feedback", "id", id)
	return fb, nil
}

// Stats computes aggregate metrics from a fresh load of the collection.
// Averages and rates round half away from zero.
func (s *FeedbackService) Stats(ctx context.Context) (stats types.FeedbackStats, err error) {
	defer s.observe("stats", time.Now(), &err)

	items, err := s.load(ctx)
	if err != nil {
		return types.FeedbackStats{}, err
	}
	return computeStats(items), nil
}

func computeStats(items []types.Feedback) types.FeedbackStats {
	stats := types.FeedbackStats{TotalFeedback: len(items)}
	if len(items) == 0 {
		return stats
	}

	positive := 0
	for _, item := range items {
		stats.TotalVotes += item.Votes
		if item.Votes > 0 {
			positive++
		}
	}

	count := decimal.NewFromInt(int64(len(items)))
	stats.AverageVotes, _ = decimal.NewFromInt(int64(stats.TotalVotes)).Div(count).Round(1).Float64()
	stats.PositiveRate = int(decimal.NewFromInt(int64(positive * 100)).Div(count).Round(0).IntPart())
	return stats
}

// validateFeedback applies the submission rules in order and returns the
// normalized request. The first failing rule wins.
func validateFeedback(req types.FeedbackCreate) (types.FeedbackCreate, error) {
	if req.Name == "" || req.Email == "" || req.Message == "" {
		return req, apperrors.ValidationFailed(apperrors.CodeMissingFields, "All fields (name, email, message) are required.")
	}

	out := types.FeedbackCreate{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Message: strings.TrimSpace(req.Message),
	}

	if utf8.RuneCountInString(out.Name) < minNameLength {
		return req, apperrors.ValidationFailed(apperrors.CodeNameTooShort, "Name must be at least 2 characters long.")
	}
	if utf8.RuneCountInString(out.Message) < minMessageLength {
		return req, apperrors.ValidationFailed(apperrors.CodeMessageTooShort, "Message must be at least 10 characters long.")
	}
	if !emailPattern.MatchString(out.Email) {
		return req, apperrors.ValidationFailed(apperrors.CodeInvalidEmail, "Invalid email format.")
	}
	return out, nil
}

func indexOf(items []types.Feedback, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *FeedbackService) load(ctx context.Context) ([]types.Feedback, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	items, err := s.repo.Load(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("load", err)
	}
	return items, nil
}

func (s *FeedbackService) save(ctx context.Context, items []types.Feedback) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.Save(ctx, items); err != nil {
		return apperrors.NewPersistenceError("save", err)
	}
	return nil
}

func (s *FeedbackService) observe(op string, start time.Time, errp *error) {
	s.metrics.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	s.metrics.operations.WithLabelValues(op, resultLabel(*errp)).Inc()
}

func resultLabel(err error) string {
	if err == nil {
		return "success"
	}
	if appErr, ok := apperrors.As(err); ok {
		return strings.ToLower(string(appErr.Type))
	}
	return "error"
}

// feedbackMetrics holds Prometheus metrics for feedback operations.
type feedbackMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// Singleton pattern for metrics (avoid double registration in tests).
var (
	fbMetricsInstance *feedbackMetrics
	fbMetricsOnce     sync.Once
	fbDefaultRegistry = prometheus.DefaultRegisterer
)

func newFeedbackMetrics() *feedbackMetrics {
	fbMetricsOnce.Do(func() {
		fbMetricsInstance = &feedbackMetrics{
			operations: promauto.With(fbDefaultRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "feedback_operations_total",
				Help: "Total number of feedback store operations by outcome",
			}, []string{"operation", "result"}),
			duration: promauto.With(fbDefaultRegistry).NewHistogramVec(prometheus.HistogramOpts{
				Name:    "feedback_operation_duration_seconds",
				Help:    "Time taken by feedback store operations including persistence",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			}, []string{"operation"}),
		}
	})
	return fbMetricsInstance
}

// resetFeedbackMetricsForTesting resets the metrics singleton for test isolation.
// This should only be called from tests.
func resetFeedbackMetricsForTesting() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	fbDefaultRegistry = reg
	fbMetricsInstance = nil
	fbMetricsOnce = sync.Once{}
	return reg
}
