package services

import (
	"context"
	"time"

	"github.com/NomadCrew/feedback-tracker-backend/internal/store"
	"github.com/NomadCrew/feedback-tracker-backend/logger"
	"github.com/NomadCrew/feedback-tracker-backend/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	healthCheckTimeout = 2 * time.Second
	// timestampLayout is RFC 3339 in UTC with millisecond precision.
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

type HealthService struct {
	repo        store.FeedbackRepository
	redisClient redis.UniversalClient
	version     string
	startTime   time.Time
	log         *zap.SugaredLogger
}

// NewHealthService creates a HealthService. redisClient may be nil when no
// component uses Redis.
func NewHealthService(repo store.FeedbackRepository, redisClient redis.UniversalClient, version string) *HealthService {
	return &HealthService{
		repo:        repo,
		redisClient: redisClient,
		version:     version,
		startTime:   time.Now(),
		log:         logger.GetLogger(),
	}
}

// Summary reports process liveness without touching dependencies.
func (h *HealthService) Summary() types.HealthCheck {
	return types.HealthCheck{
		Status:    types.HealthStatusOK,
		Timestamp: time.Now().UTC().Format(timestampLayout),
		Uptime:    time.Since(h.startTime).Seconds(),
		Version:   h.version,
	}
}

// CheckHealth pings every dependency and reports per-component status.
func (h *HealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	components := map[string]types.HealthComponent{
		"storage": h.checkStorage(ctx),
	}
	if h.redisClient != nil {
		components["redis"] = h.checkRedis(ctx)
	}

	overallStatus := types.HealthStatusUp
	for _, c := range components {
		if c.Status == types.HealthStatusDown {
			overallStatus = types.HealthStatusDown
			break
		}
	}

	return types.HealthCheck{
		Status:     overallStatus,
		Timestamp:  time.Now().UTC().Format(timestampLayout),
		Uptime:     time.Since(h.startTime).Seconds(),
		Version:    h.version,
		Components: components,
	}
}

func (h *HealthService) checkStorage(ctx context.Context) types.HealthComponent {
	if err := h.repo.Ping(ctx); err != nil {
		h.log.Errorw("Storage health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: "Feedback storage unavailable",
		}
	}
	return types.HealthComponent{Status: types.HealthStatusUp}
}

func (h *HealthService) checkRedis(ctx context.Context) types.HealthComponent {
	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		h.log.Errorw("Redis health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: "Redis connection failed",
		}
	}
	return types.HealthComponent{Status: types.HealthStatusUp}
}
