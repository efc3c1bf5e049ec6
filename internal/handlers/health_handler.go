package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/peptok/CoachMarketBack/internal/matching"
	"go.uber.org/zap"
)

type databasePinger interface {
	Ping(ctx context.Context) error
}

type coachCounter interface {
	Count(ctx context.Context) (int, error)
}

type cacheStatus interface {
	Enabled() bool
	Ping(ctx context.Context) error
	CoachCount(ctx context.Context) (int, bool, error)
	SetCoachCount(ctx context.Context, count int) error
}

type HealthHandler struct {
	db      databasePinger
	coaches coachCounter
	cache   cacheStatus
	logger  *zap.Logger
}

func NewHealthHandler(db databasePinger, coaches coachCounter, cache cacheStatus, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{db: db, coaches: coaches, cache: cache, logger: logger}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error("health check: database unreachable", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":   "unhealthy",
			"database": "down",
			"error":    "database unreachable",
		})
	}

	redisStatus := "disabled"
	if h.cache != nil && h.cache.Enabled() {
		redisStatus = "up"
		if err := h.cache.Ping(ctx); err != nil {
			h.logger.Warn("health check: redis unreachable", zap.Error(err))
			redisStatus = "down"
		}
	}

	count, err := h.coachCount(ctx, redisStatus == "up")
	if err != nil {
		h.logger.Error("health check: count coaches", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":   "unhealthy",
			"database": "up",
			"error":    "failed to count coaches",
		})
	}

	return c.JSON(fiber.Map{
		"status":            "healthy",
		"database":          "up",
		"redis":             redisStatus,
		"coaches":           count,
		"algorithm_version": matching.AlgorithmVersion,
		"timestamp":         time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) coachCount(ctx context.Context, useCache bool) (int, error) {
	if useCache {
		if count, found, err := h.cache.CoachCount(ctx); err == nil && found {
			return count, nil
		}
	}

	count, err := h.coaches.Count(ctx)
	if err != nil {
		return 0, err
	}
	if useCache {
		if err := h.cache.SetCoachCount(ctx, count); err != nil {
			h.logger.Warn("health check: cache coach count", zap.Error(err))
		}
	}
	return count, nil
}
