package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/peptok/CoachMarketBack/internal/models"
	"github.com/peptok/CoachMarketBack/internal/repository"
	"github.com/peptok/CoachMarketBack/internal/services"
	"go.uber.org/zap"
)

type coachDirectory interface {
	List(ctx context.Context, filter repository.CoachListFilter) ([]models.CoachRecord, int, error)
	GetByID(ctx context.Context, id string) (*models.CoachRecord, error)
}

type coachEarningsService interface {
	CoachEarnings(ctx context.Context, coachID string) (*models.CoachEarnings, error)
}

type CoachHandler struct {
	coachRepo coachDirectory
	earnings  coachEarningsService
	logger    *zap.Logger
}

func NewCoachHandler(coachRepo coachDirectory, earnings coachEarningsService, logger *zap.Logger) *CoachHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CoachHandler{
		coachRepo: coachRepo,
		earnings:  earnings,
		logger:    logger,
	}
}

func (h *CoachHandler) ListCoaches(c *fiber.Ctx) error {
	page := parsePositiveInt(c.Query("page"), 1)
	limit := parsePositiveInt(c.Query("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	minRating, err := parseNonNegativeFloat(c.Query("min_rating"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "min_rating must be a valid non-negative number"})
	}
	maxRate, err := parseNonNegativeFloat(c.Query("max_rate"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "max_rate must be a valid non-negative number"})
	}

	coaches, total, err := h.coachRepo.List(c.Context(), repository.CoachListFilter{
		Expertise:    strings.TrimSpace(c.Query("expertise")),
		Availability: strings.TrimSpace(c.Query("availability")),
		MinRating:    minRating,
		MaxRate:      maxRate,
		Offset:       (page - 1) * limit,
		Limit:        limit,
	})
	if err != nil {
		h.logger.Error("list coaches failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch coaches"})
	}

	response := make([]models.CoachListResponse, 0, len(coaches))
	for _, coach := range coaches {
		response = append(response, coach.Summary())
	}

	return c.JSON(fiber.Map{
		"coaches":    response,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *CoachHandler) GetCoach(c *fiber.Ctx) error {
	coachID := strings.TrimSpace(c.Params("id"))
	if coachID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid coach id"})
	}

	coach, err := h.coachRepo.GetByID(c.Context(), coachID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Coach not found"})
		}
		h.logger.Error("get coach failed", zap.String("coach_id", coachID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch coach"})
	}

	return c.JSON(fiber.Map{"coach": coach})
}

func (h *CoachHandler) MyEarnings(c *fiber.Ctx) error {
	coachID, role, ok := currentActor(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	if role != models.RoleCoach {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	earnings, err := h.earnings.CoachEarnings(c.Context(), coachID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Pricing configuration not found"})
		}
		h.logger.Error("coach earnings failed", zap.String("coach_id", coachID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute earnings"})
	}

	return c.JSON(fiber.Map{"earnings": earnings})
}

func currentActor(c *fiber.Ctx) (string, string, bool) {
	userID, ok := c.Locals("user_id").(string)
	if !ok || strings.TrimSpace(userID) == "" {
		return "", "", false
	}
	role, _ := c.Locals("role").(string)
	return userID, role, true
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func parseNonNegativeFloat(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value < 0 {
		return 0, errInvalidNumber
	}
	return value, nil
}

var errInvalidNumber = errors.New("invalid number")
