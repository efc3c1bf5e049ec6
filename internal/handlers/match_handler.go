package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/peptok/CoachMarketBack/internal/models"
	"github.com/peptok/CoachMarketBack/internal/services"
	"go.uber.org/zap"
)

type matchApplicationService interface {
	GenerateMatches(ctx context.Context, input services.GenerateMatchesInput) (*models.MatchResponse, error)
	GetMatches(ctx context.Context, requestID string) (*models.MatchResponse, error)
	Stats(ctx context.Context) models.MatchingStats
}

type MatchHandler struct {
	service    matchApplicationService
	maxMatches int
	logger     *zap.Logger
}

func NewMatchHandler(service matchApplicationService, maxMatches int, logger *zap.Logger) *MatchHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchHandler{
		service:    service,
		maxMatches: maxMatches,
		logger:     logger,
	}
}

type createMatchesRequest struct {
	RequestID  string               `json:"request_id"`
	CompanyID  string               `json:"company_id"`
	Title      string               `json:"title"`
	Expertise  []string             `json:"expertise"`
	Experience string               `json:"experience"`
	Weights    *models.ScoreWeights `json:"weights"`
	Limit      int                  `json:"limit"`
}

func (h *MatchHandler) CreateMatches(c *fiber.Ctx) error {
	actorID, role, ok := currentActor(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	if role != models.RoleCompany && role != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	var req createMatchesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Limit < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must not be negative"})
	}

	companyID := strings.TrimSpace(req.CompanyID)
	if role == models.RoleCompany {
		companyID = actorID
	}

	response, err := h.service.GenerateMatches(c.Context(), services.GenerateMatchesInput{
		RequestID:  req.RequestID,
		CompanyID:  companyID,
		Title:      req.Title,
		Expertise:  req.Expertise,
		Experience: req.Experience,
		Weights:    req.Weights,
	})
	if err != nil {
		return h.mapMatchError(c, err)
	}

	response.Matches = truncateMatches(response.Matches, h.displayLimit(req.Limit))
	return c.Status(fiber.StatusCreated).JSON(response)
}

func (h *MatchHandler) GetMatches(c *fiber.Ctx) error {
	_, role, ok := currentActor(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	if role != models.RoleCompany && role != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	response, err := h.service.GetMatches(c.Context(), c.Params("requestId"))
	if err != nil {
		return h.mapMatchError(c, err)
	}

	limit := parsePositiveInt(c.Query("limit"), 0)
	response.Matches = truncateMatches(response.Matches, h.displayLimit(limit))
	return c.JSON(response)
}

func (h *MatchHandler) Stats(c *fiber.Ctx) error {
	_, role, ok := currentActor(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	if role != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	return c.JSON(fiber.Map{"stats": h.service.Stats(c.Context())})
}

func (h *MatchHandler) displayLimit(requested int) int {
	if requested > 0 {
		return requested
	}
	return h.maxMatches
}

func truncateMatches(matches []models.MatchWithCoach, limit int) []models.MatchWithCoach {
	if limit > 0 && len(matches) > limit {
		return matches[:limit]
	}
	return matches
}

func (h *MatchHandler) mapMatchError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Matches not found"})
	default:
		h.logger.Error("matching request failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Matching failed"})
	}
}
