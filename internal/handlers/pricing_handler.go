package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/peptok/CoachMarketBack/internal/models"
	"github.com/peptok/CoachMarketBack/internal/services"
	"go.uber.org/zap"
)

type pricingApplicationService interface {
	CurrentConfig(ctx context.Context) (*models.PricingConfiguration, error)
	UpdateConfig(ctx context.Context, adminID string, input services.UpdatePricingInput) (*models.PricingConfiguration, error)
	Preview(ctx context.Context, role string, input services.PreviewInput) (*models.BookingQuote, error)
}

type PricingHandler struct {
	service pricingApplicationService
	logger  *zap.Logger
}

func NewPricingHandler(service pricingApplicationService, logger *zap.Logger) *PricingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PricingHandler{service: service, logger: logger}
}

type updatePricingRequest struct {
	CompanyServiceFeeRate         *float64 `json:"company_service_fee_rate"`
	CoachCommissionRate           *float64 `json:"coach_commission_rate"`
	MinCoachCommissionAmount      *float64 `json:"min_coach_commission_amount"`
	AdditionalParticipantFee      *float64 `json:"additional_participant_fee"`
	MaxParticipantsIncludedInBase *int     `json:"max_participants_included_in_base"`
	Currency                      string   `json:"currency"`
}

type previewRequest struct {
	CoachHourlyRate  float64 `json:"coach_hourly_rate"`
	DurationMinutes  int     `json:"duration_minutes"`
	ParticipantCount int     `json:"participant_count"`
	SessionCount     int     `json:"session_count"`
}

func (h *PricingHandler) GetConfig(c *fiber.Ctx) error {
	cfg, err := h.service.CurrentConfig(c.Context())
	if err != nil {
		return h.mapPricingError(c, err)
	}
	return c.JSON(fiber.Map{"config": cfg})
}

// UpdateConfig requires every fee field in the body.
func (h *PricingHandler) UpdateConfig(c *fiber.Ctx) error {
	adminID, role, ok := currentActor(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	if role != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	var req updatePricingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.CompanyServiceFeeRate == nil || req.CoachCommissionRate == nil ||
		req.MinCoachCommissionAmount == nil || req.AdditionalParticipantFee == nil ||
		req.MaxParticipantsIncludedInBase == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "All pricing fields are required"})
	}

	cfg, err := h.service.UpdateConfig(c.Context(), adminID, services.UpdatePricingInput{
		CompanyServiceFeeRate:         *req.CompanyServiceFeeRate,
		CoachCommissionRate:           *req.CoachCommissionRate,
		MinCoachCommissionAmount:      *req.MinCoachCommissionAmount,
		AdditionalParticipantFee:      *req.AdditionalParticipantFee,
		MaxParticipantsIncludedInBase: *req.MaxParticipantsIncludedInBase,
		Currency:                      req.Currency,
	})
	if err != nil {
		return h.mapPricingError(c, err)
	}

	return c.JSON(fiber.Map{"config": cfg})
}

func (h *PricingHandler) Preview(c *fiber.Ctx) error {
	_, role, ok := currentActor(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	if role != models.RoleCompany && role != models.RoleCoach {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	var req previewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	quote, err := h.service.Preview(c.Context(), role, services.PreviewInput{
		CoachHourlyRate:  req.CoachHourlyRate,
		DurationMinutes:  req.DurationMinutes,
		ParticipantCount: req.ParticipantCount,
		SessionCount:     req.SessionCount,
	})
	if err != nil {
		return h.mapPricingError(c, err)
	}

	return c.JSON(fiber.Map{"quote": quote})
}

func (h *PricingHandler) mapPricingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidConfig), errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	default:
		h.logger.Error("pricing request failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process pricing request"})
	}
}
