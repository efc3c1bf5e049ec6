package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/peptok/CoachMarketBack/internal/models"
	"github.com/peptok/CoachMarketBack/internal/pricing"
	"go.uber.org/zap"
)

const EventPricingConfigUpdated = "pricing_config_updated"

type PricingConfigStore interface {
	Current(ctx context.Context) (*models.PricingConfiguration, error)
	GetByVersion(ctx context.Context, version int64) (*models.PricingConfiguration, error)
	Insert(ctx context.Context, cfg models.PricingConfiguration) (*models.PricingConfiguration, error)
}

type ConfigBroadcaster interface {
	Broadcast(event string, payload any)
}

type PricingService struct {
	store       PricingConfigStore
	defaults    models.PricingConfiguration
	broadcaster ConfigBroadcaster
	logger      *zap.Logger
}

func NewPricingService(
	store PricingConfigStore,
	defaults models.PricingConfiguration,
	broadcaster ConfigBroadcaster,
	logger *zap.Logger,
) *PricingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PricingService{
		store:       store,
		defaults:    defaults,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// CurrentConfig returns the latest stored fee schedule. An empty store is
// seeded with the configured defaults.
func (s *PricingService) CurrentConfig(ctx context.Context) (*models.PricingConfiguration, error) {
	cfg, err := s.store.Current(ctx)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("load pricing configuration: %w", err)
	}

	seed := s.defaults
	seed.UpdatedBy = "system"
	created, err := s.store.Insert(ctx, seed)
	if err != nil {
		return nil, fmt.Errorf("seed pricing configuration: %w", err)
	}
	s.logger.Info("seeded pricing configuration", zap.Int64("version", created.Version))
	return created, nil
}

// ConfigByVersion returns the fee schedule a session was booked under.
func (s *PricingService) ConfigByVersion(ctx context.Context, version int64) (*models.PricingConfiguration, error) {
	cfg, err := s.store.GetByVersion(ctx, version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load pricing configuration %d: %w", version, err)
	}
	return cfg, nil
}

type UpdatePricingInput struct {
	CompanyServiceFeeRate         float64
	CoachCommissionRate           float64
	MinCoachCommissionAmount      float64
	AdditionalParticipantFee      float64
	MaxParticipantsIncludedInBase int
	Currency                      string
}

// UpdateConfig validates and stores a new configuration version, then
// notifies connected admin sessions.
func (s *PricingService) UpdateConfig(
	ctx context.Context,
	adminID string,
	input UpdatePricingInput,
) (*models.PricingConfiguration, error) {
	cfg := models.PricingConfiguration{
		CompanyServiceFeeRate:         input.CompanyServiceFeeRate,
		CoachCommissionRate:           input.CoachCommissionRate,
		MinCoachCommissionAmount:      input.MinCoachCommissionAmount,
		AdditionalParticipantFee:      input.AdditionalParticipantFee,
		MaxParticipantsIncludedInBase: input.MaxParticipantsIncludedInBase,
		Currency:                      strings.ToUpper(strings.TrimSpace(input.Currency)),
		UpdatedBy:                     adminID,
	}
	if cfg.Currency == "" {
		cfg.Currency = s.defaults.Currency
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	saved, err := s.store.Insert(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("save pricing configuration: %w", err)
	}

	s.logger.Info("pricing configuration updated",
		zap.Int64("version", saved.Version),
		zap.String("updated_by", adminID),
	)
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(EventPricingConfigUpdated, saved)
	}
	return saved, nil
}

type PreviewInput struct {
	CoachHourlyRate  float64
	DurationMinutes  int
	ParticipantCount int
	SessionCount     int
}

// Preview prices a prospective session from the caller's side of the
// transaction under the current configuration.
func (s *PricingService) Preview(
	ctx context.Context,
	role string,
	input PreviewInput,
) (*models.BookingQuote, error) {
	if role != models.RoleCompany && role != models.RoleCoach {
		return nil, ErrForbidden
	}
	if err := validatePricingInput(input.CoachHourlyRate, input.DurationMinutes, input.ParticipantCount); err != nil {
		return nil, err
	}
	if input.SessionCount < 0 {
		return nil, fmt.Errorf("%w: session_count must not be negative", ErrInvalidInput)
	}

	cfg, err := s.CurrentConfig(ctx)
	if err != nil {
		return nil, err
	}

	quote := pricing.QuoteBooking(*cfg, models.SessionPricingRequest{
		CoachHourlyRate:  input.CoachHourlyRate,
		DurationMinutes:  input.DurationMinutes,
		ParticipantCount: input.ParticipantCount,
		RequesterRole:    role,
		SessionCount:     input.SessionCount,
	})
	return &quote, nil
}

func validatePricingInput(rate float64, durationMinutes, participants int) error {
	if rate < 0 {
		return fmt.Errorf("%w: hourly rate must not be negative", ErrInvalidInput)
	}
	if durationMinutes < 0 {
		return fmt.Errorf("%w: duration must not be negative", ErrInvalidInput)
	}
	if participants < 0 {
		return fmt.Errorf("%w: participant count must not be negative", ErrInvalidInput)
	}
	return nil
}
