package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/peptok/CoachMarketBack/internal/models"
)

const pricingColumns = `version, company_service_fee_rate, coach_commission_rate,
	min_coach_commission_amount, additional_participant_fee,
	max_participants_included_in_base, currency, updated_by, created_at`

// PricingConfigRepository keeps every version of the fee schedule. The
// current configuration is the highest version; rows are never updated.
type PricingConfigRepository struct {
	db DBTX
}

func NewPricingConfigRepository(db DBTX) *PricingConfigRepository {
	return &PricingConfigRepository{db: db}
}

func (r *PricingConfigRepository) Current(ctx context.Context) (*models.PricingConfiguration, error) {
	query := `SELECT ` + pricingColumns + ` FROM pricing_configurations ORDER BY version DESC LIMIT 1`
	return scanPricing(r.db.QueryRow(ctx, query))
}

func (r *PricingConfigRepository) GetByVersion(ctx context.Context, version int64) (*models.PricingConfiguration, error) {
	query := `SELECT ` + pricingColumns + ` FROM pricing_configurations WHERE version = $1`
	return scanPricing(r.db.QueryRow(ctx, query, version))
}

// Insert stores cfg as the next version and returns it as persisted.
func (r *PricingConfigRepository) Insert(ctx context.Context, cfg models.PricingConfiguration) (*models.PricingConfiguration, error) {
	query := `
		INSERT INTO pricing_configurations (company_service_fee_rate, coach_commission_rate,
			min_coach_commission_amount, additional_participant_fee,
			max_participants_included_in_base, currency, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + pricingColumns
	return scanPricing(r.db.QueryRow(ctx, query,
		cfg.CompanyServiceFeeRate,
		cfg.CoachCommissionRate,
		cfg.MinCoachCommissionAmount,
		cfg.AdditionalParticipantFee,
		cfg.MaxParticipantsIncludedInBase,
		cfg.Currency,
		cfg.UpdatedBy,
	))
}

func scanPricing(row pgx.Row) (*models.PricingConfiguration, error) {
	var cfg models.PricingConfiguration
	err := row.Scan(
		&cfg.Version,
		&cfg.CompanyServiceFeeRate,
		&cfg.CoachCommissionRate,
		&cfg.MinCoachCommissionAmount,
		&cfg.AdditionalParticipantFee,
		&cfg.MaxParticipantsIncludedInBase,
		&cfg.Currency,
		&cfg.UpdatedBy,
		&cfg.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
