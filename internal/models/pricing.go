package models

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleCompany = "company"
	RoleCoach   = "coach"
	RoleAdmin   = "admin"
)

var ErrInvalidPricingConfiguration = errors.New("invalid pricing configuration")

// PricingConfiguration is one immutable version of the platform fee
// schedule. Admin edits never mutate a stored version; they produce the next one.
type PricingConfiguration struct {
	Version                       int64     `json:"version"`
	CompanyServiceFeeRate         float64   `json:"company_service_fee_rate"`
	CoachCommissionRate           float64   `json:"coach_commission_rate"`
	MinCoachCommissionAmount      float64   `json:"min_coach_commission_amount"`
	AdditionalParticipantFee      float64   `json:"additional_participant_fee"`
	MaxParticipantsIncludedInBase int       `json:"max_participants_included_in_base"`
	Currency                      string    `json:"currency"`
	LastUpdated                   time.Time `json:"last_updated"`
	UpdatedBy                     string    `json:"updated_by,omitempty"`
}

// Validate enforces the fee schedule invariants. It is called where a
// configuration is written, never by the calculator.
func (c PricingConfiguration) Validate() error {
	if !unitInterval(c.CompanyServiceFeeRate) {
		return errors.Join(ErrInvalidPricingConfiguration, errors.New("company_service_fee_rate must be between 0 and 1"))
	}
	if !unitInterval(c.CoachCommissionRate) {
		return errors.Join(ErrInvalidPricingConfiguration, errors.New("coach_commission_rate must be between 0 and 1"))
	}
	if !nonNegative(c.MinCoachCommissionAmount) {
		return errors.Join(ErrInvalidPricingConfiguration, errors.New("min_coach_commission_amount must be non-negative"))
	}
	if !nonNegative(c.AdditionalParticipantFee) {
		return errors.Join(ErrInvalidPricingConfiguration, errors.New("additional_participant_fee must be non-negative"))
	}
	if c.MaxParticipantsIncludedInBase < 0 {
		return errors.Join(ErrInvalidPricingConfiguration, errors.New("max_participants_included_in_base must be non-negative"))
	}
	if strings.TrimSpace(c.Currency) == "" {
		return errors.Join(ErrInvalidPricingConfiguration, errors.New("currency is required"))
	}
	return nil
}

func unitInterval(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

func nonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

type SessionPricingRequest struct {
	CoachHourlyRate  float64 `json:"coach_hourly_rate"`
	DurationMinutes  int     `json:"duration_minutes"`
	ParticipantCount int     `json:"participant_count"`
	RequesterRole    string  `json:"requester_role"`
	SessionCount     int     `json:"session_count,omitempty"`
}

// CostBreakdown amounts are rounded to cents.
type CostBreakdown struct {
	CoachAmount                 decimal.Decimal `json:"coach_amount"`
	ServiceFee                  decimal.Decimal `json:"service_fee"`
	Commission                  decimal.Decimal `json:"commission"`
	ServiceOrCommissionAmount   decimal.Decimal `json:"service_or_commission_amount"`
	AdditionalParticipantAmount decimal.Decimal `json:"additional_participant_amount"`
	Subtotal                    decimal.Decimal `json:"subtotal"`
	TotalAmount                 decimal.Decimal `json:"total_amount"`
	CoachNetEarnings            decimal.Decimal `json:"coach_net_earnings"`
	RequesterRole               string          `json:"requester_role"`
	Currency                    string          `json:"currency"`
	ConfigVersion               int64           `json:"config_version"`
}

type BookingQuote struct {
	SessionCount int           `json:"session_count"`
	PerSession   CostBreakdown `json:"per_session"`
	Total        CostBreakdown `json:"total"`
}
