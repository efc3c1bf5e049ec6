// Package pricing computes what a coaching session costs each party.
//
// All functions are pure and take the fee schedule as an explicit
// snapshot. Inputs are not validated here; forms and the configuration
// store own that.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/peptok/CoachMarketBack/internal/models"
)

const moneyPlaces = 2

var (
	minutesPerHour = decimal.NewFromInt(60)
	zero           = decimal.Zero
)

// SessionCost is the coach's price for the session: rate * minutes / 60.
func SessionCost(hourlyRate float64, durationMinutes int) decimal.Decimal {
	return decimal.NewFromFloat(hourlyRate).
		Mul(decimal.NewFromInt(int64(durationMinutes))).
		Div(minutesPerHour)
}

// ServiceFee is billed to the company on top of the session cost.
func ServiceFee(sessionCost decimal.Decimal, companyServiceFeeRate float64) decimal.Decimal {
	return sessionCost.Mul(decimal.NewFromFloat(companyServiceFeeRate))
}

// Commission is retained from the coach. The minimum guarantees a platform
// take on short or cheap sessions, and the result is never negative.
func Commission(sessionCost decimal.Decimal, coachCommissionRate, minCommissionAmount float64) decimal.Decimal {
	c := decimal.Max(
		sessionCost.Mul(decimal.NewFromFloat(coachCommissionRate)),
		decimal.NewFromFloat(minCommissionAmount),
	)
	return decimal.Max(c, zero)
}

// AdditionalParticipantFee charges perPersonFee for every participant
// beyond maxIncluded.
func AdditionalParticipantFee(participantCount, maxIncluded int, perPersonFee float64) decimal.Decimal {
	extra := participantCount - maxIncluded
	if extra <= 0 {
		return zero
	}
	return decimal.NewFromInt(int64(extra)).Mul(decimal.NewFromFloat(perPersonFee))
}

// Calculate builds the cost breakdown for one session.
//
// The company pays Subtotal (coach amount plus extra participants) plus the
// service fee. The coach nets the coach amount minus commission; the
// additional participant fee is platform revenue and never reaches the coach.
// ServiceOrCommissionAmount carries the fee relevant to the requester role.
func Calculate(config models.PricingConfiguration, input models.SessionPricingRequest) models.CostBreakdown {
	cost := round(SessionCost(input.CoachHourlyRate, input.DurationMinutes))
	serviceFee := round(ServiceFee(cost, config.CompanyServiceFeeRate))
	commission := round(Commission(cost, config.CoachCommissionRate, config.MinCoachCommissionAmount))
	extra := round(AdditionalParticipantFee(
		input.ParticipantCount,
		config.MaxParticipantsIncludedInBase,
		config.AdditionalParticipantFee,
	))

	subtotal := cost.Add(extra)
	role := normalizeRole(input.RequesterRole)
	serviceOrCommission := serviceFee
	if role == models.RoleCoach {
		serviceOrCommission = commission
	}

	return models.CostBreakdown{
		CoachAmount:                 cost,
		ServiceFee:                  serviceFee,
		Commission:                  commission,
		ServiceOrCommissionAmount:   serviceOrCommission,
		AdditionalParticipantAmount: extra,
		Subtotal:                    subtotal,
		TotalAmount:                 subtotal.Add(serviceFee),
		CoachNetEarnings:            cost.Sub(commission),
		RequesterRole:               role,
		Currency:                    config.Currency,
		ConfigVersion:               config.Version,
	}
}

// QuoteBooking prices a multi-session booking. Every per-session amount,
// the additional participant fee included, is multiplied by the session
// count. A count below one is treated as a single session.
func QuoteBooking(config models.PricingConfiguration, input models.SessionPricingRequest) models.BookingQuote {
	sessions := input.SessionCount
	if sessions < 1 {
		sessions = 1
	}
	per := Calculate(config, input)
	n := decimal.NewFromInt(int64(sessions))

	total := per
	total.CoachAmount = per.CoachAmount.Mul(n)
	total.ServiceFee = per.ServiceFee.Mul(n)
	total.Commission = per.Commission.Mul(n)
	total.ServiceOrCommissionAmount = per.ServiceOrCommissionAmount.Mul(n)
	total.AdditionalParticipantAmount = per.AdditionalParticipantAmount.Mul(n)
	total.Subtotal = per.Subtotal.Mul(n)
	total.TotalAmount = per.TotalAmount.Mul(n)
	total.CoachNetEarnings = per.CoachNetEarnings.Mul(n)

	return models.BookingQuote{
		SessionCount: sessions,
		PerSession:   per,
		Total:        total,
	}
}

func normalizeRole(role string) string {
	if strings.EqualFold(strings.TrimSpace(role), models.RoleCoach) {
		return models.RoleCoach
	}
	return models.RoleCompany
}

func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}
