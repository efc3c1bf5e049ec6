package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/peptok/CoachMarketBack/internal/models"
	"github.com/shopspring/decimal"
)

const sessionColumns = `id, company_id, coach_id, match_id, scheduled_at, duration_min,
	participant_count, session_count, coach_hourly_rate, status, notes, coach_amount, service_fee, commission,
	additional_participant_amount, subtotal, total_amount, coach_net_earnings, currency,
	pricing_version, created_at, updated_at`

type CreateSessionInput struct {
	CompanyID        string
	CoachID          string
	MatchID          *string
	ScheduledAt      time.Time
	DurationMinutes  int
	ParticipantCount int
	SessionCount     int
	CoachHourlyRate  float64
	Notes            *string
	Pricing          models.CostBreakdown
}

type SessionListFilter struct {
	ActorID   string
	Role      string
	Status    string
	Timeframe string
}

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(
	ctx context.Context,
	input CreateSessionInput,
) (*models.Session, error) {
	query := `
		INSERT INTO sessions (company_id, coach_id, match_id, scheduled_at, duration_min,
			participant_count, session_count, coach_hourly_rate, status, notes, coach_amount, service_fee, commission,
			additional_participant_amount, subtotal, total_amount, coach_net_earnings, currency,
			pricing_version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending', $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING ` + sessionColumns

	p := input.Pricing
	return scanSession(r.db.QueryRow(
		ctx,
		query,
		input.CompanyID,
		input.CoachID,
		input.MatchID,
		input.ScheduledAt,
		input.DurationMinutes,
		input.ParticipantCount,
		input.SessionCount,
		input.CoachHourlyRate,
		input.Notes,
		p.CoachAmount.InexactFloat64(),
		p.ServiceFee.InexactFloat64(),
		p.Commission.InexactFloat64(),
		p.AdditionalParticipantAmount.InexactFloat64(),
		p.Subtotal.InexactFloat64(),
		p.TotalAmount.InexactFloat64(),
		p.CoachNetEarnings.InexactFloat64(),
		p.Currency,
		p.ConfigVersion,
	))
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID int64) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	return scanSession(r.db.QueryRow(ctx, query, sessionID))
}

func (r *SessionRepository) List(
	ctx context.Context,
	filter SessionListFilter,
) ([]models.Session, error) {
	actorColumn := "company_id"
	if filter.Role == models.RoleCoach {
		actorColumn = "coach_id"
	}

	args := []any{filter.ActorID}
	whereParts := []string{fmt.Sprintf("%s = $1", actorColumn)}

	if status := strings.TrimSpace(filter.Status); status != "" {
		args = append(args, status)
		whereParts = append(whereParts, fmt.Sprintf("status = $%d", len(args)))
	}

	switch strings.TrimSpace(filter.Timeframe) {
	case "upcoming":
		whereParts = append(
			whereParts,
			"(scheduled_at + (duration_min * INTERVAL '1 minute')) > NOW()",
		)
	case "past":
		whereParts = append(
			whereParts,
			"(scheduled_at + (duration_min * INTERVAL '1 minute')) <= NOW()",
		)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM sessions
		WHERE %s
		ORDER BY scheduled_at ASC, id ASC
	`, sessionColumns, strings.Join(whereParts, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

func scanSession(row pgx.Row) (*models.Session, error) {
	var (
		session models.Session
		amounts [7]float64
	)
	err := row.Scan(
		&session.ID,
		&session.CompanyID,
		&session.CoachID,
		&session.MatchID,
		&session.ScheduledAt,
		&session.DurationMinutes,
		&session.ParticipantCount,
		&session.SessionCount,
		&session.CoachHourlyRate,
		&session.Status,
		&session.Notes,
		&amounts[0],
		&amounts[1],
		&amounts[2],
		&amounts[3],
		&amounts[4],
		&amounts[5],
		&amounts[6],
		&session.Pricing.Currency,
		&session.Pricing.ConfigVersion,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p := &session.Pricing
	p.CoachAmount = decimal.NewFromFloat(amounts[0])
	p.ServiceFee = decimal.NewFromFloat(amounts[1])
	p.Commission = decimal.NewFromFloat(amounts[2])
	p.AdditionalParticipantAmount = decimal.NewFromFloat(amounts[3])
	p.Subtotal = decimal.NewFromFloat(amounts[4])
	p.TotalAmount = decimal.NewFromFloat(amounts[5])
	p.CoachNetEarnings = decimal.NewFromFloat(amounts[6])
	// Booked sessions are stored from the paying company's side.
	p.RequesterRole = models.RoleCompany
	p.ServiceOrCommissionAmount = p.ServiceFee
	return &session, nil
}
