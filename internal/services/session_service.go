package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/peptok/CoachMarketBack/internal/models"
	"github.com/peptok/CoachMarketBack/internal/pricing"
	"github.com/peptok/CoachMarketBack/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidInput  = errors.New("invalid input")
	ErrCoachNotFound = errors.New("coach not found")
	ErrInvalidConfig = errors.New("invalid pricing configuration")
	ErrNotFound      = errors.New("not found")
)

const (
	maxSessionCount    = 52
	maxDurationMinutes = 8 * 60
)

type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type CoachReader interface {
	GetByID(ctx context.Context, id string) (*models.CoachRecord, error)
}

type MatchReader interface {
	GetResult(ctx context.Context, matchID string) (*models.MatchResult, error)
}

type SessionReader interface {
	GetByID(ctx context.Context, sessionID int64) (*models.Session, error)
	List(ctx context.Context, filter repository.SessionListFilter) ([]models.Session, error)
}

type PaymentReader interface {
	GetBySessionID(ctx context.Context, sessionID int64) (*models.Payment, error)
	ListBySessionIDs(ctx context.Context, sessionIDs []int64) (map[int64]models.Payment, error)
}

type PricingSource interface {
	CurrentConfig(ctx context.Context) (*models.PricingConfiguration, error)
	ConfigByVersion(ctx context.Context, version int64) (*models.PricingConfiguration, error)
}

type SessionService struct {
	db          TxBeginner
	sessionRepo SessionReader
	paymentRepo PaymentReader
	coachRepo   CoachReader
	matchRepo   MatchReader
	configs     PricingSource
	logger      *zap.Logger
	now         func() time.Time
}

func NewSessionService(
	db TxBeginner,
	sessionRepo SessionReader,
	paymentRepo PaymentReader,
	coachRepo CoachReader,
	matchRepo MatchReader,
	configs PricingSource,
	logger *zap.Logger,
) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		db:          db,
		sessionRepo: sessionRepo,
		paymentRepo: paymentRepo,
		coachRepo:   coachRepo,
		matchRepo:   matchRepo,
		configs:     configs,
		logger:      logger,
		now:         time.Now,
	}
}

type BookSessionInput struct {
	CoachID          string
	MatchID          *string
	ScheduledAt      time.Time
	DurationMinutes  int
	ParticipantCount int
	SessionCount     int
	Notes            *string
}

// SessionQuote is a validated booking priced under a specific configuration.
type SessionQuote struct {
	Coach  models.CoachRecord
	Config models.PricingConfiguration
	Input  BookSessionInput
	Quote  models.BookingQuote
}

// QuoteSession validates a booking request and prices it from the
// company's side with the current configuration. Nothing is persisted.
func (s *SessionService) QuoteSession(
	ctx context.Context,
	companyID string,
	input BookSessionInput,
) (*SessionQuote, error) {
	input.CoachID = strings.TrimSpace(input.CoachID)
	if strings.TrimSpace(companyID) == "" || input.CoachID == "" {
		return nil, ErrInvalidInput
	}
	if input.DurationMinutes <= 0 || input.DurationMinutes > maxDurationMinutes {
		return nil, fmt.Errorf("%w: duration must be between 1 and %d minutes", ErrInvalidInput, maxDurationMinutes)
	}
	if input.ParticipantCount == 0 {
		input.ParticipantCount = 1
	}
	if input.ParticipantCount < 0 {
		return nil, fmt.Errorf("%w: participant count must be positive", ErrInvalidInput)
	}
	if input.SessionCount == 0 {
		input.SessionCount = 1
	}
	if input.SessionCount < 0 || input.SessionCount > maxSessionCount {
		return nil, fmt.Errorf("%w: session count must be between 1 and %d", ErrInvalidInput, maxSessionCount)
	}
	if input.ScheduledAt.Before(s.now().Add(-1 * time.Minute)) {
		return nil, fmt.Errorf("%w: scheduled time is in the past", ErrInvalidInput)
	}

	coach, err := s.coachRepo.GetByID(ctx, input.CoachID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCoachNotFound
		}
		return nil, err
	}
	if coach.Availability == models.AvailabilityUnavailable {
		return nil, fmt.Errorf("%w: coach is unavailable", ErrInvalidInput)
	}
	if coach.HourlyRate <= 0 {
		return nil, fmt.Errorf("%w: coach has no hourly rate", ErrInvalidInput)
	}

	if input.MatchID != nil {
		match, err := s.matchRepo.GetResult(ctx, *input.MatchID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("%w: unknown match", ErrInvalidInput)
			}
			return nil, err
		}
		if match.CoachID != coach.ID {
			return nil, fmt.Errorf("%w: match belongs to another coach", ErrInvalidInput)
		}
	}

	cfg, err := s.configs.CurrentConfig(ctx)
	if err != nil {
		return nil, err
	}

	quote := pricing.QuoteBooking(*cfg, models.SessionPricingRequest{
		CoachHourlyRate:  coach.HourlyRate,
		DurationMinutes:  input.DurationMinutes,
		ParticipantCount: input.ParticipantCount,
		RequesterRole:    models.RoleCompany,
		SessionCount:     input.SessionCount,
	})

	return &SessionQuote{
		Coach:  *coach,
		Config: *cfg,
		Input:  input,
		Quote:  quote,
	}, nil
}

// BookSession prices the booking and stores the session together with a
// placeholder payment for the company's total.
func (s *SessionService) BookSession(
	ctx context.Context,
	companyID string,
	input BookSessionInput,
) (*models.SessionDetail, error) {
	quoted, err := s.QuoteSession(ctx, companyID, input)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewSessionRepository(tx)
	txPaymentRepo := repository.NewPaymentRepository(tx)

	total := quoted.Quote.Total
	session, err := txSessionRepo.Create(ctx, repository.CreateSessionInput{
		CompanyID:        companyID,
		CoachID:          quoted.Coach.ID,
		MatchID:          quoted.Input.MatchID,
		ScheduledAt:      quoted.Input.ScheduledAt.UTC(),
		DurationMinutes:  quoted.Input.DurationMinutes,
		ParticipantCount: quoted.Input.ParticipantCount,
		SessionCount:     quoted.Quote.SessionCount,
		CoachHourlyRate:  quoted.Coach.HourlyRate,
		Notes:            quoted.Input.Notes,
		Pricing:          total,
	})
	if err != nil {
		return nil, err
	}

	payment, err := txPaymentRepo.Create(ctx, repository.CreatePaymentInput{
		SessionID: session.ID,
		CompanyID: companyID,
		CoachID:   quoted.Coach.ID,
		Amount:    total.TotalAmount.InexactFloat64(),
		Currency:  total.Currency,
		Status:    "placeholder",
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("session booked",
		zap.Int64("session_id", session.ID),
		zap.String("company_id", companyID),
		zap.String("coach_id", quoted.Coach.ID),
		zap.String("total", total.TotalAmount.StringFixed(2)),
		zap.Int64("pricing_version", total.ConfigVersion),
	)

	return &models.SessionDetail{
		Session: *session,
		Payment: payment,
	}, nil
}

func (s *SessionService) ListSessions(
	ctx context.Context,
	actorID string,
	role string,
	filter repository.SessionListFilter,
) ([]models.SessionDetail, error) {
	if role != models.RoleCompany && role != models.RoleCoach {
		return nil, ErrForbidden
	}

	sessions, err := s.sessionRepo.List(ctx, repository.SessionListFilter{
		ActorID:   actorID,
		Role:      role,
		Status:    filter.Status,
		Timeframe: filter.Timeframe,
	})
	if err != nil {
		return nil, err
	}

	sessionIDs := make([]int64, 0, len(sessions))
	for _, session := range sessions {
		sessionIDs = append(sessionIDs, session.ID)
	}

	paymentsBySession, err := s.paymentRepo.ListBySessionIDs(ctx, sessionIDs)
	if err != nil {
		return nil, err
	}

	details := make([]models.SessionDetail, 0, len(sessions))
	for _, session := range sessions {
		detail := models.SessionDetail{Session: session}
		if payment, ok := paymentsBySession[session.ID]; ok {
			paymentCopy := payment
			detail.Payment = &paymentCopy
		}
		details = append(details, detail)
	}

	return details, nil
}

func (s *SessionService) GetSession(
	ctx context.Context,
	actorID string,
	role string,
	sessionID int64,
) (*models.SessionDetail, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !canAccessSession(role, actorID, session) {
		return nil, ErrForbidden
	}

	detail := &models.SessionDetail{Session: *session}
	payment, err := s.paymentRepo.GetBySessionID(ctx, sessionID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err == nil {
		detail.Payment = payment
	}
	return detail, nil
}

// CoachEarnings re-prices every non-cancelled session from the coach's side
// under the configuration version it was booked with.
func (s *SessionService) CoachEarnings(ctx context.Context, coachID string) (*models.CoachEarnings, error) {
	if strings.TrimSpace(coachID) == "" {
		return nil, ErrInvalidInput
	}

	sessions, err := s.sessionRepo.List(ctx, repository.SessionListFilter{
		ActorID: coachID,
		Role:    models.RoleCoach,
	})
	if err != nil {
		return nil, err
	}

	versions := make(map[int64]models.PricingConfiguration)
	earnings := &models.CoachEarnings{
		CoachID:  coachID,
		Sessions: make([]models.SessionPayout, 0, len(sessions)),
	}
	gross, commission, net := decimal.Zero, decimal.Zero, decimal.Zero

	for _, session := range sessions {
		if session.Status == models.SessionStatusCancelled {
			continue
		}

		cfg, ok := versions[session.Pricing.ConfigVersion]
		if !ok {
			loaded, err := s.configs.ConfigByVersion(ctx, session.Pricing.ConfigVersion)
			if err != nil {
				return nil, err
			}
			cfg = *loaded
			versions[session.Pricing.ConfigVersion] = cfg
		}

		quote := pricing.QuoteBooking(cfg, models.SessionPricingRequest{
			CoachHourlyRate:  session.CoachHourlyRate,
			DurationMinutes:  session.DurationMinutes,
			ParticipantCount: session.ParticipantCount,
			RequesterRole:    models.RoleCoach,
			SessionCount:     session.SessionCount,
		})
		total := quote.Total

		gross = gross.Add(total.CoachAmount)
		commission = commission.Add(total.Commission)
		net = net.Add(total.CoachNetEarnings)
		if earnings.Currency == "" {
			earnings.Currency = total.Currency
		}

		earnings.Sessions = append(earnings.Sessions, models.SessionPayout{
			SessionID:   session.ID,
			ScheduledAt: session.ScheduledAt,
			Status:      session.Status,
			Gross:       total.CoachAmount.InexactFloat64(),
			Commission:  total.Commission.InexactFloat64(),
			Net:         total.CoachNetEarnings.InexactFloat64(),
		})
	}

	earnings.SessionCount = len(earnings.Sessions)
	earnings.Gross = gross.InexactFloat64()
	earnings.Commission = commission.InexactFloat64()
	earnings.Net = net.InexactFloat64()
	return earnings, nil
}

func canAccessSession(role, actorID string, session *models.Session) bool {
	switch role {
	case models.RoleCompany:
		return session.CompanyID == actorID
	case models.RoleCoach:
		return session.CoachID == actorID
	case models.RoleAdmin:
		return true
	}
	return false
}
