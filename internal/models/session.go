package models

import "time"

const (
	SessionStatusPending   = "pending"
	SessionStatusConfirmed = "confirmed"
	SessionStatusCompleted = "completed"
	SessionStatusCancelled = "cancelled"
)

type Session struct {
	ID               int64         `json:"id"`
	CompanyID        string        `json:"company_id"`
	CoachID          string        `json:"coach_id"`
	MatchID          *string       `json:"match_id,omitempty"`
	ScheduledAt      time.Time     `json:"scheduled_at"`
	DurationMinutes  int           `json:"duration_minutes"`
	ParticipantCount int           `json:"participant_count"`
	SessionCount     int           `json:"session_count"`
	CoachHourlyRate  float64       `json:"coach_hourly_rate"`
	Status           string        `json:"status"`
	Notes            *string       `json:"notes"`
	Pricing          CostBreakdown `json:"pricing"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

type Payment struct {
	ID        int64     `json:"id"`
	SessionID int64     `json:"session_id"`
	CompanyID string    `json:"company_id"`
	CoachID   string    `json:"coach_id"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type SessionDetail struct {
	Session
	Payment *Payment `json:"payment,omitempty"`
}

// CoachEarnings is the coach-view summary over booked sessions.
type CoachEarnings struct {
	CoachID      string          `json:"coach_id"`
	Currency     string          `json:"currency"`
	SessionCount int             `json:"session_count"`
	Gross        float64         `json:"gross"`
	Commission   float64         `json:"commission"`
	Net          float64         `json:"net"`
	Sessions     []SessionPayout `json:"sessions"`
}

type SessionPayout struct {
	SessionID   int64     `json:"session_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Status      string    `json:"status"`
	Gross       float64   `json:"gross"`
	Commission  float64   `json:"commission"`
	Net         float64   `json:"net"`
}
