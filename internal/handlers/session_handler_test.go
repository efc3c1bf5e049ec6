package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/peptok/CoachMarketBack/internal/models"
	"github.com/peptok/CoachMarketBack/internal/repository"
	"github.com/peptok/CoachMarketBack/internal/services"
	"github.com/shopspring/decimal"
)

type stubSessionService struct {
	bookResult     *models.SessionDetail
	bookErr        error
	listResult     []models.SessionDetail
	listErr        error
	getResult      *models.SessionDetail
	getErr         error
	lastBookInput  services.BookSessionInput
	lastActorID    string
	lastRole       string
	lastSessionID  int64
	lastListFilter repository.SessionListFilter
}

func (s *stubSessionService) BookSession(_ context.Context, companyID string, input services.BookSessionInput) (*models.SessionDetail, error) {
	s.lastActorID = companyID
	s.lastBookInput = input
	return s.bookResult, s.bookErr
}

func (s *stubSessionService) ListSessions(_ context.Context, actorID string, role string, filter repository.SessionListFilter) ([]models.SessionDetail, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastListFilter = filter
	return s.listResult, s.listErr
}

func (s *stubSessionService) GetSession(_ context.Context, actorID string, role string, sessionID int64) (*models.SessionDetail, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastSessionID = sessionID
	return s.getResult, s.getErr
}

func newActorApp(role, userID string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		c.Locals("user_id", userID)
		return c.Next()
	})
	return app
}

func TestBookSessionReturnsCreatedSession(t *testing.T) {
	service := &stubSessionService{
		bookResult: &models.SessionDetail{
			Session: models.Session{
				ID:              91,
				CompanyID:       "company_42",
				CoachID:         "coach_7",
				Status:          models.SessionStatusPending,
				DurationMinutes: 60,
				SessionCount:    2,
				Pricing: models.CostBreakdown{
					TotalAmount: decimal.RequireFromString("330.00"),
					Currency:    "USD",
				},
			},
			Payment: &models.Payment{Status: "placeholder", Amount: 330},
		},
	}
	handler := NewSessionHandler(service, nil)

	app := newActorApp(models.RoleCompany, "company_42")
	app.Post("/api/v1/sessions/book", handler.BookSession)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/book", strings.NewReader(`{
		"coach_id": "coach_7",
		"match_id": "match_1",
		"scheduled_at": "2030-03-15T09:00:00Z",
		"duration_minutes": 60,
		"participant_count": 3,
		"session_count": 2,
		"notes": "leadership offsite"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastActorID != "company_42" {
		t.Fatalf("expected actor company_42, got %q", service.lastActorID)
	}
	input := service.lastBookInput
	if input.CoachID != "coach_7" || input.DurationMinutes != 60 || input.ParticipantCount != 3 || input.SessionCount != 2 {
		t.Fatalf("unexpected book input %+v", input)
	}
	if input.MatchID == nil || *input.MatchID != "match_1" {
		t.Fatalf("expected match id forwarded, got %v", input.MatchID)
	}

	var body struct {
		Session struct {
			Pricing struct {
				TotalAmount string `json:"total_amount"`
			} `json:"pricing"`
		} `json:"session"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Session.Pricing.TotalAmount != "330" {
		t.Fatalf("expected total 330, got %q", body.Session.Pricing.TotalAmount)
	}
}

func TestBookSessionRejectsNonCompany(t *testing.T) {
	service := &stubSessionService{}
	handler := NewSessionHandler(service, nil)

	app := newActorApp(models.RoleCoach, "coach_1")
	app.Post("/api/v1/sessions/book", handler.BookSession)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/book", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestBookSessionValidatesBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing coach", body: `{"scheduled_at":"2030-03-15T09:00:00Z","duration_minutes":60}`},
		{name: "bad timestamp", body: `{"coach_id":"c","scheduled_at":"tomorrow","duration_minutes":60}`},
		{name: "zero duration", body: `{"coach_id":"c","scheduled_at":"2030-03-15T09:00:00Z"}`},
		{name: "blank notes", body: `{"coach_id":"c","scheduled_at":"2030-03-15T09:00:00Z","duration_minutes":60,"notes":"  "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewSessionHandler(&stubSessionService{}, nil)
			app := newActorApp(models.RoleCompany, "company_1")
			app.Post("/book", handler.BookSession)

			req := httptest.NewRequest(http.MethodPost, "/book", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestBookSessionMapsServiceErrors(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: services.ErrInvalidInput, want: http.StatusBadRequest},
		{err: services.ErrCoachNotFound, want: http.StatusNotFound},
		{err: services.ErrForbidden, want: http.StatusForbidden},
		{err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		handler := NewSessionHandler(&stubSessionService{bookErr: tt.err}, nil)
		app := newActorApp(models.RoleCompany, "company_1")
		app.Post("/book", handler.BookSession)

		req := httptest.NewRequest(http.MethodPost, "/book", strings.NewReader(`{
			"coach_id": "coach_7",
			"scheduled_at": "2030-03-15T09:00:00Z",
			"duration_minutes": 60
		}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != tt.want {
			t.Fatalf("%v: expected %d, got %d", tt.err, tt.want, resp.StatusCode)
		}
	}
}

func TestListSessionsForwardsFilters(t *testing.T) {
	service := &stubSessionService{listResult: []models.SessionDetail{{Session: models.Session{ID: 1}}}}
	handler := NewSessionHandler(service, nil)

	app := newActorApp(models.RoleCoach, "coach_7")
	app.Get("/api/v1/sessions", handler.ListSessions)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/sessions?status=pending&timeframe=upcoming", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastActorID != "coach_7" || service.lastRole != models.RoleCoach {
		t.Fatalf("unexpected actor %q/%q", service.lastActorID, service.lastRole)
	}
	if service.lastListFilter.Status != "pending" || service.lastListFilter.Timeframe != "upcoming" {
		t.Fatalf("unexpected filter %+v", service.lastListFilter)
	}
}

func TestListSessionsRejectsUnknownTimeframe(t *testing.T) {
	handler := NewSessionHandler(&stubSessionService{}, nil)
	app := newActorApp(models.RoleCompany, "company_1")
	app.Get("/api/v1/sessions", handler.ListSessions)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/sessions?timeframe=soon", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGetSessionMapsNotFound(t *testing.T) {
	service := &stubSessionService{getErr: services.ErrNotFound}
	handler := NewSessionHandler(service, nil)
	app := newActorApp(models.RoleCompany, "company_1")
	app.Get("/api/v1/sessions/:id", handler.GetSession)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/sessions/55", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if service.lastSessionID != 55 {
		t.Fatalf("expected session id 55, got %d", service.lastSessionID)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/sessions/abc", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid id, got %d", resp.StatusCode)
	}
}
