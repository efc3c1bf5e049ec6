package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/peptok/CoachMarketBack/internal/models"
	"github.com/peptok/CoachMarketBack/internal/services"
)

type stubMatchService struct {
	response  *models.MatchResponse
	err       error
	lastInput services.GenerateMatchesInput
	lastID    string
	stats     models.MatchingStats
}

func (s *stubMatchService) GenerateMatches(_ context.Context, input services.GenerateMatchesInput) (*models.MatchResponse, error) {
	s.lastInput = input
	return s.response, s.err
}

func (s *stubMatchService) GetMatches(_ context.Context, requestID string) (*models.MatchResponse, error) {
	s.lastID = requestID
	return s.response, s.err
}

func (s *stubMatchService) Stats(_ context.Context) models.MatchingStats {
	return s.stats
}

func rankedResponse(n int) *models.MatchResponse {
	matches := make([]models.MatchWithCoach, 0, n)
	for i := 0; i < n; i++ {
		matches = append(matches, models.MatchWithCoach{MatchResult: models.MatchResult{
			RequestID: "req_1",
			CoachID:   "coach_" + string(rune('a'+i)),
			Score:     1 - float64(i)*0.1,
		}})
	}
	return &models.MatchResponse{RequestID: "req_1", Matches: matches, TotalCoaches: n}
}

func TestCreateMatchesUsesCompanyFromToken(t *testing.T) {
	service := &stubMatchService{response: rankedResponse(5)}
	handler := NewMatchHandler(service, 3, nil)

	app := newActorApp(models.RoleCompany, "company_9")
	app.Post("/api/v1/matches", handler.CreateMatches)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/matches", strings.NewReader(`{
		"company_id": "someone_else",
		"title": "Leadership program",
		"expertise": ["Leadership", "Strategy"],
		"experience": "5+ years",
		"weights": {"expertise": 2, "experience": 1, "rating": 1}
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
	if service.lastInput.CompanyID != "company_9" {
		t.Fatalf("expected company from token, got %q", service.lastInput.CompanyID)
	}
	if len(service.lastInput.Expertise) != 2 || service.lastInput.Weights == nil || service.lastInput.Weights.Expertise != 2 {
		t.Fatalf("unexpected input %+v", service.lastInput)
	}

	var body models.MatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Matches) != 3 {
		t.Fatalf("expected default display limit 3, got %d", len(body.Matches))
	}
	if body.TotalCoaches != 5 {
		t.Fatalf("expected total coaches 5, got %d", body.TotalCoaches)
	}
}

func TestCreateMatchesHonoursRequestedLimit(t *testing.T) {
	service := &stubMatchService{response: rankedResponse(5)}
	handler := NewMatchHandler(service, 3, nil)

	app := newActorApp(models.RoleAdmin, "admin_1")
	app.Post("/api/v1/matches", handler.CreateMatches)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/matches", strings.NewReader(`{"company_id":"company_2","expertise":["Sales"],"limit":4}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	var body models.MatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Matches) != 4 {
		t.Fatalf("expected 4 matches, got %d", len(body.Matches))
	}
	if service.lastInput.CompanyID != "company_2" {
		t.Fatalf("expected admin-provided company, got %q", service.lastInput.CompanyID)
	}
}

func TestCreateMatchesRejectsCoaches(t *testing.T) {
	handler := NewMatchHandler(&stubMatchService{}, 3, nil)
	app := newActorApp(models.RoleCoach, "coach_1")
	app.Post("/api/v1/matches", handler.CreateMatches)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/matches", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestCreateMatchesMapsInvalidInput(t *testing.T) {
	handler := NewMatchHandler(&stubMatchService{err: services.ErrInvalidInput}, 3, nil)
	app := newActorApp(models.RoleCompany, "company_1")
	app.Post("/api/v1/matches", handler.CreateMatches)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/matches", strings.NewReader(`{"expertise":["x"]}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGetMatchesNotFound(t *testing.T) {
	service := &stubMatchService{err: services.ErrNotFound}
	handler := NewMatchHandler(service, 3, nil)
	app := newActorApp(models.RoleCompany, "company_1")
	app.Get("/api/v1/matches/:requestId", handler.GetMatches)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/matches/req_missing", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if service.lastID != "req_missing" {
		t.Fatalf("expected lookup of req_missing, got %q", service.lastID)
	}
}

func TestStatsAdminOnly(t *testing.T) {
	service := &stubMatchService{stats: models.MatchingStats{AlgorithmVersion: "1.0.0", TotalRequests: 4}}
	handler := NewMatchHandler(service, 3, nil)

	admin := newActorApp(models.RoleAdmin, "admin_1")
	admin.Get("/api/v1/matches/stats", handler.Stats)
	resp, err := admin.Test(httptest.NewRequest(http.MethodGet, "/api/v1/matches/stats", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Stats models.MatchingStats `json:"stats"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Stats.TotalRequests != 4 {
		t.Fatalf("unexpected stats %+v", body.Stats)
	}

	company := newActorApp(models.RoleCompany, "company_1")
	company.Get("/api/v1/matches/stats", handler.Stats)
	resp, err = company.Test(httptest.NewRequest(http.MethodGet, "/api/v1/matches/stats", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestCreateMatchesForbiddenForForeignRequestID(t *testing.T) {
	service := &stubMatchService{err: services.ErrForbidden}
	handler := NewMatchHandler(service, 3, nil)

	app := newActorApp(models.RoleCompany, "company-B")
	app.Post("/api/v1/matches", handler.CreateMatches)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/matches", strings.NewReader(`{"request_id":"req-A","expertise":["Cooking"]}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	if service.lastInput.RequestID != "req-A" || service.lastInput.CompanyID != "company-B" {
		t.Fatalf("unexpected input %+v", service.lastInput)
	}
}
