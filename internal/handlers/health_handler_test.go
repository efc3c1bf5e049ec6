package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

type stubPinger struct {
	err error
}

func (s *stubPinger) Ping(_ context.Context) error {
	return s.err
}

type stubCounter struct {
	count int
	calls int
}

func (s *stubCounter) Count(_ context.Context) (int, error) {
	s.calls++
	return s.count, nil
}

type stubCacheStatus struct {
	enabled bool
	pingErr error
	cached  int
	found   bool
	stored  int
}

func (s *stubCacheStatus) Enabled() bool { return s.enabled }

func (s *stubCacheStatus) Ping(_ context.Context) error { return s.pingErr }

func (s *stubCacheStatus) CoachCount(_ context.Context) (int, bool, error) {
	return s.cached, s.found, nil
}

func (s *stubCacheStatus) SetCoachCount(_ context.Context, count int) error {
	s.stored = count
	return nil
}

func TestHealthReportsDependencies(t *testing.T) {
	counter := &stubCounter{count: 3}
	cache := &stubCacheStatus{enabled: true}
	handler := NewHealthHandler(&stubPinger{}, counter, cache, nil)

	app := fiber.New()
	app.Get("/health", handler.Health)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "healthy" || body["redis"] != "up" {
		t.Fatalf("unexpected body %+v", body)
	}
	if body["coaches"] != float64(3) {
		t.Fatalf("expected 3 coaches, got %v", body["coaches"])
	}
	if cache.stored != 3 {
		t.Fatalf("expected coach count cached, got %d", cache.stored)
	}
}

func TestHealthUsesCachedCoachCount(t *testing.T) {
	counter := &stubCounter{count: 3}
	handler := NewHealthHandler(&stubPinger{}, counter, &stubCacheStatus{enabled: true, cached: 7, found: true}, nil)

	app := fiber.New()
	app.Get("/health", handler.Health)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if counter.calls != 0 {
		t.Fatalf("expected no database count, got %d calls", counter.calls)
	}
}

func TestHealthDegradedRedisStaysHealthy(t *testing.T) {
	handler := NewHealthHandler(&stubPinger{}, &stubCounter{count: 1}, &stubCacheStatus{enabled: true, pingErr: errors.New("refused")}, nil)

	app := fiber.New()
	app.Get("/health", handler.Health)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["redis"] != "down" {
		t.Fatalf("expected redis down, got %v", body["redis"])
	}
}

func TestHealthDatabaseDown(t *testing.T) {
	handler := NewHealthHandler(&stubPinger{err: errors.New("refused")}, &stubCounter{}, nil, nil)

	app := fiber.New()
	app.Get("/health", handler.Health)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}
