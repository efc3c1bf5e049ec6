package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/peptok/CoachMarketBack/internal/matching"
	"github.com/peptok/CoachMarketBack/internal/models"
	"go.uber.org/zap"
)

const maxExpertiseTags = 50

type CoachRoster interface {
	ListAll(ctx context.Context) ([]models.CoachRecord, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]models.CoachRecord, error)
}

type MatchStore interface {
	SaveRequest(ctx context.Context, request models.MatchRequest) (bool, error)
	ReplaceResults(ctx context.Context, requestID string, results []models.MatchResult) error
	ListByRequest(ctx context.Context, requestID string) ([]models.MatchResult, error)
}

type MatchCache interface {
	Get(ctx context.Context, requestID string) ([]models.MatchResult, bool, error)
	Set(ctx context.Context, requestID string, results []models.MatchResult) error
	Invalidate(ctx context.Context, requestID string) error
	RecordProcessing(ctx context.Context, matches int, elapsedMS int64) error
	ProcessingStats(ctx context.Context) (models.MatchingStats, bool, error)
}

type MatchmakingService struct {
	coaches CoachRoster
	matches MatchStore
	cache   MatchCache
	scorer  *matching.Scorer
	logger  *zap.Logger
	now     func() time.Time

	mu    sync.Mutex
	stats matchingCounters
}

type matchingCounters struct {
	requests int64
	matches  int64
	totalMS  int64
	lastMS   int64
}

func NewMatchmakingService(
	coaches CoachRoster,
	matches MatchStore,
	cache MatchCache,
	logger *zap.Logger,
) *MatchmakingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchmakingService{
		coaches: coaches,
		matches: matches,
		cache:   cache,
		scorer:  matching.NewScorer(matching.DefaultWeights()),
		logger:  logger,
		now:     time.Now,
	}
}

type GenerateMatchesInput struct {
	RequestID  string
	CompanyID  string
	Title      string
	Expertise  []string
	Experience string
	Weights    *models.ScoreWeights
}

// GenerateMatches ranks the full roster against the input, persists the
// request and its results, and caches the ranking. The full ranking is
// returned; display truncation is left to the caller.
func (s *MatchmakingService) GenerateMatches(
	ctx context.Context,
	input GenerateMatchesInput,
) (*models.MatchResponse, error) {
	if len(input.Expertise) > maxExpertiseTags {
		return nil, fmt.Errorf("%w: at most %d expertise tags", ErrInvalidInput, maxExpertiseTags)
	}

	started := s.now()
	requestID := strings.TrimSpace(input.RequestID)
	rerun := requestID != ""
	if !rerun {
		requestID = uuid.NewString()
	}

	request := models.MatchRequest{
		ID:         requestID,
		CompanyID:  strings.TrimSpace(input.CompanyID),
		Title:      strings.TrimSpace(input.Title),
		Expertise:  input.Expertise,
		Experience: strings.TrimSpace(input.Experience),
		Weights:    input.Weights,
		CreatedAt:  started.UTC(),
	}

	roster, err := s.coaches.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load coach roster: %w", err)
	}

	results := s.scorer.Rank(request, roster)
	for i := range results {
		results[i].ID = uuid.NewString()
		results[i].CreatedAt = request.CreatedAt
	}

	saved, err := s.matches.SaveRequest(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("save coaching request: %w", err)
	}
	if !saved {
		return nil, fmt.Errorf("%w: request %s belongs to another company", ErrForbidden, requestID)
	}
	if rerun && s.cache != nil {
		if err := s.cache.Invalidate(ctx, requestID); err != nil {
			s.logger.Warn("invalidate cached matches failed", zap.String("request_id", requestID), zap.Error(err))
		}
	}
	if err := s.matches.ReplaceResults(ctx, requestID, results); err != nil {
		return nil, fmt.Errorf("save match results: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, requestID, results); err != nil {
			s.logger.Warn("cache matches failed", zap.String("request_id", requestID), zap.Error(err))
		}
	}

	elapsed := s.now().Sub(started).Milliseconds()
	s.record(ctx, len(results), elapsed)

	s.logger.Info("matches generated",
		zap.String("request_id", requestID),
		zap.Int("coaches", len(roster)),
		zap.Int64("processing_ms", elapsed),
	)

	return &models.MatchResponse{
		RequestID:        requestID,
		Matches:          attachCoaches(results, indexRoster(roster)),
		TotalCoaches:     len(roster),
		ProcessingMS:     elapsed,
		AlgorithmVersion: matching.AlgorithmVersion,
	}, nil
}

// GetMatches returns the ranking for a request, preferring the cache.
func (s *MatchmakingService) GetMatches(ctx context.Context, requestID string) (*models.MatchResponse, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return nil, ErrInvalidInput
	}

	cached := false
	var results []models.MatchResult
	if s.cache != nil {
		hit, found, err := s.cache.Get(ctx, requestID)
		if err != nil {
			s.logger.Warn("read cached matches failed", zap.String("request_id", requestID), zap.Error(err))
		}
		if found {
			results = hit
			cached = true
		}
	}

	if !cached {
		stored, err := s.matches.ListByRequest(ctx, requestID)
		if err != nil {
			return nil, fmt.Errorf("load match results: %w", err)
		}
		if len(stored) == 0 {
			return nil, ErrNotFound
		}
		results = stored
	}

	ids := make([]string, 0, len(results))
	for _, result := range results {
		ids = append(ids, result.CoachID)
	}
	coaches, err := s.coaches.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load matched coaches: %w", err)
	}

	return &models.MatchResponse{
		RequestID:        requestID,
		Matches:          attachCoaches(results, coaches),
		TotalCoaches:     len(results),
		AlgorithmVersion: matching.AlgorithmVersion,
		Cached:           cached,
	}, nil
}

// Stats prefers the counters shared through the cache so every instance
// reports the same totals. The in-process counters are used otherwise.
func (s *MatchmakingService) Stats(ctx context.Context) models.MatchingStats {
	if s.cache != nil {
		shared, found, err := s.cache.ProcessingStats(ctx)
		if err != nil {
			s.logger.Warn("read shared matching stats failed", zap.Error(err))
		}
		if err == nil && found {
			shared.AlgorithmVersion = matching.AlgorithmVersion
			return shared
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stats := models.MatchingStats{
		AlgorithmVersion: matching.AlgorithmVersion,
		TotalRequests:    s.stats.requests,
		TotalMatches:     s.stats.matches,
		LastProcessingMS: s.stats.lastMS,
	}
	if s.stats.requests > 0 {
		stats.AverageProcessingMS = float64(s.stats.totalMS) / float64(s.stats.requests)
	}
	return stats
}

func (s *MatchmakingService) record(ctx context.Context, matches int, elapsedMS int64) {
	s.mu.Lock()
	s.stats.requests++
	s.stats.matches += int64(matches)
	s.stats.totalMS += elapsedMS
	s.stats.lastMS = elapsedMS
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.RecordProcessing(ctx, matches, elapsedMS); err != nil {
			s.logger.Warn("record shared matching stats failed", zap.Error(err))
		}
	}
}

func indexRoster(roster []models.CoachRecord) map[string]models.CoachRecord {
	indexed := make(map[string]models.CoachRecord, len(roster))
	for _, coach := range roster {
		indexed[coach.ID] = coach
	}
	return indexed
}

func attachCoaches(results []models.MatchResult, coaches map[string]models.CoachRecord) []models.MatchWithCoach {
	out := make([]models.MatchWithCoach, 0, len(results))
	for _, result := range results {
		item := models.MatchWithCoach{MatchResult: result}
		if coach, ok := coaches[result.CoachID]; ok {
			summary := coach.Summary()
			item.Coach = &summary
		}
		out = append(out, item)
	}
	return out
}
