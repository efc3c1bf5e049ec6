// Package matching ranks a coach roster against a coaching request.
//
// Everything here is pure: no I/O, no shared state, and no input makes a
// function fail. Malformed values degrade to fixed fallback scores so every
// coach still gets a presentable result.
package matching

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/peptok/CoachMarketBack/internal/models"
)

// Scorer ranks rosters with a fixed set of base weights. A request may
// still override them per call.
type Scorer struct {
	weights models.ScoreWeights
}

// NewScorer builds a scorer with the given base weights. Invalid weights
// fall back to DefaultWeights.
func NewScorer(weights models.ScoreWeights) *Scorer {
	w, _ := NormalizeWeights(weights)
	return &Scorer{weights: w}
}

// Rank scores every coach with the default weights. See Scorer.Rank.
func Rank(request models.MatchRequest, roster []models.CoachRecord) []models.MatchResult {
	return NewScorer(DefaultWeights()).Rank(request, roster)
}

// Rank returns one result per roster entry, best first. Equal scores are
// ordered by coach ID ascending. Truncation is left to the caller.
func (s *Scorer) Rank(request models.MatchRequest, roster []models.CoachRecord) []models.MatchResult {
	weights := resolveWeights(request.Weights, s.weights)

	results := make([]models.MatchResult, 0, len(roster))
	for i := range roster {
		results = append(results, score(request, &roster[i], weights))
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score == results[j].Score {
			return results[i].CoachID < results[j].CoachID
		}
		return results[i].Score > results[j].Score
	})
	return results
}

func score(request models.MatchRequest, coach *models.CoachRecord, weights models.ScoreWeights) models.MatchResult {
	sub := models.Subscores{
		Expertise:  ExpertiseScore(coach.Expertise, request.Expertise),
		Experience: ExperienceScore(coach.Experience, request.Experience),
		Rating:     RatingScore(coach.Rating),
	}
	composite := CompositeScore(sub, weights)

	return models.MatchResult{
		RequestID: request.ID,
		CoachID:   coach.ID,
		Score:     composite,
		Subscores: sub,
		Reason:    Reason(sub, composite),
	}
}

// ExpertiseScore is the share of required tags that match at least one
// coach tag, where a match is case-insensitive containment in either
// direction. An empty side scores expertiseFallback instead of zero.
func ExpertiseScore(coachTags, requiredTags []string) float64 {
	coach := normalizeTags(coachTags)
	required := normalizeTags(requiredTags)
	if len(coach) == 0 || len(required) == 0 {
		return expertiseFallback
	}

	hits := 0
	for _, req := range required {
		for _, have := range coach {
			if strings.Contains(have, req) || strings.Contains(req, have) {
				hits++
				break
			}
		}
	}
	return math.Min(float64(hits)/float64(len(required)), 1.0)
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if t := strings.ToLower(strings.TrimSpace(tag)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// RatingScore maps a 0-5 rating onto 0-1.
func RatingScore(rating float64) float64 {
	if math.IsNaN(rating) {
		return 0
	}
	return math.Min(rating/maxRating, 1.0)
}

// CompositeScore blends the subscores and clamps the result to [0.3, 1.0].
func CompositeScore(sub models.Subscores, weights models.ScoreWeights) float64 {
	blended := weights.Expertise*sub.Expertise +
		weights.Experience*sub.Experience +
		weights.Rating*sub.Rating
	if math.IsNaN(blended) {
		return scoreFloor
	}
	return math.Min(math.Max(blended, scoreFloor), scoreCeiling)
}

// Reason explains a score in words for the result card.
func Reason(sub models.Subscores, composite float64) string {
	parts := make([]string, 0, 3)
	if sub.Expertise > 0.7 {
		parts = append(parts, "Strong expertise alignment")
	}
	if sub.Experience > 0.8 {
		parts = append(parts, "Excellent experience match")
	}
	if sub.Rating > 0.9 {
		parts = append(parts, "Outstanding client ratings")
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%d%% overall compatibility", int(math.Round(composite*100)))
	}
	return strings.Join(parts, ", ")
}
