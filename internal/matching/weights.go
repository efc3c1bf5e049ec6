package matching

import (
	"math"

	"github.com/peptok/CoachMarketBack/internal/models"
)

const (
	// AlgorithmVersion is reported alongside matching statistics.
	AlgorithmVersion = "1.0.0"

	expertiseFallback  = 0.3
	experienceFallback = 0.5
	scoreFloor         = 0.3
	scoreCeiling       = 1.0
	maxRating          = 5.0
)

// DefaultWeights returns the fixed 50/30/20 blend of expertise, experience
// and rating.
func DefaultWeights() models.ScoreWeights {
	return models.ScoreWeights{
		Expertise:  0.5,
		Experience: 0.3,
		Rating:     0.2,
	}
}

// NormalizeWeights scales w so its components sum to 1. Negative,
// non-finite or all-zero weights are rejected and DefaultWeights is
// returned with ok=false.
func NormalizeWeights(w models.ScoreWeights) (models.ScoreWeights, bool) {
	parts := []float64{w.Expertise, w.Experience, w.Rating}
	total := 0.0
	for _, p := range parts {
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
			return DefaultWeights(), false
		}
		total += p
	}
	if total <= 0 || math.IsInf(total, 0) {
		return DefaultWeights(), false
	}
	return models.ScoreWeights{
		Expertise:  w.Expertise / total,
		Experience: w.Experience / total,
		Rating:     w.Rating / total,
	}, true
}

func resolveWeights(override *models.ScoreWeights, base models.ScoreWeights) models.ScoreWeights {
	if override == nil {
		return base
	}
	w, ok := NormalizeWeights(*override)
	if !ok {
		return base
	}
	return w
}
