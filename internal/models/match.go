package models

import "time"

// ScoreWeights blends the three subscores into the composite score.
type ScoreWeights struct {
	Expertise  float64 `json:"expertise"`
	Experience float64 `json:"experience"`
	Rating     float64 `json:"rating"`
}

type MatchRequest struct {
	ID         string        `json:"id"`
	CompanyID  string        `json:"company_id,omitempty"`
	Title      string        `json:"title,omitempty"`
	Expertise  []string      `json:"expertise"`
	Experience string        `json:"experience"`
	Weights    *ScoreWeights `json:"weights,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

type Subscores struct {
	Expertise  float64 `json:"expertise"`
	Experience float64 `json:"experience"`
	Rating     float64 `json:"rating"`
}

type MatchResult struct {
	ID        string    `json:"id,omitempty"`
	RequestID string    `json:"request_id"`
	CoachID   string    `json:"coach_id"`
	Score     float64   `json:"score"`
	Subscores Subscores `json:"subscores"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// MatchWithCoach is what the API hands back: the ranked result plus the
// coach summary the client renders next to it.
type MatchWithCoach struct {
	MatchResult
	Coach *CoachListResponse `json:"coach,omitempty"`
}

type MatchingStats struct {
	AlgorithmVersion    string  `json:"algorithm_version"`
	TotalRequests       int64   `json:"total_requests"`
	TotalMatches        int64   `json:"total_matches"`
	AverageProcessingMS float64 `json:"average_processing_ms"`
	LastProcessingMS    int64   `json:"last_processing_ms"`
}

type MatchResponse struct {
	RequestID        string           `json:"request_id"`
	Matches          []MatchWithCoach `json:"matches"`
	TotalCoaches     int              `json:"total_coaches"`
	ProcessingMS     int64            `json:"processing_time_ms"`
	AlgorithmVersion string           `json:"algorithm_version"`
	Cached           bool             `json:"cached"`
}
