package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/peptok/CoachMarketBack/internal/models"
)

type MatchRepository struct {
	db DBTX
}

func NewMatchRepository(db DBTX) *MatchRepository {
	return &MatchRepository{db: db}
}

// SaveRequest stores the request that produced a ranking. Re-running a
// request updates it in place, but only for the company that created it;
// saved is false when the ID is already owned by another company.
func (r *MatchRepository) SaveRequest(ctx context.Context, request models.MatchRequest) (bool, error) {
	var weights []byte
	if request.Weights != nil {
		encoded, err := json.Marshal(request.Weights)
		if err != nil {
			return false, err
		}
		weights = encoded
	}

	query := `
		INSERT INTO coaching_requests (id, company_id, title, expertise, experience, weights, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title,
			expertise = EXCLUDED.expertise,
			experience = EXCLUDED.experience,
			weights = EXCLUDED.weights
		WHERE coaching_requests.company_id = EXCLUDED.company_id
		RETURNING id
	`
	var id string
	err := r.db.QueryRow(ctx, query,
		request.ID,
		request.CompanyID,
		request.Title,
		nonNilStrings(request.Expertise),
		request.Experience,
		weights,
		request.CreatedAt,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ReplaceResults writes the ranked results for a request in one batch.
// Rank is the position in results, starting at 1.
func (r *MatchRepository) ReplaceResults(ctx context.Context, requestID string, results []models.MatchResult) error {
	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM matches WHERE request_id = $1`, requestID)
	for i, result := range results {
		batch.Queue(`
			INSERT INTO matches (id, request_id, coach_id, rank, match_score, expertise_score,
				experience_score, rating_score, reason, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`,
			result.ID,
			requestID,
			result.CoachID,
			i+1,
			result.Score,
			result.Subscores.Expertise,
			result.Subscores.Experience,
			result.Subscores.Rating,
			result.Reason,
			result.CreatedAt,
		)
	}

	br := r.db.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return err
		}
	}
	return br.Close()
}

func (r *MatchRepository) ListByRequest(ctx context.Context, requestID string) ([]models.MatchResult, error) {
	query := `
		SELECT id, request_id, coach_id, match_score, expertise_score, experience_score,
			   rating_score, reason, created_at
		FROM matches
		WHERE request_id = $1
		ORDER BY rank ASC
	`
	rows, err := r.db.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]models.MatchResult, 0)
	for rows.Next() {
		var result models.MatchResult
		if err := rows.Scan(
			&result.ID,
			&result.RequestID,
			&result.CoachID,
			&result.Score,
			&result.Subscores.Expertise,
			&result.Subscores.Experience,
			&result.Subscores.Rating,
			&result.Reason,
			&result.CreatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *MatchRepository) GetResult(ctx context.Context, matchID string) (*models.MatchResult, error) {
	query := `
		SELECT id, request_id, coach_id, match_score, expertise_score, experience_score,
			   rating_score, reason, created_at
		FROM matches
		WHERE id = $1
	`
	var result models.MatchResult
	err := r.db.QueryRow(ctx, query, matchID).Scan(
		&result.ID,
		&result.RequestID,
		&result.CoachID,
		&result.Score,
		&result.Subscores.Expertise,
		&result.Subscores.Experience,
		&result.Subscores.Rating,
		&result.Reason,
		&result.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
