package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/peptok/CoachMarketBack/internal/models"
)

const coachColumns = `id, name, expertise, experience, rating, hourly_rate, currency,
	availability, bio, created_at, updated_at`

type CoachListFilter struct {
	Expertise    string
	Availability string
	MinRating    float64
	MaxRate      float64
	Offset       int
	Limit        int
}

type CoachRepository struct {
	db DBTX
}

func NewCoachRepository(db DBTX) *CoachRepository {
	return &CoachRepository{db: db}
}

// ListAll returns the full roster considered by the matcher.
func (r *CoachRepository) ListAll(ctx context.Context) ([]models.CoachRecord, error) {
	rows, err := r.db.Query(ctx, `SELECT `+coachColumns+` FROM coaches ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return collectCoaches(rows)
}

func (r *CoachRepository) GetByID(ctx context.Context, id string) (*models.CoachRecord, error) {
	row := r.db.QueryRow(ctx, `SELECT `+coachColumns+` FROM coaches WHERE id = $1`, id)
	coach, err := scanCoach(row)
	if err != nil {
		return nil, err
	}
	return &coach, nil
}

func (r *CoachRepository) GetByIDs(ctx context.Context, ids []string) (map[string]models.CoachRecord, error) {
	coaches := make(map[string]models.CoachRecord, len(ids))
	if len(ids) == 0 {
		return coaches, nil
	}

	rows, err := r.db.Query(ctx, `SELECT `+coachColumns+` FROM coaches WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	list, err := collectCoaches(rows)
	if err != nil {
		return nil, err
	}
	for _, coach := range list {
		coaches[coach.ID] = coach
	}
	return coaches, nil
}

func (r *CoachRepository) List(ctx context.Context, filter CoachListFilter) ([]models.CoachRecord, int, error) {
	where, args := buildCoachFilter(filter)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM coaches`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(
		`SELECT %s FROM coaches%s ORDER BY rating DESC, id ASC LIMIT $%d OFFSET $%d`,
		coachColumns, where, len(args)-1, len(args),
	)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	coaches, err := collectCoaches(rows)
	if err != nil {
		return nil, 0, err
	}
	return coaches, total, nil
}

func (r *CoachRepository) Count(ctx context.Context) (int, error) {
	var total int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM coaches`).Scan(&total)
	return total, err
}

func buildCoachFilter(filter CoachListFilter) (string, []any) {
	clauses := make([]string, 0, 4)
	args := make([]any, 0, 6)

	if filter.Expertise != "" {
		args = append(args, "%"+strings.ToLower(filter.Expertise)+"%")
		clauses = append(clauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM unnest(expertise) AS tag WHERE LOWER(tag) LIKE $%d)", len(args)))
	}
	if filter.Availability != "" {
		args = append(args, filter.Availability)
		clauses = append(clauses, fmt.Sprintf("availability = $%d", len(args)))
	}
	if filter.MinRating > 0 {
		args = append(args, filter.MinRating)
		clauses = append(clauses, fmt.Sprintf("rating >= $%d", len(args)))
	}
	if filter.MaxRate > 0 {
		args = append(args, filter.MaxRate)
		clauses = append(clauses, fmt.Sprintf("hourly_rate <= $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanCoach(row pgx.Row) (models.CoachRecord, error) {
	var coach models.CoachRecord
	err := row.Scan(
		&coach.ID,
		&coach.Name,
		&coach.Expertise,
		&coach.Experience,
		&coach.Rating,
		&coach.HourlyRate,
		&coach.Currency,
		&coach.Availability,
		&coach.Bio,
		&coach.CreatedAt,
		&coach.UpdatedAt,
	)
	return coach, err
}

func collectCoaches(rows pgx.Rows) ([]models.CoachRecord, error) {
	defer rows.Close()

	coaches := make([]models.CoachRecord, 0)
	for rows.Next() {
		coach, err := scanCoach(rows)
		if err != nil {
			return nil, err
		}
		coaches = append(coaches, coach)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return coaches, nil
}
