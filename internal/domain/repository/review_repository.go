package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"codeclash/internal/common"
	"codeclash/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	ListByProblem(ctx context.Context, problemID string, limit, offset int) ([]model.Review, int, error)
	StatsByProblem(ctx context.Context, problemID string) (*model.ReviewStats, error)
	IncrementHelpful(ctx context.Context, id string) (*model.Review, error)
	UpdateStatus(ctx context.Context, id string, status model.ReviewStatus) error
}

type pgReviewRepository struct {
	db *sql.DB
}

func NewPgReviewRepository(db *sql.DB) ReviewRepository {
	return &pgReviewRepository{db: db}
}

const reviewColumns = `id, user_email, user_name, user_photo, problem_id, submission_id,
	rating, comment, experience, status, helpful_votes, created_at, updated_at`

func (r *pgReviewRepository) Create(ctx context.Context, rv *model.Review) error {
	query := `INSERT INTO reviews
	          (id, user_email, user_name, user_photo, problem_id, submission_id, rating, comment, experience, status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query,
		rv.ID, rv.UserEmail, rv.UserName, rv.UserPhoto, rv.ProblemID,
		rv.SubmissionID, rv.Rating, rv.Comment, rv.Experience, rv.Status)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("you have already reviewed this problem: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgReviewRepository.Create: %w", err)
	}
	return nil
}

func (r *pgReviewRepository) ListByProblem(ctx context.Context, problemID string, limit, offset int) ([]model.Review, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM reviews WHERE problem_id = $1 AND status = 'approved'`
	if err := r.db.QueryRowContext(ctx, countQuery, problemID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgReviewRepository.ListByProblem count: %w", err)
	}

	query := `SELECT ` + reviewColumns + `
	          FROM reviews WHERE problem_id = $1 AND status = 'approved'
	          ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, problemID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("pgReviewRepository.ListByProblem query: %w", err)
	}
	defer rows.Close()

	reviews := []model.Review{}
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.UserEmail, &rv.UserName, &rv.UserPhoto, &rv.ProblemID,
			&rv.SubmissionID, &rv.Rating, &rv.Comment, &rv.Experience, &rv.Status,
			&rv.HelpfulVotes, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("pgReviewRepository.ListByProblem scan: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgReviewRepository.ListByProblem rows.Err: %w", err)
	}
	return reviews, total, nil
}

func (r *pgReviewRepository) StatsByProblem(ctx context.Context, problemID string) (*model.ReviewStats, error) {
	stats := &model.ReviewStats{RatingDistribution: map[int]int{}}

	summaryQuery := `SELECT COALESCE(AVG(rating), 0), COUNT(*)
	                 FROM reviews WHERE problem_id = $1 AND status = 'approved'`
	if err := r.db.QueryRowContext(ctx, summaryQuery, problemID).Scan(&stats.AverageRating, &stats.TotalRatings); err != nil {
		return nil, fmt.Errorf("pgReviewRepository.StatsByProblem summary: %w", err)
	}

	distQuery := `SELECT rating, COUNT(*) FROM reviews
	              WHERE problem_id = $1 AND status = 'approved' GROUP BY rating`
	rows, err := r.db.QueryContext(ctx, distQuery, problemID)
	if err != nil {
		return nil, fmt.Errorf("pgReviewRepository.StatsByProblem dist: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, fmt.Errorf("pgReviewRepository.StatsByProblem scan: %w", err)
		}
		stats.RatingDistribution[rating] = count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgReviewRepository.StatsByProblem rows.Err: %w", err)
	}
	return stats, nil
}

func (r *pgReviewRepository) IncrementHelpful(ctx context.Context, id string) (*model.Review, error) {
	query := `UPDATE reviews SET helpful_votes = helpful_votes + 1, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $1 RETURNING ` + reviewColumns
	rv := &model.Review{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rv.ID, &rv.UserEmail, &rv.UserName, &rv.UserPhoto, &rv.ProblemID,
		&rv.SubmissionID, &rv.Rating, &rv.Comment, &rv.Experience, &rv.Status,
		&rv.HelpfulVotes, &rv.CreatedAt, &rv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgReviewRepository.IncrementHelpful: %w", err)
	}
	return rv, nil
}

func (r *pgReviewRepository) UpdateStatus(ctx context.Context, id string, status model.ReviewStatus) error {
	query := `UPDATE reviews SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("pgReviewRepository.UpdateStatus: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgReviewRepository.UpdateStatus rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
