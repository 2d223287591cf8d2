package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"codeclash/internal/common"
	"codeclash/internal/domain/model"
)

type ContestRepository interface {
	Create(ctx context.Context, contest *model.Contest) error
	FindByID(ctx context.Context, id string) (*model.Contest, error)
	List(ctx context.Context) ([]model.Contest, error)
	Update(ctx context.Context, contest *model.Contest) error
	TogglePause(ctx context.Context, id string) (*model.Contest, error)
	Delete(ctx context.Context, id string) error
}

type pgContestRepository struct {
	db *sql.DB
}

func NewPgContestRepository(db *sql.DB) ContestRepository {
	return &pgContestRepository{db: db}
}

const contestColumns = `id, title, start_time, end_time, problem_ids, type, paused, created_at, updated_at`

func (r *pgContestRepository) Create(ctx context.Context, c *model.Contest) error {
	problemIDs, err := json.Marshal(c.ProblemIDs)
	if err != nil {
		return fmt.Errorf("pgContestRepository.Create marshal problem ids: %w", err)
	}
	query := `INSERT INTO contests (id, title, start_time, end_time, problem_ids, type)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = r.db.ExecContext(ctx, query, c.ID, c.Title, c.StartTime, c.EndTime, problemIDs, c.Type)
	if err != nil {
		return fmt.Errorf("pgContestRepository.Create: %w", err)
	}
	return nil
}

func scanContest(scanner interface {
	Scan(dest ...interface{}) error
}) (*model.Contest, error) {
	c := &model.Contest{}
	var problemIDs []byte
	err := scanner.Scan(
		&c.ID, &c.Title, &c.StartTime, &c.EndTime, &problemIDs,
		&c.Type, &c.Paused, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(problemIDs, &c.ProblemIDs); err != nil {
		return nil, fmt.Errorf("unmarshal problem ids: %w", err)
	}
	return c, nil
}

func (r *pgContestRepository) FindByID(ctx context.Context, id string) (*model.Contest, error) {
	query := `SELECT ` + contestColumns + ` FROM contests WHERE id = $1`
	c, err := scanContest(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgContestRepository.FindByID: %w", err)
	}
	return c, nil
}

func (r *pgContestRepository) List(ctx context.Context) ([]model.Contest, error) {
	query := `SELECT ` + contestColumns + ` FROM contests ORDER BY start_time ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgContestRepository.List query: %w", err)
	}
	defer rows.Close()

	contests := []model.Contest{}
	for rows.Next() {
		c, err := scanContest(rows)
		if err != nil {
			return nil, fmt.Errorf("pgContestRepository.List scan: %w", err)
		}
		contests = append(contests, *c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgContestRepository.List rows.Err: %w", err)
	}
	return contests, nil
}

func (r *pgContestRepository) Update(ctx context.Context, c *model.Contest) error {
	problemIDs, err := json.Marshal(c.ProblemIDs)
	if err != nil {
		return fmt.Errorf("pgContestRepository.Update marshal problem ids: %w", err)
	}
	query := `UPDATE contests SET title = $1, start_time = $2, end_time = $3, problem_ids = $4,
	          type = $5, updated_at = CURRENT_TIMESTAMP WHERE id = $6`
	res, err := r.db.ExecContext(ctx, query, c.Title, c.StartTime, c.EndTime, problemIDs, c.Type, c.ID)
	if err != nil {
		return fmt.Errorf("pgContestRepository.Update: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgContestRepository.Update rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgContestRepository) TogglePause(ctx context.Context, id string) (*model.Contest, error) {
	query := `UPDATE contests SET paused = NOT paused, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $1 RETURNING ` + contestColumns
	c, err := scanContest(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgContestRepository.TogglePause: %w", err)
	}
	return c, nil
}

func (r *pgContestRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgContestRepository.Delete: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgContestRepository.Delete rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
