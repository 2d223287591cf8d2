package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"codeclash/internal/common"
	"codeclash/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ProblemFilter struct {
	Difficulty model.ProblemDifficulty
	Category   string
	Title      string // case-insensitive substring
}

type ProblemRepository interface {
	Create(ctx context.Context, problem *model.Problem) error
	FindByID(ctx context.Context, id string) (*model.Problem, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Problem, error)
	List(ctx context.Context, filter ProblemFilter) ([]model.Problem, error)
	Delete(ctx context.Context, id string) error
}

type pgProblemRepository struct {
	db *sql.DB
}

func NewPgProblemRepository(db *sql.DB) ProblemRepository {
	return &pgProblemRepository{db: db}
}

const problemColumns = `id, title, slug, description, category, difficulty, languages, starter_code, test_cases, created_at, updated_at`

func (r *pgProblemRepository) Create(ctx context.Context, p *model.Problem) error {
	languages, err := json.Marshal(p.Languages)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.Create marshal languages: %w", err)
	}
	starterCode, err := json.Marshal(p.StarterCode)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.Create marshal starter code: %w", err)
	}
	testCases, err := json.Marshal(p.TestCases)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.Create marshal test cases: %w", err)
	}

	query := `INSERT INTO problems (id, title, slug, description, category, difficulty, languages, starter_code, test_cases)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = r.db.ExecContext(ctx, query,
		p.ID, p.Title, p.Slug, p.Description, p.Category, p.Difficulty, languages, starterCode, testCases)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("problem with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgProblemRepository.Create: %w", err)
	}
	return nil
}

func scanProblem(scanner interface {
	Scan(dest ...interface{}) error
}) (*model.Problem, error) {
	p := &model.Problem{}
	var languages, starterCode, testCases []byte
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Description, &p.Category, &p.Difficulty,
		&languages, &starterCode, &testCases, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(languages, &p.Languages); err != nil {
		return nil, fmt.Errorf("unmarshal languages: %w", err)
	}
	if err := json.Unmarshal(starterCode, &p.StarterCode); err != nil {
		return nil, fmt.Errorf("unmarshal starter code: %w", err)
	}
	if err := json.Unmarshal(testCases, &p.TestCases); err != nil {
		return nil, fmt.Errorf("unmarshal test cases: %w", err)
	}
	return p, nil
}

func (r *pgProblemRepository) FindByID(ctx context.Context, id string) (*model.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems WHERE id = $1`
	p, err := scanProblem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProblemRepository.FindByID: %w", err)
	}
	return p, nil
}

func (r *pgProblemRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Problem, error) {
	if len(ids) == 0 {
		return []model.Problem{}, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := `SELECT ` + problemColumns + ` FROM problems WHERE id IN (` +
		strings.Join(placeholders, ",") + `) ORDER BY created_at DESC`
	return r.queryProblems(ctx, query, args...)
}

func (r *pgProblemRepository) List(ctx context.Context, filter ProblemFilter) ([]model.Problem, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + problemColumns + ` FROM problems`)

	var conditions []string
	var args []interface{}
	argID := 1

	if filter.Difficulty != "" {
		conditions = append(conditions, fmt.Sprintf("difficulty = $%d", argID))
		args = append(args, filter.Difficulty)
		argID++
	}
	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argID))
		args = append(args, filter.Category)
		argID++
	}
	if filter.Title != "" {
		conditions = append(conditions, fmt.Sprintf("title ILIKE $%d", argID))
		args = append(args, "%"+filter.Title+"%")
		argID++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC")

	return r.queryProblems(ctx, queryBuilder.String(), args...)
}

func (r *pgProblemRepository) queryProblems(ctx context.Context, query string, args ...interface{}) ([]model.Problem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository query: %w", err)
	}
	defer rows.Close()

	problems := []model.Problem{}
	for rows.Next() {
		p, err := scanProblem(rows)
		if err != nil {
			return nil, fmt.Errorf("pgProblemRepository scan: %w", err)
		}
		problems = append(problems, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProblemRepository rows.Err: %w", err)
	}
	return problems, nil
}

func (r *pgProblemRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM problems WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.Delete: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgProblemRepository.Delete rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
