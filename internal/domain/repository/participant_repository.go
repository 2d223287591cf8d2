package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"codeclash/internal/common"
	"codeclash/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ParticipantRepository interface {
	Create(ctx context.Context, p *model.ContestParticipant) error
	ListByContest(ctx context.Context, contestID string) ([]model.ContestParticipant, error)
	CountsByContest(ctx context.Context, contestIDs []string) (map[string]int, error)
}

type pgParticipantRepository struct {
	db *sql.DB
}

func NewPgParticipantRepository(db *sql.DB) ParticipantRepository {
	return &pgParticipantRepository{db: db}
}

func (r *pgParticipantRepository) Create(ctx context.Context, p *model.ContestParticipant) error {
	query := `INSERT INTO contest_participants (id, contest_id, user_id, user_name, user_email, type)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.ContestID, p.UserID, p.UserName, p.UserEmail, p.Type)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("user already joined this contest: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgParticipantRepository.Create: %w", err)
	}
	return nil
}

func (r *pgParticipantRepository) ListByContest(ctx context.Context, contestID string) ([]model.ContestParticipant, error) {
	query := `SELECT id, contest_id, user_id, user_name, user_email, type, joined_at
	          FROM contest_participants WHERE contest_id = $1 ORDER BY joined_at ASC`
	rows, err := r.db.QueryContext(ctx, query, contestID)
	if err != nil {
		return nil, fmt.Errorf("pgParticipantRepository.ListByContest query: %w", err)
	}
	defer rows.Close()

	participants := []model.ContestParticipant{}
	for rows.Next() {
		var p model.ContestParticipant
		if err := rows.Scan(&p.ID, &p.ContestID, &p.UserID, &p.UserName, &p.UserEmail, &p.Type, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("pgParticipantRepository.ListByContest scan: %w", err)
		}
		participants = append(participants, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgParticipantRepository.ListByContest rows.Err: %w", err)
	}
	return participants, nil
}

// CountsByContest groups participant rows per contest. An empty id list
// returns counts for all contests.
func (r *pgParticipantRepository) CountsByContest(ctx context.Context, contestIDs []string) (map[string]int, error) {
	query := `SELECT contest_id, COUNT(*) FROM contest_participants`
	args := []interface{}{}
	if len(contestIDs) > 0 {
		placeholders := make([]string, len(contestIDs))
		for i, id := range contestIDs {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
			args = append(args, id)
		}
		query += ` WHERE contest_id IN (` + strings.Join(placeholders, ",") + `)`
	}
	query += ` GROUP BY contest_id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgParticipantRepository.CountsByContest query: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var contestID string
		var count int
		if err := rows.Scan(&contestID, &count); err != nil {
			return nil, fmt.Errorf("pgParticipantRepository.CountsByContest scan: %w", err)
		}
		counts[contestID] = count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgParticipantRepository.CountsByContest rows.Err: %w", err)
	}
	return counts, nil
}
