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

type TeamRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, team *model.Team) error
	InsertMember(ctx context.Context, tx *sql.Tx, teamID string, memberID string, m model.TeamMember) error
	FindByCode(ctx context.Context, code string) (*model.Team, error)
	FindByCodeForUpdate(ctx context.Context, tx *sql.Tx, code string) (*model.Team, error)
	FindByID(ctx context.Context, id string) (*model.Team, error)
	FindMostRecentByUserAndContest(ctx context.Context, userID, contestID string) (*model.Team, error)
	List(ctx context.Context) ([]model.Team, error)
	SetMemberReady(ctx context.Context, tx *sql.Tx, teamID, userID string, ready bool) error
	RecomputeStatus(ctx context.Context, tx *sql.Tx, teamID string) error
	ResetToWaiting(ctx context.Context, tx *sql.Tx, teamID string) error
	MarkStarted(ctx context.Context, tx *sql.Tx, teamID string) error
	SetStatus(ctx context.Context, id string, status model.TeamStatus) error
	Delete(ctx context.Context, id string) error
	StatsSummary(ctx context.Context) (*model.TeamStatsSummary, error)
}

type pgTeamRepository struct {
	db *sql.DB
}

func NewPgTeamRepository(db *sql.DB) TeamRepository {
	return &pgTeamRepository{db: db}
}

// querier lets a method run against either the pool or an open transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (r *pgTeamRepository) q(tx *sql.Tx) querier {
	if tx != nil {
		return tx
	}
	return r.db
}

const teamColumns = `id, name, contest_id, code, created_by, status, max_size, ready_at, created_at, updated_at`

func (r *pgTeamRepository) Insert(ctx context.Context, tx *sql.Tx, t *model.Team) error {
	query := `INSERT INTO teams (id, name, contest_id, code, created_by, status, max_size)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q(tx).ExecContext(ctx, query,
		t.ID, t.Name, t.ContestID, t.Code, t.CreatedBy, t.Status, t.MaxSize)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("team code already taken: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgTeamRepository.Insert: %w", err)
	}
	return nil
}

func (r *pgTeamRepository) InsertMember(ctx context.Context, tx *sql.Tx, teamID string, memberID string, m model.TeamMember) error {
	query := `INSERT INTO team_members (id, team_id, user_id, user_name, user_image, role, ready)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q(tx).ExecContext(ctx, query,
		memberID, teamID, m.UserID, m.UserName, m.UserImage, m.Role, m.Ready)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("already in this team: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgTeamRepository.InsertMember: %w", err)
	}
	return nil
}

func (r *pgTeamRepository) scanTeam(ctx context.Context, tx *sql.Tx, row *sql.Row, op string) (*model.Team, error) {
	t := &model.Team{}
	err := row.Scan(
		&t.ID, &t.Name, &t.ContestID, &t.Code, &t.CreatedBy, &t.Status,
		&t.MaxSize, &t.ReadyAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgTeamRepository.%s: %w", op, err)
	}
	if err := r.loadMembers(ctx, tx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *pgTeamRepository) loadMembers(ctx context.Context, tx *sql.Tx, t *model.Team) error {
	query := `SELECT user_id, user_name, user_image, role, ready, joined_at
	          FROM team_members WHERE team_id = $1 ORDER BY joined_at ASC`
	rows, err := r.q(tx).QueryContext(ctx, query, t.ID)
	if err != nil {
		return fmt.Errorf("pgTeamRepository.loadMembers query: %w", err)
	}
	defer rows.Close()

	t.Members = []model.TeamMember{}
	for rows.Next() {
		var m model.TeamMember
		if err := rows.Scan(&m.UserID, &m.UserName, &m.UserImage, &m.Role, &m.Ready, &m.JoinedAt); err != nil {
			return fmt.Errorf("pgTeamRepository.loadMembers scan: %w", err)
		}
		t.Members = append(t.Members, m)
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("pgTeamRepository.loadMembers rows.Err: %w", err)
	}
	return nil
}

func (r *pgTeamRepository) FindByCode(ctx context.Context, code string) (*model.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE code = $1`
	return r.scanTeam(ctx, nil, r.db.QueryRowContext(ctx, query, code), "FindByCode")
}

// FindByCodeForUpdate locks the team row for the duration of the
// transaction so member mutations and status recomputation are serialized.
func (r *pgTeamRepository) FindByCodeForUpdate(ctx context.Context, tx *sql.Tx, code string) (*model.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE code = $1 FOR UPDATE`
	return r.scanTeam(ctx, tx, tx.QueryRowContext(ctx, query, code), "FindByCodeForUpdate")
}

func (r *pgTeamRepository) FindByID(ctx context.Context, id string) (*model.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`
	return r.scanTeam(ctx, nil, r.db.QueryRowContext(ctx, query, id), "FindByID")
}

// FindMostRecentByUserAndContest returns the newest team in the contest that
// the user belongs to. Last-write-wins read semantics when a user is in
// several teams.
func (r *pgTeamRepository) FindMostRecentByUserAndContest(ctx context.Context, userID, contestID string) (*model.Team, error) {
	query := `SELECT ` + prefixedTeamColumns("t") + `
	          FROM teams t
	          JOIN team_members tm ON tm.team_id = t.id
	          WHERE tm.user_id = $1 AND t.contest_id = $2
	          ORDER BY t.created_at DESC
	          LIMIT 1`
	return r.scanTeam(ctx, nil, r.db.QueryRowContext(ctx, query, userID, contestID), "FindMostRecentByUserAndContest")
}

func prefixedTeamColumns(alias string) string {
	return alias + `.id, ` + alias + `.name, ` + alias + `.contest_id, ` + alias + `.code, ` +
		alias + `.created_by, ` + alias + `.status, ` + alias + `.max_size, ` +
		alias + `.ready_at, ` + alias + `.created_at, ` + alias + `.updated_at`
}

func (r *pgTeamRepository) List(ctx context.Context) ([]model.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgTeamRepository.List query: %w", err)
	}
	defer rows.Close()

	teams := []model.Team{}
	for rows.Next() {
		var t model.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.ContestID, &t.Code, &t.CreatedBy,
			&t.Status, &t.MaxSize, &t.ReadyAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgTeamRepository.List scan: %w", err)
		}
		teams = append(teams, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgTeamRepository.List rows.Err: %w", err)
	}
	for i := range teams {
		if err := r.loadMembers(ctx, nil, &teams[i]); err != nil {
			return nil, err
		}
	}
	return teams, nil
}

// SetMemberReady flips one member's ready flag. An unknown member is a
// NotFound error, not a silent no-op.
func (r *pgTeamRepository) SetMemberReady(ctx context.Context, tx *sql.Tx, teamID, userID string, ready bool) error {
	query := `UPDATE team_members SET ready = $1 WHERE team_id = $2 AND user_id = $3`
	res, err := r.q(tx).ExecContext(ctx, query, ready, teamID, userID)
	if err != nil {
		return fmt.Errorf("pgTeamRepository.SetMemberReady: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgTeamRepository.SetMemberReady rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no such member in team: %w", common.ErrNotFound)
	}
	return nil
}

// RecomputeStatus derives the team status from the member ready flags in a
// single statement: ready iff every member is ready, else waiting. Teams
// already started or completed are left alone.
func (r *pgTeamRepository) RecomputeStatus(ctx context.Context, tx *sql.Tx, teamID string) error {
	query := `
	    UPDATE teams SET
	        status = CASE WHEN m.all_ready THEN 'ready' ELSE 'waiting' END,
	        ready_at = CASE WHEN m.all_ready THEN CURRENT_TIMESTAMP ELSE NULL END,
	        updated_at = CURRENT_TIMESTAMP
	    FROM (
	        SELECT COALESCE(BOOL_AND(ready), FALSE) AS all_ready
	        FROM team_members WHERE team_id = $1
	    ) m
	    WHERE teams.id = $1 AND teams.status IN ('waiting', 'ready')`
	if _, err := r.q(tx).ExecContext(ctx, query, teamID); err != nil {
		return fmt.Errorf("pgTeamRepository.RecomputeStatus: %w", err)
	}
	return nil
}

// ResetToWaiting is applied on every join: a new member has not signalled
// readiness, so a previously ready team drops back to waiting.
func (r *pgTeamRepository) ResetToWaiting(ctx context.Context, tx *sql.Tx, teamID string) error {
	query := `UPDATE teams SET status = 'waiting', ready_at = NULL, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $1`
	if _, err := r.q(tx).ExecContext(ctx, query, teamID); err != nil {
		return fmt.Errorf("pgTeamRepository.ResetToWaiting: %w", err)
	}
	return nil
}

func (r *pgTeamRepository) MarkStarted(ctx context.Context, tx *sql.Tx, teamID string) error {
	query := `UPDATE teams SET status = 'started', updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	if _, err := r.q(tx).ExecContext(ctx, query, teamID); err != nil {
		return fmt.Errorf("pgTeamRepository.MarkStarted: %w", err)
	}
	return nil
}

// SetStatus is the administrative override. It bypasses the ready/member
// invariants on purpose.
func (r *pgTeamRepository) SetStatus(ctx context.Context, id string, status model.TeamStatus) error {
	query := `UPDATE teams SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("pgTeamRepository.SetStatus: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgTeamRepository.SetStatus rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgTeamRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgTeamRepository.Delete: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgTeamRepository.Delete rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgTeamRepository) StatsSummary(ctx context.Context) (*model.TeamStatsSummary, error) {
	summary := &model.TeamStatsSummary{CountsByStatus: map[model.TeamStatus]int{}}

	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM teams GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("pgTeamRepository.StatsSummary status counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status model.TeamStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("pgTeamRepository.StatsSummary scan: %w", err)
		}
		summary.CountsByStatus[status] = count
		summary.TotalTeams += count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgTeamRepository.StatsSummary rows.Err: %w", err)
	}

	err = r.db.QueryRowContext(ctx, `
	    SELECT COALESCE(AVG(member_count), 0) FROM (
	        SELECT COUNT(*) AS member_count FROM team_members GROUP BY team_id
	    ) sizes`).Scan(&summary.AvgTeamSize)
	if err != nil {
		return nil, fmt.Errorf("pgTeamRepository.StatsSummary avg size: %w", err)
	}
	return summary, nil
}
