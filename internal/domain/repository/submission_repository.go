package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"codeclash/internal/domain/model"
)

type SubmissionRepository interface {
	Create(ctx context.Context, s *model.Submission) error
	ListByEmail(ctx context.Context, email string) ([]model.Submission, error)
	CreateContestSubmission(ctx context.Context, s *model.ContestSubmission) error
	ContestLeaderboard(ctx context.Context, contestID string) ([]model.ContestLeaderboardEntry, error)
	ProfileAggregate(ctx context.Context, email string) (*model.UserProfile, error)
	GlobalLeaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
	DashboardAggregate(ctx context.Context, email string) (*model.UserDashboard, error)
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

func (r *pgSubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	query := `INSERT INTO submissions
	          (id, user_email, user_name, problem_title, problem_difficulty, problem_category, language, status, point, submitted_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.UserEmail, s.UserName, s.ProblemTitle, s.ProblemDifficulty,
		s.ProblemCategory, s.Language, s.Status, s.Point, s.SubmittedAt)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.Create: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) ListByEmail(ctx context.Context, email string) ([]model.Submission, error) {
	query := `SELECT id, user_email, user_name, problem_title, problem_difficulty, problem_category,
	                 language, status, point, submitted_at
	          FROM submissions WHERE user_email = $1 ORDER BY submitted_at DESC`
	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListByEmail query: %w", err)
	}
	defer rows.Close()

	submissions := []model.Submission{}
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(&s.ID, &s.UserEmail, &s.UserName, &s.ProblemTitle, &s.ProblemDifficulty,
			&s.ProblemCategory, &s.Language, &s.Status, &s.Point, &s.SubmittedAt); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ListByEmail scan: %w", err)
		}
		submissions = append(submissions, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListByEmail rows.Err: %w", err)
	}
	return submissions, nil
}

func (r *pgSubmissionRepository) CreateContestSubmission(ctx context.Context, s *model.ContestSubmission) error {
	query := `INSERT INTO contest_submissions
	          (id, contest_id, problem_id, user_email, user_name, code, status, output, point, submitted_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.ContestID, s.ProblemID, s.UserEmail, s.UserName,
		s.Code, s.Status, s.Output, s.Point, s.SubmittedAt)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.CreateContestSubmission: %w", err)
	}
	return nil
}

// ContestLeaderboard groups one contest's submissions per user, summing the
// point field as-is. Ties break on earliest first submission, then email.
func (r *pgSubmissionRepository) ContestLeaderboard(ctx context.Context, contestID string) ([]model.ContestLeaderboardEntry, error) {
	groupQuery := `
	    SELECT user_email, MIN(user_name), SUM(point)
	    FROM contest_submissions
	    WHERE contest_id = $1
	    GROUP BY user_email
	    ORDER BY SUM(point) DESC, MIN(submitted_at) ASC, user_email ASC`
	rows, err := r.db.QueryContext(ctx, groupQuery, contestID)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ContestLeaderboard group: %w", err)
	}
	defer rows.Close()

	entries := []model.ContestLeaderboardEntry{}
	index := map[string]int{}
	for rows.Next() {
		var e model.ContestLeaderboardEntry
		if err := rows.Scan(&e.UserEmail, &e.UserName, &e.TotalPoints); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ContestLeaderboard scan: %w", err)
		}
		e.Submissions = []model.ContestSubmissionDigest{}
		index[e.UserEmail] = len(entries)
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ContestLeaderboard rows.Err: %w", err)
	}

	digestQuery := `
	    SELECT user_email, problem_id, status, point, submitted_at
	    FROM contest_submissions
	    WHERE contest_id = $1
	    ORDER BY submitted_at ASC`
	digestRows, err := r.db.QueryContext(ctx, digestQuery, contestID)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ContestLeaderboard digests: %w", err)
	}
	defer digestRows.Close()
	for digestRows.Next() {
		var email string
		var d model.ContestSubmissionDigest
		if err := digestRows.Scan(&email, &d.ProblemID, &d.Status, &d.Point, &d.SubmittedAt); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ContestLeaderboard digest scan: %w", err)
		}
		if i, ok := index[email]; ok {
			entries[i].Submissions = append(entries[i].Submissions, d)
		}
	}
	if err = digestRows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ContestLeaderboard digest rows.Err: %w", err)
	}
	return entries, nil
}

// ProfileAggregate sums a user's submissions and builds the daily activity
// histogram keyed by the submission's own timestamp, date granularity.
func (r *pgSubmissionRepository) ProfileAggregate(ctx context.Context, email string) (*model.UserProfile, error) {
	profile := &model.UserProfile{UserEmail: email}

	totalsQuery := `
	    SELECT COALESCE(MIN(user_name), ''),
	           COALESCE(SUM(point), 0),
	           COUNT(*),
	           COUNT(*) FILTER (WHERE status = 'Success'),
	           COUNT(*) FILTER (WHERE status = 'Failure')
	    FROM submissions WHERE user_email = $1`
	err := r.db.QueryRowContext(ctx, totalsQuery, email).Scan(
		&profile.UserName, &profile.TotalPoints, &profile.TotalSubmissions,
		&profile.SuccessCount, &profile.FailureCount,
	)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ProfileAggregate totals: %w", err)
	}

	activityQuery := `
	    SELECT TO_CHAR(submitted_at::date, 'YYYY-MM-DD'), COUNT(*)
	    FROM submissions WHERE user_email = $1
	    GROUP BY submitted_at::date
	    ORDER BY submitted_at::date ASC`
	rows, err := r.db.QueryContext(ctx, activityQuery, email)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ProfileAggregate activity: %w", err)
	}
	defer rows.Close()
	profile.Activity = []model.ActivityBucket{}
	for rows.Next() {
		var b model.ActivityBucket
		if err := rows.Scan(&b.Date, &b.Count); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ProfileAggregate scan: %w", err)
		}
		profile.Activity = append(profile.Activity, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ProfileAggregate rows.Err: %w", err)
	}
	return profile, nil
}

// GlobalLeaderboard sums points per user across all submissions, descending,
// with a deterministic tie-break (earliest first submission, then email).
// limit <= 0 returns the full board.
func (r *pgSubmissionRepository) GlobalLeaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	query := `
	    SELECT user_email, MIN(user_name), SUM(point)
	    FROM submissions
	    GROUP BY user_email
	    ORDER BY SUM(point) DESC, MIN(submitted_at) ASC, user_email ASC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.GlobalLeaderboard query: %w", err)
	}
	defer rows.Close()

	entries := []model.LeaderboardEntry{}
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.UserEmail, &e.UserName, &e.TotalPoints); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.GlobalLeaderboard scan: %w", err)
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.GlobalLeaderboard rows.Err: %w", err)
	}
	return entries, nil
}

// DashboardAggregate builds the summary card: distinct solved problems,
// rounded success rate, most frequent language tag, and the solved count in
// the server-local midnight-to-midnight window.
func (r *pgSubmissionRepository) DashboardAggregate(ctx context.Context, email string) (*model.UserDashboard, error) {
	d := &model.UserDashboard{UserEmail: email}

	var total int
	summaryQuery := `
	    SELECT COUNT(*),
	           COUNT(*) FILTER (WHERE status = 'Success'),
	           COUNT(DISTINCT problem_title) FILTER (WHERE status = 'Success'),
	           COALESCE(SUM(point), 0)
	    FROM submissions WHERE user_email = $1`
	var successes int
	err := r.db.QueryRowContext(ctx, summaryQuery, email).Scan(
		&total, &successes, &d.SolvedProblems, &d.TotalPoints)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.DashboardAggregate summary: %w", err)
	}
	if total > 0 {
		d.SuccessRate = int(float64(successes)/float64(total)*100 + 0.5)
	}

	languageQuery := `
	    SELECT language FROM submissions
	    WHERE user_email = $1 AND language IS NOT NULL
	    GROUP BY language ORDER BY COUNT(*) DESC, language ASC LIMIT 1`
	var favorite sql.NullString
	err = r.db.QueryRowContext(ctx, languageQuery, email).Scan(&favorite)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("pgSubmissionRepository.DashboardAggregate language: %w", err)
	}
	if favorite.Valid {
		d.FavoriteLanguage = favorite.String
	} else {
		d.FavoriteLanguage = "N/A"
	}

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayQuery := `
	    SELECT COUNT(DISTINCT problem_title) FROM submissions
	    WHERE user_email = $1 AND status = 'Success'
	      AND submitted_at >= $2 AND submitted_at < $3`
	err = r.db.QueryRowContext(ctx, todayQuery, email, dayStart, dayStart.Add(24*time.Hour)).Scan(&d.SolvedToday)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.DashboardAggregate today: %w", err)
	}
	return d, nil
}
