package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"codeclash/internal/domain/model"
)

type StatsRepository interface {
	AdminDashboard(ctx context.Context) (*model.AdminDashboard, error)
	GrowthSeries(ctx context.Context, days int) (*model.GrowthSeries, error)
}

type pgStatsRepository struct {
	db *sql.DB
}

func NewPgStatsRepository(db *sql.DB) StatsRepository {
	return &pgStatsRepository{db: db}
}

func (r *pgStatsRepository) AdminDashboard(ctx context.Context) (*model.AdminDashboard, error) {
	d := &model.AdminDashboard{}

	countQueries := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM users`, &d.TotalUsers},
		{`SELECT COUNT(*) FROM problems`, &d.TotalProblems},
		{`SELECT COUNT(*) FROM contests`, &d.TotalContests},
		{`SELECT COUNT(*) FROM teams`, &d.TotalTeams},
		{`SELECT COUNT(*) FROM submissions`, &d.TotalSubmissions},
	}
	for _, cq := range countQueries {
		if err := r.db.QueryRowContext(ctx, cq.query).Scan(cq.dest); err != nil {
			return nil, fmt.Errorf("pgStatsRepository.AdminDashboard count: %w", err)
		}
	}

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM submissions WHERE submitted_at >= $1 AND submitted_at < $2`,
		dayStart, dayStart.Add(24*time.Hour)).Scan(&d.SubmissionsToday)
	if err != nil {
		return nil, fmt.Errorf("pgStatsRepository.AdminDashboard today: %w", err)
	}

	var successes int
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FILTER (WHERE status = 'Success') FROM submissions`).Scan(&successes)
	if err != nil {
		return nil, fmt.Errorf("pgStatsRepository.AdminDashboard successes: %w", err)
	}
	if d.TotalSubmissions > 0 {
		d.AcceptanceRate = float64(int(float64(successes)/float64(d.TotalSubmissions)*1000+0.5)) / 10
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT user_email) FROM submissions WHERE submitted_at >= $1`,
		now.Add(-time.Hour)).Scan(&d.ActiveUsers)
	if err != nil {
		return nil, fmt.Errorf("pgStatsRepository.AdminDashboard active users: %w", err)
	}

	var topLanguage sql.NullString
	err = r.db.QueryRowContext(ctx,
		`SELECT language FROM submissions WHERE language IS NOT NULL
		 GROUP BY language ORDER BY COUNT(*) DESC, language ASC LIMIT 1`).Scan(&topLanguage)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("pgStatsRepository.AdminDashboard top language: %w", err)
	}
	if topLanguage.Valid {
		d.TopLanguage = topLanguage.String
	} else {
		d.TopLanguage = "N/A"
	}

	recentQuery := `SELECT id, user_email, user_name, problem_title, problem_difficulty, problem_category,
	                       language, status, point, submitted_at
	                FROM submissions ORDER BY submitted_at DESC LIMIT 5`
	rows, err := r.db.QueryContext(ctx, recentQuery)
	if err != nil {
		return nil, fmt.Errorf("pgStatsRepository.AdminDashboard recent: %w", err)
	}
	defer rows.Close()
	d.RecentSubmissions = []model.Submission{}
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(&s.ID, &s.UserEmail, &s.UserName, &s.ProblemTitle, &s.ProblemDifficulty,
			&s.ProblemCategory, &s.Language, &s.Status, &s.Point, &s.SubmittedAt); err != nil {
			return nil, fmt.Errorf("pgStatsRepository.AdminDashboard recent scan: %w", err)
		}
		d.RecentSubmissions = append(d.RecentSubmissions, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgStatsRepository.AdminDashboard recent rows.Err: %w", err)
	}
	return d, nil
}

// GrowthSeries buckets user signups and submissions by calendar date over
// the trailing window.
func (r *pgStatsRepository) GrowthSeries(ctx context.Context, days int) (*model.GrowthSeries, error) {
	since := time.Now().AddDate(0, 0, -days)
	series := &model.GrowthSeries{}

	users, err := r.bucketByDate(ctx,
		`SELECT TO_CHAR(created_at::date, 'YYYY-MM-DD'), COUNT(*)
		 FROM users WHERE created_at >= $1
		 GROUP BY created_at::date ORDER BY created_at::date ASC`, since)
	if err != nil {
		return nil, err
	}
	series.Users = users

	submissions, err := r.bucketByDate(ctx,
		`SELECT TO_CHAR(submitted_at::date, 'YYYY-MM-DD'), COUNT(*)
		 FROM submissions WHERE submitted_at >= $1
		 GROUP BY submitted_at::date ORDER BY submitted_at::date ASC`, since)
	if err != nil {
		return nil, err
	}
	series.Submissions = submissions
	return series, nil
}

func (r *pgStatsRepository) bucketByDate(ctx context.Context, query string, since time.Time) ([]model.ActivityBucket, error) {
	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("pgStatsRepository.bucketByDate query: %w", err)
	}
	defer rows.Close()

	buckets := []model.ActivityBucket{}
	for rows.Next() {
		var b model.ActivityBucket
		if err := rows.Scan(&b.Date, &b.Count); err != nil {
			return nil, fmt.Errorf("pgStatsRepository.bucketByDate scan: %w", err)
		}
		buckets = append(buckets, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgStatsRepository.bucketByDate rows.Err: %w", err)
	}
	return buckets, nil
}
