package service

import (
	"context"
	"errors"
	"testing"

	"codeclash/internal/common"
	"codeclash/internal/domain/model"
)

type fakeSubmissionRepo struct {
	submissions        []model.Submission
	contestSubmissions []model.ContestSubmission
	profile            *model.UserProfile
	leaderboard        []model.LeaderboardEntry
	lastLimit          int
}

func (f *fakeSubmissionRepo) Create(_ context.Context, s *model.Submission) error {
	f.submissions = append(f.submissions, *s)
	return nil
}

func (f *fakeSubmissionRepo) ListByEmail(_ context.Context, email string) ([]model.Submission, error) {
	out := []model.Submission{}
	for _, s := range f.submissions {
		if s.UserEmail == email {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSubmissionRepo) CreateContestSubmission(_ context.Context, s *model.ContestSubmission) error {
	f.contestSubmissions = append(f.contestSubmissions, *s)
	return nil
}

func (f *fakeSubmissionRepo) ContestLeaderboard(_ context.Context, _ string) ([]model.ContestLeaderboardEntry, error) {
	return nil, nil
}

func (f *fakeSubmissionRepo) ProfileAggregate(_ context.Context, _ string) (*model.UserProfile, error) {
	if f.profile == nil {
		return &model.UserProfile{}, nil
	}
	return f.profile, nil
}

func (f *fakeSubmissionRepo) GlobalLeaderboard(_ context.Context, limit int) ([]model.LeaderboardEntry, error) {
	f.lastLimit = limit
	if limit > 0 && limit < len(f.leaderboard) {
		return f.leaderboard[:limit], nil
	}
	return f.leaderboard, nil
}

func (f *fakeSubmissionRepo) DashboardAggregate(_ context.Context, email string) (*model.UserDashboard, error) {
	return &model.UserDashboard{UserEmail: email}, nil
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want model.SubmissionStatus
	}{
		{"Success", model.SubmissionSuccess},
		{"Accepted", model.SubmissionSuccess},
		{"Failure", model.SubmissionFailure},
		{"Wrong Answer", model.SubmissionFailure},
		{"", model.SubmissionFailure},
	}
	for _, tt := range tests {
		if got := normalizeStatus(tt.raw); got != tt.want {
			t.Errorf("normalizeStatus(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestCreateSubmissionNormalizesAndKeepsPoint(t *testing.T) {
	repo := &fakeSubmissionRepo{}
	svc := NewSubmissionService(repo)
	lang := "python"

	sub, err := svc.CreateSubmission(context.Background(), "a@x.com", "Alice", CreateSubmissionRequest{
		ProblemTitle:      "Two Sum",
		ProblemDifficulty: "Easy",
		ProblemCategory:   "arrays",
		Language:          &lang,
		Status:            "Accepted",
		Point:             -5,
	})
	if err != nil {
		t.Fatalf("CreateSubmission: %v", err)
	}
	if sub.Status != model.SubmissionSuccess {
		t.Errorf("status = %q, want Success", sub.Status)
	}
	if sub.ProblemDifficulty != model.DifficultyEasy {
		t.Errorf("difficulty = %q, want %q", sub.ProblemDifficulty, model.DifficultyEasy)
	}
	// Points pass through untouched, sign included.
	if sub.Point != -5 {
		t.Errorf("point = %d, want -5", sub.Point)
	}
	if len(repo.submissions) != 1 {
		t.Fatalf("expected one stored submission, got %d", len(repo.submissions))
	}
	if sub.SubmittedAt.IsZero() {
		t.Error("SubmittedAt should be stamped at record time")
	}
}

func TestCreateSubmissionValidatesInput(t *testing.T) {
	svc := NewSubmissionService(&fakeSubmissionRepo{})

	_, err := svc.CreateSubmission(context.Background(), "a@x.com", "Alice", CreateSubmissionRequest{
		ProblemTitle: "Two Sum",
		// difficulty and category missing
		Status: "Success",
	})
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCreateContestSubmissionRecordsVerdict(t *testing.T) {
	repo := &fakeSubmissionRepo{}
	svc := NewSubmissionService(repo)

	sub, err := svc.CreateContestSubmission(context.Background(), "a@x.com", "Alice", CreateContestSubmissionRequest{
		ContestID: "c1",
		ProblemID: "p1",
		Code:      "print(1)",
		Status:    "Runtime Error",
		Point:     0,
	})
	if err != nil {
		t.Fatalf("CreateContestSubmission: %v", err)
	}
	if sub.Status != model.SubmissionFailure {
		t.Errorf("status = %q, want Failure", sub.Status)
	}
	if len(repo.contestSubmissions) != 1 {
		t.Fatalf("expected one stored contest submission, got %d", len(repo.contestSubmissions))
	}
}
