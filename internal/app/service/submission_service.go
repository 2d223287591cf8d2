package service

import (
	"context"
	"fmt"
	"time"

	"codeclash/internal/common"
	"codeclash/internal/domain/model"
	"codeclash/internal/domain/repository"

	"github.com/google/uuid"
)

type SubmissionService struct {
	submissionRepo repository.SubmissionRepository
}

func NewSubmissionService(submissionRepo repository.SubmissionRepository) *SubmissionService {
	return &SubmissionService{submissionRepo: submissionRepo}
}

type CreateSubmissionRequest struct {
	ProblemTitle      string                  `json:"problemTitle" validate:"required"`
	ProblemDifficulty model.ProblemDifficulty `json:"problemDifficulty" validate:"required,oneof=Easy Medium Hard"`
	ProblemCategory   string                  `json:"problemCategory" validate:"required"`
	Language          *string                 `json:"language"`
	Status            string                  `json:"status" validate:"required"`
	Point             int                     `json:"point"`
}

type CreateContestSubmissionRequest struct {
	ContestID string `json:"contestId" validate:"required"`
	ProblemID string `json:"problemId" validate:"required"`
	Code      string `json:"code" validate:"required"`
	Status    string `json:"status" validate:"required"`
	Output    string `json:"output"`
	Point     int    `json:"point"`
}

// normalizeStatus folds older verdict spellings into the two-value enum.
// "Accepted" came from a revision that recorded the judge's wording directly.
func normalizeStatus(raw string) model.SubmissionStatus {
	switch raw {
	case "Success", "Accepted":
		return model.SubmissionSuccess
	default:
		return model.SubmissionFailure
	}
}

// CreateSubmission records a practice submission. Submissions are
// write-once; the point value is stored as given, including zero or
// negative values on failures.
func (s *SubmissionService) CreateSubmission(ctx context.Context, userEmail, userName string, req CreateSubmissionRequest) (*model.Submission, error) {
	if err := common.ValidateInput(req); err != nil {
		return nil, err
	}

	submission := &model.Submission{
		ID:                uuid.NewString(),
		UserEmail:         userEmail,
		UserName:          userName,
		ProblemTitle:      req.ProblemTitle,
		ProblemDifficulty: req.ProblemDifficulty,
		ProblemCategory:   req.ProblemCategory,
		Language:          req.Language,
		Status:            normalizeStatus(req.Status),
		Point:             req.Point,
		SubmittedAt:       time.Now(),
	}
	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to record submission: %w", err)
	}
	return submission, nil
}

func (s *SubmissionService) ListByEmail(ctx context.Context, email string) ([]model.Submission, error) {
	return s.submissionRepo.ListByEmail(ctx, email)
}

func (s *SubmissionService) CreateContestSubmission(ctx context.Context, userEmail, userName string, req CreateContestSubmissionRequest) (*model.ContestSubmission, error) {
	if err := common.ValidateInput(req); err != nil {
		return nil, err
	}

	submission := &model.ContestSubmission{
		ID:          uuid.NewString(),
		ContestID:   req.ContestID,
		ProblemID:   req.ProblemID,
		UserEmail:   userEmail,
		UserName:    userName,
		Code:        req.Code,
		Status:      normalizeStatus(req.Status),
		Output:      req.Output,
		Point:       req.Point,
		SubmittedAt: time.Now(),
	}
	if err := s.submissionRepo.CreateContestSubmission(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to record contest submission: %w", err)
	}
	return submission, nil
}

func (s *SubmissionService) ContestLeaderboard(ctx context.Context, contestID string) ([]model.ContestLeaderboardEntry, error) {
	return s.submissionRepo.ContestLeaderboard(ctx, contestID)
}
