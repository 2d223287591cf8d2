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

type ContestService struct {
	contestRepo     repository.ContestRepository
	problemRepo     repository.ProblemRepository
	participantRepo repository.ParticipantRepository
}

func NewContestService(
	contestRepo repository.ContestRepository,
	problemRepo repository.ProblemRepository,
	participantRepo repository.ParticipantRepository,
) *ContestService {
	return &ContestService{
		contestRepo:     contestRepo,
		problemRepo:     problemRepo,
		participantRepo: participantRepo,
	}
}

type CreateContestRequest struct {
	Title      string            `json:"title" validate:"required,min=3,max=200"`
	StartTime  time.Time         `json:"startTime" validate:"required"`
	EndTime    time.Time         `json:"endTime" validate:"required"`
	ProblemIDs []string          `json:"problemIds" validate:"required,min=1"`
	Type       model.ContestType `json:"type" validate:"required,oneof=individual team"`
}

type ContestSummary struct {
	model.Contest
	ParticipantCount int `json:"participantCount"`
}

func (s *ContestService) CreateContest(ctx context.Context, req CreateContestRequest) (*model.Contest, error) {
	if err := common.ValidateInput(req); err != nil {
		return nil, err
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, fmt.Errorf("end time must be after start time: %w", common.ErrBadRequest)
	}
	// Reject dangling problem references up front.
	problems, err := s.problemRepo.FindByIDs(ctx, req.ProblemIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve problems: %w", err)
	}
	if len(problems) != len(req.ProblemIDs) {
		return nil, fmt.Errorf("one or more problem ids do not exist: %w", common.ErrBadRequest)
	}

	contest := &model.Contest{
		ID:         uuid.NewString(),
		Title:      req.Title,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		ProblemIDs: req.ProblemIDs,
		Type:       req.Type,
	}
	if err := s.contestRepo.Create(ctx, contest); err != nil {
		return nil, fmt.Errorf("failed to create contest: %w", err)
	}
	return contest, nil
}

// ListContests returns every contest with its participant count attached.
func (s *ContestService) ListContests(ctx context.Context) ([]ContestSummary, error) {
	contests, err := s.contestRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(contests))
	for i, c := range contests {
		ids[i] = c.ID
	}
	counts, err := s.participantRepo.CountsByContest(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count participants: %w", err)
	}

	summaries := make([]ContestSummary, len(contests))
	for i, c := range contests {
		summaries[i] = ContestSummary{Contest: c, ParticipantCount: counts[c.ID]}
	}
	return summaries, nil
}

// GetContest resolves the contest's problem list by a second lookup. Problem
// documents are never embedded in the contest row.
func (s *ContestService) GetContest(ctx context.Context, id string) (*model.Contest, error) {
	contest, err := s.contestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(contest.ProblemIDs) > 0 {
		problems, err := s.problemRepo.FindByIDs(ctx, contest.ProblemIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve contest problems: %w", err)
		}
		contest.Problems = problems
	}
	return contest, nil
}

type UpdateContestRequest struct {
	Title      string            `json:"title" validate:"required,min=3,max=200"`
	StartTime  time.Time         `json:"startTime" validate:"required"`
	EndTime    time.Time         `json:"endTime" validate:"required"`
	ProblemIDs []string          `json:"problemIds" validate:"required,min=1"`
	Type       model.ContestType `json:"type" validate:"required,oneof=individual team"`
}

func (s *ContestService) UpdateContest(ctx context.Context, id string, req UpdateContestRequest) (*model.Contest, error) {
	if err := common.ValidateInput(req); err != nil {
		return nil, err
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, fmt.Errorf("end time must be after start time: %w", common.ErrBadRequest)
	}

	contest, err := s.contestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	contest.Title = req.Title
	contest.StartTime = req.StartTime
	contest.EndTime = req.EndTime
	contest.ProblemIDs = req.ProblemIDs
	contest.Type = req.Type

	if err := s.contestRepo.Update(ctx, contest); err != nil {
		return nil, fmt.Errorf("failed to update contest: %w", err)
	}
	return contest, nil
}

func (s *ContestService) TogglePause(ctx context.Context, id string) (*model.Contest, error) {
	return s.contestRepo.TogglePause(ctx, id)
}

func (s *ContestService) DeleteContest(ctx context.Context, id string) error {
	return s.contestRepo.Delete(ctx, id)
}
