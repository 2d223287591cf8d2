package service

import (
	"context"
	"fmt"

	"codeclash/internal/common"
	"codeclash/internal/domain/model"
	"codeclash/internal/domain/repository"

	"github.com/google/uuid"
)

type ParticipantService struct {
	participantRepo repository.ParticipantRepository
	contestRepo     repository.ContestRepository
}

func NewParticipantService(participantRepo repository.ParticipantRepository, contestRepo repository.ContestRepository) *ParticipantService {
	return &ParticipantService{participantRepo: participantRepo, contestRepo: contestRepo}
}

type JoinContestRequest struct {
	ContestID string `json:"contestId" validate:"required"`
}

// JoinContest registers the caller for a contest. Duplicate joins surface as
// a conflict from the uniqueness constraint.
func (s *ParticipantService) JoinContest(ctx context.Context, userID, userName, userEmail string, req JoinContestRequest) (*model.ContestParticipant, error) {
	if err := common.ValidateInput(req); err != nil {
		return nil, err
	}

	contest, err := s.contestRepo.FindByID(ctx, req.ContestID)
	if err != nil {
		return nil, err
	}
	if contest.Paused {
		return nil, fmt.Errorf("contest is paused: %w", common.ErrPreconditionFailed)
	}

	participant := &model.ContestParticipant{
		ID:        uuid.NewString(),
		ContestID: contest.ID,
		UserID:    userID,
		UserName:  userName,
		UserEmail: userEmail,
		Type:      contest.Type,
	}
	if err := s.participantRepo.Create(ctx, participant); err != nil {
		return nil, err
	}
	return participant, nil
}

func (s *ParticipantService) ListByContest(ctx context.Context, contestID string) ([]model.ContestParticipant, error) {
	return s.participantRepo.ListByContest(ctx, contestID)
}

func (s *ParticipantService) Counts(ctx context.Context, contestIDs []string) (map[string]int, error) {
	return s.participantRepo.CountsByContest(ctx, contestIDs)
}
