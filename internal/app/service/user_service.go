package service

import (
	"context"
	"errors"
	"fmt"

	"codeclash/internal/common"
	"codeclash/internal/domain/model"
	"codeclash/internal/domain/repository"

	"github.com/google/uuid"
)

// topPerformerCount is the size of the truncated leaderboard variant served
// on the landing page.
const topPerformerCount = 4

type UserService struct {
	userRepo       repository.UserRepository
	submissionRepo repository.SubmissionRepository
}

func NewUserService(userRepo repository.UserRepository, submissionRepo repository.SubmissionRepository) *UserService {
	return &UserService{userRepo: userRepo, submissionRepo: submissionRepo}
}

type EnsureUserRequest struct {
	UserName  string `json:"userName" validate:"required,min=2,max=64"`
	UserEmail string `json:"userEmail" validate:"required,email"`
	UserImage string `json:"userImage"`
}

// EnsureUser registers the caller on first sight and is a no-op for a known
// email. Safe to call on every session start.
func (s *UserService) EnsureUser(ctx context.Context, req EnsureUserRequest) (*model.User, error) {
	if err := common.ValidateInput(req); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindByEmail(ctx, req.UserEmail)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	user := &model.User{
		ID:        uuid.NewString(),
		UserName:  req.UserName,
		UserEmail: req.UserEmail,
		UserImage: req.UserImage,
		Role:      model.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent registration of the same email won the insert.
		if errors.Is(err, common.ErrConflict) {
			return s.userRepo.FindByEmail(ctx, req.UserEmail)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.userRepo.List(ctx)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.userRepo.FindByEmail(ctx, email)
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

func (s *UserService) UpdateRole(ctx context.Context, userID string, req UpdateRoleRequest) error {
	if err := common.ValidateInput(req); err != nil {
		return err
	}
	return s.userRepo.UpdateRole(ctx, userID, req.Role)
}

// Profile aggregates a user's submission history. A user with zero
// submissions has no profile yet.
func (s *UserService) Profile(ctx context.Context, email string) (*model.UserProfile, error) {
	profile, err := s.submissionRepo.ProfileAggregate(ctx, email)
	if err != nil {
		return nil, err
	}
	if profile.TotalSubmissions == 0 {
		return nil, fmt.Errorf("no submissions for user: %w", common.ErrNotFound)
	}
	return profile, nil
}

func (s *UserService) Dashboard(ctx context.Context, email string) (*model.UserDashboard, error) {
	return s.submissionRepo.DashboardAggregate(ctx, email)
}

func (s *UserService) Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	return s.submissionRepo.GlobalLeaderboard(ctx, 0)
}

func (s *UserService) TopPerformers(ctx context.Context) ([]model.LeaderboardEntry, error) {
	return s.submissionRepo.GlobalLeaderboard(ctx, topPerformerCount)
}
