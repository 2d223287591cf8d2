package service

import (
	"context"
	"fmt"

	"codeclash/internal/common"
	"codeclash/internal/domain/model"
	"codeclash/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type ProblemService struct {
	problemRepo repository.ProblemRepository
}

func NewProblemService(problemRepo repository.ProblemRepository) *ProblemService {
	return &ProblemService{problemRepo: problemRepo}
}

type CreateProblemRequest struct {
	Title       string                  `json:"title" validate:"required,min=3,max=200"`
	Description string                  `json:"description" validate:"required"`
	Category    string                  `json:"category" validate:"required"`
	Difficulty  model.ProblemDifficulty `json:"difficulty" validate:"required,oneof=Easy Medium Hard"`
	Languages   []string                `json:"languages"`
	StarterCode map[string]string       `json:"starterCode"`
	TestCases   []model.TestCase        `json:"testCases"`
}

func (s *ProblemService) CreateProblem(ctx context.Context, req CreateProblemRequest) (*model.Problem, error) {
	if err := common.ValidateInput(req); err != nil {
		return nil, err
	}

	problem := &model.Problem{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Slug:        slug.Make(req.Title),
		Description: req.Description,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		Languages:   req.Languages,
		StarterCode: req.StarterCode,
		TestCases:   req.TestCases,
	}
	if err := s.problemRepo.Create(ctx, problem); err != nil {
		return nil, fmt.Errorf("failed to create problem: %w", err)
	}
	return problem, nil
}

func (s *ProblemService) ListProblems(ctx context.Context, filter repository.ProblemFilter) ([]model.Problem, error) {
	return s.problemRepo.List(ctx, filter)
}

func (s *ProblemService) GetProblem(ctx context.Context, id string) (*model.Problem, error) {
	return s.problemRepo.FindByID(ctx, id)
}

func (s *ProblemService) DeleteProblem(ctx context.Context, id string) error {
	return s.problemRepo.Delete(ctx, id)
}
