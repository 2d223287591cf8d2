package service

import (
	"context"
	"fmt"

	"codeclash/internal/common"
	"codeclash/internal/domain/model"
	"codeclash/internal/domain/repository"

	"github.com/google/uuid"
)

const defaultReviewPageSize = 10

type ReviewService struct {
	reviewRepo repository.ReviewRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository) *ReviewService {
	return &ReviewService{reviewRepo: reviewRepo}
}

type SubmitReviewRequest struct {
	ProblemID    string `json:"problemId" validate:"required"`
	SubmissionID string `json:"submissionId"`
	Rating       int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment      string `json:"comment" validate:"max=2000"`
	Experience   string `json:"experience" validate:"max=2000"`
	UserPhoto    string `json:"userPhoto"`
}

func (s *ReviewService) SubmitReview(ctx context.Context, userEmail, userName string, req SubmitReviewRequest) (*model.Review, error) {
	if err := common.ValidateInput(req); err != nil {
		return nil, err
	}

	review := &model.Review{
		ID:           uuid.NewString(),
		UserEmail:    userEmail,
		UserName:     userName,
		UserPhoto:    req.UserPhoto,
		ProblemID:    req.ProblemID,
		SubmissionID: req.SubmissionID,
		Rating:       req.Rating,
		Comment:      req.Comment,
		Experience:   req.Experience,
		Status:       model.ReviewPending,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to submit review: %w", err)
	}
	return review, nil
}

type ProblemReviewsResponse struct {
	Reviews []model.Review     `json:"reviews"`
	Total   int                `json:"total"`
	Stats   *model.ReviewStats `json:"stats"`
}

// ProblemReviews lists approved reviews for a problem alongside the rating
// summary. page is 1-based.
func (s *ReviewService) ProblemReviews(ctx context.Context, problemID string, page, pageSize int) (*ProblemReviewsResponse, error) {
	if pageSize <= 0 {
		pageSize = defaultReviewPageSize
	}
	if page <= 0 {
		page = 1
	}

	reviews, total, err := s.reviewRepo.ListByProblem(ctx, problemID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	stats, err := s.reviewRepo.StatsByProblem(ctx, problemID)
	if err != nil {
		return nil, err
	}
	return &ProblemReviewsResponse{Reviews: reviews, Total: total, Stats: stats}, nil
}

func (s *ReviewService) MarkHelpful(ctx context.Context, reviewID string) (*model.Review, error) {
	return s.reviewRepo.IncrementHelpful(ctx, reviewID)
}

type ModerateReviewRequest struct {
	Status model.ReviewStatus `json:"status" validate:"required,oneof=pending approved rejected"`
}

func (s *ReviewService) Moderate(ctx context.Context, reviewID string, req ModerateReviewRequest) error {
	if err := common.ValidateInput(req); err != nil {
		return err
	}
	return s.reviewRepo.UpdateStatus(ctx, reviewID, req.Status)
}
