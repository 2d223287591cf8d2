package model

import "time"

type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

type Review struct {
	ID           string       `json:"id"`
	UserEmail    string       `json:"userEmail"`
	UserName     string       `json:"userName"`
	UserPhoto    string       `json:"userPhoto"`
	ProblemID    string       `json:"problemId"`
	SubmissionID string       `json:"submissionId"`
	Rating       int          `json:"rating"` // 1-5 inclusive
	Comment      string       `json:"comment"`
	Experience   string       `json:"experience"`
	Status       ReviewStatus `json:"status"`
	HelpfulVotes int          `json:"helpfulVotes"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

type ReviewStats struct {
	AverageRating      float64     `json:"averageRating"`
	TotalRatings       int         `json:"totalRatings"`
	RatingDistribution map[int]int `json:"ratingDistribution"`
}
