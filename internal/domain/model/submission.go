package model

import "time"

type SubmissionStatus string

// The corpus carried both "Success"/"Failure" and "Accepted"; the
// vocabulary is normalized to the two values below.
const (
	SubmissionSuccess SubmissionStatus = "Success"
	SubmissionFailure SubmissionStatus = "Failure"
)

// Submission is a practice submission. Write-once; points may be zero or
// negative on failure and are summed as-is by the aggregators.
type Submission struct {
	ID                string            `json:"id"`
	UserEmail         string            `json:"userEmail"`
	UserName          string            `json:"userName"`
	ProblemTitle      string            `json:"problemTitle"`
	ProblemDifficulty ProblemDifficulty `json:"problemDifficulty"`
	ProblemCategory   string            `json:"problemCategory"`
	Language          *string           `json:"language,omitempty"`
	Status            SubmissionStatus  `json:"status"`
	Point             int               `json:"point"`
	SubmittedAt       time.Time         `json:"submittedAt"`
}

// ContestSubmission is the contest-scoped flavor, keyed by problem id.
type ContestSubmission struct {
	ID          string           `json:"id"`
	ContestID   string           `json:"contestId"`
	ProblemID   string           `json:"problemId"`
	UserEmail   string           `json:"userEmail"`
	UserName    string           `json:"userName"`
	Code        string           `json:"code"`
	Status      SubmissionStatus `json:"status"`
	Output      string           `json:"output"`
	Point       int              `json:"point"`
	SubmittedAt time.Time        `json:"submittedAt"`
}
