package model

import "time"

// LeaderboardEntry aggregates a user's submissions. TotalPoints is the raw
// sum of point values, including zero and negative failure contributions.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserEmail   string `json:"userEmail"`
	UserName    string `json:"userName"`
	TotalPoints int    `json:"totalPoints"`
}

// ContestLeaderboardEntry groups one contest's submissions per user.
type ContestLeaderboardEntry struct {
	UserEmail   string                    `json:"userEmail"`
	UserName    string                    `json:"userName"`
	TotalPoints int                       `json:"totalPoints"`
	Submissions []ContestSubmissionDigest `json:"submissions"`
}

type ContestSubmissionDigest struct {
	ProblemID   string           `json:"problemId"`
	Status      SubmissionStatus `json:"status"`
	Point       int              `json:"point"`
	SubmittedAt time.Time        `json:"submittedAt"`
}

// ActivityBucket is one calendar-date bin of the growth histogram. Date is
// formatted YYYY-MM-DD from the submission's own timestamp.
type ActivityBucket struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// UserProfile is the per-user submission aggregation.
type UserProfile struct {
	UserEmail        string           `json:"userEmail"`
	UserName         string           `json:"userName"`
	TotalPoints      int              `json:"totalPoints"`
	TotalSubmissions int              `json:"totalSubmissions"`
	SuccessCount     int              `json:"successCount"`
	FailureCount     int              `json:"failureCount"`
	Activity         []ActivityBucket `json:"activity"`
}

// UserDashboard is the summary card for a single user.
type UserDashboard struct {
	UserEmail        string `json:"userEmail"`
	SolvedProblems   int    `json:"solvedProblems"` // distinct problems with a Success
	SuccessRate      int    `json:"successRate"`    // rounded percentage
	FavoriteLanguage string `json:"favoriteLanguage"`
	SolvedToday      int    `json:"solvedToday"`
	TotalPoints      int    `json:"totalPoints"`
}

// AdminDashboard is the platform-wide operations summary.
type AdminDashboard struct {
	TotalUsers        int          `json:"totalUsers"`
	TotalProblems     int          `json:"totalProblems"`
	TotalContests     int          `json:"totalContests"`
	TotalTeams        int          `json:"totalTeams"`
	TotalSubmissions  int          `json:"totalSubmissions"`
	SubmissionsToday  int          `json:"submissionsToday"`
	AcceptanceRate    float64      `json:"acceptanceRate"`
	ActiveUsers       int          `json:"activeUsers"`
	TopLanguage       string       `json:"topLanguage"`
	RecentSubmissions []Submission `json:"recentSubmissions"`
}

// GrowthSeries holds per-day counts for the last N days.
type GrowthSeries struct {
	Users       []ActivityBucket `json:"users"`
	Submissions []ActivityBucket `json:"submissions"`
}
