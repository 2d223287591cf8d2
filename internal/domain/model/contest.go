package model

import "time"

type ContestType string

const (
	ContestIndividual ContestType = "individual"
	ContestTeam       ContestType = "team"
)

// Contest stores problem ids only; problems are resolved by a second
// catalog query at read time, never embedded by value.
type Contest struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	StartTime  time.Time   `json:"startTime"`
	EndTime    time.Time   `json:"endTime"`
	ProblemIDs []string    `json:"problemIds"`
	Type       ContestType `json:"type"`
	Paused     bool        `json:"paused"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`

	Problems []Problem `json:"problems,omitempty"` // resolved view only
}
