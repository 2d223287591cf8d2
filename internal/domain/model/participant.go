package model

import "time"

// ContestParticipant links a user to a contest. At most one row per
// (contest, user) pair, enforced by a database unique constraint.
type ContestParticipant struct {
	ID        string      `json:"id"`
	ContestID string      `json:"contestId"`
	UserID    string      `json:"userId"`
	UserName  string      `json:"userName"`
	UserEmail string      `json:"userEmail"`
	Type      ContestType `json:"type"`
	JoinedAt  time.Time   `json:"joinedAt"`
}
