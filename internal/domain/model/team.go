package model

import "time"

type TeamStatus string

const (
	TeamWaiting   TeamStatus = "waiting"
	TeamReady     TeamStatus = "ready"
	TeamStarted   TeamStatus = "started"
	TeamCompleted TeamStatus = "completed"
)

const (
	MemberRoleLeader = "leader"
	MemberRoleMember = "member"
)

// TeamCodeLength and TeamCodeAlphabet define the human-shareable join code.
const (
	TeamCodeLength   = 6
	TeamCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

type Team struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	ContestID string       `json:"contestId"`
	Code      string       `json:"code"`
	CreatedBy string       `json:"createdBy"`
	Status    TeamStatus   `json:"status"`
	MaxSize   *int         `json:"maxSize,omitempty"`
	ReadyAt   *time.Time   `json:"readyAt"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	Members   []TeamMember `json:"members"`
}

type TeamMember struct {
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	UserImage string    `json:"userImage"`
	Role      string    `json:"role"`
	Ready     bool      `json:"ready"`
	JoinedAt  time.Time `json:"joinedAt"`
}

// AllReady reports whether every member has signalled readiness.
// A team with no members is never ready.
func (t *Team) AllReady() bool {
	if len(t.Members) == 0 {
		return false
	}
	for _, m := range t.Members {
		if !m.Ready {
			return false
		}
	}
	return true
}

// HasMember does a linear scan by user id.
func (t *Team) HasMember(userID string) bool {
	for _, m := range t.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

type TeamStatsSummary struct {
	TotalTeams     int                `json:"totalTeams"`
	CountsByStatus map[TeamStatus]int `json:"countsByStatus"`
	AvgTeamSize    float64            `json:"avgTeamSize"`
}
