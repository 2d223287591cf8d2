package model

import "time"

const (
	ChatSenderUser = "user"
	ChatSenderAI   = "ai"

	// ChatNameMaxLen bounds the display name derived from the first query.
	ChatNameMaxLen = 30
)

type ChatMessage struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type Chat struct {
	ID           string        `json:"id"`
	UserEmail    string        `json:"userEmail"`
	Name         string        `json:"name"`
	Messages     []ChatMessage `json:"messages"`
	MessageCount int           `json:"messageCount"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// ChatSummary is the history listing view without message bodies.
type ChatSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MessageCount int       `json:"messageCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DeriveChatName truncates the first query to ChatNameMaxLen characters
// with an ellipsis, matching the stored display-name convention.
func DeriveChatName(query string) string {
	runes := []rune(query)
	if len(runes) <= ChatNameMaxLen {
		return query
	}
	return string(runes[:ChatNameMaxLen]) + "..."
}
