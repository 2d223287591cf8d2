package model

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID             string    `json:"id"`
	UserName       string    `json:"userName"`
	UserEmail      string    `json:"userEmail"`
	UserImage      string    `json:"userImage"`
	Role           string    `json:"role"`
	HashedPassword string    `json:"-"` // Not exposed
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
