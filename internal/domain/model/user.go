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
	Username       string    `json:"username"`
	HashedPassword string    `json:"-"` // Not exposed
	CFHandle       *string   `json:"cf_handle,omitempty"`
	IsAdmin        bool      `json:"is_admin"`
	CreatedAt      time.Time `json:"created_at"`
}

// Handle returns the linked Codeforces handle or "".
func (u *User) Handle() string {
	if u == nil || u.CFHandle == nil {
		return ""
	}
	return *u.CFHandle
}
