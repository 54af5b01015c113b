package model

import "time"

// Session is the identity marker established by a successful login.
// A nil *Session reads as "not logged in".
type Session struct {
	ID        string    `json:"-"` // token id, used for revocation
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"is_admin"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) IsLoggedIn() bool {
	return s != nil && s.UserID != ""
}

func (s *Session) IsAdminUser() bool {
	return s.IsLoggedIn() && s.IsAdmin
}

func (s *Session) CurrentUserID() string {
	if !s.IsLoggedIn() {
		return ""
	}
	return s.UserID
}

func (s *Session) CurrentUsername() string {
	if !s.IsLoggedIn() {
		return ""
	}
	return s.Username
}

func (s *Session) Role() string {
	if s.IsAdminUser() {
		return RoleAdmin
	}
	return RoleUser
}
