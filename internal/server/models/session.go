package models

import "time"

// Session is a server-side login. Its ID is embedded in the access token,
// so deleting the row revokes the token.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time

	// Profile of the owner, filled by lookups that join users.
	Email string
	Name  string
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
