// Package models defines server-side records persisted in PostgreSQL.
package models

import "time"

// User is a registered identity. PasswordHash is a bcrypt hash.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash []byte
	CreatedAt    time.Time
}
