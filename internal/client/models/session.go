// Package models defines the client-side data types of FileVault: the
// session, stored file records, upload progress and the repository
// mutation contract.
package models

import "time"

// Session is the authenticated context of the current user. At most one is
// held per client process.
type Session struct {
	ID        string
	Token     string
	UserID    string
	Name      string
	Email     string
	ExpiresAt time.Time
}

// Identity is a registered user account.
type Identity struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}
