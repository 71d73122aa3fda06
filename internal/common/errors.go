// Package common holds values shared by the FileVault client and server:
// metadata keys, the server-side sentinel errors and a few small helpers.
// Match errors with errors.Is.
package common

import "errors"

var (
	// repository level
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// service level
	ErrorUnauthorized     = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation error")

	// uploads and previews
	ErrFileTooLarge   = errors.New("file too large")
	ErrTypeNotAllowed = errors.New("file type not allowed")
	ErrNotImage       = errors.New("file is not an image")

	// tokens
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
