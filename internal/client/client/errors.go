package client

import "errors"

var (
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnavailable        = errors.New("server unavailable")
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	// ErrRejected wraps a request the server refused as a whole, such as an
	// upload over the size limit. The server's message follows the colon.
	ErrRejected = errors.New("rejected")
	// ErrNoContent is returned by Create for a file without a content reader.
	ErrNoContent = errors.New("file has no content")
)
