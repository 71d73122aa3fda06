package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/filevault/internal/client/client"
)

var (
	ErrNoFile                = errors.New("no file selected")
	ErrUploadInProgress      = errors.New("an upload is already in progress")
	ErrTransitionInProgress  = errors.New("a session change is already in progress")
	ErrRegisteredNotLoggedIn = errors.New("account created but sign-in failed")
	ErrRevokeFailed          = errors.New("session could not be revoked on the server")
	ErrInvalidShareURL       = errors.New("invalid share link")

	// ErrFileUnavailable is what anonymous visitors see for any file they
	// cannot read. errors.Is(ErrFileUnavailable, client.ErrNotFound) holds.
	ErrFileUnavailable = fmt.Errorf("file not found or no longer available: %w", client.ErrNotFound)
)
