package client

import (
	"context"

	"github.com/dmitrijs2005/filevault/internal/client/models"
)

// IdentityService verifies credentials and manages sessions.
type IdentityService interface {
	// GetCurrentSession returns ErrUnauthenticated when token is no longer valid.
	GetCurrentSession(ctx context.Context, token string) (*models.Session, error)
	// CreateSession returns ErrInvalidCredentials on a wrong email or password.
	CreateSession(ctx context.Context, email, password string) (*models.Session, error)
	// CreateIdentity returns ErrAlreadyExists when the email is taken.
	CreateIdentity(ctx context.Context, uniqueID, email, password, name string) (*models.Identity, error)
	DestroySession(ctx context.Context, token string) error
}

// ObjectStorage stores file bytes and metadata in named containers.
type ObjectStorage interface {
	List(ctx context.Context, token, containerID string) ([]models.FileRecord, error)
	// Create streams file into containerID, calling onProgress with each
	// snapshot of the transfer.
	Create(ctx context.Context, token, containerID, fileID string, file *models.LocalFile, onProgress func(models.Progress)) (*models.FileRecord, error)
	// Delete returns ErrNotFound when id does not exist.
	Delete(ctx context.Context, token, containerID, id string) error
	// Get needs no session.
	Get(ctx context.Context, containerID, id string) (*models.FileRecord, error)
	DownloadURL(containerID, id string) string
	PreviewURL(containerID, id string, width, height int) string
}
