package files

import (
	"context"

	"github.com/dmitrijs2005/filevault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, f *models.File) (*models.File, error)
	// ListByOwner returns the owner's files of a container, oldest first.
	ListByOwner(ctx context.Context, ownerID, containerID string) ([]*models.File, error)
	Get(ctx context.Context, containerID, id string) (*models.File, error)
	// Delete removes the owner's file and returns its storage key.
	Delete(ctx context.Context, ownerID, containerID, id string) (string, error)
}
