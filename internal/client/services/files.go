package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/filevault/internal/client/client"
	"github.com/dmitrijs2005/filevault/internal/client/models"
	"github.com/dmitrijs2005/filevault/internal/logging"
)

// FileRepository keeps the user's file listing for one bucket.
type FileRepository struct {
	storage  client.ObjectStorage
	state    *State
	bucketID string
	logger   logging.Logger

	mu      sync.Mutex
	listing models.Listing
	gen     uint64
}

func NewFileRepository(storage client.ObjectStorage, state *State, bucketID string, logger logging.Logger) *FileRepository {
	return &FileRepository{
		storage:  storage,
		state:    state,
		bucketID: bucketID,
		logger:   logger.With("module", "files"),
	}
}

// List fetches the listing. It never fails outright: without a session or
// when the service errors, the returned listing is empty and Failed. The
// service's order is kept as is.
func (r *FileRepository) List(ctx context.Context) models.Listing {
	token, ok := r.state.Token()
	if !ok {
		return r.store(r.nextGen(), models.Listing{Err: client.ErrUnauthenticated})
	}

	gen := r.nextGen()
	files, err := r.storage.List(ctx, token, r.bucketID)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return models.Listing{Err: ctxErr}
	}
	if err != nil {
		r.logger.Warn(ctx, "list files", "bucket", r.bucketID, "error", err)
		return r.store(gen, models.Listing{Err: err})
	}
	if files == nil {
		files = []models.FileRecord{}
	}
	return r.store(gen, models.Listing{Files: files})
}

func (r *FileRepository) nextGen() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	return r.gen
}

// store keeps l unless a newer List has started since gen was taken.
func (r *FileRepository) store(gen uint64, l models.Listing) models.Listing {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen == r.gen {
		r.listing = models.Listing{Files: slices.Clone(l.Files), Err: l.Err}
	}
	return models.Listing{Files: slices.Clone(l.Files), Err: l.Err}
}

// Listing returns the last stored listing.
func (r *FileRepository) Listing() models.Listing {
	r.mu.Lock()
	defer r.mu.Unlock()
	return models.Listing{Files: slices.Clone(r.listing.Files), Err: r.listing.Err}
}

func (r *FileRepository) Files() []models.FileRecord {
	return r.Listing().Files
}

// Reset forgets the listing, e.g. after sign-out.
func (r *FileRepository) Reset() {
	r.mu.Lock()
	r.gen++
	r.listing = models.Listing{}
	r.mu.Unlock()
}

// Remove deletes a file. The caller is expected to have confirmed it. On
// success the record leaves the listing at once; on failure the listing is
// untouched. A file the service does not know yields client.ErrNotFound and
// a Mutation asking for a refetch.
func (r *FileRepository) Remove(ctx context.Context, id string) (models.Mutation, error) {
	mut := models.Mutation{Kind: models.MutationDeleted, FileID: id}

	token, ok := r.state.Token()
	if !ok {
		return mut, client.ErrUnauthenticated
	}

	if err := r.storage.Delete(ctx, token, r.bucketID, id); err != nil {
		if errors.Is(err, client.ErrNotFound) {
			mut.Refetch = true
			return mut, err
		}
		return mut, fmt.Errorf("delete %s: %w", id, err)
	}

	r.mu.Lock()
	r.listing.Files = slices.DeleteFunc(r.listing.Files, func(f models.FileRecord) bool { return f.ID == id })
	r.mu.Unlock()

	r.logger.Info(ctx, "file deleted", "file_id", id)
	mut.Patched = true
	return mut, nil
}
