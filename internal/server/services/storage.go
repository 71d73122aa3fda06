package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/dbx"
	"github.com/dmitrijs2005/filevault/internal/logging"
	"github.com/dmitrijs2005/filevault/internal/server/blob"
	"github.com/dmitrijs2005/filevault/internal/server/config"
	"github.com/dmitrijs2005/filevault/internal/server/models"
	"github.com/dmitrijs2005/filevault/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

const maxNameLength = 255

// NewFile describes an upload before its bytes arrive.
type NewFile struct {
	ContainerID string
	ID          string
	Name        string
	MIMEType    string
}

// StorageService owns file metadata and bytes. Mutations are scoped to the
// owner; reads by container and id are public.
type StorageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blob.Store
	cache       *MetadataCache
	previewer   *Previewer
	logger      logging.Logger

	maxFileSize     int64
	allowed         map[string]struct{}
	presignValidity time.Duration
}

func NewStorageService(db *sql.DB, m repomanager.RepositoryManager, blobs blob.Store, cache *MetadataCache, cfg *config.Config, logger logging.Logger) *StorageService {
	var allowed map[string]struct{}
	if len(cfg.AllowedMIMETypes) > 0 {
		allowed = make(map[string]struct{}, len(cfg.AllowedMIMETypes))
		for _, t := range cfg.AllowedMIMETypes {
			allowed[strings.ToLower(t)] = struct{}{}
		}
	}
	return &StorageService{
		db:              db,
		repomanager:     m,
		blobs:           blobs,
		cache:           cache,
		previewer:       NewPreviewer(8),
		logger:          logger.With("module", "storage"),
		maxFileSize:     cfg.MaxFileSize,
		allowed:         allowed,
		presignValidity: cfg.PresignValidity,
	}
}

func validateID(kind, id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%w: invalid %s id %q", common.ErrValidation, kind, id)
	}
	return nil
}

// List returns the owner's files in containerID, oldest first.
func (s *StorageService) List(ctx context.Context, ownerID, containerID string) ([]*models.File, error) {
	if err := validateID("container", containerID); err != nil {
		return nil, err
	}
	return s.repomanager.Files(s.db).ListByOwner(ctx, ownerID, containerID)
}

// Create stores the bytes read from r and records the file. At most
// maxFileSize bytes are accepted; an empty MIME type is sniffed from the
// content.
func (s *StorageService) Create(ctx context.Context, ownerID string, nf NewFile, r io.Reader) (*models.File, error) {
	if err := validateID("container", nf.ContainerID); err != nil {
		return nil, err
	}
	if common.IsUniqueID(nf.ID) {
		nf.ID = uuid.NewString()
	} else if err := validateID("file", nf.ID); err != nil {
		return nil, err
	}
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(nf.Name), `\`, "/"))
	if name == "" || name == "." || name == "/" || len(name) > maxNameLength {
		return nil, fmt.Errorf("%w: invalid file name", common.ErrValidation)
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxFileSize {
		return nil, fmt.Errorf("%w: file exceeds maximum allowed size of %d bytes", common.ErrFileTooLarge, s.maxFileSize)
	}

	mimeType := normalizeMIME(nf.MIMEType)
	if mimeType == "" {
		mimeType = normalizeMIME(http.DetectContentType(data))
	}
	if s.allowed != nil {
		if _, ok := s.allowed[mimeType]; !ok {
			return nil, fmt.Errorf("%w: %s", common.ErrTypeNotAllowed, mimeType)
		}
	}

	f := &models.File{
		ID:           nf.ID,
		ContainerID:  nf.ContainerID,
		OwnerID:      ownerID,
		Name:         name,
		MIMEType:     mimeType,
		SizeOriginal: int64(len(data)),
		StorageKey:   models.StorageKey(nf.ContainerID, nf.ID),
	}

	// A failed put rolls the row back; a failed commit removes the blob.
	stored := false
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Files(tx).Create(ctx, f); err != nil {
			return err
		}
		if err := s.blobs.Put(ctx, f.StorageKey, bytes.NewReader(data), f.SizeOriginal, f.MIMEType); err != nil {
			return err
		}
		stored = true
		return nil
	})
	if err != nil {
		if stored {
			s.removeBlob(ctx, f.StorageKey)
		}
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: a file with id %s already exists", common.ErrAlreadyExists, f.ID)
		}
		return nil, fmt.Errorf("store file: %w", err)
	}

	s.logger.Info(ctx, "file stored", "container", f.ContainerID, "file_id", f.ID, "size", f.SizeOriginal, "mime", f.MIMEType)
	return f, nil
}

func normalizeMIME(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(t)
	if err != nil {
		return ""
	}
	return mt
}

// Delete removes the owner's file. Files of other owners are reported as
// missing.
func (s *StorageService) Delete(ctx context.Context, ownerID, containerID, id string) error {
	if err := validateID("container", containerID); err != nil {
		return err
	}
	key, err := s.repomanager.Files(s.db).Delete(ctx, ownerID, containerID, id)
	if err != nil {
		return err
	}
	s.cache.Evict(containerID, id)
	s.removeBlob(ctx, key)
	return nil
}

func (s *StorageService) removeBlob(ctx context.Context, key string) {
	if err := s.blobs.Delete(ctx, key); err != nil && !errors.Is(err, common.ErrorNotFound) {
		s.logger.Warn(ctx, "blob cleanup failed", "key", key, "error", err)
	}
}

// Get resolves a file by container and id without an owner check.
func (s *StorageService) Get(ctx context.Context, containerID, id string) (*models.File, error) {
	if f, ok := s.cache.Get(containerID, id); ok {
		return f, nil
	}
	f, err := s.repomanager.Files(s.db).Get(ctx, containerID, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(f)
	return f, nil
}

// DownloadLink returns a presigned URL that downloads the original bytes.
func (s *StorageService) DownloadLink(ctx context.Context, containerID, id string) (string, error) {
	f, err := s.Get(ctx, containerID, id)
	if err != nil {
		return "", err
	}
	return s.blobs.PresignGet(ctx, f.StorageKey, f.Name, s.presignValidity)
}

// Preview renders an image file scaled to fit width×height.
func (s *StorageService) Preview(ctx context.Context, containerID, id string, width, height int) (*Preview, error) {
	f, err := s.Get(ctx, containerID, id)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(f.MIMEType, "image/") {
		return nil, common.ErrNotImage
	}

	rc, err := s.blobs.Open(ctx, f.StorageKey)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return s.previewer.Render(rc, width, height)
}
