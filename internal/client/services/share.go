package services

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/filevault/internal/client/client"
	"github.com/dmitrijs2005/filevault/internal/client/models"
)

const sharePathPrefix = "/share/"

// Preview size used on the share page.
const (
	SharePreviewWidth  = 600
	SharePreviewHeight = 400
)

// SharedFile is what an anonymous visitor of a share link gets.
// PreviewURL is empty for files that are not images.
type SharedFile struct {
	Record      models.FileRecord
	DownloadURL string
	PreviewURL  string
}

// ShareResolver builds share links and resolves them without a session.
type ShareResolver struct {
	storage  client.ObjectStorage
	origin   string
	bucketID string
}

func NewShareResolver(storage client.ObjectStorage, origin, bucketID string) *ShareResolver {
	return &ShareResolver{
		storage:  storage,
		origin:   strings.TrimRight(origin, "/"),
		bucketID: bucketID,
	}
}

// ShareURL is origin + "/share/" + id. Ids issued by the server are
// [A-Za-z0-9._-] and come out unchanged; anything else is path escaped so
// that ExtractID returns it intact.
func (r *ShareResolver) ShareURL(id string) string {
	return r.origin + sharePathPrefix + url.PathEscape(id)
}

// ExtractID returns the file id of a share link. A bare id is accepted as
// is.
func (r *ShareResolver) ExtractID(link string) (string, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", ErrInvalidShareURL
	}
	if !strings.Contains(link, "/") {
		return link, nil
	}

	u, err := url.Parse(link)
	if err != nil {
		return "", ErrInvalidShareURL
	}
	i := strings.LastIndex(u.Path, sharePathPrefix)
	if i < 0 {
		return "", ErrInvalidShareURL
	}
	id := strings.TrimSuffix(u.Path[i+len(sharePathPrefix):], "/")
	if id == "" || strings.Contains(id, "/") {
		return "", ErrInvalidShareURL
	}
	return id, nil
}

// Resolve loads the shared file. Anything that keeps the visitor from the
// file, whether missing or not permitted, is reported as ErrFileUnavailable.
func (r *ShareResolver) Resolve(ctx context.Context, id string) (*SharedFile, error) {
	rec, err := r.storage.Get(ctx, r.bucketID, id)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) || errors.Is(err, client.ErrUnauthenticated) {
			return nil, ErrFileUnavailable
		}
		return nil, err
	}

	shared := &SharedFile{
		Record:      *rec,
		DownloadURL: r.DownloadURL(rec.ID),
	}
	if rec.IsImage() {
		shared.PreviewURL = r.PreviewURL(rec.ID, SharePreviewWidth, SharePreviewHeight)
	}
	return shared, nil
}

func (r *ShareResolver) PreviewURL(id string, width, height int) string {
	return r.storage.PreviewURL(r.bucketID, id, width, height)
}

func (r *ShareResolver) DownloadURL(id string) string {
	return r.storage.DownloadURL(r.bucketID, id)
}
