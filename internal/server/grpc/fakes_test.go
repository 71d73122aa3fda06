package grpc

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/server/models"
	"github.com/dmitrijs2005/filevault/internal/server/services"
)

type fakeIdentity struct {
	mu        sync.Mutex
	sessions  map[string]*models.Session
	destroyed []string
	createErr error
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{sessions: map[string]*models.Session{
		"good-token": {ID: "s1", UserID: "u1", Email: "ann@example.com", Name: "Ann", ExpiresAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)},
	}}
}

func (f *fakeIdentity) CreateIdentity(_ context.Context, id, email, _, name string) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if common.IsUniqueID(id) {
		id = "generated"
	}
	return &models.User{ID: id, Email: email, Name: name}, nil
}

func (f *fakeIdentity) CreateSession(_ context.Context, email, password string) (*models.Session, string, error) {
	if password != "correct horse" {
		return nil, "", common.ErrInvalidCredentials
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.sessions["good-token"]
	return s, "good-token", nil
}

func (f *fakeIdentity) Authenticate(_ context.Context, token string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[token]
	if !ok {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrInvalidToken)
	}
	return s, nil
}

func (f *fakeIdentity) DestroySession(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed = append(f.destroyed, id)
	return nil
}

type fakeStorage struct {
	mu       sync.Mutex
	files    map[string]*models.File
	contents map[string][]byte
	maxSize  int
	listErr  error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: map[string]*models.File{}, contents: map[string][]byte{}, maxSize: 1 << 20}
}

func (f *fakeStorage) List(_ context.Context, owner, container string) ([]*models.File, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.File{}
	for _, file := range f.files {
		if file.OwnerID == owner && file.ContainerID == container {
			out = append(out, file)
		}
	}
	return out, nil
}

func (f *fakeStorage) Create(_ context.Context, owner string, nf services.NewFile, r io.Reader) (*models.File, error) {
	data, err := io.ReadAll(io.LimitReader(r, int64(f.maxSize)+1))
	if err != nil {
		return nil, err
	}
	if len(data) > f.maxSize {
		return nil, fmt.Errorf("%w: file exceeds maximum allowed size of %d bytes", common.ErrFileTooLarge, f.maxSize)
	}
	id := nf.ID
	if common.IsUniqueID(id) {
		id = "generated"
	}
	file := &models.File{
		ID:           id,
		ContainerID:  nf.ContainerID,
		OwnerID:      owner,
		Name:         nf.Name,
		MIMEType:     nf.MIMEType,
		SizeOriginal: int64(len(data)),
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[nf.ContainerID+"/"+id] = file
	f.contents[nf.ContainerID+"/"+id] = data
	return file, nil
}

func (f *fakeStorage) Delete(_ context.Context, owner, container, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[container+"/"+id]
	if !ok || file.OwnerID != owner {
		return common.ErrorNotFound
	}
	delete(f.files, container+"/"+id)
	return nil
}

func (f *fakeStorage) Get(_ context.Context, container, id string) (*models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[container+"/"+id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return file, nil
}
