package services

import (
	"context"
	"database/sql"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/dbx"
	"github.com/dmitrijs2005/filevault/internal/logging"
	"github.com/dmitrijs2005/filevault/internal/server/blob"
	"github.com/dmitrijs2005/filevault/internal/server/config"
	"github.com/dmitrijs2005/filevault/internal/server/models"
	"github.com/dmitrijs2005/filevault/internal/server/repositories/files"
	"github.com/dmitrijs2005/filevault/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/filevault/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	mu        sync.Mutex
	byEmail   map[string]*models.User
	createErr error
	getErr    error
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrAlreadyExists
	}
	u.CreatedAt = time.Now()
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

type fakeSessions struct {
	mu        sync.Mutex
	byID      map[string]*models.Session
	users     *fakeUsers
	createErr error
	deleteErr error
	expired   int64
}

func (f *fakeSessions) Create(_ context.Context, s *models.Session) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	s.CreatedAt = time.Now()
	f.byID[s.ID] = s
	return s, nil
}

func (f *fakeSessions) Get(_ context.Context, id string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *s
	f.users.mu.Lock()
	for _, u := range f.users.byEmail {
		if u.ID == s.UserID {
			out.Email, out.Name = u.Email, u.Name
		}
	}
	f.users.mu.Unlock()
	return &out, nil
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeSessions) DeleteExpired(context.Context) (int64, error) {
	return f.expired, nil
}

type fakeFiles struct {
	mu        sync.Mutex
	rows      map[string]*models.File
	createErr error
	gets      int
	seq       time.Time
}

func (f *fakeFiles) Create(_ context.Context, file *models.File) (*models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	k := file.ContainerID + "/" + file.ID
	if _, ok := f.rows[k]; ok {
		return nil, common.ErrAlreadyExists
	}
	f.seq = f.seq.Add(time.Second)
	file.CreatedAt = f.seq
	cp := *file
	f.rows[k] = &cp
	return file, nil
}

func (f *fakeFiles) ListByOwner(_ context.Context, ownerID, containerID string) ([]*models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.File, 0)
	for _, r := range f.rows {
		if r.OwnerID == ownerID && r.ContainerID == containerID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeFiles) Get(_ context.Context, containerID, id string) (*models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	r, ok := f.rows[containerID+"/"+id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeFiles) Delete(_ context.Context, ownerID, containerID, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := containerID + "/" + id
	r, ok := f.rows[k]
	if !ok || r.OwnerID != ownerID {
		return "", common.ErrorNotFound
	}
	delete(f.rows, k)
	return r.StorageKey, nil
}

type fakeManager struct {
	users    *fakeUsers
	sessions *fakeSessions
	files    *fakeFiles
}

func newFakeManager() *fakeManager {
	u := &fakeUsers{byEmail: map[string]*models.User{}}
	return &fakeManager{
		users:    u,
		sessions: &fakeSessions{byID: map[string]*models.Session{}, users: u},
		files:    &fakeFiles{rows: map[string]*models.File{}, seq: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeManager) Users(dbx.DBTX) users.Repository             { return m.users }
func (m *fakeManager) Sessions(dbx.DBTX) sessions.Repository       { return m.sessions }
func (m *fakeManager) Files(dbx.DBTX) files.Repository             { return m.files }

// flakyStore fails selected operations of an in-memory store.
type flakyStore struct {
	*blob.MemoryStore
	putErr    error
	deleteErr error
	deletes   []string
}

func (f *flakyStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	return f.MemoryStore.Put(ctx, key, r, size, contentType)
}

func (f *flakyStore) Delete(ctx context.Context, key string) error {
	f.deletes = append(f.deletes, key)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.MemoryStore.Delete(ctx, key)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	cfg.MaxFileSize = 64
	return cfg
}

type storageHarness struct {
	svc   *StorageService
	m     *fakeManager
	blobs *flakyStore
	mock  sqlmock.Sqlmock
}

func newStorageHarness(t *testing.T, cfg *config.Config) *storageHarness {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m := newFakeManager()
	blobs := &flakyStore{MemoryStore: blob.NewMemoryStore()}
	svc := NewStorageService(db, m, blobs, NewMetadataCache(1024*1024), cfg, logging.Nop())
	return &storageHarness{svc: svc, m: m, blobs: blobs, mock: mock}
}
