package services

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/filevault/internal/client/client"
	"github.com/dmitrijs2005/filevault/internal/client/models"
	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/google/uuid"
)

// fakeIdentity is an in-memory Identity Service.
type fakeIdentity struct {
	mu        sync.Mutex
	users     map[string]fakeUser // by email
	sessions  map[string]*models.Session
	calls     atomic.Int32
	lastID    string
	gate      chan struct{} // when set, CreateSession waits on it
	down      bool
	failLogin error
	revokeErr error
}

type fakeUser struct {
	id, name, password string
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{users: map[string]fakeUser{}, sessions: map[string]*models.Session{}}
}

func (f *fakeIdentity) GetCurrentSession(_ context.Context, token string) (*models.Session, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, fmt.Errorf("%w: connection refused", client.ErrUnavailable)
	}
	s, ok := f.sessions[token]
	if !ok {
		return nil, fmt.Errorf("%w: session expired", client.ErrUnauthenticated)
	}
	cp := *s
	return &cp, nil
}

func (f *fakeIdentity) CreateSession(ctx context.Context, email, password string) (*models.Session, error) {
	f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, fmt.Errorf("%w: connection refused", client.ErrUnavailable)
	}
	if f.failLogin != nil {
		return nil, f.failLogin
	}
	u, ok := f.users[email]
	if !ok || u.password != password {
		return nil, fmt.Errorf("%w: Invalid credentials. Please check the email and password.", client.ErrInvalidCredentials)
	}
	s := &models.Session{ID: uuid.NewString(), Token: uuid.NewString(), UserID: u.id, Name: u.name, Email: email, ExpiresAt: time.Now().Add(time.Hour)}
	f.sessions[s.Token] = s
	cp := *s
	return &cp, nil
}

func (f *fakeIdentity) CreateIdentity(_ context.Context, uniqueID, email, password, name string) (*models.Identity, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastID = uniqueID
	if f.down {
		return nil, fmt.Errorf("%w: connection refused", client.ErrUnavailable)
	}
	if _, ok := f.users[email]; ok {
		return nil, fmt.Errorf("%w: A user with the same email already exists.", client.ErrAlreadyExists)
	}
	id := uuid.NewString()
	f.users[email] = fakeUser{id: id, name: name, password: password}
	return &models.Identity{ID: id, Name: name, Email: email, CreatedAt: time.Now()}, nil
}

func (f *fakeIdentity) DestroySession(_ context.Context, token string) error {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.revokeErr != nil {
		return f.revokeErr
	}
	delete(f.sessions, token)
	return nil
}

// fakeStorage is an in-memory Object Storage Service. Tokens are checked
// against the fake identity when one is attached.
type fakeStorage struct {
	mu         sync.Mutex
	identity   *fakeIdentity
	containers map[string][]storedFile
	calls      atomic.Int32
	chunk      int
	maxSize    int64
	listErr    error
	deleteErr  error
	createErr  error
	gate       chan struct{} // when set, Create waits on it after the first chunk
	lastFileID string
}

type storedFile struct {
	rec  models.FileRecord
	data []byte
}

func newFakeStorage(identity *fakeIdentity) *fakeStorage {
	return &fakeStorage{identity: identity, containers: map[string][]storedFile{}, chunk: 4096}
}

func (f *fakeStorage) authorize(token string) error {
	if f.identity == nil {
		return nil
	}
	f.identity.mu.Lock()
	defer f.identity.mu.Unlock()
	if _, ok := f.identity.sessions[token]; !ok {
		return fmt.Errorf("%w: missing or invalid token", client.ErrUnauthenticated)
	}
	return nil
}

func (f *fakeStorage) List(_ context.Context, token, containerID string) ([]models.FileRecord, error) {
	f.calls.Add(1)
	if f.listErr != nil {
		return nil, f.listErr
	}
	if err := f.authorize(token); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.FileRecord{}
	for _, s := range f.containers[containerID] {
		out = append(out, s.rec)
	}
	return out, nil
}

func (f *fakeStorage) Create(ctx context.Context, token, containerID, fileID string, file *models.LocalFile, onProgress func(models.Progress)) (*models.FileRecord, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.lastFileID = fileID
	f.mu.Unlock()
	if err := f.authorize(token); err != nil {
		return nil, err
	}

	total := int((file.Size + int64(f.chunk) - 1) / int64(f.chunk))
	if total == 0 {
		total = 1
	}
	onProgress(models.Progress{Transferred: 0, Total: total})

	var data []byte
	buf := make([]byte, f.chunk)
	for sent := 1; ; sent++ {
		n, err := io.ReadFull(file.Content, buf)
		data = append(data, buf[:n]...)
		if n > 0 {
			if f.maxSize > 0 && int64(len(data)) > f.maxSize {
				return nil, fmt.Errorf("%w: file exceeds maximum allowed size of %d bytes", client.ErrRejected, f.maxSize)
			}
			onProgress(models.Progress{Transferred: min(sent, total), Total: total})
			if sent == 1 && f.gate != nil {
				select {
				case <-f.gate:
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	if f.createErr != nil {
		return nil, f.createErr
	}

	id := fileID
	if common.IsUniqueID(id) {
		id = uuid.NewString()
	}
	rec := models.FileRecord{ID: id, ContainerID: containerID, Name: file.Name, MIMEType: file.MIMEType, SizeOriginal: int64(len(data)), CreatedAt: time.Now()}
	f.mu.Lock()
	f.containers[containerID] = append(f.containers[containerID], storedFile{rec: rec, data: data})
	f.mu.Unlock()
	onProgress(models.Progress{Transferred: total, Total: total})
	return &rec, nil
}

func (f *fakeStorage) Delete(_ context.Context, token, containerID, id string) error {
	f.calls.Add(1)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if err := f.authorize(token); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	files := f.containers[containerID]
	i := slices.IndexFunc(files, func(s storedFile) bool { return s.rec.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: File not found", client.ErrNotFound)
	}
	f.containers[containerID] = slices.Delete(files, i, i+1)
	return nil
}

func (f *fakeStorage) Get(_ context.Context, containerID, id string) (*models.FileRecord, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.containers[containerID] {
		if s.rec.ID == id {
			rec := s.rec
			return &rec, nil
		}
	}
	return nil, fmt.Errorf("%w: File not found", client.ErrNotFound)
}

func (f *fakeStorage) DownloadURL(containerID, id string) string {
	return "http://files.local/v1/storage/buckets/" + containerID + "/files/" + id + "/download"
}

func (f *fakeStorage) PreviewURL(containerID, id string, w, h int) string {
	return fmt.Sprintf("http://files.local/v1/storage/buckets/%s/files/%s/preview?width=%d&height=%d", containerID, id, w, h)
}

func (f *fakeStorage) seed(containerID string, recs ...models.FileRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range recs {
		f.containers[containerID] = append(f.containers[containerID], storedFile{rec: r})
	}
}

type memTokens struct {
	mu      sync.Mutex
	token   string
	loadErr error
}

func (m *memTokens) Load(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.loadErr
}

func (m *memTokens) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *memTokens) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
