package services

import (
	"context"
	"fmt"
	"iter"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/filevault/internal/client/client"
	"github.com/dmitrijs2005/filevault/internal/client/models"
	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/logging"
)

// Uploader runs at most one upload at a time.
type Uploader struct {
	storage  client.ObjectStorage
	state    *State
	files    *FileRepository
	bucketID string
	logger   logging.Logger
	active   atomic.Bool
}

func NewUploader(storage client.ObjectStorage, state *State, files *FileRepository, bucketID string, logger logging.Logger) *Uploader {
	return &Uploader{
		storage:  storage,
		state:    state,
		files:    files,
		bucketID: bucketID,
		logger:   logger.With("module", "upload"),
	}
}

// Active reports whether an upload is in flight.
func (u *Uploader) Active() bool { return u.active.Load() }

// Upload starts sending file and returns its task. It fails fast with
// ErrNoFile, client.ErrUnauthenticated or ErrUploadInProgress before
// anything goes over the network. The upload runs until it completes or ctx
// is cancelled; on success the file listing is refreshed from the service.
func (u *Uploader) Upload(ctx context.Context, file *models.LocalFile) (*UploadTask, error) {
	if file == nil || file.Content == nil {
		return nil, ErrNoFile
	}
	token, ok := u.state.Token()
	if !ok {
		return nil, client.ErrUnauthenticated
	}
	if !u.active.CompareAndSwap(false, true) {
		return nil, ErrUploadInProgress
	}

	task := newUploadTask(file)
	go u.run(ctx, token, task)
	return task, nil
}

func (u *Uploader) run(ctx context.Context, token string, task *UploadTask) {
	rec, err := u.storage.Create(ctx, token, u.bucketID, common.UniqueID, task.file, task.publish)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		u.logger.Warn(ctx, "upload failed", "name", task.file.Name, "error", err)
		u.active.Store(false)
		task.fail(fmt.Errorf("upload %s: %w", task.file.Name, err))
		return
	}

	u.logger.Info(ctx, "file uploaded", "file_id", rec.ID, "name", rec.Name, "size", rec.SizeOriginal)
	task.complete()

	listing := u.files.List(ctx)
	mut := models.Mutation{
		Kind:    models.MutationCreated,
		FileID:  rec.ID,
		Patched: !listing.Failed(),
		Refetch: listing.Failed(),
	}
	u.active.Store(false)
	task.finish(rec, mut)
}

// UploadTask is one upload in flight. Its progress log only grows, except
// for the single {0,Total} snapshot appended when the upload fails.
type UploadTask struct {
	file       *models.LocalFile
	subscribed atomic.Bool
	done       chan struct{}

	mu       sync.Mutex
	log      []models.Progress
	wake     chan struct{}
	closed   bool
	record   *models.FileRecord
	mutation models.Mutation
	err      error
}

func newUploadTask(file *models.LocalFile) *UploadTask {
	return &UploadTask{
		file: file,
		done: make(chan struct{}),
		wake: make(chan struct{}),
	}
}

func (t *UploadTask) File() *models.LocalFile { return t.file }

// publish appends p unless it repeats or goes back on the last snapshot.
func (t *UploadTask) publish(p models.Progress) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if n := len(t.log); n > 0 {
		last := t.log[n-1]
		if p == last || p.Percent() < last.Percent() {
			return
		}
	}
	t.appendLocked(p)
}

func (t *UploadTask) appendLocked(p models.Progress) {
	t.log = append(t.log, p)
	close(t.wake)
	t.wake = make(chan struct{})
}

func (t *UploadTask) totalLocked() int {
	if n := len(t.log); n > 0 && t.log[n-1].Total > 0 {
		return t.log[n-1].Total
	}
	return 1
}

// complete records that the bytes are stored: the log ends at 100%.
func (t *UploadTask) complete() {
	t.mu.Lock()
	defer t.mu.Unlock()
	total := t.totalLocked()
	if n := len(t.log); n == 0 || t.log[n-1] != (models.Progress{Transferred: total, Total: total}) {
		t.appendLocked(models.Progress{Transferred: total, Total: total})
	}
	t.closed = true
}

func (t *UploadTask) finish(rec *models.FileRecord, mut models.Mutation) {
	t.mu.Lock()
	t.record = rec
	t.mutation = mut
	t.mu.Unlock()
	close(t.done)
}

func (t *UploadTask) fail(err error) {
	t.mu.Lock()
	t.appendLocked(models.Progress{Transferred: 0, Total: t.totalLocked()})
	t.closed = true
	t.err = err
	t.mu.Unlock()
	close(t.done)
}

// Progress yields the task's snapshots in order, blocking for new ones
// until the upload ends. Only the first call gets the snapshots; later
// calls get an empty sequence.
func (t *UploadTask) Progress() iter.Seq[models.Progress] {
	return func(yield func(models.Progress) bool) {
		if !t.subscribed.CompareAndSwap(false, true) {
			return
		}
		next := 0
		for {
			t.mu.Lock()
			pending := t.log[next:len(t.log):len(t.log)]
			closed := t.closed
			wake := t.wake
			t.mu.Unlock()

			for _, p := range pending {
				next++
				if !yield(p) {
					return
				}
			}
			if closed {
				return
			}
			<-wake
		}
	}
}

// Percent is the latest snapshot as a percentage; 0 before the first one.
func (t *UploadTask) Percent() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.log) == 0 {
		return 0
	}
	return t.log[len(t.log)-1].Percent()
}

// Done is closed when the task has an outcome.
func (t *UploadTask) Done() <-chan struct{} { return t.done }

// Wait blocks until the upload and the listing refresh that follows it are
// over, and returns the stored record and how the listing was updated.
func (t *UploadTask) Wait(ctx context.Context) (*models.FileRecord, models.Mutation, error) {
	select {
	case <-ctx.Done():
		return nil, models.Mutation{}, ctx.Err()
	case <-t.done:
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.record, t.mutation, t.err
}
