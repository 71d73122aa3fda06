package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/filevault/internal/logging"
	"github.com/stretchr/testify/require"
)

const testBucket = "files"

type harness struct {
	state    *State
	identity *fakeIdentity
	storage  *fakeStorage
	tokens   *memTokens
	sessions *SessionManager
	files    *FileRepository
	uploader *Uploader
	share    *ShareResolver
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		state:    NewState(),
		identity: newFakeIdentity(),
		tokens:   &memTokens{},
	}
	h.storage = newFakeStorage(h.identity)
	log := logging.Nop()
	h.sessions = NewSessionManager(h.identity, h.state, h.tokens, log)
	h.files = NewFileRepository(h.storage, h.state, testBucket, log)
	h.uploader = NewUploader(h.storage, h.state, h.files, testBucket, log)
	h.share = NewShareResolver(h.storage, "https://share.example/", testBucket)
	return h
}

// signIn registers ann@x.io and logs in.
func (h *harness) signIn(t *testing.T) {
	t.Helper()
	_, err := h.sessions.Register(context.Background(), "Ann", "ann@x.io", "secret123")
	require.NoError(t, err)
}
