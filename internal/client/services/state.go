// Package services is the FileVault client core: the session lifecycle,
// the file listing, the upload pipeline and share link resolution. Every
// service takes the shared State explicitly.
package services

import (
	"sync"

	"github.com/dmitrijs2005/filevault/internal/client/models"
)

// AuthState is the session state machine:
// Unknown -> Authenticated | Anonymous, Anonymous <-> Authenticated.
type AuthState int

const (
	AuthUnknown AuthState = iota
	AuthAnonymous
	AuthAuthenticated
)

func (s AuthState) String() string {
	switch s {
	case AuthAnonymous:
		return "anonymous"
	case AuthAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// State holds the single active session of the process.
type State struct {
	mu      sync.RWMutex
	auth    AuthState
	session *models.Session
}

func NewState() *State {
	return &State{}
}

func (s *State) Auth() AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.auth
}

// Session returns a copy of the active session, or nil.
func (s *State) Session() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	cp := *s.session
	return &cp
}

// Token returns the active session token and whether there is one.
func (s *State) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return "", false
	}
	return s.session.Token, true
}

func (s *State) setSession(session *models.Session) {
	cp := *session
	s.mu.Lock()
	s.session = &cp
	s.auth = AuthAuthenticated
	s.mu.Unlock()
}

func (s *State) setAnonymous() {
	s.mu.Lock()
	s.session = nil
	s.auth = AuthAnonymous
	s.mu.Unlock()
}
