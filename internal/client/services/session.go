package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/dmitrijs2005/filevault/internal/client/client"
	"github.com/dmitrijs2005/filevault/internal/client/models"
	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/logging"
)

// SessionManager drives the session state machine against the Identity
// Service. Only one transition runs at a time; a concurrent call fails with
// ErrTransitionInProgress.
type SessionManager struct {
	identity client.IdentityService
	state    *State
	tokens   TokenStore
	logger   logging.Logger
	busy     atomic.Bool
}

func NewSessionManager(identity client.IdentityService, state *State, tokens TokenStore, logger logging.Logger) *SessionManager {
	return &SessionManager{
		identity: identity,
		state:    state,
		tokens:   tokens,
		logger:   logger.With("module", "session"),
	}
}

func (m *SessionManager) begin() error {
	if !m.busy.CompareAndSwap(false, true) {
		return ErrTransitionInProgress
	}
	return nil
}

func (m *SessionManager) end() { m.busy.Store(false) }

// Current returns the active session or nil.
func (m *SessionManager) Current() *models.Session {
	return m.state.Session()
}

// Probe restores the session persisted by a previous run. It returns
// (nil, nil) when there is none or the server no longer accepts it, and
// client.ErrUnavailable when the Identity Service cannot be reached.
func (m *SessionManager) Probe(ctx context.Context) (*models.Session, error) {
	if err := m.begin(); err != nil {
		return nil, err
	}
	defer m.end()

	token, err := m.tokens.Load(ctx)
	if err != nil {
		m.state.setAnonymous()
		return nil, fmt.Errorf("load session token: %w", err)
	}
	if token == "" {
		m.state.setAnonymous()
		return nil, nil
	}

	session, err := m.identity.GetCurrentSession(ctx, token)
	switch {
	case err == nil:
		m.state.setSession(session)
		return m.state.Session(), nil
	case errors.Is(err, client.ErrUnauthenticated):
		m.logger.Info(ctx, "stored session rejected", "error", err)
		if cerr := m.tokens.Clear(ctx); cerr != nil {
			m.logger.Warn(ctx, "clear session token", "error", cerr)
		}
		m.state.setAnonymous()
		return nil, nil
	default:
		m.state.setAnonymous()
		return nil, err
	}
}

// Login creates a session. On failure the state is left as it was and the
// error wraps client.ErrInvalidCredentials or client.ErrUnavailable with the
// server's message.
func (m *SessionManager) Login(ctx context.Context, email, password string) (*models.Session, error) {
	if err := m.begin(); err != nil {
		return nil, err
	}
	defer m.end()
	return m.login(ctx, email, password)
}

func (m *SessionManager) login(ctx context.Context, email, password string) (*models.Session, error) {
	session, err := m.identity.CreateSession(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if err := m.tokens.Save(ctx, session.Token); err != nil {
		m.logger.Warn(ctx, "persist session token", "error", err)
	}
	m.state.setSession(session)
	m.logger.Info(ctx, "signed in", "user_id", session.UserID)
	return m.state.Session(), nil
}

// Register creates an identity and signs in with it. When the account is
// created but sign-in fails, the error wraps both ErrRegisteredNotLoggedIn
// and the sign-in cause.
func (m *SessionManager) Register(ctx context.Context, name, email, password string) (*models.Session, error) {
	if err := m.begin(); err != nil {
		return nil, err
	}
	defer m.end()

	if _, err := m.identity.CreateIdentity(ctx, common.UniqueID, email, password, name); err != nil {
		return nil, err
	}

	session, err := m.login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRegisteredNotLoggedIn, err)
	}
	return session, nil
}

// Logout revokes the session and forgets it locally, even when the revoke
// call fails. A failed revoke is returned wrapped in ErrRevokeFailed.
func (m *SessionManager) Logout(ctx context.Context) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.end()

	token, ok := m.state.Token()
	var revokeErr error
	if ok {
		revokeErr = m.identity.DestroySession(ctx, token)
	}

	m.state.setAnonymous()
	if err := m.tokens.Clear(ctx); err != nil {
		m.logger.Warn(ctx, "clear session token", "error", err)
	}

	if revokeErr != nil {
		m.logger.Warn(ctx, "revoke session", "error", revokeErr)
		return fmt.Errorf("%w: %w", ErrRevokeFailed, revokeErr)
	}
	return nil
}
