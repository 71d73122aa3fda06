package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/logging"
	"github.com/dmitrijs2005/filevault/internal/server/auth"
	"github.com/dmitrijs2005/filevault/internal/server/config"
	"github.com/dmitrijs2005/filevault/internal/server/models"
	"github.com/dmitrijs2005/filevault/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const minPasswordLength = 8

// bcrypt refuses longer input.
const maxPasswordBytes = 72

// IdentityService manages accounts and their sessions.
type IdentityService struct {
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	jwtSecret       []byte
	sessionValidity time.Duration
	logger          logging.Logger
	now             func() time.Time

	// checked when the email is unknown so both paths cost a bcrypt round
	dummyHash []byte
}

func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *IdentityService {
	pw, _ := common.MakeRandHexString(16)
	dummy, _ := auth.HashPassword(pw)
	return &IdentityService{
		db:              db,
		repomanager:     m,
		jwtSecret:       []byte(cfg.SecretKey),
		sessionValidity: cfg.SessionValidityDuration,
		logger:          logger.With("module", "identity"),
		now:             time.Now,
		dummyHash:       dummy,
	}
}

// CreateIdentity registers an account. An empty id or common.UniqueID lets
// the service pick one.
func (s *IdentityService) CreateIdentity(ctx context.Context, id, email, password, name string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email address", common.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", common.ErrValidation, maxPasswordBytes)
	}
	if common.IsUniqueID(id) {
		id = uuid.NewString()
	} else if err := validateID("identity", id); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{ID: id, Email: email, Name: strings.TrimSpace(name), PasswordHash: hash}
	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: a user with the same id or email already exists", common.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	s.logger.Info(ctx, "identity created", "user_id", u.ID)
	return u, nil
}

// CreateSession verifies the credentials and opens a session. The returned
// token carries the session id.
func (s *IdentityService) CreateSession(ctx context.Context, email, password string) (*models.Session, string, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = auth.CheckPassword(s.dummyHash, password)
			return nil, "", common.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("error looking up user: %w", err)
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, "", err
	}

	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.sessionValidity).UTC(),
	}
	session, err = s.repomanager.Sessions(s.db).Create(ctx, session)
	if err != nil {
		return nil, "", fmt.Errorf("error creating session: %w", err)
	}
	session.Email, session.Name = user.Email, user.Name

	token, err := auth.GenerateToken(user.ID, session.ID, s.jwtSecret, session.ExpiresAt)
	if err != nil {
		return nil, "", fmt.Errorf("error signing token: %w", err)
	}
	return session, token, nil
}

// Authenticate resolves a token to its live session. Token and session
// problems are reported as common.ErrorUnauthorized.
func (s *IdentityService) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}

	session, err := s.repomanager.Sessions(s.db).Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: session revoked", common.ErrorUnauthorized)
		}
		return nil, err
	}
	if session.UserID != claims.UserID || session.Expired(s.now()) {
		return nil, fmt.Errorf("%w: session expired", common.ErrorUnauthorized)
	}
	return session, nil
}

// DestroySession revokes a session. Revoking twice is not an error.
func (s *IdentityService) DestroySession(ctx context.Context, sessionID string) error {
	if err := s.repomanager.Sessions(s.db).Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("error deleting session: %w", err)
	}
	return nil
}

// PurgeExpiredSessions deletes sessions past their expiry.
func (s *IdentityService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.repomanager.Sessions(s.db).DeleteExpired(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info(ctx, "expired sessions purged", "count", n)
	}
	return n, nil
}
