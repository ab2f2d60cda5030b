package impl

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"time"

	"pentrack/config"
	deliverycontext "pentrack/internal/delivery/context"
	"pentrack/internal/domain/entity"
	domainerrors "pentrack/internal/domain/errors"
	"pentrack/internal/domain/repository"
	"pentrack/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// sessionTokenBytes is the entropy of an opaque bearer token.
const sessionTokenBytes = 32

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	txManager   repository.TransactionManager
	sessionRepo repository.SessionRepository
	userRepo    repository.UserRepository
	cfg         *config.AuthConfig
	logger      *slog.Logger
}

// SessionServiceParams holds dependencies for SessionService, injected by Fx.
type SessionServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	SessionRepo repository.SessionRepository
	UserRepo    repository.UserRepository
	Config      *config.Config
	Logger      *slog.Logger
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(params SessionServiceParams) usecase.SessionUsecase {
	return &sessionService{
		txManager:   params.TxManager,
		sessionRepo: params.SessionRepo,
		userRepo:    params.UserRepo,
		cfg:         params.Config.Auth,
		logger:      params.Logger,
	}
}

func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Create establishes a new session with a freshly generated opaque token.
func (srv *sessionService) Create(ctx context.Context, input usecase.CreateSessionInput) (*entity.Session, error) {
	token, err := generateSessionToken()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate session token")
	}

	ttl := srv.cfg.SessionTTL
	if input.Remember {
		ttl = srv.cfg.RememberTTL
	}

	now := time.Now()
	session := &entity.Session{
		ID:             uuid.New(),
		UserID:         input.UserID,
		Token:          token,
		Remember:       input.Remember,
		ExpiresAt:      now.Add(ttl),
		LastActivityAt: now,
		UserAgent:      input.UserAgent,
		IPAddress:      input.IPAddress,
		CreatedAt:      now,
	}

	if err := srv.sessionRepo.Create(ctx, session); err != nil {
		return nil, errors.Wrap(err, "failed to persist session")
	}

	srv.log(ctx).Info("Session created", slog.Any("userID", input.UserID), slog.Bool("remember", input.Remember))

	return session, nil
}

// Validate resolves a bearer token to its user. Expired sessions are deleted
// on sight, and every successful validation rolls the activity timestamp.
func (srv *sessionService) Validate(ctx context.Context, token string) (*entity.User, *entity.Session, error) {
	if token == "" {
		return nil, nil, errors.Wrap(domainerrors.ErrSessionMissing, "validate session")
	}

	session, err := srv.sessionRepo.FindByToken(ctx, token)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, nil, errors.Wrap(domainerrors.ErrSessionInvalid, "validate session")
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to find session")
	}

	now := time.Now()
	if session.Expired(now) {
		if err := srv.sessionRepo.DeleteByToken(ctx, token); err != nil {
			srv.log(ctx).Warn("Failed to delete expired session", slog.Any("sessionID", session.ID), slog.Any("error", err))
		}

		return nil, nil, errors.Wrap(domainerrors.ErrSessionExpired, "validate session")
	}

	user, err := srv.userRepo.FindByID(ctx, session.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, nil, errors.Wrap(domainerrors.ErrSessionInvalid, "session user missing")
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load session user")
	}
	if err := accountStatusError(user); err != nil {
		return nil, nil, err
	}

	if err := srv.sessionRepo.UpdateLastActivity(ctx, session.ID, now); err != nil {
		srv.log(ctx).Warn("Failed to roll session activity", slog.Any("sessionID", session.ID), slog.Any("error", err))
	}
	session.LastActivityAt = now

	return user, session, nil
}

// Revoke terminates the session behind the given token. Revoking an unknown
// token is not an error: logout is idempotent.
func (srv *sessionService) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	if err := srv.sessionRepo.DeleteByToken(ctx, token); err != nil {
		return errors.Wrap(err, "failed to revoke session")
	}

	return nil
}

// RevokeAll terminates every session belonging to the user.
func (srv *sessionService) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	if err := srv.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
		return errors.Wrap(err, "failed to revoke all sessions")
	}

	srv.log(ctx).Info("All sessions revoked", slog.Any("userID", userID))

	return nil
}

// ListActive returns the user's live sessions, most recent first.
func (srv *sessionService) ListActive(ctx context.Context, userID uuid.UUID) ([]*entity.Session, error) {
	sessions, err := srv.sessionRepo.FindActiveByUserID(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list active sessions")
	}

	return sessions, nil
}

// SweepExpired deletes expired sessions and codes in one transaction.
func (srv *sessionService) SweepExpired(ctx context.Context) (int64, int64, error) {
	var sessions, codes int64
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		now := time.Now()

		removed, err := repoFactory.NewSessionRepository().DeleteExpired(ctx, now)
		if err != nil {
			return errors.Wrap(err, "failed to sweep sessions")
		}
		sessions = removed

		removed, err = repoFactory.NewCodeRepository().DeleteExpired(ctx, now)
		if err != nil {
			return errors.Wrap(err, "failed to sweep codes")
		}
		codes = removed

		return nil
	})
	if err != nil {
		return 0, 0, errors.Wrap(err, "failed to execute sweep transaction")
	}

	return sessions, codes, nil
}

// generateSessionToken draws an opaque token from the crypto source.
func generateSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "rand.Read")
	}

	return hex.EncodeToString(buf), nil
}
