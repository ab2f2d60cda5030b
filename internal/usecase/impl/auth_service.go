// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"pentrack/config"
	deliverycontext "pentrack/internal/delivery/context"
	"pentrack/internal/domain/entity"
	domainerrors "pentrack/internal/domain/errors"
	"pentrack/internal/domain/repository"
	"pentrack/internal/domain/service"
	"pentrack/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface.
type authService struct {
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	codeRepo     repository.CodeRepository
	hasher       service.CodeHasher
	generator    service.CodeGenerator
	mailer       service.MailService
	tokenService service.TokenService
	sessions     usecase.SessionUsecase
	cfg          *config.AuthConfig
	logger       *slog.Logger
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	CodeRepo     repository.CodeRepository
	Hasher       service.CodeHasher
	Generator    service.CodeGenerator
	Mailer       service.MailService
	TokenService service.TokenService
	Sessions     usecase.SessionUsecase
	Config       *config.Config
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:    params.TxManager,
		userRepo:     params.UserRepo,
		codeRepo:     params.CodeRepo,
		hasher:       params.Hasher,
		generator:    params.Generator,
		mailer:       params.Mailer,
		tokenService: params.TokenService,
		sessions:     params.Sessions,
		cfg:          params.Config.Auth,
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// RequestLoginCode issues a one-time code for an existing account and emails it.
// The email is sent inside the issuing transaction so a delivery failure rolls
// the code record back instead of leaving an unreachable code behind.
func (srv *authService) RequestLoginCode(ctx context.Context, input usecase.RequestCodeInput) (*usecase.RequestCodeOutput, error) {
	email := normalizeEmail(input.Email)
	srv.log(ctx).Info("Login code requested", slog.String("email", email))

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()
		codeRepo := repoFactory.NewCodeRepository()

		user, err := userRepo.FindByEmail(ctx, email)
		if errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(domainerrors.ErrUserNotFound, "request login code")
		}
		if err != nil {
			return errors.Wrap(err, "failed to find user by email")
		}

		if user.Role.FederatedOnly() {
			return errors.Wrap(domainerrors.ErrCodeNotAllowedForRole, "request login code")
		}
		if err := accountStatusError(user); err != nil {
			return err
		}

		now := time.Now()
		issued, err := codeRepo.CountSince(ctx, email, now.Add(-srv.cfg.CodeRateWindow))
		if err != nil {
			return errors.Wrap(err, "failed to count recent codes")
		}
		if issued >= int64(srv.cfg.CodeRateMax) {
			return errors.Wrap(domainerrors.ErrCodeRateLimited, "request login code")
		}

		// Earlier codes stay on record for the rate-limit count; they are
		// already unredeemable because verification only ever consults the
		// most recent unconsumed code.
		plaintext, err := srv.generator.Generate()
		if err != nil {
			return errors.Wrap(err, "failed to generate code")
		}

		userID := user.ID
		record := &entity.OneTimeCode{
			ID:        uuid.New(),
			Email:     email,
			CodeHash:  srv.hasher.Hash(plaintext),
			Purpose:   entity.PurposeLogin,
			ExpiresAt: now.Add(srv.cfg.CodeTTL),
			UserID:    &userID,
			CreatedAt: now,
		}
		if err := codeRepo.Create(ctx, record); err != nil {
			return errors.Wrap(err, "failed to persist code")
		}

		expiryMinutes := int(srv.cfg.CodeTTL / time.Minute)
		if err := srv.mailer.SendOneTimeCode(ctx, email, plaintext, expiryMinutes); err != nil {
			srv.log(ctx).Error("Failed to deliver code email", slog.String("email", email), slog.Any("error", err))

			return errors.Wrap(domainerrors.ErrEmailDeliveryFailed, "request login code")
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute code request transaction")
	}

	srv.log(ctx).Debug("Login code issued", slog.String("email", email))

	return &usecase.RequestCodeOutput{ExpiresIn: int(srv.cfg.CodeTTL / time.Second)}, nil
}

// VerifyLoginCode redeems a code and establishes a session for its user.
// Attempt counting and expiry/exhaustion deletion run against the plain
// repository, outside the login transaction: these writes must persist
// precisely when the verification fails, and a rolled-back transaction
// would discard them and hand the caller unlimited guesses.
func (srv *authService) VerifyLoginCode(ctx context.Context, input usecase.VerifyCodeInput) (*usecase.LoginOutput, error) {
	email := normalizeEmail(input.Email)
	srv.log(ctx).Info("Login code verification", slog.String("email", email))

	record, err := srv.codeRepo.FindLatestUnconsumed(ctx, email, entity.PurposeLogin)
	if errors.Is(err, repository.ErrCodeNotFound) {
		return nil, errors.Wrap(domainerrors.ErrCodeInvalid, "no pending code")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load pending code")
	}

	now := time.Now()
	if now.After(record.ExpiresAt) {
		if err := srv.codeRepo.DeleteByID(ctx, record.ID); err != nil {
			return nil, errors.Wrap(err, "failed to delete expired code")
		}

		return nil, errors.Wrap(domainerrors.ErrCodeExpired, "verify login code")
	}
	if record.Attempts >= srv.cfg.CodeMaxAttempts {
		if err := srv.codeRepo.DeleteByID(ctx, record.ID); err != nil {
			return nil, errors.Wrap(err, "failed to delete exhausted code")
		}

		return nil, errors.Wrap(domainerrors.ErrCodeMaxAttempts, "verify login code")
	}

	if !srv.hasher.Check(input.Code, record.CodeHash) {
		if err := srv.codeRepo.IncrementAttempts(ctx, record.ID); err != nil {
			return nil, errors.Wrap(err, "failed to record failed attempt")
		}
		srv.log(ctx).Warn("Login code mismatch", slog.String("email", email), slog.Int("attempts", record.Attempts+1))

		return nil, errors.Wrap(domainerrors.ErrCodeInvalid, "code mismatch")
	}

	var verified *entity.User
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()
		codeRepo := repoFactory.NewCodeRepository()

		// Conditional consume: exactly one concurrent verification wins.
		if err := codeRepo.Consume(ctx, record.ID, now); err != nil {
			if errors.Is(err, repository.ErrCodeAlreadyConsumed) {
				return errors.Wrap(domainerrors.ErrCodeInvalid, "code already consumed")
			}

			return errors.Wrap(err, "failed to consume code")
		}

		// The challenge is settled; any superseded codes for the address
		// die with it.
		if err := codeRepo.DeleteByEmailAndPurpose(ctx, email, entity.PurposeLogin); err != nil {
			return errors.Wrap(err, "failed to clear settled codes")
		}

		if record.UserID == nil {
			// Login requires an account bound at request time.
			return errors.Wrap(domainerrors.ErrUserNotFound, "code not bound to an account")
		}

		user, err := userRepo.FindByID(ctx, *record.UserID)
		if errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(domainerrors.ErrUserNotFound, "verify login code")
		}
		if err != nil {
			return errors.Wrap(err, "failed to load user")
		}
		if err := accountStatusError(user); err != nil {
			return err
		}

		if err := userRepo.UpdateLastLogin(ctx, user.ID, now, input.IPAddress); err != nil {
			return errors.Wrap(err, "failed to update last login")
		}

		verified = user

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Login code verification failed", slog.String("email", email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute code verification transaction")
	}

	session, err := srv.sessions.Create(ctx, usecase.CreateSessionInput{
		UserID:    verified.ID,
		Remember:  input.Remember,
		UserAgent: input.UserAgent,
		IPAddress: input.IPAddress,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session after verification")
	}

	srv.log(ctx).Info("Login succeeded", slog.Any("userID", verified.ID), slog.String("role", verified.Role.String()))

	return &usecase.LoginOutput{Session: session, User: verified}, nil
}

// CurrentUser loads the profile behind an authenticated session.
func (srv *authService) CurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, errors.Wrap(domainerrors.ErrUserNotFound, "current user")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load current user")
	}

	return user, nil
}

// WebSocketToken mints a short-lived JWT for the realtime handshake.
func (srv *authService) WebSocketToken(ctx context.Context, userID uuid.UUID) (*usecase.WebSocketTokenOutput, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, errors.Wrap(domainerrors.ErrUserNotFound, "websocket token")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load user for websocket token")
	}

	token, err := srv.tokenService.GenerateWebSocketToken(user.ID, user.Role.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate websocket token")
	}

	return &usecase.WebSocketTokenOutput{
		Token:     token,
		ExpiresIn: int(srv.cfg.WSTokenTTL / time.Second),
	}, nil
}

// normalizeEmail lowercases and trims an address for lookup and storage.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// accountStatusError maps a non-usable account status to its domain error.
func accountStatusError(user *entity.User) error {
	switch user.Status {
	case entity.StatusActive:
		return nil
	case entity.StatusSuspended:
		return errors.Wrap(domainerrors.ErrAccountSuspended, "account status")
	case entity.StatusDeleted:
		return errors.Wrap(domainerrors.ErrAccountDeleted, "account status")
	default:
		return errors.Wrap(domainerrors.ErrAccountNotActive, "account status")
	}
}
