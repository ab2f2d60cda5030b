package impl

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
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

const (
	stateTokenBytes = 32
	nonceBytes      = 16
)

// oauthService implements the OAuthUsecase interface.
type oauthService struct {
	txManager  repository.TransactionManager
	stateStore service.StateStore
	provider   service.OAuthProvider
	mailer     service.MailService
	sessions   usecase.SessionUsecase
	cfg        *config.AuthConfig
	logger     *slog.Logger
}

// OAuthServiceParams holds dependencies for OAuthService, injected by Fx.
type OAuthServiceParams struct {
	fx.In

	TxManager  repository.TransactionManager
	StateStore service.StateStore
	Provider   service.OAuthProvider
	Mailer     service.MailService
	Sessions   usecase.SessionUsecase
	Config     *config.Config
	Logger     *slog.Logger
}

// NewOAuthService is the constructor for oauthService.
func NewOAuthService(params OAuthServiceParams) usecase.OAuthUsecase {
	return &oauthService{
		txManager:  params.TxManager,
		stateStore: params.StateStore,
		provider:   params.Provider,
		mailer:     params.Mailer,
		sessions:   params.Sessions,
		cfg:        params.Config.Auth,
		logger:     params.Logger,
	}
}

func (srv *oauthService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// BeginAuth records a pending state entry and builds the provider consent URL.
func (srv *oauthService) BeginAuth(ctx context.Context, input usecase.BeginAuthInput) (*usecase.BeginAuthOutput, error) {
	if !input.Role.IsValid() || !input.Role.FederatedOnly() {
		srv.log(ctx).Warn("Federated login rejected for role", slog.String("role", input.Role.String()))

		return nil, errors.Wrap(domainerrors.ErrOAuthRoleNotAllowed, "begin auth")
	}

	state, err := randomHex(stateTokenBytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate state token")
	}
	nonce, err := randomHex(nonceBytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate nonce")
	}

	srv.stateStore.Put(state, service.OAuthState{
		Role:      input.Role,
		Nonce:     nonce,
		CreatedAt: time.Now(),
	})

	srv.log(ctx).Info("Federated login started", slog.String("role", input.Role.String()), slog.String("provider", srv.provider.Provider().String()))

	return &usecase.BeginAuthOutput{
		RedirectURL: srv.provider.AuthorizationURL(state, nonce),
		State:       state,
	}, nil
}

// CompleteAuth redeems the provider callback and establishes a session.
func (srv *oauthService) CompleteAuth(ctx context.Context, input usecase.CompleteAuthInput) (*usecase.CompleteAuthOutput, error) {
	// The state entry is claimed atomically: a replayed callback loses here.
	pending, ok := srv.stateStore.TakeOnce(input.State)
	if !ok {
		return nil, errors.Wrap(domainerrors.ErrOAuthStateInvalid, "complete auth")
	}
	if pending.Expired(time.Now(), srv.cfg.StateTTL) {
		return nil, errors.Wrap(domainerrors.ErrOAuthStateExpired, "complete auth")
	}

	identity, err := srv.provider.ExchangeCode(ctx, input.Code, pending.Nonce)
	if err != nil {
		srv.log(ctx).Warn("Provider code exchange failed", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrOAuthExchangeFailed, "complete auth")
	}
	if !identity.EmailVerified {
		return nil, errors.Wrap(domainerrors.ErrOAuthExchangeFailed, "provider email not verified")
	}

	email := normalizeEmail(identity.Email)
	domain := emailDomain(email)
	if !strings.EqualFold(domain, srv.cfg.CompanyDomain) {
		srv.log(ctx).Warn("Federated login from disallowed domain", slog.String("domain", domain), slog.String("role", pending.Role.String()))

		return nil, errors.Wrap(domainerrors.ErrOAuthDomainNotAllowed, "complete auth")
	}

	var (
		resolved       *entity.User
		isNewUser      bool
		linkedExisting bool
	)
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()
		linkRepo := repoFactory.NewProviderLinkRepository()

		user, err := userRepo.FindByEmail(ctx, email)
		if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(err, "failed to find user by email")
		}

		now := time.Now()
		if err == nil {
			// Role check comes before any link is created: an account of a
			// different role must fail without leaving a link behind.
			if user.Role != pending.Role {
				return errors.Wrap(domainerrors.ErrOAuthRoleMismatch, "complete auth")
			}
			if err := accountStatusError(user); err != nil {
				return err
			}

			existing, err := linkRepo.FindByProviderSubject(ctx, identity.Provider, identity.Subject)
			switch {
			case errors.Is(err, repository.ErrProviderLinkNotFound):
				if err := linkRepo.Create(ctx, newProviderLink(user.ID, identity, now)); err != nil {
					return errors.Wrap(err, "failed to link provider")
				}
				linkedExisting = true
			case err != nil:
				return errors.Wrap(err, "failed to find provider link")
			case existing.UserID != user.ID:
				return errors.Wrap(domainerrors.ErrProviderAlreadyLinked, "complete auth")
			}

			if err := userRepo.UpdateLastLogin(ctx, user.ID, now, input.IPAddress); err != nil {
				return errors.Wrap(err, "failed to update last login")
			}
			resolved = user

			return nil
		}

		// First login: provision the account and its link atomically.
		created := newFederatedUser(identity, pending.Role, email, domain, now)
		if err := userRepo.Create(ctx, created); err != nil {
			return errors.Wrap(err, "failed to create federated user")
		}
		if err := linkRepo.Create(ctx, newProviderLink(created.ID, identity, now)); err != nil {
			return errors.Wrap(err, "failed to create provider link")
		}

		resolved = created
		isNewUser = true

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute federated resolution transaction")
	}

	// Federated logins never get a remember-me session.
	session, err := srv.sessions.Create(ctx, usecase.CreateSessionInput{
		UserID:    resolved.ID,
		Remember:  false,
		UserAgent: input.UserAgent,
		IPAddress: input.IPAddress,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session after federated login")
	}

	switch {
	case isNewUser:
		subject := "Your account has been created"
		body := fmt.Sprintf("Welcome %s, your %s account is ready.", resolved.FullName(), pending.Role.String())
		srv.notify(ctx, email, subject, body)
	case linkedExisting:
		// Binding a new sign-in method to an existing account is something
		// the owner should hear about.
		subject := "A new sign-in method was linked to your account"
		body := fmt.Sprintf("Your account can now sign in with %s. If this was not you, contact your administrator.", srv.provider.Provider().String())
		srv.notify(ctx, email, subject, body)
	}

	srv.log(ctx).Info("Federated login completed",
		slog.Any("userID", resolved.ID),
		slog.String("role", resolved.Role.String()),
		slog.Bool("isNewUser", isNewUser),
		slog.Bool("linkedExisting", linkedExisting))

	return &usecase.CompleteAuthOutput{
		Session:        session,
		User:           resolved,
		IsNewUser:      isNewUser,
		LinkedExisting: linkedExisting,
	}, nil
}

// notify sends an informational account notice. The login has already
// committed, so delivery failures are logged and swallowed.
func (srv *oauthService) notify(ctx context.Context, email, subject, body string) {
	if err := srv.mailer.SendAccountNotice(ctx, email, subject, body); err != nil {
		srv.log(ctx).Warn("Failed to send account notice", slog.String("email", email), slog.Any("error", err))
	}
}

// newFederatedUser builds an account from a verified provider identity.
func newFederatedUser(identity *service.OAuthUser, role entity.Role, email, domain string, now time.Time) *entity.User {
	verifiedAt := now

	return &entity.User{
		ID:              uuid.New(),
		Email:           email,
		FirstName:       identity.GivenName,
		LastName:        identity.FamilyName,
		Role:            role,
		Status:          entity.StatusActive,
		EmailVerified:   true,
		EmailVerifiedAt: &verifiedAt,
		ProfileImage:    identity.Picture,
		CompanyEmail:    email,
		CompanyDomain:   domain,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func newProviderLink(userID uuid.UUID, identity *service.OAuthUser, now time.Time) *entity.ProviderLink {
	return &entity.ProviderLink{
		ID:             uuid.New(),
		UserID:         userID,
		Provider:       identity.Provider,
		ProviderUserID: identity.Subject,
		Email:          identity.Email,
		Name:           strings.TrimSpace(identity.GivenName + " " + identity.FamilyName),
		Picture:        identity.Picture,
		CreatedAt:      now,
	}
}

func emailDomain(email string) string {
	if at := strings.LastIndex(email, "@"); at >= 0 {
		return email[at+1:]
	}

	return ""
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "rand.Read")
	}

	return hex.EncodeToString(buf), nil
}
