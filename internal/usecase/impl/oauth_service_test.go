package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"pentrack/internal/domain/entity"
	domainerrors "pentrack/internal/domain/errors"
	"pentrack/internal/domain/repository"
	"pentrack/internal/domain/service"
	"pentrack/internal/infra/auth/statestore"
	"pentrack/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type oauthEnv struct {
	store    *memStore
	states   service.StateStore
	provider *fakeProvider
	mailer   *fakeMailer
	oauth    usecase.OAuthUsecase
}

func newOAuthEnv(t *testing.T) *oauthEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newMemStore()
	states := statestore.NewMemoryStore()
	mailer := &fakeMailer{}
	provider := &fakeProvider{identity: &service.OAuthUser{
		Subject:       "google-sub-1",
		Email:         "tester@pentrack.io",
		EmailVerified: true,
		GivenName:     "Ada",
		FamilyName:    "Chen",
		Picture:       "https://lh3.example/avatar",
		Provider:      entity.ProviderGoogle,
	}}
	txManager := &fakeTxManager{store: store}

	sessions := NewSessionService(SessionServiceParams{
		TxManager:   txManager,
		SessionRepo: &memSessionRepo{store: store},
		UserRepo:    &memUserRepo{store: store},
		Config:      testConfig(),
		Logger:      logger,
	})

	oauth := NewOAuthService(OAuthServiceParams{
		TxManager:  txManager,
		StateStore: states,
		Provider:   provider,
		Mailer:     mailer,
		Sessions:   sessions,
		Config:     testConfig(),
		Logger:     logger,
	})

	return &oauthEnv{store: store, states: states, provider: provider, mailer: mailer, oauth: oauth}
}

func (env *oauthEnv) begin(t *testing.T, role entity.Role) string {
	t.Helper()

	output, err := env.oauth.BeginAuth(context.Background(), usecase.BeginAuthInput{Role: role})
	require.NoError(t, err)

	return output.State
}

func TestOAuthService_BeginAuth_FederatedRolesOnly(t *testing.T) {
	env := newOAuthEnv(t)

	for _, role := range []entity.Role{entity.RoleClient, entity.RoleAdmin, entity.RolePartner, entity.Role("bogus")} {
		_, err := env.oauth.BeginAuth(context.Background(), usecase.BeginAuthInput{Role: role})
		require.Error(t, err, "role %s must not federate", role)
		assert.True(t, errors.Is(err, domainerrors.ErrOAuthRoleNotAllowed))
	}

	output, err := env.oauth.BeginAuth(context.Background(), usecase.BeginAuthInput{Role: entity.RolePentester})
	require.NoError(t, err)
	assert.Len(t, output.State, 64)
	assert.Contains(t, output.RedirectURL, "state="+output.State)
}

func TestOAuthService_CompleteAuth_ProvisionsNewUser(t *testing.T) {
	env := newOAuthEnv(t)
	state := env.begin(t, entity.RolePentester)

	output, err := env.oauth.CompleteAuth(context.Background(), usecase.CompleteAuthInput{
		State:     state,
		Code:      "provider-code",
		IPAddress: "203.0.113.9",
	})

	require.NoError(t, err)
	assert.True(t, output.IsNewUser)
	assert.False(t, output.LinkedExisting)
	assert.Equal(t, entity.RolePentester, output.User.Role)
	assert.Equal(t, entity.StatusActive, output.User.Status)
	assert.True(t, output.User.EmailVerified)
	assert.Equal(t, "pentrack.io", output.User.CompanyDomain)

	// Federated sessions never get the long lifetime.
	assert.False(t, output.Session.Remember)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), output.Session.ExpiresAt, 5*time.Second)

	link, err := (&memLinkRepo{store: env.store}).FindByProviderSubject(context.Background(), entity.ProviderGoogle, "google-sub-1")
	require.NoError(t, err)
	assert.Equal(t, output.User.ID, link.UserID)

	notice := env.mailer.notices
	require.Len(t, notice, 1)
	assert.Equal(t, "tester@pentrack.io", notice[0].to)
}

func TestOAuthService_CompleteAuth_LinksExistingAccount(t *testing.T) {
	env := newOAuthEnv(t)
	user := activeUser(entity.RolePentester)
	env.store.addUser(user)

	state := env.begin(t, entity.RolePentester)
	output, err := env.oauth.CompleteAuth(context.Background(), usecase.CompleteAuthInput{State: state, Code: "provider-code"})

	require.NoError(t, err)
	assert.False(t, output.IsNewUser)
	assert.True(t, output.LinkedExisting)
	assert.Equal(t, user.ID, output.User.ID)

	// Linking a sign-in method to an existing account notifies its owner.
	require.Len(t, env.mailer.notices, 1)
	assert.Equal(t, "tester@pentrack.io", env.mailer.notices[0].to)
	assert.Contains(t, env.mailer.notices[0].subject, "linked")

	// A later login rides the existing link and stays quiet.
	state = env.begin(t, entity.RolePentester)
	output, err = env.oauth.CompleteAuth(context.Background(), usecase.CompleteAuthInput{State: state, Code: "provider-code"})
	require.NoError(t, err)
	assert.False(t, output.IsNewUser)
	assert.False(t, output.LinkedExisting)
	assert.Len(t, env.mailer.notices, 1)
}

func TestOAuthService_CompleteAuth_StateSingleUse(t *testing.T) {
	env := newOAuthEnv(t)
	state := env.begin(t, entity.RolePentester)

	_, err := env.oauth.CompleteAuth(context.Background(), usecase.CompleteAuthInput{State: state, Code: "provider-code"})
	require.NoError(t, err)

	// A replayed callback finds the state already claimed.
	_, err = env.oauth.CompleteAuth(context.Background(), usecase.CompleteAuthInput{State: state, Code: "provider-code"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrOAuthStateInvalid))
}

func TestOAuthService_CompleteAuth_UnknownState(t *testing.T) {
	env := newOAuthEnv(t)

	_, err := env.oauth.CompleteAuth(context.Background(), usecase.CompleteAuthInput{State: "forged", Code: "provider-code"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrOAuthStateInvalid))
}

func TestOAuthService_CompleteAuth_ExpiredState(t *testing.T) {
	env := newOAuthEnv(t)
	env.states.Put("stale-state", service.OAuthState{
		Role:      entity.RolePentester,
		Nonce:     "nonce",
		CreatedAt: time.Now().Add(-6 * time.Minute),
	})

	_, err := env.oauth.CompleteAuth(context.Background(), usecase.CompleteAuthInput{State: "stale-state", Code: "provider-code"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrOAuthStateExpired))
}

func TestOAuthService_CompleteAuth_ExchangeFailure(t *testing.T) {
	env := newOAuthEnv(t)
	env.provider.err = errors.New("invalid_grant")
	state := env.begin(t, entity.RolePentester)

	_, err := env.oauth.CompleteAuth(context.Background(), usecase.CompleteAuthInput{State: state, Code: "bad-code"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrOAuthExchangeFailed))
}

func TestOAuthService_CompleteAuth_UnverifiedEmail(t *testing.T) {
	env := newOAuthEnv(t)
	env.provider.identity.EmailVerified = false
	state := env.begin(t, entity.RolePentester)

	_, err := env.oauth.CompleteAuth(context.Background(), usecase.CompleteAuthInput{State: state, Code: "provider-code"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrOAuthExchangeFailed))
}

func TestOAuthService_CompleteAuth_DomainNotAllowed(t *testing.T) {
	env := newOAuthEnv(t)
	env.provider.identity.Email = "tester@elsewhere.example"
	state := env.begin(t, entity.RolePentester)

	_, err := env.oauth.CompleteAuth(context.Background(), usecase.CompleteAuthInput{State: state, Code: "provider-code"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrOAuthDomainNotAllowed))
}

func TestOAuthService_CompleteAuth_RoleMismatchLeavesNoLink(t *testing.T) {
	env := newOAuthEnv(t)
	user := activeUser(entity.RoleRegionalAdmin)
	env.store.addUser(user)

	state := env.begin(t, entity.RolePentester)
	_, err := env.oauth.CompleteAuth(context.Background(), usecase.CompleteAuthInput{State: state, Code: "provider-code"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrOAuthRoleMismatch))

	_, err = (&memLinkRepo{store: env.store}).FindByProviderSubject(context.Background(), entity.ProviderGoogle, "google-sub-1")
	assert.True(t, errors.Is(err, repository.ErrProviderLinkNotFound))
}

func TestOAuthService_CompleteAuth_SubjectBoundElsewhere(t *testing.T) {
	env := newOAuthEnv(t)
	user := activeUser(entity.RolePentester)
	stranger := activeUser(entity.RolePentester)
	stranger.Email = "stranger@pentrack.io"
	env.store.addUser(user)
	env.store.addUser(stranger)

	require.NoError(t, (&memLinkRepo{store: env.store}).Create(context.Background(), &entity.ProviderLink{
		UserID:         stranger.ID,
		Provider:       entity.ProviderGoogle,
		ProviderUserID: "google-sub-1",
		Email:          stranger.Email,
	}))

	state := env.begin(t, entity.RolePentester)
	_, err := env.oauth.CompleteAuth(context.Background(), usecase.CompleteAuthInput{State: state, Code: "provider-code"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrProviderAlreadyLinked))
}

func TestOAuthService_CompleteAuth_SuspendedAccount(t *testing.T) {
	env := newOAuthEnv(t)
	user := activeUser(entity.RolePentester)
	user.Status = entity.StatusSuspended
	env.store.addUser(user)

	state := env.begin(t, entity.RolePentester)
	_, err := env.oauth.CompleteAuth(context.Background(), usecase.CompleteAuthInput{State: state, Code: "provider-code"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrAccountSuspended))
}
