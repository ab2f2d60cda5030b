package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"pentrack/config"
	"pentrack/internal/domain/entity"
	domainerrors "pentrack/internal/domain/errors"
	infraauth "pentrack/internal/infra/auth"
	"pentrack/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Auth: &config.AuthConfig{
			SessionTTL:      24 * time.Hour,
			RememberTTL:     30 * 24 * time.Hour,
			CodeLength:      6,
			CodeTTL:         10 * time.Minute,
			CodeMaxAttempts: 3,
			CodeRateWindow:  5 * time.Minute,
			CodeRateMax:     3,
			StateTTL:        5 * time.Minute,
			CompanyDomain:   "pentrack.io",
			WSTokenTTL:      5 * time.Minute,
		},
	}
}

type authEnv struct {
	store    *memStore
	mailer   *fakeMailer
	cfg      *config.Config
	sessions usecase.SessionUsecase
	auth     usecase.AuthUsecase
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newMemStore()
	mailer := &fakeMailer{}
	cfg := testConfig()
	txManager := &fakeTxManager{store: store}

	sessions := NewSessionService(SessionServiceParams{
		TxManager:   txManager,
		SessionRepo: &memSessionRepo{store: store},
		UserRepo:    &memUserRepo{store: store},
		Config:      cfg,
		Logger:      logger,
	})

	auth := NewAuthService(AuthServiceParams{
		TxManager:    txManager,
		UserRepo:     &memUserRepo{store: store},
		CodeRepo:     &memCodeRepo{store: store},
		Hasher:       infraauth.NewSHA256Hasher(),
		Generator:    infraauth.NewNumericGenerator(cfg.Auth.CodeLength),
		Mailer:       mailer,
		TokenService: &fakeTokenService{},
		Sessions:     sessions,
		Config:       cfg,
		Logger:       logger,
	})

	return &authEnv{store: store, mailer: mailer, cfg: cfg, sessions: sessions, auth: auth}
}

func activeUser(role entity.Role) *entity.User {
	now := time.Now()

	return &entity.User{
		ID:        uuid.New(),
		Email:     "tester@pentrack.io",
		FirstName: "Ada",
		LastName:  "Chen",
		Role:      role,
		Status:    entity.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestAuthService_RequestLoginCode_Success(t *testing.T) {
	env := newAuthEnv(t)
	user := activeUser(entity.RoleClient)
	env.store.addUser(user)

	output, err := env.auth.RequestLoginCode(context.Background(), usecase.RequestCodeInput{Email: "Tester@PenTrack.io "})

	require.NoError(t, err)
	assert.Equal(t, 600, output.ExpiresIn)

	sent, ok := env.mailer.lastCode()
	require.True(t, ok)
	assert.Equal(t, "tester@pentrack.io", sent.to)
	assert.Len(t, sent.code, 6)

	record, err := (&memCodeRepo{store: env.store}).FindLatestUnconsumed(context.Background(), "tester@pentrack.io", entity.PurposeLogin)
	require.NoError(t, err)
	assert.NotEqual(t, sent.code, record.CodeHash, "plaintext must never be stored")
	require.NotNil(t, record.UserID)
	assert.Equal(t, user.ID, *record.UserID)
}

func TestAuthService_RequestLoginCode_UnknownEmail(t *testing.T) {
	env := newAuthEnv(t)

	_, err := env.auth.RequestLoginCode(context.Background(), usecase.RequestCodeInput{Email: "nobody@pentrack.io"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}

func TestAuthService_RequestLoginCode_FederatedOnlyRole(t *testing.T) {
	env := newAuthEnv(t)
	user := activeUser(entity.RolePentester)
	env.store.addUser(user)

	_, err := env.auth.RequestLoginCode(context.Background(), usecase.RequestCodeInput{Email: user.Email})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrCodeNotAllowedForRole))
	_, ok := env.mailer.lastCode()
	assert.False(t, ok)
}

func TestAuthService_RequestLoginCode_SuspendedAccount(t *testing.T) {
	env := newAuthEnv(t)
	user := activeUser(entity.RoleClient)
	user.Status = entity.StatusSuspended
	env.store.addUser(user)

	_, err := env.auth.RequestLoginCode(context.Background(), usecase.RequestCodeInput{Email: user.Email})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrAccountSuspended))
}

func TestAuthService_RequestLoginCode_RateLimited(t *testing.T) {
	env := newAuthEnv(t)
	user := activeUser(entity.RoleClient)
	env.store.addUser(user)

	for i := 0; i < env.cfg.Auth.CodeRateMax; i++ {
		_, err := env.auth.RequestLoginCode(context.Background(), usecase.RequestCodeInput{Email: user.Email})
		require.NoError(t, err)
	}

	_, err := env.auth.RequestLoginCode(context.Background(), usecase.RequestCodeInput{Email: user.Email})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrCodeRateLimited))
}

func TestAuthService_RequestLoginCode_InvalidatesPreviousCode(t *testing.T) {
	env := newAuthEnv(t)
	user := activeUser(entity.RoleClient)
	env.store.addUser(user)

	_, err := env.auth.RequestLoginCode(context.Background(), usecase.RequestCodeInput{Email: user.Email})
	require.NoError(t, err)
	first, ok := env.mailer.lastCode()
	require.True(t, ok)

	_, err = env.auth.RequestLoginCode(context.Background(), usecase.RequestCodeInput{Email: user.Email})
	require.NoError(t, err)

	// The first code is gone; verifying it reads the fresh record and misses.
	_, err = env.auth.VerifyLoginCode(context.Background(), usecase.VerifyCodeInput{Email: user.Email, Code: first.code})
	if err == nil {
		// Six-digit codes can collide; only a matching replacement passes.
		second, _ := env.mailer.lastCode()
		assert.Equal(t, second.code, first.code)

		return
	}
	assert.True(t, errors.Is(err, domainerrors.ErrCodeInvalid))
}

func TestAuthService_RequestLoginCode_MailFailureRollsBack(t *testing.T) {
	env := newAuthEnv(t)
	user := activeUser(entity.RoleClient)
	env.store.addUser(user)
	env.mailer.codeErr = errors.New("smtp unreachable")

	_, err := env.auth.RequestLoginCode(context.Background(), usecase.RequestCodeInput{Email: user.Email})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrEmailDeliveryFailed))

	// The code record must not survive the failed delivery.
	_, err = (&memCodeRepo{store: env.store}).FindLatestUnconsumed(context.Background(), user.Email, entity.PurposeLogin)
	assert.Error(t, err)
}

func TestAuthService_VerifyLoginCode_Success(t *testing.T) {
	env := newAuthEnv(t)
	user := activeUser(entity.RoleClient)
	env.store.addUser(user)

	_, err := env.auth.RequestLoginCode(context.Background(), usecase.RequestCodeInput{Email: user.Email})
	require.NoError(t, err)
	sent, ok := env.mailer.lastCode()
	require.True(t, ok)

	output, err := env.auth.VerifyLoginCode(context.Background(), usecase.VerifyCodeInput{
		Email:     user.Email,
		Code:      sent.code,
		UserAgent: "test-agent",
		IPAddress: "203.0.113.9",
	})

	require.NoError(t, err)
	assert.Equal(t, user.ID, output.User.ID)
	require.NotNil(t, output.Session)
	assert.Len(t, output.Session.Token, 64)
	assert.False(t, output.Session.Remember)
	assert.WithinDuration(t, time.Now().Add(env.cfg.Auth.SessionTTL), output.Session.ExpiresAt, 5*time.Second)

	stored, err := (&memUserRepo{store: env.store}).FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)
	assert.Equal(t, "203.0.113.9", stored.LastLoginIP)
}

func TestAuthService_VerifyLoginCode_RememberExtendsSession(t *testing.T) {
	env := newAuthEnv(t)
	user := activeUser(entity.RoleClient)
	env.store.addUser(user)

	_, err := env.auth.RequestLoginCode(context.Background(), usecase.RequestCodeInput{Email: user.Email})
	require.NoError(t, err)
	sent, _ := env.mailer.lastCode()

	output, err := env.auth.VerifyLoginCode(context.Background(), usecase.VerifyCodeInput{
		Email:    user.Email,
		Code:     sent.code,
		Remember: true,
	})

	require.NoError(t, err)
	assert.True(t, output.Session.Remember)
	assert.WithinDuration(t, time.Now().Add(env.cfg.Auth.RememberTTL), output.Session.ExpiresAt, 5*time.Second)
}

func TestAuthService_VerifyLoginCode_NoPendingCode(t *testing.T) {
	env := newAuthEnv(t)

	_, err := env.auth.VerifyLoginCode(context.Background(), usecase.VerifyCodeInput{Email: "tester@pentrack.io", Code: "123456"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrCodeInvalid))
}

func TestAuthService_VerifyLoginCode_WrongCodeCountsAttempts(t *testing.T) {
	env := newAuthEnv(t)
	user := activeUser(entity.RoleClient)
	env.store.addUser(user)

	_, err := env.auth.RequestLoginCode(context.Background(), usecase.RequestCodeInput{Email: user.Email})
	require.NoError(t, err)
	sent, _ := env.mailer.lastCode()
	wrong := "000000"
	if wrong == sent.code {
		wrong = "000001"
	}

	for i := 0; i < env.cfg.Auth.CodeMaxAttempts; i++ {
		_, err := env.auth.VerifyLoginCode(context.Background(), usecase.VerifyCodeInput{Email: user.Email, Code: wrong})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domainerrors.ErrCodeInvalid))

		// Each miss is durable; a failed verification must not undo it.
		record, err := (&memCodeRepo{store: env.store}).FindLatestUnconsumed(context.Background(), user.Email, entity.PurposeLogin)
		require.NoError(t, err)
		assert.Equal(t, i+1, record.Attempts)
	}

	// The cap is reached: even the genuine code is refused and the record dropped.
	_, err = env.auth.VerifyLoginCode(context.Background(), usecase.VerifyCodeInput{Email: user.Email, Code: sent.code})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrCodeMaxAttempts))

	_, err = env.auth.VerifyLoginCode(context.Background(), usecase.VerifyCodeInput{Email: user.Email, Code: sent.code})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrCodeInvalid))
}

func TestAuthService_VerifyLoginCode_ExpiredCodeDeleted(t *testing.T) {
	env := newAuthEnv(t)
	user := activeUser(entity.RoleClient)
	env.store.addUser(user)

	userID := user.ID
	codeRepo := &memCodeRepo{store: env.store}
	hasher := infraauth.NewSHA256Hasher()
	require.NoError(t, codeRepo.Create(context.Background(), &entity.OneTimeCode{
		ID:        uuid.New(),
		Email:     user.Email,
		CodeHash:  hasher.Hash("123456"),
		Purpose:   entity.PurposeLogin,
		ExpiresAt: time.Now().Add(-time.Minute),
		UserID:    &userID,
		CreatedAt: time.Now().Add(-11 * time.Minute),
	}))

	_, err := env.auth.VerifyLoginCode(context.Background(), usecase.VerifyCodeInput{Email: user.Email, Code: "123456"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrCodeExpired))

	// Deleted on sight: the next attempt finds nothing pending.
	_, err = env.auth.VerifyLoginCode(context.Background(), usecase.VerifyCodeInput{Email: user.Email, Code: "123456"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrCodeInvalid))
}

func TestAuthService_VerifyLoginCode_SingleUse(t *testing.T) {
	env := newAuthEnv(t)
	user := activeUser(entity.RoleClient)
	env.store.addUser(user)

	_, err := env.auth.RequestLoginCode(context.Background(), usecase.RequestCodeInput{Email: user.Email})
	require.NoError(t, err)
	sent, _ := env.mailer.lastCode()

	_, err = env.auth.VerifyLoginCode(context.Background(), usecase.VerifyCodeInput{Email: user.Email, Code: sent.code})
	require.NoError(t, err)

	_, err = env.auth.VerifyLoginCode(context.Background(), usecase.VerifyCodeInput{Email: user.Email, Code: sent.code})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrCodeInvalid))
}

func TestAuthService_VerifyLoginCode_SuspendedAccount(t *testing.T) {
	env := newAuthEnv(t)
	user := activeUser(entity.RoleClient)
	env.store.addUser(user)

	_, err := env.auth.RequestLoginCode(context.Background(), usecase.RequestCodeInput{Email: user.Email})
	require.NoError(t, err)
	sent, _ := env.mailer.lastCode()

	user.Status = entity.StatusSuspended
	env.store.addUser(user)

	_, err = env.auth.VerifyLoginCode(context.Background(), usecase.VerifyCodeInput{Email: user.Email, Code: sent.code})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrAccountSuspended))
}

func TestAuthService_CurrentUser(t *testing.T) {
	env := newAuthEnv(t)
	user := activeUser(entity.RoleClient)
	env.store.addUser(user)

	loaded, err := env.auth.CurrentUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, loaded.Email)

	_, err = env.auth.CurrentUser(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}

func TestAuthService_WebSocketToken(t *testing.T) {
	env := newAuthEnv(t)
	user := activeUser(entity.RoleClient)
	env.store.addUser(user)

	output, err := env.auth.WebSocketToken(context.Background(), user.ID)

	require.NoError(t, err)
	assert.NotEmpty(t, output.Token)
	assert.Equal(t, int(env.cfg.Auth.WSTokenTTL/time.Second), output.ExpiresIn)
}
