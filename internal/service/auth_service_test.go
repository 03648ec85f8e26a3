package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			PasswordResetTTL:      time.Hour,
			PasswordMinLength:     6,
			BcryptCost:            bcrypt.MinCost,
		},
	}
}

func newTestAuthService(t *testing.T) (*AuthService, repository.UserRepository, events.Dispatcher) {
	t.Helper()
	store, err := persistence.NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	users := repository.NewUserRepository(store)
	dispatcher := events.NewInMemoryDispatcher()
	return NewAuthService(testConfig(), users, dispatcher), users, dispatcher
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	user, token, exp, err := svc.Register(ctx, "alice", "secret99", "secret99", domain.RoleUser)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.NotEmpty(t, token, "registration auto-logs-in")
	assert.True(t, exp.After(time.Now()))
	assert.NotEqual(t, "secret99", user.PasswordHash)

	loggedIn, token, _, err := svc.Login(ctx, "alice", "secret99")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, token)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc, users, _ := newTestAuthService(t)
	ctx := context.Background()

	t.Run("password mismatch creates no record", func(t *testing.T) {
		_, _, _, err := svc.Register(ctx, "bob", "secret99", "different", domain.RoleUser)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, "PASSWORD_MISMATCH"))

		exists, err := users.Exists(ctx, "bob")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("short password creates no record", func(t *testing.T) {
		_, _, _, err := svc.Register(ctx, "bob", "tiny", "tiny", domain.RoleUser)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, "PASSWORD_TOO_SHORT"))

		exists, err := users.Exists(ctx, "bob")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, _, _, err := svc.Register(ctx, "carol", "secret99", "secret99", domain.RoleUser)
		require.NoError(t, err)

		_, _, _, err = svc.Register(ctx, "carol", "secret99", "secret99", domain.RoleUser)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, "DUPLICATE_USERNAME"))
	})
}

func TestAuthService_LoginInvalidCredentials(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, "alice", "secret99", "secret99", domain.RoleUser)
	require.NoError(t, err)

	t.Run("unknown user", func(t *testing.T) {
		_, _, _, err := svc.Login(ctx, "nobody", "secret99")
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, "INVALID_CREDENTIALS"))
	})

	t.Run("wrong password reports the same failure", func(t *testing.T) {
		_, _, _, err := svc.Login(ctx, "alice", "wrongpass")
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, "INVALID_CREDENTIALS"))
	})
}

func TestAuthService_PasswordResetFlow(t *testing.T) {
	svc, users, dispatcher := newTestAuthService(t)
	ctx := context.Background()

	// The reset token is delivered out-of-band; capture it off the event.
	var delivered events.PasswordResetRequestedPayload
	dispatcher.Subscribe(events.EventPasswordResetRequested, func(_ context.Context, e events.Event) error {
		delivered = e.Payload.(events.PasswordResetRequestedPayload)
		return nil
	})

	user, _, _, err := svc.Register(ctx, "alice", "secret99", "secret99", domain.RoleUser)
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(ctx, "alice"))
	require.NotEmpty(t, delivered.Token)
	assert.Equal(t, user.ID, delivered.UserID)

	stored, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ResetToken)
	assert.Equal(t, delivered.Token, *stored.ResetToken)
	require.NotNil(t, stored.ResetTokenExpiry)

	require.NoError(t, svc.ConfirmPasswordReset(ctx, delivered.Token, "newpass123"))

	stored, err = users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ResetToken, "token fields cleared on consumption")
	assert.Nil(t, stored.ResetTokenExpiry)

	_, _, _, err = svc.Login(ctx, "alice", "newpass123")
	assert.NoError(t, err)

	_, _, _, err = svc.Login(ctx, "alice", "secret99")
	assert.Error(t, err, "old password no longer works")

	err = svc.ConfirmPasswordReset(ctx, delivered.Token, "anotherpass1")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "INVALID_OR_EXPIRED_TOKEN"), "token is single-use")
}

func TestAuthService_PasswordResetFailures(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	t.Run("unknown user", func(t *testing.T) {
		err := svc.RequestPasswordReset(ctx, "nouser")
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, "USER_NOT_FOUND"))
	})

	t.Run("garbage token", func(t *testing.T) {
		err := svc.ConfirmPasswordReset(ctx, "garbage", "newpass123")
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, "INVALID_OR_EXPIRED_TOKEN"))
	})
}

func TestAuthService_ListUsers(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	adminUser, _, _, err := svc.Register(ctx, "root", "secret99", "secret99", domain.RoleAdmin)
	require.NoError(t, err)
	regular, _, _, err := svc.Register(ctx, "alice", "secret99", "secret99", domain.RoleUser)
	require.NoError(t, err)

	listed, err := svc.ListUsers(ctx, auth.IdentityOf(adminUser))
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	_, err = svc.ListUsers(ctx, auth.IdentityOf(regular))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	_, err = svc.ListUsers(ctx, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestAuthService_Logout(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	assert.NoError(t, svc.Logout(context.Background()))
}
