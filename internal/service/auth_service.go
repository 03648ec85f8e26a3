package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// AuthService coordinates registration, login and password-reset flows.
// Every success transitions the caller to Authenticated by issuing a token;
// failures leave the caller Anonymous.
type AuthService struct {
	users       repository.UserRepository
	tokenMgr    *auth.TokenManager
	dispatcher  events.Dispatcher
	bcryptCost  int
	resetTTL    time.Duration
	passwordMin int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, users repository.UserRepository, dispatcher events.Dispatcher) *AuthService {
	return &AuthService{
		users:       users,
		tokenMgr:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		dispatcher:  dispatcher,
		bcryptCost:  cfg.Auth.BcryptCost,
		resetTTL:    cfg.Auth.PasswordResetTTL,
		passwordMin: cfg.Auth.PasswordMinLength,
	}
}

// Login authenticates by username and password. A missing user and a wrong
// password report the same InvalidCredentials result.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if user == nil {
		return nil, "", time.Time{}, apperrors.NewInvalidCredentials()
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewInvalidCredentials()
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Register creates a new account and logs it straight in. Validation
// failures create no record.
func (s *AuthService) Register(ctx context.Context, username, password, confirmPassword string, role domain.Role) (*domain.User, string, time.Time, error) {
	if password != confirmPassword {
		return nil, "", time.Time{}, apperrors.NewPasswordMismatch()
	}
	if len(password) < s.passwordMin {
		return nil, "", time.Time{}, apperrors.NewPasswordTooShort(s.passwordMin)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user, err := s.users.Create(ctx, username, hash, role)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	s.publish(ctx, events.Event{
		Type:    events.EventUserRegistered,
		ActorID: &user.ID,
		Payload: events.UserRegisteredPayload{
			UserID:   user.ID,
			Username: user.Username,
			Role:     user.Role,
		},
	})

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Logout transitions to Anonymous unconditionally. Tokens are stateless,
// so the server side has nothing to revoke; the client discards its copy.
func (s *AuthService) Logout(_ context.Context) error {
	return nil
}

// RequestPasswordReset attaches a single-use token with a fixed expiry to
// the user record and signals out-of-band delivery. The token is never
// returned to the requesting client.
func (s *AuthService) RequestPasswordReset(ctx context.Context, username string) error {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user == nil {
		return apperrors.NewUserNotFound()
	}

	token := uuid.NewString()
	expiry := time.Now().UTC().Add(s.resetTTL)
	user.ResetToken = &token
	user.ResetTokenExpiry = &expiry

	if _, err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.publish(ctx, events.Event{
		Type:    events.EventPasswordResetRequested,
		ActorID: &user.ID,
		Payload: events.PasswordResetRequestedPayload{
			UserID:    user.ID,
			Username:  user.Username,
			Token:     token,
			ExpiresAt: expiry,
		},
	})
	return nil
}

// ConfirmPasswordReset consumes a reset token: replaces the password hash
// and clears the token fields so the token cannot be used twice.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	user, err := s.users.FindByResetToken(ctx, token, time.Now().UTC())
	if err != nil {
		return err
	}
	if user == nil {
		return apperrors.NewInvalidOrExpiredToken()
	}
	if len(newPassword) < s.passwordMin {
		return apperrors.NewPasswordTooShort(s.passwordMin)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.ResetToken = nil
	user.ResetTokenExpiry = nil

	if _, err := s.users.Update(ctx, user); err != nil {
		return err
	}
	return nil
}

// ListUsers returns all accounts for admin user management.
func (s *AuthService) ListUsers(ctx context.Context, identity *auth.Identity) ([]domain.User, error) {
	if !auth.Authorize(identity, auth.CapManageUsers, nil) {
		return nil, apperrors.NewPermissionDenied()
	}
	return s.users.List(ctx)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
