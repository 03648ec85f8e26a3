package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

const identityKey = "auth_identity"

// Middleware validates bearer tokens and loads the caller's Identity. The
// user record is re-read on every request so a consumed password reset or
// role change takes effect immediately.
type Middleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewMiddleware constructs the middleware.
func NewMiddleware(tokens *TokenManager, users repository.UserRepository) *Middleware {
	return &Middleware{tokens: tokens, users: users}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	user, err := m.users.GetByID(c.Context(), claims.UserID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if user == nil {
		return apperrors.NewUnauthorized("user not found")
	}

	c.Locals(identityKey, IdentityOf(user))
	return c.Next()
}

// IdentityFromContext retrieves the authenticated caller, or nil.
func IdentityFromContext(c *fiber.Ctx) *Identity {
	val := c.Locals(identityKey)
	if val == nil {
		return nil
	}
	identity, ok := val.(*Identity)
	if !ok {
		return nil
	}
	return identity
}

// RequireCapability gates a route on a non-ownership capability.
func RequireCapability(capability Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !Authorize(IdentityFromContext(c), capability, nil) {
			return apperrors.NewPermissionDenied()
		}
		return c.Next()
	}
}
