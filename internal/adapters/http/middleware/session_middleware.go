package middleware

import (
	"errors"

	"buildease/internal/adapters/persistence/models"
	"buildease/internal/config"
	"buildease/internal/core/domain"
	"buildease/internal/core/services"
	"buildease/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by the session middleware
const (
	LocalSessionID = "sessionID"
	LocalUser      = "user"
)

// SessionAuth resolves the session cookie to an identity snapshot and makes
// it available to handlers. The payload snapshot carries the user id; the
// authoritative row is re-fetched so role/status changes apply without
// re-login. Requests without a live session are rejected.
func SessionAuth(store *services.SessionStore, auth *services.AuthService, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, sid, err := resolve(c, store, auth, cfg)
		if err != nil {
			return response.InternalServerError(c, "Session lookup failed")
		}
		if user == nil {
			return response.Unauthorized(c, "Login required")
		}

		c.Locals(LocalSessionID, sid)
		c.Locals(LocalUser, user)

		return c.Next()
	}
}

// OptionalSession resolves the session if present but lets the request
// through either way (used by /auth/me)
func OptionalSession(store *services.SessionStore, auth *services.AuthService, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, sid, err := resolve(c, store, auth, cfg)
		if err != nil {
			return response.InternalServerError(c, "Session lookup failed")
		}
		if user != nil {
			c.Locals(LocalSessionID, sid)
			c.Locals(LocalUser, user)
		}
		return c.Next()
	}
}

// RequireBoss allows only the boss role past this point
func RequireBoss() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return response.Unauthorized(c, "Login required")
		}
		if user.Role != string(domain.RoleBoss) {
			return response.Forbidden(c, "Boss role required")
		}
		return c.Next()
	}
}

// CurrentUser returns the resolved identity, nil when unauthenticated
func CurrentUser(c *fiber.Ctx) *models.UserResponse {
	user, _ := c.Locals(LocalUser).(*models.UserResponse)
	return user
}

// SessionID returns the resolved session id, empty when unauthenticated
func SessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(LocalSessionID).(string)
	return sid
}

// resolve reads the cookie, loads the session payload and re-fetches the
// authoritative user row by the snapshot's id
func resolve(c *fiber.Ctx, store *services.SessionStore, auth *services.AuthService, cfg *config.Config) (*models.UserResponse, string, error) {
	sid := c.Cookies(cfg.Cookie.Name)
	if sid == "" {
		return nil, "", nil
	}

	payload, err := store.Get(c.Context(), sid)
	if err != nil {
		return nil, "", err
	}
	if payload == nil || payload.User == nil {
		return nil, "", nil
	}

	user, err := auth.GetByID(c.Context(), payload.User.ID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			// The snapshot outlived the user row; treat as no session
			return nil, "", nil
		}
		return nil, "", err
	}

	return user, sid, nil
}
