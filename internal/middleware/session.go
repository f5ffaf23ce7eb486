package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mageytel/mageypack-service/internal/model"
	"github.com/mageytel/mageypack-service/internal/repository"
	"github.com/mageytel/mageypack-service/internal/utils"
)

// SessionCookieName is the cookie carrying the raw session token.
const SessionCookieName = "session_token"

// SessionResolver resolves a hashed session token to its user.  The
// session repository satisfies this; tests can plug in a fake.
type SessionResolver interface {
	LookupUser(ctx context.Context, tokenHash string) (model.User, error)
}

// SessionGuard returns an Echo middleware that authenticates requests
// via the session_token cookie.  The raw cookie value is hashed and
// resolved against the session store; absent, unknown or expired
// tokens are rejected with 401 before the handler runs.  On success
// the resolved identity is stored in the context under "user_id" and
// "user_email".  The lookup has no side effects: session expiry is
// fixed at creation time and is not extended here.
func SessionGuard(sessions SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized. Please log in."})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			u, err := sessions.LookupUser(ctx, utils.HashSessionRaw(cookie.Value))
			if err != nil {
				if errors.Is(err, repository.ErrNoSession) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized. Please log in."})
				}
				log.Printf("session guard: lookup failed: %v", err)
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session lookup failed"})
			}

			c.Set("user_id", u.ID)
			c.Set("user_email", u.Email)
			return next(c)
		}
	}
}
