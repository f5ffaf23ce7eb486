package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mageytel/mageypack-service/internal/config"
	"github.com/mageytel/mageypack-service/internal/middleware"
	"github.com/mageytel/mageypack-service/internal/model"
	"github.com/mageytel/mageypack-service/internal/repository"
	"github.com/mageytel/mageypack-service/internal/utils"
)

// UserStore is the user lookup surface the auth endpoints need.  The
// user repository satisfies it; tests plug in fakes.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// SessionStore is the session persistence surface of the auth
// endpoints.
type SessionStore interface {
	Create(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	DeleteByHash(ctx context.Context, tokenHash string) error
	LookupUser(ctx context.Context, tokenHash string) (model.User, error)
}

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    UserStore
	Sessions SessionStore
}

func NewAuthHandler(cfg config.Config, u UserStore, s SessionStore) *AuthHandler {
	if u == nil || s == nil {
		panic("nil store passed to NewAuthHandler")
	}
	return &AuthHandler{Cfg: cfg, Users: u, Sessions: s}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// apiError matches the error envelope the existing clients parse.
type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func errResp(message, code string) echo.Map {
	return echo.Map{"success": false, "error": apiError{Message: message, Code: code}}
}

// Login verifies credentials with a bcrypt comparison, creates a
// persisted 24h session and hands the raw token to the client in the
// session_token cookie.  Credential failures are indistinguishable
// (unknown email vs wrong password) on purpose.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errResp("Email and password are required", "MISSING_CREDENTIALS"))
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, errResp("Email and password are required", "MISSING_CREDENTIALS"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, errResp("Invalid credentials", "INVALID_CREDENTIALS"))
		}
		log.Printf("login: query user %q failed: %v", req.Email, err)
		return c.JSON(http.StatusInternalServerError, errResp("An unexpected error occurred during login", "INTERNAL_SERVER_ERROR"))
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, errResp("Invalid credentials", "INVALID_CREDENTIALS"))
	}

	tok := utils.NewSessionToken(h.Cfg.SessionTTLHours)
	if err := h.Sessions.Create(ctx, u.ID, utils.HashSessionRaw(tok.Raw), tok.Exp); err != nil {
		log.Printf("login: save session for user %d failed: %v", u.ID, err)
		return c.JSON(http.StatusInternalServerError, errResp("An unexpected error occurred during login", "INTERNAL_SERVER_ERROR"))
	}

	c.SetCookie(h.sessionCookie(tok.Raw, h.Cfg.SessionTTLHours*3600))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Login successful"})
}

// Logout deletes the session row behind the cookie token, if any, and
// clears the cookie.  Logging out without a session still succeeds.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if cookie, err := c.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.Sessions.DeleteByHash(ctx, utils.HashSessionRaw(cookie.Value)); err != nil {
			log.Printf("logout: delete session failed: %v", err)
			return c.JSON(http.StatusInternalServerError, errResp("An unexpected error occurred during logout", "INTERNAL_SERVER_ERROR"))
		}
	}

	c.SetCookie(h.sessionCookie("", -1)) // Max-Age<0 clears the cookie
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Logout successful"})
}

// CheckSession reports whether the cookie resolves to a live session.
// Unlike the guarded endpoints this never 500s the UI: any resolution
// failure reads as "not authenticated".
func (h *AuthHandler) CheckSession(c echo.Context) error {
	cookie, err := c.Cookie(middleware.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"isAuthenticated": false})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Sessions.LookupUser(ctx, utils.HashSessionRaw(cookie.Value)); err != nil {
		if !errors.Is(err, repository.ErrNoSession) {
			log.Printf("check-session: lookup failed: %v", err)
		}
		return c.JSON(http.StatusUnauthorized, echo.Map{"isAuthenticated": false})
	}
	return c.JSON(http.StatusOK, echo.Map{"isAuthenticated": true})
}

// sessionCookie builds the session_token cookie with the contract the
// clients expect: HttpOnly, Path=/, SameSite=Lax, Max-Age in seconds.
func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.Cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
