package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mageytel/mageypack-service/internal/config"
	"github.com/mageytel/mageypack-service/internal/middleware"
	"github.com/mageytel/mageypack-service/internal/model"
	"github.com/mageytel/mageypack-service/internal/repository"
	"github.com/mageytel/mageypack-service/internal/utils"
)

type fakeUserStore struct {
	users map[string]model.User
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	u, ok := f.users[email]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

type fakeSessionStore struct {
	created map[string]uint64 // token hash -> user id
	deleted []string
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{created: map[string]uint64{}}
}

func (f *fakeSessionStore) Create(_ context.Context, userID uint64, tokenHash string, _ time.Time) error {
	f.created[tokenHash] = userID
	return nil
}

func (f *fakeSessionStore) DeleteByHash(_ context.Context, tokenHash string) error {
	f.deleted = append(f.deleted, tokenHash)
	return nil
}

func (f *fakeSessionStore) LookupUser(_ context.Context, tokenHash string) (model.User, error) {
	if uid, ok := f.created[tokenHash]; ok {
		return model.User{ID: uid}, nil
	}
	return model.User{}, repository.ErrNoSession
}

func newAuthFixture(t *testing.T) (*AuthHandler, *fakeSessionStore) {
	t.Helper()
	hash, err := utils.HashPassword("secret", 4)
	require.NoError(t, err)
	users := &fakeUserStore{users: map[string]model.User{
		"ops@example.com": {ID: 1, Email: "ops@example.com", PasswordHash: hash},
	}}
	sessions := newFakeSessionStore()
	return NewAuthHandler(config.Config{SessionTTLHours: 24}, users, sessions), sessions
}

func callAuth(t *testing.T, h echo.HandlerFunc, method, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/auth", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

// authEnvelope mirrors the error envelope of the auth endpoints.
type authEnvelope struct {
	Success bool `json:"success"`
	Error   struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) authEnvelope {
	t.Helper()
	var env authEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func sessionCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.SessionCookieName {
			return ck
		}
	}
	t.Fatalf("no %s cookie in response", middleware.SessionCookieName)
	return nil
}

func TestLoginSetsSessionCookie(t *testing.T) {
	h, sessions := newAuthFixture(t)

	rec := callAuth(t, h.Login, http.MethodPost, `{"email":"ops@example.com","password":"secret"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	ck := sessionCookieFrom(t, rec)
	assert.NotEmpty(t, ck.Value)
	assert.True(t, ck.HttpOnly)
	assert.Equal(t, "/", ck.Path)
	assert.Equal(t, 86400, ck.MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)

	// Only the hash of the cookie token is persisted.
	hash := utils.HashSessionRaw(ck.Value)
	assert.Equal(t, uint64(1), sessions.created[hash])
	_, rawStored := sessions.created[ck.Value]
	assert.False(t, rawStored)
}

func TestLoginMissingCredentials(t *testing.T) {
	h, _ := newAuthFixture(t)

	rec := callAuth(t, h.Login, http.MethodPost, `{"email":"","password":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "MISSING_CREDENTIALS", env.Error.Code)
	assert.Equal(t, "Email and password are required", env.Error.Message)
}

func TestLoginInvalidCredentialsAreIndistinguishable(t *testing.T) {
	h, sessions := newAuthFixture(t)

	wrongPass := callAuth(t, h.Login, http.MethodPost, `{"email":"ops@example.com","password":"nope"}`)
	unknownEmail := callAuth(t, h.Login, http.MethodPost, `{"email":"ghost@example.com","password":"secret"}`)

	for _, rec := range []*httptest.ResponseRecorder{wrongPass, unknownEmail} {
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.False(t, env.Success)
		assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)
	}
	// Unknown email and wrong password produce byte-identical bodies.
	assert.Equal(t, wrongPass.Body.String(), unknownEmail.Body.String())
	assert.Empty(t, sessions.created)
}

func TestLoginNormalizesEmail(t *testing.T) {
	h, sessions := newAuthFixture(t)

	rec := callAuth(t, h.Login, http.MethodPost, `{"email":"  OPS@Example.COM ","password":"secret"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, sessions.created, 1)
}

func TestLogoutDeletesSessionAndClearsCookie(t *testing.T) {
	h, sessions := newAuthFixture(t)

	raw := "some-session-token"
	rec := callAuth(t, h.Logout, http.MethodPost, "", &http.Cookie{Name: middleware.SessionCookieName, Value: raw})
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, sessions.deleted, 1)
	assert.Equal(t, utils.HashSessionRaw(raw), sessions.deleted[0])

	ck := sessionCookieFrom(t, rec)
	assert.Empty(t, ck.Value)
	assert.Negative(t, ck.MaxAge)
}

func TestLogoutWithoutSessionSucceeds(t *testing.T) {
	h, sessions := newAuthFixture(t)

	rec := callAuth(t, h.Logout, http.MethodPost, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, sessions.deleted)
}

func TestCheckSession(t *testing.T) {
	h, sessions := newAuthFixture(t)

	raw := "live-token"
	sessions.created[utils.HashSessionRaw(raw)] = 1

	live := callAuth(t, h.CheckSession, http.MethodGet, "", &http.Cookie{Name: middleware.SessionCookieName, Value: raw})
	assert.Equal(t, http.StatusOK, live.Code)
	assert.JSONEq(t, `{"isAuthenticated":true}`, live.Body.String())

	anon := callAuth(t, h.CheckSession, http.MethodGet, "")
	assert.Equal(t, http.StatusUnauthorized, anon.Code)
	assert.JSONEq(t, `{"isAuthenticated":false}`, anon.Body.String())

	stale := callAuth(t, h.CheckSession, http.MethodGet, "", &http.Cookie{Name: middleware.SessionCookieName, Value: "revoked"})
	assert.Equal(t, http.StatusUnauthorized, stale.Code)
	assert.JSONEq(t, `{"isAuthenticated":false}`, stale.Body.String())
}
