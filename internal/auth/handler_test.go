package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/stockdesk/stockdesk/internal/platform/store"
)

func newAuthRouter(t *testing.T) (http.Handler, *fixture) {
	t.Helper()
	f := newFixture(t, store.NewMemoryStore())
	h := NewHandler(nil, f.service)
	r := chi.NewRouter()
	r.Route("/auth", h.MountRoutes)
	return r, f
}

func login(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("User-Agent", "curl/8.5.0")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleLoginAndSession(t *testing.T) {
	router, _ := newAuthRouter(t)

	rec := login(t, router, `{"email":"admin@company.com","password":"admin123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var out sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	require.Equal(t, "Admin User", out.User.Name)
	require.Contains(t, out.Permissions, "logs.clear")

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+out.Token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "admin@company.com")

	req = httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+out.Token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+out.Token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleLoginRejectsBadCredentials(t *testing.T) {
	router, f := newAuthRouter(t)

	rec := login(t, router, `{"email":"admin@company.com","password":"nope"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "Invalid credentials")

	rec = login(t, router, `{"email":"admin@company.com"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	logs, err := f.writer.Activity(t.Context())
	require.NoError(t, err)
	require.Empty(t, logs)
}

func TestRequireSessionRejectsMissingToken(t *testing.T) {
	router, _ := newAuthRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/session", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req.Header.Set("Authorization", "Basic YWRtaW46YWRtaW4=")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTokenIssuerRejectsWeakSecret(t *testing.T) {
	_, err := NewTokenIssuer("short", 0)
	require.ErrorIs(t, err, ErrWeakSecretKey)
	_, err = NewTokenIssuer(testSecret, 0)
	require.ErrorIs(t, err, ErrInvalidTTL)
}
