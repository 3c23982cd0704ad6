package users

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/stockdesk/stockdesk/internal/platform/httpx"
	"github.com/stockdesk/stockdesk/internal/rbac"
	"github.com/stockdesk/stockdesk/internal/shared"
)

func newUsersRouter(t *testing.T, p shared.Principal) http.Handler {
	t.Helper()
	svc, _ := newTestService(t)
	h := NewHandler(nil, svc, rbac.Middleware{})
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(shared.ContextWithPrincipal(req.Context(), p)))
		})
	})
	r.Route("/users", h.MountRoutes)
	return r
}

func TestHandlerCreateAndList(t *testing.T) {
	router := newUsersRouter(t, admin)

	body := strings.NewReader(`{"name":"Dana","email":"dana@company.com","role":"Viewer"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users", body))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users?role=Viewer", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Users []User `json:"users"`
		Total int    `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, 2, out.Total)
}

func TestHandlerProtectedDelete(t *testing.T) {
	router := newUsersRouter(t, admin)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/users/1", nil))
	require.Equal(t, http.StatusConflict, rec.Code)

	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Equal(t, "protected_record", problem.Kind)
}

func TestHandlerRejectsUnknownFieldsAndBadIDs(t *testing.T) {
	router := newUsersRouter(t, admin)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":"x","password":"y"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users/abc/toggle-status", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerForbidsStaff(t *testing.T) {
	router := newUsersRouter(t, shared.Principal{ID: 2, Name: "Staff Member", Role: shared.RoleStaff})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))
	require.Equal(t, http.StatusForbidden, rec.Code)
}
