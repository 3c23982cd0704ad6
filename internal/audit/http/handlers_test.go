package audithttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/stockdesk/stockdesk/internal/audit"
	"github.com/stockdesk/stockdesk/internal/platform/store"
	"github.com/stockdesk/stockdesk/internal/rbac"
	"github.com/stockdesk/stockdesk/internal/shared"
)

func newLogRouter(t *testing.T, role string) (http.Handler, *audit.Writer) {
	t.Helper()
	writer := audit.NewWriter(store.NewMemoryStore(), nil, nil)
	h := NewHandler(nil, writer)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := shared.ContextWithPrincipal(req.Context(), shared.Principal{ID: 1, Name: "Admin User", Role: role})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	h.MountRoutes(r, rbac.Middleware{})
	return r, writer
}

func seedLogs(t *testing.T, w *audit.Writer) {
	t.Helper()
	ctx := context.Background()
	_, err := w.AppendActivity(ctx, audit.ActivityEntry{Type: audit.TypeLogin, User: "Admin User", Action: "User logged in"})
	require.NoError(t, err)
	_, err = w.AppendActivity(ctx, audit.ActivityEntry{Type: audit.TypeUser, User: "Admin User", Action: "User created", Details: "User created for user: Sam (sam@company.com)"})
	require.NoError(t, err)
	_, err = w.AppendStock(ctx, audit.StockEntry{User: "Admin User", Action: "Stock Updated", Product: "Pro Gaming Mouse", OldValue: audit.Qty(45), NewValue: audit.Qty(40)})
	require.NoError(t, err)
}

func TestActivityFiltersByQuery(t *testing.T) {
	router, w := newLogRouter(t, shared.RoleAdmin)
	seedLogs(t, w)

	req := httptest.NewRequest(http.MethodGet, "/logs/activity?type=user&date=today&search=sam", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Entries []audit.ActivityEntry `json:"entries"`
		Total   int                   `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Total)
	require.Equal(t, "User created", body.Entries[0].Action)
}

func TestStockLogsAndExport(t *testing.T) {
	router, w := newLogRouter(t, shared.RoleAdmin)
	seedLogs(t, w)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs/stock?search=mouse", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Pro Gaming Mouse")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs/stock/export.csv", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[1], "45,40")
}

func TestClearStream(t *testing.T) {
	router, w := newLogRouter(t, shared.RoleAdmin)
	seedLogs(t, w)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/logs/activity", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	activity, err := w.Activity(context.Background())
	require.NoError(t, err)
	require.Empty(t, activity)
	stock, err := w.Stock(context.Background())
	require.NoError(t, err)
	require.Len(t, stock, 1)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/logs/nope", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogsRequireAdmin(t *testing.T) {
	router, _ := newLogRouter(t, shared.RoleStaff)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs/activity", nil))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/logs/stock", nil))
	require.Equal(t, http.StatusForbidden, rec.Code)
}
