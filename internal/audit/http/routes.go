package audithttp

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/stockdesk/stockdesk/internal/rbac"
	"github.com/stockdesk/stockdesk/internal/shared"
)

const rateLimit = 10
const rateWindow = time.Minute

// MountRoutes mendaftarkan endpoint log, ekspor CSV dan pembersihan log.
func (h *Handler) MountRoutes(r chi.Router, rb rbac.Middleware) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(rateLimit, rateWindow,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)
	r.Route("/logs", func(lr chi.Router) {
		lr.With(rb.RequireAny(shared.PermLogsView)).Get("/activity", h.handleActivity)
		lr.With(rb.RequireAny(shared.PermLogsView)).Get("/stock", h.handleStock)
		lr.Group(func(gr chi.Router) {
			gr.Use(limiter)
			gr.With(rb.RequireAny(shared.PermLogsView)).Get("/{stream}/export.csv", h.handleExport)
			gr.With(rb.RequireAny(shared.PermLogsClear)).Delete("/{stream}", h.handleClear)
		})
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	if p, ok := shared.PrincipalFromContext(r.Context()); ok {
		return "user:" + strconv.FormatInt(p.ID, 10), nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
