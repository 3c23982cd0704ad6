package categories

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stockdesk/stockdesk/internal/platform/httpx"
	"github.com/stockdesk/stockdesk/internal/rbac"
	"github.com/stockdesk/stockdesk/internal/shared"
)

// Handler menangani endpoint kategori produk.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs the category handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers category routes. All of them require categories.manage.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermCategoriesManage))
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Put("/{name}", h.Rename)
		r.Delete("/{name}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, "list categories failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"categories": categories, "total": len(categories)})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var form Form
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	name, err := h.service.Add(r.Context(), actor(r), form.Name)
	if err != nil {
		h.fail(w, "create category failed", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{"name": name})
}

func (h *Handler) Rename(w http.ResponseWriter, r *http.Request) {
	var form Form
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	name, moved, err := h.service.Rename(r.Context(), actor(r), chi.URLParam(r, "name"), form.Name)
	if err != nil {
		h.fail(w, "rename category failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"name": name, "productsUpdated": moved})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), actor(r), chi.URLParam(r, "name")); err != nil {
		h.fail(w, "delete category failed", err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	if shared.KindOf(err) == shared.KindInternal {
		h.logger.Error(msg, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func actor(r *http.Request) shared.Principal {
	p, _ := shared.PrincipalFromContext(r.Context())
	return p
}
