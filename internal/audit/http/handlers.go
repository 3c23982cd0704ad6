package audithttp

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stockdesk/stockdesk/internal/audit"
	"github.com/stockdesk/stockdesk/internal/platform/httpx"
)

// LogService defines the read and clear contract over the log streams.
type LogService interface {
	Activity(ctx context.Context) ([]audit.ActivityEntry, error)
	Stock(ctx context.Context) ([]audit.StockEntry, error)
	Clear(ctx context.Context, stream audit.Stream) error
}

// Handler menangani permintaan log aktivitas dan log stok.
type Handler struct {
	logger  *slog.Logger
	service LogService
	now     func() time.Time
}

// NewHandler membuat handler log baru.
func NewHandler(logger *slog.Logger, service LogService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, now: time.Now}
}

type listResponse[T any] struct {
	Entries []T `json:"entries"`
	Total   int `json:"total"`
}

func (h *Handler) handleActivity(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Activity(r.Context())
	if err != nil {
		h.handleServerError(w, "load activity logs", err)
		return
	}
	filtered := audit.FilterActivity(entries, parseFilters(r), h.now())
	httpx.JSON(w, http.StatusOK, listResponse[audit.ActivityEntry]{Entries: filtered, Total: len(filtered)})
}

func (h *Handler) handleStock(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Stock(r.Context())
	if err != nil {
		h.handleServerError(w, "load stock logs", err)
		return
	}
	filtered := audit.FilterStock(entries, parseFilters(r), h.now())
	httpx.JSON(w, http.StatusOK, listResponse[audit.StockEntry]{Entries: filtered, Total: len(filtered)})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	stream, err := audit.ParseStream(chi.URLParam(r, "stream"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	filters := parseFilters(r)
	var buf bytes.Buffer
	switch stream {
	case audit.StreamStock:
		entries, err := h.service.Stock(r.Context())
		if err != nil {
			h.handleServerError(w, "export stock logs", err)
			return
		}
		err = audit.WriteStockCSV(&buf, audit.FilterStock(entries, filters, h.now()))
		if err != nil {
			h.handleServerError(w, "encode csv", err)
			return
		}
	default:
		entries, err := h.service.Activity(r.Context())
		if err != nil {
			h.handleServerError(w, "export activity logs", err)
			return
		}
		err = audit.WriteActivityCSV(&buf, audit.FilterActivity(entries, filters, h.now()))
		if err != nil {
			h.handleServerError(w, "encode csv", err)
			return
		}
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s-logs.csv\"", stream))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Warn("write csv", slog.Any("error", err))
	}
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	stream, err := audit.ParseStream(chi.URLParam(r, "stream"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Clear(r.Context(), stream); err != nil {
		h.handleServerError(w, "clear logs", err)
		return
	}
	httpx.NoContent(w)
}

func parseFilters(r *http.Request) audit.Filters {
	q := r.URL.Query()
	date := audit.DateWindow(strings.TrimSpace(q.Get("date")))
	if date == "" {
		date = audit.WindowAll
	}
	return audit.Filters{
		Search: q.Get("search"),
		Type:   strings.TrimSpace(q.Get("type")),
		Date:   date,
	}
}

func (h *Handler) handleServerError(w http.ResponseWriter, message string, err error) {
	h.logger.Error(message, slog.Any("error", err))
	httpx.RespondError(w, err)
}
