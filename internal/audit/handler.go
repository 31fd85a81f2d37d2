package audit

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cbmgo/financeiro/internal/platform/httpx"
	"github.com/cbmgo/financeiro/internal/shared"
)

// Handler exposes the activity log to administrators.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the activity log routes. The caller wraps them with
// the usuario:gerenciar permission guard.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/activity-logs", h.List)
}

type listResponse struct {
	Data []LogEntry        `json:"data"`
	Meta shared.Pagination `json:"meta"`
}

// List renders one page of the activity timeline.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	entries, meta, err := h.service.List(r.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("list activity logs", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if entries == nil {
		entries = []LogEntry{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{Data: entries, Meta: meta})
}
