package users

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/cbmgo/financeiro/internal/platform/httpx"
	"github.com/cbmgo/financeiro/internal/shared"
)

// Handler exposes registration and admin user management.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountPublicRoutes registers the open registration route.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Post("/users", h.Register)
}

// MountAdminRoutes registers the management routes. The caller wraps them
// with the usuario:gerenciar permission guard.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/users", h.List)
	r.Patch("/users/{id}/approve", h.Approve)
	r.Patch("/users/{id}/reject", h.Reject)
	r.Put("/users/{id}/permissions", h.SetPermissions)
}

type listUsersResponse struct {
	Data []User            `json:"data"`
	Meta shared.Pagination `json:"meta"`
}

// Register handles POST /users.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationErrors(w, err)
		return
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.logger.Error("register user", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}

// List handles GET /admin/users.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	list, meta, err := h.service.List(r.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []User{}
	}
	httpx.JSON(w, http.StatusOK, listUsersResponse{Data: list, Meta: meta})
}

// Approve handles PATCH /admin/users/{id}/approve.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, h.service.Approve)
}

// Reject handles PATCH /admin/users/{id}/reject.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, h.service.Reject)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id int64) (*User, error)) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}
	user, err := fn(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

// SetPermissions handles PUT /admin/users/{id}/permissions.
func (h *Handler) SetPermissions(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req SetPermissionsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationErrors(w, err)
		return
	}

	user, err := h.service.SetPermissions(r.Context(), id, req.Permissions)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}
