package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/cbmgo/financeiro/internal/platform/httpx"
)

// Handler exposes the authentication endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers the public authentication routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/sessions", h.Login)
	r.Post("/google/callback", h.GoogleCallback)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type googleCallbackRequest struct {
	Code string `json:"code" validate:"required"`
}

type sessionResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// Login handles POST /sessions.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationErrors(w, err)
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Email, req.Password, r.RemoteAddr)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sessionResponse{User: user, Token: token})
}

// GoogleCallback handles POST /google/callback.
func (h *Handler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	var req googleCallbackRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationErrors(w, err)
		return
	}

	user, token, err := h.service.LoginWithGoogle(r.Context(), req.Code, r.RemoteAddr)
	if err != nil {
		h.logger.Info("google login rejected", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sessionResponse{User: user, Token: token})
}
