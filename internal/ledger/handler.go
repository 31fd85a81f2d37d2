package ledger

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/cbmgo/financeiro/internal/platform/httpx"
	"github.com/cbmgo/financeiro/internal/shared"
)

// Handler exposes the ledger over HTTP. Every route expects an
// authenticated principal; entries are always scoped to the caller.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers the ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/reposicoes", h.CreateReposicao)
	r.Get("/lancamentos", h.List)
	r.Put("/lancamentos/{id}", h.Update)
	r.Delete("/lancamentos/{id}", h.Delete)
	r.Get("/export/csv", h.ExportCSV)
	r.Get("/export/pdf", h.ExportPDF)
	r.Get("/saldo", h.Saldo)
	r.Get("/chart-data", h.ChartData)
	r.Get("/monthly-chart-data", h.MonthlyChartData)
}

// CreateReposicao handles POST /reposicoes.
func (h *Handler) CreateReposicao(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req CreateReposicaoRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationErrors(w, err)
		return
	}

	entry, err := h.service.CreateReposicao(r.Context(), principal.UserID, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

type listLancamentosResponse struct {
	Data []Lancamento      `json:"data"`
	Meta shared.Pagination `json:"meta"`
}

// List handles GET /lancamentos.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	filter, err := h.listFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	list, meta, err := h.service.List(r.Context(), principal.UserID, filter)
	if err != nil {
		h.logger.Error("list lancamentos", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []Lancamento{}
	}
	httpx.JSON(w, http.StatusOK, listLancamentosResponse{Data: list, Meta: meta})
}

// Update handles PUT /lancamentos/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	id, ok := h.entryID(w, r)
	if !ok {
		return
	}

	var req UpdateLancamentoRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationErrors(w, err)
		return
	}

	entry, err := h.service.Update(r.Context(), principal.UserID, id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

// Delete handles DELETE /lancamentos/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	id, ok := h.entryID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), principal.UserID, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Saldo handles GET /saldo.
func (h *Handler) Saldo(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	result, err := h.service.Saldo(r.Context(), principal.UserID)
	if err != nil {
		h.logger.Error("saldo", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

// ChartData handles GET /chart-data.
func (h *Handler) ChartData(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	from, to, err := ParseDateRange(r.URL.Query())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	slices, err := h.service.ChartData(r.Context(), principal.UserID, from, to)
	if err != nil {
		h.logger.Error("chart data", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, slices)
}

// MonthlyChartData handles GET /monthly-chart-data.
func (h *Handler) MonthlyChartData(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	from, to, err := ParseDateRange(r.URL.Query())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	series, err := h.service.MonthlyChartData(r.Context(), principal.UserID, from, to)
	if err != nil {
		h.logger.Error("monthly chart data", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, series)
}

// ExportCSV handles GET /lancamentos/export/csv.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	from, to, err := ParseDateRange(r.URL.Query())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	data, filename, err := h.service.ExportCSV(r.Context(), principal.UserID, from, to)
	if err != nil {
		h.logger.Error("export csv", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ExportPDF handles GET /lancamentos/export/pdf.
func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	from, to, err := ParseDateRange(r.URL.Query())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	data, filename, err := h.service.ExportPDF(r.Context(), principal.UserID, from, to)
	if err != nil {
		h.logger.Error("export pdf", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) listFilter(r *http.Request) (ListFilter, error) {
	query := r.URL.Query()
	from, to, err := ParseDateRange(query)
	if err != nil {
		return ListFilter{}, err
	}
	tipo := query.Get("tipo")
	if tipo != "" && tipo != TipoCredito && tipo != TipoDebito {
		return ListFilter{}, fmt.Errorf("%w: tipo must be CREDITO or DEBITO", httpx.ErrValidation)
	}
	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("pageSize"))
	return ListFilter{From: from, To: to, Tipo: tipo, Page: page, PageSize: pageSize}, nil
}

func (h *Handler) entryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid lancamento id")
		return 0, false
	}
	return id, true
}
