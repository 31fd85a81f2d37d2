package processos

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cbmgo/financeiro/internal/platform/httpx"
	"github.com/cbmgo/financeiro/internal/shared"
)

// CacheBumper invalidates ledger aggregates after processo mutations,
// since every processo write also moves the ledger.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// Service implements the processo lifecycle.
type Service struct {
	logger *slog.Logger
	repo   Repository
	cache  CacheBumper
}

// NewService constructs a Service. cache may be nil.
func NewService(logger *slog.Logger, repo Repository, cache CacheBumper) *Service {
	return &Service{logger: logger, repo: repo, cache: cache}
}

func lancamentoHistorico(numero, credor string) string {
	return fmt.Sprintf("Pagamento processo %s - %s", numero, credor)
}

// Create opens a payment case and records its DEBITO lancamento.
func (s *Service) Create(ctx context.Context, userID int64, req CreateProcessoRequest) (*Processo, error) {
	dates, err := parseRequestDates(req.DataPagamento, req.DataEmpenho)
	if err != nil {
		return nil, err
	}
	p := Processo{
		Numero:        req.Numero,
		Credor:        req.Credor,
		DataEmpenho:   dates.empenho,
		DataPagamento: dates.pagamento,
		Valor:         req.Valor,
		UserID:        userID,
	}
	if req.NumeroEmpenho != "" {
		p.NumeroEmpenho = &req.NumeroEmpenho
	}
	created, err := s.repo.Create(ctx, p, lancamentoHistorico(req.Numero, req.Credor))
	if err != nil {
		return nil, err
	}
	s.bump(ctx)
	return created, nil
}

// Get fetches one processo owned by the caller.
func (s *Service) Get(ctx context.Context, userID, id int64) (*Processo, error) {
	return s.repo.Get(ctx, userID, id)
}

// List returns one page of the caller's processos, newest payment first.
func (s *Service) List(ctx context.Context, userID int64, filter ListFilter) ([]Processo, shared.Pagination, error) {
	if filter.Status != "" && filter.Status != StatusPending && filter.Status != StatusSettled {
		return nil, shared.Pagination{}, fmt.Errorf("%w: status must be PENDING or SETTLED", httpx.ErrValidation)
	}
	return s.repo.List(ctx, userID, filter)
}

// Update rewrites a processo; its linked lancamento follows in the same
// transaction.
func (s *Service) Update(ctx context.Context, userID, id int64, req UpdateProcessoRequest) (*Processo, error) {
	dates, err := parseRequestDates(req.DataPagamento, req.DataEmpenho)
	if err != nil {
		return nil, err
	}
	p := Processo{
		Numero:        req.Numero,
		Credor:        req.Credor,
		DataEmpenho:   dates.empenho,
		DataPagamento: dates.pagamento,
		Valor:         req.Valor,
	}
	if req.NumeroEmpenho != "" {
		p.NumeroEmpenho = &req.NumeroEmpenho
	}
	ok, err := s.repo.Update(ctx, userID, id, p, lancamentoHistorico(req.Numero, req.Credor))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: processo", httpx.ErrNotFound)
	}
	s.bump(ctx)
	return s.repo.Get(ctx, userID, id)
}

// Liquidar settles a PENDING processo. Settling twice is rejected.
func (s *Service) Liquidar(ctx context.Context, userID, id int64) (*Processo, error) {
	ok, err := s.repo.Liquidar(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		current, err := s.repo.Get(ctx, userID, id)
		if err != nil {
			return nil, err
		}
		if current.Settled() {
			return nil, fmt.Errorf("%w: processo already settled", httpx.ErrConflict)
		}
		return nil, fmt.Errorf("%w: processo", httpx.ErrNotFound)
	}
	return s.repo.Get(ctx, userID, id)
}

// Delete removes a processo together with its lancamentos.
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	ok, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: processo", httpx.ErrNotFound)
	}
	s.bump(ctx)
	return nil
}

func (s *Service) bump(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("ledger cache bump", slog.Any("error", err))
	}
}
