package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cbmgo/financeiro/internal/platform/httpx"
	"github.com/cbmgo/financeiro/internal/platform/pdf"
	"github.com/cbmgo/financeiro/internal/shared"
)

const topDespesasLimit = 5

var errLinked = fmt.Errorf("%w: lancamento is linked to a processo", httpx.ErrConflict)

// Service implements the ledger operations: reposições, entry maintenance
// and the aggregate views backing the dashboard.
type Service struct {
	logger   *slog.Logger
	repo     Repository
	cache    *Cache
	renderer pdf.Renderer
}

// NewService constructs a Service. cache may be nil.
func NewService(logger *slog.Logger, repo Repository, cache *Cache, renderer pdf.Renderer) *Service {
	return &Service{logger: logger, repo: repo, cache: cache, renderer: renderer}
}

// CreateReposicao records a standalone CREDITO entry for the user.
func (s *Service) CreateReposicao(ctx context.Context, userID int64, req CreateReposicaoRequest) (*Lancamento, error) {
	data, err := ParseDate(req.Data)
	if err != nil {
		return nil, err
	}
	entry, err := s.repo.CreateLancamento(ctx, Lancamento{
		Data:      data,
		Historico: req.Historico,
		Valor:     req.Valor,
		Tipo:      TipoCredito,
		UserID:    userID,
	})
	if err != nil {
		return nil, err
	}
	s.bump(ctx)
	return entry, nil
}

// Update mutates an entry. Entries linked to a processo are frozen and
// must be changed through the processo itself.
func (s *Service) Update(ctx context.Context, userID, id int64, req UpdateLancamentoRequest) (*Lancamento, error) {
	data, err := ParseDate(req.Data)
	if err != nil {
		return nil, err
	}
	current, err := s.repo.GetLancamento(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if current.Linked() {
		return nil, errLinked
	}
	ok, err := s.repo.UpdateLancamento(ctx, userID, id, data, req.Historico, req.Valor)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Linked concurrently between the read and the guarded update.
		return nil, errLinked
	}
	s.bump(ctx)
	return s.repo.GetLancamento(ctx, userID, id)
}

// Delete removes an entry under the same linkage rule as Update.
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	current, err := s.repo.GetLancamento(ctx, userID, id)
	if err != nil {
		return err
	}
	if current.Linked() {
		return errLinked
	}
	ok, err := s.repo.DeleteLancamento(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return errLinked
	}
	s.bump(ctx)
	return nil
}

// List returns one page of the user's entries, newest first.
func (s *Service) List(ctx context.Context, userID int64, filter ListFilter) ([]Lancamento, shared.Pagination, error) {
	return s.repo.ListLancamentos(ctx, userID, filter)
}

// Saldo computes the running balance: credits minus debits.
func (s *Service) Saldo(ctx context.Context, userID int64) (*SaldoResult, error) {
	var result SaldoResult
	key, err := s.cache.BuildKey(ctx, keySaldo(userID))
	if err != nil {
		return nil, err
	}
	err = s.cache.FetchJSON(ctx, key, &result, func(ctx context.Context) (interface{}, error) {
		credits, debits, err := s.repo.Totals(ctx, userID)
		if err != nil {
			return nil, err
		}
		return SaldoResult{Saldo: credits - debits, Creditos: credits, Debitos: debits}, nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ChartData lists the user's largest expense groups, DEBITO entries summed
// by historico, largest first.
func (s *Service) ChartData(ctx context.Context, userID int64, from, to *time.Time) ([]ChartSlice, error) {
	var slices []ChartSlice
	key, err := s.cache.BuildKey(ctx, keyChart(userID, from, to))
	if err != nil {
		return nil, err
	}
	err = s.cache.FetchJSON(ctx, key, &slices, func(ctx context.Context) (interface{}, error) {
		loaded, err := s.repo.TopDespesas(ctx, userID, from, to, topDespesasLimit)
		if err != nil {
			return nil, err
		}
		if loaded == nil {
			loaded = []ChartSlice{}
		}
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	if slices == nil {
		slices = []ChartSlice{}
	}
	return slices, nil
}

// MonthlyChartData builds the month-by-month receitas/despesas series.
// Without an explicit window it spans the user's whole entry history, and
// every month in the window appears even when it has no entries.
func (s *Service) MonthlyChartData(ctx context.Context, userID int64, from, to *time.Time) ([]MonthlyPoint, error) {
	var series []MonthlyPoint
	key, err := s.cache.BuildKey(ctx, keyMonthly(userID, from, to))
	if err != nil {
		return nil, err
	}
	err = s.cache.FetchJSON(ctx, key, &series, func(ctx context.Context) (interface{}, error) {
		return s.loadMonthlySeries(ctx, userID, from, to)
	})
	if err != nil {
		return nil, err
	}
	if series == nil {
		series = []MonthlyPoint{}
	}
	return series, nil
}

func (s *Service) loadMonthlySeries(ctx context.Context, userID int64, from, to *time.Time) ([]MonthlyPoint, error) {
	start, end, ok, err := s.resolveWindow(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []MonthlyPoint{}, nil
	}
	rows, err := s.repo.MonthlyTotals(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	byMonth := make(map[string]MonthlyRow, len(rows))
	for _, row := range rows {
		byMonth[row.Month.Format("2006-01")] = row
	}
	months := shared.MonthsBetween(start, end)
	series := make([]MonthlyPoint, 0, len(months))
	for _, month := range months {
		label := month.Format("2006-01")
		row := byMonth[label]
		series = append(series, MonthlyPoint{Mes: label, Receitas: row.Receitas, Despesas: row.Despesas})
	}
	return series, nil
}

// resolveWindow fills missing bounds from the user's entry history. ok is
// false only when no window was given and the user has no entries at all.
func (s *Service) resolveWindow(ctx context.Context, userID int64, from, to *time.Time) (time.Time, time.Time, bool, error) {
	if from != nil && to != nil {
		return *from, *to, true, nil
	}
	min, max, ok, err := s.repo.EntryDateRange(ctx, userID)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	if !ok {
		return time.Time{}, time.Time{}, false, nil
	}
	start, end := min, max
	if from != nil {
		start = *from
	}
	if to != nil {
		end = shared.DayEnd(*to)
	} else {
		end = shared.DayEnd(end)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, false, nil
	}
	return start, end, true, nil
}

func (s *Service) bump(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("ledger cache bump", slog.Any("error", err))
	}
}
