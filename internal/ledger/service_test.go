package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbmgo/financeiro/internal/platform/httpx"
	"github.com/cbmgo/financeiro/internal/shared"
)

type fakeLedgerRepo struct {
	entries map[int64]*Lancamento
	nextID  int64
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{entries: make(map[int64]*Lancamento), nextID: 1}
}

func (f *fakeLedgerRepo) CreateLancamento(ctx context.Context, entry Lancamento) (*Lancamento, error) {
	entry.ID = f.nextID
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = time.Now()
	f.nextID++
	stored := entry
	f.entries[entry.ID] = &stored
	return &entry, nil
}

func (f *fakeLedgerRepo) GetLancamento(ctx context.Context, userID, id int64) (*Lancamento, error) {
	entry, ok := f.entries[id]
	if !ok || entry.UserID != userID {
		return nil, fmt.Errorf("%w: lancamento", httpx.ErrNotFound)
	}
	copied := *entry
	return &copied, nil
}

func (f *fakeLedgerRepo) ListLancamentos(ctx context.Context, userID int64, filter ListFilter) ([]Lancamento, shared.Pagination, error) {
	var list []Lancamento
	for _, entry := range f.entries {
		if entry.UserID == userID {
			list = append(list, *entry)
		}
	}
	return list, shared.NewPagination(filter.Page, filter.PageSize, len(list)), nil
}

func (f *fakeLedgerRepo) AllLancamentos(ctx context.Context, userID int64, from, to *time.Time) ([]Lancamento, error) {
	var list []Lancamento
	for id := int64(1); id < f.nextID; id++ {
		entry, ok := f.entries[id]
		if !ok || entry.UserID != userID {
			continue
		}
		if from != nil && entry.Data.Before(*from) {
			continue
		}
		if to != nil && entry.Data.After(*to) {
			continue
		}
		list = append(list, *entry)
	}
	return list, nil
}

func (f *fakeLedgerRepo) UpdateLancamento(ctx context.Context, userID, id int64, data time.Time, historico string, valor float64) (bool, error) {
	entry, ok := f.entries[id]
	if !ok || entry.UserID != userID || entry.ProcessoID != nil {
		return false, nil
	}
	entry.Data = data
	entry.Historico = historico
	entry.Valor = valor
	return true, nil
}

func (f *fakeLedgerRepo) DeleteLancamento(ctx context.Context, userID, id int64) (bool, error) {
	entry, ok := f.entries[id]
	if !ok || entry.UserID != userID || entry.ProcessoID != nil {
		return false, nil
	}
	delete(f.entries, id)
	return true, nil
}

func (f *fakeLedgerRepo) Totals(ctx context.Context, userID int64) (float64, float64, error) {
	var credits, debits float64
	for _, entry := range f.entries {
		if entry.UserID != userID {
			continue
		}
		if entry.Tipo == TipoCredito {
			credits += entry.Valor
		} else {
			debits += entry.Valor
		}
	}
	return credits, debits, nil
}

func (f *fakeLedgerRepo) TopDespesas(ctx context.Context, userID int64, from, to *time.Time, limit int) ([]ChartSlice, error) {
	totals := make(map[string]float64)
	for _, entry := range f.entries {
		if entry.UserID == userID && entry.Tipo == TipoDebito {
			totals[entry.Historico] += entry.Valor
		}
	}
	var slices []ChartSlice
	for historico, total := range totals {
		slices = append(slices, ChartSlice{Historico: historico, Total: total})
	}
	if len(slices) > limit {
		slices = slices[:limit]
	}
	return slices, nil
}

func (f *fakeLedgerRepo) MonthlyTotals(ctx context.Context, userID int64, from, to time.Time) ([]MonthlyRow, error) {
	byMonth := make(map[time.Time]*MonthlyRow)
	for _, entry := range f.entries {
		if entry.UserID != userID || entry.Data.Before(from) || entry.Data.After(to) {
			continue
		}
		month := shared.MonthStart(entry.Data)
		row, ok := byMonth[month]
		if !ok {
			row = &MonthlyRow{Month: month}
			byMonth[month] = row
		}
		if entry.Tipo == TipoCredito {
			row.Receitas += entry.Valor
		} else {
			row.Despesas += entry.Valor
		}
	}
	var rows []MonthlyRow
	for _, row := range byMonth {
		rows = append(rows, *row)
	}
	return rows, nil
}

func (f *fakeLedgerRepo) EntryDateRange(ctx context.Context, userID int64) (time.Time, time.Time, bool, error) {
	var min, max time.Time
	found := false
	for _, entry := range f.entries {
		if entry.UserID != userID {
			continue
		}
		if !found || entry.Data.Before(min) {
			min = entry.Data
		}
		if !found || entry.Data.After(max) {
			max = entry.Data
		}
		found = true
	}
	return min, max, found, nil
}

type fakePDF struct{}

func (fakePDF) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	return []byte("%PDF-1.4 fake"), nil
}

func newLedgerService() (*Service, *fakeLedgerRepo) {
	repo := newFakeLedgerRepo()
	logger := slog.Default()
	return NewService(logger, repo, nil, fakePDF{}), repo
}

func TestCreateReposicaoIsCredit(t *testing.T) {
	svc, _ := newLedgerService()

	entry, err := svc.CreateReposicao(context.Background(), 1, CreateReposicaoRequest{
		Data: "2024-03-15", Historico: "Reposição de saldo", Valor: 250,
	})
	require.NoError(t, err)
	assert.Equal(t, TipoCredito, entry.Tipo)
	assert.Nil(t, entry.ProcessoID)
	assert.Equal(t, int64(1), entry.UserID)
}

func TestCreateReposicaoRejectsBadDate(t *testing.T) {
	svc, _ := newLedgerService()

	_, err := svc.CreateReposicao(context.Background(), 1, CreateReposicaoRequest{
		Data: "15/03/2024", Historico: "x", Valor: 10,
	})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestSaldoIsCreditsMinusDebits(t *testing.T) {
	svc, repo := newLedgerService()
	ctx := context.Background()

	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	_, err := repo.CreateLancamento(ctx, Lancamento{Data: day, Historico: "a", Valor: 300, Tipo: TipoCredito, UserID: 1})
	require.NoError(t, err)
	_, err = repo.CreateLancamento(ctx, Lancamento{Data: day, Historico: "b", Valor: 120, Tipo: TipoDebito, UserID: 1})
	require.NoError(t, err)
	// Another user's entries never leak in.
	_, err = repo.CreateLancamento(ctx, Lancamento{Data: day, Historico: "c", Valor: 999, Tipo: TipoCredito, UserID: 2})
	require.NoError(t, err)

	result, err := svc.Saldo(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 300.0, result.Creditos)
	assert.Equal(t, 120.0, result.Debitos)
	assert.Equal(t, 180.0, result.Saldo)
}

func TestSaldoZeroWhenEmpty(t *testing.T) {
	svc, _ := newLedgerService()

	result, err := svc.Saldo(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Saldo)
}

func TestLinkedEntriesAreFrozen(t *testing.T) {
	svc, repo := newLedgerService()
	ctx := context.Background()

	processoID := int64(7)
	entry, err := repo.CreateLancamento(ctx, Lancamento{
		Data: time.Now(), Historico: "pagamento", Valor: 50, Tipo: TipoDebito, UserID: 1, ProcessoID: &processoID,
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, 1, entry.ID, UpdateLancamentoRequest{Data: "2024-01-01", Historico: "x", Valor: 60})
	assert.ErrorIs(t, err, httpx.ErrConflict)

	err = svc.Delete(ctx, 1, entry.ID)
	assert.ErrorIs(t, err, httpx.ErrConflict)
}

func TestUpdateUnlinkedEntry(t *testing.T) {
	svc, repo := newLedgerService()
	ctx := context.Background()

	entry, err := repo.CreateLancamento(ctx, Lancamento{
		Data: time.Now(), Historico: "reposição", Valor: 50, Tipo: TipoCredito, UserID: 1,
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, 1, entry.ID, UpdateLancamentoRequest{Data: "2024-02-02", Historico: "ajuste", Valor: 75})
	require.NoError(t, err)
	assert.Equal(t, "ajuste", updated.Historico)
	assert.Equal(t, 75.0, updated.Valor)
}

func TestMonthlyChartDataZeroFillsGaps(t *testing.T) {
	svc, repo := newLedgerService()
	ctx := context.Background()

	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	apr := time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC)
	_, err := repo.CreateLancamento(ctx, Lancamento{Data: jan, Historico: "a", Valor: 100, Tipo: TipoCredito, UserID: 1})
	require.NoError(t, err)
	_, err = repo.CreateLancamento(ctx, Lancamento{Data: apr, Historico: "b", Valor: 40, Tipo: TipoDebito, UserID: 1})
	require.NoError(t, err)

	series, err := svc.MonthlyChartData(ctx, 1, nil, nil)
	require.NoError(t, err)
	require.Len(t, series, 4, "jan through apr inclusive")

	assert.Equal(t, "2024-01", series[0].Mes)
	assert.Equal(t, 100.0, series[0].Receitas)
	assert.Equal(t, "2024-02", series[1].Mes)
	assert.Equal(t, 0.0, series[1].Receitas)
	assert.Equal(t, 0.0, series[1].Despesas)
	assert.Equal(t, "2024-04", series[3].Mes)
	assert.Equal(t, 40.0, series[3].Despesas)
}

func TestMonthlyChartDataEmptyWithoutEntries(t *testing.T) {
	svc, _ := newLedgerService()

	series, err := svc.MonthlyChartData(context.Background(), 1, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, series)
	assert.NotNil(t, series)
}

func TestChartDataEmptyWithoutDebits(t *testing.T) {
	svc, _ := newLedgerService()

	slices, err := svc.ChartData(context.Background(), 1, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, slices)
	assert.Empty(t, slices)
}
