package processos

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

type fakeProcessoRepo struct {
	processos  map[int64]*Processo
	historicos map[int64]string
	nextID     int64
}

func newFakeProcessoRepo() *fakeProcessoRepo {
	return &fakeProcessoRepo{
		processos:  make(map[int64]*Processo),
		historicos: make(map[int64]string),
		nextID:     1,
	}
}

func (f *fakeProcessoRepo) Create(ctx context.Context, p Processo, historico string) (*Processo, error) {
	for _, existing := range f.processos {
		if existing.UserID == p.UserID && existing.Numero == p.Numero {
			return nil, fmt.Errorf("%w: numero already registered", httpx.ErrConflict)
		}
	}
	p.ID = f.nextID
	p.Status = StatusPending
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	f.nextID++
	stored := p
	f.processos[p.ID] = &stored
	f.historicos[p.ID] = historico
	return &p, nil
}

func (f *fakeProcessoRepo) Get(ctx context.Context, userID, id int64) (*Processo, error) {
	p, ok := f.processos[id]
	if !ok || p.UserID != userID {
		return nil, fmt.Errorf("%w: processo", httpx.ErrNotFound)
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProcessoRepo) List(ctx context.Context, userID int64, filter ListFilter) ([]Processo, shared.Pagination, error) {
	var list []Processo
	for _, p := range f.processos {
		if p.UserID != userID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		list = append(list, *p)
	}
	return list, shared.NewPagination(filter.Page, filter.PageSize, len(list)), nil
}

func (f *fakeProcessoRepo) Update(ctx context.Context, userID, id int64, p Processo, historico string) (bool, error) {
	stored, ok := f.processos[id]
	if !ok || stored.UserID != userID {
		return false, nil
	}
	stored.Numero = p.Numero
	stored.Credor = p.Credor
	stored.NumeroEmpenho = p.NumeroEmpenho
	stored.DataEmpenho = p.DataEmpenho
	stored.DataPagamento = p.DataPagamento
	stored.Valor = p.Valor
	f.historicos[id] = historico
	return true, nil
}

func (f *fakeProcessoRepo) Liquidar(ctx context.Context, userID, id int64) (bool, error) {
	p, ok := f.processos[id]
	if !ok || p.UserID != userID || p.Status != StatusPending {
		return false, nil
	}
	p.Status = StatusSettled
	return true, nil
}

func (f *fakeProcessoRepo) Delete(ctx context.Context, userID, id int64) (bool, error) {
	p, ok := f.processos[id]
	if !ok || p.UserID != userID {
		return false, nil
	}
	delete(f.processos, id)
	delete(f.historicos, id)
	return true, nil
}

type countingBumper struct {
	bumps int
}

func (c *countingBumper) Bump(ctx context.Context) error {
	c.bumps++
	return nil
}

func newProcessoService() (*Service, *fakeProcessoRepo, *countingBumper) {
	repo := newFakeProcessoRepo()
	bumper := &countingBumper{}
	return NewService(slog.Default(), repo, bumper), repo, bumper
}

func TestCreateProcessoStartsPending(t *testing.T) {
	svc, repo, bumper := newProcessoService()

	created, err := svc.Create(context.Background(), 1, CreateProcessoRequest{
		Numero: "P-1", Credor: "X", DataPagamento: "2024-01-10", Valor: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, created.Status)
	assert.Equal(t, "Pagamento processo P-1 - X", repo.historicos[created.ID])
	assert.Equal(t, 1, bumper.bumps, "ledger cache must be invalidated")
}

func TestCreateProcessoDuplicateNumero(t *testing.T) {
	svc, _, _ := newProcessoService()
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, CreateProcessoRequest{Numero: "P-1", Credor: "X", DataPagamento: "2024-01-10", Valor: 100})
	require.NoError(t, err)

	_, err = svc.Create(ctx, 1, CreateProcessoRequest{Numero: "P-1", Credor: "Y", DataPagamento: "2024-02-10", Valor: 200})
	assert.ErrorIs(t, err, httpx.ErrConflict)
}

func TestLiquidarIsOneWay(t *testing.T) {
	svc, _, _ := newProcessoService()
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateProcessoRequest{Numero: "P-1", Credor: "X", DataPagamento: "2024-01-10", Valor: 100})
	require.NoError(t, err)

	settled, err := svc.Liquidar(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSettled, settled.Status)

	_, err = svc.Liquidar(ctx, 1, created.ID)
	assert.ErrorIs(t, err, httpx.ErrConflict)
}

func TestLiquidarUnknownProcesso(t *testing.T) {
	svc, _, _ := newProcessoService()

	_, err := svc.Liquidar(context.Background(), 1, 99)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestLiquidarOtherUsersProcesso(t *testing.T) {
	svc, _, _ := newProcessoService()
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateProcessoRequest{Numero: "P-1", Credor: "X", DataPagamento: "2024-01-10", Valor: 100})
	require.NoError(t, err)

	_, err = svc.Liquidar(ctx, 2, created.ID)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestUpdateProcessoRewritesLancamentoHistorico(t *testing.T) {
	svc, repo, bumper := newProcessoService()
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateProcessoRequest{Numero: "P-1", Credor: "X", DataPagamento: "2024-01-10", Valor: 100})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, 1, created.ID, UpdateProcessoRequest{
		Numero: "P-1", Credor: "Credor Novo", DataPagamento: "2024-01-15", Valor: 150,
	})
	require.NoError(t, err)
	assert.Equal(t, 150.0, updated.Valor)
	assert.Equal(t, "Pagamento processo P-1 - Credor Novo", repo.historicos[created.ID])
	assert.Equal(t, 2, bumper.bumps)
}

func TestDeleteProcesso(t *testing.T) {
	svc, _, bumper := newProcessoService()
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateProcessoRequest{Numero: "P-1", Credor: "X", DataPagamento: "2024-01-10", Valor: 100})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, 1, created.ID))
	assert.Equal(t, 2, bumper.bumps)

	err = svc.Delete(ctx, 1, created.ID)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestListProcessosRejectsUnknownStatus(t *testing.T) {
	svc, _, _ := newProcessoService()

	_, _, err := svc.List(context.Background(), 1, ListFilter{Status: "DONE"})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}
