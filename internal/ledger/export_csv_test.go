package ledger

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbmgo/financeiro/internal/shared"
)

func TestExportCSVFormat(t *testing.T) {
	svc, repo := newLedgerService()
	ctx := context.Background()

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	_, err := repo.CreateLancamento(ctx, Lancamento{Data: day, Historico: "Reposição", Valor: 1234.5, Tipo: TipoCredito, UserID: 1})
	require.NoError(t, err)
	_, err = repo.CreateLancamento(ctx, Lancamento{Data: day.AddDate(0, 0, 1), Historico: "Pagamento", Valor: 200, Tipo: TipoDebito, UserID: 1})
	require.NoError(t, err)

	data, filename, err := svc.ExportCSV(ctx, 1, nil, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filename, ".csv"))

	require.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}), "missing UTF-8 BOM")

	reader := csv.NewReader(bytes.NewReader(data[3:]))
	reader.Comma = ';'
	records, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4, "header + two entries + totals row")

	assert.Equal(t, []string{"Data", "Histórico", "Tipo", "Valor"}, records[0])
	assert.Equal(t, "05/03/2024", records[1][0])
	assert.Equal(t, shared.FormatBRL(1234.5), records[1][3])
	assert.Equal(t, "Pagamento", records[2][1])

	totals := records[3]
	assert.Equal(t, "Saldo", totals[1])
	assert.Equal(t, shared.FormatBRL(1034.5), totals[3])
}

func TestExportCSVRespectsWindow(t *testing.T) {
	svc, repo := newLedgerService()
	ctx := context.Background()

	inside := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	outside := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err := repo.CreateLancamento(ctx, Lancamento{Data: inside, Historico: "dentro", Valor: 10, Tipo: TipoCredito, UserID: 1})
	require.NoError(t, err)
	_, err = repo.CreateLancamento(ctx, Lancamento{Data: outside, Historico: "fora", Valor: 10, Tipo: TipoCredito, UserID: 1})
	require.NoError(t, err)

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)
	data, _, err := svc.ExportCSV(ctx, 1, &from, &to)
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "dentro")
	assert.NotContains(t, content, "fora")
}

func TestExportPDFStatement(t *testing.T) {
	svc, repo := newLedgerService()
	ctx := context.Background()

	_, err := repo.CreateLancamento(ctx, Lancamento{
		Data: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Historico: "Pagamento", Valor: 200, Tipo: TipoDebito, UserID: 1,
	})
	require.NoError(t, err)

	data, filename, err := svc.ExportPDF(ctx, 1, nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.True(t, strings.HasSuffix(filename, ".pdf"))
}
