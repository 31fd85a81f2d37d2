package ledger

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/cbmgo/financeiro/internal/shared"
)

// utf8BOM makes spreadsheet software detect the encoding; pt-BR locales
// default to Windows-1252 otherwise.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var csvHeader = []string{"Data", "Histórico", "Tipo", "Valor"}

// ExportCSV renders the user's entries in the window as a semicolon
// separated CSV, oldest first, with a trailing totals row.
func (s *Service) ExportCSV(ctx context.Context, userID int64, from, to *time.Time) ([]byte, string, error) {
	entries, err := s.repo.AllLancamentos(ctx, userID, from, to)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	buf.Write(utf8BOM)
	w := csv.NewWriter(&buf)
	w.Comma = ';'

	if err := w.Write(csvHeader); err != nil {
		return nil, "", err
	}
	var credits, debits float64
	for _, entry := range entries {
		if entry.Tipo == TipoCredito {
			credits += entry.Valor
		} else {
			debits += entry.Valor
		}
		record := []string{
			shared.FormatBRDate(entry.Data),
			entry.Historico,
			entry.Tipo,
			shared.FormatBRL(entry.Valor),
		}
		if err := w.Write(record); err != nil {
			return nil, "", err
		}
	}
	if err := w.Write([]string{"", "Saldo", "", shared.FormatBRL(credits - debits)}); err != nil {
		return nil, "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", err
	}

	filename := "lancamentos-" + strconv.FormatInt(userID, 10) + "-" + time.Now().Format("20060102") + ".csv"
	return buf.Bytes(), filename, nil
}
