package ledger

import (
	"context"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/cbmgo/financeiro/internal/shared"
)

var statementTemplate = template.Must(template.New("statement").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>Extrato de Lançamentos</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 2.5cm 2cm; color: #222; }
h1 { font-size: 16pt; border-bottom: 2px solid #444; padding-bottom: 6px; }
table { width: 100%; border-collapse: collapse; margin-top: 12px; font-size: 9pt; }
th { background: #f4f4f4; border: 1px solid #bbb; padding: 5px 8px; text-align: left; }
td { border: 1px solid #bbb; padding: 5px 8px; }
td.num { text-align: right; white-space: nowrap; }
tr.debito td.num { color: #a32020; }
tfoot td { font-weight: bold; background: #f4f4f4; }
.meta { color: #666; font-size: 9pt; }
</style>
</head>
<body>
<h1>Extrato de Lançamentos</h1>
<p class="meta">Período: {{.Period}} &mdash; gerado em {{.GeneratedAt}}</p>
<table>
<thead><tr><th>Data</th><th>Histórico</th><th>Tipo</th><th>Valor</th></tr></thead>
<tbody>
{{range .Rows}}<tr class="{{.Class}}"><td>{{.Data}}</td><td>{{.Historico}}</td><td>{{.Tipo}}</td><td class="num">{{.Valor}}</td></tr>
{{end}}</tbody>
<tfoot>
<tr><td colspan="3">Créditos</td><td class="num">{{.Creditos}}</td></tr>
<tr><td colspan="3">Débitos</td><td class="num">{{.Debitos}}</td></tr>
<tr><td colspan="3">Saldo</td><td class="num">{{.Saldo}}</td></tr>
</tfoot>
</table>
</body>
</html>`))

type statementRow struct {
	Data      string
	Historico string
	Tipo      string
	Valor     string
	Class     string
}

type statementView struct {
	Period      string
	GeneratedAt string
	Rows        []statementRow
	Creditos    string
	Debitos     string
	Saldo       string
}

// ExportPDF renders the user's entries in the window as a PDF statement,
// oldest first, with credit/debit/balance totals.
func (s *Service) ExportPDF(ctx context.Context, userID int64, from, to *time.Time) ([]byte, string, error) {
	entries, err := s.repo.AllLancamentos(ctx, userID, from, to)
	if err != nil {
		return nil, "", err
	}

	view := statementView{
		Period:      periodLabel(from, to),
		GeneratedAt: time.Now().Format("02/01/2006 15:04"),
	}
	var credits, debits float64
	for _, entry := range entries {
		class := "credito"
		if entry.Tipo == TipoDebito {
			class = "debito"
			debits += entry.Valor
		} else {
			credits += entry.Valor
		}
		view.Rows = append(view.Rows, statementRow{
			Data:      shared.FormatBRDate(entry.Data),
			Historico: entry.Historico,
			Tipo:      entry.Tipo,
			Valor:     shared.FormatBRL(entry.Valor),
			Class:     class,
		})
	}
	view.Creditos = shared.FormatBRL(credits)
	view.Debitos = shared.FormatBRL(debits)
	view.Saldo = shared.FormatBRL(credits - debits)

	var sb strings.Builder
	if err := statementTemplate.Execute(&sb, view); err != nil {
		return nil, "", err
	}
	data, err := s.renderer.RenderHTML(ctx, sb.String())
	if err != nil {
		return nil, "", err
	}
	filename := "extrato-" + strconv.FormatInt(userID, 10) + "-" + time.Now().Format("20060102") + ".pdf"
	return data, filename, nil
}

func periodLabel(from, to *time.Time) string {
	switch {
	case from != nil && to != nil:
		return shared.FormatBRDate(*from) + " a " + shared.FormatBRDate(*to)
	case from != nil:
		return "a partir de " + shared.FormatBRDate(*from)
	case to != nil:
		return "até " + shared.FormatBRDate(*to)
	default:
		return "todo o histórico"
	}
}
