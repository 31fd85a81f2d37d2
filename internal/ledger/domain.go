package ledger

import "time"

// Lancamento types. A reposição is a CREDITO entry with no processo link;
// every processo owns exactly one DEBITO entry created with it.
const (
	TipoCredito = "CREDITO"
	TipoDebito  = "DEBITO"
)

// Lancamento is one ledger entry, scoped to its owning user.
type Lancamento struct {
	ID         int64     `json:"id"`
	Data       time.Time `json:"data"`
	Historico  string    `json:"historico"`
	Valor      float64   `json:"valor"`
	Tipo       string    `json:"tipo"`
	UserID     int64     `json:"user_id"`
	ProcessoID *int64    `json:"processo_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Linked reports whether the entry belongs to a processo, which freezes it
// against direct mutation and deletion.
func (l Lancamento) Linked() bool {
	return l.ProcessoID != nil
}

// SaldoResult is the running balance: credits minus debits, zero when the
// user has no entries.
type SaldoResult struct {
	Saldo    float64 `json:"saldo"`
	Creditos float64 `json:"creditos"`
	Debitos  float64 `json:"debitos"`
}

// ChartSlice is one top-expense group: DEBITO entries summed by historico.
type ChartSlice struct {
	Historico string  `json:"historico"`
	Total     float64 `json:"total"`
}

// MonthlyPoint is one month of the receitas/despesas series. Months with
// no entries still appear, zero-filled, so charts get a gap-free series.
type MonthlyPoint struct {
	Mes      string  `json:"mes"`
	Receitas float64 `json:"receitas"`
	Despesas float64 `json:"despesas"`
}
