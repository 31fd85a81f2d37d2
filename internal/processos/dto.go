package processos

import (
	"time"

	"github.com/cbmgo/financeiro/internal/ledger"
)

// CreateProcessoRequest opens a payment case.
type CreateProcessoRequest struct {
	Numero        string  `json:"numero" validate:"required,max=60"`
	Credor        string  `json:"credor" validate:"required,max=300"`
	NumeroEmpenho string  `json:"numeroEmpenho" validate:"omitempty,max=60"`
	DataEmpenho   string  `json:"dataEmpenho" validate:"omitempty"`
	DataPagamento string  `json:"dataPagamento" validate:"required"`
	Valor         float64 `json:"valor" validate:"required,gt=0"`
}

// UpdateProcessoRequest replaces the mutable fields of a processo.
type UpdateProcessoRequest struct {
	Numero        string  `json:"numero" validate:"required,max=60"`
	Credor        string  `json:"credor" validate:"required,max=300"`
	NumeroEmpenho string  `json:"numeroEmpenho" validate:"omitempty,max=60"`
	DataEmpenho   string  `json:"dataEmpenho" validate:"omitempty"`
	DataPagamento string  `json:"dataPagamento" validate:"required"`
	Valor         float64 `json:"valor" validate:"required,gt=0"`
}

// ListFilter narrows processo listings.
type ListFilter struct {
	Status   string
	Page     int
	PageSize int
}

type parsedDates struct {
	pagamento time.Time
	empenho   *time.Time
}

func parseRequestDates(dataPagamento, dataEmpenho string) (parsedDates, error) {
	pagamento, err := ledger.ParseDate(dataPagamento)
	if err != nil {
		return parsedDates{}, err
	}
	dates := parsedDates{pagamento: pagamento}
	if dataEmpenho != "" {
		empenho, err := ledger.ParseDate(dataEmpenho)
		if err != nil {
			return parsedDates{}, err
		}
		dates.empenho = &empenho
	}
	return dates, nil
}
