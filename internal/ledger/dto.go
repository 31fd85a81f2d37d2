package ledger

import (
	"fmt"
	"net/url"
	"time"

	"github.com/cbmgo/financeiro/internal/platform/httpx"
	"github.com/cbmgo/financeiro/internal/shared"
)

// CreateReposicaoRequest records a user-initiated credit entry.
type CreateReposicaoRequest struct {
	Data      string  `json:"data" validate:"required"`
	Historico string  `json:"historico" validate:"required,max=300"`
	Valor     float64 `json:"valor" validate:"required,gt=0"`
}

// UpdateLancamentoRequest mutates an unlinked entry.
type UpdateLancamentoRequest struct {
	Data      string  `json:"data" validate:"required"`
	Historico string  `json:"historico" validate:"required,max=300"`
	Valor     float64 `json:"valor" validate:"required,gt=0"`
}

// ListFilter narrows ledger listings and exports.
type ListFilter struct {
	From     *time.Time
	To       *time.Time
	Tipo     string
	Page     int
	PageSize int
}

const dateLayout = "2006-01-02"

// ParseDate parses a calendar date in 2006-01-02 form.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", httpx.ErrValidation, value)
	}
	return t, nil
}

// ParseDateRange reads dataInicio/dataFim query parameters. When both are
// present the range covers the full start day through the full end day.
func ParseDateRange(query url.Values) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if raw := query.Get("dataInicio"); raw != "" {
		t, err := ParseDate(raw)
		if err != nil {
			return nil, nil, err
		}
		start := shared.DayStart(t)
		from = &start
	}
	if raw := query.Get("dataFim"); raw != "" {
		t, err := ParseDate(raw)
		if err != nil {
			return nil, nil, err
		}
		end := shared.DayEnd(t)
		to = &end
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, fmt.Errorf("%w: dataFim before dataInicio", httpx.ErrValidation)
	}
	return from, to, nil
}
