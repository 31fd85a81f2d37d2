package processos

import "time"

// Processo states. SETTLED is terminal: liquidar moves PENDING to SETTLED
// exactly once.
const (
	StatusPending = "PENDING"
	StatusSettled = "SETTLED"
)

// Processo is one payment case. Creating it also creates its DEBITO
// lancamento; the two move together through update and delete.
type Processo struct {
	ID            int64      `json:"id"`
	Numero        string     `json:"numero"`
	Credor        string     `json:"credor"`
	NumeroEmpenho *string    `json:"numero_empenho,omitempty"`
	DataEmpenho   *time.Time `json:"data_empenho,omitempty"`
	DataPagamento time.Time  `json:"data_pagamento"`
	Valor         float64    `json:"valor"`
	Status        string     `json:"status"`
	UserID        int64      `json:"user_id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Settled reports whether the processo reached its terminal state.
func (p Processo) Settled() bool {
	return p.Status == StatusSettled
}
