/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for the HTTP surface. They decouple the wire contract
  from engine types: monetary fields travel as decimal strings (never JSON
  numbers, which are binary floats on most clients), ids as numbers.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *DTO:     Response types returned to clients
*/
package api

import "github.com/warp/payments-engine/engine"

// TransactionRequest is the body of POST /api/transactions.
// Amount is decimal text, present only for deposits and withdrawals.
type TransactionRequest struct {
	Type   string  `json:"type"`
	Client uint16  `json:"client"`
	Tx     uint32  `json:"tx"`
	Amount *string `json:"amount,omitempty"`
}

// AccountDTO is the wire form of an account snapshot.
type AccountDTO struct {
	Client    uint16 `json:"client"`
	Available string `json:"available"`
	Held      string `json:"held"`
	Total     string `json:"total"`
	Locked    bool   `json:"locked"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toAccountDTO(s engine.Snapshot) AccountDTO {
	return AccountDTO{
		Client:    uint16(s.Client),
		Available: s.Available.String(),
		Held:      s.Held.String(),
		Total:     s.Total.String(),
		Locked:    s.Locked,
	}
}

// toTransaction converts the request into an engine transaction.
func (r TransactionRequest) toTransaction() (engine.Transaction, error) {
	kind, err := engine.ParseKind(r.Type)
	if err != nil {
		return engine.Transaction{}, err
	}

	tx := engine.Transaction{
		Kind:   kind,
		Client: engine.ClientID(r.Client),
		Tx:     engine.TxID(r.Tx),
	}
	if r.Amount != nil && *r.Amount != "" {
		amount, err := engine.ParseAmount(*r.Amount)
		if err != nil {
			return engine.Transaction{}, err
		}
		tx.Amount = amount
		tx.HasAmount = true
	}
	return tx, nil
}
