// Package engine implements the per-account transaction-processing core:
// the monetary amount type, the transaction model, account state, the
// per-kind rule functions, and the ledger that folds a transaction stream
// into final account snapshots.
package engine

import "strings"

// =============================================================================
// IDENTIFIERS
// =============================================================================

// ClientID identifies an account owner.
type ClientID uint16

// TxID identifies a deposit or withdrawal. Dispute, resolve and chargeback
// records carry the TxID of the deposit they act on, not an id of their own.
type TxID uint32

// =============================================================================
// TRANSACTION KIND
// =============================================================================

type Kind string

const (
	Deposit    Kind = "deposit"
	Withdrawal Kind = "withdrawal"
	Dispute    Kind = "dispute"
	Resolve    Kind = "resolve"
	Chargeback Kind = "chargeback"
)

// ParseKind maps input text to a Kind. Surrounding whitespace is trimmed and
// matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Deposit, Withdrawal, Dispute, Resolve, Chargeback:
		return k, nil
	default:
		return "", &UnknownKindError{Kind: k}
	}
}

// =============================================================================
// TRANSACTION - Immutable input record
// =============================================================================

// Transaction is a single input record. It is a value: once constructed it
// is never modified. Amount is meaningful only when HasAmount is set, which
// is required for deposits and withdrawals and forbidden for the kinds that
// reference a prior deposit.
type Transaction struct {
	Kind      Kind
	Client    ClientID
	Tx        TxID
	Amount    Amount
	HasAmount bool
}

func NewDeposit(client ClientID, tx TxID, amount Amount) Transaction {
	return Transaction{Kind: Deposit, Client: client, Tx: tx, Amount: amount, HasAmount: true}
}

func NewWithdrawal(client ClientID, tx TxID, amount Amount) Transaction {
	return Transaction{Kind: Withdrawal, Client: client, Tx: tx, Amount: amount, HasAmount: true}
}

func NewDispute(client ClientID, tx TxID) Transaction {
	return Transaction{Kind: Dispute, Client: client, Tx: tx}
}

func NewResolve(client ClientID, tx TxID) Transaction {
	return Transaction{Kind: Resolve, Client: client, Tx: tx}
}

func NewChargeback(client ClientID, tx TxID) Transaction {
	return Transaction{Kind: Chargeback, Client: client, Tx: tx}
}
