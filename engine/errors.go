/*
errors.go - Centralized error types for the rule engine

PURPOSE:
  All rule-violation errors in one place. Callers match categories with
  errors.Is against the sentinels; the structured types carry the context
  (which tx id, which balances) and Unwrap to their sentinel.

PROPAGATION:
  Every error here is per-record and recoverable: the runner reports it on
  the diagnostic stream and keeps folding. Only I/O-boundary failures
  (unreadable input source) are fatal, and those never originate here.
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrAccountFrozen is returned for any transaction attempted after a
	// chargeback froze the account.
	ErrAccountFrozen = errors.New("account frozen")

	// ErrInsufficientFunds is returned when a withdrawal exceeds the
	// available balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrMissingAmount is returned for a deposit or withdrawal without an
	// amount.
	ErrMissingAmount = errors.New("missing amount")

	// ErrDepositNotFound is returned when a dispute, resolve or chargeback
	// references a tx id with no prior accepted deposit.
	ErrDepositNotFound = errors.New("deposit not found")

	// ErrNotDisputed is returned when a resolve or chargeback references a
	// tx id that is not currently under dispute.
	ErrNotDisputed = errors.New("transaction not disputed")

	// ErrAlreadyDisputed is returned when a dispute references a tx id that
	// is already under active dispute.
	ErrAlreadyDisputed = errors.New("transaction already disputed")

	// ErrDuplicateTransaction is returned when a deposit reuses a tx id
	// that was already accepted.
	ErrDuplicateTransaction = errors.New("duplicate transaction id")

	// ErrMismatchedAccount is returned when a transaction names a client id
	// different from the account it was routed to. Routing is keyed by the
	// transaction's own client id, so this is a defensive guard.
	ErrMismatchedAccount = errors.New("mismatched account")

	// ErrUnknownKind is returned for a transaction kind outside the five
	// supported ones.
	ErrUnknownKind = errors.New("unknown transaction kind")

	// ErrBadRecord marks a malformed input record at the parsing boundary.
	// Sources wrap their per-row failures with it so the runner can skip
	// the row and keep going.
	ErrBadRecord = errors.New("bad record")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

type MismatchedAccountError struct {
	Expected ClientID // account the transaction was routed to
	Actual   ClientID // client id named by the transaction
}

func (e *MismatchedAccountError) Error() string {
	return fmt.Sprintf("mismatched account: routed to client %d, transaction names client %d", e.Expected, e.Actual)
}

func (e *MismatchedAccountError) Unwrap() error { return ErrMismatchedAccount }

type MissingAmountError struct {
	Tx TxID
}

func (e *MissingAmountError) Error() string {
	return fmt.Sprintf("missing amount on transaction %d", e.Tx)
}

func (e *MissingAmountError) Unwrap() error { return ErrMissingAmount }

type InsufficientFundsError struct {
	Available Amount
	Requested Amount
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: available %s, requested %s", e.Available, e.Requested)
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

type DepositNotFoundError struct {
	Tx TxID
}

func (e *DepositNotFoundError) Error() string {
	return fmt.Sprintf("deposit not found: %d", e.Tx)
}

func (e *DepositNotFoundError) Unwrap() error { return ErrDepositNotFound }

type NotDisputedError struct {
	Tx TxID
}

func (e *NotDisputedError) Error() string {
	return fmt.Sprintf("transaction not disputed: %d", e.Tx)
}

func (e *NotDisputedError) Unwrap() error { return ErrNotDisputed }

type AlreadyDisputedError struct {
	Tx TxID
}

func (e *AlreadyDisputedError) Error() string {
	return fmt.Sprintf("transaction already disputed: %d", e.Tx)
}

func (e *AlreadyDisputedError) Unwrap() error { return ErrAlreadyDisputed }

type DuplicateTransactionError struct {
	Tx TxID
}

func (e *DuplicateTransactionError) Error() string {
	return fmt.Sprintf("duplicate transaction id: %d", e.Tx)
}

func (e *DuplicateTransactionError) Unwrap() error { return ErrDuplicateTransaction }

type UnknownKindError struct {
	Kind Kind
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown transaction kind %q", string(e.Kind))
}

func (e *UnknownKindError) Unwrap() error { return ErrUnknownKind }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRuleViolation reports whether err is a per-record rule failure the
// runner should log and skip, as opposed to an I/O-level failure.
func IsRuleViolation(err error) bool {
	return errors.Is(err, ErrAccountFrozen) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrMissingAmount) ||
		errors.Is(err, ErrDepositNotFound) ||
		errors.Is(err, ErrNotDisputed) ||
		errors.Is(err, ErrAlreadyDisputed) ||
		errors.Is(err, ErrDuplicateTransaction) ||
		errors.Is(err, ErrMismatchedAccount) ||
		errors.Is(err, ErrUnknownKind)
}
