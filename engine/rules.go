/*
rules.go - Guarded state transitions, one per transaction kind

PURPOSE:
  Each rule takes the account and the transaction, checks every
  precondition, and only then mutates. On any failure the account is left
  exactly as it was - no partial mutation, ever.

CROSS-CUTTING GUARDS:
  The client-id mismatch check and the frozen check apply to every kind, so
  Apply runs them once before dispatching instead of repeating them inside
  each rule. Frozen blocks every further transition (including disputes)
  but is only a guard, not a state the rules re-enter.

BALANCE INVARIANT:
  total = available + held after every successful transition.
  Deposit is the only kind that increases total, chargeback the only one
  that decreases it apart from withdrawal moving funds out; dispute and
  resolve are pure transfers between available and held.
*/
package engine

// Apply validates and applies one transaction to the account. It is the
// single dispatch entry for the rule engine; on error the account is
// unchanged.
func Apply(a *Account, tx Transaction) error {
	if a.client != tx.Client {
		return &MismatchedAccountError{Expected: a.client, Actual: tx.Client}
	}
	if a.frozen {
		return ErrAccountFrozen
	}

	switch tx.Kind {
	case Deposit:
		return applyDeposit(a, tx)
	case Withdrawal:
		return applyWithdrawal(a, tx)
	case Dispute:
		return applyDispute(a, tx)
	case Resolve:
		return applyResolve(a, tx)
	case Chargeback:
		return applyChargeback(a, tx)
	default:
		return &UnknownKindError{Kind: tx.Kind}
	}
}

// applyDeposit credits available and records the deposit for later dispute
// lookups. A deposit reusing an already-accepted tx id is rejected rather
// than overwriting the index.
func applyDeposit(a *Account, tx Transaction) error {
	if !tx.HasAmount {
		return &MissingAmountError{Tx: tx.Tx}
	}
	if _, exists := a.deposits[tx.Tx]; exists {
		return &DuplicateTransactionError{Tx: tx.Tx}
	}

	a.available = a.available.Add(tx.Amount)
	a.deposits[tx.Tx] = tx.Amount
	return nil
}

// applyWithdrawal debits available. Funds leave the system, so total drops
// with available.
func applyWithdrawal(a *Account, tx Transaction) error {
	if !tx.HasAmount {
		return &MissingAmountError{Tx: tx.Tx}
	}
	if a.available.LessThan(tx.Amount) {
		return &InsufficientFundsError{Available: a.available, Requested: tx.Amount}
	}

	a.available = a.available.Sub(tx.Amount)
	return nil
}

// applyDispute moves the referenced deposit's amount from available to held.
// Only deposits can be disputed; a tx id already under dispute cannot be
// disputed again until it is resolved.
func applyDispute(a *Account, tx Transaction) error {
	amount, ok := a.deposits[tx.Tx]
	if !ok {
		return &DepositNotFoundError{Tx: tx.Tx}
	}
	if a.IsDisputed(tx.Tx) {
		return &AlreadyDisputedError{Tx: tx.Tx}
	}

	a.available = a.available.Sub(amount)
	a.held = a.held.Add(amount)
	a.disputed[tx.Tx] = struct{}{}
	return nil
}

// applyResolve reverses a dispute, returning the held amount to available.
// The tx id leaves the active-dispute set, so a later dispute on the same
// deposit starts fresh.
func applyResolve(a *Account, tx Transaction) error {
	amount, ok := a.deposits[tx.Tx]
	if !ok {
		return &DepositNotFoundError{Tx: tx.Tx}
	}
	if !a.IsDisputed(tx.Tx) {
		return &NotDisputedError{Tx: tx.Tx}
	}

	a.held = a.held.Sub(amount)
	a.available = a.available.Add(amount)
	delete(a.disputed, tx.Tx)
	return nil
}

// applyChargeback finalizes a dispute against the depositor: the held
// amount leaves the system and the account freezes, rejecting everything
// that follows.
func applyChargeback(a *Account, tx Transaction) error {
	amount, ok := a.deposits[tx.Tx]
	if !ok {
		return &DepositNotFoundError{Tx: tx.Tx}
	}
	if !a.IsDisputed(tx.Tx) {
		return &NotDisputedError{Tx: tx.Tx}
	}

	a.held = a.held.Sub(amount)
	delete(a.disputed, tx.Tx)
	a.frozen = true
	return nil
}
