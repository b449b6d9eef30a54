package engine

// =============================================================================
// ACCOUNT - Per-client mutable state
// =============================================================================

// Account is the per-client state the rule engine mutates: the two balances,
// the frozen flag, and the two indices needed to validate disputes.
//
// The indices replace full transaction-history replay: deposits maps every
// accepted deposit's tx id to its amount, disputed holds the tx ids
// currently under active dispute. Both are O(1) lookups.
//
// Accounts are created lazily by the ledger and mutated exclusively through
// Apply; after every successful transition total == available + held.
type Account struct {
	client    ClientID
	available Amount
	held      Amount
	frozen    bool

	deposits map[TxID]Amount
	disputed map[TxID]struct{}
}

// NewAccount returns an empty, unfrozen account for the given client.
func NewAccount(client ClientID) *Account {
	return &Account{
		client:   client,
		deposits: make(map[TxID]Amount),
		disputed: make(map[TxID]struct{}),
	}
}

func (a *Account) Client() ClientID  { return a.client }
func (a *Account) Available() Amount { return a.available }
func (a *Account) Held() Amount      { return a.held }
func (a *Account) Frozen() bool      { return a.frozen }

// Total returns available + held. Pure.
func (a *Account) Total() Amount { return a.available.Add(a.held) }

// DepositAmount returns the stored amount of a prior accepted deposit.
func (a *Account) DepositAmount(tx TxID) (Amount, bool) {
	amount, ok := a.deposits[tx]
	return amount, ok
}

// IsDisputed reports whether tx is currently under active dispute.
func (a *Account) IsDisputed(tx TxID) bool {
	_, ok := a.disputed[tx]
	return ok
}

// =============================================================================
// SNAPSHOT - Output-boundary view of an account
// =============================================================================

// Snapshot is the final per-account state emitted at the end of a run.
type Snapshot struct {
	Client    ClientID
	Available Amount
	Held      Amount
	Total     Amount
	Locked    bool
}

// Snapshot captures the account's current balances.
func (a *Account) Snapshot() Snapshot {
	return Snapshot{
		Client:    a.client,
		Available: a.available,
		Held:      a.held,
		Total:     a.Total(),
		Locked:    a.frozen,
	}
}
