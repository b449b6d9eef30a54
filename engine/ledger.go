/*
ledger.go - Sequential fold of a transaction stream into accounts

PURPOSE:
  The Ledger owns the client-id -> Account map. It feeds each incoming
  transaction through the rule engine against the owning account, creating
  accounts lazily on first sight of a client id.

ORDERING:
  Processing is a single-threaded, sequential fold. Within one client's
  stream order is significant (a dispute needs its deposit to exist, a
  resolve needs its dispute), so transactions are applied exactly in the
  order received. No speculative concurrency; if throughput ever demands
  it, per-client partitioning is the only safe unit.

FAILURE MODEL:
  A rule violation or a malformed record is local: it is reported through
  the error callback and the fold continues. Nothing here is fatal.
*/
package engine

import (
	"errors"
	"io"
	"sort"
)

// TransactionSource yields transactions in input order. Next returns io.EOF
// when the stream ends, and errors wrapping ErrBadRecord for rows that fail
// to parse; the fold skips those and keeps reading.
type TransactionSource interface {
	Next() (Transaction, error)
}

// Ledger folds transactions into per-client accounts.
type Ledger struct {
	accounts map[ClientID]*Account
}

func NewLedger() *Ledger {
	return &Ledger{accounts: make(map[ClientID]*Account)}
}

// Process applies one transaction to its owning account, creating the
// account if this is the first transaction naming that client.
func (l *Ledger) Process(tx Transaction) error {
	acct, ok := l.accounts[tx.Client]
	if !ok {
		acct = NewAccount(tx.Client)
		l.accounts[tx.Client] = acct
	}
	return Apply(acct, tx)
}

// Account returns the account for a client, if one exists yet.
func (l *Ledger) Account(client ClientID) (*Account, bool) {
	acct, ok := l.accounts[client]
	return acct, ok
}

// Len returns the number of accounts created so far.
func (l *Ledger) Len() int { return len(l.accounts) }

// Snapshots returns the final state of every account, ordered by client id
// so output is deterministic.
func (l *Ledger) Snapshots() []Snapshot {
	snaps := make([]Snapshot, 0, len(l.accounts))
	for _, acct := range l.accounts {
		snaps = append(snaps, acct.Snapshot())
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Client < snaps[j].Client })
	return snaps
}

// Run drains the source, folding every transaction into the ledger.
// Per-record failures (bad records from the source, rule violations from
// the engine) are handed to onErr and skipped; only a source failure that
// is neither io.EOF nor a bad record stops the run and is returned.
func (l *Ledger) Run(src TransactionSource, onErr func(Transaction, error)) error {
	for {
		tx, err := src.Next()
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, ErrBadRecord):
			if onErr != nil {
				onErr(tx, err)
			}
			continue
		case err != nil:
			return err
		}

		if err := l.Process(tx); err != nil {
			if onErr != nil {
				onErr(tx, err)
			}
		}
	}
}
