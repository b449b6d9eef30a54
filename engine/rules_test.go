package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payments-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func amt(s string) engine.Amount { return engine.MustAmount(s) }

// accountWithDeposit returns an account that already accepted one deposit.
func accountWithDeposit(t *testing.T, client engine.ClientID, tx engine.TxID, amount string) *engine.Account {
	t.Helper()
	a := engine.NewAccount(client)
	require.NoError(t, engine.Apply(a, engine.NewDeposit(client, tx, amt(amount))))
	return a
}

// accountWithDispute returns an account with a deposit already under dispute.
func accountWithDispute(t *testing.T, client engine.ClientID, tx engine.TxID, amount string) *engine.Account {
	t.Helper()
	a := accountWithDeposit(t, client, tx, amount)
	require.NoError(t, engine.Apply(a, engine.NewDispute(client, tx)))
	return a
}

// assertUnchanged checks the account still matches a snapshot taken before a
// failed transition - the no-partial-mutation guarantee.
func assertUnchanged(t *testing.T, before engine.Snapshot, a *engine.Account) {
	t.Helper()
	assert.Equal(t, before, a.Snapshot())
}

// =============================================================================
// DEPOSIT
// =============================================================================

func TestDeposit_IncreasesAvailable(t *testing.T) {
	a := engine.NewAccount(1)

	err := engine.Apply(a, engine.NewDeposit(1, 1, amt("100.0")))

	require.NoError(t, err)
	assert.Equal(t, "100", a.Available().String())
	assert.True(t, a.Held().IsZero())
	assert.Equal(t, a.Available(), a.Total())
}

func TestDeposit_AccumulatesAndIndexes(t *testing.T) {
	a := engine.NewAccount(1)
	require.NoError(t, engine.Apply(a, engine.NewDeposit(1, 1, amt("1.5"))))
	require.NoError(t, engine.Apply(a, engine.NewDeposit(1, 2, amt("2.25"))))

	assert.Equal(t, "3.75", a.Available().String())

	stored, ok := a.DepositAmount(2)
	require.True(t, ok)
	assert.Equal(t, "2.25", stored.String())
}

func TestDeposit_MissingAmount(t *testing.T) {
	a := engine.NewAccount(1)
	before := a.Snapshot()

	err := engine.Apply(a, engine.Transaction{Kind: engine.Deposit, Client: 1, Tx: 1})

	assert.ErrorIs(t, err, engine.ErrMissingAmount)
	assertUnchanged(t, before, a)
}

func TestDeposit_DuplicateTxIDRejected(t *testing.T) {
	// GIVEN: A deposit with tx id 7 was already accepted
	// WHEN: A second deposit reuses tx id 7
	// THEN: It is rejected and the index keeps the first amount
	a := accountWithDeposit(t, 1, 7, "10")
	before := a.Snapshot()

	err := engine.Apply(a, engine.NewDeposit(1, 7, amt("99")))

	assert.ErrorIs(t, err, engine.ErrDuplicateTransaction)
	var dup *engine.DuplicateTransactionError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, engine.TxID(7), dup.Tx)
	assertUnchanged(t, before, a)

	stored, _ := a.DepositAmount(7)
	assert.Equal(t, "10", stored.String())
}

// =============================================================================
// WITHDRAWAL
// =============================================================================

func TestWithdrawal_DecreasesAvailableOnly(t *testing.T) {
	a := accountWithDeposit(t, 1, 1, "100")

	err := engine.Apply(a, engine.NewWithdrawal(1, 2, amt("40")))

	require.NoError(t, err)
	assert.Equal(t, "60", a.Available().String())
	assert.True(t, a.Held().IsZero())
}

func TestWithdrawal_ExactBalanceSucceeds(t *testing.T) {
	a := accountWithDeposit(t, 1, 1, "50")

	require.NoError(t, engine.Apply(a, engine.NewWithdrawal(1, 2, amt("50"))))
	assert.True(t, a.Available().IsZero())
}

func TestWithdrawal_InsufficientFunds(t *testing.T) {
	// Scenario from the failure table: deposit 50, withdraw 70.
	a := accountWithDeposit(t, 2, 2, "50.0")
	before := a.Snapshot()

	err := engine.Apply(a, engine.NewWithdrawal(2, 3, amt("70.0")))

	assert.ErrorIs(t, err, engine.ErrInsufficientFunds)
	var insuf *engine.InsufficientFundsError
	require.ErrorAs(t, err, &insuf)
	assert.Equal(t, "50", insuf.Available.String())
	assert.Equal(t, "70", insuf.Requested.String())
	assertUnchanged(t, before, a)
}

func TestWithdrawal_HeldFundsNotWithdrawable(t *testing.T) {
	// Disputed funds sit in held; only available covers withdrawals.
	a := accountWithDispute(t, 1, 1, "100")

	err := engine.Apply(a, engine.NewWithdrawal(1, 2, amt("1")))

	assert.ErrorIs(t, err, engine.ErrInsufficientFunds)
}

func TestWithdrawal_MissingAmount(t *testing.T) {
	a := accountWithDeposit(t, 1, 1, "100")

	err := engine.Apply(a, engine.Transaction{Kind: engine.Withdrawal, Client: 1, Tx: 2})

	assert.ErrorIs(t, err, engine.ErrMissingAmount)
}

// =============================================================================
// DISPUTE
// =============================================================================

func TestDispute_MovesAvailableToHeld(t *testing.T) {
	a := accountWithDeposit(t, 1, 1, "100.0")
	totalBefore := a.Total()

	err := engine.Apply(a, engine.NewDispute(1, 1))

	require.NoError(t, err)
	assert.True(t, a.Available().IsZero())
	assert.Equal(t, "100", a.Held().String())
	assert.True(t, a.Total().Equal(totalBefore), "dispute is a pure transfer")
	assert.True(t, a.IsDisputed(1))
}

func TestDispute_UnknownDeposit(t *testing.T) {
	a := engine.NewAccount(3)
	before := a.Snapshot()

	err := engine.Apply(a, engine.NewDispute(3, 99))

	assert.ErrorIs(t, err, engine.ErrDepositNotFound)
	var nf *engine.DepositNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, engine.TxID(99), nf.Tx)
	assertUnchanged(t, before, a)
}

func TestDispute_WhileAlreadyDisputedRejected(t *testing.T) {
	a := accountWithDispute(t, 1, 1, "100")
	before := a.Snapshot()

	err := engine.Apply(a, engine.NewDispute(1, 1))

	assert.ErrorIs(t, err, engine.ErrAlreadyDisputed)
	assertUnchanged(t, before, a)
}

func TestDispute_AfterResolveStartsFresh(t *testing.T) {
	// GIVEN: A dispute on tx 1 was resolved
	// WHEN: The same deposit is disputed again
	// THEN: The fresh dispute succeeds and funds move to held again
	a := accountWithDispute(t, 1, 1, "100")
	require.NoError(t, engine.Apply(a, engine.NewResolve(1, 1)))

	err := engine.Apply(a, engine.NewDispute(1, 1))

	require.NoError(t, err)
	assert.Equal(t, "100", a.Held().String())
	assert.True(t, a.Available().IsZero())
}

// =============================================================================
// RESOLVE
// =============================================================================

func TestResolve_RestoresPreDisputeBalances(t *testing.T) {
	a := accountWithDeposit(t, 1, 1, "100")
	preAvailable, preHeld, preTotal := a.Available(), a.Held(), a.Total()
	require.NoError(t, engine.Apply(a, engine.NewDispute(1, 1)))

	err := engine.Apply(a, engine.NewResolve(1, 1))

	require.NoError(t, err)
	assert.True(t, a.Available().Equal(preAvailable), "dispute/resolve round-trip restores available")
	assert.True(t, a.Held().Equal(preHeld), "dispute/resolve round-trip restores held")
	assert.True(t, a.Total().Equal(preTotal), "total invariant across the pair")
	assert.False(t, a.IsDisputed(1))
}

func TestResolve_WithoutDispute(t *testing.T) {
	a := accountWithDeposit(t, 1, 1, "100")
	before := a.Snapshot()

	err := engine.Apply(a, engine.NewResolve(1, 1))

	assert.ErrorIs(t, err, engine.ErrNotDisputed)
	assertUnchanged(t, before, a)
}

func TestResolve_DepositNotFound(t *testing.T) {
	a := accountWithDispute(t, 1, 1, "100")

	err := engine.Apply(a, engine.NewResolve(1, 99))

	assert.ErrorIs(t, err, engine.ErrDepositNotFound)
}

// =============================================================================
// CHARGEBACK
// =============================================================================

func TestChargeback_RemovesHeldAndFreezes(t *testing.T) {
	a := accountWithDispute(t, 1, 1, "100.0")
	totalBefore := a.Total()

	err := engine.Apply(a, engine.NewChargeback(1, 1))

	require.NoError(t, err)
	assert.True(t, a.Available().IsZero())
	assert.True(t, a.Held().IsZero())
	assert.Equal(t, "100", totalBefore.Sub(a.Total()).String(), "total drops by the disputed amount")
	assert.True(t, a.Frozen())
}

func TestChargeback_WithoutDispute(t *testing.T) {
	a := accountWithDeposit(t, 1, 1, "100")
	before := a.Snapshot()

	err := engine.Apply(a, engine.NewChargeback(1, 1))

	assert.ErrorIs(t, err, engine.ErrNotDisputed)
	assertUnchanged(t, before, a)
}

func TestChargeback_DepositNotFound(t *testing.T) {
	a := accountWithDispute(t, 1, 1, "100")

	err := engine.Apply(a, engine.NewChargeback(1, 42))

	assert.ErrorIs(t, err, engine.ErrDepositNotFound)
}

// =============================================================================
// CROSS-CUTTING GUARDS
// =============================================================================

func TestFrozenAccount_RejectsEveryKind(t *testing.T) {
	a := accountWithDispute(t, 1, 1, "100")
	require.NoError(t, engine.Apply(a, engine.NewChargeback(1, 1)))
	require.True(t, a.Frozen())
	before := a.Snapshot()

	attempts := []engine.Transaction{
		engine.NewDeposit(1, 2, amt("10")),
		engine.NewWithdrawal(1, 3, amt("1")),
		engine.NewDispute(1, 1),
		engine.NewResolve(1, 1),
		engine.NewChargeback(1, 1),
	}
	for _, tx := range attempts {
		err := engine.Apply(a, tx)
		assert.ErrorIs(t, err, engine.ErrAccountFrozen, "kind %s", tx.Kind)
		assertUnchanged(t, before, a)
	}
}

func TestMismatchedClient_RejectedBeforeDispatch(t *testing.T) {
	a := accountWithDeposit(t, 1, 1, "100")
	before := a.Snapshot()

	err := engine.Apply(a, engine.NewDeposit(2, 5, amt("10")))

	assert.ErrorIs(t, err, engine.ErrMismatchedAccount)
	var mm *engine.MismatchedAccountError
	require.ErrorAs(t, err, &mm)
	assert.Equal(t, engine.ClientID(1), mm.Expected)
	assert.Equal(t, engine.ClientID(2), mm.Actual)
	assertUnchanged(t, before, a)
}

func TestUnknownKind_Rejected(t *testing.T) {
	a := engine.NewAccount(1)

	err := engine.Apply(a, engine.Transaction{Kind: "transfer", Client: 1, Tx: 1})

	assert.ErrorIs(t, err, engine.ErrUnknownKind)
}

func TestParseKind_TrimsAndLowercases(t *testing.T) {
	k, err := engine.ParseKind("  Deposit ")
	require.NoError(t, err)
	assert.Equal(t, engine.Deposit, k)

	k, err = engine.ParseKind("CHARGEBACK")
	require.NoError(t, err)
	assert.Equal(t, engine.Chargeback, k)

	_, err = engine.ParseKind("refund")
	assert.ErrorIs(t, err, engine.ErrUnknownKind)
}

func TestIsRuleViolation(t *testing.T) {
	a := accountWithDeposit(t, 1, 1, "5")

	err := engine.Apply(a, engine.NewWithdrawal(1, 2, amt("10")))
	assert.True(t, engine.IsRuleViolation(err))

	assert.False(t, engine.IsRuleViolation(engine.ErrBadRecord))
	assert.False(t, engine.IsRuleViolation(nil))
}
