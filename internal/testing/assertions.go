package testing

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goExilon/internal/core/amount"
	"github.com/LeJamon/goExilon/internal/core/token"
)

// Tolerance is the rounding slack, in base units, allowed by RequireNear.
const Tolerance = 10

// RequireBalance asserts that an account has the expected token balance.
// This is a convenience wrapper around require.Equal for balance checks.
func RequireBalance(t *testing.T, env *TestEnv, acc *Account, expected amount.Amount) {
	t.Helper()
	actual := env.Balance(acc)
	require.Equal(t, expected, actual,
		"Account %s balance mismatch: expected %s, got %s", acc.Name, expected, actual)
}

// RequireBalanceNear asserts that an account balance is within Tolerance of
// the expected value.
func RequireBalanceNear(t *testing.T, env *TestEnv, acc *Account, expected amount.Amount) {
	t.Helper()
	actual := env.Balance(acc)
	require.True(t, near(expected, actual, Tolerance),
		"Account %s balance mismatch: expected %s +/- %d, got %s", acc.Name, expected, Tolerance, actual)
}

// RequireNear asserts that actual is within Tolerance of expected.
func RequireNear(t *testing.T, expected, actual amount.Amount, msgAndArgs ...interface{}) {
	t.Helper()
	RequireWithin(t, expected, actual, Tolerance, msgAndArgs...)
}

// RequireWithin asserts that actual is within tolerance of expected.
func RequireWithin(t *testing.T, expected, actual amount.Amount, tolerance uint64, msgAndArgs ...interface{}) {
	t.Helper()
	if near(expected, actual, tolerance) {
		return
	}
	require.Fail(t, fmt.Sprintf("expected %s +/- %d, got %s (diff %s)",
		expected, tolerance, actual, diff(expected, actual)), msgAndArgs...)
}

func near(a, b amount.Amount, tolerance uint64) bool {
	return diff(a, b).Lte(amount.New(tolerance))
}

func diff(a, b amount.Amount) amount.Amount {
	if a.Gt(b) {
		return a.SubFloor(b)
	}
	return b.SubFloor(a)
}

// RequireGain asserts that acc's balance grew between before and after and
// returns the gain.
func RequireGain(t *testing.T, before, after Snapshot, acc *Account) amount.Amount {
	t.Helper()
	b, a := before.Of(acc), after.Of(acc)
	require.True(t, a.Gte(b), "Account %s balance fell from %s to %s", acc.Name, b, a)
	return a.SubFloor(b)
}

// RequireLoss asserts that acc's balance shrank between before and after
// and returns the loss.
func RequireLoss(t *testing.T, before, after Snapshot, acc *Account) amount.Amount {
	t.Helper()
	b, a := before.Of(acc), after.Of(acc)
	require.True(t, a.Lte(b), "Account %s balance rose from %s to %s", acc.Name, b, a)
	return b.SubFloor(a)
}

// RequireUnchanged asserts that acc's balance is the same in both snapshots.
func RequireUnchanged(t *testing.T, before, after Snapshot, acc *Account) {
	t.Helper()
	require.Equal(t, before.Of(acc), after.Of(acc),
		"Account %s balance changed", acc.Name)
}

// RequireSuccess asserts that an operation succeeded.
func RequireSuccess(t *testing.T, err error) {
	t.Helper()
	require.NoError(t, err, "Expected success, got %s", token.ResultOf(err))
}

// RequireResult asserts that an operation ended with the expected result code.
func RequireResult(t *testing.T, err error, expected token.Result) {
	t.Helper()
	actual := token.ResultOf(err)
	require.Equal(t, expected, actual,
		"Expected result %s, got %s: %v", expected, actual, err)
}

// RequireSupply asserts that the ledger still adds up to the total supply.
func RequireSupply(t *testing.T, env *TestEnv) {
	t.Helper()
	require.NoError(t, env.Token.CheckSupply())
}
