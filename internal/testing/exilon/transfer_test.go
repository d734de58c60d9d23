package exilon

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goExilon/internal/core/amount"
	"github.com/LeJamon/goExilon/internal/core/token"
	jtx "github.com/LeJamon/goExilon/internal/testing"
)

// transferCase is a peer transfer between a fixed or not-fixed sender and
// recipient.
type transferCase struct {
	name     string
	from, to int
}

// transferCases assume distribution accounts 4 to 7 are fixed.
var transferCases = []transferCase{
	{"NotFixedToNotFixed", 0, 1},
	{"NotFixedToFixed", 1, 4},
	{"FixedToNotFixed", 5, 2},
	{"FixedToFixed", 6, 7},
}

func fixUpperHalf(env *jtx.TestEnv) {
	env.MakeFixed(env.Distribution[4:]...)
}

// TestTransfer_NoFeeWithoutPrice tests that the flat fee is zero while the
// pool is too shallow to price one USD.
func TestTransfer_NoFeeWithoutPrice(t *testing.T) {
	for _, tc := range transferCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newEnvWithLiquidity(t, jtx.ETH(1))
			fixUpperHalf(env)
			require.True(t, env.Token.TransferFee().IsZero())

			from, to := env.Distribution[tc.from], env.Distribution[tc.to]
			CheckTransfer(t, env, from, to, jtx.Tokens(1_000_000), amount.Zero)
			CheckTransfer(t, env, from, to, env.Balance(from), amount.Zero)
		})
	}
}

// TestTransfer_WithoutUSDPair tests that no USD pair means no transfer fee.
func TestTransfer_WithoutUSDPair(t *testing.T) {
	env := newEnvWithLiquidity(t, liquidityAmount, jtx.WithoutUSDPair())
	require.True(t, env.Token.TransferFee().IsZero())

	CheckTransfer(t, env, env.Distribution[0], env.Distribution[1], jtx.Tokens(1_000), amount.Zero)
}

// TestTransfer_FlatFee tests the one USD peer transfer fee paid to
// marketing.
func TestTransfer_FlatFee(t *testing.T) {
	for _, tc := range transferCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newEnvWithLiquidity(t, liquidityAmount)
			fixUpperHalf(env)

			path := []common.Address{env.Token.Address(), env.WETH.Address(), env.World.USD.Address()}
			amounts, err := env.Router.GetAmountsIn(jtx.USD(1), path)
			require.NoError(t, err)
			fee := env.Token.TransferFee()
			require.Equal(t, amounts[0], fee)

			// One USD is about ten WETH, which is about 2.5 tokens here
			assert.True(t, fee.Gt(jtx.Tokens(2)), "fee %s", fee)
			assert.True(t, fee.Lt(jtx.Tokens(3)), "fee %s", fee)

			from, to := env.Distribution[tc.from], env.Distribution[tc.to]
			CheckTransfer(t, env, from, to, jtx.Tokens(1_000_000), fee)
			CheckTransfer(t, env, from, to, fee, fee)
		})
	}
}

// TestTransfer_AmountTooSmall tests that a transfer must cover the flat fee.
func TestTransfer_AmountTooSmall(t *testing.T) {
	env := newEnvWithLiquidity(t, liquidityAmount)
	d1, d2 := env.Distribution[0], env.Distribution[1]
	fee := env.Token.TransferFee()
	require.False(t, fee.IsZero())

	before := env.Snapshot()
	jtx.RequireResult(t, env.Transfer(d1, d2, jtx.Minus(fee, amount.New(1))), token.ResultTransferTooSmall)
	after := env.Snapshot()
	jtx.RequireUnchanged(t, before, after, d1)
	jtx.RequireUnchanged(t, before, after, env.Marketing)

	t.Log("Transfer amount too small test passed")
}

// TestTransfer_ExcludedFromPayingFees tests that either side being fee
// excluded waives the flat fee.
func TestTransfer_ExcludedFromPayingFees(t *testing.T) {
	env := newEnvWithLiquidity(t, liquidityAmount)
	d1, d2, d3 := env.Distribution[0], env.Distribution[1], env.Distribution[2]
	require.NoError(t, env.Token.ExcludeFromPayingFees(env.Admin.Address, d1.Address))

	CheckTransfer(t, env, d1, d2, jtx.Tokens(1_000), amount.Zero)
	CheckTransfer(t, env, d3, d1, jtx.Tokens(1_000), amount.Zero)

	// Back to paying
	require.NoError(t, env.Token.IncludeToPayingFees(env.Admin.Address, d1.Address))
	CheckTransfer(t, env, d1, d2, jtx.Tokens(1_000), env.Token.TransferFee())

	t.Log("Excluded from paying fees test passed")
}

// TestTransfer_Multisend tests batch transfers.
func TestTransfer_Multisend(t *testing.T) {
	env := newEnvWithLiquidity(t, liquidityAmount)
	sender := env.Distribution[0]
	recipients := env.Distribution[1:4]
	amounts := []amount.Amount{jtx.Tokens(1_000), jtx.Tokens(2_000), jtx.Tokens(3_000)}
	fee := env.Token.TransferFee()

	before := env.Snapshot()
	jtx.RequireSuccess(t, env.Token.Multisend(sender.Address, jtx.Accounts(recipients...), amounts))
	after := env.Snapshot()

	// Each leg pays its own fee
	feeTotal, err := fee.Mul(amount.New(3))
	require.NoError(t, err)
	assert.Equal(t, feeTotal, jtx.RequireGain(t, before, after, env.Marketing))
	jtx.RequireNear(t, jtx.Tokens(6_000), jtx.RequireLoss(t, before, after, sender))
	for i, acc := range recipients {
		jtx.RequireNear(t, jtx.Minus(amounts[i], fee), jtx.RequireGain(t, before, after, acc))
	}
	jtx.RequireSupply(t, env)

	t.Log("Multisend test passed")
}

// TestTransfer_MultisendErrors tests the argument check and the all or
// nothing behavior of a batch.
func TestTransfer_MultisendErrors(t *testing.T) {
	env := newEnvWithLiquidity(t, liquidityAmount)
	sender := env.Distribution[0]
	recipients := jtx.Accounts(env.Distribution[1:3]...)

	err := env.Token.Multisend(sender.Address, recipients, []amount.Amount{jtx.Tokens(1)})
	jtx.RequireResult(t, err, token.ResultLengthMismatch)

	// The second leg overdraws, so the first one is rolled back too
	amounts := []amount.Amount{jtx.Tokens(1_000), env.Balance(sender)}
	before := env.Snapshot()
	err = env.Token.Multisend(sender.Address, recipients, amounts)
	jtx.RequireResult(t, err, token.ResultBalance)
	after := env.Snapshot()
	for _, p := range env.Parties() {
		jtx.RequireUnchanged(t, before, after, p)
	}

	t.Log("Multisend errors test passed")
}
