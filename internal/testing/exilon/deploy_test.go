package exilon

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goExilon/internal/core/amount"
	"github.com/LeJamon/goExilon/internal/core/chain"
	"github.com/LeJamon/goExilon/internal/core/token"
	jtx "github.com/LeJamon/goExilon/internal/testing"
)

// liquidityAmount is deep enough that the peer transfer fee has a price.
var liquidityAmount = jtx.ETH(8_000_000_000_000)

// newEnvWithLiquidity deploys the token and bootstraps the pool with value.
func newEnvWithLiquidity(t *testing.T, value amount.Amount, opts ...jtx.EnvOption) *jtx.TestEnv {
	t.Helper()
	env := jtx.NewTestEnv(t, opts...)
	env.AddLiquidity(value)
	return env
}

// TestDeploy_Metadata tests the token metadata and the genesis balances.
func TestDeploy_Metadata(t *testing.T) {
	env := jtx.NewTestEnv(t)

	assert.Equal(t, "Exilon", env.Token.Name())
	assert.Equal(t, "EXL", env.Token.Symbol())
	assert.Equal(t, uint8(6), env.Token.Decimals())
	assert.Equal(t, jtx.Tokens(5_000_000_000_000), env.Token.TotalSupply())

	reserved := jtx.Percent(env.Token.TotalSupply(), 40)
	assert.Equal(t, reserved, env.Token.BalanceOf(env.Token.Address()))
	for _, acc := range env.Distribution {
		jtx.RequireBalance(t, env, acc, jtx.Tokens(375_000_000_000))
	}
	jtx.RequireBalance(t, env, env.Admin, amount.Zero)
	jtx.RequireBalance(t, env, env.Marketing, amount.Zero)
	jtx.RequireSupply(t, env)

	// The pair, the burn sink, marketing and the token itself start fixed
	fixed := env.Token.ExcludedFromDistribution().Values()
	require.Len(t, fixed, 4)
	assert.Equal(t, env.Pair.Address(), fixed[0])
	assert.Equal(t, chain.DeadAddress, fixed[1])
	assert.Equal(t, env.Marketing.Address, fixed[2])
	assert.Equal(t, env.Token.Address(), fixed[3])

	assert.True(t, env.Token.IsExcludedFromPayingFees(env.Token.Address()))
	assert.Equal(t, jtx.Percent(env.Token.TotalSupply(), 60), env.Token.MaxBurnAmount())
	assert.Equal(t, jtx.ETH(1), env.Token.WethLimitForLpFee())
	assert.True(t, env.Token.FeeAmountInTokens().IsZero())

	t.Log("Deploy metadata test passed")
}

// TestDeploy_AddLiquidity tests the one-shot liquidity bootstrap.
func TestDeploy_AddLiquidity(t *testing.T) {
	env := jtx.NewTestEnv(t)
	value := jtx.ETH(1)

	// Only the admin can bootstrap
	_, err := env.Token.AddLiquidity(env.Distribution[0].Address, value)
	jtx.RequireResult(t, err, token.ResultNotAdmin)
	assert.Equal(t, token.Uninitialized, env.Token.LiquidityState())

	reserved := env.Token.BalanceOf(env.Token.Address())
	liquidity := env.AddLiquidity(value)
	assert.Equal(t, token.Bootstrapped, env.Token.LiquidityState())

	tokenReserve, wethReserve := env.Reserves()
	assert.Equal(t, reserved, tokenReserve)
	assert.Equal(t, value, wethReserve)
	assert.True(t, env.Token.BalanceOf(env.Token.Address()).IsZero())

	product, err := reserved.Mul(value)
	require.NoError(t, err)
	expected := jtx.Minus(product.Sqrt(), amount.New(1000))
	assert.Equal(t, expected, liquidity)
	assert.Equal(t, expected, env.LPBalance(env.DefaultLpMint))
	assert.Equal(t, jtx.Plus(expected, amount.New(1000)), env.Pair.TotalSupply())

	// A second bootstrap is refused
	_, err = env.Token.AddLiquidity(env.Admin.Address, value)
	jtx.RequireResult(t, err, token.ResultOnlyOnce)
	jtx.RequireSupply(t, env)

	t.Log("AddLiquidity test passed")
}

// TestDeploy_BeforeLiquidity tests that movements and distribution changes
// wait for the bootstrap.
func TestDeploy_BeforeLiquidity(t *testing.T) {
	env := jtx.NewTestEnv(t)
	d1, d2 := env.Distribution[0], env.Distribution[1]

	jtx.RequireResult(t, env.Transfer(d1, d2, amount.Zero), token.ResultLiquidityNotAdded)
	jtx.RequireResult(t, env.Transfer(d1, d2, jtx.Tokens(1)), token.ResultLiquidityNotAdded)

	require.NoError(t, env.Token.Approve(d1.Address, d2.Address, jtx.Tokens(1)))
	err := env.Token.TransferFrom(d2.Address, d1.Address, d2.Address, amount.Zero)
	jtx.RequireResult(t, err, token.ResultLiquidityNotAdded)

	err = env.Token.Multisend(d1.Address, jtx.Accounts(d2), []amount.Amount{jtx.Tokens(1)})
	jtx.RequireResult(t, err, token.ResultLiquidityNotAdded)

	jtx.RequireResult(t, env.Token.ExcludeFromFeesDistribution(env.Admin.Address, d1.Address), token.ResultLiquidityNotAdded)
	jtx.RequireResult(t, env.Token.IncludeToFeesDistribution(env.Admin.Address, env.Marketing.Address), token.ResultLiquidityNotAdded)

	_, err = env.Token.ForceLpFeesDistribute(env.Admin.Address)
	jtx.RequireResult(t, err, token.ResultLiquidityNotAdded)

	// Buying needs a pool
	require.Error(t, env.Buy(d1, jtx.ETHFrac("0.1")))

	jtx.RequireBalance(t, env, d1, jtx.Tokens(375_000_000_000))
	jtx.RequireSupply(t, env)

	t.Log("Before liquidity test passed")
}

// TestDeploy_Allowances tests approve, transferFrom and the allowance
// adjustments.
func TestDeploy_Allowances(t *testing.T) {
	env := newEnvWithLiquidity(t, jtx.ETH(1))
	owner, spender, to := env.Distribution[0], env.Distribution[1], env.Distribution[2]
	value := jtx.Tokens(1_000)

	require.NoError(t, env.Token.Approve(owner.Address, spender.Address, value))
	assert.Equal(t, value, env.Token.Allowance(owner.Address, spender.Address))

	err := env.Token.TransferFrom(spender.Address, owner.Address, to.Address, jtx.Plus(value, amount.New(1)))
	jtx.RequireResult(t, err, token.ResultAllowance)
	assert.Equal(t, value, env.Token.Allowance(owner.Address, spender.Address))

	before := env.Snapshot()
	jtx.RequireSuccess(t, env.Token.TransferFrom(spender.Address, owner.Address, to.Address, value))
	after := env.Snapshot()
	jtx.RequireNear(t, value, jtx.RequireLoss(t, before, after, owner))
	jtx.RequireNear(t, value, jtx.RequireGain(t, before, after, to))
	jtx.RequireUnchanged(t, before, after, spender)
	assert.True(t, env.Token.Allowance(owner.Address, spender.Address).IsZero())

	require.NoError(t, env.Token.IncreaseAllowance(owner.Address, spender.Address, value))
	require.NoError(t, env.Token.IncreaseAllowance(owner.Address, spender.Address, value))
	assert.Equal(t, jtx.Plus(value, value), env.Token.Allowance(owner.Address, spender.Address))
	require.NoError(t, env.Token.DecreaseAllowance(owner.Address, spender.Address, value))
	assert.Equal(t, value, env.Token.Allowance(owner.Address, spender.Address))

	err = env.Token.DecreaseAllowance(owner.Address, spender.Address, jtx.Plus(value, amount.New(1)))
	jtx.RequireResult(t, err, token.ResultAllowanceBelowZero)
	assert.Equal(t, value, env.Token.Allowance(owner.Address, spender.Address))

	jtx.RequireResult(t, env.Token.Approve(owner.Address, chain.ZeroAddress, value), token.ResultZeroAddress)
	jtx.RequireResult(t, env.Token.Approve(chain.ZeroAddress, spender.Address, value), token.ResultZeroAddress)

	t.Log("Allowances test passed")
}

// TestDeploy_TransferErrors tests the argument checks of a transfer.
func TestDeploy_TransferErrors(t *testing.T) {
	env := newEnvWithLiquidity(t, jtx.ETH(1))
	d1, d2 := env.Distribution[0], env.Distribution[1]
	zero := &jtx.Account{Name: "zero", Address: chain.ZeroAddress}

	jtx.RequireResult(t, env.Transfer(d1, zero, jtx.Tokens(1)), token.ResultZeroAddress)

	// The token address only receives fees and injector moves
	exilon := &jtx.Account{Name: "exilon", Address: env.Token.Address()}
	pool := env.Token.FeeAmountInTokens()
	held := env.Balance(exilon)
	jtx.RequireResult(t, env.Transfer(d1, exilon, jtx.Tokens(1)), token.ResultTransferToToken)
	require.NoError(t, env.Token.Approve(d1.Address, d2.Address, jtx.Tokens(1)))
	err := env.Token.TransferFrom(d2.Address, d1.Address, exilon.Address, jtx.Tokens(1))
	jtx.RequireResult(t, err, token.ResultTransferToToken)
	err = env.Token.Multisend(d1.Address, []common.Address{exilon.Address, d2.Address}, []amount.Amount{jtx.Tokens(1), jtx.Tokens(1)})
	jtx.RequireResult(t, err, token.ResultTransferToToken)
	assert.Equal(t, held, env.Balance(exilon))
	assert.Equal(t, pool, env.Token.FeeAmountInTokens())
	require.NoError(t, env.Token.CheckSupply())

	over := jtx.Plus(env.Balance(d1), amount.New(1))
	jtx.RequireResult(t, env.Transfer(d1, d2, over), token.ResultBalance)

	// A zero transfer succeeds and moves nothing
	before := env.Snapshot()
	jtx.RequireSuccess(t, env.Transfer(d1, d2, amount.Zero))
	after := env.Snapshot()
	for _, p := range env.Parties() {
		jtx.RequireUnchanged(t, before, after, p)
	}

	t.Log("Transfer errors test passed")
}

// TestDeploy_NewPairNotAllowed tests that tokens cannot be moved into a
// pair other than the main one.
func TestDeploy_NewPairNotAllowed(t *testing.T) {
	env := newEnvWithLiquidity(t, jtx.ETH(1))
	d1 := env.Distribution[0]

	other, err := env.World.Factory.CreatePair(env.Token.Address(), env.World.USD.Address())
	require.NoError(t, err)
	otherAcc := &jtx.Account{Name: "usdPair", Address: other.Address()}

	jtx.RequireResult(t, env.Transfer(d1, otherAcc, jtx.Tokens(1)), token.ResultNewPairNotAllowed)
	jtx.RequireBalance(t, env, d1, jtx.Tokens(375_000_000_000))
	assert.True(t, env.Token.BalanceOf(other.Address()).IsZero())

	// The main pair still accepts tokens
	jtx.RequireSuccess(t, env.Sell(d1, jtx.Tokens(1)))

	t.Log("New pair guard test passed")
}
