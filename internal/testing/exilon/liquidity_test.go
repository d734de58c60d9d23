package exilon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goExilon/internal/core/amount"
	"github.com/LeJamon/goExilon/internal/core/chain"
	"github.com/LeJamon/goExilon/internal/core/fees"
	"github.com/LeJamon/goExilon/internal/core/token"
	jtx "github.com/LeJamon/goExilon/internal/testing"
)

// addOrders are the two ways a provider pays into the pair.
var addOrders = []struct {
	name  string
	check func(t *testing.T, env *jtx.TestEnv, acc *jtx.Account, tokens amount.Amount, tiers fees.Tiers)
	add   func(env *jtx.TestEnv) addLPFunc
}{
	{"TokenFirst", CheckAddLP, func(env *jtx.TestEnv) addLPFunc { return env.AddLP }},
	{"WethFirst", CheckAddLPWethFirst, func(env *jtx.TestEnv) addLPFunc { return env.AddLPWethFirst }},
}

func halfLP(t *testing.T, env *jtx.TestEnv, acc *jtx.Account) amount.Amount {
	t.Helper()
	lp := jtx.Frac(env.LPBalance(acc), 1, 2)
	require.False(t, lp.IsZero(), "%s holds no LP", acc.Name)
	return lp
}

// TestLiquidity_WithoutFees tests removing and adding liquidity for a
// provider excluded from paying fees.
func TestLiquidity_WithoutFees(t *testing.T) {
	for _, fixed := range []bool{false, true} {
		name := "NotFixed"
		if fixed {
			name = "Fixed"
		}
		for _, order := range addOrders {
			t.Run(name+"/"+order.name, func(t *testing.T) {
				env := newEnvWithLiquidity(t, jtx.ETH(10))
				provider := env.DefaultLpMint
				require.NoError(t, env.Token.ExcludeFromPayingFees(env.Admin.Address, provider.Address))
				if fixed {
					env.MakeFixed(provider)
				}

				CheckRemoveLP(t, env, provider, halfLP(t, env, provider), NoTiers)
				order.check(t, env, provider, env.Balance(provider), NoTiers)
			})
		}
	}
}

// TestLiquidity_WithFees tests that removals pay the buy tiers and adds pay
// the sell schedule.
func TestLiquidity_WithFees(t *testing.T) {
	for _, fixed := range []bool{false, true} {
		name := "NotFixed"
		if fixed {
			name = "Fixed"
		}
		for _, order := range addOrders {
			t.Run(name+"/"+order.name, func(t *testing.T) {
				env := newEnvWithLiquidity(t, jtx.ETH(10))
				provider := env.DefaultLpMint
				if fixed {
					env.MakeFixed(provider)
				}

				CheckRemoveLP(t, env, provider, halfLP(t, env, provider), BuyTiers)
				order.check(t, env, provider, env.Balance(provider), BigEarly)

				env.AdvanceTimeTo(60 * time.Minute)
				CheckRemoveLP(t, env, provider, halfLP(t, env, provider), BuyTiers)
				order.check(t, env, provider, jtx.Frac(env.Balance(provider), 1, 2), SellLate)
				order.check(t, env, provider, env.Balance(provider), BigLate)
			})
		}
	}
}

// TestLiquidity_NoInjectionOnBuyOrRemoval tests that the fee pool is only
// injected on movements that do not come from the pair.
func TestLiquidity_NoInjectionOnBuyOrRemoval(t *testing.T) {
	env := newEnvWithLiquidity(t, jtx.ETH(10))
	require.NoError(t, env.Token.SetWethLimitForLpFee(env.Admin.Address, amount.Zero))
	env.EndThrottle()

	// CheckBuy and CheckRemoveLP fail if the pool is spent
	supply := env.Pair.TotalSupply()
	CheckBuy(t, env, env.Distribution[0], jtx.ETH(1), BuyTiers)
	CheckRemoveLP(t, env, env.DefaultLpMint, halfLP(t, env, env.DefaultLpMint), BuyTiers)
	assert.True(t, env.Pair.TotalSupply().Lt(supply))
	supply = env.Pair.TotalSupply()

	pool := env.Token.FeeAmountInTokens()
	require.False(t, pool.IsZero())
	lpBefore := env.LPBalance(env.DefaultLpMint)
	receiverWeth := env.WETH.BalanceOf(env.WethReceiver.Address)
	events := uint64(env.Chain.EventCount()) + 1

	// Any other movement spends it
	jtx.RequireSuccess(t, env.Transfer(env.Distribution[1], env.Distribution[2], jtx.Tokens(1)))

	assert.True(t, env.Token.FeeAmountInTokens().Lt(pool))
	minted := jtx.Minus(env.Pair.TotalSupply(), supply)
	assert.False(t, minted.IsZero())
	assert.Equal(t, minted, jtx.Minus(env.LPBalance(env.DefaultLpMint), lpBefore))
	assert.Equal(t, receiverWeth, env.WETH.BalanceOf(env.WethReceiver.Address))
	assert.Len(t, eventsOf(env, events, chain.EventLiquidityInjected), 1)
	jtx.RequireSupply(t, env)

	t.Log("No injection on buy or removal test passed")
}

// TestLiquidity_AddLPInjection tests the exact amounts of an injection
// triggered while a provider adds liquidity, in both payment orders.
func TestLiquidity_AddLPInjection(t *testing.T) {
	for _, order := range addOrders {
		t.Run(order.name, func(t *testing.T) {
			env := newEnvWithLiquidity(t, jtx.ETH(10))
			require.NoError(t, env.Token.SetWethLimitForLpFee(env.Admin.Address, amount.Zero))
			env.EndThrottle()
			require.True(t, env.Token.FeeAmountInTokens().IsZero())

			provider := env.Distribution[0]
			value := jtx.Frac(env.Balance(provider), 1, 2)
			s := expected(t, value, SellEarly)
			pool := s.Liquidity

			// The injection runs before the pair is credited, on the pre-add
			// reserves. WETH the provider already paid in is not part of it.
			tokenReserve, wethReserve := env.Reserves()
			price, err := env.Router.GetAmountOut(pool, tokenReserve, wethReserve)
			require.NoError(t, err)
			toBuy := jtx.Frac(price, 1, 2)
			toSell, err := env.Router.GetAmountIn(toBuy, tokenReserve, wethReserve)
			require.NoError(t, err)
			require.True(t, toSell.Lte(pool))

			tokenReserve = jtx.Plus(tokenReserve, toSell)
			wethReserve = jtx.Minus(wethReserve, toBuy)
			tokenToAdd, err := env.Router.Quote(toBuy, wethReserve, tokenReserve)
			require.NoError(t, err)
			require.True(t, tokenToAdd.Lte(jtx.Minus(pool, toSell)))

			supply := env.Pair.TotalSupply()
			byToken, err := tokenToAdd.MulDiv(supply, tokenReserve)
			require.NoError(t, err)
			byWeth, err := toBuy.MulDiv(supply, wethReserve)
			require.NoError(t, err)
			minted := amount.Min(byToken, byWeth)

			lpBefore := env.LPBalance(env.DefaultLpMint)
			receiverWeth := env.WETH.BalanceOf(env.WethReceiver.Address)

			liquidity, err := order.add(env)(provider, value)
			jtx.RequireSuccess(t, err)
			assert.False(t, liquidity.IsZero())
			assert.Equal(t, liquidity, env.LPBalance(provider))

			jtx.RequireNear(t, minted, jtx.Minus(env.LPBalance(env.DefaultLpMint), lpBefore), "injected LP")
			jtx.RequireNear(t, jtx.Minus(jtx.Minus(pool, toSell), tokenToAdd), env.Token.FeeAmountInTokens(), "fee pool left")
			assert.Equal(t, receiverWeth, env.WETH.BalanceOf(env.WethReceiver.Address))
			assert.True(t, env.WETH.BalanceOf(env.Token.Address()).IsZero())
			jtx.RequireSupply(t, env)
		})
	}

	t.Log("Add LP injection test passed")
}

// TestLiquidity_WethFirstAddWithInjectionDue tests a two-token router add
// with WETH as the first token while a buy has left the fee pool due. The
// injection must not absorb the WETH the provider already paid in.
func TestLiquidity_WethFirstAddWithInjectionDue(t *testing.T) {
	env := newEnvWithLiquidity(t, jtx.ETH(10))
	env.EndThrottle()
	jtx.RequireSuccess(t, env.Buy(env.Distribution[0], jtx.ETH(1)))
	require.NoError(t, env.Token.SetWethLimitForLpFee(env.Admin.Address, amount.Zero))
	pool := env.Token.FeeAmountInTokens()
	require.False(t, pool.IsZero())

	provider := env.Distribution[1]
	tokens := jtx.Frac(env.Balance(provider), 1, 4)
	tokenReserve, wethReserve := env.Reserves()
	wethIn, err := env.Router.Quote(tokens, tokenReserve, wethReserve)
	require.NoError(t, err)
	require.NoError(t, env.WETH.Deposit(provider.Address, wethIn))
	require.NoError(t, env.WETH.Approve(provider.Address, env.Router.Address(), wethIn))
	require.NoError(t, env.Token.Approve(provider.Address, env.Router.Address(), tokens))

	supply := env.Pair.TotalSupply()
	lpBefore := env.LPBalance(env.DefaultLpMint)
	receiverWeth := env.WETH.BalanceOf(env.WethReceiver.Address)
	events := uint64(env.Chain.EventCount()) + 1

	amountWeth, amountTokens, liquidity, err := env.Router.AddLiquidity(provider.Address,
		env.WETH.Address(), env.Token.Address(), wethIn, tokens, amount.Zero, amount.Zero, provider.Address)
	jtx.RequireSuccess(t, err)
	assert.Equal(t, wethIn, amountWeth)
	assert.True(t, amountTokens.Lte(tokens))

	require.False(t, liquidity.IsZero())
	assert.Equal(t, liquidity, env.LPBalance(provider))
	injected := jtx.Minus(env.LPBalance(env.DefaultLpMint), lpBefore)
	assert.False(t, injected.IsZero())
	assert.Equal(t, jtx.Plus(jtx.Plus(supply, injected), liquidity), env.Pair.TotalSupply())
	assert.Len(t, eventsOf(env, events, chain.EventLiquidityInjected), 1)
	assert.True(t, env.Token.FeeAmountInTokens().Lt(pool))

	// Reserves match balances once the add is minted
	_, wethAfter := env.Reserves()
	assert.Equal(t, env.WETH.BalanceOf(env.Pair.Address()), wethAfter)
	assert.True(t, env.WETH.BalanceOf(provider.Address).IsZero())
	assert.Equal(t, receiverWeth, env.WETH.BalanceOf(env.WethReceiver.Address))
	jtx.RequireSupply(t, env)

	t.Log("WETH first add with injection due test passed")
}

// TestLiquidity_InjectionWithContractWeth tests an injection funded by WETH
// the token address already holds: no tokens are sold for WETH.
func TestLiquidity_InjectionWithContractWeth(t *testing.T) {
	env := newEnvWithLiquidity(t, jtx.ETH(10))
	env.EndThrottle()
	jtx.RequireSuccess(t, env.Buy(env.Distribution[0], jtx.ETH(1)))
	pool := env.Token.FeeAmountInTokens()
	require.False(t, pool.IsZero())

	// More WETH than half of the pool's worth
	tokenReserve, wethReserve := env.Reserves()
	worth, err := env.Router.GetAmountOut(pool, tokenReserve, wethReserve)
	require.NoError(t, err)
	sent := jtx.Plus(worth, jtx.ETH(1))
	donor := env.Distribution[3]
	require.NoError(t, env.WETH.DepositTo(donor.Address, env.Token.Address(), sent))
	require.Equal(t, sent, env.WETH.BalanceOf(env.Token.Address()))

	require.NoError(t, env.Token.SetWethLimitForLpFee(env.Admin.Address, amount.Zero))
	supply := env.Pair.TotalSupply()
	lpBefore := env.LPBalance(env.DefaultLpMint)
	receiverWeth := env.WETH.BalanceOf(env.WethReceiver.Address)
	events := uint64(env.Chain.EventCount()) + 1

	jtx.RequireSuccess(t, env.Transfer(env.Distribution[1], env.Distribution[2], jtx.Tokens(1)))

	assert.True(t, env.Token.FeeAmountInTokens().Lt(pool))
	minted := jtx.Minus(env.Pair.TotalSupply(), supply)
	assert.False(t, minted.IsZero())
	assert.Equal(t, minted, jtx.Minus(env.LPBalance(env.DefaultLpMint), lpBefore))
	assert.True(t, env.WETH.BalanceOf(env.Token.Address()).Lt(sent))
	assert.Equal(t, receiverWeth, env.WETH.BalanceOf(env.WethReceiver.Address))

	injections := eventsOf(env, events, chain.EventLiquidityInjected)
	require.Len(t, injections, 1)
	assert.Contains(t, injections[0].Note, "sold=0 bought=0")
	jtx.RequireSupply(t, env)

	t.Log("Injection with contract WETH test passed")
}

// TestLiquidity_ForceLpFeesDistribute tests the admin-triggered injection.
func TestLiquidity_ForceLpFeesDistribute(t *testing.T) {
	env := newEnvWithLiquidity(t, jtx.ETH(10))
	buyer := env.Distribution[0]

	_, err := env.Token.ForceLpFeesDistribute(buyer.Address)
	jtx.RequireResult(t, err, token.ResultNotAdmin)

	// Nothing happens while the throttle is active
	jtx.RequireSuccess(t, env.Buy(buyer, jtx.ETHFrac("0.1")))
	pool := env.Token.FeeAmountInTokens()
	require.False(t, pool.IsZero())
	inj, err := env.Token.ForceLpFeesDistribute(env.Admin.Address)
	jtx.RequireSuccess(t, err)
	assert.Nil(t, inj)
	assert.Equal(t, pool, env.Token.FeeAmountInTokens())

	// Buys never inject, even above the WETH limit
	env.EndThrottle()
	supply := env.Pair.TotalSupply()
	jtx.RequireSuccess(t, env.Buy(buyer, jtx.ETH(10)))
	assert.Equal(t, supply, env.Pair.TotalSupply())
	pool = env.Token.FeeAmountInTokens()

	lpBefore := env.LPBalance(env.DefaultLpMint)
	inj, err = env.Token.ForceLpFeesDistribute(env.Admin.Address)
	jtx.RequireSuccess(t, err)
	require.NotNil(t, inj)

	assert.False(t, inj.Liquidity.IsZero())
	assert.Equal(t, jtx.Plus(supply, inj.Liquidity), env.Pair.TotalSupply())
	assert.Equal(t, inj.Liquidity, jtx.Minus(env.LPBalance(env.DefaultLpMint), lpBefore))
	assert.Equal(t, jtx.Minus(jtx.Minus(pool, inj.Sold), inj.Tokens), env.Token.FeeAmountInTokens())
	jtx.RequireSupply(t, env)

	t.Log("Force LP fees distribute test passed")
}

// TestLiquidity_DefaultLpMintAddress tests that injected LP follows the
// configured address.
func TestLiquidity_DefaultLpMintAddress(t *testing.T) {
	env := newEnvWithLiquidity(t, jtx.ETH(10))
	require.NoError(t, env.Token.SetDefaultLpMintAddress(env.Admin.Address, jtx.Burn.Address))
	assert.Equal(t, jtx.Burn.Address, env.Token.DefaultLpMintAddress())

	jtx.RequireSuccess(t, env.Buy(env.Distribution[0], jtx.ETHFrac("0.1")))
	env.EndThrottle()

	lpBefore := env.LPBalance(env.DefaultLpMint)
	inj, err := env.Token.ForceLpFeesDistribute(env.Admin.Address)
	jtx.RequireSuccess(t, err)
	require.NotNil(t, inj)

	assert.Equal(t, inj.Liquidity, env.LPBalance(jtx.Burn))
	assert.Equal(t, lpBefore, env.LPBalance(env.DefaultLpMint))

	t.Log("Default LP mint address test passed")
}
