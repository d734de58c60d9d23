package exilon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goExilon/internal/core/amount"
	"github.com/LeJamon/goExilon/internal/core/dex"
	"github.com/LeJamon/goExilon/internal/core/fees"
	"github.com/LeJamon/goExilon/internal/core/token"
	jtx "github.com/LeJamon/goExilon/internal/testing"
)

// TestTrade_BuyThrottle tests the per-window buy caps of the first 240
// blocks.
func TestTrade_BuyThrottle(t *testing.T) {
	env := newEnvWithLiquidity(t, liquidityAmount)
	buyer := env.Distribution[0]

	windows := []struct {
		block uint64
		cap   string
	}{
		{0, "0.1"},
		{59, "0.1"},
		{60, "0.3"},
		{120, "0.5"},
		{180, "0.7"},
		{239, "0.7"},
	}
	for _, w := range windows {
		env.AdvanceToBlock(env.LiquidityBlock() + w.block)
		limit := jtx.ETHFrac(w.cap)

		err := env.Buy(buyer, jtx.Plus(limit, jtx.Wei(1)))
		jtx.RequireResult(t, err, token.ResultBuyLimitExceeded)
		require.ErrorIs(t, err, dex.ErrTransferFailed)
		require.ErrorIs(t, err, token.ErrBuyLimitExceeded)

		jtx.RequireSuccess(t, env.Buy(buyer, limit))
	}

	// The restriction ends after 240 blocks
	env.EndThrottle()
	jtx.RequireSuccess(t, env.Buy(buyer, jtx.ETH(10)))
	jtx.RequireSupply(t, env)

	t.Log("Buy throttle test passed")
}

// TestTrade_BuyFees tests the buy tiers for not-fixed and fixed buyers.
func TestTrade_BuyFees(t *testing.T) {
	for _, fixed := range []bool{false, true} {
		name := "NotFixed"
		if fixed {
			name = "Fixed"
		}
		t.Run(name, func(t *testing.T) {
			env := newEnvWithLiquidity(t, liquidityAmount)
			buyer := env.Distribution[0]
			if fixed {
				env.MakeFixed(buyer)
			}

			CheckBuy(t, env, buyer, jtx.ETHFrac("0.1"), BuyTiers)
			CheckBuy(t, env, env.Distribution[1], jtx.ETHFrac("0.05"), BuyTiers)

			env.EndThrottle()
			CheckBuy(t, env, buyer, jtx.ETH(10), BuyTiers)
		})
	}
}

// TestTrade_SellFees tests the sell tiers across the decay windows, for
// normal and big sells.
func TestTrade_SellFees(t *testing.T) {
	windows := []struct {
		name          string
		elapsed       time.Duration
		normal, large fees.Tiers
	}{
		{"Early", 0, SellEarly, BigEarly},
		{"JustBeforeHalfHour", 30*time.Minute - time.Second, SellEarly, BigEarly},
		{"HalfHour", 30 * time.Minute, SellMid, BigMid},
		{"Hour", 60 * time.Minute, SellLate, BigLate},
		{"Day", 24 * time.Hour, SellLate, BigLate},
	}
	for _, w := range windows {
		for _, fixed := range []bool{false, true} {
			name := w.name + "/NotFixed"
			if fixed {
				name = w.name + "/Fixed"
			}
			t.Run(name, func(t *testing.T) {
				env := newEnvWithLiquidity(t, liquidityAmount)
				seller := env.Distribution[0]
				if fixed {
					env.MakeFixed(seller)
				}
				env.AdvanceTimeTo(w.elapsed)

				// Exactly 90% of the balance is still a normal sell
				threshold := jtx.Frac(env.Balance(seller), 90, 100)
				CheckSell(t, env, seller, threshold, w.normal)

				other := env.Distribution[1]
				if fixed {
					env.MakeFixed(other)
				}
				big := jtx.Plus(jtx.Frac(env.Balance(other), 90, 100), amount.New(1))
				CheckSell(t, env, other, big, w.large)
			})
		}
	}
}

// TestTrade_ExcludedFromPayingFees tests that a fee-excluded trader pays
// nothing but is still throttled.
func TestTrade_ExcludedFromPayingFees(t *testing.T) {
	env := newEnvWithLiquidity(t, liquidityAmount)
	trader := env.Distribution[0]
	require.NoError(t, env.Token.ExcludeFromPayingFees(env.Admin.Address, trader.Address))

	CheckBuy(t, env, trader, jtx.ETHFrac("0.1"), NoTiers)
	CheckSell(t, env, trader, env.Balance(trader), NoTiers)

	jtx.RequireResult(t, env.Buy(trader, jtx.ETHFrac("0.2")), token.ResultBuyLimitExceeded)

	t.Log("Excluded from paying fees trade test passed")
}

// TestTrade_NoRestrictionOnSell tests an account exempt from the sell
// schedule and the buy throttle.
func TestTrade_NoRestrictionOnSell(t *testing.T) {
	env := newEnvWithLiquidity(t, liquidityAmount)
	trader := env.Distribution[0]
	require.NoError(t, env.Token.RemoveRestrictionsOnSell(env.Admin.Address, trader.Address))
	require.True(t, env.Token.IsNoRestrictionOnSell(trader.Address))

	// Early big sells pay the base tiers
	CheckSell(t, env, trader, env.Balance(trader), BuyTiers)

	// Buys above the window cap go through
	CheckBuy(t, env, trader, jtx.ETH(10), BuyTiers)

	require.NoError(t, env.Token.ImposeRestrictionsOnSell(env.Admin.Address, trader.Address))
	jtx.RequireResult(t, env.Buy(trader, jtx.ETH(10)), token.ResultBuyLimitExceeded)
	CheckSell(t, env, trader, env.Balance(trader), BigEarly)

	t.Log("No restriction on sell test passed")
}
