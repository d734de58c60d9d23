// Package exilon provides fee routing checks for Exilon scenario tests.
//
// Each check snapshots every party, runs one movement and verifies where
// each fee component went: the burn sink, the marketing wallet, the fee
// pool and, pro rata, every not-fixed holder.
package exilon

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goExilon/internal/core/amount"
	"github.com/LeJamon/goExilon/internal/core/fees"
	jtx "github.com/LeJamon/goExilon/internal/testing"
)

// Launch fee tiers.
var (
	BuyTiers  = fees.Tiers{Liquidity: 8, Burn: 1, Distribution: 1, Marketing: 2}
	NoTiers   = fees.Tiers{}
	SellEarly = fees.Tiers{Liquidity: 14, Burn: 1, Distribution: 1, Marketing: 2}
	BigEarly  = fees.Tiers{Liquidity: 16, Burn: 1, Distribution: 1, Marketing: 2}
	SellMid   = fees.Tiers{Liquidity: 11, Burn: 1, Distribution: 1, Marketing: 2}
	BigMid    = fees.Tiers{Liquidity: 13, Burn: 1, Distribution: 1, Marketing: 2}
	SellLate  = fees.Tiers{Liquidity: 8, Burn: 1, Distribution: 1, Marketing: 2}
	BigLate   = fees.Tiers{Liquidity: 10, Burn: 1, Distribution: 1, Marketing: 2}
)

// movement describes a taxed movement between a trader and the pair.
type movement struct {
	trader *jtx.Account
	gross  amount.Amount
	tiers  fees.Tiers

	// inbound is true when the trader receives the net amount (buy,
	// liquidity removal) and false when it pays the gross (sell, add).
	inbound bool
}

// CheckBuy buys tokens with eth of acc's native balance and verifies the
// routing of tiers.
func CheckBuy(t *testing.T, env *jtx.TestEnv, acc *jtx.Account, eth amount.Amount, tiers fees.Tiers) {
	t.Helper()
	out, err := env.Router.GetAmountsOut(eth, []common.Address{env.WETH.Address(), env.Token.Address()})
	require.NoError(t, err)
	gross := out[1]

	before := env.Snapshot()
	jtx.RequireSuccess(t, env.Buy(acc, eth))
	after := env.Snapshot()

	jtx.RequireNear(t, gross, jtx.RequireLoss(t, before, after, pairAccount(env)), "pair outflow")
	verify(t, env, before, after, movement{trader: acc, gross: gross, tiers: tiers, inbound: true})
}

// CheckSell sells tokens of acc and verifies the routing of tiers. No
// liquidity injection may happen during the sell.
func CheckSell(t *testing.T, env *jtx.TestEnv, acc *jtx.Account, tokens amount.Amount, tiers fees.Tiers) {
	t.Helper()
	before := env.Snapshot()
	jtx.RequireSuccess(t, env.Sell(acc, tokens))
	after := env.Snapshot()

	s := expected(t, tokens, tiers)
	jtx.RequireNear(t, s.Net, jtx.RequireGain(t, before, after, pairAccount(env)), "pair inflow")
	verify(t, env, before, after, movement{trader: acc, gross: tokens, tiers: tiers})
}

// CheckAddLP adds tokens of acc to the pair and verifies the routing of
// tiers. No liquidity injection may happen.
func CheckAddLP(t *testing.T, env *jtx.TestEnv, acc *jtx.Account, tokens amount.Amount, tiers fees.Tiers) {
	t.Helper()
	checkAddLP(t, env, acc, tokens, tiers, env.AddLP)
}

// CheckAddLPWethFirst is CheckAddLP with the WETH side paid into the pair
// before the tokens.
func CheckAddLPWethFirst(t *testing.T, env *jtx.TestEnv, acc *jtx.Account, tokens amount.Amount, tiers fees.Tiers) {
	t.Helper()
	checkAddLP(t, env, acc, tokens, tiers, env.AddLPWethFirst)
}

type addLPFunc func(acc *jtx.Account, tokens amount.Amount) (amount.Amount, error)

func checkAddLP(t *testing.T, env *jtx.TestEnv, acc *jtx.Account, tokens amount.Amount, tiers fees.Tiers, add addLPFunc) {
	t.Helper()
	before := env.Snapshot()
	lpBefore := env.LPBalance(acc)
	_, err := add(acc, tokens)
	jtx.RequireSuccess(t, err)
	after := env.Snapshot()

	require.True(t, env.LPBalance(acc).Gt(lpBefore), "no LP minted to %s", acc.Name)
	s := expected(t, tokens, tiers)
	jtx.RequireNear(t, s.Net, jtx.RequireGain(t, before, after, pairAccount(env)), "pair inflow")
	verify(t, env, before, after, movement{trader: acc, gross: tokens, tiers: tiers})
}

// CheckRemoveLP burns liquidity of acc's LP tokens and verifies the routing
// of tiers on the token side.
func CheckRemoveLP(t *testing.T, env *jtx.TestEnv, acc *jtx.Account, liquidity amount.Amount, tiers fees.Tiers) {
	t.Helper()
	tokenReserve, _ := env.Reserves()
	gross, err := liquidity.MulDiv(tokenReserve, env.Pair.TotalSupply())
	require.NoError(t, err)

	before := env.Snapshot()
	jtx.RequireSuccess(t, env.RemoveLP(acc, liquidity))
	after := env.Snapshot()

	jtx.RequireNear(t, gross, jtx.RequireLoss(t, before, after, pairAccount(env)), "pair outflow")
	verify(t, env, before, after, movement{trader: acc, gross: gross, tiers: tiers, inbound: true})
}

// CheckTransfer moves value from one account to another and verifies that
// exactly fee went to marketing.
func CheckTransfer(t *testing.T, env *jtx.TestEnv, from, to *jtx.Account, value, fee amount.Amount) {
	t.Helper()
	before := env.Snapshot()
	jtx.RequireSuccess(t, env.Transfer(from, to, value))
	after := env.Snapshot()

	require.Equal(t, fee, jtx.RequireGain(t, before, after, env.Marketing), "marketing fee")
	jtx.RequireNear(t, value, jtx.RequireLoss(t, before, after, from), "sender debit")
	jtx.RequireNear(t, jtx.Minus(value, fee), jtx.RequireGain(t, before, after, to), "recipient credit")

	for _, p := range env.Parties() {
		if p.Address == from.Address || p.Address == to.Address || p.Address == env.Marketing.Address {
			continue
		}
		jtx.RequireUnchanged(t, before, after, p)
	}
	jtx.RequireSupply(t, env)
}

func pairAccount(env *jtx.TestEnv) *jtx.Account {
	return &jtx.Account{Name: "pair", Address: env.Pair.Address()}
}

func expected(t *testing.T, gross amount.Amount, tiers fees.Tiers) fees.Split {
	t.Helper()
	s, err := fees.Calculate(gross, tiers)
	require.NoError(t, err)
	return s
}

// verify checks where the fees of m went. The fee pool must grow by the
// liquidity fee, so it fails if an injection ran.
func verify(t *testing.T, env *jtx.TestEnv, before, after jtx.Snapshot, m movement) {
	t.Helper()
	s := expected(t, m.gross, m.tiers)

	// Burns above the cap are redirected to the fee pool
	burnBefore := before.Of(jtx.Burn)
	maxBurn := env.Token.MaxBurnAmount()
	if jtx.Plus(burnBefore, s.Burn).Gt(maxBurn) {
		excess := jtx.Minus(jtx.Plus(burnBefore, s.Burn), maxBurn)
		s.Liquidity = jtx.Plus(s.Liquidity, excess)
		s.Burn = jtx.Minus(s.Burn, excess)
	}

	jtx.RequireNear(t, s.Burn, jtx.RequireGain(t, before, after, jtx.Burn), "burn")
	jtx.RequireNear(t, s.Marketing, jtx.RequireGain(t, before, after, env.Marketing), "marketing")
	jtx.RequireNear(t, s.Liquidity, jtx.Minus(after.FeePool, before.FeePool), "fee pool")

	traderFixed := after.Fixed[m.trader.Address]
	skip := map[common.Address]bool{
		m.trader.Address:      true,
		env.Pair.Address():    true,
		jtx.Burn.Address:      true,
		env.Marketing.Address: true,
		env.Token.Address():   true,
	}
	for _, p := range env.Parties() {
		if !skip[p.Address] && after.Fixed[p.Address] {
			jtx.RequireUnchanged(t, before, after, p)
		}
	}

	notFixedBefore, notFixedAfter := before.NotFixedTotal(), after.NotFixedTotal()
	switch {
	case traderFixed && m.inbound:
		jtx.RequireNear(t, s.Net, jtx.RequireGain(t, before, after, m.trader), "trader credit")
		jtx.RequireNear(t, s.Distribution, jtx.Minus(notFixedAfter, notFixedBefore), "distribution")
	case traderFixed:
		jtx.RequireNear(t, m.gross, jtx.RequireLoss(t, before, after, m.trader), "trader debit")
		jtx.RequireNear(t, s.Distribution, jtx.Minus(notFixedAfter, notFixedBefore), "distribution")
	case m.inbound:
		jtx.RequireNear(t, jtx.Plus(s.Net, s.Distribution), jtx.Minus(notFixedAfter, notFixedBefore), "not fixed inflow")
	default:
		jtx.RequireNear(t, jtx.Minus(m.gross, s.Distribution), jtx.Minus(notFixedBefore, notFixedAfter), "not fixed outflow")
	}

	for _, p := range env.Parties() {
		if after.Fixed[p.Address] {
			continue
		}
		share, err := after.Of(p).MulDiv(s.Distribution, notFixedAfter)
		require.NoError(t, err)
		switch {
		case p.Address != m.trader.Address:
			jtx.RequireNear(t, share, jtx.RequireGain(t, before, after, p), "%s distribution share", p.Name)
		case m.inbound:
			jtx.RequireNear(t, jtx.Plus(share, s.Net), jtx.RequireGain(t, before, after, p), "%s credit", p.Name)
		default:
			jtx.RequireNear(t, jtx.Minus(m.gross, share), jtx.RequireLoss(t, before, after, p), "%s debit", p.Name)
		}
	}
	jtx.RequireSupply(t, env)
}
