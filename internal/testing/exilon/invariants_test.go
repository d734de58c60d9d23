package exilon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goExilon/internal/core/amount"
	"github.com/LeJamon/goExilon/internal/core/chain"
	"github.com/LeJamon/goExilon/internal/core/token"
	jtx "github.com/LeJamon/goExilon/internal/testing"
)

// requireBalancesAddUp checks that the visible balances never exceed the
// supply and lose at most one unit per holder to rounding.
func requireBalancesAddUp(t *testing.T, env *jtx.TestEnv) {
	t.Helper()
	jtx.RequireSupply(t, env)

	accounts := env.Token.Accounts()
	sum := amount.Zero
	for _, addr := range accounts {
		sum = jtx.Plus(sum, env.Token.BalanceOf(addr))
	}
	supply := env.Token.TotalSupply()
	require.True(t, sum.Lte(supply), "balances %s exceed supply %s", sum, supply)
	jtx.RequireWithin(t, supply, sum, uint64(len(accounts)))
}

// TestInvariants_SupplyConservation runs a mixed session and checks the
// supply after every step.
func TestInvariants_SupplyConservation(t *testing.T) {
	env := newEnvWithLiquidity(t, liquidityAmount)
	d := env.Distribution
	env.MakeFixed(d[6], d[7])
	requireBalancesAddUp(t, env)

	steps := []struct {
		name string
		run  func() error
	}{
		{"buy", func() error { return env.Buy(d[0], jtx.ETHFrac("0.1")) }},
		{"fixed buy", func() error { return env.Buy(d[6], jtx.ETHFrac("0.1")) }},
		{"sell", func() error { return env.Sell(d[1], jtx.Tokens(1_000_000)) }},
		{"fixed sell", func() error { return env.Sell(d[7], jtx.Tokens(1_000_000)) }},
		{"transfer", func() error { return env.Transfer(d[2], d[3], jtx.Tokens(10_000)) }},
		{"transfer to fixed", func() error { return env.Transfer(d[3], d[6], jtx.Tokens(10_000)) }},
		{"remove lp", func() error {
			return env.RemoveLP(env.DefaultLpMint, jtx.Frac(env.LPBalance(env.DefaultLpMint), 1, 10))
		}},
		{"add lp", func() error {
			_, err := env.AddLP(d[4], jtx.Tokens(1_000_000))
			return err
		}},
		{"end throttle", func() error {
			env.EndThrottle()
			return env.Token.SetWethLimitForLpFee(env.Admin.Address, amount.Zero)
		}},
		{"big buy", func() error { return env.Buy(d[5], jtx.ETH(1_000_000)) }},
		{"sell with injection", func() error { return env.Sell(d[5], jtx.Frac(env.Balance(d[5]), 1, 2)) }},
		{"unfix", func() error { return env.Token.IncludeToFeesDistribution(env.Admin.Address, d[6].Address) }},
		{"multisend", func() error {
			return env.Token.Multisend(d[0].Address, jtx.Accounts(d[1], d[6], d[7]),
				[]amount.Amount{jtx.Tokens(100), jtx.Tokens(200), jtx.Tokens(300)})
		}},
		{"burn", func() error { return env.Transfer(d[2], jtx.Burn, jtx.Tokens(1_000_000)) }},
		{"force", func() error {
			_, err := env.Token.ForceLpFeesDistribute(env.Admin.Address)
			return err
		}},
	}
	for _, s := range steps {
		require.NoError(t, s.run(), s.name)
		requireBalancesAddUp(t, env)
	}

	t.Log("Supply conservation test passed")
}

// TestInvariants_FailedOperationLeavesNoTrace tests that a failed
// operation rolls back every change it made, events included.
func TestInvariants_FailedOperationLeavesNoTrace(t *testing.T) {
	env := newEnvWithLiquidity(t, liquidityAmount)
	seller := env.Distribution[0]

	before := env.Snapshot()
	events := env.Chain.EventCount()
	pairSupply := env.Pair.TotalSupply()

	// The sell approves the router before it overdraws
	err := env.Sell(seller, jtx.Plus(env.Balance(seller), amount.New(1)))
	require.Error(t, err)

	after := env.Snapshot()
	for _, p := range env.Parties() {
		jtx.RequireUnchanged(t, before, after, p)
	}
	assert.Equal(t, before.FeePool, after.FeePool)
	assert.Equal(t, events, env.Chain.EventCount())
	assert.Equal(t, pairSupply, env.Pair.TotalSupply())
	assert.True(t, env.Token.Allowance(seller.Address, env.Router.Address()).IsZero())

	t.Log("Failed operation test passed")
}

// TestInvariants_Events tests the events of the main operations.
func TestInvariants_Events(t *testing.T) {
	env := jtx.NewTestEnv(t)
	start := uint64(env.Chain.EventCount()) + 1
	env.AddLiquidity(jtx.ETH(10))

	added := eventsOf(env, start, chain.EventLiquidityAdded)
	require.Len(t, added, 1)
	assert.Equal(t, env.Admin.Address, added[0].From)
	assert.Equal(t, env.DefaultLpMint.Address, added[0].To)
	assert.Equal(t, env.LPBalance(env.DefaultLpMint), added[0].Amount)

	start = uint64(env.Chain.EventCount()) + 1
	buyer := env.Distribution[0]
	jtx.RequireSuccess(t, env.Buy(buyer, jtx.ETHFrac("0.1")))

	routed := eventsOf(env, start, chain.EventFeesRouted)
	require.Len(t, routed, 1)
	assert.Equal(t, env.Pair.Address(), routed[0].From)
	assert.Equal(t, buyer.Address, routed[0].To)
	assert.True(t, strings.HasPrefix(routed[0].Note, token.Buy.String()), routed[0].Note)

	start = uint64(env.Chain.EventCount()) + 1
	require.NoError(t, env.Token.SetWethLimitForLpFee(env.Admin.Address, jtx.ETH(2)))
	changed := eventsOf(env, start, chain.EventConfigChanged)
	require.Len(t, changed, 1)
	assert.Equal(t, "weth_limit_for_lp_fee", changed[0].Note)
	assert.Equal(t, jtx.ETH(2), changed[0].Amount)

	t.Log("Events test passed")
}

func eventsOf(env *jtx.TestEnv, from uint64, kind chain.EventKind) []chain.Event {
	var out []chain.Event
	for _, e := range env.Chain.Events(from) {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
