package testing

import (
	"fmt"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goExilon/internal/core/amount"
	"github.com/LeJamon/goExilon/internal/core/chain"
	"github.com/LeJamon/goExilon/internal/core/dex"
	"github.com/LeJamon/goExilon/internal/core/token"
	"github.com/LeJamon/goExilon/internal/sim"
)

// Burn is the burn sink as an account.
var Burn = accountAt("burn", chain.DeadAddress)

// TestEnv manages a deployed token for scenario testing.
// It provides a simplified interface for trading, moving the clock and
// reading every balance a scenario cares about.
type TestEnv struct {
	t *testing.T

	World  *sim.World
	Chain  *chain.Chain
	Token  *token.Exilon
	Router *dex.Router
	WETH   *dex.WETH
	Pair   *dex.Pair

	Admin         *Account
	Marketing     *Account
	DefaultLpMint *Account
	WethReceiver  *Account
	Distribution  []*Account

	// liquidityBlock and liquidityTime are set by AddLiquidity.
	liquidityBlock uint64
	liquidityTime  time.Time
}

// EnvOption adjusts the deployment before NewTestEnv builds it.
type EnvOption func(*sim.Options)

// WithConfig edits the token configuration.
func WithConfig(fn func(*token.Config)) EnvOption {
	return func(o *sim.Options) { fn(&o.Token) }
}

// WithoutUSDPair deploys no USD reference pair, which disables the peer
// transfer fee.
func WithoutUSDPair() EnvOption {
	return func(o *sim.Options) { o.USDReserve = amount.Zero }
}

// NewTestEnv deploys a token with the launch configuration. The token logs
// to the test log.
func NewTestEnv(t *testing.T, opts ...EnvOption) *TestEnv {
	t.Helper()

	o := sim.DefaultOptions()
	o.Logger = log.New(&testWriter{t: t}, "exilon: ", 0)
	for _, opt := range opts {
		opt(&o)
	}

	w, err := sim.NewWorld(o)
	require.NoError(t, err, "Failed to deploy token")

	env := &TestEnv{
		t:             t,
		World:         w,
		Chain:         w.Chain,
		Token:         w.Token,
		Router:        w.Router,
		WETH:          w.WETH,
		Pair:          w.Pair(),
		Admin:         accountAt("exilonAdmin", w.Accounts.Admin),
		Marketing:     accountAt("marketingAddress", w.Accounts.Marketing),
		DefaultLpMint: accountAt("defaultLpMintAddress", w.Accounts.DefaultLpMint),
		WethReceiver:  accountAt("wethReceiver", w.Accounts.WethReceiver),
	}
	for i, addr := range w.Accounts.Distribution {
		env.Distribution = append(env.Distribution, accountAt(distributionName(i), addr))
	}
	return env
}

func distributionName(i int) string {
	return fmt.Sprintf("distributionAddress%d", i+1)
}

// testWriter forwards log output to t.Log.
type testWriter struct {
	t *testing.T
}

func (w *testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// T returns the test this environment belongs to.
func (e *TestEnv) T() *testing.T {
	return e.t
}

// AddLiquidity bootstraps the pool with value of the admin's native balance
// and fails the test on error.
func (e *TestEnv) AddLiquidity(value amount.Amount) amount.Amount {
	e.t.Helper()
	liquidity, err := e.Token.AddLiquidity(e.Admin.Address, value)
	require.NoError(e.t, err, "AddLiquidity failed")
	e.liquidityBlock, e.liquidityTime = e.Token.LiquidityAddedAt()
	return liquidity
}

// LiquidityBlock returns the block AddLiquidity ran in.
func (e *TestEnv) LiquidityBlock() uint64 {
	return e.liquidityBlock
}

// AdvanceBlocks mines n empty blocks.
func (e *TestEnv) AdvanceBlocks(n uint64) {
	e.Chain.AdvanceBlocks(n)
}

// AdvanceToBlock mines blocks until the chain is at block n.
func (e *TestEnv) AdvanceToBlock(n uint64) {
	e.t.Helper()
	current := e.Chain.BlockNumber()
	require.GreaterOrEqual(e.t, n, current, "Cannot move the chain back from block %d to %d", current, n)
	e.Chain.AdvanceBlocks(n - current)
}

// AdvanceTime moves the clock forward by d.
func (e *TestEnv) AdvanceTime(d time.Duration) {
	e.Chain.AdvanceTime(d)
}

// AdvanceTimeTo moves the clock to liquidity time plus d.
func (e *TestEnv) AdvanceTimeTo(d time.Duration) {
	e.t.Helper()
	target := e.liquidityTime.Add(d)
	now := e.Chain.Now()
	require.False(e.t, target.Before(now), "Cannot move the clock back from %s to %s", now, target)
	e.Chain.AdvanceTime(target.Sub(now))
}

// EndThrottle moves the chain past the early trade restriction.
func (e *TestEnv) EndThrottle() {
	e.AdvanceToBlock(e.liquidityBlock + e.Token.Config().Throttle.Duration())
}

// MakeFixed excludes acc from fee distribution.
func (e *TestEnv) MakeFixed(accs ...*Account) {
	e.t.Helper()
	for _, acc := range accs {
		require.NoError(e.t, e.Token.ExcludeFromFeesDistribution(e.Admin.Address, acc.Address),
			"Failed to fix %s", acc.Name)
	}
}

// Balance returns acc's token balance.
func (e *TestEnv) Balance(acc *Account) amount.Amount {
	return e.Token.BalanceOf(acc.Address)
}

// LPBalance returns acc's balance of the main pair's LP token.
func (e *TestEnv) LPBalance(acc *Account) amount.Amount {
	return e.Pair.BalanceOf(acc.Address)
}

// NativeBalance returns acc's unwrapped native balance.
func (e *TestEnv) NativeBalance(acc *Account) amount.Amount {
	return e.WETH.NativeBalance(acc.Address)
}

// Reserves returns the main pair's reserves as (token, weth).
func (e *TestEnv) Reserves() (amount.Amount, amount.Amount) {
	e.t.Helper()
	tokenReserve, wethReserve, err := e.Pair.ReservesFor(e.Token.Address())
	require.NoError(e.t, err)
	return tokenReserve, wethReserve
}

// Buy spends value of acc's native balance on tokens.
func (e *TestEnv) Buy(acc *Account, value amount.Amount) error {
	return e.World.Buy(acc.Address, value)
}

// Sell sells tokens of acc for native.
func (e *TestEnv) Sell(acc *Account, tokens amount.Amount) error {
	return e.World.Sell(acc.Address, tokens)
}

// AddLP adds tokens of acc to the main pair.
func (e *TestEnv) AddLP(acc *Account, tokens amount.Amount) (amount.Amount, error) {
	return e.World.AddLP(acc.Address, tokens)
}

// AddLPWethFirst adds tokens of acc to the main pair, paying the WETH side
// into the pair first.
func (e *TestEnv) AddLPWethFirst(acc *Account, tokens amount.Amount) (amount.Amount, error) {
	return e.World.AddLPWethFirst(acc.Address, tokens)
}

// RemoveLP burns liquidity of acc's LP tokens.
func (e *TestEnv) RemoveLP(acc *Account, liquidity amount.Amount) error {
	return e.World.RemoveLP(acc.Address, liquidity)
}

// Transfer moves tokens between accounts.
func (e *TestEnv) Transfer(from, to *Account, value amount.Amount) error {
	return e.Token.Transfer(from.Address, to.Address, value)
}

// Named returns every named account: the admin, marketing, the default LP
// address, the WETH receiver and the distribution accounts.
func (e *TestEnv) Named() []*Account {
	all := []*Account{e.Admin, e.Marketing, e.DefaultLpMint, e.WethReceiver}
	return append(all, e.Distribution...)
}

// Parties returns the named accounts plus the pair, the burn sink and the
// token address.
func (e *TestEnv) Parties() []*Account {
	return append(e.Named(),
		accountAt("pair", e.Pair.Address()),
		Burn,
		accountAt("exilon", e.Token.Address()),
	)
}

// Snapshot records the token balance of every party and the fee pool.
type Snapshot struct {
	Balances map[common.Address]amount.Amount
	Fixed    map[common.Address]bool
	FeePool  amount.Amount
}

// Snapshot captures the current balances of Parties.
func (e *TestEnv) Snapshot() Snapshot {
	s := Snapshot{
		Balances: make(map[common.Address]amount.Amount),
		Fixed:    make(map[common.Address]bool),
		FeePool:  e.Token.FeeAmountInTokens(),
	}
	for _, acc := range e.Parties() {
		s.Balances[acc.Address] = e.Token.BalanceOf(acc.Address)
		s.Fixed[acc.Address] = e.Token.IsExcludedFromDistribution(acc.Address)
	}
	return s
}

// Of returns acc's balance in the snapshot.
func (s Snapshot) Of(acc *Account) amount.Amount {
	return s.Balances[acc.Address]
}

// NotFixedTotal sums the snapshot balances of the not-fixed parties.
func (s Snapshot) NotFixedTotal() amount.Amount {
	total := amount.Zero
	for addr, bal := range s.Balances {
		if !s.Fixed[addr] {
			total = Plus(total, bal)
		}
	}
	return total
}
