// Package token implements the Exilon token: a reflection ledger with
// context-dependent transfer fees, a burn cap, an early trade throttle and
// automatic liquidity injection into its main exchange pair.
package token

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/LeJamon/goExilon/internal/core/amount"
	"github.com/LeJamon/goExilon/internal/core/chain"
	"github.com/LeJamon/goExilon/internal/core/dex"
	"github.com/LeJamon/goExilon/internal/core/fees"
	"github.com/LeJamon/goExilon/internal/core/registry"
)

// LiquidityState is the bootstrap latch.
type LiquidityState uint8

const (
	Uninitialized LiquidityState = iota
	Bootstrapped
)

func (s LiquidityState) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Bootstrapped:
		return "bootstrapped"
	default:
		return fmt.Sprintf("LiquidityState(%d)", uint8(s))
	}
}

// Config holds the economic parameters of the token.
type Config struct {
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply amount.Amount

	// LiquidityPercent of the supply is minted to the token address and
	// paired with the native asset by AddLiquidity. The rest goes to the
	// distribution addresses.
	LiquidityPercent uint64

	// BurnCapPercent of the supply is the most the burn sink may hold.
	BurnCapPercent uint64

	Fees     fees.Tiers
	Schedule fees.Schedule
	Throttle fees.Throttle

	// TransferFeeUSD is the flat peer transfer fee, in units of the USD token.
	TransferFeeUSD amount.Amount

	WethLimitForLpFee amount.Amount
}

// DefaultConfig returns the launch parameters.
func DefaultConfig() Config {
	return Config{
		Name:              "Exilon",
		Symbol:            "EXL",
		Decimals:          6,
		TotalSupply:       amount.Units(5_000_000_000_000, 6),
		LiquidityPercent:  40,
		BurnCapPercent:    60,
		Fees:              fees.DefaultTiers(),
		Schedule:          fees.DefaultSchedule(),
		Throttle:          fees.DefaultThrottle(),
		TransferFeeUSD:    amount.Units(1, 18),
		WethLimitForLpFee: amount.Units(1, 18),
	}
}

func (c Config) Validate() error {
	if c.TotalSupply.IsZero() {
		return fmt.Errorf("%w: zero total supply", ErrInvalidConfig)
	}
	if c.LiquidityPercent > fees.Denominator {
		return fmt.Errorf("%w: liquidity percent %d", ErrInvalidConfig, c.LiquidityPercent)
	}
	if c.BurnCapPercent > fees.Denominator {
		return fmt.Errorf("%w: burn cap percent %d", ErrInvalidConfig, c.BurnCapPercent)
	}
	if err := c.Fees.Validate(); err != nil {
		return err
	}
	return c.Schedule.Validate()
}

// Params wires the token to its collaborators and its fixed addresses.
type Params struct {
	Address       common.Address
	Marketing     common.Address
	DefaultLpMint common.Address
	Distribution  []common.Address

	// USD is the reference stable token used to price the peer transfer
	// fee. The zero address disables the fee.
	USD common.Address

	Access  AccessControl
	Factory PairFactory
	Router  Quoter
	WETH    WrappedNative
}

// Option configures an Exilon at construction.
type Option func(*Exilon)

// WithLogger sets the logger used for opportunistic failures.
func WithLogger(l *log.Logger) Option {
	return func(e *Exilon) { e.log = l }
}

type allowanceKey struct {
	owner, spender common.Address
}

// Exilon is the token contract. Every exported mutating method runs as one
// atomic unit on the chain; a failure leaves no trace.
type Exilon struct {
	chain   *chain.Chain
	cfg     Config
	address common.Address
	log     *log.Logger

	access  AccessControl
	factory PairFactory
	router  Quoter
	weth    WrappedNative
	usd     common.Address
	pair    *dex.Pair

	registry   *registry.Registry
	ledger     *ledger
	allowances map[allowanceKey]amount.Amount
	accounts   *registry.OrderedSet

	state          LiquidityState
	liquidityBlock uint64
	liquidityTime  time.Time

	feeAmount     amount.Amount
	wethLimit     amount.Amount
	defaultLpMint common.Address
	marketing     common.Address
	wethReceiver  common.Address
	injecting     bool
}

// New deploys the token: it creates the main pair against WETH, mints the
// supply and fixes the pair, the burn sink, the marketing wallet and the
// token address.
func New(c *chain.Chain, cfg Config, p Params, opts ...Option) (*Exilon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(p.Distribution) == 0 {
		return nil, fmt.Errorf("%w: no distribution addresses", ErrInvalidConfig)
	}
	if p.Address == chain.ZeroAddress || p.Marketing == chain.ZeroAddress {
		return nil, ErrZeroAddress
	}

	e := &Exilon{
		chain:         c,
		cfg:           cfg,
		address:       p.Address,
		log:           log.New(io.Discard, "", 0),
		access:        p.Access,
		factory:       p.Factory,
		router:        p.Router,
		weth:          p.WETH,
		usd:           p.USD,
		registry:      registry.New(c.Journal()),
		ledger:        newLedger(c.Journal()),
		allowances:    make(map[allowanceKey]amount.Amount),
		accounts:      registry.NewOrderedSet(c.Journal()),
		wethLimit:     cfg.WethLimitForLpFee,
		defaultLpMint: p.DefaultLpMint,
		marketing:     p.Marketing,
	}
	for _, opt := range opts {
		opt(e)
	}

	err := c.Atomic(func() error {
		e.factory.Register(e)
		pair, err := e.factory.CreatePair(e.address, e.weth.Address())
		if err != nil {
			return fmt.Errorf("create main pair: %w", err)
		}
		e.pair = pair

		for _, addr := range []common.Address{pair.Address(), chain.DeadAddress, e.marketing, e.address} {
			if err := e.registry.Fix(addr); err != nil {
				return fmt.Errorf("fix %s: %w", addr.Hex(), err)
			}
		}
		if err := e.registry.ExcludeFromPayingFees(e.address); err != nil {
			return err
		}
		return e.genesis(p.Distribution)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// genesis mints LiquidityPercent of the supply to the token address and
// splits the rest equally over the distribution addresses, the first one
// taking the remainder.
func (e *Exilon) genesis(distribution []common.Address) error {
	reserved, err := e.cfg.TotalSupply.Percent(e.cfg.LiquidityPercent)
	if err != nil {
		return err
	}
	if err := e.mint(e.address, reserved); err != nil {
		return err
	}

	rest, err := e.cfg.TotalSupply.Sub(reserved)
	if err != nil {
		return err
	}
	share, err := rest.Div(amount.New(uint64(len(distribution))))
	if err != nil {
		return err
	}
	spread, err := share.Mul(amount.New(uint64(len(distribution))))
	if err != nil {
		return err
	}
	remainder, err := rest.Sub(spread)
	if err != nil {
		return err
	}
	for i, addr := range distribution {
		v := share
		if i == 0 {
			if v, err = v.Add(remainder); err != nil {
				return err
			}
		}
		if err := e.mint(addr, v); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exilon) mint(to common.Address, v amount.Amount) error {
	if err := e.ledger.credit(to, e.registry.IsFixed(to), v); err != nil {
		return err
	}
	e.track(to)
	e.chain.Emit(chain.Event{Contract: e.address, Kind: chain.EventTransfer, From: chain.ZeroAddress, To: to, Amount: v})
	return nil
}

func (e *Exilon) track(addr common.Address) {
	e.accounts.Add(addr)
}

func (e *Exilon) Address() common.Address        { return e.address }
func (e *Exilon) Name() string                   { return e.cfg.Name }
func (e *Exilon) Symbol() string                 { return e.cfg.Symbol }
func (e *Exilon) Decimals() uint8                { return e.cfg.Decimals }
func (e *Exilon) TotalSupply() amount.Amount     { return e.cfg.TotalSupply }
func (e *Exilon) Config() Config                 { return e.cfg }
func (e *Exilon) Pair() *dex.Pair                { return e.pair }
func (e *Exilon) LiquidityState() LiquidityState { return e.state }

func (e *Exilon) BalanceOf(account common.Address) amount.Amount {
	return e.ledger.balanceOf(account, e.registry.IsFixed(account))
}

func (e *Exilon) Allowance(owner, spender common.Address) amount.Amount {
	return e.allowances[allowanceKey{owner, spender}]
}

// FeeAmountInTokens is the liquidity fee pool waiting to be injected.
func (e *Exilon) FeeAmountInTokens() amount.Amount     { return e.feeAmount }
func (e *Exilon) WethLimitForLpFee() amount.Amount     { return e.wethLimit }
func (e *Exilon) DefaultLpMintAddress() common.Address { return e.defaultLpMint }
func (e *Exilon) MarketingAddress() common.Address     { return e.marketing }
func (e *Exilon) WethReceiver() common.Address         { return e.wethReceiver }

// LiquidityAddedAt returns the block and time of AddLiquidity.
func (e *Exilon) LiquidityAddedAt() (uint64, time.Time) {
	return e.liquidityBlock, e.liquidityTime
}

func (e *Exilon) IsExcludedFromDistribution(addr common.Address) bool {
	return e.registry.IsFixed(addr)
}

func (e *Exilon) IsExcludedFromPayingFees(addr common.Address) bool {
	return e.registry.IsExcludedFromPayingFees(addr)
}

func (e *Exilon) IsNoRestrictionOnSell(addr common.Address) bool {
	return e.registry.IsNoRestrictionOnSell(addr)
}

// ExcludedFromDistribution enumerates the fixed addresses.
func (e *Exilon) ExcludedFromDistribution() *registry.OrderedSet { return e.registry.Fixed() }

// ExcludedFromPayingFees enumerates the fee-excluded addresses.
func (e *Exilon) ExcludedFromPayingFees() *registry.OrderedSet { return e.registry.ExcludedFromPayingFees() }

// NoRestrictionOnSell enumerates the addresses with sell restrictions removed.
func (e *Exilon) NoRestrictionOnSell() *registry.OrderedSet { return e.registry.NoRestrictionOnSell() }

// Accounts returns every address that ever held or was sent tokens, in
// first-seen order.
func (e *Exilon) Accounts() []common.Address {
	return e.accounts.Values()
}

// NotFixedSupply is the total balance of the not-fixed holders.
func (e *Exilon) NotFixedSupply() amount.Amount {
	return e.ledger.notFixedSupply
}

// CheckSupply verifies that the fixed balances and the not-fixed supply add
// up to the total supply.
func (e *Exilon) CheckSupply() error {
	got, err := e.ledger.supply()
	if err != nil {
		return err
	}
	if got != e.cfg.TotalSupply {
		return fmt.Errorf("ledger holds %s, total supply is %s", got, e.cfg.TotalSupply)
	}
	return nil
}

func (e *Exilon) requireLiquidity() error {
	if e.state != Bootstrapped {
		return ErrLiquidityNotAdded
	}
	return nil
}

func (e *Exilon) requireAdmin(caller common.Address) error {
	if e.access == nil || !e.access.HasRole(adminRole, caller) {
		return fmt.Errorf("%w: %s", ErrSenderIsNotAdmin, caller.Hex())
	}
	return nil
}
