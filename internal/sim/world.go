// Package sim assembles a complete Exilon deployment on a fresh chain: the
// exchange, the USD reference pair, the role table and the token, with named
// accounts funded in the native asset.
package sim

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/LeJamon/goExilon/internal/core/access"
	"github.com/LeJamon/goExilon/internal/core/amount"
	"github.com/LeJamon/goExilon/internal/core/chain"
	"github.com/LeJamon/goExilon/internal/core/dex"
	"github.com/LeJamon/goExilon/internal/core/token"
)

// DistributionAccounts is the number of genesis distribution addresses.
const DistributionAccounts = 8

// Options configures a World.
type Options struct {
	Token  token.Config
	DexFee dex.Fee

	// USDReserve and USDWethReserve seed the USD/WETH pair that prices the
	// peer transfer fee. A zero USDReserve deploys no USD pair.
	USDReserve     amount.Amount
	USDWethReserve amount.Amount

	// Funding is the native balance given to every named account.
	Funding amount.Amount

	GenesisTime time.Time
	Logger      *log.Logger
}

// DefaultOptions returns the launch setup: 1000 USD against 10000 WETH and
// a large native balance per account.
func DefaultOptions() Options {
	return Options{
		Token:          token.DefaultConfig(),
		DexFee:         dex.DefaultFee(),
		USDReserve:     amount.Units(1_000, 18),
		USDWethReserve: amount.Units(10_000, 18),
		Funding:        amount.Units(1_000_000_000_000_000, 18),
		GenesisTime:    chain.DefaultGenesisTime,
	}
}

// Accounts holds the well-known addresses of a deployment.
type Accounts struct {
	Admin         common.Address
	Marketing     common.Address
	DefaultLpMint common.Address
	WethReceiver  common.Address
	USDProvider   common.Address
	Distribution  []common.Address
}

// NamedAccounts derives the deployment addresses from fixed names.
func NamedAccounts() Accounts {
	a := Accounts{
		Admin:         chain.AddressFromName("exilonAdmin"),
		Marketing:     chain.AddressFromName("marketingAddress"),
		DefaultLpMint: chain.AddressFromName("defaultLpMintAddress"),
		WethReceiver:  chain.AddressFromName("wethReceiver"),
		USDProvider:   chain.AddressFromName("usdProvider"),
	}
	for i := 1; i <= DistributionAccounts; i++ {
		a.Distribution = append(a.Distribution, chain.AddressFromName(fmt.Sprintf("distributionAddress%d", i)))
	}
	return a
}

// All returns every named account, admin first.
func (a Accounts) All() []common.Address {
	all := []common.Address{a.Admin, a.Marketing, a.DefaultLpMint, a.WethReceiver, a.USDProvider}
	return append(all, a.Distribution...)
}

// World is a deployed token with its collaborators.
type World struct {
	Chain    *chain.Chain
	Factory  *dex.Factory
	Router   *dex.Router
	WETH     *dex.WETH
	USD      *dex.BasicToken
	Roles    *access.Roles
	Token    *token.Exilon
	Accounts Accounts
}

// NewWorld deploys everything and sets the WETH receiver. Liquidity is not
// added; that is the admin's first move.
func NewWorld(opts Options) (*World, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if opts.GenesisTime.IsZero() {
		opts.GenesisTime = chain.DefaultGenesisTime
	}

	c := chain.New(chain.WithGenesisTime(opts.GenesisTime))
	factory := dex.NewFactory(c, chain.AddressFromName("factory"), opts.DexFee)
	weth := dex.NewWETH(c, chain.AddressFromName("weth"))
	w := &World{
		Chain:    c,
		Factory:  factory,
		Router:   dex.NewRouter(c, chain.AddressFromName("router"), factory, weth),
		WETH:     weth,
		USD:      dex.NewBasicToken(c, chain.AddressFromName("usd"), "USD Coin", "USD", 18),
		Accounts: NamedAccounts(),
	}
	factory.Register(w.USD)

	for _, addr := range w.Accounts.All() {
		if err := weth.Fund(addr, opts.Funding); err != nil {
			return nil, fmt.Errorf("fund %s: %w", addr.Hex(), err)
		}
	}

	usd := chain.ZeroAddress
	if !opts.USDReserve.IsZero() {
		if err := w.seedUSDPair(opts.USDReserve, opts.USDWethReserve); err != nil {
			return nil, fmt.Errorf("usd pair: %w", err)
		}
		usd = w.USD.Address()
	}

	w.Roles = access.New(c, chain.AddressFromName("access"), w.Accounts.Admin)

	tok, err := token.New(c, opts.Token, token.Params{
		Address:       chain.AddressFromName("exilon"),
		Marketing:     w.Accounts.Marketing,
		DefaultLpMint: w.Accounts.DefaultLpMint,
		Distribution:  w.Accounts.Distribution,
		USD:           usd,
		Access:        w.Roles,
		Factory:       factory,
		Router:        w.Router,
		WETH:          weth,
	}, token.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("deploy token: %w", err)
	}
	w.Token = tok

	if err := tok.SetWethReceiver(w.Accounts.Admin, w.Accounts.WethReceiver); err != nil {
		return nil, fmt.Errorf("set weth receiver: %w", err)
	}
	logger.Printf("deployed %s at %s, pair %s", tok.Symbol(), tok.Address().Hex(), tok.Pair().Address().Hex())
	return w, nil
}

func (w *World) seedUSDPair(usdReserve, wethReserve amount.Amount) error {
	provider := w.Accounts.USDProvider
	if err := w.USD.Mint(provider, usdReserve); err != nil {
		return err
	}
	if err := w.USD.Approve(provider, w.Router.Address(), usdReserve); err != nil {
		return err
	}
	_, _, _, err := w.Router.AddLiquidityETH(provider, w.USD.Address(), usdReserve, amount.Zero, amount.Zero, provider, wethReserve)
	return err
}

// Pair returns the token's main pair.
func (w *World) Pair() *dex.Pair {
	return w.Token.Pair()
}

func (w *World) buyPath() []common.Address {
	return []common.Address{w.WETH.Address(), w.Token.Address()}
}

func (w *World) sellPath() []common.Address {
	return []common.Address{w.Token.Address(), w.WETH.Address()}
}

// Buy spends value of buyer's native balance on tokens through the router.
func (w *World) Buy(buyer common.Address, value amount.Amount) error {
	return w.Router.SwapExactETHForTokensSupportingFeeOnTransferTokens(buyer, amount.Zero, w.buyPath(), buyer, value)
}

// Sell sells tokens of seller for native through the router.
func (w *World) Sell(seller common.Address, tokens amount.Amount) error {
	return w.Chain.Atomic(func() error {
		if err := w.Token.Approve(seller, w.Router.Address(), tokens); err != nil {
			return err
		}
		return w.Router.SwapExactTokensForETHSupportingFeeOnTransferTokens(seller, tokens, amount.Zero, w.sellPath(), seller)
	})
}

// QuoteETH returns the native amount matching tokens at the current pool
// price.
func (w *World) QuoteETH(tokens amount.Amount) (amount.Amount, error) {
	tokenReserve, wethReserve, err := w.Pair().ReservesFor(w.Token.Address())
	if err != nil {
		return amount.Zero, err
	}
	return w.Router.Quote(tokens, tokenReserve, wethReserve)
}

// AddLP adds tokens of provider to the main pair with the matching native
// amount. It returns the LP tokens minted.
func (w *World) AddLP(provider common.Address, tokens amount.Amount) (amount.Amount, error) {
	var liquidity amount.Amount
	err := w.Chain.Atomic(func() error {
		value, err := w.QuoteETH(tokens)
		if err != nil {
			return err
		}
		if err := w.Token.Approve(provider, w.Router.Address(), tokens); err != nil {
			return err
		}
		_, _, liquidity, err = w.Router.AddLiquidityETH(provider, w.Token.Address(), tokens, amount.Zero, amount.Zero, provider, value)
		return err
	})
	return liquidity, err
}

// AddLPWethFirst adds tokens of provider through the two-token router call
// with WETH as the first token, so the WETH reaches the pair before the
// tokens. One wei more than the quote is wrapped so the token side binds.
func (w *World) AddLPWethFirst(provider common.Address, tokens amount.Amount) (amount.Amount, error) {
	var liquidity amount.Amount
	err := w.Chain.Atomic(func() error {
		value, err := w.QuoteETH(tokens)
		if err != nil {
			return err
		}
		if value, err = value.Add(amount.New(1)); err != nil {
			return err
		}
		if err := w.WETH.Deposit(provider, value); err != nil {
			return err
		}
		if err := w.WETH.Approve(provider, w.Router.Address(), value); err != nil {
			return err
		}
		if err := w.Token.Approve(provider, w.Router.Address(), tokens); err != nil {
			return err
		}
		_, _, liquidity, err = w.Router.AddLiquidity(provider, w.WETH.Address(), w.Token.Address(), value, tokens, amount.Zero, amount.Zero, provider)
		return err
	})
	return liquidity, err
}

// RemoveLP burns liquidity of provider's LP tokens directly on the pair,
// paying both sides to provider.
func (w *World) RemoveLP(provider common.Address, liquidity amount.Amount) error {
	return w.Chain.Atomic(func() error {
		pair := w.Pair()
		if err := pair.Transfer(provider, pair.Address(), liquidity); err != nil {
			return err
		}
		_, _, err := pair.Burn(provider)
		return err
	})
}
