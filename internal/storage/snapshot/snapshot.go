// Package snapshot captures the observable state of a simulated deployment
// and stores it in a key-value database, msgpack encoded and compressed.
package snapshot

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/LeJamon/goExilon/internal/core/amount"
	"github.com/LeJamon/goExilon/internal/core/chain"
	"github.com/LeJamon/goExilon/internal/sim"
)

// Account is one holder row. Amounts are decimal strings of smallest units.
type Account struct {
	Address           string `codec:"address"`
	Balance           string `codec:"balance"`
	LP                string `codec:"lp"`
	Fixed             bool   `codec:"fixed"`
	ExcludedFromFees  bool   `codec:"excluded_from_fees"`
	NoSellRestriction bool   `codec:"no_sell_restriction"`
}

// Snapshot is the state of one run at the end of a step.
type Snapshot struct {
	Run   string `codec:"run"`
	Step  int    `codec:"step"`
	Block uint64 `codec:"block"`
	Time  int64  `codec:"time"`

	Name        string `codec:"name"`
	Symbol      string `codec:"symbol"`
	Decimals    uint8  `codec:"decimals"`
	TotalSupply string `codec:"total_supply"`
	State       string `codec:"state"`

	TokenReserve string `codec:"token_reserve"`
	WethReserve  string `codec:"weth_reserve"`
	LPSupply     string `codec:"lp_supply"`
	FeePool      string `codec:"fee_pool"`
	BurnBalance  string `codec:"burn_balance"`
	WethLimit    string `codec:"weth_limit"`

	Accounts []Account `codec:"accounts"`
}

// Capture reads the state of w. Holders come first in ledger order, then
// the named accounts that hold nothing.
func Capture(w *sim.World, run string, step int) (*Snapshot, error) {
	tok := w.Token
	pair := w.Pair()

	tokenReserve, wethReserve, err := pair.ReservesFor(tok.Address())
	if err != nil {
		return nil, fmt.Errorf("capture reserves: %w", err)
	}

	s := &Snapshot{
		Run:          run,
		Step:         step,
		Block:        w.Chain.BlockNumber(),
		Time:         w.Chain.Now().Unix(),
		Name:         tok.Name(),
		Symbol:       tok.Symbol(),
		Decimals:     tok.Decimals(),
		TotalSupply:  tok.TotalSupply().String(),
		State:        tok.LiquidityState().String(),
		TokenReserve: tokenReserve.String(),
		WethReserve:  wethReserve.String(),
		LPSupply:     pair.TotalSupply().String(),
		FeePool:      tok.FeeAmountInTokens().String(),
		BurnBalance:  tok.BalanceOf(chain.DeadAddress).String(),
		WethLimit:    tok.WethLimitForLpFee().String(),
	}

	seen := make(map[common.Address]bool)
	for _, addr := range append(tok.Accounts(), w.Accounts.All()...) {
		if seen[addr] {
			continue
		}
		seen[addr] = true
		s.Accounts = append(s.Accounts, Account{
			Address:           addr.Hex(),
			Balance:           tok.BalanceOf(addr).String(),
			LP:                pair.BalanceOf(addr).String(),
			Fixed:             tok.IsExcludedFromDistribution(addr),
			ExcludedFromFees:  tok.IsExcludedFromPayingFees(addr),
			NoSellRestriction: tok.IsNoRestrictionOnSell(addr),
		})
	}
	return s, nil
}

// Account returns the row of addr.
func (s *Snapshot) Account(addr common.Address) (Account, bool) {
	hex := addr.Hex()
	for _, a := range s.Accounts {
		if a.Address == hex {
			return a, true
		}
	}
	return Account{}, false
}

// BalanceOf parses the token balance of addr; unknown addresses hold zero.
func (s *Snapshot) BalanceOf(addr common.Address) (amount.Amount, error) {
	a, ok := s.Account(addr)
	if !ok {
		return amount.Zero, nil
	}
	return amount.ParseUnits(a.Balance)
}

// Holdings sums the token balances of all rows.
func (s *Snapshot) Holdings() (amount.Amount, error) {
	sum := amount.Zero
	for _, a := range s.Accounts {
		v, err := amount.ParseUnits(a.Balance)
		if err != nil {
			return amount.Zero, fmt.Errorf("account %s: %w", a.Address, err)
		}
		if sum, err = sum.Add(v); err != nil {
			return amount.Zero, err
		}
	}
	return sum, nil
}
