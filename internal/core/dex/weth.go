package dex

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/LeJamon/goExilon/internal/core/amount"
	"github.com/LeJamon/goExilon/internal/core/chain"
)

// WETH wraps the native asset. Native balances live here too, since the
// simulation has no separate account state for them.
type WETH struct {
	*BasicToken
	native map[common.Address]amount.Amount
}

func NewWETH(c *chain.Chain, address common.Address) *WETH {
	return &WETH{
		BasicToken: NewBasicToken(c, address, "Wrapped Ether", "WETH", 18),
		native:     make(map[common.Address]amount.Amount),
	}
}

// NativeBalance returns the unwrapped balance of account.
func (w *WETH) NativeBalance(account common.Address) amount.Amount {
	return w.native[account]
}

// Fund credits native balance out of thin air. It stands in for genesis
// allocations.
func (w *WETH) Fund(account common.Address, value amount.Amount) error {
	return w.chain.Atomic(func() error {
		bal, err := w.native[account].Add(value)
		if err != nil {
			return err
		}
		chain.SetMap(w.chain.Journal(), w.native, account, bal)
		return nil
	})
}

// Deposit wraps value of from's native balance.
func (w *WETH) Deposit(from common.Address, value amount.Amount) error {
	return w.DepositTo(from, from, value)
}

// DepositTo wraps value of from's native balance and credits the wrapped
// tokens to to. The router uses it to pay a pair in one step.
func (w *WETH) DepositTo(from, to common.Address, value amount.Amount) error {
	return w.chain.Atomic(func() error {
		if err := w.spendNative(from, value); err != nil {
			return err
		}
		if err := w.mint(to, value); err != nil {
			return err
		}
		w.chain.Emit(chain.Event{Contract: w.address, Kind: chain.EventDeposit, From: from, To: to, Amount: value})
		return nil
	})
}

// Withdraw unwraps value back to from's native balance.
func (w *WETH) Withdraw(from common.Address, value amount.Amount) error {
	return w.WithdrawTo(from, from, value)
}

// WithdrawTo burns from's wrapped tokens and pays the native asset to to.
func (w *WETH) WithdrawTo(from, to common.Address, value amount.Amount) error {
	return w.chain.Atomic(func() error {
		if err := w.burn(from, value); err != nil {
			return err
		}
		bal, err := w.native[to].Add(value)
		if err != nil {
			return err
		}
		chain.SetMap(w.chain.Journal(), w.native, to, bal)
		w.chain.Emit(chain.Event{Contract: w.address, Kind: chain.EventWithdrawal, From: from, To: to, Amount: value})
		return nil
	})
}

func (w *WETH) spendNative(from common.Address, value amount.Amount) error {
	bal, err := w.native[from].Sub(value)
	if err != nil {
		return fmt.Errorf("%w: %s holds %s, wants %s", ErrInsufficientNativeBalance, from.Hex(), w.native[from], value)
	}
	chain.SetMap(w.chain.Journal(), w.native, from, bal)
	return nil
}
