package dex

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/LeJamon/goExilon/internal/core/amount"
	"github.com/LeJamon/goExilon/internal/core/chain"
)

// Token is the ERC20 surface pairs and the router move balances through.
// Transfer and TransferFrom take the caller explicitly.
type Token interface {
	Address() common.Address
	BalanceOf(account common.Address) amount.Amount
	Transfer(from, to common.Address, value amount.Amount) error
	TransferFrom(spender, from, to common.Address, value amount.Amount) error
}

type allowanceKey struct {
	owner, spender common.Address
}

// BasicToken is a plain ERC20 ledger with journaled state. It backs WETH,
// the USD reference token and test tokens.
type BasicToken struct {
	chain    *chain.Chain
	address  common.Address
	name     string
	symbol   string
	decimals uint8

	totalSupply amount.Amount
	balances    map[common.Address]amount.Amount
	allowances  map[allowanceKey]amount.Amount
}

func NewBasicToken(c *chain.Chain, address common.Address, name, symbol string, decimals uint8) *BasicToken {
	return &BasicToken{
		chain:      c,
		address:    address,
		name:       name,
		symbol:     symbol,
		decimals:   decimals,
		balances:   make(map[common.Address]amount.Amount),
		allowances: make(map[allowanceKey]amount.Amount),
	}
}

func (t *BasicToken) Address() common.Address    { return t.address }
func (t *BasicToken) Name() string               { return t.name }
func (t *BasicToken) Symbol() string             { return t.symbol }
func (t *BasicToken) Decimals() uint8            { return t.decimals }
func (t *BasicToken) TotalSupply() amount.Amount { return t.totalSupply }

func (t *BasicToken) BalanceOf(account common.Address) amount.Amount {
	return t.balances[account]
}

func (t *BasicToken) Allowance(owner, spender common.Address) amount.Amount {
	return t.allowances[allowanceKey{owner, spender}]
}

// Mint creates value new units for to.
func (t *BasicToken) Mint(to common.Address, value amount.Amount) error {
	return t.chain.Atomic(func() error {
		return t.mint(to, value)
	})
}

func (t *BasicToken) Transfer(from, to common.Address, value amount.Amount) error {
	return t.chain.Atomic(func() error {
		return t.move(from, to, value)
	})
}

func (t *BasicToken) Approve(owner, spender common.Address, value amount.Amount) error {
	return t.chain.Atomic(func() error {
		t.approve(owner, spender, value)
		return nil
	})
}

func (t *BasicToken) TransferFrom(spender, from, to common.Address, value amount.Amount) error {
	return t.chain.Atomic(func() error {
		allowed := t.Allowance(from, spender)
		remaining, err := allowed.Sub(value)
		if err != nil {
			return fmt.Errorf("%w: %s allowed %s, wants %s", ErrInsufficientAllowance, spender.Hex(), allowed, value)
		}
		chain.SetMap(t.chain.Journal(), t.allowances, allowanceKey{from, spender}, remaining)
		return t.move(from, to, value)
	})
}

func (t *BasicToken) approve(owner, spender common.Address, value amount.Amount) {
	chain.SetMap(t.chain.Journal(), t.allowances, allowanceKey{owner, spender}, value)
	t.chain.Emit(chain.Event{Contract: t.address, Kind: chain.EventApproval, From: owner, To: spender, Amount: value})
}

func (t *BasicToken) mint(to common.Address, value amount.Amount) error {
	supply, err := t.totalSupply.Add(value)
	if err != nil {
		return err
	}
	bal, err := t.balances[to].Add(value)
	if err != nil {
		return err
	}
	chain.Set(t.chain.Journal(), &t.totalSupply, supply)
	chain.SetMap(t.chain.Journal(), t.balances, to, bal)
	t.chain.Emit(chain.Event{Contract: t.address, Kind: chain.EventTransfer, From: chain.ZeroAddress, To: to, Amount: value})
	return nil
}

func (t *BasicToken) burn(from common.Address, value amount.Amount) error {
	bal, err := t.balances[from].Sub(value)
	if err != nil {
		return fmt.Errorf("%w: %s holds %s, wants %s", ErrInsufficientBalance, from.Hex(), t.balances[from], value)
	}
	supply, err := t.totalSupply.Sub(value)
	if err != nil {
		return err
	}
	chain.Set(t.chain.Journal(), &t.totalSupply, supply)
	chain.SetMap(t.chain.Journal(), t.balances, from, bal)
	t.chain.Emit(chain.Event{Contract: t.address, Kind: chain.EventTransfer, From: from, To: chain.ZeroAddress, Amount: value})
	return nil
}

func (t *BasicToken) move(from, to common.Address, value amount.Amount) error {
	fromBal, err := t.balances[from].Sub(value)
	if err != nil {
		return fmt.Errorf("%w: %s holds %s, wants %s", ErrInsufficientBalance, from.Hex(), t.balances[from], value)
	}
	chain.SetMap(t.chain.Journal(), t.balances, from, fromBal)
	toBal, err := t.balances[to].Add(value)
	if err != nil {
		return err
	}
	chain.SetMap(t.chain.Journal(), t.balances, to, toBal)
	t.chain.Emit(chain.Event{Contract: t.address, Kind: chain.EventTransfer, From: from, To: to, Amount: value})
	return nil
}
