package dex

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/LeJamon/goExilon/internal/core/amount"
	"github.com/LeJamon/goExilon/internal/core/chain"
)

// Pair is a constant-product pool of two tokens. Its LP shares are an ERC20
// ledger of their own. Mint, Burn and Swap read the pair's token balances and
// settle the difference against the stored reserves, so callers transfer in
// first and call second.
type Pair struct {
	*BasicToken

	token0, token1 Token
	fee            Fee

	reserve0, reserve1 amount.Amount
	locked             bool
}

func newPair(c *chain.Chain, address common.Address, t0, t1 Token, fee Fee) *Pair {
	return &Pair{
		BasicToken: NewBasicToken(c, address, "Pancake LPs", "Cake-LP", 18),
		token0:     t0,
		token1:     t1,
		fee:        fee,
	}
}

func (p *Pair) Token0() common.Address { return p.token0.Address() }
func (p *Pair) Token1() common.Address { return p.token1.Address() }

// GetReserves returns the reserves in token0/token1 order.
func (p *Pair) GetReserves() (amount.Amount, amount.Amount) {
	return p.reserve0, p.reserve1
}

// ReservesFor returns the reserve of token and of the other side.
func (p *Pair) ReservesFor(token common.Address) (amount.Amount, amount.Amount, error) {
	switch token {
	case p.Token0():
		return p.reserve0, p.reserve1, nil
	case p.Token1():
		return p.reserve1, p.reserve0, nil
	}
	return amount.Zero, amount.Zero, fmt.Errorf("%w: %s not in pair %s", ErrUnknownToken, token.Hex(), p.address.Hex())
}

// Mint issues LP shares to to for the tokens transferred in since the last
// reserve update.
func (p *Pair) Mint(to common.Address) (amount.Amount, error) {
	var liquidity amount.Amount
	err := p.locking(func() error {
		bal0 := p.token0.BalanceOf(p.address)
		bal1 := p.token1.BalanceOf(p.address)
		amount0, err := bal0.Sub(p.reserve0)
		if err != nil {
			return ErrInsufficientLiquidityMinted
		}
		amount1, err := bal1.Sub(p.reserve1)
		if err != nil {
			return ErrInsufficientLiquidityMinted
		}

		if p.totalSupply.IsZero() {
			product, err := amount0.Mul(amount1)
			if err != nil {
				return err
			}
			if liquidity, err = product.Sqrt().Sub(amount.New(MinimumLiquidity)); err != nil {
				return ErrInsufficientLiquidityMinted
			}
			if err := p.mint(chain.ZeroAddress, amount.New(MinimumLiquidity)); err != nil {
				return err
			}
		} else {
			l0, err := amount0.MulDiv(p.totalSupply, p.reserve0)
			if err != nil {
				return err
			}
			l1, err := amount1.MulDiv(p.totalSupply, p.reserve1)
			if err != nil {
				return err
			}
			liquidity = amount.Min(l0, l1)
		}
		if liquidity.IsZero() {
			return ErrInsufficientLiquidityMinted
		}
		if err := p.mint(to, liquidity); err != nil {
			return err
		}
		p.update(bal0, bal1)
		p.chain.Emit(chain.Event{Contract: p.address, Kind: chain.EventMint, To: to, Amount: liquidity})
		return nil
	})
	return liquidity, err
}

// Burn redeems the LP shares held by the pair itself and pays both tokens to to.
func (p *Pair) Burn(to common.Address) (amount.Amount, amount.Amount, error) {
	var amount0, amount1 amount.Amount
	err := p.locking(func() error {
		bal0 := p.token0.BalanceOf(p.address)
		bal1 := p.token1.BalanceOf(p.address)
		liquidity := p.BalanceOf(p.address)

		var err error
		if amount0, err = liquidity.MulDiv(bal0, p.totalSupply); err != nil {
			return err
		}
		if amount1, err = liquidity.MulDiv(bal1, p.totalSupply); err != nil {
			return err
		}
		if amount0.IsZero() || amount1.IsZero() {
			return ErrInsufficientLiquidityBurned
		}
		if err := p.burn(p.address, liquidity); err != nil {
			return err
		}
		if err := p.pay(p.token0, to, amount0); err != nil {
			return err
		}
		if err := p.pay(p.token1, to, amount1); err != nil {
			return err
		}
		p.update(p.token0.BalanceOf(p.address), p.token1.BalanceOf(p.address))
		p.chain.Emit(chain.Event{Contract: p.address, Kind: chain.EventBurn, To: to, Amount: liquidity})
		return nil
	})
	return amount0, amount1, err
}

// Swap pays the requested outputs to to and requires the constant product,
// net of the fee, to hold on whatever was transferred in.
func (p *Pair) Swap(amount0Out, amount1Out amount.Amount, to common.Address) error {
	return p.locking(func() error {
		if amount0Out.IsZero() && amount1Out.IsZero() {
			return ErrInsufficientOutputAmount
		}
		if amount0Out.Gte(p.reserve0) || amount1Out.Gte(p.reserve1) {
			return ErrInsufficientLiquidity
		}
		if to == p.Token0() || to == p.Token1() {
			return ErrInvalidTo
		}
		if !amount0Out.IsZero() {
			if err := p.pay(p.token0, to, amount0Out); err != nil {
				return err
			}
		}
		if !amount1Out.IsZero() {
			if err := p.pay(p.token1, to, amount1Out); err != nil {
				return err
			}
		}

		bal0 := p.token0.BalanceOf(p.address)
		bal1 := p.token1.BalanceOf(p.address)
		amount0In := amountIn(bal0, p.reserve0, amount0Out)
		amount1In := amountIn(bal1, p.reserve1, amount1Out)
		if amount0In.IsZero() && amount1In.IsZero() {
			return ErrInsufficientInputAmount
		}

		if err := p.checkK(bal0, bal1, amount0In, amount1In); err != nil {
			return err
		}
		p.update(bal0, bal1)
		p.chain.Emit(chain.Event{
			Contract: p.address,
			Kind:     chain.EventSwap,
			To:       to,
			Amount:   amount.Max(amount0Out, amount1Out),
			Note:     fmt.Sprintf("in0=%s in1=%s out0=%s out1=%s", amount0In, amount1In, amount0Out, amount1Out),
		})
		return nil
	})
}

// Skim sends balances above the reserves to to.
func (p *Pair) Skim(to common.Address) error {
	return p.locking(func() error {
		excess0 := p.token0.BalanceOf(p.address).SubFloor(p.reserve0)
		excess1 := p.token1.BalanceOf(p.address).SubFloor(p.reserve1)
		if !excess0.IsZero() {
			if err := p.pay(p.token0, to, excess0); err != nil {
				return err
			}
		}
		if !excess1.IsZero() {
			if err := p.pay(p.token1, to, excess1); err != nil {
				return err
			}
		}
		return nil
	})
}

// Sync sets the reserves to the current balances.
func (p *Pair) Sync() error {
	return p.locking(func() error {
		p.update(p.token0.BalanceOf(p.address), p.token1.BalanceOf(p.address))
		return nil
	})
}

func (p *Pair) locking(fn func() error) error {
	return p.chain.Atomic(func() error {
		if p.locked {
			return ErrLocked
		}
		chain.Set(p.chain.Journal(), &p.locked, true)
		defer chain.Set(p.chain.Journal(), &p.locked, false)
		return fn()
	})
}

func (p *Pair) pay(t Token, to common.Address, value amount.Amount) error {
	if err := t.Transfer(p.address, to, value); err != nil {
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	return nil
}

func (p *Pair) update(bal0, bal1 amount.Amount) {
	chain.Set(p.chain.Journal(), &p.reserve0, bal0)
	chain.Set(p.chain.Journal(), &p.reserve1, bal1)
	p.chain.Emit(chain.Event{
		Contract: p.address,
		Kind:     chain.EventSync,
		Note:     fmt.Sprintf("reserve0=%s reserve1=%s", bal0, bal1),
	})
}

func (p *Pair) checkK(bal0, bal1, in0, in1 amount.Amount) error {
	d := amount.New(p.fee.Denominator)
	cut := amount.New(p.fee.Denominator - p.fee.Numerator)

	adjusted := func(bal, in amount.Amount) (amount.Amount, error) {
		scaled, err := bal.Mul(d)
		if err != nil {
			return amount.Zero, err
		}
		taken, err := in.Mul(cut)
		if err != nil {
			return amount.Zero, err
		}
		return scaled.Sub(taken)
	}

	adj0, err := adjusted(bal0, in0)
	if err != nil {
		return ErrK
	}
	adj1, err := adjusted(bal1, in1)
	if err != nil {
		return ErrK
	}
	lhs, err := adj0.Mul(adj1)
	if err != nil {
		return err
	}
	k, err := p.reserve0.Mul(p.reserve1)
	if err != nil {
		return err
	}
	dd, err := d.Mul(d)
	if err != nil {
		return err
	}
	rhs, err := k.Mul(dd)
	if err != nil {
		return err
	}
	if lhs.Lt(rhs) {
		return ErrK
	}
	return nil
}

func amountIn(balance, reserve, out amount.Amount) amount.Amount {
	left := reserve.SubFloor(out)
	return balance.SubFloor(left)
}
