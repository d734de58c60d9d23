package token

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/LeJamon/goExilon/internal/core/amount"
	"github.com/LeJamon/goExilon/internal/core/chain"
	"github.com/LeJamon/goExilon/internal/core/dex"
)

// Injection describes one conversion of the fee pool into pair liquidity.
type Injection struct {
	Sold      amount.Amount
	Bought    amount.Amount
	Tokens    amount.Amount
	Weth      amount.Amount
	Liquidity amount.Amount
}

// tryInject runs the injector in its own unit. Failures roll back the
// injection only and are logged.
func (e *Exilon) tryInject(force bool) {
	err := e.chain.Atomic(func() error {
		_, err := e.inject(force)
		return err
	})
	if err != nil {
		e.log.Printf("auto liquidity skipped: %v", err)
	}
}

func (e *Exilon) canInject() bool {
	return e.state == Bootstrapped &&
		!e.injecting &&
		!e.cfg.Throttle.Active(e.blocksSinceLiquidity()) &&
		!e.feeAmount.IsZero()
}

// inject converts the fee pool into liquidity once its value in WETH, plus
// the WETH the token address holds, reaches the limit. force ignores the
// limit. A nil Injection means nothing was due.
func (e *Exilon) inject(force bool) (*Injection, error) {
	if !e.canInject() {
		return nil, nil
	}
	tokenReserve, wethReserve, err := e.pair.ReservesFor(e.address)
	if err != nil {
		return nil, err
	}
	if tokenReserve.IsZero() || wethReserve.IsZero() {
		return nil, nil
	}
	fee := e.dexFee()

	contractWeth := e.weth.BalanceOf(e.address)
	price, err := fee.GetAmountOut(e.feeAmount, tokenReserve, wethReserve)
	if err != nil {
		return nil, err
	}
	total, err := price.Add(contractWeth)
	if err != nil {
		return nil, err
	}
	if !force && total.Lt(e.wethLimit) {
		return nil, nil
	}
	if e.wethReceiver == chain.ZeroAddress {
		return nil, ErrWethReceiverNotSet
	}

	chain.Set(e.chain.Journal(), &e.injecting, true)
	defer chain.Set(e.chain.Journal(), &e.injecting, false)

	held, err := e.holdPending(tokenReserve, wethReserve)
	if err != nil {
		return nil, fmt.Errorf("hold pending deposit: %w", err)
	}

	inj := &Injection{}
	pool := e.feeAmount
	half, err := total.Div(amount.New(2))
	if err != nil {
		return nil, err
	}

	if half.Gt(contractWeth) {
		toBuy, _ := half.Sub(contractWeth)
		toSell, err := fee.GetAmountIn(toBuy, tokenReserve, wethReserve)
		if err != nil {
			return nil, fmt.Errorf("price weth purchase: %w", err)
		}
		if toSell.Gt(pool) {
			toSell = pool
			if toBuy, err = fee.GetAmountOut(toSell, tokenReserve, wethReserve); err != nil {
				return nil, err
			}
		}
		if err := e.buyWeth(toSell, toBuy); err != nil {
			return nil, err
		}
		if pool, err = pool.Sub(toSell); err != nil {
			return nil, err
		}
		inj.Sold, inj.Bought = toSell, toBuy
		if tokenReserve, wethReserve, err = e.pair.ReservesFor(e.address); err != nil {
			return nil, err
		}
	}

	wethToAdd := e.weth.BalanceOf(e.address)
	tokenToAdd, err := dex.Quote(wethToAdd, wethReserve, tokenReserve)
	if err != nil {
		return nil, fmt.Errorf("quote token side: %w", err)
	}
	if tokenToAdd.Gt(pool) {
		tokenToAdd = pool
		if wethToAdd, err = dex.Quote(tokenToAdd, tokenReserve, wethReserve); err != nil {
			return nil, fmt.Errorf("requote weth side: %w", err)
		}
	}

	if err := e.moveInternal(e.address, e.pair.Address(), tokenToAdd); err != nil {
		return nil, err
	}
	if err := e.weth.Transfer(e.address, e.pair.Address(), wethToAdd); err != nil {
		return nil, err
	}
	liquidity, err := e.pair.Mint(e.defaultLpMint)
	if err != nil {
		return nil, fmt.Errorf("mint lp: %w", err)
	}
	if err := e.releasePending(held); err != nil {
		return nil, fmt.Errorf("release pending deposit: %w", err)
	}
	if pool, err = pool.Sub(tokenToAdd); err != nil {
		return nil, err
	}
	chain.Set(e.chain.Journal(), &e.feeAmount, pool)

	inj.Tokens, inj.Weth, inj.Liquidity = tokenToAdd, wethToAdd, liquidity
	e.chain.Emit(chain.Event{
		Contract: e.address,
		Kind:     chain.EventLiquidityInjected,
		To:       e.defaultLpMint,
		Amount:   liquidity,
		Note: fmt.Sprintf("sold=%s bought=%s tokens=%s weth=%s",
			inj.Sold, inj.Bought, inj.Tokens, inj.Weth),
	})
	return inj, nil
}

// pendingDeposit is what a liquidity provider had already paid into the
// pair when the injection started.
type pendingDeposit struct {
	tokens amount.Amount
	weth   amount.Amount
}

// holdPending takes the pair's balances above its reserves out of the pair,
// so the injector's swap and mint only see the injector's own deposit. The
// tokens wait at the token address, which the pool accounting ignores, and
// the WETH at the receiver.
func (e *Exilon) holdPending(tokenReserve, wethReserve amount.Amount) (pendingDeposit, error) {
	pair := e.pair.Address()
	held := pendingDeposit{
		tokens: e.BalanceOf(pair).SubFloor(tokenReserve),
		weth:   e.weth.BalanceOf(pair).SubFloor(wethReserve),
	}
	if err := e.moveInternal(pair, e.address, held.tokens); err != nil {
		return pendingDeposit{}, err
	}
	if !held.weth.IsZero() {
		if err := e.weth.Transfer(pair, e.wethReceiver, held.weth); err != nil {
			return pendingDeposit{}, err
		}
	}
	return held, nil
}

// releasePending puts a held deposit back into the pair.
func (e *Exilon) releasePending(held pendingDeposit) error {
	pair := e.pair.Address()
	if err := e.moveInternal(e.address, pair, held.tokens); err != nil {
		return err
	}
	if held.weth.IsZero() {
		return nil
	}
	return e.weth.Transfer(e.wethReceiver, pair, held.weth)
}

// buyWeth sells toSell pooled tokens into the pair for toBuy WETH. The pair
// refuses to pay a token it trades, so the WETH goes to the receiver and is
// pulled back from there.
func (e *Exilon) buyWeth(toSell, toBuy amount.Amount) error {
	if err := e.moveInternal(e.address, e.pair.Address(), toSell); err != nil {
		return err
	}
	out0, out1 := amount.Zero, toBuy
	if e.pair.Token0() == e.weth.Address() {
		out0, out1 = toBuy, amount.Zero
	}
	if err := e.pair.Swap(out0, out1, e.wethReceiver); err != nil {
		return fmt.Errorf("swap for weth: %w", err)
	}
	return e.weth.Transfer(e.wethReceiver, e.address, toBuy)
}

// moveInternal moves tokens between two addresses without fees.
func (e *Exilon) moveInternal(from, to common.Address, v amount.Amount) error {
	if v.IsZero() {
		return nil
	}
	if err := e.ledger.debit(from, e.registry.IsFixed(from), v); err != nil {
		return err
	}
	if err := e.ledger.credit(to, e.registry.IsFixed(to), v); err != nil {
		return err
	}
	e.track(to)
	e.chain.Emit(chain.Event{Contract: e.address, Kind: chain.EventTransfer, From: from, To: to, Amount: v})
	return nil
}

func (e *Exilon) dexFee() dex.Fee {
	return e.factory.Fee()
}
