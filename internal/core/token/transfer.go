package token

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/LeJamon/goExilon/internal/core/amount"
	"github.com/LeJamon/goExilon/internal/core/chain"
	"github.com/LeJamon/goExilon/internal/core/fees"
)

// Movement classifies a token movement by its relation to the main pair.
type Movement uint8

const (
	PeerTransfer Movement = iota
	Buy
	LiquidityRemoval
	Sell
)

func (m Movement) String() string {
	switch m {
	case PeerTransfer:
		return "transfer"
	case Buy:
		return "buy"
	case LiquidityRemoval:
		return "remove_liquidity"
	case Sell:
		return "sell"
	default:
		return fmt.Sprintf("Movement(%d)", uint8(m))
	}
}

// Transfer moves value from from to to, net of fees.
func (e *Exilon) Transfer(from, to common.Address, value amount.Amount) error {
	return e.chain.Atomic(func() error {
		return e.transfer(from, to, value)
	})
}

// TransferFrom spends value of spender's allowance over from. The allowance
// is reduced by the gross value.
func (e *Exilon) TransferFrom(spender, from, to common.Address, value amount.Amount) error {
	return e.chain.Atomic(func() error {
		if err := e.requireLiquidity(); err != nil {
			return err
		}
		allowed := e.Allowance(from, spender)
		remaining, err := allowed.Sub(value)
		if err != nil {
			return fmt.Errorf("%w: %s allowed %s, wants %s", ErrAmountExceedsAllowance, spender.Hex(), allowed, value)
		}
		e.setAllowance(from, spender, remaining)
		return e.transfer(from, to, value)
	})
}

func (e *Exilon) Approve(owner, spender common.Address, value amount.Amount) error {
	return e.chain.Atomic(func() error {
		if owner == chain.ZeroAddress || spender == chain.ZeroAddress {
			return ErrZeroAddress
		}
		e.setAllowance(owner, spender, value)
		return nil
	})
}

func (e *Exilon) IncreaseAllowance(owner, spender common.Address, added amount.Amount) error {
	return e.chain.Atomic(func() error {
		if owner == chain.ZeroAddress || spender == chain.ZeroAddress {
			return ErrZeroAddress
		}
		v, err := e.Allowance(owner, spender).Add(added)
		if err != nil {
			return err
		}
		e.setAllowance(owner, spender, v)
		return nil
	})
}

func (e *Exilon) DecreaseAllowance(owner, spender common.Address, subtracted amount.Amount) error {
	return e.chain.Atomic(func() error {
		v, err := e.Allowance(owner, spender).Sub(subtracted)
		if err != nil {
			return ErrAllowanceBelowZero
		}
		e.setAllowance(owner, spender, v)
		return nil
	})
}

func (e *Exilon) setAllowance(owner, spender common.Address, v amount.Amount) {
	chain.SetMap(e.chain.Journal(), e.allowances, allowanceKey{owner, spender}, v)
	e.chain.Emit(chain.Event{Contract: e.address, Kind: chain.EventApproval, From: owner, To: spender, Amount: v})
}

// Classify returns the kind of a movement from from to to, and for buys the
// native amount spent on it. A buy is recognised by the pair holding more
// WETH than its reserve while it pays out tokens.
func (e *Exilon) Classify(from, to common.Address) (Movement, amount.Amount) {
	switch e.pair.Address() {
	case from:
		_, wethReserve, err := e.pair.ReservesFor(e.address)
		if err != nil {
			return LiquidityRemoval, amount.Zero
		}
		wethBalance := e.weth.BalanceOf(e.pair.Address())
		if wethBalance.Gt(wethReserve) {
			return Buy, wethBalance.SubFloor(wethReserve)
		}
		return LiquidityRemoval, amount.Zero
	case to:
		return Sell, amount.Zero
	}
	return PeerTransfer, amount.Zero
}

func (e *Exilon) transfer(from, to common.Address, value amount.Amount) error {
	if err := e.requireLiquidity(); err != nil {
		return err
	}
	if from == chain.ZeroAddress || to == chain.ZeroAddress {
		return ErrZeroAddress
	}
	if to == e.address {
		return ErrTransferToToken
	}
	if to != e.pair.Address() && e.factory.IsPair(to) {
		return ErrNewPairNotAllowed
	}
	fromFixed := e.registry.IsFixed(from)
	if bal := e.ledger.balanceOf(from, fromFixed); value.Gt(bal) {
		return fmt.Errorf("%w: %s holds %s, wants %s", ErrAmountExceedsBalance, from.Hex(), bal, value)
	}
	if value.IsZero() {
		e.chain.Emit(chain.Event{Contract: e.address, Kind: chain.EventTransfer, From: from, To: to, Amount: value})
		return nil
	}

	kind, wethIn := e.Classify(from, to)
	split, err := e.split(kind, from, to, value, wethIn)
	if err != nil {
		return err
	}
	if split, err = e.clampBurn(split); err != nil {
		return err
	}
	if to == chain.DeadAddress {
		if err := e.checkDirectBurn(split); err != nil {
			return err
		}
	}

	if err := e.ledger.debit(from, fromFixed, value); err != nil {
		return err
	}
	if err := e.routeFees(from, split); err != nil {
		return err
	}

	if from != e.pair.Address() {
		e.tryInject(false)
	}

	if err := e.ledger.credit(to, e.registry.IsFixed(to), split.Net); err != nil {
		return err
	}
	e.track(to)
	e.chain.Emit(chain.Event{Contract: e.address, Kind: chain.EventTransfer, From: from, To: to, Amount: split.Net})

	if !split.Distribution.IsZero() {
		if err := e.distribute(from, split.Distribution); err != nil {
			return err
		}
	}
	if !split.IsZero() {
		e.chain.Emit(chain.Event{
			Contract: e.address,
			Kind:     chain.EventFeesRouted,
			From:     from,
			To:       to,
			Amount:   split.Fees(),
			Note: fmt.Sprintf("%s lp=%s burn=%s dist=%s mkt=%s",
				kind, split.Liquidity, split.Burn, split.Distribution, split.Marketing),
		})
	}
	return nil
}

// split computes the fee decomposition of a movement. The buy throttle
// applies even when neither party pays fees.
func (e *Exilon) split(kind Movement, from, to common.Address, value, wethIn amount.Amount) (fees.Split, error) {
	if kind == Buy && !e.registry.IsNoRestrictionOnSell(to) {
		if err := e.cfg.Throttle.Check(e.blocksSinceLiquidity(), wethIn); err != nil {
			return fees.Split{}, err
		}
	}
	if e.registry.IsExcludedFromPayingFees(from) || e.registry.IsExcludedFromPayingFees(to) {
		return fees.Untaxed(value), nil
	}

	switch kind {
	case Buy, LiquidityRemoval:
		return fees.Calculate(value, e.cfg.Fees)
	case Sell:
		tiers := e.cfg.Fees
		if !e.registry.IsNoRestrictionOnSell(from) {
			bal := e.BalanceOf(from)
			tiers = e.cfg.Schedule.SellTiers(e.chain.Now().Sub(e.liquidityTime), value, bal)
		}
		return fees.Calculate(value, tiers)
	default:
		fee := e.TransferFee()
		if fee.IsZero() {
			return fees.Untaxed(value), nil
		}
		s, err := fees.FlatFee(value, fee)
		if errors.Is(err, fees.ErrAmountBelowFee) {
			return fees.Split{}, fmt.Errorf("%w: %s below fee %s", ErrTransferAmountTooSmall, value, fee)
		}
		return s, err
	}
}

// TransferFee returns the flat peer transfer fee in tokens: the price of
// TransferFeeUSD along token -> WETH -> USD. It is zero when there is no
// USD pair or no liquidity to price it.
func (e *Exilon) TransferFee() amount.Amount {
	if e.usd == chain.ZeroAddress || e.cfg.TransferFeeUSD.IsZero() || e.router == nil {
		return amount.Zero
	}
	if _, ok := e.factory.GetPair(e.weth.Address(), e.usd); !ok {
		return amount.Zero
	}
	amounts, err := e.router.GetAmountsIn(e.cfg.TransferFeeUSD, []common.Address{e.address, e.weth.Address(), e.usd})
	if err != nil {
		return amount.Zero
	}
	return amounts[0]
}

func (e *Exilon) routeFees(from common.Address, s fees.Split) error {
	legs := []struct {
		to common.Address
		v  amount.Amount
	}{
		{chain.DeadAddress, s.Burn},
		{e.marketing, s.Marketing},
		{e.address, s.Liquidity},
	}
	for _, leg := range legs {
		if leg.v.IsZero() {
			continue
		}
		if err := e.ledger.credit(leg.to, e.registry.IsFixed(leg.to), leg.v); err != nil {
			return err
		}
		e.track(leg.to)
		e.chain.Emit(chain.Event{Contract: e.address, Kind: chain.EventTransfer, From: from, To: leg.to, Amount: leg.v})
	}
	return e.addToFeePool(s.Liquidity)
}

func (e *Exilon) addToFeePool(v amount.Amount) error {
	if v.IsZero() {
		return nil
	}
	pool, err := e.feeAmount.Add(v)
	if err != nil {
		return err
	}
	chain.Set(e.chain.Journal(), &e.feeAmount, pool)
	return nil
}

// distribute spreads d over the not-fixed holders, or adds it to the fee
// pool when there are none.
func (e *Exilon) distribute(from common.Address, d amount.Amount) error {
	ok, err := e.ledger.distribute(d)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if err := e.ledger.credit(e.address, e.registry.IsFixed(e.address), d); err != nil {
		return err
	}
	e.chain.Emit(chain.Event{Contract: e.address, Kind: chain.EventTransfer, From: from, To: e.address, Amount: d})
	return e.addToFeePool(d)
}

func (e *Exilon) blocksSinceLiquidity() uint64 {
	if e.chain.BlockNumber() < e.liquidityBlock {
		return 0
	}
	return e.chain.BlockNumber() - e.liquidityBlock
}
