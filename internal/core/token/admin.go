package token

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/LeJamon/goExilon/internal/core/access"
	"github.com/LeJamon/goExilon/internal/core/amount"
	"github.com/LeJamon/goExilon/internal/core/chain"
)

var adminRole = access.DefaultAdminRole

// AddLiquidity pairs the reserved supply with value of the caller's native
// balance, mints the LP tokens to the default LP address and opens trading.
// It can run once.
func (e *Exilon) AddLiquidity(caller common.Address, value amount.Amount) (amount.Amount, error) {
	var liquidity amount.Amount
	err := e.chain.Atomic(func() error {
		if err := e.requireAdmin(caller); err != nil {
			return err
		}
		if e.state == Bootstrapped {
			return ErrOnlyOnce
		}
		reserved := e.BalanceOf(e.address)
		if err := e.moveInternal(e.address, e.pair.Address(), reserved); err != nil {
			return err
		}
		if err := e.weth.DepositTo(caller, e.pair.Address(), value); err != nil {
			return fmt.Errorf("deposit native: %w", err)
		}

		chain.Set(e.chain.Journal(), &e.state, Bootstrapped)
		chain.Set(e.chain.Journal(), &e.liquidityBlock, e.chain.BlockNumber())
		chain.Set(e.chain.Journal(), &e.liquidityTime, e.chain.Now())

		var err error
		if liquidity, err = e.pair.Mint(e.defaultLpMint); err != nil {
			return fmt.Errorf("mint lp: %w", err)
		}
		e.chain.Emit(chain.Event{
			Contract: e.address,
			Kind:     chain.EventLiquidityAdded,
			From:     caller,
			To:       e.defaultLpMint,
			Amount:   liquidity,
			Note:     fmt.Sprintf("tokens=%s weth=%s", reserved, value),
		})
		return nil
	})
	return liquidity, err
}

// SetWethReceiver sets the address the injector's WETH purchases are paid
// to. It can run once.
func (e *Exilon) SetWethReceiver(caller, receiver common.Address) error {
	return e.chain.Atomic(func() error {
		if err := e.requireAdmin(caller); err != nil {
			return err
		}
		if e.wethReceiver != chain.ZeroAddress {
			return ErrOnlyOnce
		}
		if receiver == chain.ZeroAddress {
			return ErrZeroAddress
		}
		chain.Set(e.chain.Journal(), &e.wethReceiver, receiver)
		e.configChanged(caller, receiver, amount.Zero, "weth_receiver")
		return nil
	})
}

func (e *Exilon) SetDefaultLpMintAddress(caller, addr common.Address) error {
	return e.chain.Atomic(func() error {
		if err := e.requireAdmin(caller); err != nil {
			return err
		}
		if addr == chain.ZeroAddress {
			return ErrZeroAddress
		}
		chain.Set(e.chain.Journal(), &e.defaultLpMint, addr)
		e.configChanged(caller, addr, amount.Zero, "default_lp_mint")
		return nil
	})
}

func (e *Exilon) SetWethLimitForLpFee(caller common.Address, limit amount.Amount) error {
	return e.chain.Atomic(func() error {
		if err := e.requireAdmin(caller); err != nil {
			return err
		}
		chain.Set(e.chain.Journal(), &e.wethLimit, limit)
		e.configChanged(caller, chain.ZeroAddress, limit, "weth_limit_for_lp_fee")
		return nil
	})
}

// SetMarketingAddress moves the marketing fee to addr, which must already
// be excluded from fee distribution.
func (e *Exilon) SetMarketingAddress(caller, addr common.Address) error {
	return e.chain.Atomic(func() error {
		if err := e.requireAdmin(caller); err != nil {
			return err
		}
		if !e.registry.IsFixed(addr) {
			return fmt.Errorf("%w: %s", ErrMarketingNotFixed, addr.Hex())
		}
		chain.Set(e.chain.Journal(), &e.marketing, addr)
		e.configChanged(caller, addr, amount.Zero, "marketing")
		return nil
	})
}

// ExcludeFromFeesDistribution fixes addr. Its balance is kept.
func (e *Exilon) ExcludeFromFeesDistribution(caller, addr common.Address) error {
	return e.chain.Atomic(func() error {
		if err := e.requireAdmin(caller); err != nil {
			return err
		}
		if err := e.requireLiquidity(); err != nil {
			return err
		}
		if err := e.registry.Fix(addr); err != nil {
			return err
		}
		return e.ledger.fix(addr)
	})
}

// IncludeToFeesDistribution returns addr to fee distribution. The pair,
// the burn sink, the marketing wallet and the token address stay fixed.
func (e *Exilon) IncludeToFeesDistribution(caller, addr common.Address) error {
	return e.chain.Atomic(func() error {
		if err := e.requireAdmin(caller); err != nil {
			return err
		}
		if err := e.requireLiquidity(); err != nil {
			return err
		}
		switch addr {
		case e.pair.Address(), chain.DeadAddress, e.marketing, e.address:
			return fmt.Errorf("%w: %s", ErrWrongAddress, addr.Hex())
		}
		if err := e.registry.Unfix(addr); err != nil {
			return err
		}
		return e.ledger.unfix(addr)
	})
}

func (e *Exilon) ExcludeFromPayingFees(caller, addr common.Address) error {
	return e.adminRegistryOp(caller, func() error { return e.registry.ExcludeFromPayingFees(addr) })
}

func (e *Exilon) IncludeToPayingFees(caller, addr common.Address) error {
	return e.adminRegistryOp(caller, func() error { return e.registry.IncludeToPayingFees(addr) })
}

func (e *Exilon) RemoveRestrictionsOnSell(caller, addr common.Address) error {
	return e.adminRegistryOp(caller, func() error { return e.registry.RemoveRestrictionsOnSell(addr) })
}

func (e *Exilon) ImposeRestrictionsOnSell(caller, addr common.Address) error {
	return e.adminRegistryOp(caller, func() error { return e.registry.ImposeRestrictionsOnSell(addr) })
}

func (e *Exilon) adminRegistryOp(caller common.Address, op func() error) error {
	return e.chain.Atomic(func() error {
		if err := e.requireAdmin(caller); err != nil {
			return err
		}
		return op()
	})
}

// ForceLpFeesDistribute injects the fee pool regardless of the WETH limit.
// It does nothing while the early trade throttle is active or the pool is
// empty.
func (e *Exilon) ForceLpFeesDistribute(caller common.Address) (*Injection, error) {
	var inj *Injection
	err := e.chain.Atomic(func() error {
		if err := e.requireAdmin(caller); err != nil {
			return err
		}
		if err := e.requireLiquidity(); err != nil {
			return err
		}
		var err error
		inj, err = e.inject(true)
		return err
	})
	return inj, err
}

func (e *Exilon) configChanged(caller, addr common.Address, v amount.Amount, what string) {
	e.chain.Emit(chain.Event{
		Contract: e.address,
		Kind:     chain.EventConfigChanged,
		From:     caller,
		To:       addr,
		Amount:   v,
		Note:     what,
	})
}
