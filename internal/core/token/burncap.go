package token

import (
	"fmt"

	"github.com/LeJamon/goExilon/internal/core/amount"
	"github.com/LeJamon/goExilon/internal/core/chain"
	"github.com/LeJamon/goExilon/internal/core/fees"
)

// MaxBurnAmount is the most the burn sink may ever hold.
func (e *Exilon) MaxBurnAmount() amount.Amount {
	v, err := e.cfg.TotalSupply.Percent(e.cfg.BurnCapPercent)
	if err != nil {
		return amount.Zero
	}
	return v
}

// BurnHeadroom is what can still be burned before the cap.
func (e *Exilon) BurnHeadroom() amount.Amount {
	return e.MaxBurnAmount().SubFloor(e.BalanceOf(chain.DeadAddress))
}

// clampBurn moves the part of the burn fee above the headroom to the
// liquidity fee.
func (e *Exilon) clampBurn(s fees.Split) (fees.Split, error) {
	headroom := e.BurnHeadroom()
	if s.Burn.Lte(headroom) {
		return s, nil
	}
	excess, err := s.Burn.Sub(headroom)
	if err != nil {
		return fees.Split{}, err
	}
	if s.Liquidity, err = s.Liquidity.Add(excess); err != nil {
		return fees.Split{}, err
	}
	s.Burn = headroom
	return s, nil
}

// checkDirectBurn rejects a transfer whose net would push the sink over the
// cap. The burn fee of the same transfer is already clamped.
func (e *Exilon) checkDirectBurn(s fees.Split) error {
	after, err := e.BalanceOf(chain.DeadAddress).Add(s.Burn)
	if err != nil {
		return err
	}
	if after, err = after.Add(s.Net); err != nil {
		return err
	}
	if after.Gt(e.MaxBurnAmount()) {
		return fmt.Errorf("%w: sink would hold %s, cap is %s", ErrBurnCapExceeded, after, e.MaxBurnAmount())
	}
	return nil
}
